package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDatasetRejectsCourseWithNoLink(t *testing.T) {
	courses := []Course{{ID: "c1"}}
	err := ValidateDataset(courses, nil)
	assert.NotNil(t, err)
}

func TestValidateDatasetRejectsSAEMissingSecondTeacher(t *testing.T) {
	courses := []Course{{ID: "c1", Type: CourseSAE}}
	links := []CourseClassLink{{ID: "l1", CourseID: "c1", ClassGroupID: "a1", TeacherAID: "t1"}}
	err := ValidateDataset(courses, links)
	assert.NotNil(t, err)
}

func TestValidateDatasetAcceptsWellFormedDataset(t *testing.T) {
	courses := []Course{{ID: "c1", Type: CourseTD}}
	links := []CourseClassLink{{ID: "l1", CourseID: "c1", ClassGroupID: "a1", TeacherAID: "t1"}}
	err := ValidateDataset(courses, links)
	assert.Nil(t, err)
}
