package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestsTDSingleTeacher(t *testing.T) {
	course := Course{ID: "c1", Type: CourseTD, SessionsRequired: 4}
	link := CourseClassLink{ID: "l1", CourseID: "c1", ClassGroupID: "a1", GroupCount: 1, TeacherAID: "t1"}

	reqs := BuildRequests([]Course{course}, []CourseClassLink{link}, nil)

	require.Len(t, reqs, 4)
	for _, r := range reqs {
		assert.Equal(t, CourseTD, r.Type)
		assert.Equal(t, "t1", r.PreferredTeacherID)
		assert.Empty(t, r.SecondaryTeacherID)
	}
}

func TestBuildRequestsSubtractsAlreadyPersisted(t *testing.T) {
	course := Course{ID: "c1", Type: CourseTD, SessionsRequired: 4}
	link := CourseClassLink{ID: "l1", CourseID: "c1", ClassGroupID: "a1", GroupCount: 1, TeacherAID: "t1"}
	existing := []Session{
		{ID: "s1", CourseID: "c1", ClassGroupID: "a1", Type: CourseTD},
		{ID: "s2", CourseID: "c1", ClassGroupID: "a1", Type: CourseTD},
	}

	reqs := BuildRequests([]Course{course}, []CourseClassLink{link}, existing)

	assert.Len(t, reqs, 2)
}

func TestBuildRequestsSAERequiresTwoTeachers(t *testing.T) {
	course := Course{ID: "c1", Type: CourseSAE, SessionsRequired: 2}
	link := CourseClassLink{ID: "l1", CourseID: "c1", ClassGroupID: "a1", GroupCount: 1, TeacherAID: "t1", TeacherBID: "t2"}

	reqs := BuildRequests([]Course{course}, []CourseClassLink{link}, nil)

	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, "t1", r.PreferredTeacherID)
		assert.Equal(t, "t2", r.SecondaryTeacherID)
	}
}

func TestBuildRequestsTPSplitProducesTwoSeries(t *testing.T) {
	course := Course{ID: "c1", Type: CourseTP, SessionsRequired: 4}
	link := CourseClassLink{
		ID: "l1", CourseID: "c1", ClassGroupID: "a1", GroupCount: 2,
		TeacherAID: "t1", TeacherBID: "t2", SubgroupA: "A", SubgroupB: "B",
	}

	reqs := BuildRequests([]Course{course}, []CourseClassLink{link}, nil)

	require.Len(t, reqs, 8)
	var subgroupA, subgroupB int
	for _, r := range reqs {
		switch r.Subgroup {
		case "A":
			subgroupA++
			assert.Equal(t, "t1", r.PreferredTeacherID)
		case "B":
			subgroupB++
			assert.Equal(t, "t2", r.PreferredTeacherID)
		}
	}
	assert.Equal(t, 4, subgroupA)
	assert.Equal(t, 4, subgroupB)
}

func TestBuildRequestsCMSharesSessionAcrossLinks(t *testing.T) {
	course := Course{ID: "c1", Type: CourseCM, SessionsRequired: 3}
	links := []CourseClassLink{
		{ID: "l1", CourseID: "c1", ClassGroupID: "a1", GroupCount: 1, TeacherAID: "t1"},
		{ID: "l2", CourseID: "c1", ClassGroupID: "a2", GroupCount: 1, TeacherAID: "t1"},
	}

	reqs := BuildRequests([]Course{course}, links, nil)

	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.ElementsMatch(t, []string{"a1", "a2"}, r.AttendingClassGroupIDs)
	}
}
