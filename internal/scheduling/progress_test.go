package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressSinkRecordsPlacementsAndPercent(t *testing.T) {
	restore := currentTime
	now := date(2025, 10, 13)
	currentTime = func() time.Time { return now }
	defer func() { currentTime = restore }()

	sink := NewProgressSink(4)
	sink.Start()
	require.Equal(t, StateRunning, sink.Snapshot().State)

	now = now.Add(10 * time.Second)
	sink.RecordPlacement(PlacedSessionSummary{Course: "Algorithms", Type: CourseTD})

	snap := sink.Snapshot()
	assert.Equal(t, 1, snap.Placed)
	assert.Equal(t, 25.0, snap.Percent)
	assert.Equal(t, 30.0, snap.ETASeconds) // 10s elapsed / 1 placed * 3 remaining

	sink.Finish(StateSuccess, "done")
	assert.Equal(t, StateSuccess, sink.Snapshot().State)
}

func TestProgressSinkSnapshotIsCopyOnRead(t *testing.T) {
	sink := NewProgressSink(1)
	sink.Start()
	sink.RecordPlacement(PlacedSessionSummary{Course: "Algorithms"})

	snap := sink.Snapshot()
	snap.CurrentWeekSessions[0].Course = "mutated"

	fresh := sink.Snapshot()
	assert.Equal(t, "Algorithms", fresh.CurrentWeekSessions[0].Course)
}
