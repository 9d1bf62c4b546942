package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/core"
)

func TestTracker_InitializeStartsInGreeting(t *testing.T) {
	tr := NewTracker()
	tr.Initialize("call-1", map[string]string{"from": "+15550001111"})

	rec, ok := tr.Snapshot("call-1")
	require.True(t, ok)
	assert.Equal(t, core.StateGreeting, rec.State)
	assert.Zero(t, rec.Interruptions)
	assert.Zero(t, rec.BookingAttempts)
	assert.Empty(t, rec.Objections)
	assert.Equal(t, "+15550001111", rec.Metadata["from"])
}

func TestTracker_MergeMetadataKeepsStateAndCounters(t *testing.T) {
	tr := NewTracker()
	tr.Initialize("call-1", map[string]string{"from": "+15550001111", "lead": "web"})
	tr.Transition("call-1", core.StateSpeaking)
	tr.RecordBookingAttempt("call-1")

	tr.MergeMetadata("call-1", map[string]string{"lead": "referral", "name": "Alex"})

	rec, ok := tr.Snapshot("call-1")
	require.True(t, ok)
	assert.Equal(t, core.StateSpeaking, rec.State)
	assert.Equal(t, 1, rec.BookingAttempts)
	assert.Equal(t, "+15550001111", rec.Metadata["from"])
	assert.Equal(t, "referral", rec.Metadata["lead"])
	assert.Equal(t, "Alex", rec.Metadata["name"])

	// unknown call: no record materializes
	tr.MergeMetadata("ghost", map[string]string{"k": "v"})
	_, ok = tr.Snapshot("ghost")
	assert.False(t, ok)
}

func TestTracker_TransitionOverwritesUnconditionally(t *testing.T) {
	tr := NewTracker()
	tr.Initialize("call-1", nil)

	// no transition table: any state-to-state overwrite is accepted
	tr.Transition("call-1", core.StateSpeaking)
	tr.Transition("call-1", core.StateGreeting)
	rec, _ := tr.Snapshot("call-1")
	assert.Equal(t, core.StateGreeting, rec.State)
}

func TestTracker_RecordInterruption(t *testing.T) {
	tr := NewTracker()
	tr.Initialize("call-1", nil)

	assert.False(t, tr.RecordInterruption("call-1"))
	assert.True(t, tr.RecordInterruption("call-1"))
	// counter is never reset; it keeps signaling stop
	assert.True(t, tr.RecordInterruption("call-1"))
}

func TestTracker_BookingAndObjections(t *testing.T) {
	tr := NewTracker()
	tr.Initialize("call-1", nil)

	assert.Equal(t, 1, tr.RecordBookingAttempt("call-1"))
	assert.Equal(t, 2, tr.RecordBookingAttempt("call-1"))

	tr.RecordObjection("call-1", "price")
	tr.RecordObjection("call-1", "price")
	tr.RecordObjection("call-1", "time")
	rec, _ := tr.Snapshot("call-1")
	assert.Len(t, rec.Objections, 2)
}

func TestTracker_IsStale(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }
	tr.Initialize("call-1", nil)

	assert.False(t, tr.IsStale("call-1", DefaultStaleTimeout))
	now = now.Add(6 * time.Minute)
	assert.True(t, tr.IsStale("call-1", DefaultStaleTimeout))

	// missing record counts as stale
	assert.True(t, tr.IsStale("never-seen", DefaultStaleTimeout))
}

func TestTracker_CleanupAndSweep(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }

	tr.Initialize("old", nil)
	now = now.Add(10 * time.Minute)
	tr.Initialize("fresh", nil)

	assert.Equal(t, 1, tr.SweepStale(DefaultStaleTimeout))
	_, ok := tr.Snapshot("old")
	assert.False(t, ok)

	tr.Cleanup("fresh")
	assert.Zero(t, tr.Len())
}

func TestTracker_UnknownCallOperationsAreNoOps(t *testing.T) {
	tr := NewTracker()
	tr.Transition("ghost", core.StateSpeaking)
	assert.False(t, tr.RecordInterruption("ghost"))
	assert.Zero(t, tr.RecordBookingAttempt("ghost"))
	tr.RecordObjection("ghost", "price")
	tr.Cleanup("ghost")
	assert.Zero(t, tr.Len())
}
