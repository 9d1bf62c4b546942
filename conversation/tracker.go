package conversation

import (
	"sync"
	"time"

	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
)

// interruptionStopThreshold is the interruption count at which the
// orchestrator should abandon the in-flight reply and re-prompt the caller.
const interruptionStopThreshold = 2

// DefaultStaleTimeout is the inactivity window after which a call is judged
// stale.
const DefaultStaleTimeout = 5 * time.Minute

// Record is the mutable metadata kept for one call. Callers receive copies;
// the tracker owns the canonical record.
type Record struct {
	CallID          string
	State           core.CallState
	Metadata        map[string]string
	Interruptions   int
	BookingAttempts int
	Objections      map[string]struct{}
	LastInteraction time.Time
}

// Tracker is the in-memory core.ConversationTracker implementation guarded by
// an RWMutex over the call map. Transitions are unconditional overwrites:
// states are advisory bookkeeping for the orchestrator and analytics, not a
// hard guard against invalid sequencing.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*Record
	logger  logging.Logger
	// now is swappable for tests.
	now func() time.Time
}

// Options configure a Tracker.
type Options struct {
	// Logger receives state transition diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewTracker constructs an empty tracker.
func NewTracker(optFns ...func(o *Options)) *Tracker {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tracker{records: make(map[string]*Record), logger: opts.Logger, now: time.Now}
}

var _ core.ConversationTracker = (*Tracker)(nil)

// Initialize creates a fresh record in the greeting state with zeroed
// counters and an empty objection set. An existing record for the same call
// is overwritten.
func (t *Tracker) Initialize(callID string, metadata map[string]string) {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[callID] = &Record{
		CallID:          callID,
		State:           core.StateGreeting,
		Metadata:        md,
		Objections:      make(map[string]struct{}),
		LastInteraction: t.now(),
	}
}

// MergeMetadata overlays metadata onto an existing record, new values winning
// on key collision, and refreshes the last-interaction timestamp. State and
// counters are untouched. Unknown calls are ignored.
func (t *Tracker) MergeMetadata(callID string, metadata map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[callID]
	if !ok {
		return
	}
	for k, v := range metadata {
		rec.Metadata[k] = v
	}
	rec.LastInteraction = t.now()
}

// Transition overwrites the call's state and refreshes the last-interaction
// timestamp. Unknown calls are ignored.
func (t *Tracker) Transition(callID string, state core.CallState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[callID]
	if !ok {
		return
	}
	t.logger.Debug("call state transition", "call_id", callID, "from", rec.State, "to", state)
	rec.State = state
	rec.LastInteraction = t.now()
}

// RecordInterruption increments the interruption counter and reports whether
// the orchestrator should stop the in-flight reply (true once the counter
// reaches the threshold). The counter is never reset for the life of the call.
func (t *Tracker) RecordInterruption(callID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[callID]
	if !ok {
		return false
	}
	rec.Interruptions++
	rec.LastInteraction = t.now()
	return rec.Interruptions >= interruptionStopThreshold
}

// RecordBookingAttempt increments and returns the booking attempt count.
func (t *Tracker) RecordBookingAttempt(callID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[callID]
	if !ok {
		return 0
	}
	rec.BookingAttempts++
	rec.LastInteraction = t.now()
	return rec.BookingAttempts
}

// RecordObjection adds a category to the call's distinct objection set.
func (t *Tracker) RecordObjection(callID string, category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[callID]
	if !ok {
		return
	}
	rec.Objections[category] = struct{}{}
	rec.LastInteraction = t.now()
}

// IsStale reports whether the call has seen no interaction within timeout.
// A missing record counts as stale.
func (t *Tracker) IsStale(callID string, timeout time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[callID]
	if !ok {
		return true
	}
	return t.now().Sub(rec.LastInteraction) > timeout
}

// Cleanup removes the call's record. Called on call teardown or by the
// staleness sweep.
func (t *Tracker) Cleanup(callID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, callID)
}

// SweepStale removes every record whose last interaction is older than
// timeout and reports how many were removed.
func (t *Tracker) SweepStale(timeout time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-timeout)
	removed := 0
	for id, rec := range t.records {
		if rec.LastInteraction.Before(cutoff) {
			delete(t.records, id)
			removed++
		}
	}
	if removed > 0 {
		t.logger.Info("stale conversation sweep", "removed", removed)
	}
	return removed
}

// Snapshot returns a copy of the call's record for analytics and tests.
func (t *Tracker) Snapshot(callID string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[callID]
	if !ok {
		return Record{}, false
	}
	cp := *rec
	cp.Metadata = make(map[string]string, len(rec.Metadata))
	for k, v := range rec.Metadata {
		cp.Metadata[k] = v
	}
	cp.Objections = make(map[string]struct{}, len(rec.Objections))
	for k := range rec.Objections {
		cp.Objections[k] = struct{}{}
	}
	return cp, true
}

// Len returns how many calls are currently tracked.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}
