package core

import (
	"context"
	"time"
)

// Cache is a best-effort tiered key/value store with per-entry TTL. A miss is
// a valid outcome, never an error: implementations absorb backend failures
// internally (logging them) so no caller ever fails because the cache is
// unavailable.
type Cache interface {
	// Get returns the stored value and true, or nil and false when the key is
	// absent or its entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores the value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes the key if present.
	Delete(ctx context.Context, key string)
}

// SessionStore persists the ordered, append-only turn history of each call.
// Unlike Cache it is durable: the history must survive a process restart.
type SessionStore interface {
	// Append adds a turn at the end of the call's history, enforcing the turn
	// cap by dropping the oldest turns first.
	Append(callID string, role Role, content string) error
	// Read returns the call's ordered turns, or an empty slice when none
	// exist. A corrupt persisted record is treated as empty, not an error.
	Read(callID string) ([]Turn, error)
	// Delete removes the call's history.
	Delete(callID string) error
	// Sweep deletes all records last modified more than maxAge ago and
	// reports how many were removed.
	Sweep(maxAge time.Duration) (int, error)
}

// ConversationTracker owns per-call in-memory metadata: current state,
// interruption and booking counters, observed objection categories and the
// last-interaction timestamp. It shares the call identifier space with
// SessionStore but has an independent lifecycle; the orchestrator keeps the
// two consistent.
type ConversationTracker interface {
	Initialize(callID string, metadata map[string]string)
	// MergeMetadata overlays metadata onto an existing record without
	// resetting state or counters. Unknown calls are ignored.
	MergeMetadata(callID string, metadata map[string]string)
	Transition(callID string, state CallState)
	// RecordInterruption increments the interruption counter and reports
	// whether the in-flight reply should be abandoned (true from the second
	// interruption on). The counter is never reset for the life of the call.
	RecordInterruption(callID string) bool
	// RecordBookingAttempt increments and returns the booking attempt count.
	RecordBookingAttempt(callID string) int
	// RecordObjection adds a category to the call's objection set.
	RecordObjection(callID string, category string)
	// IsStale reports whether the call has seen no interaction within
	// timeout, or has no record at all.
	IsStale(callID string, timeout time.Duration) bool
	// Cleanup removes the call's record.
	Cleanup(callID string)
}

// KnowledgeBase answers "most relevant background context for this query".
// Retrieve returns a formatted context block of ranked chunks, or the empty
// string when nothing relevant is indexed.
type KnowledgeBase interface {
	Retrieve(ctx context.Context, query string) string
}

// Generator is the external language-generation collaborator. An empty reply
// with a nil error is a legal "nothing to say" outcome, distinct from a
// failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer is the external text-to-speech collaborator. Empty audio with a
// nil error is distinct from a failure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioStore persists synthesized audio under fresh unique references so the
// transport can play them back.
type AudioStore interface {
	// Save stores the audio bytes for the call and returns a playable
	// reference.
	Save(callID string, data []byte) (string, error)
	// Get returns the audio bytes for a reference.
	Get(ref string) ([]byte, error)
	// Delete removes a stored reference.
	Delete(ref string) error
	// Sweep removes audio older than maxAge and reports how many entries
	// were removed.
	Sweep(maxAge time.Duration) (int, error)
}

// Dialer triggers an outbound call through the telephony vendor, pointing its
// call-start callback at the transport. It returns the vendor's call
// identifier.
type Dialer interface {
	Dial(ctx context.Context, destination, callbackURL string) (string, error)
}
