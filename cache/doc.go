// Package cache contains concrete implementations of core.Cache. The Tiered
// store composes a shared remote tier (Redis) with a process-local fallback
// behind one interface; call sites never branch on which tier is active.
// Entries carry a TTL drawn from one of the fixed classes below; callers
// select the class, the layer does not infer it.
package cache

import "time"

// TTL classes, fixed per data kind.
const (
	// TTLKnowledgeBase covers the indexed knowledge chunk snapshot.
	TTLKnowledgeBase = 15 * time.Minute
	// TTLReply covers cached generated replies.
	TTLReply = 5 * time.Minute
	// TTLSession covers cached session data.
	TTLSession = 30 * time.Minute
)
