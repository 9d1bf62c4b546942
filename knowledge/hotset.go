package knowledge

import "sync"

// hotSet is a bounded in-process cache of recently relevant chunks keyed by
// chunk content. Eviction is insertion-order (oldest inserted first), not
// LRU: the hot-set is advisory, the full cached collection stays
// authoritative. Safe for concurrent use.
type hotSet struct {
	mu    sync.Mutex
	limit int
	order []string
	byKey map[string]Chunk
}

func newHotSet(limit int) *hotSet {
	return &hotSet{limit: limit, byKey: make(map[string]Chunk, limit)}
}

// add inserts the chunk (with its attached score), evicting the oldest entry
// on overflow. Re-adding existing content refreshes the stored score without
// changing its insertion position.
func (h *hotSet) add(c Chunk) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.byKey[c.Content]; exists {
		h.byKey[c.Content] = c
		return
	}
	if len(h.order) >= h.limit {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.byKey, oldest)
	}
	h.order = append(h.order, c.Content)
	h.byKey[c.Content] = c
}

// matching returns, in insertion order, the chunks whose keyword set
// intersects the query keyword set.
func (h *hotSet) matching(querySet map[string]struct{}) []Chunk {
	h.mu.Lock()
	defer h.mu.Unlock()
	var hits []Chunk
	for _, key := range h.order {
		c := h.byKey[key]
		if c.intersectionScore(querySet) > 0 {
			hits = append(hits, c)
		}
	}
	return hits
}

func (h *hotSet) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
