package alert

import "sync"

// DefaultHistoryLimit bounds the in-memory alert history.
const DefaultHistoryLimit = 100

// History is a bounded in-memory alert log, newest first. When the bound is
// reached the oldest entries are evicted silently.
type History struct {
	mu     sync.RWMutex
	alerts []Alert
	limit  int
}

// NewHistory creates a History with the given bound. A non-positive limit
// falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records alerts, newest first, trimming past the bound.
func (h *History) Append(alerts ...Alert) {
	if len(alerts) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Prepend the batch as-is so the most recent cycle's alerts come
	// first while keeping their zone order.
	merged := make([]Alert, 0, len(alerts)+len(h.alerts))
	merged = append(merged, alerts...)
	merged = append(merged, h.alerts...)

	if len(merged) > h.limit {
		merged = merged[:h.limit]
	}
	h.alerts = merged
}

// Recent returns up to n alerts, newest first. A non-positive n returns all.
func (h *History) Recent(n int) []Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.alerts) {
		n = len(h.alerts)
	}

	out := make([]Alert, n)
	copy(out, h.alerts[:n])
	return out
}

// Len returns the number of alerts currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.alerts)
}
