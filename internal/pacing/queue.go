package pacing

import "github.com/mbarlow/groundswell/internal/store"

// actionHeap implements heap.Interface over queued actions.
// Higher priority items surface first (max-heap by priority).
// For equal priority, earlier items (by QueuedAt) surface first (FIFO within priority).
type actionHeap []*store.QueuedAction

// Len returns the number of items in the queue.
func (h actionHeap) Len() int { return len(h) }

// Less reports whether item i should surface before item j.
// Higher priority first; for equal priority, earlier enqueue time first.
func (h actionHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority // Higher priority first
	}
	if !h[i].QueuedAt.Equal(h[j].QueuedAt) {
		return h[i].QueuedAt.Before(h[j].QueuedAt) // Earlier first (FIFO)
	}
	return h[i].ID < h[j].ID
}

// Swap swaps the items at indices i and j.
func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push adds an item to the queue.
func (h *actionHeap) Push(x any) {
	*h = append(*h, x.(*store.QueuedAction))
}

// Pop removes and returns the last item (heap internals move the best
// item there first).
func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	*h = old[0 : n-1]
	return item
}

// peek returns the highest priority item without removing it.
func (h actionHeap) peek() *store.QueuedAction {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
