package internal

import "container/heap"

// ActionHeap orders pending actions by due time, then by insertion sequence,
// so actions due at the same instant run in the order they were scheduled.
type ActionHeap struct {
	items []*Action
}

func NewHeap() *ActionHeap {
	return &ActionHeap{items: make([]*Action, 0, 16)}
}

func (h *ActionHeap) Len() int { return len(h.items) }

func (h *ActionHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.due.Equal(b.due) {
		return a.seq < b.seq
	}
	return a.due.Before(b.due)
}

func (h *ActionHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push and Pop satisfy heap.Interface, use Insert and Shift instead.
func (h *ActionHeap) Push(x any) {
	a := x.(*Action)
	a.index = len(h.items)
	h.items = append(h.items, a)
}

func (h *ActionHeap) Pop() any {
	n := len(h.items)
	a := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	a.index = -1
	return a
}

func (h *ActionHeap) Insert(a *Action) {
	heap.Push(h, a)
}

// Peek returns the earliest action without removing it.
func (h *ActionHeap) Peek() *Action {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

func (h *ActionHeap) Shift() *Action {
	if len(h.items) == 0 {
		return nil
	}
	return heap.Pop(h).(*Action)
}

func (h *ActionHeap) Remove(a *Action) bool {
	if a.index < 0 || a.index >= len(h.items) || h.items[a.index] != a {
		return false
	}
	heap.Remove(h, a.index)
	return true
}
