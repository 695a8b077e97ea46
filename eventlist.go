package desim

import "container/heap"

// eventList is the future-event set: a time-ordered priority container with
// stable FIFO tie-break and O(log n) erase/reschedule.
//
// Grounded on timerHeap (loop.go: a container/heap.Interface
// implementation over a slice of timers), extended with a map from event id
// to heap index so that erase-by-identity and rekey-for-reschedule are both
// possible: a plain binary heap gives no way to locate an arbitrary element
// by identity in better than linear time.
type eventList struct {
	items []*Event
	index map[uint64]int // event id -> position in items
	seqs  map[uint64]uint64
	seq   uint64 // insertion-order tie-break counter, next value to assign
}

func newEventList() *eventList {
	return &eventList{
		index: make(map[uint64]int),
		seqs:  make(map[uint64]uint64),
	}
}

func (l *eventList) Len() int { return len(l.items) }

func (l *eventList) Less(i, j int) bool {
	a, b := l.items[i], l.items[j]
	if a.FireTime != b.FireTime {
		return a.FireTime < b.FireTime
	}
	// Ties are broken by insertion order: stacking of co-timed events is
	// semantically significant ("lifecycle events often
	// schedule 'immediate' events").
	return l.seqs[a.id] < l.seqs[b.id]
}

func (l *eventList) Swap(i, j int) {
	l.items[i], l.items[j] = l.items[j], l.items[i]
	l.index[l.items[i].id] = i
	l.index[l.items[j].id] = j
}

func (l *eventList) Push(x any) {
	evt := x.(*Event)
	l.index[evt.id] = len(l.items)
	l.seqs[evt.id] = l.seq
	l.seq++
	l.items = append(l.items, evt)
}

func (l *eventList) Pop() any {
	n := len(l.items)
	evt := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]
	delete(l.index, evt.id)
	delete(l.seqs, evt.id)
	return evt
}

// push inserts evt, assigning it an insertion-order tie-break value.
func (l *eventList) push(evt *Event) {
	heap.Push(l, evt)
}

// popMin removes and returns the event with the smallest (FireTime, seq).
// Returns nil if the set is empty.
func (l *eventList) popMin() *Event {
	if l.Len() == 0 {
		return nil
	}
	return heap.Pop(l).(*Event)
}

// peekMin returns the minimum event without removing it, or nil if empty.
func (l *eventList) peekMin() *Event {
	if l.Len() == 0 {
		return nil
	}
	return l.items[0]
}

// erase removes a specific event by identity. Returns false (without
// mutating the set) if the event is not present — callers translate that
// into [ErrEventNotFound] at the boundary where it is a caller-visible
// anomaly ("removing an event not found" is a warning, not a
// hard error).
func (l *eventList) erase(evt *Event) bool {
	idx, ok := l.index[evt.id]
	if !ok {
		return false
	}
	heap.Remove(l, idx)
	return true
}

// rekey changes evt's FireTime and restores heap order in O(log n), without
// changing its identity. It assigns evt a fresh insertion-order value, so
// among co-timed events it is ordered as if erased and reinserted now. Used
// by reschedule.
func (l *eventList) rekey(evt *Event, newFireTime float64) bool {
	idx, ok := l.index[evt.id]
	if !ok {
		return false
	}
	evt.FireTime = newFireTime
	l.seqs[evt.id] = l.seq
	l.seq++
	heap.Fix(l, idx)
	return true
}

// clear empties the set.
func (l *eventList) clear() {
	l.items = l.items[:0]
	l.index = make(map[uint64]int)
	l.seqs = make(map[uint64]uint64)
	l.seq = 0
}
