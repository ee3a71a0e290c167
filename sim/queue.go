package sim

import "container/heap"

// EventQueue is a min-priority queue over events with deterministic ordering.
// Ordering: timestamp → event ID. The secondary key makes simultaneous
// events pop in insertion order, which replay determinism depends on.
type EventQueue struct {
	events []Event
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events: make([]Event, 0),
	}
	heap.Init(q)
	return q
}

// Len implements heap.Interface.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Less implements heap.Interface with deterministic ordering.
// Order by: timestamp → event ID.
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.Timestamp() != ej.Timestamp() {
		return ei.Timestamp() < ej.Timestamp()
	}
	return ei.EventID() < ej.EventID()
}

// Swap implements heap.Interface.
func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

// Push implements heap.Interface.
func (q *EventQueue) Push(x interface{}) {
	q.events = append(q.events, x.(Event))
}

// Pop implements heap.Interface.
func (q *EventQueue) Pop() interface{} {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue. Schedule never fails.
func (q *EventQueue) Schedule(e Event) {
	heap.Push(q, e)
}

// PopNext removes and returns the earliest event, or nil when the queue is
// empty. An empty queue is how a run signals completion.
func (q *EventQueue) PopNext() Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(Event)
}

// PeekTime returns the timestamp of the earliest event without removing it.
// The second return is false when the queue is empty.
func (q *EventQueue) PeekTime() (uint64, bool) {
	if q.Len() == 0 {
		return 0, false
	}
	return q.events[0].Timestamp(), true
}
