package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// MusicEventPrefix namespaces events published by the music system.
const MusicEventPrefix = "music."

// MusicEvent is the payload of a music.* event.
type MusicEvent struct {
	Cue       string
	QueueSize int
}

// EventQueue is a FIFO of events published during the current frame. The
// world clears it at the start of every update, so events stay readable
// between frames.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Items returns the queued events without removing them.
func (q *EventQueue) Items() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
