package music

// EventType identifies a transition reported to the listener.
type EventType int

const (
	EventTrackStarted      EventType = iota // Track started at full volume without a fade
	EventTrackPromoted                      // Queued track moved into the current slot
	EventTrackQueued                        // Track appended to the queue
	EventCrossFadeStarted                   // Incoming track began fading in
	EventCrossFadeFinished                  // Incoming track reached full volume
	EventTrackAborted                       // Slotted track stopped before finishing its transition
	EventQueueCleared                       // Queue emptied by an explicit play or stop
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackPromoted:
		return "track_promoted"
	case EventTrackQueued:
		return "track_queued"
	case EventCrossFadeStarted:
		return "crossfade_started"
	case EventCrossFadeFinished:
		return "crossfade_finished"
	case EventTrackAborted:
		return "track_aborted"
	case EventQueueCleared:
		return "queue_cleared"
	default:
		return "unknown"
	}
}

// Event is emitted synchronously from Play, Queue, Update and Stop.
type Event struct {
	Type      EventType
	Track     Track // nil for EventQueueCleared
	QueueSize int   // queue length after the transition
}
