package component

// RequestMode selects how a MusicRequest reaches the transition engine.
type RequestMode int

const (
	// ModePlay crossfades to the cue now and drops anything queued.
	ModePlay RequestMode = iota
	// ModeQueue plays the cue after the current one ends.
	ModeQueue
	// ModeStop silences all music and clears the queue. Cue is ignored.
	ModeStop
)

func (m RequestMode) String() string {
	switch m {
	case ModePlay:
		return "play"
	case ModeQueue:
		return "queue"
	case ModeStop:
		return "stop"
	default:
		return "unknown"
	}
}

// MusicRequest is a one-shot request for global music playback. Requests
// made during a frame are applied in the order they were created.
type MusicRequest struct {
	Cue  string
	Mode RequestMode
}

var MusicRequestComponent = NewComponent[MusicRequest]("music_request")
