package music

// slot is the engine's crossfade state: either idle with at most one current
// track, or fading from an outgoing track to an incoming one.
type slot interface {
	current() Track
}

type idle struct {
	track Track
}

func (s *idle) current() Track {
	return s.track
}

type fading struct {
	outgoing Track
	incoming Track
	elapsed  float64
}

func (s *fading) current() Track {
	return s.outgoing
}
