package music

// fakeTrack records every call the engine makes. playing follows Play and
// Stop unless a test finishes the track by hand.
type fakeTrack struct {
	name    string
	playing bool
	plays   int
	stops   int
	volumes []float64
}

func newFake(name string) *fakeTrack {
	return &fakeTrack{name: name}
}

func (f *fakeTrack) Play() {
	f.plays++
	f.playing = true
}

func (f *fakeTrack) Stop() {
	f.stops++
	f.playing = false
}

func (f *fakeTrack) IsPlaying() bool {
	return f.playing
}

func (f *fakeTrack) SetVolume(v float64) {
	f.volumes = append(f.volumes, v)
}

// finish simulates the track reaching its natural end.
func (f *fakeTrack) finish() {
	f.playing = false
}

// volume returns the last volume set, or -1 if none was set.
func (f *fakeTrack) volume() float64 {
	if len(f.volumes) == 0 {
		return -1
	}
	return f.volumes[len(f.volumes)-1]
}
