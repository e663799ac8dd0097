// Package music switches between music tracks for a game loop: it crossfades
// an outgoing track into an incoming one, sequences queued tracks once the
// current one ends, and resolves play requests that arrive mid-fade.
//
// A System is driven by a single Update call per frame. It has no internal
// locking and must only be used from the goroutine running the frame loop.
package music

import (
	"math"

	"github.com/milk9111/musicbox/common"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/eapache/queue.v1"
)

// DefaultCrossFadeDuration is the crossfade length in seconds used when none
// is configured.
const DefaultCrossFadeDuration = 2.0

// Track is a playable audio handle. The System is the only caller of Play,
// Stop and SetVolume while the track sits in one of its slots. Tracks are
// compared by identity, so implementations should be pointer types.
type Track interface {
	Play()
	Stop()
	IsPlaying() bool
	SetVolume(v float64)
}

// Option configures a System.
type Option func(*System)

// WithCrossFadeDuration sets the crossfade length in seconds. Non-positive
// values fall back to DefaultCrossFadeDuration.
func WithCrossFadeDuration(seconds float64) Option {
	return func(s *System) {
		s.duration = sanitizeDuration(seconds)
	}
}

// WithLogger replaces the logger derived from the global zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *System) {
		s.log = logger
	}
}

// WithListener registers a callback invoked for every transition.
func WithListener(fn func(Event)) Option {
	return func(s *System) {
		s.listener = fn
	}
}

// System owns the current slot, the crossfade pair and the play queue.
type System struct {
	duration float64
	state    slot
	pending  *queue.Queue
	log      zerolog.Logger
	listener func(Event)
}

// New creates an idle System with an empty queue.
func New(opts ...Option) *System {
	s := &System{
		duration: DefaultCrossFadeDuration,
		state:    &idle{},
		pending:  queue.New(),
		log:      zlog.Logger.With().Str("component", "music").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Play starts t immediately, overriding anything queued. With nothing
// playing t starts at full volume; otherwise it crossfades in. A request
// arriving mid-fade keeps whichever of the fading pair is louder and fades
// from it into t.
func (s *System) Play(t Track) {
	if t == nil {
		s.log.Warn().Msg("play ignored nil track")
		return
	}

	s.clearQueue()

	switch st := s.state.(type) {
	case *idle:
		if st.track == nil {
			s.start(t, EventTrackStarted)
			return
		}
		if st.track == t {
			if !t.IsPlaying() {
				t.Play()
			}
			t.SetVolume(1)
			return
		}
		s.crossFade(st.track, t, nil)

	case *fading:
		if t == st.incoming {
			return
		}
		if st.elapsed < s.duration/2 {
			dropped := st.incoming
			dropped.Stop()
			if t == st.outgoing {
				t.SetVolume(1)
				s.state = &idle{track: t}
				s.emit(EventTrackAborted, dropped)
				return
			}
			s.crossFade(st.outgoing, t, dropped)
			return
		}
		st.outgoing.Stop()
		s.crossFade(st.incoming, t, st.outgoing)
	}
}

// Queue plays t once the current track has stopped. If nothing is playing t
// starts right away at full volume.
func (s *System) Queue(t Track) {
	if t == nil {
		s.log.Warn().Msg("queue ignored nil track")
		return
	}

	if s.free() && s.pending.Length() == 0 {
		s.start(t, EventTrackStarted)
		return
	}

	s.pending.Add(t)
	s.emit(EventTrackQueued, t)
	s.promote()
}

// Update advances the active crossfade by dt seconds, or promotes the head
// of the queue when the current track has stopped. Negative dt counts as 0.
func (s *System) Update(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	switch st := s.state.(type) {
	case *fading:
		st.elapsed = common.Clamp(st.elapsed+dt, 0, s.duration)
		t := st.elapsed / s.duration
		st.outgoing.SetVolume(common.Lerp(1, 0, t))
		st.incoming.SetVolume(t)
		if t < 1 {
			return
		}
		st.outgoing.Stop()
		s.state = &idle{track: st.incoming}
		s.emit(EventCrossFadeFinished, st.incoming)

	case *idle:
		s.promote()
	}
}

// Stop silences every slotted track and empties the queue.
func (s *System) Stop() {
	var stopped []Track
	switch st := s.state.(type) {
	case *idle:
		if st.track != nil {
			stopped = append(stopped, st.track)
		}
	case *fading:
		stopped = append(stopped, st.outgoing, st.incoming)
	}
	s.state = &idle{}
	cleared := s.dropQueue()

	for _, t := range stopped {
		t.Stop()
	}
	if cleared {
		s.emit(EventQueueCleared, nil)
	}
	for _, t := range stopped {
		s.emit(EventTrackAborted, t)
	}
}

// ClearQueue drops every queued track without touching the playing ones.
func (s *System) ClearQueue() {
	s.clearQueue()
}

// QueueSize returns the number of tracks waiting to play.
func (s *System) QueueSize() int {
	return s.pending.Length()
}

// Current returns the track in the current slot. During a crossfade this is
// the outgoing track.
func (s *System) Current() Track {
	return s.state.current()
}

// Incoming returns the track fading in, or nil when no crossfade is active.
func (s *System) Incoming() Track {
	if st, ok := s.state.(*fading); ok {
		return st.incoming
	}
	return nil
}

// Fading reports whether a crossfade is in progress.
func (s *System) Fading() bool {
	_, ok := s.state.(*fading)
	return ok
}

// Progress returns the crossfade position in [0, 1], or 0 when idle.
func (s *System) Progress() float64 {
	if st, ok := s.state.(*fading); ok {
		return st.elapsed / s.duration
	}
	return 0
}

// CrossFadeDuration returns the crossfade length in seconds.
func (s *System) CrossFadeDuration() float64 {
	return s.duration
}

// SetCrossFadeDuration changes the crossfade length. An active crossfade
// keeps its elapsed time, bounded to the new length, and applies it from the
// next Update.
func (s *System) SetCrossFadeDuration(seconds float64) {
	s.duration = sanitizeDuration(seconds)
	if st, ok := s.state.(*fading); ok {
		st.elapsed = common.Clamp(st.elapsed, 0, s.duration)
	}
}

func (s *System) free() bool {
	st, ok := s.state.(*idle)
	return ok && (st.track == nil || !st.track.IsPlaying())
}

func (s *System) promote() {
	if !s.free() || s.pending.Length() == 0 {
		return
	}
	next, ok := s.pending.Remove().(Track)
	if !ok {
		return
	}
	s.start(next, EventTrackPromoted)
}

func (s *System) start(t Track, evt EventType) {
	t.Play()
	t.SetVolume(1)
	s.state = &idle{track: t}
	s.emit(evt, t)
}

// crossFade fades from outgoing into incoming. aborted, when set, is a track
// the caller already stopped; it is reported once the new state is in place.
func (s *System) crossFade(outgoing, incoming, aborted Track) {
	incoming.Play()
	incoming.SetVolume(0)
	s.state = &fading{outgoing: outgoing, incoming: incoming}
	if aborted != nil {
		s.emit(EventTrackAborted, aborted)
	}
	s.emit(EventCrossFadeStarted, incoming)
}

func (s *System) clearQueue() {
	if s.dropQueue() {
		s.emit(EventQueueCleared, nil)
	}
}

func (s *System) dropQueue() bool {
	if s.pending.Length() == 0 {
		return false
	}
	s.pending = queue.New()
	return true
}

func (s *System) emit(typ EventType, t Track) {
	evt := Event{Type: typ, Track: t, QueueSize: s.pending.Length()}
	s.log.Debug().Str("event", typ.String()).Int("queue", evt.QueueSize).Msg("music transition")
	if s.listener != nil {
		s.listener(evt)
	}
}

func sanitizeDuration(seconds float64) float64 {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return DefaultCrossFadeDuration
	}
	return seconds
}
