package music

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortTime      = (1.0 / 8.0) * DefaultCrossFadeDuration
	halfCrossFade  = (4.0 / 8.0) * DefaultCrossFadeDuration
	underCrossFade = (7.0 / 8.0) * DefaultCrossFadeDuration
	longTime       = (40.0 / 8.0) * DefaultCrossFadeDuration
)

func newSystem(opts ...Option) *System {
	return New(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

func TestPlayStartsAtFullVolumeWhenIdle(t *testing.T) {
	s := newSystem()
	a := newFake("a")

	s.Play(a)
	s.Update(0)

	assert.Equal(t, 1, a.plays)
	assert.InDelta(t, 1, a.volume(), 1e-9)
	assert.False(t, s.Fading())
	assert.Same(t, a, s.Current())
}

func TestQueueStartsWhenNothingPlaying(t *testing.T) {
	s := newSystem()
	a := newFake("a")

	s.Queue(a)
	s.Update(0)

	assert.Equal(t, 1, a.plays)
	assert.InDelta(t, 1, a.volume(), 1e-9)
	assert.Equal(t, 0, s.QueueSize())
}

func TestQueueWaitsForCurrentTrack(t *testing.T) {
	cases := []struct {
		name       string
		finishA    bool
		wantBPlays int
		wantQueue  int
	}{
		{"current_playing", false, 0, 1},
		{"current_stopped", true, 1, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newSystem()
			a, b := newFake("a"), newFake("b")

			s.Play(a)
			s.Update(0)
			if c.finishA {
				a.finish()
			}
			s.Queue(b)
			s.Update(0)

			assert.Equal(t, 1, a.plays)
			assert.Equal(t, c.wantBPlays, b.plays)
			assert.Equal(t, c.wantQueue, s.QueueSize())
		})
	}
}

func TestPlayCrossFadesNewTrack(t *testing.T) {
	s := newSystem()
	a, b := newFake("a"), newFake("b")

	s.Play(a)
	s.Update(longTime)

	s.Play(b)
	require.True(t, s.Fading())
	assert.InDelta(t, 1, a.volume(), 1e-9, "outgoing volume untouched until the next update")
	assert.InDelta(t, 0, b.volume(), 1e-9)
	assert.Equal(t, 1, b.plays)

	s.Update(0)
	assert.InDelta(t, 1, a.volume(), 1e-9)
	assert.InDelta(t, 0, b.volume(), 1e-9)

	s.Update(halfCrossFade)
	assert.InDelta(t, 0.5, a.volume(), 1e-9)
	assert.InDelta(t, 0.5, b.volume(), 1e-9)

	s.Update(halfCrossFade)
	assert.InDelta(t, 0, a.volume(), 1e-9)
	assert.InDelta(t, 1, b.volume(), 1e-9)
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 0, b.stops)
	assert.False(t, s.Fading())
	assert.Same(t, b, s.Current())
	assert.Nil(t, s.Incoming())
}

func TestCrossFadeVolumesAreComplementaryAndMonotonic(t *testing.T) {
	steps := []struct {
		name string
		dts  []float64
	}{
		{"even_steps", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		{"frame_steps", []float64{1.0 / 60, 1.0 / 60, 1.0 / 60, 1.0 / 60, 1.0 / 30, 0.25}},
		{"uneven_steps", []float64{0.01, 0.5, 0.003, 0.7, 0.2}},
	}

	for _, c := range steps {
		t.Run(c.name, func(t *testing.T) {
			s := newSystem()
			out, in := newFake("out"), newFake("in")
			s.Play(out)
			s.Play(in)

			prevOut, prevIn := 1.0, 0.0
			for _, dt := range c.dts {
				s.Update(dt)
				require.True(t, s.Fading(), "fade should still be active")
				assert.InDelta(t, 1, out.volume()+in.volume(), 1e-9)
				assert.Less(t, out.volume(), prevOut)
				assert.Greater(t, in.volume(), prevIn)
				prevOut, prevIn = out.volume(), in.volume()
			}
		})
	}
}

func TestPlayWhenJustStartedFadingPseudoCrossFades(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")

	s.Play(a)
	s.Update(longTime)
	s.Play(b)
	s.Update(shortTime)

	s.Play(c)
	assert.Equal(t, 1, a.plays)
	assert.Equal(t, 0, a.stops)
	assert.Equal(t, 1, b.stops)
	assert.Equal(t, 1, c.plays)
	assert.InDelta(t, 0, c.volume(), 1e-9)
	assert.Same(t, a, s.Current())
	assert.Same(t, c, s.Incoming())

	s.Update(0)
	assert.GreaterOrEqual(t, a.volume(), 0.5)
	assert.InDelta(t, 0, c.volume(), 1e-9)
}

func TestPlayWhenAlmostFinishedFadingPseudoCrossFades(t *testing.T) {
	cases := []struct {
		name    string
		elapsed float64
	}{
		{"under_crossfade", underCrossFade},
		{"exactly_half", halfCrossFade},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSystem()
			a, b, c := newFake("a"), newFake("b"), newFake("c")

			s.Play(a)
			s.Update(longTime)
			s.Play(b)
			s.Update(tc.elapsed)

			s.Play(c)
			assert.Equal(t, 1, a.stops)
			assert.Equal(t, 1, b.plays)
			assert.Equal(t, 0, b.stops)
			assert.Equal(t, 1, c.plays)
			assert.Same(t, b, s.Current())
			assert.Same(t, c, s.Incoming())

			s.Update(0)
			assert.GreaterOrEqual(t, b.volume(), 0.5)
			assert.InDelta(t, 0, c.volume(), 1e-9)
		})
	}
}

func TestQueuePromotesInOrder(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")

	s.Play(a)
	s.Update(0)
	s.Queue(b)
	s.Queue(c)
	require.Equal(t, 2, s.QueueSize())

	a.finish()
	s.Update(0)
	assert.Equal(t, 1, b.plays)
	assert.Equal(t, 0, c.plays)
	assert.Equal(t, 1, s.QueueSize())
	assert.InDelta(t, 1, b.volume(), 1e-9)

	s.Update(0)
	assert.Equal(t, 0, c.plays, "c waits while b plays")

	b.finish()
	s.Update(0)
	assert.Equal(t, 1, c.plays)
	assert.Equal(t, 0, s.QueueSize())
	assert.Same(t, c, s.Current())
}

func TestQueueKeepsOrderWhenSlotFreesBetweenUpdates(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")

	s.Play(a)
	s.Queue(b)
	a.finish()

	s.Queue(c)
	assert.Equal(t, 1, b.plays)
	assert.Equal(t, 0, c.plays)
	assert.Equal(t, 1, s.QueueSize())
}

func TestPlayClearsQueue(t *testing.T) {
	s := newSystem()
	a, b, c, x := newFake("a"), newFake("b"), newFake("c"), newFake("x")

	s.Queue(a)
	s.Update(0)
	s.Queue(b)
	s.Queue(c)
	require.Equal(t, 2, s.QueueSize())

	s.Play(x)
	assert.Equal(t, 0, s.QueueSize())

	for i := 0; i < 10; i++ {
		s.Update(longTime)
	}
	x.finish()
	for i := 0; i < 10; i++ {
		s.Update(longTime)
	}

	assert.Equal(t, 1, a.plays)
	assert.Equal(t, 0, b.plays)
	assert.Equal(t, 0, c.plays)
	assert.Equal(t, 1, x.plays)
}

func TestQueueDuringCrossFadeWaitsForFadeAndTrackEnd(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")

	s.Play(a)
	s.Play(b)
	s.Queue(c)
	assert.Equal(t, 1, s.QueueSize())

	s.Update(longTime)
	require.False(t, s.Fading())
	s.Update(0)
	assert.Equal(t, 0, c.plays, "b is still playing")

	b.finish()
	s.Update(0)
	assert.Equal(t, 1, c.plays)
	assert.Equal(t, 0, s.QueueSize())
}

func TestQueueIgnoredWhileFadingEvenIfBothTracksEnd(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")

	s.Play(a)
	s.Play(b)
	s.Queue(c)
	a.finish()
	b.finish()
	s.Update(shortTime)

	assert.Equal(t, 0, c.plays)
	assert.True(t, s.Fading())
	assert.Equal(t, 1, s.QueueSize())

	s.Update(longTime)
	assert.False(t, s.Fading())
	s.Update(0)
	assert.Equal(t, 1, c.plays, "promoted once the fade has finished")
}

func TestClearQueue(t *testing.T) {
	var got []EventType
	s := newSystem(WithListener(func(evt Event) { got = append(got, evt.Type) }))
	a, b := newFake("a"), newFake("b")

	s.Play(a)
	s.Queue(b)
	s.ClearQueue()
	s.ClearQueue()

	assert.Equal(t, 0, s.QueueSize())
	assert.True(t, a.playing)
	assert.Equal(t, []EventType{EventTrackStarted, EventTrackQueued, EventQueueCleared}, got)

	a.finish()
	s.Update(0)
	assert.Equal(t, 0, b.plays)
}

func TestListenerSeesSettledState(t *testing.T) {
	t.Run("play_from_abort", func(t *testing.T) {
		x := newFake("x")
		var s *System
		fired := false
		s = newSystem(WithListener(func(evt Event) {
			if evt.Type == EventTrackAborted && !fired {
				fired = true
				s.Play(x)
			}
		}))
		a, b, c := newFake("a"), newFake("b"), newFake("c")

		s.Play(a)
		s.Play(b)
		s.Play(c)

		assert.Same(t, a, s.Current())
		assert.Same(t, x, s.Incoming())
		for _, tr := range []*fakeTrack{b, c} {
			assert.False(t, tr.playing, "%s is in no slot and must be stopped", tr.name)
		}
		assert.True(t, a.playing)
		assert.True(t, x.playing)
	})

	t.Run("play_from_stop", func(t *testing.T) {
		x := newFake("x")
		var s *System
		fired := false
		s = newSystem(WithListener(func(evt Event) {
			if evt.Type == EventTrackAborted && !fired {
				fired = true
				s.Play(x)
			}
		}))
		a, b := newFake("a"), newFake("b")

		s.Play(a)
		s.Queue(b)
		s.Stop()

		assert.Same(t, x, s.Current())
		assert.True(t, x.playing)
		assert.False(t, a.playing)
		assert.Equal(t, 0, s.QueueSize())
	})
}

func TestUpdateIsIdempotentWithoutElapsedTime(t *testing.T) {
	s := newSystem()
	a, b := newFake("a"), newFake("b")

	s.Play(a)
	for i := 0; i < 5; i++ {
		s.Update(0)
	}
	assert.Equal(t, 1, a.plays)
	assert.Equal(t, 0, a.stops)

	s.Play(b)
	s.Update(shortTime)
	volA, volB := a.volume(), b.volume()
	for i := 0; i < 5; i++ {
		s.Update(0)
	}
	assert.Equal(t, 1, a.plays)
	assert.Equal(t, 0, a.stops)
	assert.Equal(t, 1, b.plays)
	assert.Equal(t, 0, b.stops)
	assert.InDelta(t, volA, a.volume(), 1e-9)
	assert.InDelta(t, volB, b.volume(), 1e-9)
}

func TestUpdateClampsInvalidDelta(t *testing.T) {
	for _, dt := range []float64{-1, math.Inf(-1), math.NaN()} {
		s := newSystem()
		a, b := newFake("a"), newFake("b")
		s.Play(a)
		s.Play(b)

		s.Update(dt)
		assert.InDelta(t, 1, a.volume(), 1e-9)
		assert.InDelta(t, 0, b.volume(), 1e-9)
		assert.True(t, s.Fading())
	}
}

func TestPlaySameTrack(t *testing.T) {
	t.Run("current_playing", func(t *testing.T) {
		s := newSystem()
		a := newFake("a")
		s.Play(a)
		s.Play(a)
		assert.Equal(t, 1, a.plays)
		assert.False(t, s.Fading())
		assert.InDelta(t, 1, a.volume(), 1e-9)
	})

	t.Run("current_finished", func(t *testing.T) {
		s := newSystem()
		a := newFake("a")
		s.Play(a)
		a.finish()
		s.Play(a)
		assert.Equal(t, 2, a.plays)
		assert.False(t, s.Fading())
	})

	t.Run("incoming", func(t *testing.T) {
		s := newSystem()
		a, b := newFake("a"), newFake("b")
		s.Play(a)
		s.Play(b)
		s.Update(shortTime)
		s.Play(b)
		assert.Equal(t, 1, b.plays)
		assert.Equal(t, 0, a.stops)
		assert.InDelta(t, shortTime/DefaultCrossFadeDuration, s.Progress(), 1e-9)
	})

	t.Run("outgoing_early", func(t *testing.T) {
		s := newSystem()
		a, b := newFake("a"), newFake("b")
		s.Play(a)
		s.Play(b)
		s.Update(shortTime)
		s.Play(a)
		assert.Equal(t, 1, b.stops)
		assert.Equal(t, 0, a.stops)
		assert.Equal(t, 1, a.plays)
		assert.False(t, s.Fading())
		assert.Same(t, a, s.Current())
		assert.InDelta(t, 1, a.volume(), 1e-9)
	})

	t.Run("outgoing_late", func(t *testing.T) {
		s := newSystem()
		a, b := newFake("a"), newFake("b")
		s.Play(a)
		s.Play(b)
		s.Update(underCrossFade)
		s.Play(a)
		assert.Equal(t, 1, a.stops)
		assert.Equal(t, 2, a.plays)
		assert.Same(t, b, s.Current())
		assert.Same(t, a, s.Incoming())
		assert.InDelta(t, 0, a.volume(), 1e-9)
	})
}

func TestNilTracksAreIgnored(t *testing.T) {
	s := newSystem()
	s.Play(nil)
	s.Queue(nil)
	s.Update(1)
	assert.Nil(t, s.Current())
	assert.Equal(t, 0, s.QueueSize())
}

func TestStop(t *testing.T) {
	s := newSystem()
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	s.Play(a)
	s.Play(b)
	s.Queue(c)

	s.Stop()
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, b.stops)
	assert.Equal(t, 0, c.plays)
	assert.Equal(t, 0, s.QueueSize())
	assert.False(t, s.Fading())
	assert.Nil(t, s.Current())

	s.Update(longTime)
	assert.Equal(t, 0, c.plays)
}

func TestCrossFadeDuration(t *testing.T) {
	cases := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"positive", 0.5, 0.5},
		{"zero", 0, DefaultCrossFadeDuration},
		{"negative", -3, DefaultCrossFadeDuration},
		{"nan", math.NaN(), DefaultCrossFadeDuration},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newSystem(WithCrossFadeDuration(c.seconds))
			assert.Equal(t, c.want, s.CrossFadeDuration())
		})
	}

	t.Run("shorten_during_fade", func(t *testing.T) {
		s := newSystem()
		a, b := newFake("a"), newFake("b")
		s.Play(a)
		s.Play(b)
		s.Update(underCrossFade)

		s.SetCrossFadeDuration(1)
		assert.InDelta(t, 1, s.Progress(), 1e-9)
		s.Update(0)
		assert.False(t, s.Fading())
		assert.Equal(t, 1, a.stops)
		assert.Same(t, b, s.Current())
	})
}

func TestListenerReceivesTransitions(t *testing.T) {
	var got []EventType
	s := newSystem(WithListener(func(evt Event) { got = append(got, evt.Type) }))
	a, b, c, d := newFake("a"), newFake("b"), newFake("c"), newFake("d")

	s.Play(a)
	s.Play(b)
	s.Update(shortTime)
	s.Play(c)
	s.Queue(d)
	s.Update(longTime)
	c.finish()
	s.Update(0)

	assert.Equal(t, []EventType{
		EventTrackStarted,
		EventCrossFadeStarted,
		EventTrackAborted,
		EventCrossFadeStarted,
		EventTrackQueued,
		EventCrossFadeFinished,
		EventTrackPromoted,
	}, got)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "crossfade_started", EventCrossFadeStarted.String())
	assert.Equal(t, "queue_cleared", EventQueueCleared.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
