package track

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/milk9111/musicbox/common"
)

// SpeakerLock guards streamers that the beep speaker is currently pulling.
var SpeakerLock sync.Locker = speakerLock{}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Beep streams an in-memory buffer into a shared mixer. Each Play adds a
// fresh streamer; Stop detaches it so the mixer drops it on the next pull.
type Beep struct {
	mixer  *beep.Mixer
	lock   sync.Locker
	buffer *beep.Buffer
	loop   bool

	ctrl    *beep.Ctrl
	volume  *effects.Volume
	level   float64
	playing atomic.Bool
}

// NewBeep creates a track over buffer. lock must guard every call into the
// mixer's consumer; pass nil when the mixer is pulled on the calling
// goroutine.
func NewBeep(mixer *beep.Mixer, lock sync.Locker, buffer *beep.Buffer, loop bool) *Beep {
	return &Beep{mixer: mixer, lock: lock, buffer: buffer, loop: loop, level: 1}
}

func (b *Beep) Play() {
	if b.mixer == nil || b.buffer == nil {
		return
	}

	b.withLock(func() {
		b.detach()

		var src beep.Streamer = b.buffer.Streamer(0, b.buffer.Len())
		ctrl := &beep.Ctrl{}
		if b.loop {
			src = beep.Loop(-1, b.buffer.Streamer(0, b.buffer.Len()))
		} else {
			src = beep.Seq(src, beep.Callback(func() {
				if b.ctrl == ctrl {
					b.playing.Store(false)
				}
			}))
		}

		b.volume = &effects.Volume{Streamer: src, Base: 2}
		b.applyLevel()
		ctrl.Streamer = b.volume
		b.ctrl = ctrl
		b.playing.Store(true)
		b.mixer.Add(ctrl)
	})
}

func (b *Beep) Stop() {
	b.withLock(b.detach)
}

func (b *Beep) IsPlaying() bool {
	return b.playing.Load()
}

// SetVolume sets a linear gain in [0, 1].
func (b *Beep) SetVolume(v float64) {
	b.withLock(func() {
		b.level = common.Clamp(v, 0, 1)
		b.applyLevel()
	})
}

func (b *Beep) detach() {
	if b.ctrl != nil {
		b.ctrl.Streamer = nil
	}
	b.ctrl = nil
	b.volume = nil
	b.playing.Store(false)
}

// applyLevel maps the linear level onto the base-2 exponent effects.Volume
// expects.
func (b *Beep) applyLevel() {
	if b.volume == nil {
		return
	}
	b.volume.Silent = b.level <= 0
	if b.level > 0 {
		b.volume.Volume = math.Log2(b.level)
	} else {
		b.volume.Volume = 0
	}
}

func (b *Beep) withLock(fn func()) {
	if b.lock != nil {
		b.lock.Lock()
		defer b.lock.Unlock()
	}
	fn()
}
