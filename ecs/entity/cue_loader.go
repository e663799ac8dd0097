package entity

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/musicbox/assets"
	"github.com/milk9111/musicbox/music"
	"github.com/milk9111/musicbox/prefabs"
	"github.com/milk9111/musicbox/track"
)

// CueLoader turns a cue declaration into a playable track.
type CueLoader func(cue prefabs.CueSpec) (music.Track, error)

var errNoCueSource = errors.New("cue has neither file nor tone")

// EbitenCueLoader loads cues as ebiten audio players on ctx.
func EbitenCueLoader(ctx *audio.Context) CueLoader {
	return func(cue prefabs.CueSpec) (music.Track, error) {
		var (
			player *audio.Player
			err    error
		)
		switch {
		case cue.File != "":
			player, err = assets.LoadAudioPlayer(ctx, prefabs.ResolvePath(cue.File), cue.Loop)
		case cue.Tone != nil:
			player, err = assets.NewTonePlayer(ctx, cue.Tone.Freq, cue.Tone.Seconds, cue.Loop)
		default:
			return nil, errNoCueSource
		}
		if err != nil {
			return nil, err
		}
		return track.NewEbiten(cue.Name, player), nil
	}
}

// BeepCueLoader loads cues as in-memory buffers mixed into mixer. lock
// guards the mixer against the goroutine pulling from it.
func BeepCueLoader(mixer *beep.Mixer, lock sync.Locker, sampleRate beep.SampleRate) CueLoader {
	return func(cue prefabs.CueSpec) (music.Track, error) {
		var (
			buf *beep.Buffer
			err error
		)
		switch {
		case cue.File != "":
			buf, err = assets.LoadBuffer(prefabs.ResolvePath(cue.File), sampleRate)
		case cue.Tone != nil:
			buf, err = assets.ToneBuffer(sampleRate, cue.Tone.Freq, cue.Tone.Seconds)
		default:
			return nil, errNoCueSource
		}
		if err != nil {
			return nil, err
		}
		return track.NewBeep(mixer, lock, buf, cue.Loop), nil
	}
}
