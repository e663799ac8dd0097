// Package track adapts audio backends to music.Track.
package track

import (
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/musicbox/common"
	zlog "github.com/rs/zerolog/log"
)

// Ebiten plays a cue through an ebiten audio player.
type Ebiten struct {
	name   string
	player *audio.Player
}

func NewEbiten(name string, player *audio.Player) *Ebiten {
	return &Ebiten{name: name, player: player}
}

// Play restarts the cue from the beginning.
func (e *Ebiten) Play() {
	if e.player == nil {
		return
	}
	if err := e.player.Rewind(); err != nil {
		zlog.Warn().Err(err).Str("cue", e.name).Msg("track: rewind")
	}
	e.player.Play()
}

func (e *Ebiten) Stop() {
	if e.player == nil {
		return
	}
	e.player.Pause()
	if err := e.player.Rewind(); err != nil {
		zlog.Warn().Err(err).Str("cue", e.name).Msg("track: rewind")
	}
}

func (e *Ebiten) IsPlaying() bool {
	return e.player != nil && e.player.IsPlaying()
}

func (e *Ebiten) SetVolume(v float64) {
	if e.player == nil {
		return
	}
	e.player.SetVolume(common.Clamp(v, 0, 1))
}

func (e *Ebiten) Close() error {
	if e.player == nil {
		return nil
	}
	return e.player.Close()
}
