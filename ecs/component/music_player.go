package component

import (
	"github.com/milk9111/musicbox/music"
	"github.com/milk9111/musicbox/prefabs"
)

// MusicPlayer stores global music playback state on a dedicated ECS entity.
// The music system drives System; cue tracks are loaded once and reused.
type MusicPlayer struct {
	System *music.System
	Cues   map[string]music.Track
	Specs  map[string]prefabs.CueSpec
	Order  []string

	CurrentCue  string
	IncomingCue string
	LastEvent   string
}

// CueName returns the name a track was registered under.
func (p *MusicPlayer) CueName(t music.Track) string {
	if p == nil || t == nil {
		return ""
	}
	for name, track := range p.Cues {
		if track == t {
			return name
		}
	}
	return ""
}

var MusicPlayerComponent = NewComponent[MusicPlayer]("music_player")
