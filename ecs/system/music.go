package system

import (
	"strings"

	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/component"
	"github.com/milk9111/musicbox/music"
	zlog "github.com/rs/zerolog/log"
)

// MusicSystem applies queued MusicRequests to the transition engine held by
// the MusicPlayer singleton and advances it by the frame time.
type MusicSystem struct{}

func NewMusicSystem() *MusicSystem {
	return &MusicSystem{}
}

// RequestMusic crossfades to cue, dropping anything queued.
func RequestMusic(w *ecs.World, cue string) {
	RequestMusicWithOptions(w, &component.MusicRequest{Cue: cue, Mode: component.ModePlay})
}

// QueueMusic plays cue once the current cue ends.
func QueueMusic(w *ecs.World, cue string) {
	RequestMusicWithOptions(w, &component.MusicRequest{Cue: cue, Mode: component.ModeQueue})
}

// StopMusic silences all music and empties the queue.
func StopMusic(w *ecs.World) {
	RequestMusicWithOptions(w, &component.MusicRequest{Mode: component.ModeStop})
}

func RequestMusicWithOptions(w *ecs.World, req *component.MusicRequest) {
	if w == nil || req == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.MusicRequestComponent.Kind(), req); err != nil {
		zlog.Warn().Err(err).Msg("music: add request")
	}
}

// MusicEventListener forwards engine transitions for player into the world
// event queue as music.* events.
func MusicEventListener(w *ecs.World, player *component.MusicPlayer) func(music.Event) {
	return func(evt music.Event) {
		cue := player.CueName(evt.Track)
		player.LastEvent = strings.TrimSpace(evt.Type.String() + " " + cue)
		w.Events().Push(ecs.Event{
			Type: ecs.MusicEventPrefix + evt.Type.String(),
			Data: ecs.MusicEvent{Cue: cue, QueueSize: evt.QueueSize},
		})
	}
}

func (m *MusicSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	requests, requestEntities := m.consumeRequests(w)
	for _, ent := range requestEntities {
		ecs.DestroyEntity(w, ent)
	}

	ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind())
	if !ok {
		return
	}
	player, ok := ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	if !ok || player == nil || player.System == nil {
		return
	}

	for _, req := range requests {
		m.applyRequest(player, req)
	}

	player.System.Update(dt)
	player.CurrentCue = player.CueName(player.System.Current())
	player.IncomingCue = player.CueName(player.System.Incoming())
}

func (m *MusicSystem) consumeRequests(w *ecs.World) ([]component.MusicRequest, []ecs.Entity) {
	requests := make([]component.MusicRequest, 0)
	requestEntities := make([]ecs.Entity, 0)

	ecs.ForEach(w, component.MusicRequestComponent.Kind(), func(ent ecs.Entity, req *component.MusicRequest) {
		requestEntities = append(requestEntities, ent)
		if req == nil {
			return
		}
		requests = append(requests, *req)
	})

	return requests, requestEntities
}

func (m *MusicSystem) applyRequest(player *component.MusicPlayer, req component.MusicRequest) {
	if req.Mode == component.ModeStop {
		player.System.Stop()
		return
	}

	cue := strings.TrimSpace(req.Cue)
	track, ok := player.Cues[cue]
	if !ok || track == nil {
		zlog.Warn().Str("cue", cue).Str("mode", req.Mode.String()).Msg("music: unknown cue")
		return
	}

	switch req.Mode {
	case component.ModePlay:
		player.System.Play(track)
	case component.ModeQueue:
		player.System.Queue(track)
	}
}
