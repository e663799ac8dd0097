package entity

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/component"
	"github.com/milk9111/musicbox/ecs/system"
	"github.com/milk9111/musicbox/music"
	"github.com/milk9111/musicbox/prefabs"
	zlog "github.com/rs/zerolog/log"
)

// NewMusicPlayer builds the music player singleton from spec, loading every
// cue through load. The initial cue starts right away and a director entity
// is added when the spec names a script.
func NewMusicPlayer(w *ecs.World, spec *prefabs.MusicSpec, load CueLoader) (ecs.Entity, error) {
	if w == nil {
		return 0, errors.New("music player: world is nil")
	}
	if spec == nil {
		return 0, errors.New("music player: spec is nil")
	}
	if load == nil {
		return 0, errors.New("music player: cue loader is nil")
	}

	player, err := loadCues(spec, load, nil)
	if err != nil {
		return 0, err
	}
	player.System = music.New(
		music.WithCrossFadeDuration(spec.CrossFadeSeconds),
		music.WithListener(system.MusicEventListener(w, player)),
	)

	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.MusicPlayerComponent.Kind(), player); err != nil {
		ecs.DestroyEntity(w, ent)
		closeCues(player.Cues)
		return 0, errors.Wrap(err, "music player: add component")
	}

	if tr, ok := player.Cues[spec.Initial]; ok && spec.Initial != "" {
		player.System.Play(tr)
		player.CurrentCue = spec.Initial
	}

	if spec.Script != "" {
		if _, err := NewDirector(w, spec.Script, spec.Params); err != nil {
			player.System.Stop()
			ecs.DestroyEntity(w, ent)
			closeCues(player.Cues)
			return 0, err
		}
	}

	return ent, nil
}

// NewDirector adds an entity running script each frame with params as its
// initial inputs.
func NewDirector(w *ecs.World, script string, params map[string]float64) (ecs.Entity, error) {
	if w == nil {
		return 0, errors.New("director: world is nil")
	}
	if strings.TrimSpace(script) == "" {
		return 0, errors.New("director: script path is empty")
	}

	copied := make(map[string]float64, len(params))
	for k, v := range params {
		copied[k] = v
	}

	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.DirectorComponent.Kind(), &component.Director{
		ScriptPath: script,
		Params:     copied,
	}); err != nil {
		ecs.DestroyEntity(w, ent)
		return 0, errors.Wrap(err, "director: add component")
	}
	return ent, nil
}

// ReloadMusicPlayer applies spec to the existing music player. Cues declared
// exactly as before keep their tracks, so an unchanged cue keeps playing and
// an active crossfade carries on with the new crossfade length. When a
// playing cue was changed or removed the music stops and restarts from the
// cue that was fading in, else the current cue, else the initial cue. Any
// change to the cue table clears the queue. Director params the host changed
// at runtime carry over. Without a player it builds a fresh one.
func ReloadMusicPlayer(w *ecs.World, spec *prefabs.MusicSpec, load CueLoader) (ecs.Entity, error) {
	if w == nil {
		return 0, errors.New("music player: world is nil")
	}
	if spec == nil {
		return 0, errors.New("music player: spec is nil")
	}
	if load == nil {
		return 0, errors.New("music player: cue loader is nil")
	}

	params := make(map[string]float64, len(spec.Params))
	for k, v := range spec.Params {
		params[k] = v
	}
	var directors []ecs.Entity
	ecs.ForEach(w, component.DirectorComponent.Kind(), func(ent ecs.Entity, d *component.Director) {
		directors = append(directors, ent)
		if d == nil {
			return
		}
		for k, v := range d.Params {
			params[k] = v
		}
	})

	ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind())
	var old *component.MusicPlayer
	if ok {
		old, _ = ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	}
	if old == nil || old.System == nil {
		if ok {
			ecs.DestroyEntity(w, ent)
		}
		destroyAll(w, directors)
		next := *spec
		next.Params = params
		return NewMusicPlayer(w, &next, load)
	}

	next, err := loadCues(spec, load, old)
	if err != nil {
		return 0, err
	}

	kept := make(map[music.Track]bool, len(next.Cues))
	for _, tr := range next.Cues {
		kept[tr] = true
	}
	dropped := make(map[string]music.Track)
	slotted := false
	for name, tr := range old.Cues {
		if kept[tr] {
			continue
		}
		dropped[name] = tr
		if tr == old.System.Current() || tr == old.System.Incoming() {
			slotted = true
		}
	}

	resume := old.CurrentCue
	if old.IncomingCue != "" {
		resume = old.IncomingCue
	}
	if slotted {
		old.System.Stop()
	} else if len(dropped) > 0 {
		old.System.ClearQueue()
	}

	old.Cues, old.Specs, old.Order = next.Cues, next.Specs, next.Order
	old.System.SetCrossFadeDuration(spec.CrossFadeSeconds)
	closeCues(dropped)

	if slotted {
		if _, declared := old.Cues[resume]; !declared || resume == "" {
			resume = spec.Initial
		}
		if tr, ok := old.Cues[resume]; ok {
			old.System.Play(tr)
		}
	}
	old.CurrentCue = old.CueName(old.System.Current())
	old.IncomingCue = old.CueName(old.System.Incoming())

	destroyAll(w, directors)
	if spec.Script != "" {
		if _, err := NewDirector(w, spec.Script, params); err != nil {
			return 0, err
		}
	}

	return ent, nil
}

// loadCues builds the cue table for spec. Cues that prev declares the same
// way reuse prev's track instead of loading a new one.
func loadCues(spec *prefabs.MusicSpec, load CueLoader, prev *component.MusicPlayer) (*component.MusicPlayer, error) {
	player := &component.MusicPlayer{
		Cues:  make(map[string]music.Track, len(spec.Cues)),
		Specs: make(map[string]prefabs.CueSpec, len(spec.Cues)),
		Order: make([]string, 0, len(spec.Cues)),
	}
	loaded := make(map[string]music.Track)

	for _, cue := range spec.Cues {
		tr, ok := reusableCue(prev, cue)
		if !ok {
			var err error
			tr, err = load(cue)
			if err != nil {
				closeCues(loaded)
				return nil, errors.Wrapf(err, "music player: load cue %q", cue.Name)
			}
			loaded[cue.Name] = tr
		}
		player.Cues[cue.Name] = tr
		player.Specs[cue.Name] = cue
		player.Order = append(player.Order, cue.Name)
	}
	return player, nil
}

func reusableCue(prev *component.MusicPlayer, cue prefabs.CueSpec) (music.Track, bool) {
	if prev == nil {
		return nil, false
	}
	old, ok := prev.Specs[cue.Name]
	tr := prev.Cues[cue.Name]
	if !ok || tr == nil || !sameCue(old, cue) {
		return nil, false
	}
	return tr, true
}

func sameCue(a, b prefabs.CueSpec) bool {
	if a.Name != b.Name || a.File != b.File || a.Loop != b.Loop {
		return false
	}
	if a.Tone == nil || b.Tone == nil {
		return a.Tone == b.Tone
	}
	return *a.Tone == *b.Tone
}

func destroyAll(w *ecs.World, ents []ecs.Entity) {
	for _, ent := range ents {
		ecs.DestroyEntity(w, ent)
	}
}

func closeCues(cues map[string]music.Track) {
	for name, tr := range cues {
		c, ok := tr.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			zlog.Warn().Err(err).Str("cue", name).Msg("music player: close cue")
		}
	}
}
