package system

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/component"
	"github.com/milk9111/musicbox/prefabs"
	zlog "github.com/rs/zerolog/log"
)

// directorDispatchScript is appended to every director script. Scripts must
// define update(music, state).
const directorDispatchScript = `
update(__music, __state)
`

// DirectorSystem runs each Director's tengo script once per frame. Scripts
// issue music requests through the music object they receive; the requests
// are applied by MusicSystem, so it must run after this system.
type DirectorSystem struct {
	load     func(path string) ([]byte, error)
	runtimes map[ecs.Entity]*directorRuntime
}

type directorRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
	elapsed    float64
}

func NewDirectorSystem() *DirectorSystem {
	return NewDirectorSystemWithLoader(prefabs.LoadScript)
}

// NewDirectorSystemWithLoader reads scripts through load instead of the
// prefabs directory.
func NewDirectorSystemWithLoader(load func(path string) ([]byte, error)) *DirectorSystem {
	return &DirectorSystem{
		load:     load,
		runtimes: map[ecs.Entity]*directorRuntime{},
	}
}

// Invalidate drops compiled scripts so the next frame reloads them. An empty
// path invalidates every script.
func (d *DirectorSystem) Invalidate(path string) {
	for ent, rt := range d.runtimes {
		if path == "" || sameScript(rt.scriptPath, path) {
			delete(d.runtimes, ent)
		}
	}
}

func (d *DirectorSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	for ent := range d.runtimes {
		if !ecs.Has(w, ent, component.DirectorComponent.Kind()) {
			delete(d.runtimes, ent)
		}
	}

	var player *component.MusicPlayer
	if ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind()); ok {
		player, _ = ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	}

	ecs.ForEach(w, component.DirectorComponent.Kind(), func(ent ecs.Entity, director *component.Director) {
		if director == nil || strings.TrimSpace(director.ScriptPath) == "" {
			return
		}

		rt, err := d.runtime(ent, director.ScriptPath)
		if err != nil {
			zlog.Error().Err(err).Str("script", director.ScriptPath).Msg("director: load script")
			return
		}

		rt.elapsed += dt
		rt.stateData.Value["dt"] = &tengo.Float{Value: dt}
		rt.stateData.Value["time"] = &tengo.Float{Value: rt.elapsed}
		for name, value := range director.Params {
			rt.stateData.Value[name] = &tengo.Float{Value: value}
		}

		if err := rt.run(buildDirectorEngine(w, player)); err != nil {
			zlog.Error().Err(err).Str("script", director.ScriptPath).Msg("director: update")
		}
	})
}

func (d *DirectorSystem) runtime(ent ecs.Entity, scriptPath string) (*directorRuntime, error) {
	if rt, ok := d.runtimes[ent]; ok && rt != nil && rt.scriptPath == scriptPath {
		return rt, nil
	}
	if d.load == nil {
		return nil, errors.New("director: no script loader")
	}

	scriptBytes, err := d.load(scriptPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", scriptPath)
	}

	src := string(scriptBytes) + "\n" + directorDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__music", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s", scriptPath)
	}

	rt := &directorRuntime{
		scriptPath: scriptPath,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	d.runtimes[ent] = rt
	return rt, nil
}

func (rt *directorRuntime) run(engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__music", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildDirectorEngine(w *ecs.World, player *component.MusicPlayer) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["play"] = &tengo.UserFunction{Name: "play", Value: func(args ...tengo.Object) (tengo.Object, error) {
		cue, ok := cueArg(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		RequestMusic(w, cue)
		return tengo.TrueValue, nil
	}}

	values["queue"] = &tengo.UserFunction{Name: "queue", Value: func(args ...tengo.Object) (tengo.Object, error) {
		cue, ok := cueArg(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		QueueMusic(w, cue)
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		StopMusic(w)
		return tengo.TrueValue, nil
	}}

	values["queue_size"] = &tengo.UserFunction{Name: "queue_size", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if player == nil || player.System == nil {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: int64(player.System.QueueSize())}, nil
	}}

	values["fading"] = &tengo.UserFunction{Name: "fading", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if player == nil || player.System == nil || !player.System.Fading() {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["current"] = &tengo.UserFunction{Name: "current", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if player == nil {
			return &tengo.String{Value: ""}, nil
		}
		return &tengo.String{Value: player.CurrentCue}, nil
	}}

	values["incoming"] = &tengo.UserFunction{Name: "incoming", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if player == nil {
			return &tengo.String{Value: ""}, nil
		}
		return &tengo.String{Value: player.IncomingCue}, nil
	}}

	values["cues"] = &tengo.UserFunction{Name: "cues", Value: func(args ...tengo.Object) (tengo.Object, error) {
		arr := &tengo.Array{}
		if player == nil {
			return arr, nil
		}
		names := make([]string, 0, len(player.Cues))
		for name := range player.Cues {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			arr.Value = append(arr.Value, &tengo.String{Value: name})
		}
		return arr, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func cueArg(args []tengo.Object) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

func sameScript(a, b string) bool {
	return prefabs.CleanScriptPath(a) == prefabs.CleanScriptPath(b)
}
