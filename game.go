package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/musicbox/common"
	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/component"
	"github.com/milk9111/musicbox/ecs/entity"
	"github.com/milk9111/musicbox/ecs/system"
	"github.com/milk9111/musicbox/prefabs"
	zlog "github.com/rs/zerolog/log"
)

const (
	ticksPerSecond = 60
	intensityStep  = 0.1
)

var (
	backgroundColor = color.NRGBA{R: 0x12, G: 0x14, B: 0x1c, A: 0xff}

	digitKeys = []ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
		ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
		ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
)

type GameOptions struct {
	ConfigDir string
	ShowUI    bool
}

type Game struct {
	frames int

	world    *ecs.World
	director *system.DirectorSystem
	loadCue  entity.CueLoader
	watcher  *prefabs.Watcher

	ui        *ebitenui.UI
	jukebox   *jukebox
	showUI    bool
	intensity float64
}

func NewGame(opts GameOptions) (*Game, error) {
	prefabs.SetDir(opts.ConfigDir)

	spec, err := prefabs.LoadMusicSpec()
	if err != nil {
		return nil, err
	}

	ctx := audio.NewContext(spec.SampleRate)
	g := &Game{
		world:    ecs.NewWorld(),
		director: system.NewDirectorSystem(),
		loadCue:  entity.EbitenCueLoader(ctx),
		showUI:   opts.ShowUI,
	}
	// Directors issue requests that the music system applies the same frame.
	g.world.AddSystem(g.director)
	g.world.AddSystem(system.NewMusicSystem())

	if _, err := entity.NewMusicPlayer(g.world, spec, g.loadCue); err != nil {
		return nil, err
	}
	g.intensity = spec.Params["intensity"]
	g.rebuildUI()

	watcher, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
	if err != nil {
		// Hot reload needs the prefab dir on disk; the embedded copy still runs.
		zlog.Warn().Err(err).Str("dir", prefabs.Dir).Msg("Hot reload disabled")
	} else {
		g.watcher = watcher
	}

	zlog.Info().Strs("cues", spec.CueNames()).Float64("crossfade", spec.CrossFadeSeconds).Msg("Music loaded")
	return g, nil
}

func (g *Game) Update() error {
	g.frames++

	g.pollReload()
	g.handleInput()
	g.world.Update(1.0 / float64(ebiten.TPS()))

	for _, evt := range g.world.Events().Items() {
		if data, ok := evt.Data.(ecs.MusicEvent); ok {
			zlog.Debug().Str("event", evt.Type).Str("cue", data.Cue).Int("queue", data.QueueSize).Msg("Music")
		}
	}

	if g.showUI && g.ui != nil {
		g.jukebox.refresh(g.statusLine())
		g.ui.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	ebitenutil.DebugPrint(screen, g.debugText())

	if g.showUI && g.ui != nil {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) handleInput() {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	cues := g.cueOrder()
	for i, key := range digitKeys {
		if i >= len(cues) || !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if shift {
			system.QueueMusic(g.world, cues[i])
		} else {
			system.RequestMusic(g.world, cues[i])
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		system.StopMusic(g.world)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showUI = !g.showUI
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.setIntensity(g.intensity + intensityStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.setIntensity(g.intensity - intensityStep)
	}
}

func (g *Game) setIntensity(v float64) {
	g.intensity = common.Clamp(v, 0, 1)
	ecs.ForEach(g.world, component.DirectorComponent.Kind(), func(_ ecs.Entity, d *component.Director) {
		if d.Params == nil {
			d.Params = map[string]float64{}
		}
		d.Params["intensity"] = g.intensity
	})
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}

	changed, errs := g.watcher.Poll()
	for _, err := range errs {
		zlog.Warn().Err(err).Msg("Watcher error")
	}

	reloadMusic := false
	for _, path := range changed {
		if prefabs.IsScript(path) {
			g.director.Invalidate(path)
			zlog.Info().Str("script", path).Msg("Director script reloaded")
			continue
		}
		if filepath.Base(path) == prefabs.MusicFile {
			reloadMusic = true
		}
	}
	if !reloadMusic {
		return
	}

	if err := g.reloadMusic(); err != nil {
		zlog.Error().Err(err).Msg("Music reload failed, keeping previous cues")
		return
	}
	zlog.Info().Msg("Music reloaded")
}

func (g *Game) reloadMusic() error {
	spec, err := prefabs.LoadMusicSpec()
	if err != nil {
		return err
	}
	if _, err := entity.ReloadMusicPlayer(g.world, spec, g.loadCue); err != nil {
		return errors.Wrap(err, "rebuild music player")
	}
	g.director.Invalidate("")
	g.setIntensity(g.intensity)
	g.rebuildUI()
	return nil
}

func (g *Game) rebuildUI() {
	g.ui, g.jukebox = NewJukeboxUI(g.world, g.cueOrder())
}

func (g *Game) musicPlayer() *component.MusicPlayer {
	ent, ok := ecs.First(g.world, component.MusicPlayerComponent.Kind())
	if !ok {
		return nil
	}
	player, _ := ecs.Get(g.world, ent, component.MusicPlayerComponent.Kind())
	return player
}

func (g *Game) cueOrder() []string {
	if player := g.musicPlayer(); player != nil {
		return player.Order
	}
	return nil
}

func (g *Game) statusLine() string {
	player := g.musicPlayer()
	if player == nil || player.System == nil {
		return "no music player"
	}
	status := "idle"
	if player.CurrentCue != "" {
		status = player.CurrentCue
	}
	if player.System.Fading() {
		status = fmt.Sprintf("%s -> %s (%3.0f%%)", player.CurrentCue, player.IncomingCue, player.System.Progress()*100)
	}
	return fmt.Sprintf("%s  queue: %d", status, player.System.QueueSize())
}

func (g *Game) debugText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f\n", g.frames, ebiten.ActualFPS())
	fmt.Fprintf(&b, "Now: %s\n", g.statusLine())
	if player := g.musicPlayer(); player != nil {
		fmt.Fprintf(&b, "Last: %s\n", player.LastEvent)
	}
	fmt.Fprintf(&b, "Intensity: %.1f\n\n", g.intensity)
	for i, name := range g.cueOrder() {
		if i >= len(digitKeys) {
			break
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, name)
	}
	b.WriteString("\n1-9 play, shift+1-9 queue, S stop, up/down intensity, tab panel")
	return b.String()
}
