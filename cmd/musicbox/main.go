// Command musicbox plays music.yaml cues through the system speaker without
// a window, driving the same transition engine as the demo.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/joho/godotenv"
	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/component"
	"github.com/milk9111/musicbox/ecs/entity"
	"github.com/milk9111/musicbox/ecs/system"
	"github.com/milk9111/musicbox/logger"
	"github.com/milk9111/musicbox/prefabs"
	"github.com/milk9111/musicbox/track"
	zlog "github.com/rs/zerolog/log"
)

const tickInterval = 50 * time.Millisecond

var (
	app       = kingpin.New("musicbox", "Headless crossfading music player")
	configDir = app.Flag("config-dir", "Directory holding music.yaml").Envar("MUSICBOX_CONFIG_DIR").Default("prefabs").String()
	verbose   = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Envar("MUSICBOX_VERBOSE").Bool()
	logfile   = app.Flag("logfile", "Path to log file (default: stderr)").Envar("MUSICBOX_LOGFILE").String()
	crossfade = app.Flag("crossfade", "Override the crossfade length in seconds").Float64()

	playCmd  = app.Command("play", "Play the first cue now and queue the rest").Default()
	playCues = playCmd.Arg("cue", "Cue names from music.yaml").Strings()

	cuesCmd = app.Command("cues", "List declared cues and exit")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	nameStyle  = lipgloss.NewStyle().Bold(true).Width(12)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Level: "info", File: *logfile}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	prefabs.SetDir(*configDir)
	spec, err := prefabs.LoadMusicSpec()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load music")
	}

	if command == cuesCmd.FullCommand() {
		printCues(spec)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, spec, *playCues); err != nil {
		zlog.Error().Err(err).Msg("Playback failed")
		stop()
		os.Exit(1)
	}
}

func play(ctx context.Context, spec *prefabs.MusicSpec, cues []string) error {
	if len(cues) == 0 && spec.Initial != "" {
		cues = []string{spec.Initial}
	}
	if len(cues) == 0 {
		return errors.New("no cue given and music.yaml has no initial cue")
	}
	for _, name := range cues {
		if _, ok := spec.Cue(name); !ok {
			return errors.Newf("unknown cue %q", name)
		}
	}

	headless := *spec
	headless.Initial = ""
	headless.Script = ""
	if *crossfade > 0 {
		headless.CrossFadeSeconds = *crossfade
	}

	sampleRate := beep.SampleRate(spec.SampleRate)
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init speaker")
	}
	defer speaker.Close()

	mixer := &beep.Mixer{}
	speaker.Play(mixer)

	w := ecs.NewWorld()
	w.AddSystem(system.NewMusicSystem())
	playerEnt, err := entity.NewMusicPlayer(w, &headless, entity.BeepCueLoader(mixer, track.SpeakerLock, sampleRate))
	if err != nil {
		return err
	}
	player, _ := ecs.Get(w, playerEnt, component.MusicPlayerComponent.Kind())

	system.RequestMusic(w, cues[0])
	for _, name := range cues[1:] {
		system.QueueMusic(w, name)
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msg("Stopping")
			system.StopMusic(w)
			w.Update(0)
			return nil
		case now := <-ticker.C:
			w.Update(now.Sub(last).Seconds())
			last = now
			logEvents(w)
			if finished(player) {
				zlog.Info().Msg("Queue finished")
				return nil
			}
		}
	}
}

// finished reports whether nothing is playing, fading or waiting.
func finished(player *component.MusicPlayer) bool {
	if player == nil || player.System == nil {
		return true
	}
	if player.System.Fading() || player.System.QueueSize() > 0 {
		return false
	}
	current := player.System.Current()
	return current == nil || !current.IsPlaying()
}

func logEvents(w *ecs.World) {
	for _, evt := range w.Events().Items() {
		data, ok := evt.Data.(ecs.MusicEvent)
		if !ok {
			continue
		}
		zlog.Info().Str("event", evt.Type).Str("cue", data.Cue).Int("queue", data.QueueSize).Msg("Music")
	}
}

func printCues(spec *prefabs.MusicSpec) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d cues, %.1fs crossfade", len(spec.Cues), spec.CrossFadeSeconds)))
	for _, cue := range spec.Cues {
		source := cue.File
		if source == "" && cue.Tone != nil {
			source = fmt.Sprintf("tone %.0fHz %.1fs", cue.Tone.Freq, cue.Tone.Seconds)
		}
		var notes string
		if cue.Loop {
			notes += " loop"
		}
		if cue.Name == spec.Initial {
			notes += " initial"
		}
		fmt.Println(nameStyle.Render(cue.Name) + source + noteStyle.Render(notes))
	}
}
