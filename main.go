package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/milk9111/musicbox/logger"
	zlog "github.com/rs/zerolog/log"
)

var (
	app       = kingpin.New("musicbox", "Crossfading music demo")
	configDir = app.Flag("config-dir", "Directory holding music.yaml and scripts/").Envar("MUSICBOX_CONFIG_DIR").Default("prefabs").String()
	verbose   = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Envar("MUSICBOX_VERBOSE").Bool()
	logfile   = app.Flag("logfile", "Path to log file (default: stderr)").Envar("MUSICBOX_LOGFILE").String()
	noUI      = app.Flag("no-ui", "Hide the jukebox panel").Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Level: "info", File: *logfile}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	if err := run(); err != nil {
		zlog.Error().Err(err).Msg("Demo exited")
		os.Exit(1)
	}
}

// run owns the game so its deferred cleanup runs before an error exit.
func run() error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("musicbox")
	ebiten.SetTPS(ticksPerSecond)

	game, err := NewGame(GameOptions{
		ConfigDir: *configDir,
		ShowUI:    !*noUI,
	})
	if err != nil {
		return err
	}
	defer game.Close()

	return ebiten.RunGame(game)
}
