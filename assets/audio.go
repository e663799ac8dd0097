// Package assets decodes and synthesizes cue audio for both playback
// backends: ebiten audio players for the demo and beep buffers for the
// headless player.
package assets

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ErrUnsupportedFormat is returned for files that are neither wav nor mp3.
var ErrUnsupportedFormat = errors.New("assets: unsupported audio format")

type decodedStream interface {
	io.ReadSeeker
	Length() int64
}

// LoadAudioPlayer decodes a wav or mp3 file into a player on ctx. Looping
// players restart at the end and never report stopped.
func LoadAudioPlayer(ctx *audio.Context, path string, loop bool) (*audio.Player, error) {
	if ctx == nil {
		return nil, errors.New("assets: nil audio context")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var stream decodedStream
	reader := bytes.NewReader(b)
	switch ext := audioExt(path); ext {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(ctx.SampleRate(), reader)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(ctx.SampleRate(), reader)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	if loop {
		return ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
	}
	return ctx.NewPlayer(stream)
}

// NewTonePlayer creates a player for a synthesized sine cue.
func NewTonePlayer(ctx *audio.Context, freq, seconds float64, loop bool) (*audio.Player, error) {
	if ctx == nil {
		return nil, errors.New("assets: nil audio context")
	}
	pcm := TonePCM(ctx.SampleRate(), freq, seconds)
	if len(pcm) == 0 {
		return nil, errors.Newf("assets: empty tone %.1fHz for %.2fs", freq, seconds)
	}
	if loop {
		return ctx.NewPlayer(audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm))))
	}
	return ctx.NewPlayerFromBytes(pcm), nil
}

func audioExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
