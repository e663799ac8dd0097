package assets

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// BufferFormat returns the stereo 16-bit format buffers are stored in.
func BufferFormat(sampleRate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
}

// LoadBuffer decodes a wav or mp3 file fully into memory, resampled to
// sampleRate.
func LoadBuffer(path string, sampleRate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := audioExt(path); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		_ = f.Close()
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(BufferFormat(sampleRate))
	buffer.Append(src)
	return buffer, nil
}

// ToneBuffer synthesizes a sine cue at the tone amplitude used by TonePCM.
func ToneBuffer(sampleRate beep.SampleRate, freq, seconds float64) (*beep.Buffer, error) {
	if seconds <= 0 {
		return nil, errors.Newf("assets: tone length %.2fs", seconds)
	}
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil, errors.Wrapf(err, "sine %.1fHz", freq)
	}

	quiet := &effects.Gain{Streamer: tone, Gain: toneAmplitude - 1}
	n := sampleRate.N(time.Duration(seconds * float64(time.Second)))

	buffer := beep.NewBuffer(BufferFormat(sampleRate))
	buffer.Append(beep.Take(n, quiet))
	return buffer, nil
}
