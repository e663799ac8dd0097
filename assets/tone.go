package assets

import (
	"encoding/binary"
	"math"
)

const (
	toneAmplitude = 0.3
	toneRamp      = 0.005 // seconds of fade at each end to avoid clicks
)

// TonePCM renders a sine wave as 16-bit little-endian interleaved stereo,
// the format ebiten audio players consume.
func TonePCM(sampleRate int, freq, seconds float64) []byte {
	if sampleRate <= 0 || freq <= 0 || seconds <= 0 {
		return nil
	}

	frames := int(seconds * float64(sampleRate))
	ramp := int(toneRamp * float64(sampleRate))
	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		v := toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		v *= envelope(i, frames, ramp)
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*4:], s)
		binary.LittleEndian.PutUint16(out[i*4+2:], s)
	}
	return out
}

func envelope(i, frames, ramp int) float64 {
	if ramp <= 0 {
		return 1
	}
	if i < ramp {
		return float64(i) / float64(ramp)
	}
	if tail := frames - 1 - i; tail < ramp {
		return float64(tail) / float64(ramp)
	}
	return 1
}
