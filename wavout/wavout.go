// Package wavout writes a channel-major float32 waveform to a WAV file,
// generalizing the teacher's cmd/ir-synth/main.go writeStereoWAV from a
// fixed stereo/16-bit pair to an arbitrary channel count and the
// configured bit depth (spec §6).
package wavout

import (
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Write interleaves channels (one []float32 per output channel, all the
// same length) and encodes them to path at the given sample rate and bit
// depth (16 or 24, spec §6).
func Write(path string, channels [][]float32, sampleRate, bitDepth int) error {
	if len(channels) == 0 {
		return fmt.Errorf("wavout: no channels to write")
	}
	length := len(channels[0])
	for i, ch := range channels {
		if len(ch) != length {
			return fmt.Errorf("wavout: channel %d length %d does not match channel 0 length %d", i, len(ch), length)
		}
	}
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("wavout: unsupported bit depth %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavout: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), 1)
	defer enc.Close()

	data := make([]float32, length*len(channels))
	for c, ch := range channels {
		for i, v := range ch {
			data[i*len(channels)+c] = v
		}
	}
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: len(channels),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	return enc.Write(buf)
}
