// Package attenuate applies a receiver model to a tracer.RawResult,
// yielding per-channel time-stamped attenuated impulses (spec §4.4). It
// drives kernel.Attenuate and kernel.HRTF over the diffuse and image
// sections independently, then concatenates.
package attenuate

import (
	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/hrtf"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/tracer"
)

// SpeakerBank applies one or more speaker polar responses to a raw trace.
type SpeakerBank struct{}

// Attenuate returns one impulse stream per speaker. Each stream is the
// diffuse section attenuated by that speaker, concatenated with the image
// section attenuated by the same speaker; the two sections are processed
// independently (different strides K vs M) and never mixed before
// concatenation (spec §4.4).
func (SpeakerBank) Attenuate(micPos geometry.Vec3, raw *tracer.RawResult, speakers []kernel.Speaker) [][]kernel.Impulse {
	out := make([][]kernel.Impulse, len(speakers))
	diffuse := raw.RawDiffuse()
	images := raw.RawImages()
	for i, speaker := range speakers {
		attDiffuse := kernel.Attenuate(micPos, diffuse, speaker)
		attImages := kernel.Attenuate(micPos, images, speaker)
		stream := make([]kernel.Impulse, 0, len(attDiffuse)+len(attImages))
		stream = append(stream, attDiffuse...)
		stream = append(stream, attImages...)
		out[i] = stream
	}
	return out
}

// HRTFAttenuator applies the head-related transfer function for a single
// listener orientation.
type HRTFAttenuator struct {
	Table *hrtf.Table
}

// Attenuate returns two impulse streams (left, right channel), each the
// diffuse section HRTF-attenuated for that channel concatenated with the
// image section HRTF-attenuated for that channel (spec §4.4).
func (h HRTFAttenuator) Attenuate(micPos geometry.Vec3, raw *tracer.RawResult, facing, up geometry.Vec3) [2][]kernel.Impulse {
	diffuse := raw.RawDiffuse()
	images := raw.RawImages()

	var out [2][]kernel.Impulse
	for channel := 0; channel < 2; channel++ {
		attDiffuse := kernel.HRTF(micPos, diffuse, h.Table, facing, up, channel)
		attImages := kernel.HRTF(micPos, images, h.Table, facing, up, channel)
		stream := make([]kernel.Impulse, 0, len(attDiffuse)+len(attImages))
		stream = append(stream, attDiffuse...)
		stream = append(stream, attImages...)
		out[channel] = stream
	}
	return out
}
