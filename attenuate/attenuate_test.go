package attenuate

import (
	"context"
	"testing"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/hrtf"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/tracer"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

func box() *geometry.Geometry {
	verts := []geometry.Vec3{
		{X: -25, Y: -27, Z: -2}, {X: 25, Y: -27, Z: -2}, {X: 25, Y: 27, Z: -2}, {X: -25, Y: 27, Z: -2},
		{X: -25, Y: -27, Z: 2}, {X: 25, Y: -27, Z: 2}, {X: 25, Y: 27, Z: 2}, {X: -25, Y: 27, Z: 2},
	}
	tris := []geometry.Triangle{
		{V0: 0, V1: 2, V2: 1, Surface: 0}, {V0: 0, V1: 3, V2: 2, Surface: 0},
		{V0: 4, V1: 5, V2: 6, Surface: 0}, {V0: 4, V1: 6, V2: 7, Surface: 0},
		{V0: 0, V1: 1, V2: 5, Surface: 0}, {V0: 0, V1: 5, V2: 4, Surface: 0},
		{V0: 3, V1: 7, V2: 6, Surface: 0}, {V0: 3, V1: 6, V2: 2, Surface: 0},
		{V0: 0, V1: 4, V2: 7, Surface: 0}, {V0: 0, V1: 7, V2: 3, Surface: 0},
		{V0: 1, V1: 2, V2: 6, Surface: 0}, {V0: 1, V1: 6, V2: 5, Surface: 0},
	}
	surf := []geometry.Surface{{Specular: volume.Unit().Scale(0.95), Diffuse: volume.Unit().Scale(0.95)}}
	g, err := geometry.New(tris, verts, surf)
	if err != nil {
		panic(err)
	}
	return g
}

func rawResult(t *testing.T) (*tracer.RawResult, geometry.Vec3) {
	t.Helper()
	g := box()
	tr := tracer.New(g, tracer.WithBatchSize(8))
	source := geometry.Vec3{X: 0, Y: 2, Z: 2}
	receiver := geometry.Vec3{X: 0, Y: 2, Z: 0}
	dirs := []geometry.Vec3{
		{X: 0, Y: 0, Z: -1}, {X: 0, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0}, {X: 0, Y: 1, Z: 0},
	}
	res, err := tr.Trace(context.Background(), dirs, source, receiver, 4, 4)
	if err != nil {
		t.Fatalf("unexpected trace error: %v", err)
	}
	return res, receiver
}

func TestSpeakerBankOmniPassesThrough(t *testing.T) {
	raw, receiver := rawResult(t)
	out := SpeakerBank{}.Attenuate(receiver, raw, []kernel.Speaker{{Direction: geometry.Vec3{X: 0, Y: 0, Z: 1}, Shape: 0}})
	if len(out) != 1 {
		t.Fatalf("expected one stream per speaker")
	}
	in := append(append([]kernel.Impulse(nil), raw.RawDiffuse()...), raw.RawImages()...)
	for j, imp := range out[0] {
		for i, lane := range imp.Volume {
			orig := in[j].Volume[i]
			if lane != orig {
				t.Fatalf("omni speaker must pass volume through unchanged")
			}
		}
	}
}

func TestSpeakerBankNeverProducesNegativeSum(t *testing.T) {
	raw, receiver := rawResult(t)
	out := SpeakerBank{}.Attenuate(receiver, raw, []kernel.Speaker{{Direction: geometry.Vec3{X: 0, Y: 0, Z: 1}, Shape: 1}})
	for _, imp := range out[0] {
		if imp.Volume.Sum() < 0 {
			t.Fatalf("expected non-negative volume sum after attenuation, got %v", imp.Volume.Sum())
		}
	}
}

func TestHRTFAttenuatorReturnsTwoChannels(t *testing.T) {
	raw, receiver := rawResult(t)
	att := HRTFAttenuator{Table: hrtf.Default()}
	out := att.Attenuate(receiver, raw, geometry.Vec3{X: 0, Y: 0, Z: 1}, geometry.Vec3{X: 0, Y: 1, Z: 0})
	if len(out[0]) != len(out[1]) {
		t.Fatalf("expected left/right channels to have matching length")
	}
	if len(out[0]) != len(raw.RawDiffuse())+len(raw.RawImages()) {
		t.Fatalf("expected channel length to equal diffuse+image section length")
	}
}
