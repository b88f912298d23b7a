package flatten

import (
	"testing"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

func TestFlattenZeroImpulses(t *testing.T) {
	g := Flatten(nil, 44100)
	for b, band := range g.Bands {
		if len(band) != 0 {
			t.Fatalf("band %d: expected length-0 grid for zero impulses, got %d", b, len(band))
		}
	}
}

func TestFlattenSingleTimeProducesLengthOneGrid(t *testing.T) {
	imps := []kernel.Impulse{
		{Volume: volume.Unit(), Position: geometry.Vec3{}, Time: 0},
		{Volume: volume.Unit(), Position: geometry.Vec3{}, Time: 0},
	}
	g := Flatten(imps, 44100)
	for b, band := range g.Bands {
		if len(band) != 1 {
			t.Fatalf("band %d: expected length-1 grid, got %d", b, len(band))
		}
	}
}

func TestFlattenRoundTripSumsVolume(t *testing.T) {
	imps := []kernel.Impulse{
		{Volume: volume.Unit().Scale(0.5), Time: 0.001},
		{Volume: volume.Unit().Scale(0.25), Time: 0.002},
		{Volume: volume.Unit().Scale(0.25), Time: 0.002},
	}
	sr := 44100.0
	g := Flatten(imps, sr)

	var wantSum volume.Volume
	for _, imp := range imps {
		wantSum = wantSum.Add(imp.Volume)
	}

	var gotSum volume.Volume
	for b := 0; b < volume.Bands; b++ {
		for _, x := range g.Bands[b] {
			gotSum[b] += x
		}
	}

	for b := range gotSum {
		diff := gotSum[b] - wantSum[b]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-4 {
			t.Fatalf("band %d: expected round-trip sum %v, got %v", b, wantSum[b], gotSum[b])
		}
	}
}

func TestFlattenCollisionsSum(t *testing.T) {
	imps := []kernel.Impulse{
		{Volume: volume.Unit(), Time: 0.5},
		{Volume: volume.Unit(), Time: 0.5},
	}
	g := Flatten(imps, 1000)
	sampleIdx := int(0.5 * 1000)
	for b := 0; b < volume.Bands; b++ {
		if g.Bands[b][sampleIdx] != 2 {
			t.Fatalf("band %d: expected colliding impulses to sum to 2, got %v", b, g.Bands[b][sampleIdx])
		}
	}
}
