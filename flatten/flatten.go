// Package flatten bins time-stamped impulses onto a per-band sample grid
// (spec §4.5).
package flatten

import (
	"math"

	"github.com/reuk/parallel-reverb-raytracer/internal/numeric"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

// Grid is the per-band impulse response for one channel: Bands[b][s] is
// the accumulated energy in band b at sample s.
type Grid struct {
	Bands [volume.Bands][]float32
}

// Flatten computes max_time over impulses, allocates an 8×L zero grid
// where L = round(max_time*sampleRate)+1, and lane-wise adds every
// impulse's volume into grid[:, round(time*sampleRate)]. Collisions sum
// (spec §4.5's tie policy); zero impulses produce a length-0 grid.
func Flatten(impulses []kernel.Impulse, sampleRate float64) *Grid {
	g := &Grid{}
	if len(impulses) == 0 {
		return g
	}

	maxTime := impulses[0].Time
	for _, imp := range impulses[1:] {
		if imp.Time > maxTime {
			maxTime = imp.Time
		}
	}

	length := int(math.Round(maxTime*sampleRate)) + 1
	if length < 1 {
		length = 1
	}
	for b := range g.Bands {
		g.Bands[b] = make([]float32, length)
	}

	for _, imp := range impulses {
		sample := numeric.MaxInt(0, numeric.MinInt(int(math.Round(imp.Time*sampleRate)), length-1))
		for b := 0; b < volume.Bands; b++ {
			g.Bands[b][sample] += imp.Volume[b]
		}
	}

	return g
}
