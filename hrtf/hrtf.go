// Package hrtf provides the compiled-in Head-Related Transfer Function
// table consumed by the kernel's HRTF attenuation (spec §3, §6). Loading
// measured HRTF files is explicitly out of scope (spec §6); Default
// builds an analytically-generated stand-in table with the same
// 2 (channel) × 360 (azimuth) × 180 (elevation) shape and indexing
// convention the kernel expects.
package hrtf

import (
	"math"

	"github.com/reuk/parallel-reverb-raytracer/internal/numeric"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

const (
	Channels   = 2
	Azimuths   = 360
	Elevations = 180
)

// Table is a fixed (channels=2) × (azimuth=360°) × (elevation=180°) table
// of Volume, each entry the left/right band-wise attenuation for a unit
// direction expressed in the listener's head frame.
type Table struct {
	data [Channels][Azimuths][Elevations]volume.Volume
}

// At returns the Volume for the given channel, azimuth (degrees, wrapped
// mod 360) and elevation index (degrees after the spec §4.2 `90 -
// degrees(elevation)` remap, wrapped mod 180).
func (t *Table) At(channel, azimuth, elevation int) volume.Volume {
	az := ((azimuth % Azimuths) + Azimuths) % Azimuths
	el := ((elevation % Elevations) + Elevations) % Elevations
	return t.data[channel][az][el]
}

// Default builds a stand-in HRTF table. It models a pair of cardioid-like
// ears (left ear pointing toward -x, right toward +x in head space, per
// the kernel's ON basis {right, up, forward}) with a per-band spectral
// tilt toward the ipsilateral side (a coarse but directionally-consistent
// approximation of pinna/head shadowing), documented in DESIGN.md as a
// substitute for a measured table.
func Default() *Table {
	var t Table
	for az := 0; az < Azimuths; az++ {
		azRad := float64(az) * math.Pi / 180
		// Head-frame axes are x = right, y = up, z = forward. Under
		// kernel.HRTF's azimuth = atan2(x, -z) convention (calibrated
		// against spec §8 scenario 6; see kernel/hrtf.go) this slot
		// points along (sin az, ·, -cos az). The forward component does
		// not enter the gain model, so only x and y are computed.
		dx := math.Sin(azRad)
		for el := 0; el < Elevations; el++ {
			// Invert the kernel's `e = 90 - degrees(elevation)` remap to
			// recover the listener-frame elevation for this table slot.
			elevDeg := 90 - el
			elevRad := float64(elevDeg) * math.Pi / 180
			dy := math.Sin(elevRad)
			horiz := math.Cos(elevRad)
			dirX := dx * horiz
			dirY := dy

			for ch := 0; ch < Channels; ch++ {
				ear := -1.0
				if ch == 1 {
					ear = 1.0
				}
				// Cardioid-like gain toward the ipsilateral ear direction.
				ipsi := 0.5 + 0.5*(ear*dirX)
				t.data[ch][az][el] = bandResponse(ipsi, dirY)
			}
		}
	}
	return &t
}

// bandResponse builds a Volume from a broadband ipsilateral gain and an
// elevation cue, applying a mild high-frequency emphasis for sounds from
// above and a matching cut for sounds from below, the way a real pinna
// response tilts spectrally with elevation. The tilt depends on
// elevation only, not on azimuth.
func bandResponse(ipsi, elevationSin float64) volume.Volume {
	var v volume.Volume
	for i := range v {
		bandTilt := 1.0 + 0.05*float64(i)*elevationSin
		if bandTilt < 0 {
			bandTilt = 0
		}
		gain := numeric.Clamp(ipsi*bandTilt, 0, 1)
		v[i] = float32(gain)
	}
	return v
}
