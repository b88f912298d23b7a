// Package dsp provides the per-sample biquad primitive used by the filter
// bank's one-pass and two-pass bandpass paths.
package dsp

import "math"

// Biquad implements a second-order IIR filter (no heap allocations in Process).
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients.
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter.
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewBandpass creates an RBJ constant-skirt-gain bandpass biquad from a
// [lo, hi] band edge pair. Center and Q are derived the way the spec
// requires: center = sqrt(lo*hi), Q = sin(w)/(ln2 * log2(hi/lo) * w).
func NewBandpass(lo, hi, sampleRate float64) *Biquad {
	center := math.Sqrt(lo * hi)
	w0 := 2.0 * math.Pi * center / sampleRate
	bw := math.Log2(hi / lo)
	q := math.Sin(w0) / (math.Ln2 * bw * w0)
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}
