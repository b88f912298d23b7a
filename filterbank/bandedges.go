package filterbank

import "github.com/reuk/parallel-reverb-raytracer/volume"

// BandEdges are the fixed octave-band boundaries in Hz (spec §4.6): eight
// bands, nine edges.
var BandEdges = [volume.Bands + 1]float64{20, 175, 350, 700, 1400, 2800, 5600, 11200, 20000}

// SincLength is the windowed-sinc low-pass/high-pass component length
// before the two components are convolved into one bandpass kernel
// (spec §4.6.1).
const SincLength = 29

// HighPassCutoffHz is the fixed DC-removal high-pass cutoff (spec §4.6).
const HighPassCutoffHz = 10

// TailTrimThreshold is the |x| floor below which a sample is considered
// silent for tail-trim purposes (spec §4.6).
const TailTrimThreshold = 1e-5

// Kind selects one of the three bandpass filter algorithms (spec §4.6).
type Kind int

const (
	// Sinc is the windowed-sinc FFT-convolution bandpass.
	Sinc Kind = iota
	// OnePass is a single causal RBJ biquad pass.
	OnePass
	// TwoPass is forward/reverse/forward/reverse biquad filtering for
	// zero phase (offline only).
	TwoPass
)

// ParseKind maps a config filter name to a Kind. "linkwitz_riley" has no
// distinct algorithm description in spec §4.6 (only three kinds are
// defined there); it is treated as TwoPass, since a Linkwitz-Riley
// crossover is itself built from cascaded, zero-phase-equivalent
// sections and TwoPass is this bank's zero-phase option.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "sinc":
		return Sinc, true
	case "onepass":
		return OnePass, true
	case "twopass":
		return TwoPass, true
	case "linkwitz_riley":
		return TwoPass, true
	default:
		return 0, false
	}
}
