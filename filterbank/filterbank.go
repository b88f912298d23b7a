// Package filterbank turns a per-band flattened grid into a final
// waveform: per-band bandpass filtering, mixdown, optional DC-removal
// high-pass, optional normalize, volume scale, and tail trim (spec §4.6).
package filterbank

import (
	"fmt"
	"sync"

	"github.com/reuk/parallel-reverb-raytracer/dsp"
	"github.com/reuk/parallel-reverb-raytracer/flatten"
	"github.com/reuk/parallel-reverb-raytracer/internal/numeric"
)

// FilterBank applies one of the three bandpass Kinds across the fixed
// octave bands, at a fixed sample rate. FFT plans used by the Sinc and
// high-pass paths are cached per FFT length and released by Close.
type FilterBank struct {
	sampleRate float64
	kind       Kind
	plans      sync.Map // map[int]*fftPlan
}

// New builds a FilterBank for the given sample rate and filter Kind.
func New(sampleRate float64, kind Kind) *FilterBank {
	return &FilterBank{sampleRate: sampleRate, kind: kind}
}

// Close releases every cached FFT plan (spec §9's "cached FFT plans ...
// guaranteed release on filter-bank destruction").
func (fb *FilterBank) Close() error {
	fb.plans.Range(func(key, _ any) bool {
		fb.plans.Delete(key)
		return true
	})
	return nil
}

func (fb *FilterBank) getPlan(n int) (*fftPlan, error) {
	if v, ok := fb.plans.Load(n); ok {
		return v.(*fftPlan), nil
	}
	p, err := newFFTPlan(n)
	if err != nil {
		return nil, err
	}
	actual, _ := fb.plans.LoadOrStore(n, p)
	return actual.(*fftPlan), nil
}

// Options bundles the optional post-processing stages (spec §4.6).
type Options struct {
	HighPass    bool
	Normalize   bool
	VolumeScale float64
	TrimTail    bool
}

// Process runs the full filter-bank pipeline over one grid per channel:
// per-band bandpass filtering and mixdown, then (in order) high-pass,
// normalize, volume scale, and tail trim, each applied only if requested
// (spec §4.6).
func (fb *FilterBank) Process(grids []*flatten.Grid, opts Options) ([][]float32, error) {
	channels := make([][]float64, len(grids))
	for c, g := range grids {
		mixed, err := fb.filterBands(g)
		if err != nil {
			return nil, fmt.Errorf("filterbank: channel %d: %w", c, err)
		}
		channels[c] = mixed
	}

	if opts.HighPass {
		for c, ch := range channels {
			filtered, err := fb.highPass(ch)
			if err != nil {
				return nil, fmt.Errorf("filterbank: high-pass channel %d: %w", c, err)
			}
			channels[c] = filtered
		}
	}

	if opts.Normalize {
		normalize(channels)
	}

	scale := opts.VolumeScale
	if scale != 1 {
		for _, ch := range channels {
			for i := range ch {
				ch[i] *= scale
			}
		}
	}

	if opts.TrimTail {
		channels = trimTail(channels)
	}

	out := make([][]float32, len(channels))
	for c, ch := range channels {
		row := make([]float32, len(ch))
		for i, v := range ch {
			row[i] = float32(v)
		}
		out[c] = row
	}
	return out, nil
}

// filterBands bandpass-filters each of the 8 bands of g and sums them
// into a single mixed-down waveform.
func (fb *FilterBank) filterBands(g *flatten.Grid) ([]float64, error) {
	length := len(g.Bands[0])
	mix := make([]float64, length)
	for b := 0; b < len(g.Bands); b++ {
		lo, hi := BandEdges[b], BandEdges[b+1]
		band := make([]float64, length)
		for i, v := range g.Bands[b] {
			band[i] = float64(v)
		}
		filtered, err := fb.bandpass(band, lo, hi)
		if err != nil {
			return nil, err
		}
		for i := 0; i < length; i++ {
			mix[i] += filtered[i]
		}
	}
	return mix, nil
}

func (fb *FilterBank) bandpass(x []float64, lo, hi float64) ([]float64, error) {
	switch fb.kind {
	case Sinc:
		kernel := bandpassKernel(lo, hi, fb.sampleRate, SincLength)
		return fb.convolve(x, kernel)
	case OnePass:
		return onePass(x, dsp.NewBandpass(lo, hi, fb.sampleRate)), nil
	case TwoPass:
		return twoPass(x, lo, hi, fb.sampleRate), nil
	default:
		return nil, fmt.Errorf("filterbank: unknown kind %d", fb.kind)
	}
}

// highPass applies the fixed 10 Hz windowed-sinc high-pass used to strip
// DC drift out of the biquad paths (spec §4.6).
func (fb *FilterBank) highPass(x []float64) ([]float64, error) {
	kernel := highpassKernel(HighPassCutoffHz/fb.sampleRate, SincLength)
	return fb.convolve(x, kernel)
}

func (fb *FilterBank) convolve(x, kernel []float64) ([]float64, error) {
	if len(x) == 0 {
		return x, nil
	}
	full := len(x) + len(kernel) - 1
	n := nextPow2(full)
	plan, err := fb.getPlan(n)
	if err != nil {
		return nil, err
	}
	return plan.convolve(x, kernel, len(x))
}

func onePass(x []float64, b *dsp.Biquad) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(b.Process(float32(v)))
	}
	return out
}

// twoPass runs forward, reverse, forward, reverse: zero phase, steeper
// slope, offline only (spec §4.6.2).
func twoPass(x []float64, lo, hi, sampleRate float64) []float64 {
	b := dsp.NewBandpass(lo, hi, sampleRate)
	stage1 := onePass(x, b)
	reverse(stage1)

	b.Reset()
	stage2 := onePass(stage1, b)
	reverse(stage2)
	return stage2
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func normalize(channels [][]float64) {
	var max float64
	for _, ch := range channels {
		for _, v := range ch {
			if a := abs(v); a > max {
				max = a
			}
		}
	}
	if max == 0 {
		return
	}
	for _, ch := range channels {
		for i := range ch {
			ch[i] /= max
		}
	}
}

// trimTail finds, per channel, the last sample with |x| >= TailTrimThreshold;
// all channels are truncated to the max of those positions (spec §4.6).
func trimTail(channels [][]float64) [][]float64 {
	length := 0
	for _, ch := range channels {
		last := -1
		for i := len(ch) - 1; i >= 0; i-- {
			if abs(ch[i]) >= TailTrimThreshold {
				last = i
				break
			}
		}
		if last+1 > length {
			length = last + 1
		}
	}
	out := make([][]float64, len(channels))
	for c, ch := range channels {
		cut := numeric.MinInt(length, len(ch))
		out[c] = append([]float64(nil), ch[:cut]...)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
