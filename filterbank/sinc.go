package filterbank

import "math"

// lowpassKernel builds a Blackman-windowed sinc low-pass kernel with
// normalized cutoff (cutoff/sampleRate), length samples, normalized to
// unit DC gain (spec §4.6.1).
func lowpassKernel(normalizedCutoff float64, length int) []float64 {
	kernel := make([]float64, length)
	m := float64(length - 1)
	var sum float64
	for i := 0; i < length; i++ {
		n := float64(i) - m/2
		var s float64
		if n == 0 {
			s = 2 * normalizedCutoff
		} else {
			s = math.Sin(2*math.Pi*normalizedCutoff*n) / (math.Pi * n)
		}
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(i)/m) + 0.08*math.Cos(4*math.Pi*float64(i)/m)
		kernel[i] = s * w
		sum += kernel[i]
	}
	if sum != 0 {
		for i := range kernel {
			kernel[i] /= sum
		}
	}
	return kernel
}

// highpassKernel is spectral inversion of a low-pass kernel: δ − low-pass
// (spec §4.6.1).
func highpassKernel(normalizedCutoff float64, length int) []float64 {
	low := lowpassKernel(normalizedCutoff, length)
	high := make([]float64, length)
	for i := range low {
		high[i] = -low[i]
	}
	high[length/2] += 1
	return high
}

// bandpassKernel is the convolution of a low-pass kernel at hi with a
// high-pass kernel at lo (spec §4.6.1).
func bandpassKernel(lo, hi, sampleRate float64, length int) []float64 {
	low := lowpassKernel(hi/sampleRate, length)
	high := highpassKernel(lo/sampleRate, length)
	return convolveDirect(low, high)
}

// convolveDirect computes the full linear convolution of a and b
// (length len(a)+len(b)-1) directly; used only for building the (short,
// fixed-length) filter kernels themselves, not for filtering signals.
func convolveDirect(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}
