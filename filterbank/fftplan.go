package filterbank

import (
	"errors"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

// fftPlan caches the FFT transform plans for one FFT length, grounded on
// the teacher's analysis/distance.go spectralFFTPlan/lagFFTPlan shape: a
// fast plan when available, a safe fallback plan otherwise, reused across
// calls and guarded by a mutex (algo-fft plans are not goroutine-safe for
// concurrent Forward/Inverse calls sharing scratch state).
type fftPlan struct {
	mu   sync.Mutex
	n    int
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]

	bufX  []float64
	bufK  []float64
	specX []complex128
	specK []complex128
	out   []float64
}

func newFFTPlan(n int) (*fftPlan, error) {
	p := &fftPlan{
		n:     n,
		bufX:  make([]float64, n),
		bufK:  make([]float64, n),
		specX: make([]complex128, n/2+1),
		specK: make([]complex128, n/2+1),
		out:   make([]float64, n),
	}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Fall through to the safe plan; a fast-plan setup failure other
		// than "not implemented" still leaves the safe plan usable.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	return p, nil
}

func (p *fftPlan) forward(dst []complex128, src []float64) error {
	if p.fast != nil {
		p.fast.Forward(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Forward(dst, src)
	}
	return errors.New("filterbank: missing FFT forward plan")
}

func (p *fftPlan) inverse(dst []float64, src []complex128) error {
	if p.fast != nil {
		p.fast.Inverse(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Inverse(dst, src)
	}
	return errors.New("filterbank: missing FFT inverse plan")
}

// convolve computes the first fullLen samples of the full linear
// convolution of x and kernel (both zero-padded into this plan's length).
func (p *fftPlan) convolve(x, kernel []float64, fullLen int) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.bufX)
	clear(p.bufK)
	copy(p.bufX, x)
	copy(p.bufK, kernel)

	if err := p.forward(p.specX, p.bufX); err != nil {
		return nil, err
	}
	if err := p.forward(p.specK, p.bufK); err != nil {
		return nil, err
	}
	for i := range p.specX {
		p.specX[i] *= p.specK[i]
	}
	if err := p.inverse(p.out, p.specX); err != nil {
		return nil, err
	}

	if fullLen > len(p.out) {
		fullLen = len(p.out)
	}
	result := make([]float64, fullLen)
	copy(result, p.out[:fullLen])
	return result, nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
