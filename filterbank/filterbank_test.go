package filterbank

import (
	"math"
	"testing"

	"github.com/reuk/parallel-reverb-raytracer/flatten"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

func impulseGrid(sampleRate float64, length int, spikeIdx int, amp float32) *flatten.Grid {
	g := &flatten.Grid{}
	for b := 0; b < volume.Bands; b++ {
		g.Bands[b] = make([]float32, length)
		if spikeIdx >= 0 && spikeIdx < length {
			g.Bands[b][spikeIdx] = amp
		}
	}
	return g
}

func TestBandEdgesMonotonic(t *testing.T) {
	for i := 1; i < len(BandEdges); i++ {
		if BandEdges[i] <= BandEdges[i-1] {
			t.Fatalf("band edges not strictly increasing at %d: %v <= %v", i, BandEdges[i], BandEdges[i-1])
		}
	}
}

func TestParseKindKnownNames(t *testing.T) {
	cases := map[string]Kind{
		"sinc":           Sinc,
		"onepass":        OnePass,
		"twopass":        TwoPass,
		"linkwitz_riley": TwoPass,
	}
	for name, want := range cases {
		got, ok := ParseKind(name)
		if !ok {
			t.Fatalf("ParseKind(%q): expected ok", name)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseKindUnknownName(t *testing.T) {
	if _, ok := ParseKind("bogus"); ok {
		t.Fatalf("ParseKind(bogus): expected not ok")
	}
}

func TestProcessSincProducesBoundedOutput(t *testing.T) {
	fb := New(44100, Sinc)
	defer fb.Close()

	g := impulseGrid(44100, 512, 100, 1.0)
	out, err := fb.Process([]*flatten.Grid{g}, Options{VolumeScale: 1})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(out))
	}
	if len(out[0]) != 512 {
		t.Fatalf("expected length 512, got %d", len(out[0]))
	}
	for i, v := range out[0] {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d is non-finite: %v", i, v)
		}
	}
}

func TestProcessOnePassAndTwoPassMatchLengthWithEnergy(t *testing.T) {
	g := impulseGrid(44100, 256, 50, 1.0)

	fb1 := New(44100, OnePass)
	defer fb1.Close()
	out1, err := fb1.Process([]*flatten.Grid{g}, Options{VolumeScale: 1})
	if err != nil {
		t.Fatalf("onepass Process: %v", err)
	}

	fb2 := New(44100, TwoPass)
	defer fb2.Close()
	out2, err := fb2.Process([]*flatten.Grid{g}, Options{VolumeScale: 1})
	if err != nil {
		t.Fatalf("twopass Process: %v", err)
	}

	if len(out1[0]) != len(out2[0]) {
		t.Fatalf("length mismatch: onepass %d, twopass %d", len(out1[0]), len(out2[0]))
	}
	var e1, e2 float64
	for i := range out1[0] {
		e1 += float64(out1[0][i]) * float64(out1[0][i])
		e2 += float64(out2[0][i]) * float64(out2[0][i])
	}
	if e1 == 0 || e2 == 0 {
		t.Fatalf("expected nonzero energy, got onepass=%v twopass=%v", e1, e2)
	}
}

func TestProcessVolumeScale(t *testing.T) {
	g := impulseGrid(44100, 256, 50, 1.0)

	fbUnit := New(44100, OnePass)
	defer fbUnit.Close()
	unit, err := fbUnit.Process([]*flatten.Grid{g}, Options{VolumeScale: 1})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	fbHalf := New(44100, OnePass)
	defer fbHalf.Close()
	half, err := fbHalf.Process([]*flatten.Grid{g}, Options{VolumeScale: 0.5})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	for i := range unit[0] {
		want := unit[0][i] * 0.5
		got := half[0][i]
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-4 {
			t.Fatalf("sample %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestProcessNormalizeBoundsPeakToOne(t *testing.T) {
	g := impulseGrid(44100, 256, 50, 4.0)
	fb := New(44100, OnePass)
	defer fb.Close()

	out, err := fb.Process([]*flatten.Grid{g}, Options{VolumeScale: 1, Normalize: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	var max float32
	for _, v := range out[0] {
		a := v
		if a < 0 {
			a = -a
		}
		if a > max {
			max = a
		}
	}
	if max > 1.0+1e-4 {
		t.Fatalf("expected peak <= 1 after normalize, got %v", max)
	}
	if max < 0.99 {
		t.Fatalf("expected peak close to 1 after normalize, got %v", max)
	}
}

func TestProcessTrimTailShortensSilentOutput(t *testing.T) {
	g := impulseGrid(44100, 4096, 10, 1.0)
	fb := New(44100, OnePass)
	defer fb.Close()

	out, err := fb.Process([]*flatten.Grid{g}, Options{VolumeScale: 1, TrimTail: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out[0]) >= 4096 {
		t.Fatalf("expected trim to shorten output, got length %d", len(out[0]))
	}
}

func TestProcessZeroChannels(t *testing.T) {
	fb := New(44100, Sinc)
	defer fb.Close()
	out, err := fb.Process(nil, Options{VolumeScale: 1})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected 0 channels, got %d", len(out))
	}
}

func TestProcessHighPassRemovesDC(t *testing.T) {
	length := 2048
	g := &flatten.Grid{}
	for b := 0; b < volume.Bands; b++ {
		g.Bands[b] = make([]float32, length)
		for i := range g.Bands[b] {
			g.Bands[b][i] = 0.1
		}
	}
	fb := New(44100, OnePass)
	defer fb.Close()

	out, err := fb.Process([]*flatten.Grid{g}, Options{VolumeScale: 1, HighPass: true})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	tail := out[0][length-256:]
	var mean float64
	for _, v := range tail {
		mean += float64(v)
	}
	mean /= float64(len(tail))
	if math.Abs(mean) > 0.05 {
		t.Fatalf("expected near-zero DC after high-pass, got mean %v", mean)
	}
}
