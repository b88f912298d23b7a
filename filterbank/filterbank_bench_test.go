package filterbank

import (
	"testing"

	"github.com/reuk/parallel-reverb-raytracer/flatten"
)

func BenchmarkProcessSinc(b *testing.B) {
	const sampleRate = 44100.0
	grids := []*flatten.Grid{
		impulseGrid(sampleRate, 44100, 0, 1),
		impulseGrid(sampleRate, 44100, 0, 1),
	}
	fb := New(sampleRate, Sinc)
	defer fb.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fb.Process(grids, Options{Normalize: true, TrimTail: true}); err != nil {
			b.Fatalf("Process: %v", err)
		}
	}
}
