package kernel

import (
	"testing"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
)

func BenchmarkRayTrace(b *testing.B) {
	g := box(0.9, 0.1)
	source := geometry.Vec3{X: 0, Y: 0, Z: 0}
	receiver := geometry.Vec3{X: 1, Y: 1, Z: 1}
	dir := geometry.Vec3{X: 1, Y: 0.3, Z: 0.1}.Normalize()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = RayTrace(g, source, receiver, dir, 32, 10)
	}
}
