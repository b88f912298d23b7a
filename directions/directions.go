// Package directions generates the launch directions fed to the tracer.
// Spec §6 places the generator's internals out of scope and specifies
// only its contract: N unit vectors in. This package supplies a
// deterministic Fibonacci-sphere lattice rather than an RNG-drawn one,
// for the same reason the teacher's irsynth.GenerateStereo prefers
// deterministic placement for its reproducible parts and reserves
// randomness for non-critical jitter (amplitude, phase, pan).
package directions

import "math"

// goldenAngle is the angle (radians) between successive points on a
// Fibonacci sphere lattice.
const goldenAngle = math.Pi * (3 - 2.2360679774997896 /* sqrt(5) */)

// Vec3 mirrors geometry.Vec3's shape without importing geometry, keeping
// this package a dependency-free leaf the tracer's caller adapts from.
type Vec3 struct {
	X, Y, Z float64
}

// Fibonacci returns n unit vectors laid out on a Fibonacci-sphere
// lattice: deterministic, near-uniform point density, no RNG seed to
// manage. n must be > 0.
func Fibonacci(n int) []Vec3 {
	if n <= 0 {
		return nil
	}
	out := make([]Vec3, n)
	for i := 0; i < n; i++ {
		// y runs from just under +1 to just above -1, evenly spaced.
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		radius := math.Sqrt(math.Max(0, 1-y*y))
		theta := goldenAngle * float64(i)
		out[i] = Vec3{
			X: math.Cos(theta) * radius,
			Y: y,
			Z: math.Sin(theta) * radius,
		}
	}
	return out
}
