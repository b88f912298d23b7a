// Package kernel implements the three device kernels from spec §4.2:
// RayTrace, Attenuate (speaker), and HRTF. Each is a pure, allocation-
// bounded per-work-item function with no inter-item synchronization,
// matching the spec's "massively parallel SIMT engine" model (§1, §5).
// The tracer drives RayTrace across a bounded goroutine pool standing in
// for a work group; see the tracer package.
package kernel

import (
	"math"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

const (
	// SpeedOfSound is the fixed propagation speed used to convert
	// distances to arrival times (spec §4.2).
	SpeedOfSound = 340.0

	// epsilon bounds ray/triangle degeneracy and piercing-distance checks.
	epsilon = 1e-4

	// earDisplacement is the half-width used by the HRTF kernel's ITD
	// computation (spec §4.2: "width = 0.1 m").
	earDisplacement = 0.1

	// MaxImageOrder is the fixed upper bound M on image-source reflection
	// order (spec §3: "M is the max image-source order, <=10"). It is an
	// architecture constant, not a config key — spec §6's config schema
	// has no entry for it.
	MaxImageOrder = 10
)

// AirAttenuationCoefficients are the fixed per-band air-absorption
// constants from spec §4.2: air_atten(d) = exp(d * c_band). Documented as
// an open question in spec §9 ("should be externally documented with a
// citation and possibly made configurable") — kept as constants here,
// not threaded through config, because spec §6's config schema has no key
// for them.
var AirAttenuationCoefficients = volume.Volume{
	0.001 * -0.1,
	0.001 * -0.2,
	0.001 * -0.5,
	0.001 * -1.1,
	0.001 * -2.7,
	0.001 * -9.4,
	0.001 * -29.0,
	0.001 * -60.0,
}

// AirAttenuation returns air_atten(d) = exp(d * c_band), lane-wise.
func AirAttenuation(d float32) volume.Volume {
	var out volume.Volume
	for i, c := range AirAttenuationCoefficients {
		out[i] = float32(math.Exp(float64(d * c)))
	}
	return out
}

// Attenuation returns attenuation(d) = air_atten(d) / d^2 (spec §4.2). For
// every lane and every d > 0 this is in (0, 1] and strictly decreasing in
// d (spec §8 testable property).
func Attenuation(d float32) volume.Volume {
	return AirAttenuation(d).Scale(1 / (d * d))
}

// Impulse is (volume, position, time) per spec §3. Position is kept for
// later direction computation by the attenuators; time is seconds from
// emission.
type Impulse struct {
	Volume   volume.Volume
	Position geometry.Vec3
	Time     float64
}

// Speaker is a unit direction and a shape coefficient (spec §3).
type Speaker struct {
	Direction geometry.Vec3
	Shape     float32
}

// RayTrace runs one work-item of the raytrace kernel (spec §4.2): it
// marches up to k reflections of a single ray from source in direction
// dir through geo, simultaneously performing the image-source check
// (bounded by m) and the diffuse contribution check toward receiver.
//
// It returns the k diffuse impulses, the m image impulses (slot 0 is
// always the direct path), and the parallel imageIndex slice: imageIndex
// in slot 0 is always 0 (direct path); in slot j>0 it is hitTriangle+1 if
// a valid specular path was found at that depth, or 0 if the slot is
// unwritten.
func RayTrace(geo *geometry.Geometry, source, receiver, dir geometry.Vec3, k, m int) (diffuse []Impulse, image []Impulse, imageIndex []int) {
	diffuse = make([]Impulse, k)
	image = make([]Impulse, m)
	imageIndex = make([]int, m)

	// Step 2: direct-path impulse.
	directDist := receiver.Sub(source).Length()
	image[0] = Impulse{
		Volume:   Attenuation(directDist),
		Position: receiver,
		Time:     float64(directDist) / SpeedOfSound,
	}
	imageIndex[0] = 0

	rayPos := source
	rayDir := dir
	dist := float32(0)
	vol := volume.Unit()
	micReflection := receiver
	var planes []plane

	verts := geo.Vertices()
	surfaces := geo.Surfaces()

	for index := 0; index < k; index++ {
		triIdx, t, ok := nearestHit(geo, rayPos, rayDir)
		if !ok {
			break
		}
		tri := geo.Triangles()[triIdx]
		v0, v1, v2 := verts[tri.V0], verts[tri.V1], verts[tri.V2]

		if index < m-1 {
			current := plane{V0: v0, V1: v1, V2: v2}
			for j := len(planes) - 1; j >= 0; j-- {
				current = mirrorPlane(current, planes[j])
			}
			planes = append(planes, current)
			micReflection = mirrorPoint(micReflection, current)

			diff := micReflection.Sub(source)
			dist3 := diff.Length()
			if dist3 > epsilon {
				dirToMic := diff.Scale(1 / dist3)
				if valid, lastPierce := validateImagePath(geo, planes, source, dirToMic); valid {
					if segmentUnobstructed(geo, lastPierce, receiver) {
						image[index+1] = Impulse{
							Volume:   vol.Mul(Attenuation(dist3)),
							Position: source.Add(receiver).Sub(micReflection),
							Time:     float64(dist3) / SpeedOfSound,
						}
						imageIndex[index+1] = triIdx + 1
					}
				}
			}
		}

		intersection := rayPos.Add(rayDir.Scale(t))
		newDist := dist + t
		normal := triangleNormal(v0, v1, v2)
		surf := surfaces[tri.Surface]

		vecToMic := receiver.Sub(intersection)
		mag := vecToMic.Length()
		var diffVol volume.Volume
		if mag > epsilon {
			shadowDir := vecToMic.Scale(1 / mag)
			_, hitDist, hit := nearestHit(geo, intersection, shadowDir)
			unobstructed := !hit || hitDist > mag
			if unobstructed {
				cosTheta := absf(normal.Dot(shadowDir))
				diffVol = vol.Mul(Attenuation(newDist + mag)).Mul(surf.Diffuse).Scale(cosTheta)
			}
			diffuse[index] = Impulse{
				Volume:   diffVol,
				Position: intersection,
				Time:     float64(newDist+mag) / SpeedOfSound,
			}
		} else {
			diffuse[index] = Impulse{Volume: volume.Zero(), Position: intersection, Time: float64(newDist) / SpeedOfSound}
		}

		rayPos = intersection
		rayDir = reflect(rayDir, normal)
		dist = newDist
		vol = vol.Mul(surf.Specular).Negate()
	}

	return diffuse, image, imageIndex
}

// validateImagePath traces source -> dirToMic and verifies it pierces
// every stored plane, in order, beyond epsilon, and that every segment
// between consecutive piercing points is unobstructed by any other
// triangle (spec §4.2). It returns the last piercing point for the
// caller to additionally check against the receiver.
func validateImagePath(geo *geometry.Geometry, planes []plane, source, dirToMic geometry.Vec3) (bool, geometry.Vec3) {
	pierces := make([]geometry.Vec3, 0, len(planes))
	for _, p := range planes {
		t := triangleIntersect(p.V0, p.V1, p.V2, source, dirToMic)
		if t <= epsilon {
			return false, geometry.Vec3{}
		}
		pierces = append(pierces, source.Add(dirToMic.Scale(t)))
	}
	for i := 1; i < len(pierces); i++ {
		if !segmentUnobstructed(geo, pierces[i-1], pierces[i]) {
			return false, geometry.Vec3{}
		}
	}
	return true, pierces[len(pierces)-1]
}

// Attenuate runs one work-item of the attenuate kernel (spec §4.2): it
// multiplies each impulse's volume by the scalar speaker polar response
// for its arrival direction. Time and position pass through.
func Attenuate(micPos geometry.Vec3, in []Impulse, speaker Speaker) []Impulse {
	out := make([]Impulse, len(in))
	dir := speaker.Direction.Normalize()
	for j, imp := range in {
		d := micPos.Sub(imp.Position)
		response := speakerResponse(d, dir, speaker.Shape)
		out[j] = Impulse{
			Volume:   imp.Volume.Scale(response),
			Position: imp.Position,
			Time:     imp.Time,
		}
	}
	return out
}

func speakerResponse(direction, speakerDir geometry.Vec3, shape float32) float32 {
	l := direction.Length()
	if l == 0 {
		return 1 - shape
	}
	cos := direction.Scale(1 / l).Dot(speakerDir)
	return (1 - shape) + shape*cos
}
