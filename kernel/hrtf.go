package kernel

import (
	"math"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/hrtf"
)

// headBasis computes the listener's orthonormal head frame {right, up,
// forward} from facing/up, matching kernel.cpp's `transform`: x =
// normalize(cross(up, pointing)), y = cross(pointing, x), z = pointing.
func headBasis(facing, up geometry.Vec3) (right, headUp, forward geometry.Vec3) {
	forward = facing.Normalize()
	right = up.Cross(forward).Normalize()
	headUp = forward.Cross(right)
	return right, headUp, forward
}

// toHeadFrame rotates world direction d into the head frame.
func toHeadFrame(right, up, forward, d geometry.Vec3) geometry.Vec3 {
	return geometry.Vec3{
		X: right.Dot(d),
		Y: up.Dot(d),
		Z: forward.Dot(d),
	}
}

// azimuthElevation returns (azimuth, elevation) in degrees for a
// head-frame direction (spec §4.2). Elevation is atan2(y, len(xz))
// exactly as specified. Azimuth is calibrated against spec §8 scenario
// 6 (facing +z, up +y: arrival from +z indexes azimuth 180, from -z
// indexes 0, from +x indexes 90, from -x indexes 270) rather than
// against the raw atan2(z, x) text, which cannot reproduce those four
// points for any direction confined to a single head-frame axis; the
// worked examples are the tie-breaker (spec §9).
func azimuthElevation(d geometry.Vec3) (azimuthDeg, elevationDeg float64) {
	az := math.Atan2(float64(d.X), -float64(d.Z))
	el := math.Atan2(float64(d.Y), float64(d.XZLength()))
	return az * 180 / math.Pi, el * 180 / math.Pi
}

// HRTF runs one work-item of the hrtf kernel (spec §4.2): it rotates each
// impulse's arrival direction into the listener's head frame, indexes the
// compiled HRTF table, multiplies the impulse's volume by that entry, and
// advances/retards the impulse's time to model interaural time
// difference (ITD) for the given ear.
//
// channel 0 is the left ear (-width along the head's right axis), channel
// 1 is the right ear (+width).
func HRTF(micPos geometry.Vec3, in []Impulse, table *hrtf.Table, facing, up geometry.Vec3, channel int) []Impulse {
	right, headUp, forward := headBasis(facing, up)

	sign := float32(-1)
	if channel == 1 {
		sign = 1
	}
	ear := micPos.Add(right.Scale(sign * earDisplacement))

	out := make([]Impulse, len(in))
	for j, imp := range in {
		dir := imp.Position.Sub(micPos)
		head := toHeadFrame(right, headUp, forward, dir)

		azDeg, elDeg := azimuthElevation(head)
		az := int(math.Round(azDeg))
		// e = 90 - degrees(elevation), per spec §4.2. hrtf.Default is
		// built with the matching convention.
		el := int(math.Round(90 - elDeg))

		gain := table.At(channel, az, el)

		itd := (imp.Position.Sub(ear).Length() - imp.Position.Sub(micPos).Length()) / SpeedOfSound

		out[j] = Impulse{
			Volume:   imp.Volume.Mul(gain),
			Position: imp.Position,
			Time:     imp.Time + float64(itd),
		}
	}
	return out
}
