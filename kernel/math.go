package kernel

import "github.com/reuk/parallel-reverb-raytracer/geometry"

// plane is the vertex data of a (possibly already-reflected) triangle,
// used by the image-source mirroring chain.
type plane struct {
	V0, V1, V2 geometry.Vec3
}

// triangleIntersect is the classic Möller-Trumbore ray/triangle test. It
// returns the signed distance along dir from origin to the hit point, or
// 0 if the ray misses or the triangle is degenerate (|det| < epsilon).
func triangleIntersect(v0, v1, v2, origin, dir geometry.Vec3) float32 {
	e0 := v1.Sub(v0)
	e1 := v2.Sub(v0)

	pvec := dir.Cross(e1)
	det := e0.Dot(pvec)
	if det > -epsilon && det < epsilon {
		return 0
	}

	invdet := 1 / det
	tvec := origin.Sub(v0)
	u := invdet * tvec.Dot(pvec)
	if u < 0 || u > 1 {
		return 0
	}

	qvec := tvec.Cross(e0)
	v := invdet * dir.Dot(qvec)
	if v < 0 || u+v > 1 {
		return 0
	}

	return invdet * e1.Dot(qvec)
}

func triangleNormal(v0, v1, v2 geometry.Vec3) geometry.Vec3 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

func planeNormal(p plane) geometry.Vec3 {
	return triangleNormal(p.V0, p.V1, p.V2)
}

// reflect mirrors direction about the plane with the given normal.
func reflect(direction, normal geometry.Vec3) geometry.Vec3 {
	return direction.Sub(normal.Scale(2 * direction.Dot(normal)))
}

// mirrorPoint reflects p across the plane defined by mirror.
func mirrorPoint(p geometry.Vec3, mirror plane) geometry.Vec3 {
	n := planeNormal(mirror)
	dist := n.Dot(p.Sub(mirror.V0))
	return p.Sub(n.Scale(2 * dist))
}

// mirrorPlane reflects every vertex of in across the plane defined by mirror.
func mirrorPlane(in plane, mirror plane) plane {
	return plane{
		V0: mirrorPoint(in.V0, mirror),
		V1: mirrorPoint(in.V1, mirror),
		V2: mirrorPoint(in.V2, mirror),
	}
}

// nearestHit scans every triangle in geo and returns the index and
// distance of the nearest intersection along the ray (origin, dir), if
// any. Degenerate triangles and intersections at or before epsilon are
// skipped, matching the device kernel's error policy (spec §4.2).
func nearestHit(g *geometry.Geometry, origin, dir geometry.Vec3) (triIdx int, dist float32, ok bool) {
	verts := g.Vertices()
	best := float32(0)
	bestIdx := -1
	for i, tri := range g.Triangles() {
		d := triangleIntersect(verts[tri.V0], verts[tri.V1], verts[tri.V2], origin, dir)
		if d > epsilon && (bestIdx == -1 || d < best) {
			best = d
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return 0, 0, false
	}
	return bestIdx, best, true
}

// segmentUnobstructed reports whether the straight segment from a to b is
// clear of every triangle in g: the nearest hit along the ray, if any,
// must fall beyond the segment's own length.
func segmentUnobstructed(g *geometry.Geometry, a, b geometry.Vec3) bool {
	d := b.Sub(a)
	mag := d.Length()
	if mag <= epsilon {
		return true
	}
	dir := d.Scale(1 / mag)
	_, hitDist, ok := nearestHit(g, a, dir)
	return !ok || hitDist > mag
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
