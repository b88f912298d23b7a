// Package geometry holds the immutable triangle/vertex/surface store that
// the ray-trace kernel and tracer read from (spec §4.1). Geometry is
// built once and never mutated for the lifetime of a tracer.
package geometry

import (
	"fmt"

	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

// Triangle is three vertex indices and one surface index.
type Triangle struct {
	V0, V1, V2 int
	Surface    int
}

// Surface is a pair of band-wise coefficients: Specular (reflected
// fraction, applied on every bounce) and Diffuse (fraction scattered
// toward the receiver at each intersection). Both must have every lane
// in [0, 1].
type Surface struct {
	Specular volume.Volume
	Diffuse  volume.Volume
}

// Bounds is an axis-aligned bounding box over a vertex set.
type Bounds struct {
	Min, Max Vec3
}

// Contains reports whether p lies within the box (inclusive).
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Geometry is the immutable triangle/vertex/surface store. Construct it
// with New; once built, its arrays never change (spec invariant iv).
type Geometry struct {
	triangles []Triangle
	vertices  []Vec3
	surfaces  []Surface
	bounds    Bounds
}

// New validates and wraps the given arrays. It rejects, with a
// *rayverberr.GeometryError: an empty surface list; a triangle that
// references an out-of-range vertex or surface index; or a surface with
// any Volume lane outside [0, 1]. Surface index 0 is always the fallback
// surface for faces that don't match a named material.
func New(triangles []Triangle, vertices []Vec3, surfaces []Surface) (*Geometry, error) {
	if len(surfaces) == 0 {
		return nil, rayverberr.NewGeometryError(fmt.Errorf("surface list is empty"))
	}
	if len(triangles) == 0 {
		return nil, rayverberr.NewGeometryError(fmt.Errorf("mesh has no triangles"))
	}
	for i, s := range surfaces {
		if !s.Specular.InRange01() {
			return nil, rayverberr.NewGeometryError(
				fmt.Errorf("surface %d: specular lane out of [0,1]", i))
		}
		if !s.Diffuse.InRange01() {
			return nil, rayverberr.NewGeometryError(
				fmt.Errorf("surface %d: diffuse lane out of [0,1]", i))
		}
	}
	for i, t := range triangles {
		if t.V0 < 0 || t.V0 >= len(vertices) ||
			t.V1 < 0 || t.V1 >= len(vertices) ||
			t.V2 < 0 || t.V2 >= len(vertices) {
			return nil, rayverberr.NewGeometryError(
				fmt.Errorf("triangle %d references an out-of-range vertex", i))
		}
		if t.Surface < 0 || t.Surface >= len(surfaces) {
			return nil, rayverberr.NewGeometryError(
				fmt.Errorf("triangle %d references an out-of-range surface", i))
		}
	}

	g := &Geometry{
		triangles: append([]Triangle(nil), triangles...),
		vertices:  append([]Vec3(nil), vertices...),
		surfaces:  append([]Surface(nil), surfaces...),
		bounds:    computeBounds(vertices),
	}
	return g, nil
}

func computeBounds(vertices []Vec3) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	min, max := vertices[0], vertices[0]
	for _, v := range vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return Bounds{Min: min, Max: max}
}

func (g *Geometry) Triangles() []Triangle { return g.triangles }
func (g *Geometry) Vertices() []Vec3      { return g.vertices }
func (g *Geometry) Surfaces() []Surface   { return g.surfaces }
func (g *Geometry) Bounds() Bounds        { return g.bounds }

// Contains reports whether point falls within the mesh's axis-aligned
// bounds.
func (g *Geometry) Contains(point Vec3) bool {
	return g.bounds.Contains(point)
}

// ContainmentWarnings runs the non-fatal sanity check from spec §4.1:
// source/receiver outside the mesh bounds produces a Warning, never an
// error, because the bounds are loose.
func (g *Geometry) ContainmentWarnings(source, receiver Vec3) []rayverberr.Warning {
	var warnings []rayverberr.Warning
	if !g.Contains(source) {
		warnings = append(warnings, rayverberr.NewWarning("source %+v is outside mesh bounds %+v", source, g.bounds))
	}
	if !g.Contains(receiver) {
		warnings = append(warnings, rayverberr.NewWarning("receiver %+v is outside mesh bounds %+v", receiver, g.bounds))
	}
	return warnings
}
