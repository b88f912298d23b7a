package mesh

import "github.com/reuk/parallel-reverb-raytracer/geometry"

// SurfaceIndexer resolves a material name to a surface index, matching
// config.Materials.IndexOf's signature without importing the config
// package here (mesh is a leaf package; config depends on geometry and
// sits above mesh in the pipeline).
type SurfaceIndexer func(name string) (int, bool)

// Triangles flattens the scene's groups into geometry.Triangle values,
// binding each group's name against a named material via indexOf; a
// group whose name matches no material falls back to surface index 0,
// the default surface (spec §4.1: "the mesh name matches a named
// material").
func (s *Scene) Triangles(indexOf SurfaceIndexer) []geometry.Triangle {
	var out []geometry.Triangle
	for _, g := range s.Groups {
		surface, ok := indexOf(g.Name)
		if !ok {
			surface = 0
		}
		for _, f := range g.Faces {
			out = append(out, geometry.Triangle{V0: f.V0, V1: f.V1, V2: f.V2, Surface: surface})
		}
	}
	return out
}
