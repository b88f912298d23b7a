// Package mesh provides a minimal Wavefront OBJ reader producing exactly
// the (triangles, vertices, per-mesh name) contract spec §6 requires of
// an external mesh importer. It is the one place the core's "any
// external importer" collaborator is given a small, real implementation
// so the CLI is end-to-end runnable; it stays outside the core (C1/C2).
package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
)

// Face is one triangle, referencing Scene.Vertices by 0-based index.
type Face struct {
	V0, V1, V2 int
}

// Group is a named collection of faces — one OBJ "g"/"o" group, whose
// name is matched against a material name by Scene.Triangles (spec
// §4.1).
type Group struct {
	Name  string
	Faces []Face
}

// Scene is the parsed mesh: a flat vertex array plus named face groups.
type Scene struct {
	Vertices []geometry.Vec3
	Groups   []Group
}

// defaultGroupName is used for faces that appear before any "g"/"o" line.
const defaultGroupName = "default"

// Load reads and parses a Wavefront OBJ file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rayverberr.NewGeometryError(fmt.Errorf("open mesh %s: %w", path, err))
	}
	defer f.Close()

	scene, err := Parse(f)
	if err != nil {
		return nil, rayverberr.NewGeometryError(fmt.Errorf("parse mesh %s: %w", path, err))
	}
	return scene, nil
}

// Parse reads an OBJ document from r. Only "v", "g"/"o", and "f" lines
// are interpreted; "vt"/"vn"/"usemtl"/comments are ignored, since
// material binding happens downstream against the materials map, not
// from the mesh file (spec §4.1).
func Parse(r io.Reader) (*Scene, error) {
	scene := &Scene{}
	groupIdx := -1

	ensureGroup := func(name string) int {
		for i, g := range scene.Groups {
			if g.Name == name {
				return i
			}
		}
		scene.Groups = append(scene.Groups, Group{Name: name})
		return len(scene.Groups) - 1
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			scene.Vertices = append(scene.Vertices, v)
		case "g", "o":
			name := defaultGroupName
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			groupIdx = ensureGroup(name)
		case "f":
			if groupIdx == -1 {
				groupIdx = ensureGroup(defaultGroupName)
			}
			faces, err := parseFace(fields[1:], len(scene.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			scene.Groups[groupIdx].Faces = append(scene.Groups[groupIdx].Faces, faces...)
		default:
			// vt, vn, usemtl, mtllib, s, and anything else: ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(scene.Vertices) == 0 {
		return nil, fmt.Errorf("mesh has no vertices")
	}
	return scene, nil
}

func parseVertex(fields []string) (geometry.Vec3, error) {
	if len(fields) < 3 {
		return geometry.Vec3{}, fmt.Errorf("malformed vertex line")
	}
	x, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("malformed vertex x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("malformed vertex y: %w", err)
	}
	z, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("malformed vertex z: %w", err)
	}
	return geometry.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, nil
}

// parseFace triangulates an n-gon face (n >= 3) as a fan from its first
// vertex, and resolves OBJ's 1-based (or negative, relative) indices
// against the vertex count seen so far.
func parseFace(fields []string, vertexCount int) ([]Face, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face has fewer than 3 vertices")
	}
	idx := make([]int, len(fields))
	for i, token := range fields {
		ref := strings.SplitN(token, "/", 2)[0]
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("malformed face index %q: %w", token, err)
		}
		switch {
		case n > 0:
			idx[i] = n - 1
		case n < 0:
			idx[i] = vertexCount + n
		default:
			return nil, fmt.Errorf("face index must not be 0")
		}
		if idx[i] < 0 || idx[i] >= vertexCount {
			return nil, fmt.Errorf("face index %d out of range (vertex count %d)", idx[i], vertexCount)
		}
	}

	faces := make([]Face, 0, len(idx)-2)
	for i := 1; i < len(idx)-1; i++ {
		faces = append(faces, Face{V0: idx[0], V1: idx[i], V2: idx[i+1]})
	}
	return faces, nil
}
