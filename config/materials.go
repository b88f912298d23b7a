package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

// Materials is a name -> Surface bank, loaded from a materials JSON file
// (spec §6). Materials are ordered by name (sorted); index 0 in that
// order is the fallback surface used by meshes that match no named
// material.
type Materials struct {
	names    []string
	surfaces []geometry.Surface
}

type rawMaterial struct {
	Specular [volume.Bands]float64 `json:"specular"`
	Diffuse  [volume.Bands]float64 `json:"diffuse"`
}

// LoadMaterials reads and validates a materials JSON file: an object
// mapping material name -> {specular, diffuse}, each 8 floats in [0,1]
// in fixed band order (spec §6).
func LoadMaterials(path string) (*Materials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, rayverberr.NewConfigError("", err)
	}
	return ParseMaterials(b)
}

// ParseMaterials validates a materials document already in memory.
func ParseMaterials(b []byte) (*Materials, error) {
	var raw map[string]rawMaterial
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, rayverberr.NewConfigError("", fmt.Errorf("malformed materials JSON: %w", err))
	}
	if len(raw) == 0 {
		return nil, rayverberr.NewConfigError("", fmt.Errorf("materials file has no entries"))
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	m := &Materials{names: names, surfaces: make([]geometry.Surface, len(names))}
	for i, name := range names {
		mat := raw[name]
		var spec, diff volume.Volume
		for b := 0; b < volume.Bands; b++ {
			if mat.Specular[b] < 0 || mat.Specular[b] > 1 {
				return nil, rayverberr.NewConfigError(name+".specular", fmt.Errorf("lane %d out of [0,1]", b))
			}
			if mat.Diffuse[b] < 0 || mat.Diffuse[b] > 1 {
				return nil, rayverberr.NewConfigError(name+".diffuse", fmt.Errorf("lane %d out of [0,1]", b))
			}
			spec[b] = float32(mat.Specular[b])
			diff[b] = float32(mat.Diffuse[b])
		}
		m.surfaces[i] = geometry.Surface{Specular: spec, Diffuse: diff}
	}
	return m, nil
}

// Names returns the material names in the fixed order used by Surfaces
// and IndexOf.
func (m *Materials) Names() []string { return m.names }

// Surfaces returns the Surface bank in the same order as Names; index 0
// is the fallback surface (spec §4.1).
func (m *Materials) Surfaces() []geometry.Surface { return m.surfaces }

// IndexOf returns the surface index for a material name, and false if the
// mesh names a material not present in the bank.
func (m *Materials) IndexOf(name string) (int, bool) {
	for i, n := range m.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
