// Command rayverb renders an offline acoustic impulse response from a
// mesh, a material bank, and a run config (spec §6).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reuk/parallel-reverb-raytracer"
	"github.com/reuk/parallel-reverb-raytracer/config"
	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/mesh"
	"github.com/reuk/parallel-reverb-raytracer/wavout"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "usage: rayverb <config.json> <mesh> <materials.json> <output.wav>\n")
		os.Exit(1)
	}
	configPath, meshPath, materialsPath, outputPath := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}

	materials, err := config.LoadMaterials(materialsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}

	scene, err := mesh.Load(meshPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}

	geo, err := geometry.New(scene.Triangles(materials.IndexOf), scene.Vertices, materials.Surfaces())
	if err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}

	if cfg.Verbose {
		fmt.Printf("rayverb: %d rays, %d reflections, %d Hz, %d-bit\n", cfg.Rays, cfg.Reflections, int(cfg.SampleRate), cfg.BitDepth)
	}

	channels, warnings, err := rayverb.NewPipeline().Run(context.Background(), cfg, geo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}
	if cfg.Verbose {
		for _, w := range warnings {
			fmt.Printf("rayverb: warning: %s\n", w.String())
		}
	}

	if err := wavout.Write(outputPath, channels, int(cfg.SampleRate), cfg.BitDepth); err != nil {
		fmt.Fprintf(os.Stderr, "rayverb: %v\n", err)
		os.Exit(1)
	}

	if cfg.Verbose {
		fmt.Printf("rayverb: wrote %s (%d channels, %d samples)\n", outputPath, len(channels), len(channels[0]))
	}
}
