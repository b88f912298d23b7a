// Package rayverb wires the core pipeline together: Tracer -> Attenuators
// -> (predelay trim) -> Flattener -> FilterBank, mirroring the teacher's
// piano.Piano shape of "owns everything, exposes one Run entry point"
// (spec SPEC_FULL.md §10.3).
package rayverb

import (
	"context"
	"fmt"

	"github.com/reuk/parallel-reverb-raytracer/attenuate"
	"github.com/reuk/parallel-reverb-raytracer/config"
	"github.com/reuk/parallel-reverb-raytracer/directions"
	"github.com/reuk/parallel-reverb-raytracer/filterbank"
	"github.com/reuk/parallel-reverb-raytracer/flatten"
	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/hrtf"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
	"github.com/reuk/parallel-reverb-raytracer/tracer"
	"github.com/reuk/parallel-reverb-raytracer/volume"
)

// Pipeline owns no state of its own; Run is safe to call repeatedly or
// concurrently with different geometries/configs.
type Pipeline struct{}

// NewPipeline builds a Pipeline.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Run drives the full core pipeline for one config/geometry pair and
// returns the final per-channel waveforms plus any non-fatal warnings
// (spec §4, §7).
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config, geo *geometry.Geometry) ([][]float32, []rayverberr.Warning, error) {
	source := vec3(cfg.SourcePos)
	mic := vec3(cfg.MicPos)
	warnings := geo.ContainmentWarnings(source, mic)

	dirs := geometryDirections(directions.Fibonacci(cfg.Rays))

	raw, err := tracer.New(geo).Trace(ctx, dirs, source, mic, cfg.Reflections, kernel.MaxImageOrder)
	if err != nil {
		return nil, warnings, err
	}

	filtered := selectSections(cfg, raw)
	channels := attenuateChannels(cfg, mic, filtered)

	if cfg.TrimPredelay {
		trimPredelay(channels)
	}

	grids := make([]*flatten.Grid, len(channels))
	for i, ch := range channels {
		grids[i] = flatten.Flatten(ch, cfg.SampleRate)
	}

	kind, ok := filterbank.ParseKind(cfg.Filter)
	if !ok {
		return nil, warnings, rayverberr.NewConfigError("filter", fmt.Errorf("unsupported value %q", cfg.Filter))
	}
	fb := filterbank.New(cfg.SampleRate, kind)
	defer fb.Close()

	out, err := fb.Process(grids, filterbank.Options{
		HighPass:    cfg.HiPass,
		Normalize:   cfg.Normalize,
		VolumeScale: cfg.VolumeScale,
		TrimTail:    cfg.TrimTail,
	})
	if err != nil {
		return nil, warnings, err
	}
	return out, warnings, nil
}

// selectSections applies output_mode and remove_direct (spec §6) by
// choosing which raw sections feed the attenuators.
func selectSections(cfg *config.Config, raw *tracer.RawResult) *tracer.RawResult {
	switch cfg.OutputMode {
	case config.OutputDiffuseOnly:
		return tracer.NewRawResult(raw.RawDiffuse(), nil)
	case config.OutputImageOnly:
		return tracer.NewRawResult(nil, raw.Images(cfg.RemoveDirect))
	default:
		return tracer.NewRawResult(raw.RawDiffuse(), raw.Images(cfg.RemoveDirect))
	}
}

func attenuateChannels(cfg *config.Config, mic geometry.Vec3, raw *tracer.RawResult) [][]kernel.Impulse {
	if cfg.Attenuation.HRTF != nil {
		facing, up := cfg.FacingUp()
		att := attenuate.HRTFAttenuator{Table: hrtf.Default()}
		pair := att.Attenuate(mic, raw, facing, up)
		return [][]kernel.Impulse{pair[0], pair[1]}
	}
	bank := attenuate.SpeakerBank{}
	return bank.Attenuate(mic, raw, cfg.Speakers())
}

// trimPredelay shifts every channel's impulse times so that the earliest
// nonzero-volume impulse across all channels starts at time 0 (spec
// §6's trim_predelay, conceptually applied before flattening).
func trimPredelay(channels [][]kernel.Impulse) {
	var earliest float64
	found := false
	for _, ch := range channels {
		for _, imp := range ch {
			if isZeroVolume(imp.Volume) {
				continue
			}
			if !found || imp.Time < earliest {
				earliest = imp.Time
				found = true
			}
		}
	}
	if !found || earliest <= 0 {
		return
	}
	for _, ch := range channels {
		for i := range ch {
			ch[i].Time -= earliest
			if ch[i].Time < 0 {
				ch[i].Time = 0
			}
		}
	}
}

func isZeroVolume(v volume.Volume) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func vec3(p [3]float64) geometry.Vec3 {
	return geometry.Vec3{X: float32(p[0]), Y: float32(p[1]), Z: float32(p[2])}
}

func geometryDirections(dirs []directions.Vec3) []geometry.Vec3 {
	out := make([]geometry.Vec3, len(dirs))
	for i, d := range dirs {
		out[i] = geometry.Vec3{X: float32(d.X), Y: float32(d.Y), Z: float32(d.Z)}
	}
	return out
}
