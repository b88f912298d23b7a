// Package config loads and validates the rayverb run configuration and
// material bank (spec §6), using the teacher's preset-loader idiom:
// pointer-typed optional fields, strict unknown-key rejection, and named
// per-field validation errors (preset.ApplyFile's shape, generalized).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
	"github.com/reuk/parallel-reverb-raytracer/tracer"
)

// Filter names accepted by the "filter" config key.
const (
	FilterSinc          = "sinc"
	FilterOnePass       = "onepass"
	FilterTwoPass       = "twopass"
	FilterLinkwitzRiley = "linkwitz_riley"
)

// OutputMode names accepted by the "output_mode" config key.
const (
	OutputAll         = "all"
	OutputImageOnly   = "image_only"
	OutputDiffuseOnly = "diffuse_only"
)

// SpeakerSpec is one entry of an attenuation_model.speakers array.
type SpeakerSpec struct {
	Direction [3]float64
	Shape     float64
}

// HRTFSpec is the attenuation_model.hrtf object.
type HRTFSpec struct {
	Facing [3]float64
	Up     [3]float64
}

// AttenuationModel is exactly one of Speakers or HRTF (spec §6: "an
// object with exactly one of").
type AttenuationModel struct {
	Speakers []SpeakerSpec
	HRTF     *HRTFSpec
}

// Config is the fully validated, defaulted run configuration.
type Config struct {
	Rays         int
	Reflections  int
	SampleRate   float64
	BitDepth     int
	SourcePos    [3]float64
	MicPos       [3]float64
	Attenuation  AttenuationModel
	Filter       string
	HiPass       bool
	Normalize    bool
	VolumeScale  float64
	TrimPredelay bool
	RemoveDirect bool
	TrimTail     bool
	OutputMode   string
	Verbose      bool
}

// Speakers returns the configured speaker bank as kernel.Speaker values,
// normalizing each direction on read (spec §6).
func (c *Config) Speakers() []kernel.Speaker {
	out := make([]kernel.Speaker, len(c.Attenuation.Speakers))
	for i, s := range c.Attenuation.Speakers {
		dir := geometry.Vec3{X: float32(s.Direction[0]), Y: float32(s.Direction[1]), Z: float32(s.Direction[2])}
		out[i] = kernel.Speaker{Direction: dir.Normalize(), Shape: float32(s.Shape)}
	}
	return out
}

// FacingUp returns the configured HRTF facing/up vectors, normalized.
func (c *Config) FacingUp() (facing, up geometry.Vec3) {
	h := c.Attenuation.HRTF
	facing = geometry.Vec3{X: float32(h.Facing[0]), Y: float32(h.Facing[1]), Z: float32(h.Facing[2])}.Normalize()
	up = geometry.Vec3{X: float32(h.Up[0]), Y: float32(h.Up[1]), Z: float32(h.Up[2])}.Normalize()
	return facing, up
}

// rawFile is the wire shape of the config JSON, decoded field-by-field so
// that unknown keys and type mismatches can be reported with the
// offending key name (preset.ApplyFile's style, generalized to required
// rather than all-optional fields).
type rawFile struct {
	Rays             *int                `json:"rays"`
	Reflections      *int                `json:"reflections"`
	SampleRate       *float64            `json:"sample_rate"`
	BitDepth         *int                `json:"bit_depth"`
	SourcePosition   *[3]float64         `json:"source_position"`
	MicPosition      *[3]float64         `json:"mic_position"`
	AttenuationModel *rawAttenuation     `json:"attenuation_model"`
	Filter           *string             `json:"filter"`
	HiPass           *bool               `json:"hipass"`
	Normalize        *bool               `json:"normalize"`
	VolumeScale      *float64            `json:"volume_scale"`
	TrimPredelay     *bool               `json:"trim_predelay"`
	RemoveDirect     *bool               `json:"remove_direct"`
	TrimTail         *bool               `json:"trim_tail"`
	OutputMode       *string             `json:"output_mode"`
	Verbose          *bool               `json:"verbose"`
}

type rawSpeaker struct {
	Direction [3]float64 `json:"direction"`
	Shape     float64    `json:"shape"`
}

type rawHRTF struct {
	Facing [3]float64 `json:"facing"`
	Up     [3]float64 `json:"up"`
}

type rawAttenuation struct {
	Speakers []rawSpeaker `json:"speakers"`
	HRTF     *rawHRTF     `json:"hrtf"`
}

// knownConfigKeys lists every accepted top-level key, used to reject
// unrecognized ones (spec §6: "unrecognized keys -> rayverberr.ConfigError").
var knownConfigKeys = map[string]bool{
	"rays": true, "reflections": true, "sample_rate": true, "bit_depth": true,
	"source_position": true, "mic_position": true, "attenuation_model": true,
	"filter": true, "hipass": true, "normalize": true, "volume_scale": true,
	"trim_predelay": true, "remove_direct": true, "trim_tail": true,
	"output_mode": true, "verbose": true,
}

// Load reads, strict-decodes, and validates a config JSON file, applying
// spec §6's documented defaults for every optional key.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, rayverberr.NewConfigError("", err)
	}
	return Parse(b)
}

// Parse strict-decodes and validates a config document already in memory.
func Parse(b []byte) (*Config, error) {
	if err := rejectUnknownKeys(b, knownConfigKeys); err != nil {
		return nil, err
	}

	var f rawFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, rayverberr.NewConfigError("", fmt.Errorf("malformed config JSON: %w", err))
	}

	cfg := &Config{
		Filter:      FilterOnePass,
		HiPass:      false,
		Normalize:   true,
		VolumeScale: 1.0,
		TrimTail:    true,
		OutputMode:  OutputAll,
		Verbose:     false,
	}

	if f.Rays == nil {
		return nil, rayverberr.NewConfigError("rays", fmt.Errorf("required"))
	}
	cfg.Rays = *f.Rays
	if cfg.Rays <= 0 {
		return nil, rayverberr.NewConfigError("rays", fmt.Errorf("must be > 0"))
	}
	if cfg.Rays%tracer.DefaultBatchSize != 0 {
		return nil, rayverberr.NewConfigError("rays", fmt.Errorf("must be a multiple of %d", tracer.DefaultBatchSize))
	}

	if f.Reflections == nil {
		return nil, rayverberr.NewConfigError("reflections", fmt.Errorf("required"))
	}
	cfg.Reflections = *f.Reflections
	if cfg.Reflections < 1 || cfg.Reflections > 1024 {
		return nil, rayverberr.NewConfigError("reflections", fmt.Errorf("must be in 1..1024"))
	}

	if f.SampleRate == nil {
		return nil, rayverberr.NewConfigError("sample_rate", fmt.Errorf("required"))
	}
	cfg.SampleRate = *f.SampleRate
	if cfg.SampleRate <= 0 {
		return nil, rayverberr.NewConfigError("sample_rate", fmt.Errorf("must be > 0"))
	}

	if f.BitDepth == nil {
		return nil, rayverberr.NewConfigError("bit_depth", fmt.Errorf("required"))
	}
	cfg.BitDepth = *f.BitDepth
	if cfg.BitDepth != 16 && cfg.BitDepth != 24 {
		return nil, rayverberr.NewConfigError("bit_depth", fmt.Errorf("must be 16 or 24"))
	}

	if f.SourcePosition == nil {
		return nil, rayverberr.NewConfigError("source_position", fmt.Errorf("required"))
	}
	cfg.SourcePos = *f.SourcePosition

	if f.MicPosition == nil {
		return nil, rayverberr.NewConfigError("mic_position", fmt.Errorf("required"))
	}
	cfg.MicPos = *f.MicPosition

	if err := applyAttenuationModel(cfg, f.AttenuationModel); err != nil {
		return nil, err
	}

	if f.Filter != nil {
		switch *f.Filter {
		case FilterSinc, FilterOnePass, FilterTwoPass, FilterLinkwitzRiley:
			cfg.Filter = *f.Filter
		default:
			return nil, rayverberr.NewConfigError("filter", fmt.Errorf("unsupported value %q", *f.Filter))
		}
	}
	if f.HiPass != nil {
		cfg.HiPass = *f.HiPass
	}
	if f.Normalize != nil {
		cfg.Normalize = *f.Normalize
	}
	if f.VolumeScale != nil {
		cfg.VolumeScale = *f.VolumeScale
	}
	if f.TrimPredelay != nil {
		cfg.TrimPredelay = *f.TrimPredelay
	}
	if f.RemoveDirect != nil {
		cfg.RemoveDirect = *f.RemoveDirect
	}
	if f.TrimTail != nil {
		cfg.TrimTail = *f.TrimTail
	}
	if f.OutputMode != nil {
		switch *f.OutputMode {
		case OutputAll, OutputImageOnly, OutputDiffuseOnly:
			cfg.OutputMode = *f.OutputMode
		default:
			return nil, rayverberr.NewConfigError("output_mode", fmt.Errorf("unsupported value %q", *f.OutputMode))
		}
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}

	return cfg, nil
}

func applyAttenuationModel(cfg *Config, raw *rawAttenuation) error {
	if raw == nil {
		return rayverberr.NewConfigError("attenuation_model", fmt.Errorf("required"))
	}
	hasSpeakers := len(raw.Speakers) > 0
	hasHRTF := raw.HRTF != nil
	if hasSpeakers == hasHRTF {
		return rayverberr.NewConfigError("attenuation_model", fmt.Errorf("must set exactly one of speakers, hrtf"))
	}
	if hasSpeakers {
		specs := make([]SpeakerSpec, len(raw.Speakers))
		for i, s := range raw.Speakers {
			specs[i] = SpeakerSpec{Direction: s.Direction, Shape: s.Shape}
		}
		cfg.Attenuation = AttenuationModel{Speakers: specs}
		return nil
	}
	cfg.Attenuation = AttenuationModel{HRTF: &HRTFSpec{Facing: raw.HRTF.Facing, Up: raw.HRTF.Up}}
	return nil
}
