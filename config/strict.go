package config

import (
	"encoding/json"
	"fmt"

	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
)

// rejectUnknownKeys decodes b's top level into a raw-message map and
// reports the first key not present in allowed, the way preset.ApplyFile
// validates each field by name rather than trusting a blanket decode.
func rejectUnknownKeys(b []byte, allowed map[string]bool) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return rayverberr.NewConfigError("", fmt.Errorf("malformed config JSON: %w", err))
	}
	for key := range m {
		if !allowed[key] {
			return rayverberr.NewConfigError(key, fmt.Errorf("unrecognized key"))
		}
	}

	if raw, ok := m["attenuation_model"]; ok {
		if err := rejectUnknownAttenuationKeys(raw); err != nil {
			return err
		}
	}
	return nil
}

var attenuationModelKeys = map[string]bool{"speakers": true, "hrtf": true}
var speakerKeys = map[string]bool{"direction": true, "shape": true}
var hrtfKeys = map[string]bool{"facing": true, "up": true}

func rejectUnknownAttenuationKeys(raw json.RawMessage) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return rayverberr.NewConfigError("attenuation_model", fmt.Errorf("malformed object: %w", err))
	}
	for key := range m {
		if !attenuationModelKeys[key] {
			return rayverberr.NewConfigError("attenuation_model."+key, fmt.Errorf("unrecognized key"))
		}
	}
	if raw, ok := m["speakers"]; ok {
		var speakers []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &speakers); err != nil {
			return rayverberr.NewConfigError("attenuation_model.speakers", fmt.Errorf("malformed array: %w", err))
		}
		for i, s := range speakers {
			for key := range s {
				if !speakerKeys[key] {
					return rayverberr.NewConfigError(fmt.Sprintf("attenuation_model.speakers[%d].%s", i, key), fmt.Errorf("unrecognized key"))
				}
			}
		}
	}
	if raw, ok := m["hrtf"]; ok {
		var h map[string]json.RawMessage
		if err := json.Unmarshal(raw, &h); err != nil {
			return rayverberr.NewConfigError("attenuation_model.hrtf", fmt.Errorf("malformed object: %w", err))
		}
		for key := range h {
			if !hrtfKeys[key] {
				return rayverberr.NewConfigError("attenuation_model.hrtf."+key, fmt.Errorf("unrecognized key"))
			}
		}
	}
	return nil
}
