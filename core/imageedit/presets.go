// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package imageedit

import (
	"bytes"
	"encoding/json"

	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/pkg/errors"
)

// Bands always arrive in g, r, z order
const (
	BandG = 0
	BandR = 1
	BandZ = 2
)

// Output channels
const (
	ChannelRed   = 0
	ChannelGreen = 1
	ChannelBlue  = 2
)

// DR2StylePreset - z to red, r to green, g to blue
func DR2StylePreset() CompositeParams {
	arcsinh := 1.0
	return CompositeParams{
		Bands: [3]BandParams{
			BandG: {Channel: ChannelBlue, Scale: 0.008},
			BandR: {Channel: ChannelGreen, Scale: 0.014},
			BandZ: {Channel: ChannelRed, Scale: 0.019},
		},
		Min:                  -0.5,
		Max:                  300,
		Arcsinh:              &arcsinh,
		Desaturate:           true,
		DesaturationConstant: DefaultDesaturationConstant,
	}
}

func LuptonPreset() LuptonParams {
	return LuptonParams{
		Bands: [3]BandParams{
			BandG: {Channel: ChannelBlue, Scale: 0.00526},
			BandR: {Channel: ChannelGreen, Scale: 0.008},
			BandZ: {Channel: ChannelRed, Scale: 0.0135},
		},
		Q:                    8,
		Stretch:              25,
		Min:                  0,
		Max:                  1,
		Desaturate:           false,
		DesaturationConstant: 1.5,
	}
}

var presets = map[string]func() Compositor{
	"dr2":    func() Compositor { return DR2StylePreset() },
	"lupton": func() Compositor { return LuptonPreset() },
}

// PresetByName - "dr2" or "lupton"
func PresetByName(name string) (Compositor, error) {
	newPreset, ok := presets[name]
	if !ok {
		return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "unknown compositor preset: \"%v\", expected one of %v", name, utils.GetSortedMapKeys(presets))
	}
	return newPreset(), nil
}

// PresetWithOverrides - the named preset, with whichever of its fields appear in overrides (a JSON
// object using the preset's own field names) replaced. Bands are overridden position by position
// in g, r, z order
func PresetWithOverrides(name string, overrides json.RawMessage) (Compositor, error) {
	comp, err := PresetByName(name)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(overrides)
	if len(trimmed) <= 0 || string(trimmed) == "null" {
		return comp, nil
	}

	switch p := comp.(type) {
	case CompositeParams:
		return applyOverrides(name, p, trimmed)
	case LuptonParams:
		return applyOverrides(name, p, trimmed)
	}
	return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "compositor preset %v can't be overridden", name)
}

func applyOverrides[P CompositeParams | LuptonParams](name string, preset P, overrides []byte) (Compositor, error) {
	dec := json.NewDecoder(bytes.NewReader(overrides))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&preset); err != nil {
		return nil, pipelineerror.MakeError(pipelineerror.KindConfiguration, errors.Wrapf(err, "bad overrides for compositor preset %v", name))
	}

	comp := Compositor(preset)
	lo, hi, bands := presetLimits(comp)
	if lo >= hi {
		return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "compositor preset %v min must be below max, got %v, %v", name, lo, hi)
	}
	for b, band := range bands {
		if band.Channel < ChannelRed || band.Channel > ChannelBlue {
			return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "compositor preset %v band %v has no output channel %v", name, b, band.Channel)
		}
	}
	return comp, nil
}

func presetLimits(c Compositor) (float64, float64, [3]BandParams) {
	switch p := c.(type) {
	case CompositeParams:
		return p.Min, p.Max, p.Bands
	case LuptonParams:
		return p.Min, p.Max, p.Bands
	}
	return 0, 1, [3]BandParams{}
}
