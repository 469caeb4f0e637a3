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

import "math"

// LuptonParams - the second colour scheme, stretching on total intensity (Lupton et al. 2004) so
// colours are kept even in bright cores where the per-channel stretch saturates
type LuptonParams struct {
	Bands [3]BandParams `json:"bands"`

	Q       float64 `json:"q"`
	Stretch float64 `json:"stretch"`

	Min float64 `json:"min"`
	Max float64 `json:"max"`

	Desaturate           bool    `json:"desaturate"`
	DesaturationConstant float64 `json:"desaturationConstant"`
}

func (p LuptonParams) Compose(bands [3][]float64, w int, h int) (*RGBFloat, error) {
	img, err := assembleChannels(bands, w, h, p.Bands)
	if err != nil {
		return nil, err
	}

	q := p.Q
	if q <= 0 {
		q = 1
	}
	stretch := p.Stretch
	if stretch <= 0 {
		stretch = 1
	}
	span := p.Max - p.Min
	if span == 0 {
		span = 1
	}

	for i := 0; i < len(img.Pix); i += 3 {
		px := img.Pix[i : i+3]

		intensity := (px[0] + px[1] + px[2]) / 3
		if intensity <= 0 {
			px[0], px[1], px[2] = 0, 0, 0
			continue
		}

		// Every channel gets the same factor, so hue is preserved
		f := math.Asinh(q*intensity/stretch) / q / intensity
		for c := range px {
			px[c] = (px[c]*f - p.Min) / span
		}
	}

	if p.Desaturate {
		desaturate(img, desaturationConstantOrDefault(p.DesaturationConstant))
	}

	// Rather than clipping each channel independently, scale down pixels whose brightest
	// channel is over 1 so they keep their colour
	for i := 0; i < len(img.Pix); i += 3 {
		px := img.Pix[i : i+3]
		brightest := math.Max(px[0], math.Max(px[1], px[2]))
		if brightest > 1 {
			for c := range px {
				px[c] /= brightest
			}
		}
	}

	clip(img)
	return img, nil
}
