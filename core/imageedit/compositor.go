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

// Turning 3-band float cutouts into displayable colour images.
package imageedit

import (
	"image"
	"image/color"
	"math"

	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
)

// RGBFloat - colour image with channel values in [0,1], 3 values (r,g,b) per pixel. Rows are in
// FITS order, bottom row first
type RGBFloat struct {
	Width  int
	Height int
	Pix    []float64
}

func NewRGBFloat(w int, h int) *RGBFloat {
	return &RGBFloat{Width: w, Height: h, Pix: make([]float64, w*h*3)}
}

func (img *RGBFloat) At(x int, y int) (float64, float64, float64) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// ToImage - quantises to 8 bits per channel, flipping rows so north is up
func (img *RGBFloat) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			out.SetRGBA(x, img.Height-1-y, color.RGBA{R: quantise(r), G: quantise(g), B: quantise(b), A: 255})
		}
	}
	return out
}

func quantise(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Compositor - anything that can turn g, r, z bands (each w*h, row major) into a colour image
type Compositor interface {
	Compose(bands [3][]float64, w int, h int) (*RGBFloat, error)
}

// BandParams - which output channel (0=red, 1=green, 2=blue) a band goes to, and what to divide it by
type BandParams struct {
	Channel int     `json:"channel"`
	Scale   float64 `json:"scale"`
}

// CompositeParams - the survey's standard colour scheme
type CompositeParams struct {
	Bands [3]BandParams `json:"bands"`

	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Softening for the arcsinh stretch. nil means a linear image
	Arcsinh *float64 `json:"arcsinh,omitempty"`

	Desaturate           bool    `json:"desaturate"`
	DesaturationConstant float64 `json:"desaturationConstant"`
}

func (p CompositeParams) Compose(bands [3][]float64, w int, h int) (*RGBFloat, error) {
	return Compose(bands, w, h, p)
}

// Compose - scale each band into its channel, optionally arcsinh stretch (bounds too), rescale so
// Min..Max maps to 0..1, optionally desaturate, then clip to [0,1]
func Compose(bands [3][]float64, w int, h int, p CompositeParams) (*RGBFloat, error) {
	img, err := assembleChannels(bands, w, h, p.Bands)
	if err != nil {
		return nil, err
	}

	mn, mx := p.Min, p.Max
	if p.Arcsinh != nil {
		soft := *p.Arcsinh
		for c, v := range img.Pix {
			img.Pix[c] = math.Asinh(v * soft)
		}
		mn = math.Asinh(mn * soft)
		mx = math.Asinh(mx * soft)
	}

	if mx == mn {
		return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "compositor min and max map to the same value: %v", mn)
	}

	for c, v := range img.Pix {
		img.Pix[c] = (v - mn) / (mx - mn)
	}

	if p.Desaturate {
		desaturate(img, desaturationConstantOrDefault(p.DesaturationConstant))
	}

	clip(img)
	return img, nil
}

func assembleChannels(bands [3][]float64, w int, h int, params [3]BandParams) (*RGBFloat, error) {
	n := w * h
	if w <= 0 || h <= 0 {
		return nil, pipelineerror.Errorf(pipelineerror.KindInvalidInput, "invalid image size %vx%v", w, h)
	}

	img := NewRGBFloat(w, h)
	for b, bp := range params {
		if len(bands[b]) != n {
			return nil, pipelineerror.Errorf(pipelineerror.KindInvalidInput, "band %v has %v pixels, expected %v", b, len(bands[b]), n)
		}
		if bp.Channel < 0 || bp.Channel > 2 {
			return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "band %v mapped to invalid channel %v", b, bp.Channel)
		}
		if bp.Scale == 0 {
			return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "band %v has zero scale", b)
		}

		for i, v := range bands[b] {
			img.Pix[i*3+bp.Channel] = v / bp.Scale
		}
	}
	return img, nil
}

// desaturate - pixels dominated by one channel (cosmic rays, bad pixels, noise speckle) are pulled
// towards grey. A pixel whose channels are all equal is left alone
func desaturate(img *RGBFloat, constant float64) {
	for i := 0; i < len(img.Pix); i += 3 {
		px := img.Pix[i : i+3]

		m := (px[0] + px[1] + px[2]) / 3
		if m == 0 {
			m = 1
		}

		w := math.Inf(-1)
		for _, c := range px {
			if dev := (c - m) / m / constant; dev > w {
				w = dev
			}
		}
		w = 1 - math.Min(w, 1)
		taper := math.Sin(w * math.Pi / 2)

		for c, v := range px {
			px[c] = v*taper + m*(1-taper) + m*(1-taper)*(1-taper)*v
		}
	}
}

const DefaultDesaturationConstant = 2.5

func desaturationConstantOrDefault(c float64) float64 {
	if c <= 0 {
		return DefaultDesaturationConstant
	}
	return c
}

func clip(img *RGBFloat) {
	for c, v := range img.Pix {
		if math.IsNaN(v) {
			img.Pix[c] = 0
			continue
		}
		img.Pix[c] = utils.Clamp(v, 0, 1)
	}
}
