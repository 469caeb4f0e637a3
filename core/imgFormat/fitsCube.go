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

package imgFormat

import (
	"bytes"
	"fmt"
	"math"

	"github.com/astrogo/fitsio"
)

// Cube - a multi-band image read from the primary HDU of a FITS file. Planes are stored row by
// row, bottom row first as FITS stores them
type Cube struct {
	Width  int
	Height int
	Planes [][]float64
}

func (c Cube) PixelCount() int {
	return c.Width * c.Height
}

// ReadFITSCube - parses a FITS file with a 3-axis primary image (width, height, bands). 2-axis
// images are read as a single band
func ReadFITSCube(data []byte) (cube Cube, err error) {
	if len(data) <= 0 {
		return cube, fmt.Errorf("empty FITS file")
	}

	// fitsio can panic on malformed headers instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse FITS: %v", r)
		}
	}()

	f, err := fitsio.Open(bytes.NewReader(data))
	if err != nil {
		return cube, err
	}
	defer f.Close()

	if len(f.HDUs()) <= 0 {
		return cube, fmt.Errorf("FITS file has no HDUs")
	}

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return cube, fmt.Errorf("FITS primary HDU is not an image")
	}

	axes := img.Header().Axes()
	bands := 1
	switch len(axes) {
	case 2:
	case 3:
		bands = axes[2]
	default:
		return cube, fmt.Errorf("expected 2 or 3 image axes, got %v", len(axes))
	}

	cube.Width = axes[0]
	cube.Height = axes[1]
	if cube.Width <= 0 || cube.Height <= 0 || bands <= 0 {
		return cube, fmt.Errorf("invalid FITS image dimensions: %v", axes)
	}

	values, err := readAsFloat64(img)
	if err != nil {
		return cube, err
	}

	planeSize := cube.PixelCount()
	if len(values) != planeSize*bands {
		return cube, fmt.Errorf("FITS image has %v values, expected %v", len(values), planeSize*bands)
	}

	cube.Planes = make([][]float64, bands)
	for b := 0; b < bands; b++ {
		cube.Planes[b] = values[b*planeSize : (b+1)*planeSize]
	}
	return cube, nil
}

func readAsFloat64(img fitsio.Image) ([]float64, error) {
	hdr := img.Header()
	n := 1
	for _, dim := range hdr.Axes() {
		n *= dim
	}

	switch bitpix := hdr.Bitpix(); bitpix {
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return convert(raw), nil
	case -64:
		raw := make([]float64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	case 8:
		raw := make([]uint8, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return rescale(hdr, convert(raw))
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return rescale(hdr, convert(raw))
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return rescale(hdr, convert(raw))
	default:
		return nil, fmt.Errorf("unsupported FITS BITPIX: %v", bitpix)
	}
}

// rescale - integer images store physical = BZERO + BSCALE*raw
func rescale(hdr *fitsio.Header, values []float64) ([]float64, error) {
	scale, err := headerFloat(hdr, "BSCALE", 1)
	if err != nil {
		return nil, err
	}
	zero, err := headerFloat(hdr, "BZERO", 0)
	if err != nil {
		return nil, err
	}
	if scale == 1 && zero == 0 {
		return values, nil
	}

	for c, v := range values {
		values[c] = zero + scale*v
	}
	return values, nil
}

func headerFloat(hdr *fitsio.Header, key string, def float64) (float64, error) {
	card := hdr.Get(key)
	if card == nil || card.Value == nil {
		return def, nil
	}

	switch v := card.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("FITS %v has unexpected type %T", key, v)
	}
}

func convert[T uint8 | int16 | int32 | float32](raw []T) []float64 {
	result := make([]float64, len(raw))
	for c, v := range raw {
		result[c] = float64(v)
	}
	return result
}

// BadPixelFraction - fraction of pixels in a plane that are exactly zero or NaN
func BadPixelFraction(plane []float64) float64 {
	if len(plane) <= 0 {
		return 1
	}

	bad := 0
	for _, v := range plane {
		if v == 0 || math.IsNaN(v) {
			bad++
		}
	}
	return float64(bad) / float64(len(plane))
}

// WriteFITSCube - writes planes as a 32-bit float cube, the same layout the cutout service returns
func WriteFITSCube(cube Cube) ([]byte, error) {
	var b bytes.Buffer

	f, err := fitsio.Create(&b)
	if err != nil {
		return nil, err
	}

	data := make([]float32, 0, cube.PixelCount()*len(cube.Planes))
	for _, plane := range cube.Planes {
		if len(plane) != cube.PixelCount() {
			return nil, fmt.Errorf("plane has %v pixels, expected %v", len(plane), cube.PixelCount())
		}
		for _, v := range plane {
			data = append(data, float32(v))
		}
	}

	img := fitsio.NewImage(-32, []int{cube.Width, cube.Height, len(cube.Planes)})
	defer img.Close()

	if err := img.Write(&data); err != nil {
		return nil, err
	}
	if err := f.Write(img); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
