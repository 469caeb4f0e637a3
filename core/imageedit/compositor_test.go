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
	"fmt"
	"math"
	"testing"

	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imgFormat"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Example_compose_linear() {
	p := DR2StylePreset()
	p.Arcsinh = nil
	p.Desaturate = false
	p.Min = 0
	p.Max = 4

	// One pixel, bands given in g, r, z
	bands := [3][]float64{{0.008 * 1}, {0.014 * 2}, {0.019 * 3}}
	img, err := Compose(bands, 1, 1, p)
	r, g, b := img.At(0, 0)
	fmt.Printf("%v %.4f %.4f %.4f\n", err, r, g, b)

	// Clipped both ends
	bands = [3][]float64{{-0.008}, {0.014 * 10}, {0}}
	img, _ = Compose(bands, 1, 1, p)
	r, g, b = img.At(0, 0)
	fmt.Printf("%.4f %.4f %.4f\n", r, g, b)

	// Output:
	// <nil> 0.7500 0.5000 0.2500
	// 0.0000 1.0000 0.0000
}

func Example_compose_arcsinhBounds() {
	p := DR2StylePreset()
	p.Desaturate = false

	// Values at exactly min and max (after scaling) land on 0 and 1 because the bounds get the same stretch
	bands := [3][]float64{{300 * 0.008}, {-0.5 * 0.014}, {300 * 0.019}}
	img, _ := Compose(bands, 1, 1, p)
	r, g, b := img.At(0, 0)
	fmt.Printf("%.4f %.4f %.4f\n", r, g, b)

	// Output:
	// 1.0000 0.0000 1.0000
}

func uniformBands(w int, h int, values [3]float64) [3][]float64 {
	bands := [3][]float64{}
	for b := range bands {
		bands[b] = make([]float64, w*h)
		for i := range bands[b] {
			bands[b][i] = values[b] * (1 + float64(i%5)/10)
		}
	}
	return bands
}

func TestComposeUniformInputIsGrey(t *testing.T) {
	for _, desat := range []bool{false, true} {
		p := DR2StylePreset()
		p.Arcsinh = nil
		p.Min = 0
		p.Max = 1
		p.Desaturate = desat

		// Identical after dividing by each band's scale
		bands := uniformBands(4, 3, [3]float64{0.4 * 0.008, 0.4 * 0.014, 0.4 * 0.019})
		img, err := Compose(bands, 4, 3, p)
		require.NoError(t, err)

		for y := 0; y < 3; y++ {
			for x := 0; x < 4; x++ {
				r, g, b := img.At(x, y)
				assert.InDelta(t, r, g, 1e-12, "desaturate=%v", desat)
				assert.InDelta(t, r, b, 1e-12, "desaturate=%v", desat)
				assert.Greater(t, r, 0.0)
			}
		}
	}
}

func TestDesaturationPullsSingleBandPixelsToGrey(t *testing.T) {
	img := NewRGBFloat(2, 1)
	copy(img.Pix, []float64{0.9, 0.1, 0.1, 0.5, 0.5, 0.5})

	desaturate(img, DefaultDesaturationConstant)

	r, g, b := img.At(0, 0)
	m := (0.9 + 0.1 + 0.1) / 3
	dev := (0.9 - m) / m / 2.5
	taper := math.Sin((1 - dev) * math.Pi / 2)
	assert.InDelta(t, 0.9*taper+m*(1-taper)+m*(1-taper)*(1-taper)*0.9, r, 1e-12)
	assert.InDelta(t, 0.1*taper+m*(1-taper)+m*(1-taper)*(1-taper)*0.1, g, 1e-12)
	assert.Equal(t, g, b)
	assert.Less(t, r, 0.9)
	assert.Greater(t, g, 0.1)

	// Grey pixel untouched
	r, g, b = img.At(1, 0)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, []float64{r, g, b})

	// All zero pixel: mean treated as 1, no NaNs
	zero := NewRGBFloat(1, 1)
	desaturate(zero, DefaultDesaturationConstant)
	for _, v := range zero.Pix {
		assert.False(t, math.IsNaN(v))
	}
}

func TestLuptonKeepsHue(t *testing.T) {
	p := LuptonPreset()
	bands := [3][]float64{{1 * 0.00526, 500 * 0.00526}, {2 * 0.008, 1000 * 0.008}, {4 * 0.0135, 2000 * 0.0135}}

	img, err := p.Compose(bands, 2, 1)
	require.NoError(t, err)

	for x := 0; x < 2; x++ {
		r, g, b := img.At(x, 0)
		assert.InDelta(t, 2.0, r/g, 1e-9)
		assert.InDelta(t, 2.0, g/b, 1e-9)
		assert.LessOrEqual(t, r, 1.0)
	}

	// Brighter pixel is brighter, but compressed
	r0, _, _ := img.At(0, 0)
	r1, _, _ := img.At(1, 0)
	assert.Greater(t, r1, r0)
	assert.Less(t, r1/r0, 500.0)
}

func TestComposeBadInput(t *testing.T) {
	_, err := Compose([3][]float64{{1, 2}, {1}, {1}}, 1, 1, DR2StylePreset())
	assert.Equal(t, pipelineerror.KindInvalidInput, pipelineerror.KindOf(err))

	p := DR2StylePreset()
	p.Bands[1].Channel = 3
	_, err = Compose([3][]float64{{1}, {1}, {1}}, 1, 1, p)
	assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err))

	p = DR2StylePreset()
	p.Max = p.Min
	_, err = Compose([3][]float64{{1}, {1}, {1}}, 1, 1, p)
	assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err))

	_, err = PresetByName("sdss")
	assert.EqualError(t, err, "CONFIGURATION: unknown compositor preset: \"sdss\", expected one of [dr2 lupton]")
}

func Example_toImageFlipsRows() {
	img := NewRGBFloat(1, 2)
	copy(img.Pix, []float64{1, 0, 0, 0, 0, 1}) // bottom row red, top row blue

	out := img.ToImage()
	fmt.Println(out.RGBAAt(0, 0), out.RGBAAt(0, 1))

	// Output:
	// {0 0 255 255} {255 0 0 255}
}

func TestRenderFITS(t *testing.T) {
	fs := &fileaccess.FSAccess{}
	root := t.TempDir()

	w, h := 20, 10
	bands := uniformBands(w, h, [3]float64{0.05, 0.1, 0.2})
	data, err := imgFormat.WriteFITSCube(imgFormat.Cube{Width: w, Height: h, Planes: bands[:]})
	require.NoError(t, err)

	src := fileaccess.Location{Bucket: root, Path: "fits/J094/J094511.fits"}
	dst := fileaccess.Location{Bucket: root, Path: "png/J094/J094511.png"}
	require.NoError(t, fs.WriteObject(src.Bucket, src.Path, data))

	comp, err := PresetByName("dr2")
	require.NoError(t, err)

	r := RenderFITS(fs, src, dst, comp, RenderOptions{OutputWidth: 40})
	require.NoError(t, r.Err)
	assert.True(t, r.Success)

	pngBytes, err := fs.ReadObject(dst.Bucket, dst.Path)
	require.NoError(t, err)
	img, format, err := utils.DecodeImageBytes(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	// Exists now, so skipped unless overwriting
	r = RenderFITS(fs, src, dst, comp, RenderOptions{})
	assert.True(t, r.Skipped)
	r = RenderFITS(fs, src, dst, comp, RenderOptions{Overwrite: true, Format: "jpeg"})
	assert.True(t, r.Success)

	// Missing source
	r = RenderFITS(fs, fileaccess.Location{Bucket: root, Path: "nope.fits"}, fileaccess.Location{Bucket: root, Path: "nope.png"}, comp, RenderOptions{})
	assert.False(t, r.Success)
	assert.Equal(t, pipelineerror.KindCorruptArtifact, pipelineerror.KindOf(r.Err))
}

func TestRenderFITSNativeSizeMatchesCompose(t *testing.T) {
	fs := &fileaccess.FSAccess{}
	root := t.TempDir()

	w, h := 6, 4
	bands := [3][]float64{}
	for b := range bands {
		bands[b] = make([]float64, w*h)
		for i := range bands[b] {
			bands[b][i] = 0.01 * float64((i*(b+2))%11)
		}
	}
	data, err := imgFormat.WriteFITSCube(imgFormat.Cube{Width: w, Height: h, Planes: bands[:]})
	require.NoError(t, err)

	src := fileaccess.Location{Bucket: root, Path: "a.fits"}
	dst := fileaccess.Location{Bucket: root, Path: "a.png"}
	require.NoError(t, fs.WriteObject(src.Bucket, src.Path, data))

	comp := DR2StylePreset()
	r := RenderFITS(fs, src, dst, comp, RenderOptions{})
	require.NoError(t, r.Err)

	pngBytes, err := fs.ReadObject(dst.Bucket, dst.Path)
	require.NoError(t, err)
	rendered, _, err := utils.DecodeImageBytes(pngBytes)
	require.NoError(t, err)

	// FITS stores float32, so compose from what was actually written
	cube, err := imgFormat.ReadFITSCube(data)
	require.NoError(t, err)
	rgb, err := comp.Compose([3][]float64{cube.Planes[0], cube.Planes[1], cube.Planes[2]}, w, h)
	require.NoError(t, err)

	equal, diffs := utils.ImagesEqual(rgb.ToImage(), rendered)
	assert.True(t, equal)
	assert.Equal(t, 0, diffs)
}

func TestPresetWithOverrides(t *testing.T) {
	// Nothing to override
	comp, err := PresetWithOverrides("dr2", nil)
	require.NoError(t, err)
	assert.Equal(t, DR2StylePreset(), comp)

	comp, err = PresetWithOverrides("dr2", []byte(" null "))
	require.NoError(t, err)
	assert.Equal(t, DR2StylePreset(), comp)

	// Only the given fields change, null arcsinh means linear
	comp, err = PresetWithOverrides("dr2", []byte(`{"max": 150, "arcsinh": null, "desaturationConstant": 3}`))
	require.NoError(t, err)
	expected := DR2StylePreset()
	expected.Max = 150
	expected.Arcsinh = nil
	expected.DesaturationConstant = 3
	assert.Equal(t, expected, comp)

	// Bands by position, fields left out of a band keep the preset's value
	comp, err = PresetWithOverrides("lupton", []byte(`{"q": 4, "bands": [{"scale": 0.01}, {"scale": 0.02}, {"channel": 0, "scale": 0.03}]}`))
	require.NoError(t, err)
	lupton := comp.(LuptonParams)
	assert.Equal(t, 4.0, lupton.Q)
	assert.Equal(t, LuptonPreset().Stretch, lupton.Stretch)
	assert.Equal(t, [3]BandParams{{Channel: ChannelBlue, Scale: 0.01}, {Channel: ChannelGreen, Scale: 0.02}, {Channel: ChannelRed, Scale: 0.03}}, lupton.Bands)

	for _, bad := range []string{
		`{"maximum": 10}`,
		`{"min": 5, "max": 5}`,
		`{"bands": [{"channel": 3}]}`,
		`[1, 2]`,
	} {
		_, err = PresetWithOverrides("dr2", []byte(bad))
		assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err), bad)
	}

	_, err = PresetWithOverrides("sepia", []byte(`{"max": 1}`))
	assert.EqualError(t, err, "CONFIGURATION: unknown compositor preset: \"sepia\", expected one of [dr2 lupton]")
}
