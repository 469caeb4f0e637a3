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

// Downloading per-galaxy image cutouts from the survey's cutout service, and checking what we got.
package cutout

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ScaleParams - how we turn a galaxy's measured size into a requested pixel scale
type ScaleParams struct {
	Th50Factor    float64 `json:"th50Factor"`
	Th90Factor    float64 `json:"th90Factor"`
	MinPixelScale float64 `json:"minPixelScale"` // arcsec/pixel
}

func DefaultScaleParams() ScaleParams {
	return ScaleParams{
		Th50Factor:    0.04,
		Th90Factor:    0.02,
		MinPixelScale: 0.1,
	}
}

// PixelScale - takes the smaller of the two size based estimates so big galaxies aren't over
// zoomed, then floors it so tiny ones aren't requested at absurd resolution. th50/th90 in arcsec
func PixelScale(th50 float64, th90 float64, p ScaleParams) unit.Angle {
	scale := math.Min(th50*p.Th50Factor, th90*p.Th90Factor)
	if math.IsNaN(scale) || scale < p.MinPixelScale {
		scale = p.MinPixelScale
	}
	return unit.AngleFromSec(scale)
}

// Kind of image the service renders, each has its own endpoint
type ArtifactType string

const (
	ArtifactFITS ArtifactType = "fits-cutout"
	ArtifactJPEG ArtifactType = "jpeg-cutout"
)

// Request - one cutout to ask the service for
type Request struct {
	RA       float64
	Dec      float64
	PixScale unit.Angle
	Size     int
	Layer    string
}

// ClampToBudget - never exceed maxSize pixels on an edge. If the request is bigger, we cover the
// same patch of sky with coarser pixels instead
func (r Request) ClampToBudget(maxSize int) Request {
	if maxSize > 0 && r.Size > maxSize {
		r.PixScale = unit.Angle(float64(r.PixScale) * float64(r.Size) / float64(maxSize))
		r.Size = maxSize
	}
	return r
}

// URL - the service query for this request. Values are written out in full so the request is
// reproducible from logs
func (r Request) URL(baseURL string, artifact ArtifactType) string {
	q := url.Values{}
	q.Set("ra", strconv.FormatFloat(r.RA, 'f', -1, 64))
	q.Set("dec", strconv.FormatFloat(r.Dec, 'f', -1, 64))
	q.Set("pixscale", strconv.FormatFloat(r.PixScale.Sec(), 'g', 6, 64))
	q.Set("size", strconv.Itoa(r.Size))
	q.Set("layer", r.Layer)

	return fmt.Sprintf("%v/%v/?%v", strings.TrimSuffix(baseURL, "/"), artifact, q.Encode())
}
