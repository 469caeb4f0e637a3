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

// Record types for the two catalogs the pipeline works with: the galaxy catalog (one row per
// object) and the imaging footprint catalog (one row per brick).
package catalog

import (
	"math"

	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
)

// Brick - one rectangular region of sky imaged by the survey. Edges are well ordered (RA1 < RA2,
// Dec1 < Dec2), all in degrees
type Brick struct {
	Name string  `json:"name"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	RA1  float64 `json:"ra1"`
	RA2  float64 `json:"ra2"`
	Dec1 float64 `json:"dec1"`
	Dec2 float64 `json:"dec2"`

	NExpG int `json:"nexp_g"`
	NExpR int `json:"nexp_r"`
	NExpZ int `json:"nexp_z"`

	HasImageG bool `json:"has_image_g"`
	HasImageR bool `json:"has_image_r"`
	HasImageZ bool `json:"has_image_z"`
}

func (b Brick) Validate() error {
	if !(b.RA1 < b.RA2) || !(b.Dec1 < b.Dec2) {
		return pipelineerror.Errorf(pipelineerror.KindInvalidInput, "brick %v has badly ordered edges: ra [%v, %v] dec [%v, %v]", b.Name, b.RA1, b.RA2, b.Dec1, b.Dec2)
	}
	return nil
}

// Point - a sky coordinate, degrees
type Point struct {
	RA  float64
	Dec float64
}

// Galaxy - one row of the galaxy catalog. Starts with just the measured columns, gains Brick after
// being joined against the footprint, and gains the image status columns after cutouts are processed
type Galaxy struct {
	Name       string  `json:"name"`
	RA         float64 `json:"ra"`
	Dec        float64 `json:"dec"`
	PetroTheta float64 `json:"petrotheta"`
	PetroTh50  float64 `json:"petroth50"`
	PetroTh90  float64 `json:"petroth90"`
	Redshift   float64 `json:"z"`

	Brick *Brick `json:"brick,omitempty"`

	FITSLocation       string `json:"fits_loc,omitempty"`
	PNGLocation        string `json:"png_loc,omitempty"`
	FITSReady          bool   `json:"fits_ready"`
	FITSPixelQualityOK bool   `json:"fits_filled"`
	PNGReady           bool   `json:"png_ready"`
}

func (g Galaxy) Point() Point {
	return Point{RA: g.RA, Dec: g.Dec}
}

// Validate - coordinates must be in range. We don't wrap RA for the caller, -5 is an error, not 355
func (g Galaxy) Validate() error {
	if len(g.Name) <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindInvalidInput, "galaxy at ra=%v dec=%v has no name", g.RA, g.Dec)
	}
	if math.IsNaN(g.RA) || g.RA < 0 || g.RA >= 360 {
		return pipelineerror.Errorf(pipelineerror.KindInvalidInput, "galaxy %v has ra=%v, expected [0, 360)", g.Name, g.RA)
	}
	if math.IsNaN(g.Dec) || g.Dec < -90 || g.Dec > 90 {
		return pipelineerror.Errorf(pipelineerror.KindInvalidInput, "galaxy %v has dec=%v, expected [-90, 90]", g.Name, g.Dec)
	}
	return nil
}

// ValidateAll - checks every row, stops at the first bad one
func ValidateAll[T interface{ Validate() error }](rows []T) error {
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
