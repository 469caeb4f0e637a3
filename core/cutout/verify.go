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

package cutout

import (
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imgFormat"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/pkg/errors"
)

const DefaultBadPixelLimit = 0.2

// Verification - Opens is false for anything we can't parse (missing, empty, truncated, bad
// header). PixelQualityOK is only ever true if Opens is. Err says why, for logging only
type Verification struct {
	Opens          bool
	PixelQualityOK bool
	WorstBadFrac   float64
	Err            error
}

// Verify - reads a stored FITS cutout and checks the worst band's fraction of zero/NaN pixels is
// strictly below badPixelLimit. Never returns an error, failures are in the result
func Verify(fs fileaccess.FileAccess, loc fileaccess.Location, badPixelLimit float64) Verification {
	data, err := fs.ReadObject(loc.Bucket, loc.Path)
	if err != nil {
		return Verification{Err: pipelineerror.MakeError(pipelineerror.KindCorruptArtifact, errors.Wrapf(err, "failed to read %v", loc))}
	}

	cube, err := imgFormat.ReadFITSCube(data)
	if err != nil {
		return Verification{Err: pipelineerror.MakeError(pipelineerror.KindCorruptArtifact, errors.Wrapf(err, "failed to parse %v", loc))}
	}

	return CheckPixelQuality(cube, badPixelLimit)
}

// CheckPixelQuality - uses the worst band, not an average: one badly incomplete band ruins the
// colour image even if the others are perfect
func CheckPixelQuality(cube imgFormat.Cube, badPixelLimit float64) Verification {
	result := Verification{Opens: true}

	for _, plane := range cube.Planes {
		if frac := imgFormat.BadPixelFraction(plane); frac > result.WorstBadFrac {
			result.WorstBadFrac = frac
		}
	}
	if len(cube.Planes) <= 0 {
		result.WorstBadFrac = 1
	}

	result.PixelQualityOK = result.WorstBadFrac < badPixelLimit
	if !result.PixelQualityOK {
		result.Err = pipelineerror.Errorf(pipelineerror.KindQualityInsufficient, "worst band has %.3f bad pixels, limit is %v", result.WorstBadFrac, badPixelLimit)
	}
	return result
}
