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
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imgFormat"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/pkg/errors"
)

// RenderOptions - OutputWidth of 0 keeps the cutout's own size
type RenderOptions struct {
	Format      string `json:"format"`
	OutputWidth int    `json:"outputWidth"`
	Overwrite   bool   `json:"overwrite"`
}

// RenderResult - Skipped if the output already existed and we weren't overwriting
type RenderResult struct {
	Skipped bool
	Success bool
	Err     error
}

// RenderFITS - reads a 3-band (g, r, z) FITS cutout from src and writes its colour rendering to dst
func RenderFITS(fs fileaccess.FileAccess, src fileaccess.Location, dst fileaccess.Location, comp Compositor, opts RenderOptions) RenderResult {
	if !opts.Overwrite {
		if exists, err := fs.ObjectExists(dst.Bucket, dst.Path); err == nil && exists {
			return RenderResult{Skipped: true, Success: true}
		}
	}

	data, err := fs.ReadObject(src.Bucket, src.Path)
	if err != nil {
		return RenderResult{Err: pipelineerror.MakeError(pipelineerror.KindCorruptArtifact, errors.Wrapf(err, "failed to read %v", src))}
	}

	cube, err := imgFormat.ReadFITSCube(data)
	if err != nil {
		return RenderResult{Err: pipelineerror.MakeError(pipelineerror.KindCorruptArtifact, errors.Wrapf(err, "failed to parse %v", src))}
	}
	if len(cube.Planes) != 3 {
		return RenderResult{Err: pipelineerror.Errorf(pipelineerror.KindCorruptArtifact, "%v has %v bands, expected 3", src, len(cube.Planes))}
	}

	rgb, err := comp.Compose([3][]float64{cube.Planes[0], cube.Planes[1], cube.Planes[2]}, cube.Width, cube.Height)
	if err != nil {
		return RenderResult{Err: errors.Wrapf(err, "failed to compose %v", src)}
	}

	format := opts.Format
	if len(format) <= 0 {
		format = "png"
	}

	imgBytes, err := GetImageBytes(ScaleImage(rgb.ToImage(), opts.OutputWidth), format)
	if err != nil {
		return RenderResult{Err: errors.Wrapf(err, "failed to encode %v", dst)}
	}

	if err := fs.WriteObject(dst.Bucket, dst.Path, imgBytes); err != nil {
		return RenderResult{Err: errors.Wrapf(err, "failed to write %v", dst)}
	}

	return RenderResult{Success: true}
}
