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

package downloader

import (
	"context"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/cutout"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imageedit"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
)

type StageOptions struct {
	OverwriteFITS bool
	BadPixelLimit float64
	Render        imageedit.RenderOptions
}

// CutoutPaths - FITS and PNG roots, each split into name-prefix subdirectories
func CutoutPaths(fitsRoot fileaccess.Location, pngRoot fileaccess.Location) PathAssigner {
	return func(name string) ObjectPaths {
		return ObjectPaths{
			FITS: cutout.ArtifactLocation(fitsRoot, name, ".fits"),
			PNG:  cutout.ArtifactLocation(pngRoot, name, ".png"),
		}
	}
}

// StandardStages - fetch with the cutout service, render with the given compositor, verify FITS
// pixel quality and that the PNG decodes. A galaxy isn't downloaded again unless overwriting if it's
// marked good in the input catalog, or the FITS already stored at its path passes verification
func StandardStages(fetcher *cutout.Fetcher, fs fileaccess.FileAccess, comp imageedit.Compositor, opts StageOptions) Stages {
	return Stages{
		Fetch: func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) error {
			alreadyGood := false
			if !opts.OverwriteFITS {
				alreadyGood = (g.FITSReady && g.FITSPixelQualityOK) || storedFITSGood(fs, paths.FITS, opts.BadPixelLimit)
			}
			return fetcher.Fetch(ctx, g, paths.FITS, alreadyGood, opts.OverwriteFITS).Err
		},
		Render: func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) error {
			return imageedit.RenderFITS(fs, paths.FITS, paths.PNG, comp, opts.Render).Err
		},
		Verify: func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) ObjectStatus {
			v := cutout.Verify(fs, paths.FITS, opts.BadPixelLimit)
			return ObjectStatus{
				FITSReady:          v.Opens,
				FITSPixelQualityOK: v.PixelQualityOK,
				PNGReady:           RenderedImageReadable(fs, paths.PNG),
			}
		},
	}
}

func storedFITSGood(fs fileaccess.FileAccess, loc fileaccess.Location, badPixelLimit float64) bool {
	if exists, err := fs.ObjectExists(loc.Bucket, loc.Path); err != nil || !exists {
		return false
	}
	v := cutout.Verify(fs, loc, badPixelLimit)
	return v.Opens && v.PixelQualityOK
}

// RenderedImageReadable - the rendered image exists and decodes
func RenderedImageReadable(fs fileaccess.FileAccess, loc fileaccess.Location) bool {
	data, err := fs.ReadObject(loc.Bucket, loc.Path)
	if err != nil {
		return false
	}
	_, _, err = utils.DecodeImageBytes(data)
	return err == nil
}
