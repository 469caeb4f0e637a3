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

// Survey data releases we know how to work with. Anything that differs per release (which bricks
// count as imaged, which image layer to ask the cutout service for) is looked up here, and an
// unknown release is a configuration error, never a fall through to some default release.
package dataRelease

import (
	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
)

// BrickPredicate - decides if a brick has enough data in all bands to be used
type BrickPredicate func(catalog.Brick) bool

type Release struct {
	ID    string
	Layer string

	// Early releases only recorded whether a band was imaged, later ones record exposure counts
	HasEnoughExposures BrickPredicate

	// Compositor preset used to render cutouts for this release, see imageedit.PresetByName
	CompositePreset string
}

func hasAllImages(b catalog.Brick) bool {
	return b.HasImageG && b.HasImageR && b.HasImageZ
}

func hasAllExposures(b catalog.Brick) bool {
	return b.NExpG > 0 && b.NExpR > 0 && b.NExpZ > 0
}

var releases = map[string]Release{
	"1": {ID: "1", Layer: "decals-dr1", HasEnoughExposures: hasAllImages, CompositePreset: "dr2"},
	"2": {ID: "2", Layer: "decals-dr2", HasEnoughExposures: hasAllImages, CompositePreset: "dr2"},
	"3": {ID: "3", Layer: "decals-dr3", HasEnoughExposures: hasAllExposures, CompositePreset: "dr2"},
	"5": {ID: "5", Layer: "decals-dr5", HasEnoughExposures: hasAllExposures, CompositePreset: "lupton"},
	"8": {ID: "8", Layer: "ls-dr8", HasEnoughExposures: hasAllExposures, CompositePreset: "lupton"},
}

// Get - looks up a release by id. Accepts "5", "dr5" or "DR5"
func Get(id string) (Release, error) {
	r, ok := releases[normaliseID(id)]
	if !ok {
		return Release{}, pipelineerror.Errorf(pipelineerror.KindConfiguration, "unknown data release: \"%v\", expected one of %v", id, KnownIDs())
	}
	return r, nil
}

func KnownIDs() []string {
	return utils.GetSortedMapKeys(releases)
}

func normaliseID(id string) string {
	if len(id) > 2 && (id[0] == 'd' || id[0] == 'D') && (id[1] == 'r' || id[1] == 'R') {
		return id[2:]
	}
	return id
}
