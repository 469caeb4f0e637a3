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

package brickmatch

import (
	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/dataRelease"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/pkg/errors"
)

type JoinStats struct {
	Galaxies     int
	Candidates   int // after the declination pre-filter
	Matched      int
	MultiMatched int
}

// CreateJointCatalog - returns the galaxies which fall in a brick, each carrying a copy of the
// first brick it matched. Galaxies are validated first, a bad coordinate fails the whole join.
// No selection cuts are applied here, the joined catalog is a superset for downstream filtering
func CreateJointCatalog(galaxies []catalog.Galaxy, bricks []catalog.Brick, log logger.ILogger) ([]catalog.Galaxy, JoinStats, error) {
	return join(galaxies, bricks, true, log)
}

func join(galaxies []catalog.Galaxy, bricks []catalog.Brick, prefilter bool, log logger.ILogger) ([]catalog.Galaxy, JoinStats, error) {
	stats := JoinStats{Galaxies: len(galaxies)}

	if err := catalog.ValidateAll(galaxies); err != nil {
		return nil, stats, errors.Wrap(err, "galaxy catalog")
	}
	if err := catalog.ValidateAll(bricks); err != nil {
		return nil, stats, errors.Wrap(err, "brick catalog")
	}

	result := []catalog.Galaxy{}
	if len(bricks) <= 0 {
		log.Infof("No bricks to match %v galaxies against", len(galaxies))
		return result, stats, nil
	}

	candidates := galaxies
	if prefilter {
		candidates = filterByDec(galaxies, bricks)
	}
	stats.Candidates = len(candidates)

	matches := make([]MatchResult, len(candidates))
	for c, g := range candidates {
		matches[c] = FindMatchingBrick(g.Point(), bricks)
		if matches[c].Count > 0 {
			stats.Matched++
		}
		if matches[c].Count > 1 {
			stats.MultiMatched++
		}
	}

	result = assembleJoint(candidates, bricks, matches)
	if err := checkJoint(result, stats.Matched); err != nil {
		return nil, stats, err
	}

	log.Infof("Joined catalog: %v of %v galaxies matched a brick (%v candidates after dec pre-filter), %v matched more than one", stats.Matched, stats.Galaxies, stats.Candidates, stats.MultiMatched)
	return result, stats, nil
}

func assembleJoint(candidates []catalog.Galaxy, bricks []catalog.Brick, matches []MatchResult) []catalog.Galaxy {
	result := make([]catalog.Galaxy, 0, len(candidates))
	for c, g := range candidates {
		if matches[c].Count <= 0 {
			continue
		}

		brick := bricks[matches[c].FirstIndex]
		g.Brick = &brick
		result = append(result, g)
	}
	return result
}

// checkJoint - one row per matched galaxy, and every row's brick really contains it
func checkJoint(rows []catalog.Galaxy, matched int) error {
	if len(rows) != matched {
		return pipelineerror.MakeGeometryMismatchError(matched, len(rows))
	}
	for _, g := range rows {
		if g.Brick == nil || !Contains(*g.Brick, g.Point()) {
			return pipelineerror.Errorf(pipelineerror.KindGeometryMismatch, "%v was joined to a brick that doesn't contain it", g.Name)
		}
	}
	return nil
}

// filterByDec - keeps galaxies within the declination span of the bricks. RA is never pre-filtered
// as it wraps through 0/360
func filterByDec(galaxies []catalog.Galaxy, bricks []catalog.Brick) []catalog.Galaxy {
	edges := make([]float64, 0, 2*len(bricks))
	for _, b := range bricks {
		edges = append(edges, b.Dec1, b.Dec2)
	}
	minDec, maxDec, _ := utils.MinMax(edges)

	result := []catalog.Galaxy{}
	for _, g := range galaxies {
		if g.Dec >= minDec && g.Dec <= maxDec {
			result = append(result, g)
		}
	}
	return result
}

// SelectBricksForRelease - bricks with enough data in every band, per the release's rules
func SelectBricksForRelease(bricks []catalog.Brick, release dataRelease.Release) []catalog.Brick {
	result := []catalog.Brick{}
	for _, b := range bricks {
		if release.HasEnoughExposures(b) {
			result = append(result, b)
		}
	}
	return result
}
