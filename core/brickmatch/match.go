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

// Matching of galaxy positions against the rectangular bricks of the imaging footprint, and
// building the joined catalog from the result.
package brickmatch

import "github.com/galaxyzoo/decals-pipeline/core/catalog"

// MatchResult - how many bricks contain a point, and the lowest index of those. FirstIndex is -1
// if Count is 0
type MatchResult struct {
	Count      int
	FirstIndex int
}

// Contains - half-open on both axes: a point on the dividing edge between two bricks belongs to
// the brick it is the upper bound of
func Contains(b catalog.Brick, p catalog.Point) bool {
	return b.RA1 < p.RA && p.RA <= b.RA2 && b.Dec1 < p.Dec && p.Dec <= b.Dec2
}

// FindMatchingBrick - linear scan over all bricks. Lowest index wins, we don't look for the
// nearest centre
func FindMatchingBrick(p catalog.Point, bricks []catalog.Brick) MatchResult {
	result := MatchResult{FirstIndex: -1}
	for c, b := range bricks {
		if Contains(b, p) {
			if result.Count == 0 {
				result.FirstIndex = c
			}
			result.Count++
		}
	}
	return result
}
