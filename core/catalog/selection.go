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

package catalog

import "math"

// SelectionCuts - measurement quality rules applied to the joined catalog before fetching cutouts.
// Sentinel is a value the upstream photometry pipeline writes when it fails to measure a size, so
// anything within Tolerance of it is treated as unmeasured
type SelectionCuts struct {
	MinSize   float64 `json:"minSize"`
	Sentinel  float64 `json:"sentinel"`
	Tolerance float64 `json:"tolerance"`
}

func DefaultSelectionCuts() SelectionCuts {
	return SelectionCuts{
		MinSize:   3.0,
		Sentinel:  4.6,
		Tolerance: 0.01,
	}
}

// ApplySelectionCuts - returns a new slice of the galaxies passing the cuts. Input is not modified
func ApplySelectionCuts(galaxies []Galaxy, cuts SelectionCuts) []Galaxy {
	result := []Galaxy{}
	for _, g := range galaxies {
		if g.PetroTh50 < cuts.MinSize || math.IsNaN(g.PetroTh50) {
			continue
		}
		if math.Abs(g.PetroTh50-cuts.Sentinel) <= cuts.Tolerance {
			continue
		}
		result = append(result, g)
	}
	return result
}
