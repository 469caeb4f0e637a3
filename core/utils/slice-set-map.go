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

package utils

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetMapKeys[K comparable, V any](theMap map[K]V) []K {
	result := []K{}

	for key := range theMap {
		result = append(result, key)
	}

	return result
}

func GetSortedMapKeys[K constraints.Ordered, V any](theMap map[K]V) []K {
	result := GetMapKeys(theMap)
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// FindDuplicates - returns values that appear more than once, each reported once, in order of
// their second appearance
func FindDuplicates[T comparable](items []T) []T {
	seen := map[T]int{}
	result := []T{}

	for _, item := range items {
		seen[item]++
		if seen[item] == 2 {
			result = append(result, item)
		}
	}

	return result
}

// MinMax - min and max of a non-empty slice. ok is false for empty input
func MinMax[T constraints.Integer | constraints.Float](vals []T) (T, T, bool) {
	var min, max T
	if len(vals) <= 0 {
		return min, max, false
	}

	min = vals[0]
	max = vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

func Clamp[T constraints.Integer | constraints.Float](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
