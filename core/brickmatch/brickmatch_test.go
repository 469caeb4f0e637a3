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
	"fmt"
	"math/rand"
	"testing"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/dataRelease"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Example_findMatchingBrick_halfOpenEdges() {
	bricks := []catalog.Brick{
		{Name: "left", RA1: 10, RA2: 20, Dec1: -5, Dec2: 5},
		{Name: "right", RA1: 20, RA2: 30, Dec1: -5, Dec2: 5},
	}

	// Upper right corner is inside
	fmt.Printf("%+v\n", FindMatchingBrick(catalog.Point{RA: 20, Dec: 5}, bricks[:1]))
	// Lower left corner is not
	fmt.Printf("%+v\n", FindMatchingBrick(catalog.Point{RA: 10, Dec: -5}, bricks[:1]))
	// On the shared edge, belongs to the brick it's the upper bound of
	fmt.Printf("%+v\n", FindMatchingBrick(catalog.Point{RA: 20, Dec: 0}, bricks))
	// Outside everything
	fmt.Printf("%+v\n", FindMatchingBrick(catalog.Point{RA: 50, Dec: 0}, bricks))

	// Output:
	// {Count:1 FirstIndex:0}
	// {Count:0 FirstIndex:-1}
	// {Count:1 FirstIndex:0}
	// {Count:0 FirstIndex:-1}
}

func TestCornersOfRandomBricks(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for c := 0; c < 500; c++ {
		ra1 := rnd.Float64() * 350
		dec1 := rnd.Float64()*170 - 85
		b := catalog.Brick{RA1: ra1, RA2: ra1 + 0.01 + rnd.Float64()*5, Dec1: dec1, Dec2: dec1 + 0.01 + rnd.Float64()*5}

		assert.True(t, Contains(b, catalog.Point{RA: b.RA2, Dec: b.Dec2}), "upper right of %+v", b)
		assert.False(t, Contains(b, catalog.Point{RA: b.RA1, Dec: b.Dec1}), "lower left of %+v", b)
		assert.False(t, Contains(b, catalog.Point{RA: b.RA1, Dec: b.Dec2}), "upper left of %+v", b)
		assert.False(t, Contains(b, catalog.Point{RA: b.RA2, Dec: b.Dec1}), "lower right of %+v", b)
	}
}

func TestFirstMatchIsLowestIndex(t *testing.T) {
	p := catalog.Point{RA: 100, Dec: 10}
	containing := catalog.Brick{RA1: 99, RA2: 101, Dec1: 9, Dec2: 11}
	elsewhere := catalog.Brick{RA1: 0, RA2: 1, Dec1: 0, Dec2: 1}

	bricks := make([]catalog.Brick, 9)
	for c := range bricks {
		bricks[c] = elsewhere
	}
	for _, idx := range []int{7, 2, 5} {
		bricks[idx] = containing
	}

	assert.Equal(t, MatchResult{Count: 3, FirstIndex: 2}, FindMatchingBrick(p, bricks))
}

// randomFixture - a grid of bricks with some overlapping extras, and galaxies scattered over (and
// beyond) their dec span, some landing exactly on edges
func randomFixture(rnd *rand.Rand, nGalaxies int) ([]catalog.Galaxy, []catalog.Brick) {
	bricks := []catalog.Brick{}
	for ra := 0.0; ra < 360; ra += 15 {
		for dec := -30.0; dec < 30; dec += 10 {
			if rnd.Intn(4) == 0 {
				continue // leave gaps
			}
			bricks = append(bricks, catalog.Brick{Name: fmt.Sprintf("%03.0f%+03.0f", ra, dec), RA1: ra, RA2: ra + 15, Dec1: dec, Dec2: dec + 10})
		}
	}
	for c := 0; c < 10; c++ {
		ra := rnd.Float64() * 340
		dec := rnd.Float64()*50 - 30
		bricks = append(bricks, catalog.Brick{Name: fmt.Sprintf("overlap%v", c), RA1: ra, RA2: ra + 20, Dec1: dec, Dec2: dec + 8})
	}

	galaxies := []catalog.Galaxy{}
	for c := 0; c < nGalaxies; c++ {
		g := catalog.Galaxy{Name: fmt.Sprintf("G%05d", c), RA: rnd.Float64() * 359.99, Dec: rnd.Float64()*120 - 60}
		if c%10 == 0 {
			// Right on a grid edge
			g.RA = float64(rnd.Intn(24) * 15)
			g.Dec = float64(rnd.Intn(6)*10 - 30)
		}
		galaxies = append(galaxies, g)
	}
	return galaxies, bricks
}

func TestJoinRowsMatchFirstBrick(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	galaxies, bricks := randomFixture(rnd, 2000)

	joined, stats, err := CreateJointCatalog(galaxies, bricks, &logger.NullLogger{})
	require.NoError(t, err)

	expMatched := 0
	expMulti := 0
	j := 0
	for _, g := range galaxies {
		m := FindMatchingBrick(g.Point(), bricks)
		if m.Count <= 0 {
			continue
		}
		expMatched++
		if m.Count > 1 {
			expMulti++
		}

		// Order of the input is kept
		require.Less(t, j, len(joined))
		assert.Equal(t, g.Name, joined[j].Name)
		require.NotNil(t, joined[j].Brick)
		assert.Equal(t, bricks[m.FirstIndex], *joined[j].Brick)
		j++
	}

	assert.Equal(t, expMatched, len(joined))
	assert.Equal(t, expMatched, stats.Matched)
	assert.Equal(t, expMulti, stats.MultiMatched)
	assert.Greater(t, stats.MultiMatched, 0)
	assert.Less(t, stats.Candidates, stats.Galaxies)

	// Input rows are not modified
	for _, g := range galaxies {
		assert.Nil(t, g.Brick)
	}
}

func TestDecPrefilterDoesNotChangeResult(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	galaxies, bricks := randomFixture(rnd, 3000)

	withFilter, _, err := join(galaxies, bricks, true, &logger.NullLogger{})
	require.NoError(t, err)
	withoutFilter, _, err := join(galaxies, bricks, false, &logger.NullLogger{})
	require.NoError(t, err)

	assert.Equal(t, withoutFilter, withFilter)

	for _, g := range withFilter {
		assert.True(t, g.Dec > -30 && g.Dec <= 30, "%v dec %v", g.Name, g.Dec)
	}
}

func TestJoinEndToEnd(t *testing.T) {
	bricks := []catalog.Brick{
		{Name: "first", RA1: 0, RA2: 90, Dec1: -10, Dec2: 10},
		{Name: "second", RA1: 110, RA2: 360, Dec1: -10, Dec2: 10},
	}
	a := catalog.Galaxy{Name: "A", RA: 45, Dec: 0, PetroTh50: 5.0}
	b := catalog.Galaxy{Name: "B", RA: 95, Dec: 0, PetroTh50: 0.5}
	c := catalog.Galaxy{Name: "C", RA: -5, Dec: 0, PetroTh50: 5.0}

	log := &logger.StdOutLoggerForTest{}

	// C is outside [0, 360), which is bad input rather than a silent non-match
	_, _, err := CreateJointCatalog([]catalog.Galaxy{a, b, c}, bricks, log)
	assert.Equal(t, pipelineerror.KindInvalidInput, pipelineerror.KindOf(err))
	assert.Contains(t, err.Error(), "galaxy C has ra=-5")

	// B falls in the gap between bricks
	joined, stats, err := CreateJointCatalog([]catalog.Galaxy{a, b}, bricks, log)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "A", joined[0].Name)
	assert.Equal(t, "first", joined[0].Brick.Name)
	assert.Equal(t, JoinStats{Galaxies: 2, Candidates: 2, Matched: 1}, stats)
	assert.Equal(t, "INFO: Joined catalog: 1 of 2 galaxies matched a brick (2 candidates after dec pre-filter), 0 matched more than one", log.LastLogLine())
}

func TestSelectBricksForRelease(t *testing.T) {
	bricks := []catalog.Brick{
		{Name: "full", NExpG: 1, NExpR: 1, NExpZ: 2, HasImageG: true, HasImageR: true, HasImageZ: true},
		{Name: "noz", NExpG: 1, NExpR: 1, HasImageG: true, HasImageR: true},
		{Name: "imagedOnly", HasImageG: true, HasImageR: true, HasImageZ: true},
	}

	dr2, err := dataRelease.Get("2")
	require.NoError(t, err)
	dr5, err := dataRelease.Get("5")
	require.NoError(t, err)

	names := func(bs []catalog.Brick) []string {
		r := []string{}
		for _, b := range bs {
			r = append(r, b.Name)
		}
		return r
	}

	assert.Equal(t, []string{"full", "imagedOnly"}, names(SelectBricksForRelease(bricks, dr2)))
	assert.Equal(t, []string{"full"}, names(SelectBricksForRelease(bricks, dr5)))
}

func TestCheckJointCatchesDefects(t *testing.T) {
	bricks := []catalog.Brick{
		{Name: "a", RA1: 10, RA2: 20, Dec1: -5, Dec2: 5},
		{Name: "b", RA1: 20, RA2: 30, Dec1: -5, Dec2: 5},
	}
	candidates := []catalog.Galaxy{
		{Name: "in-a", RA: 15, Dec: 0},
		{Name: "outside", RA: 50, Dec: 0},
		{Name: "in-b", RA: 25, Dec: 1},
	}
	matches := []MatchResult{
		FindMatchingBrick(candidates[0].Point(), bricks),
		FindMatchingBrick(candidates[1].Point(), bricks),
		FindMatchingBrick(candidates[2].Point(), bricks),
	}

	rows := assembleJoint(candidates, bricks, matches)
	require.Len(t, rows, 2)
	assert.NoError(t, checkJoint(rows, 2))

	// A dropped row
	err := checkJoint(rows[:1], 2)
	assert.Equal(t, pipelineerror.KindGeometryMismatch, pipelineerror.KindOf(err))
	assert.EqualError(t, err, "GEOMETRY_MISMATCH: joined catalog has 1 rows but 2 objects matched a brick")

	// Right count, wrong brick
	swapped := append([]catalog.Galaxy{}, rows...)
	swapped[0].Brick = &bricks[1]
	err = checkJoint(swapped, 2)
	assert.True(t, pipelineerror.IsFatal(err))
	assert.EqualError(t, err, "GEOMETRY_MISMATCH: in-a was joined to a brick that doesn't contain it")

	// No brick at all
	swapped[0].Brick = nil
	assert.Equal(t, pipelineerror.KindGeometryMismatch, pipelineerror.KindOf(checkJoint(swapped, 2)))
}
