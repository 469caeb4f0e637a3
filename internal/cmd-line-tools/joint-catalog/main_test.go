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


package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/pipeline/config"
	"github.com/galaxyzoo/decals-pipeline/pipeline/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGalaxies = `name,ra,dec,petroth50,petroth90,z
J000500.00+050000.0,5,5,4.1,9.0,0.03
J010000.00+050000.0,15,5,5.0,11.0,0.04
J002000.00+500000.0,5,50,6.2,12.5,0.05
`

const testBricks = `name,ra,dec,ra1,ra2,dec1,dec2,nexp_g,nexp_r,nexp_z
0050p050,5,5,0,10,0,10,2,3,4
0150p050,15,5,10,20,0,10,0,3,4
`

func testServices(t *testing.T) (*services.PipelineServices, *logger.StdOutLoggerForTest) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "galaxies.csv"), []byte(testGalaxies), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bricks.csv"), []byte(testBricks), 0644))

	cfg := config.DefaultConfig()
	cfg.CatalogBucket = dir
	cfg.GalaxyCatalogPath = "galaxies.csv"
	cfg.BrickCatalogPath = "bricks.csv"
	cfg.JointCatalogPath = "out/joint.json"

	log := &logger.StdOutLoggerForTest{}
	return &services.PipelineServices{Config: cfg, Log: log, FS: &fileaccess.FSAccess{}}, log
}

func TestJointCatalogRun(t *testing.T) {
	svcs, log := testServices(t)

	require.NoError(t, run(svcs))

	joint, err := catalog.LoadGalaxies(svcs.FS, svcs.Config.CatalogLocation("out/joint.json"))
	require.NoError(t, err)

	// Second galaxy's brick has no g exposures in DR5, third is outside every brick
	require.Len(t, joint, 1)
	assert.Equal(t, "J000500.00+050000.0", joint[0].Name)
	require.NotNil(t, joint[0].Brick)
	assert.Equal(t, "0050p050", joint[0].Brick.Name)
	assert.Equal(t, 2, joint[0].Brick.NExpG)

	assert.True(t, log.LogContains("1 of 2 bricks have data in g, r and z for DR5"))
}

func TestJointCatalogEarlyReleaseNeedsImageFlags(t *testing.T) {
	svcs, _ := testServices(t)
	// DR2 goes by has_image_*, which this brick table doesn't fill in, so no brick qualifies
	svcs.Config.DataRelease = "2"

	require.NoError(t, run(svcs))

	joint, err := catalog.LoadGalaxies(svcs.FS, svcs.Config.CatalogLocation("out/joint.json"))
	require.NoError(t, err)
	assert.Empty(t, joint)
}

func TestJointCatalogMissingPath(t *testing.T) {
	svcs, _ := testServices(t)
	svcs.Config.BrickCatalogPath = ""

	err := run(svcs)
	assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err))
	assert.EqualError(t, err, "CONFIGURATION: BrickCatalogPath was empty")
}
