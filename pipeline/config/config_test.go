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


package config

import (
	"fmt"
	"testing"

	"github.com/galaxyzoo/decals-pipeline/core/imageedit"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InitializeConfigWithFile(t *testing.T) {
	cfg, err := NewConfigFromFile("./example_config.json")
	require.NoError(t, err)

	assert.Equal(t, "dr5", cfg.DataRelease)
	assert.Equal(t, int32(16), cfg.Workers)
	assert.Equal(t, 0.25, cfg.BadPixelLimit)
	// Not in the file, so defaulted
	assert.Equal(t, "png", cfg.OutputImageFormat)
	assert.Equal(t, int32(512), cfg.CutoutMaxSize)
	assert.NoError(t, cfg.Validate())

	// DR5 uses the lupton preset, with the file's parameters over it
	release, err := cfg.Release()
	require.NoError(t, err)
	comp, err := cfg.Compositor(release)
	require.NoError(t, err)
	lupton, ok := comp.(imageedit.LuptonParams)
	require.True(t, ok)
	assert.Equal(t, 6.0, lupton.Q)
	assert.Equal(t, 20.0, lupton.Stretch)
	assert.Equal(t, imageedit.LuptonPreset().Bands, lupton.Bands)
}

func Test_OverrideConfigWithEnvVars(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_Workers", "3")
	t.Setenv("PIPELINE_CONFIG_BadPixelLimit", "0.1")
	t.Setenv("PIPELINE_CONFIG_OverwritePNG", "true")
	t.Setenv("PIPELINE_CONFIG_FITSRoot", "cutouts/fits")

	cfg, err := NewConfigFromFile("./example_config.json")
	require.NoError(t, err)

	assert.Equal(t, int32(3), cfg.Workers)
	assert.Equal(t, 0.1, cfg.BadPixelLimit)
	assert.True(t, cfg.OverwritePNG)
	assert.Equal(t, "cutouts/fits", cfg.FITSRoot)
}

func Test_CompositeParamsFromEnv(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_DataRelease", "2")
	t.Setenv("PIPELINE_CONFIG_CompositeParams", `{"max": 150, "arcsinh": null}`)

	cfg, err := buildConfig([]byte("{}"))
	require.NoError(t, err)
	release, err := cfg.Release()
	require.NoError(t, err)

	comp, err := cfg.Compositor(release)
	require.NoError(t, err)
	dr2 := comp.(imageedit.CompositeParams)
	assert.Equal(t, 150.0, dr2.Max)
	assert.Nil(t, dr2.Arcsinh)

	// Parameters that don't belong to the preset are caught by Validate
	cfg.CompositeParams = []byte(`{"q": 3}`)
	err = cfg.Validate()
	assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err))
}

func Test_BadCompositeParamsEnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_CompositeParams", `{"max": `)

	_, err := buildConfig([]byte("{}"))
	assert.EqualError(t, err, "CONFIGURATION: could not read PIPELINE_CONFIG_CompositeParams={\"max\":  as JSON")
}

func Test_BadEnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_Workers", "lots")

	_, err := buildConfig([]byte("{}"))
	assert.Equal(t, pipelineerror.KindConfiguration, pipelineerror.KindOf(err))
	assert.EqualError(t, err, "CONFIGURATION: could not read PIPELINE_CONFIG_Workers=lots as an integer")
}

func Example_validate() {
	cfg := DefaultConfig()
	fmt.Println(cfg.Validate())

	cfg.DataRelease = "4"
	fmt.Println(cfg.Validate())

	cfg = DefaultConfig()
	cfg.Workers = 0
	err := cfg.Validate()
	fmt.Printf("%v|%v\n", err, pipelineerror.IsFatal(err))

	cfg = DefaultConfig()
	cfg.StorageBackend = "gcs"
	fmt.Println(cfg.Validate())

	// Output:
	// <nil>
	// CONFIGURATION: unknown data release: "4", expected one of [1 2 3 5 8]
	// CONFIGURATION: Workers must be positive, got 0|true
	// CONFIGURATION: unknown StorageBackend: "gcs", expected local, s3 or minio
}

func Example_releaseDerivedOptions() {
	cfg := DefaultConfig()
	cfg.DataRelease = "dr3"
	cfg.RetryDelayMs = 250

	rel, err := cfg.Release()
	fmt.Println(err)

	opts := cfg.FetchOptions(rel)
	fmt.Printf("%v|%v|%v|%v\n", opts.Layer, opts.MaxAttempts, opts.Timeout, opts.RetryDelay)
	fmt.Println(cfg.PresetName(rel))

	cfg.CutoutLayer = "decals-dr3-custom"
	cfg.CompositePreset = "lupton"
	fmt.Println(cfg.FetchOptions(rel).Layer)
	fmt.Println(cfg.PresetName(rel))

	fmt.Println(cfg.SelectionCuts())
	fmt.Println(cfg.CatalogLocation("joint.csv"))

	// Output:
	// <nil>
	// decals-dr3|5|45s|250ms
	// dr2
	// decals-dr3-custom
	// lupton
	// {3 4.6 0.01}
	// joint.csv
}
