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


// Pipeline configuration as read from JSON and overridden by environment variables
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/cutout"
	"github.com/galaxyzoo/decals-pipeline/core/dataRelease"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imageedit"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
)

const EnvOverridePrefix = "PIPELINE_CONFIG_"

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Configuration for the pipeline tools

// PipelineConfig combines env vars and config JSON values
type PipelineConfig struct {
	EnvironmentName string
	LogLevel        string

	DataRelease string

	// Where tables and artifacts live: "local", "s3" or "minio". For local, buckets are directories
	StorageBackend string
	AWSRegion      string
	S3Endpoint     string // Blank for real AWS, set for S3-compatible stores

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool

	// Tables
	CatalogBucket     string
	GalaxyCatalogPath string
	BrickCatalogPath  string
	JointCatalogPath  string // Output of joint-catalog, input of cutout-pipeline
	OutputCatalogPath string // Joint catalog with status columns filled in

	// Artifacts
	ArtifactBucket string
	FITSRoot       string
	PNGRoot        string
	PreviewRoot    string // If set, the service's own JPEG rendering is also saved for each galaxy
	ManifestPath   string // If set, a manifest of newly ready subjects is written here

	// Cutout service
	CutoutServiceURL  string
	CutoutLayer       string // Blank to use the release's layer
	CutoutSize        int32
	CutoutMaxSize     int32
	MaxAttempts       int32
	FetchTimeoutSec   int32
	RetryDelayMs      int32
	RequestsPerMinute int32 // 0 for no limit

	Th50Factor    float64
	Th90Factor    float64
	MinPixelScale float64

	BadPixelLimit float64

	Workers       int32
	ProgressEvery int32 // Log progress every this many galaxies, 0 for never
	OverwriteFITS bool
	OverwritePNG  bool

	CompositePreset   string          // Blank to use the release's preset
	CompositeParams   json.RawMessage // Optional preset fields to replace, eg {"max": 150, "arcsinh": null}
	OutputImageFormat string
	OutputImageWidth  int32

	// Selection cuts on PetroTh50
	MinGalaxySize     float64
	SizeSentinel      float64
	SentinelTolerance float64
	SkipSelectionCuts bool

	// Mongo connection for the subject ledger. With neither set, the ledger is kept in memory
	MongoSecret   string
	MongoLocalURI string
	MongoCAFile   string
	MongoDatabase string

	SubjectSetName string

	SentryEndpoint string
	MetricsPort    int32 // 0 for no status/metrics server
}

// DefaultConfig - values used for anything not in the config file
func DefaultConfig() PipelineConfig {
	fetch := cutout.DefaultFetchOptions()
	cuts := catalog.DefaultSelectionCuts()
	return PipelineConfig{
		LogLevel:          "INFO",
		DataRelease:       "5",
		StorageBackend:    "local",
		AWSRegion:         "us-east-1",
		CatalogBucket:     ".",
		ArtifactBucket:    ".",
		FITSRoot:          "fits",
		PNGRoot:           "png",
		CutoutServiceURL:  fetch.BaseURL,
		CutoutSize:        int32(fetch.Size),
		CutoutMaxSize:     int32(fetch.MaxSize),
		MaxAttempts:       int32(fetch.MaxAttempts),
		FetchTimeoutSec:   int32(fetch.Timeout / time.Second),
		Th50Factor:        fetch.Scale.Th50Factor,
		Th90Factor:        fetch.Scale.Th90Factor,
		MinPixelScale:     fetch.Scale.MinPixelScale,
		BadPixelLimit:     cutout.DefaultBadPixelLimit,
		Workers:           8,
		ProgressEvery:     500,
		OutputImageFormat: "png",
		MinGalaxySize:     cuts.MinSize,
		SizeSentinel:      cuts.Sentinel,
		SentinelTolerance: cuts.Tolerance,
		MongoDatabase:     "galaxyzoo",
		SubjectSetName:    "decals",
	}
}

func NewConfigFromFile(configFilePath string) (PipelineConfig, error) {
	fmt.Printf("Loading custom config from: %s\n", configFilePath)
	customConfig, err := os.ReadFile(configFilePath)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("could not read config file at %s", configFilePath)
	}
	return buildConfig(customConfig)
}

func buildConfig(configJson []byte) (PipelineConfig, error) {
	cfg := DefaultConfig()

	err := json.Unmarshal(configJson, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse custom config: %v", err)
	}

	// Override Config with any values explicitly set in Env Vars (PIPELINE_CONFIG_*)
	// NOTE: For []string slices, pass in a comma-separated string to the corresponding PIPELINE_CONFIG_ var
	err = applyEnvOverrides(&cfg, os.LookupEnv)
	return cfg, err
}

func applyEnvOverrides(cfg *PipelineConfig, lookup func(string) (string, bool)) error {
	reflection := reflect.ValueOf(cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)
		envName := EnvOverridePrefix + fieldName
		val, present := lookup(envName)
		if !present {
			continue
		}

		if field.Type() == reflect.TypeOf(json.RawMessage{}) {
			if !json.Valid([]byte(val)) {
				return pipelineerror.Errorf(pipelineerror.KindConfiguration, "could not read %v=%v as JSON", envName, val)
			}
			field.SetBytes([]byte(val))
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(strings.Split(val, ",")))
			}
		case reflect.Int32:
			i, err := strconv.ParseInt(val, 10, 32)
			if err != nil {
				return pipelineerror.Errorf(pipelineerror.KindConfiguration, "could not read %v=%v as an integer", envName, val)
			}
			field.SetInt(i)
		case reflect.Float64:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return pipelineerror.Errorf(pipelineerror.KindConfiguration, "could not read %v=%v as a number", envName, val)
			}
			field.SetFloat(f)
		case reflect.Bool:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return pipelineerror.Errorf(pipelineerror.KindConfiguration, "could not read %v=%v as a bool", envName, val)
			}
			field.SetBool(b)
		}
	}
	return nil
}

// Init config, reads the -customConfigPath command line argument and loads it
func Init() (PipelineConfig, error) {
	configFilePath := flag.String("customConfigPath", "", "Path to the json file holding the pipeline config")
	flag.Parse()

	if configFilePath == nil || *configFilePath == "" {
		return PipelineConfig{}, pipelineerror.MakeConfigurationError(errors.New("no configuration provided"))
	}

	cfg, err := NewConfigFromFile(*configFilePath)
	if err != nil {
		return cfg, pipelineerror.MakeConfigurationError(err)
	}
	return cfg, cfg.Validate()
}

// Validate - checks what can be checked without touching storage or the network
func (c PipelineConfig) Validate() error {
	release, err := c.Release()
	if err != nil {
		return err
	}
	if _, err := c.Compositor(release); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "Workers must be positive, got %v", c.Workers)
	}
	if c.MaxAttempts <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "MaxAttempts must be positive, got %v", c.MaxAttempts)
	}
	if c.CutoutSize <= 0 || c.CutoutMaxSize <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "CutoutSize and CutoutMaxSize must be positive, got %v and %v", c.CutoutSize, c.CutoutMaxSize)
	}
	if c.BadPixelLimit <= 0 || c.BadPixelLimit > 1 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "BadPixelLimit must be in (0, 1], got %v", c.BadPixelLimit)
	}
	if _, ok := logger.GetLogLevel(c.LogLevel); !ok {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "unknown LogLevel: \"%v\"", c.LogLevel)
	}
	switch c.StorageBackend {
	case "local", "s3", "minio":
	default:
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "unknown StorageBackend: \"%v\", expected local, s3 or minio", c.StorageBackend)
	}
	return nil
}

func (c PipelineConfig) Release() (dataRelease.Release, error) {
	return dataRelease.Get(c.DataRelease)
}

// ParsedLogLevel - INFO if the configured name isn't known
func (c PipelineConfig) ParsedLogLevel() logger.LogLevel {
	if level, ok := logger.GetLogLevel(c.LogLevel); ok {
		return level
	}
	return logger.LogInfo
}

// Compositor - the release's (or configured) preset with CompositeParams applied over it
func (c PipelineConfig) Compositor(release dataRelease.Release) (imageedit.Compositor, error) {
	return imageedit.PresetWithOverrides(c.PresetName(release), c.CompositeParams)
}

// PresetName - the configured compositor preset, or the release's default
func (c PipelineConfig) PresetName(release dataRelease.Release) string {
	if len(c.CompositePreset) > 0 {
		return c.CompositePreset
	}
	return release.CompositePreset
}

func (c PipelineConfig) FetchOptions(release dataRelease.Release) cutout.FetchOptions {
	layer := c.CutoutLayer
	if len(layer) <= 0 {
		layer = release.Layer
	}
	return cutout.FetchOptions{
		BaseURL: c.CutoutServiceURL,
		Layer:   layer,
		Scale: cutout.ScaleParams{
			Th50Factor:    c.Th50Factor,
			Th90Factor:    c.Th90Factor,
			MinPixelScale: c.MinPixelScale,
		},
		Size:        int(c.CutoutSize),
		MaxSize:     int(c.CutoutMaxSize),
		MaxAttempts: int(c.MaxAttempts),
		Timeout:     time.Duration(c.FetchTimeoutSec) * time.Second,
		RetryDelay:  time.Duration(c.RetryDelayMs) * time.Millisecond,
	}
}

func (c PipelineConfig) SelectionCuts() catalog.SelectionCuts {
	return catalog.SelectionCuts{
		MinSize:   c.MinGalaxySize,
		Sentinel:  c.SizeSentinel,
		Tolerance: c.SentinelTolerance,
	}
}

func (c PipelineConfig) CatalogLocation(path string) fileaccess.Location {
	return fileaccess.Location{Bucket: c.CatalogBucket, Path: path}
}

func (c PipelineConfig) ArtifactLocation(path string) fileaccess.Location {
	return fileaccess.Location{Bucket: c.ArtifactBucket, Path: path}
}
