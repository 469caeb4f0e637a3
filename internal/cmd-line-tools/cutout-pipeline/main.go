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
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/cutout"
	"github.com/galaxyzoo/decals-pipeline/core/downloader"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imageedit"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/pipeline/config"
	"github.com/galaxyzoo/decals-pipeline/pipeline/manifest"
	"github.com/galaxyzoo/decals-pipeline/pipeline/services"
)

// Takes the joined catalog, downloads a FITS cutout of every galaxy that passes the selection
// cuts, renders each as a colour image, records which are usable and optionally writes a manifest
// of newly usable subjects

var t0 = time.Now().UnixMilli()

func main() {
	fmt.Printf("Started: %v\n", time.Now().String())

	cfg, err := config.Init()
	if err != nil {
		log.Fatalf("Something went wrong with pipeline config. Error: %v\n", err)
	}

	// First signal cancels the run, workers finish what they're doing and nothing half-written is kept
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svcs, err := services.InitPipelineServices(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise services. Error: %v\n", err)
	}

	status := &runStatus{}
	if cfg.MetricsPort > 0 {
		go serveStatus(cfg.MetricsPort, status, svcs.Log)
	}

	err = run(ctx, svcs, status)
	status.finish(err)
	svcs.Close(context.Background())
	if err != nil {
		fatalError(svcs, err)
	}

	printFinishStats()
}

type fetchStage func(context.Context, catalog.Galaxy, downloader.ObjectPaths) error

func run(ctx context.Context, svcs *services.PipelineServices, status *runStatus) error {
	cfg := svcs.Config

	if len(cfg.JointCatalogPath) <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "JointCatalogPath was empty")
	}
	if len(cfg.OutputCatalogPath) <= 0 {
		return pipelineerror.Errorf(pipelineerror.KindConfiguration, "OutputCatalogPath was empty")
	}

	release, err := cfg.Release()
	if err != nil {
		return err
	}

	comp, err := cfg.Compositor(release)
	if err != nil {
		return err
	}

	status.setPhase("loading")
	galaxies, err := catalog.LoadGalaxies(svcs.FS, cfg.CatalogLocation(cfg.JointCatalogPath))
	if err != nil {
		return err
	}

	if !cfg.SkipSelectionCuts {
		before := len(galaxies)
		galaxies = catalog.ApplySelectionCuts(galaxies, cfg.SelectionCuts())
		svcs.Log.Infof("Selection cuts kept %v of %v galaxies", len(galaxies), before)
	}
	status.setGalaxies(len(galaxies))

	fetcher := cutout.NewFetcher(cfg.FetchOptions(release), svcs.FS, svcs.Log, nil, svcs.RateLimiter())
	stages := downloader.StandardStages(fetcher, svcs.FS, comp, downloader.StageOptions{
		OverwriteFITS: cfg.OverwriteFITS,
		BadPixelLimit: cfg.BadPixelLimit,
		Render: imageedit.RenderOptions{
			Format:      cfg.OutputImageFormat,
			OutputWidth: int(cfg.OutputImageWidth),
			Overwrite:   cfg.OverwritePNG,
		},
	})

	if len(cfg.PreviewRoot) > 0 {
		stages.Fetch = withPreview(stages.Fetch, fetcher, cfg.ArtifactLocation(cfg.PreviewRoot), cfg.OverwriteFITS)
	}

	paths := downloader.CutoutPaths(cfg.ArtifactLocation(cfg.FITSRoot), cfg.ArtifactLocation(cfg.PNGRoot))

	status.setPhase("processing")
	processed, summary, err := downloader.ProcessCatalog(ctx, galaxies, stages, downloader.Options{
		Workers:       int(cfg.Workers),
		Paths:         paths,
		ProgressEvery: int(cfg.ProgressEvery),
	}, svcs.Log)
	if err != nil {
		return err
	}
	status.setSummary(summary)

	dest := cfg.CatalogLocation(cfg.OutputCatalogPath)
	if err := catalog.SaveGalaxies(svcs.FS, dest, processed); err != nil {
		return err
	}
	svcs.Log.Infof("Saved %v galaxies with image status to %v", len(processed), dest)

	if len(cfg.ManifestPath) <= 0 {
		return nil
	}

	status.setPhase("manifest")
	_, err = manifest.Publish(
		ctx,
		svcs.FS,
		svcs.Ledger,
		svcs.TimeStamper,
		processed,
		paths,
		cfg.ArtifactLocation(cfg.ManifestPath),
		cfg.SubjectSetName,
		svcs.Log,
	)
	return err
}

// withPreview - after a successful FITS fetch, also saves the service's own JPEG rendering. A
// missing preview doesn't count against the galaxy, the fetcher already logs why it failed
func withPreview(fetch fetchStage, fetcher *cutout.Fetcher, root fileaccess.Location, overwrite bool) fetchStage {
	return func(ctx context.Context, g catalog.Galaxy, paths downloader.ObjectPaths) error {
		if err := fetch(ctx, g, paths); err != nil {
			return err
		}
		fetcher.FetchPreview(ctx, g, cutout.ArtifactLocation(root, g.Name, ".jpeg"), overwrite)
		return nil
	}
}

func fatalError(svcs *services.PipelineServices, err error) {
	svcs.ReportFatal(err)
	printFinishStats()
	os.Exit(1)
}

func printFinishStats() {
	t1 := time.Now().UnixMilli()
	sec := (t1 - t0) / 1000
	fmt.Printf("Runtime %v seconds\n", sec)
}
