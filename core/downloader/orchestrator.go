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

// Runs the per-galaxy fetch, render and verify work for a whole catalog on a fixed-size worker pool.
package downloader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"golang.org/x/sync/errgroup"
)

// ObjectPaths - where one galaxy's artifacts go
type ObjectPaths struct {
	FITS fileaccess.Location
	PNG  fileaccess.Location
}

// PathAssigner - must be deterministic, and give different paths to different names
type PathAssigner func(name string) ObjectPaths

// ObjectStatus - the status columns written back per galaxy
type ObjectStatus struct {
	FITSReady          bool
	FITSPixelQualityOK bool
	PNGReady           bool
}

// Stages - the per-galaxy work. Fetch and Render errors are recorded against the galaxy and never
// stop the batch
type Stages struct {
	Fetch  func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) error
	Render func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) error
	Verify func(ctx context.Context, g catalog.Galaxy, paths ObjectPaths) ObjectStatus
}

type Options struct {
	Workers       int
	Paths         PathAssigner
	ProgressEvery int // log a progress line every this many galaxies, 0 for never
}

// Summary - counts from a run, for logging and tests
type Summary struct {
	Total          int
	FetchFailed    int
	RenderFailed   int
	FITSReady      int
	PixelQualityOK int
	PNGReady       int
}

// ProcessCatalog - assigns every galaxy its paths, then fetches and renders them all, then once all
// that is done, verifies every galaxy and writes its status columns. Returns a new slice, in input
// order. Only a precondition failure (duplicate paths) or cancellation returns an error
func ProcessCatalog(ctx context.Context, galaxies []catalog.Galaxy, stages Stages, opts Options, log logger.ILogger) ([]catalog.Galaxy, Summary, error) {
	summary := Summary{Total: len(galaxies)}

	paths, err := assignPaths(galaxies, opts.Paths)
	if err != nil {
		return nil, summary, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	// Each worker only ever touches its own index in these
	fetchErrs := make([]error, len(galaxies))
	renderErrs := make([]error, len(galaxies))
	statuses := make([]ObjectStatus, len(galaxies))

	log.Infof("Fetching and rendering %v galaxies with %v workers", len(galaxies), workers)
	progress := newProgress("fetch+render", len(galaxies), opts.ProgressEvery, log)

	err = runPool(ctx, len(galaxies), workers, func(ctx context.Context, i int) {
		start := time.Now()
		fetchErrs[i] = stages.Fetch(ctx, galaxies[i], paths[i])
		objectsProcessed.WithLabelValues("fetch", outcome(fetchErrs[i])).Inc()

		renderErrs[i] = stages.Render(ctx, galaxies[i], paths[i])
		objectsProcessed.WithLabelValues("render", outcome(renderErrs[i])).Inc()

		phaseDuration.WithLabelValues("fetch+render").Observe(time.Since(start).Seconds())
		progress.done()
	})
	if err != nil {
		log.Errorf("Stopped fetching after %v of %v galaxies: %v", progress.count(), len(galaxies), err)
		return nil, summary, err
	}

	log.Infof("Verifying %v galaxies", len(galaxies))
	progress = newProgress("verify", len(galaxies), opts.ProgressEvery, log)

	err = runPool(ctx, len(galaxies), workers, func(ctx context.Context, i int) {
		start := time.Now()
		statuses[i] = stages.Verify(ctx, galaxies[i], paths[i])
		phaseDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
		progress.done()
	})
	if err != nil {
		log.Errorf("Stopped verifying after %v of %v galaxies: %v", progress.count(), len(galaxies), err)
		return nil, summary, err
	}

	result := make([]catalog.Galaxy, len(galaxies))
	for i, g := range galaxies {
		s := statuses[i]
		g.FITSLocation = paths[i].FITS.String()
		g.PNGLocation = paths[i].PNG.String()
		g.FITSReady = s.FITSReady
		g.FITSPixelQualityOK = s.FITSReady && s.FITSPixelQualityOK
		g.PNGReady = s.PNGReady
		result[i] = g

		if fetchErrs[i] != nil {
			summary.FetchFailed++
		}
		if renderErrs[i] != nil {
			summary.RenderFailed++
			log.Debugf("Render failed for %v: %v", g.Name, renderErrs[i])
		}
		if g.FITSReady {
			summary.FITSReady++
		}
		if g.FITSPixelQualityOK {
			summary.PixelQualityOK++
		}
		if g.PNGReady {
			summary.PNGReady++
		}
	}

	objectsProcessed.WithLabelValues("verify", "fits_ready").Add(float64(summary.FITSReady))
	objectsProcessed.WithLabelValues("verify", "pixel_quality_ok").Add(float64(summary.PixelQualityOK))
	objectsProcessed.WithLabelValues("verify", "png_ready").Add(float64(summary.PNGReady))

	log.Infof("Processed %v galaxies: %v fetch failures, %v render failures, %v FITS ready, %v pixel quality ok, %v PNG ready",
		summary.Total, summary.FetchFailed, summary.RenderFailed, summary.FITSReady, summary.PixelQualityOK, summary.PNGReady)

	return result, summary, nil
}

func assignPaths(galaxies []catalog.Galaxy, assign PathAssigner) ([]ObjectPaths, error) {
	if assign == nil {
		return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "no path assigner configured")
	}

	paths := make([]ObjectPaths, len(galaxies))
	all := make([]string, 0, len(galaxies)*2)
	for i, g := range galaxies {
		paths[i] = assign(g.Name)
		all = append(all, paths[i].FITS.String(), paths[i].PNG.String())
	}

	if dups := utils.FindDuplicates(all); len(dups) > 0 {
		return nil, pipelineerror.Errorf(pipelineerror.KindDuplicatePath, "%v galaxies share output paths, eg: %v", len(dups), dups[0])
	}
	return paths, nil
}

// runPool - calls work(i) for every index on at most workers goroutines. Stops handing out new
// indexes once ctx is cancelled, waits for those already running, and returns the ctx error
func runPool(ctx context.Context, n int, workers int, work func(context.Context, int)) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i := 0; i < n; i++ {
		if groupCtx.Err() != nil {
			break
		}

		i := i
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			work(groupCtx, i)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

type progress struct {
	phase    string
	total    int
	every    int
	finished atomic.Int64
	log      logger.ILogger
}

func newProgress(phase string, total int, every int, log logger.ILogger) *progress {
	return &progress{phase: phase, total: total, every: every, log: log}
}

func (p *progress) done() {
	n := p.finished.Add(1)
	if p.every > 0 && n%int64(p.every) == 0 {
		p.log.Infof("  %v: %v/%v", p.phase, n, p.total)
	}
}

func (p *progress) count() int64 {
	return p.finished.Load()
}
