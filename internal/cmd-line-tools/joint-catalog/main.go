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

	"github.com/galaxyzoo/decals-pipeline/core/brickmatch"
	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/pipeline/config"
	"github.com/galaxyzoo/decals-pipeline/pipeline/services"
)

// Matches every galaxy in the catalog to the imaging brick it falls in, keeping only bricks with
// data in every band for the configured release, and saves the joined catalog

var t0 = time.Now().UnixMilli()

func main() {
	fmt.Printf("Started: %v\n", time.Now().String())

	cfg, err := config.Init()
	if err != nil {
		log.Fatalf("Something went wrong with pipeline config. Error: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svcs, err := services.InitPipelineServices(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise services. Error: %v\n", err)
	}

	err = run(svcs)
	svcs.Close(context.Background())
	if err != nil {
		fatalError(svcs, err)
	}

	printFinishStats()
}

func run(svcs *services.PipelineServices) error {
	cfg := svcs.Config

	checkNotEmpty := map[string]string{
		"GalaxyCatalogPath": cfg.GalaxyCatalogPath,
		"BrickCatalogPath":  cfg.BrickCatalogPath,
		"JointCatalogPath":  cfg.JointCatalogPath,
	}
	for name, val := range checkNotEmpty {
		if len(val) <= 0 {
			return pipelineerror.Errorf(pipelineerror.KindConfiguration, "%v was empty", name)
		}
	}

	release, err := cfg.Release()
	if err != nil {
		return err
	}

	galaxies, err := catalog.LoadGalaxies(svcs.FS, cfg.CatalogLocation(cfg.GalaxyCatalogPath))
	if err != nil {
		return err
	}

	bricks, err := catalog.LoadBricks(svcs.FS, cfg.CatalogLocation(cfg.BrickCatalogPath))
	if err != nil {
		return err
	}

	selected := brickmatch.SelectBricksForRelease(bricks, release)
	svcs.Log.Infof("%v of %v bricks have data in g, r and z for DR%v", len(selected), len(bricks), release.ID)

	joint, _, err := brickmatch.CreateJointCatalog(galaxies, selected, svcs.Log)
	if err != nil {
		return err
	}

	dest := cfg.CatalogLocation(cfg.JointCatalogPath)
	if err := catalog.SaveGalaxies(svcs.FS, dest, joint); err != nil {
		return err
	}

	svcs.Log.Infof("Saved %v joined galaxies to %v", len(joint), dest)
	return nil
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
