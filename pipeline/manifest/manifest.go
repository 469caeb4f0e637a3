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


package manifest

import (
	"context"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/downloader"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/subjectLedger"
	"github.com/galaxyzoo/decals-pipeline/core/timestamper"
	"github.com/pkg/errors"
)

// Entry - one subject as handed to the upload step
type Entry struct {
	Name        string  `json:"name"`
	RA          float64 `json:"ra"`
	Dec         float64 `json:"dec"`
	Redshift    float64 `json:"z"`
	PNGLocation string  `json:"png_loc"`
	BrickName   string  `json:"brick,omitempty"`
}

type Manifest struct {
	SubjectSet string  `json:"subjectSet"`
	CreatedAt  int64   `json:"createdAt"` // unix seconds
	Subjects   []Entry `json:"subjects"`
}

type PublishSummary struct {
	Ready     int // rendered image present and readable
	Excluded  int // claimed ready but the image didn't decode
	New       int // ready and never distributed before, ie: what went in the manifest
	Submitted bool
}

// ReadyEntries - galaxies whose rendered image is present and decodes. A galaxy marked PNGReady
// whose image can't be read now is left out and logged
func ReadyEntries(fs fileaccess.FileAccess, galaxies []catalog.Galaxy, paths downloader.PathAssigner, log logger.ILogger) ([]catalog.Galaxy, []Entry, int) {
	ready := []catalog.Galaxy{}
	entries := []Entry{}
	excluded := 0

	for _, g := range galaxies {
		if !g.PNGReady {
			continue
		}

		loc := paths(g.Name).PNG
		if !downloader.RenderedImageReadable(fs, loc) {
			log.Warnf("Excluding %v from manifest, %v is missing or unreadable", g.Name, loc)
			excluded++
			continue
		}

		entry := Entry{
			Name:        g.Name,
			RA:          g.RA,
			Dec:         g.Dec,
			Redshift:    g.Redshift,
			PNGLocation: loc.String(),
		}
		if g.Brick != nil {
			entry.BrickName = g.Brick.Name
		}

		ready = append(ready, g)
		entries = append(entries, entry)
	}

	return ready, entries, excluded
}

// Publish - writes a manifest of ready galaxies that haven't been distributed before, then records
// them in the ledger so the next run doesn't include them again. Nothing is recorded if the
// manifest couldn't be written
func Publish(
	ctx context.Context,
	fs fileaccess.FileAccess,
	ledger subjectLedger.Ledger,
	ts timestamper.ITimeStamper,
	galaxies []catalog.Galaxy,
	paths downloader.PathAssigner,
	dest fileaccess.Location,
	subjectSet string,
	log logger.ILogger,
) (PublishSummary, error) {
	ready, entries, excluded := ReadyEntries(fs, galaxies, paths, log)
	summary := PublishSummary{Ready: len(ready), Excluded: excluded}

	fresh, err := subjectLedger.FilterNew(ctx, ledger, ready)
	if err != nil {
		return summary, err
	}

	isFresh := map[string]bool{}
	for _, g := range fresh {
		isFresh[g.Name] = true
	}

	now := ts.GetTimeNowSec()
	m := Manifest{SubjectSet: subjectSet, CreatedAt: now, Subjects: []Entry{}}
	records := []subjectLedger.Record{}
	for _, e := range entries {
		if !isFresh[e.Name] {
			continue
		}
		m.Subjects = append(m.Subjects, e)
		records = append(records, subjectLedger.Record{Name: e.Name, RA: e.RA, Dec: e.Dec, SubjectSet: subjectSet, DistributedAt: now})
	}
	summary.New = len(m.Subjects)

	if err := fs.WriteJSON(dest.Bucket, dest.Path, m); err != nil {
		return summary, errors.Wrapf(err, "failed to write manifest %v", dest)
	}

	if err := ledger.RecordDistributed(ctx, records); err != nil {
		return summary, errors.Wrap(err, "manifest written but subjects not recorded as distributed")
	}
	summary.Submitted = true

	log.Infof("Manifest %v: %v ready, %v excluded as unreadable, %v new subjects for %v", dest, summary.Ready, summary.Excluded, summary.New, subjectSet)
	return summary, nil
}
