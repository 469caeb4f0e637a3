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
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/downloader"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imageedit"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/subjectLedger"
	"github.com/galaxyzoo/decals-pipeline/core/timestamper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, fs fileaccess.FileAccess, loc fileaccess.Location) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	data, err := imageedit.GetImageBytes(img, "png")
	require.NoError(t, err)
	require.NoError(t, fs.WriteObject(loc.Bucket, loc.Path, data))
}

type failingLedger struct {
	subjectLedger.MemoryLedger
}

func (l *failingLedger) RecordDistributed(ctx context.Context, records []subjectLedger.Record) error {
	return errors.New("ledger offline")
}

func setup(t *testing.T) (fileaccess.FileAccess, downloader.PathAssigner, []catalog.Galaxy) {
	dir := t.TempDir()
	fs := &fileaccess.FSAccess{}
	paths := downloader.CutoutPaths(fileaccess.Location{Bucket: dir, Path: "fits"}, fileaccess.Location{Bucket: dir, Path: "png"})

	brick := &catalog.Brick{Name: "1497p010"}
	galaxies := []catalog.Galaxy{
		{Name: "J095000.01+010000.1", RA: 149.5, Dec: 1.0, Redshift: 0.02, Brick: brick, PNGReady: true},
		{Name: "J095000.02+010000.2", RA: 149.6, Dec: 1.1, Redshift: 0.03, Brick: brick, PNGReady: true},
		{Name: "J095000.03+010000.3", RA: 149.7, Dec: 1.2, PNGReady: false},
		{Name: "J095000.04+010000.4", RA: 149.8, Dec: 1.3, Redshift: 0.05, PNGReady: true},
	}

	writeTestPNG(t, fs, paths(galaxies[0].Name).PNG)
	// Claims to be ready, but the file is junk
	junk := paths(galaxies[1].Name).PNG
	require.NoError(t, fs.WriteObject(junk.Bucket, junk.Path, []byte("not a png")))
	writeTestPNG(t, fs, paths(galaxies[3].Name).PNG)

	return fs, paths, galaxies
}

func TestReadyEntriesExcludesUnreadable(t *testing.T) {
	fs, paths, galaxies := setup(t)
	log := &logger.StdOutLoggerForTest{}

	ready, entries, excluded := ReadyEntries(fs, galaxies, paths, log)

	assert.Len(t, ready, 2)
	assert.Equal(t, 1, excluded)
	require.Len(t, entries, 2)
	assert.Equal(t, "J095000.01+010000.1", entries[0].Name)
	assert.Equal(t, "1497p010", entries[0].BrickName)
	assert.Equal(t, paths(galaxies[0].Name).PNG.String(), entries[0].PNGLocation)
	assert.Equal(t, "", entries[1].BrickName)
	assert.True(t, log.LogContains("Excluding J095000.02+010000.2 from manifest"))
}

func TestPublishOnlyNewSubjects(t *testing.T) {
	fs, paths, galaxies := setup(t)
	ledger := subjectLedger.NewMemoryLedger(subjectLedger.Record{Name: "J095000.04+010000.4", SubjectSet: "decals-old", DistributedAt: 100})
	ts := &timestamper.MockTimeNowStamper{QueuedTimeStamps: []int64{1700000000}}
	dest := fileaccess.Location{Bucket: t.TempDir(), Path: "manifests/dr5.json"}

	summary, err := Publish(context.Background(), fs, ledger, ts, galaxies, paths, dest, "decals-dr5", &logger.NullLogger{})
	require.NoError(t, err)
	assert.Equal(t, PublishSummary{Ready: 2, Excluded: 1, New: 1, Submitted: true}, summary)

	var m Manifest
	require.NoError(t, fs.ReadJSON(dest.Bucket, dest.Path, &m, false))
	assert.Equal(t, "decals-dr5", m.SubjectSet)
	assert.Equal(t, int64(1700000000), m.CreatedAt)
	require.Len(t, m.Subjects, 1)
	assert.Equal(t, "J095000.01+010000.1", m.Subjects[0].Name)
	assert.Equal(t, 0.02, m.Subjects[0].Redshift)

	records := ledger.Records()
	require.Len(t, records, 2)
	assert.Equal(t, subjectLedger.Record{Name: "J095000.01+010000.1", RA: 149.5, Dec: 1.0, SubjectSet: "decals-dr5", DistributedAt: 1700000000}, records[0])

	// Running again finds nothing new, and still writes an (empty) manifest
	summary, err = Publish(context.Background(), fs, ledger, ts, galaxies, paths, dest, "decals-dr5", &logger.NullLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.New)
	require.NoError(t, fs.ReadJSON(dest.Bucket, dest.Path, &m, false))
	assert.Empty(t, m.Subjects)
}

func TestPublishLedgerFailure(t *testing.T) {
	fs, paths, galaxies := setup(t)
	ledger := &failingLedger{}
	dest := fileaccess.Location{Bucket: t.TempDir(), Path: "m.json"}

	summary, err := Publish(context.Background(), fs, ledger, &timestamper.MockTimeNowStamper{}, galaxies, paths, dest, "decals-dr5", &logger.NullLogger{})
	assert.EqualError(t, err, "manifest written but subjects not recorded as distributed: ledger offline")
	assert.False(t, summary.Submitted)
	assert.Equal(t, 2, summary.New)
}
