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

package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/pkg/errors"
)

// Tables are stored as JSON (array of records) or CSV (header row of column names), picked by
// the file extension. Either can live anywhere a FileAccess can reach

type tableFormat int

const (
	formatJSON tableFormat = iota
	formatCSV
)

func formatFor(loc fileaccess.Location) (tableFormat, error) {
	switch strings.ToLower(path.Ext(loc.Path)) {
	case ".json":
		return formatJSON, nil
	case ".csv":
		return formatCSV, nil
	}
	return formatJSON, pipelineerror.Errorf(pipelineerror.KindConfiguration, "unsupported table format for %v, expected .json or .csv", loc)
}

func LoadGalaxies(fs fileaccess.FileAccess, loc fileaccess.Location) ([]Galaxy, error) {
	result := []Galaxy{}
	if err := loadTable(fs, loc, &result, galaxyColumns); err != nil {
		return nil, err
	}
	return result, nil
}

func SaveGalaxies(fs fileaccess.FileAccess, loc fileaccess.Location, galaxies []Galaxy) error {
	return saveTable(fs, loc, galaxies, galaxyColumns)
}

// LoadBricks - reads bricks and checks their edges are well ordered
func LoadBricks(fs fileaccess.FileAccess, loc fileaccess.Location) ([]Brick, error) {
	result := []Brick{}
	if err := loadTable(fs, loc, &result, brickColumns); err != nil {
		return nil, err
	}
	if err := ValidateAll(result); err != nil {
		return nil, errors.Wrapf(err, "bricks table %v", loc)
	}
	return result, nil
}

func SaveBricks(fs fileaccess.FileAccess, loc fileaccess.Location, bricks []Brick) error {
	return saveTable(fs, loc, bricks, brickColumns)
}

func loadTable[T any](fs fileaccess.FileAccess, loc fileaccess.Location, rows *[]T, columns []column[T]) error {
	format, err := formatFor(loc)
	if err != nil {
		return err
	}

	data, err := fs.ReadObject(loc.Bucket, loc.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to read table %v", loc)
	}

	if format == formatJSON {
		if err := json.Unmarshal(data, rows); err != nil {
			return pipelineerror.MakeError(pipelineerror.KindInvalidInput, errors.Wrapf(err, "failed to parse table %v", loc))
		}
		return nil
	}

	parsed, err := readCSV(data, columns)
	if err != nil {
		return pipelineerror.MakeError(pipelineerror.KindInvalidInput, errors.Wrapf(err, "failed to parse table %v", loc))
	}
	*rows = parsed
	return nil
}

func saveTable[T any](fs fileaccess.FileAccess, loc fileaccess.Location, rows []T, columns []column[T]) error {
	format, err := formatFor(loc)
	if err != nil {
		return err
	}

	if format == formatJSON {
		err = fs.WriteJSON(loc.Bucket, loc.Path, rows)
	} else {
		var data []byte
		data, err = writeCSV(rows, columns)
		if err == nil {
			err = fs.WriteObject(loc.Bucket, loc.Path, data)
		}
	}

	return errors.Wrapf(err, "failed to write table %v", loc)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// CSV columns

type column[T any] struct {
	name string
	get  func(*T) string
	set  func(*T, string) error
}

func readCSV[T any](data []byte, columns []column[T]) ([]T, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	result := []T{}
	if len(records) <= 0 {
		return result, nil
	}

	// Map header names to our columns. Unknown columns are ignored, missing ones left at zero value
	header := records[0]
	colForField := make([]*column[T], len(header))
	for c, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for i := range columns {
			if columns[i].name == name {
				colForField[c] = &columns[i]
				break
			}
		}
	}

	for lineNo, record := range records[1:] {
		var row T
		for c, value := range record {
			if colForField[c] == nil || len(value) <= 0 {
				continue
			}
			if err := colForField[c].set(&row, value); err != nil {
				return nil, errors.Wrapf(err, "line %v, column %v", lineNo+2, header[c])
			}
		}
		result = append(result, row)
	}

	return result, nil
}

func writeCSV[T any](rows []T, columns []column[T]) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)

	header := make([]string, len(columns))
	for c, col := range columns {
		header[c] = col.name
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(columns))
	for i := range rows {
		for c, col := range columns {
			record[c] = col.get(&rows[i])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return b.Bytes(), w.Error()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func floatColumn[T any](name string, field func(*T) *float64) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return fmtFloat(*field(r)) },
		set: func(r *T, v string) (err error) {
			*field(r), err = strconv.ParseFloat(v, 64)
			return err
		},
	}
}

func intColumn[T any](name string, field func(*T) *int) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.Itoa(*field(r)) },
		set: func(r *T, v string) (err error) {
			*field(r), err = strconv.Atoi(v)
			return err
		},
	}
}

func boolColumn[T any](name string, field func(*T) *bool) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.FormatBool(*field(r)) },
		set: func(r *T, v string) (err error) {
			*field(r), err = strconv.ParseBool(strings.ToLower(v))
			return err
		},
	}
}

func stringColumn[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set: func(r *T, v string) error {
			*field(r) = v
			return nil
		},
	}
}

var brickColumns = []column[Brick]{
	stringColumn("name", func(b *Brick) *string { return &b.Name }),
	floatColumn("ra", func(b *Brick) *float64 { return &b.RA }),
	floatColumn("dec", func(b *Brick) *float64 { return &b.Dec }),
	floatColumn("ra1", func(b *Brick) *float64 { return &b.RA1 }),
	floatColumn("ra2", func(b *Brick) *float64 { return &b.RA2 }),
	floatColumn("dec1", func(b *Brick) *float64 { return &b.Dec1 }),
	floatColumn("dec2", func(b *Brick) *float64 { return &b.Dec2 }),
	intColumn("nexp_g", func(b *Brick) *int { return &b.NExpG }),
	intColumn("nexp_r", func(b *Brick) *int { return &b.NExpR }),
	intColumn("nexp_z", func(b *Brick) *int { return &b.NExpZ }),
	boolColumn("has_image_g", func(b *Brick) *bool { return &b.HasImageG }),
	boolColumn("has_image_r", func(b *Brick) *bool { return &b.HasImageR }),
	boolColumn("has_image_z", func(b *Brick) *bool { return &b.HasImageZ }),
}

// galaxyColumns - the galaxy's own columns, then the joined brick flattened with a brick_ prefix,
// then the image status columns
var galaxyColumns = makeGalaxyColumns()

func makeGalaxyColumns() []column[Galaxy] {
	cols := []column[Galaxy]{
		stringColumn("name", func(g *Galaxy) *string { return &g.Name }),
		floatColumn("ra", func(g *Galaxy) *float64 { return &g.RA }),
		floatColumn("dec", func(g *Galaxy) *float64 { return &g.Dec }),
		floatColumn("petrotheta", func(g *Galaxy) *float64 { return &g.PetroTheta }),
		floatColumn("petroth50", func(g *Galaxy) *float64 { return &g.PetroTh50 }),
		floatColumn("petroth90", func(g *Galaxy) *float64 { return &g.PetroTh90 }),
		floatColumn("z", func(g *Galaxy) *float64 { return &g.Redshift }),
	}

	for _, bc := range brickColumns {
		bc := bc
		cols = append(cols, column[Galaxy]{
			name: "brick_" + bc.name,
			get: func(g *Galaxy) string {
				if g.Brick == nil {
					return ""
				}
				return bc.get(g.Brick)
			},
			set: func(g *Galaxy, v string) error {
				if g.Brick == nil {
					g.Brick = &Brick{}
				}
				return bc.set(g.Brick, v)
			},
		})
	}

	return append(cols,
		stringColumn("fits_loc", func(g *Galaxy) *string { return &g.FITSLocation }),
		stringColumn("png_loc", func(g *Galaxy) *string { return &g.PNGLocation }),
		boolColumn("fits_ready", func(g *Galaxy) *bool { return &g.FITSReady }),
		boolColumn("fits_filled", func(g *Galaxy) *bool { return &g.FITSPixelQualityOK }),
		boolColumn("png_ready", func(g *Galaxy) *bool { return &g.PNGReady }),
	)
}
