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

// Record of which galaxies have already been sent to the volunteer classification site, so reruns
// only upload new subjects.
package subjectLedger

import (
	"context"
	"sort"
	"sync"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/pkg/errors"
)

// Record - one distributed subject
type Record struct {
	Name          string  `json:"name" bson:"_id"`
	RA            float64 `json:"ra" bson:"ra"`
	Dec           float64 `json:"dec" bson:"dec"`
	SubjectSet    string  `json:"subjectSet" bson:"subjectSet"`
	DistributedAt int64   `json:"distributedAt" bson:"distributedAt"` // unix seconds
}

type Ledger interface {
	// PreviouslyDistributed - which of names have a record. Names without one aren't in the map
	PreviouslyDistributed(ctx context.Context, names []string) (map[string]bool, error)
	// RecordDistributed - adds or replaces records, keyed by name
	RecordDistributed(ctx context.Context, records []Record) error
}

// FilterNew - the galaxies that have never been distributed, in input order
func FilterNew(ctx context.Context, ledger Ledger, galaxies []catalog.Galaxy) ([]catalog.Galaxy, error) {
	names := make([]string, len(galaxies))
	for c, g := range galaxies {
		names[c] = g.Name
	}

	seen, err := ledger.PreviouslyDistributed(ctx, names)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query subject ledger")
	}

	result := []catalog.Galaxy{}
	for _, g := range galaxies {
		if !seen[g.Name] {
			result = append(result, g)
		}
	}
	return result, nil
}

// MemoryLedger - in-process ledger, for tests and dry runs
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryLedger(existing ...Record) *MemoryLedger {
	l := &MemoryLedger{records: map[string]Record{}}
	for _, r := range existing {
		l.records[r.Name] = r
	}
	return l
}

func (l *MemoryLedger) PreviouslyDistributed(ctx context.Context, names []string) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := map[string]bool{}
	for _, name := range names {
		if _, ok := l.records[name]; ok {
			result[name] = true
		}
	}
	return result, nil
}

func (l *MemoryLedger) RecordDistributed(ctx context.Context, records []Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range records {
		l.records[r.Name] = r
	}
	return nil
}

// Records - everything recorded, sorted by name
func (l *MemoryLedger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
