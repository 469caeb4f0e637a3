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

package subjectLedger

import (
	"context"

	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SubjectsCollectionName = "distributedSubjects"

// Keeps $in filters and bulk writes to a sensible size
const mongoBatchSize = 1000

type MongoLedger struct {
	coll *mongo.Collection
	log  logger.ILogger
}

func NewMongoLedger(db *mongo.Database, log logger.ILogger) *MongoLedger {
	return &MongoLedger{coll: db.Collection(SubjectsCollectionName), log: log}
}

func (l *MongoLedger) PreviouslyDistributed(ctx context.Context, names []string) (map[string]bool, error) {
	result := map[string]bool{}

	for start := 0; start < len(names); start += mongoBatchSize {
		end := min(start+mongoBatchSize, len(names))

		filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: names[start:end]}}}}
		opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: true}})

		cursor, err := l.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}

		found := []Record{}
		if err := cursor.All(ctx, &found); err != nil {
			return nil, err
		}

		for _, r := range found {
			result[r.Name] = true
		}
	}

	l.log.Debugf("Subject ledger: %v of %v names previously distributed", len(result), len(names))
	return result, nil
}

func (l *MongoLedger) RecordDistributed(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += mongoBatchSize {
		end := min(start+mongoBatchSize, len(records))

		models := make([]mongo.WriteModel, 0, end-start)
		for _, r := range records[start:end] {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.D{{Key: "_id", Value: r.Name}}).
				SetReplacement(r).
				SetUpsert(true))
		}

		if _, err := l.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return err
		}
	}

	l.log.Infof("Subject ledger: recorded %v subjects", len(records))
	return nil
}
