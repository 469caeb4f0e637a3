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

// Lowest-level code to connect to Mongo DB (locally in Docker and remotely) where the subject ledger lives.
package mongoDBConnection

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConnectionConfig - how to reach the DB. If SecretName is blank we connect to LocalURI with no auth
type ConnectionConfig struct {
	SecretName string `json:"secretName"`
	LocalURI   string `json:"localUri"`
	CAFile     string `json:"caFile"`
}

func Connect(
	ctx context.Context,
	sess *session.Session, // Can be nil for local connection
	cfg ConnectionConfig,
	iLog logger.ILogger,
) (*mongo.Client, error) {
	// If the secret is blank, assume we're connecting to a local DB with no auth
	if len(cfg.SecretName) <= 0 {
		return connectToLocalMongoDB(ctx, cfg.LocalURI, iLog)
	}

	// We're connecting to a remote one, first get the details from secret cache
	mongoConnectionInfo, err := getMongoConnectionInfoFromSecretCache(sess, cfg.SecretName)
	if err != nil {
		return nil, fmt.Errorf("Failed to read mongo secret \"%v\" info from secrets cache: %v", cfg.SecretName, err)
	}

	return connectToRemoteMongoDB(
		ctx,
		mongoConnectionInfo.Host,
		mongoConnectionInfo.Username,
		mongoConnectionInfo.Password,
		cfg.CAFile,
		iLog,
	)
}

func GetDatabaseName(dbName string, envName string) string {
	if len(envName) <= 0 {
		return dbName
	}
	return dbName + "-" + envName
}

func ping(ctx context.Context, client *mongo.Client) error {
	var result bson.M
	return client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Decode(&result)
}
