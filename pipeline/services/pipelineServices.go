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


package services

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/galaxyzoo/decals-pipeline/core/awsutil"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/mongoDBConnection"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/subjectLedger"
	"github.com/galaxyzoo/decals-pipeline/core/timestamper"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/galaxyzoo/decals-pipeline/pipeline/config"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// NOTE: set at build time, eg: -ldflags "-X .../pipeline/services.PipelineVersion=1.2.0"
var PipelineVersion string

// Instead of using a bunch of global variables we pass around this services object so the
// pipeline steps have access to a logger, storage etc, and tests can substitute their own

// PipelineServices contains what the pipeline tools need: config, logging, storage, the ledger
type PipelineServices struct {
	// Configuration read in on startup
	Config config.PipelineConfig

	Log logger.ILogger

	// Anything reading or writing tables and artifacts should use this
	FS fileaccess.FileAccess

	// Which subjects have already been sent for classification
	Ledger subjectLedger.Ledger

	// Timestamp retriever - so can be mocked for unit tests
	TimeStamper timestamper.ITimeStamper

	// Only set if the ledger lives in mongo
	Mongo *mongo.Client

	sentryEnabled bool
}

// InitPipelineServices sets up a new PipelineServices instance. Nothing is left half-connected on error
func InitPipelineServices(ctx context.Context, cfg config.PipelineConfig) (*PipelineServices, error) {
	iLog := logger.NewStdOutLogger(cfg.ParsedLogLevel())

	sentryEnabled := false
	if len(cfg.SentryEndpoint) > 0 {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryEndpoint,
			Environment: cfg.EnvironmentName,
			Release:     PipelineVersion,
		}); err != nil {
			iLog.Errorf("Sentry initialization failed: %v", err)
		} else {
			sentryEnabled = true
		}
	}

	// Only needed for S3 storage or for reading the mongo secret
	var sess *session.Session
	if cfg.StorageBackend == "s3" || len(cfg.MongoSecret) > 0 {
		var err error
		sess, err = awsutil.GetSessionWithRegion(cfg.AWSRegion)
		if err != nil {
			return nil, pipelineerror.MakeConfigurationError(errors.Wrap(err, "failed to create AWS session"))
		}
	}

	fs, err := makeFileAccess(cfg, sess)
	if err != nil {
		return nil, err
	}

	svcs := &PipelineServices{
		Config:        cfg,
		Log:           iLog,
		FS:            fs,
		TimeStamper:   &timestamper.UnixTimeNowStamper{},
		sentryEnabled: sentryEnabled,
	}

	if len(cfg.MongoSecret) <= 0 && len(cfg.MongoLocalURI) <= 0 {
		iLog.Infof("No mongo connection configured, subject ledger is in memory only")
		svcs.Ledger = subjectLedger.NewMemoryLedger()
		return svcs, nil
	}

	mongoClient, err := mongoDBConnection.Connect(ctx, sess, mongoDBConnection.ConnectionConfig{
		SecretName: cfg.MongoSecret,
		LocalURI:   cfg.MongoLocalURI,
		CAFile:     cfg.MongoCAFile,
	}, iLog)
	if err != nil {
		return nil, pipelineerror.MakeConfigurationError(errors.Wrap(err, "failed to connect to mongo"))
	}

	dbName := mongoDBConnection.GetDatabaseName(cfg.MongoDatabase, cfg.EnvironmentName)
	svcs.Mongo = mongoClient
	svcs.Ledger = subjectLedger.NewMongoLedger(mongoClient.Database(dbName), iLog)
	return svcs, nil
}

func makeFileAccess(cfg config.PipelineConfig, sess *session.Session) (fileaccess.FileAccess, error) {
	switch cfg.StorageBackend {
	case "local":
		return &fileaccess.FSAccess{}, nil
	case "s3":
		s3svc, err := awsutil.GetS3(sess, cfg.S3Endpoint)
		if err != nil {
			return nil, pipelineerror.MakeConfigurationError(errors.Wrap(err, "failed to create AWS S3 service"))
		}
		return fileaccess.MakeS3Access(s3svc), nil
	case "minio":
		m, err := fileaccess.MakeMinioAccess(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioSecure)
		if err != nil {
			return nil, pipelineerror.MakeConfigurationError(errors.Wrapf(err, "failed to create MinIO client for %v", cfg.MinioEndpoint))
		}
		return m, nil
	}
	return nil, pipelineerror.Errorf(pipelineerror.KindConfiguration, "unknown StorageBackend: \"%v\", expected local, s3 or minio", cfg.StorageBackend)
}

// RateLimiter - nil if no request rate limit is configured
func (s *PipelineServices) RateLimiter() *utils.RateLimiter {
	if s.Config.RequestsPerMinute <= 0 {
		return nil
	}
	return utils.MakeRateLimiter(s.TimeStamper, int(s.Config.RequestsPerMinute), 60, time.Second)
}

// ReportFatal - logs an error that's about to stop the tool, and sends it to sentry if configured
func (s *PipelineServices) ReportFatal(err error) {
	s.Log.Errorf("%v", err)
	if s.sentryEnabled {
		sentry.CaptureException(err)
		sentry.Flush(5 * time.Second)
	}
}

func (s *PipelineServices) Close(ctx context.Context) {
	if s.Mongo != nil {
		if err := s.Mongo.Disconnect(ctx); err != nil {
			s.Log.Errorf("Failed to disconnect from mongo: %v", err)
		}
	}
	if s.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
