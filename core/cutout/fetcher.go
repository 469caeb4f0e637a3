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

package cutout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/catalog"
	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
	"github.com/galaxyzoo/decals-pipeline/core/imgFormat"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/pipelineerror"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/pkg/errors"
)

type FetchOptions struct {
	BaseURL string      `json:"baseUrl"`
	Layer   string      `json:"layer"`
	Scale   ScaleParams `json:"scale"`

	Size    int `json:"size"`    // requested edge length, pixels
	MaxSize int `json:"maxSize"` // pixel budget, never requested above this

	MaxAttempts int           `json:"maxAttempts"`
	Timeout     time.Duration `json:"timeout"`    // per attempt
	RetryDelay  time.Duration `json:"retryDelay"` // fixed pause between attempts
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		BaseURL:     "https://www.legacysurvey.org/viewer",
		Layer:       "decals-dr5",
		Scale:       DefaultScaleParams(),
		Size:        424,
		MaxSize:     512,
		MaxAttempts: 5,
		Timeout:     45 * time.Second,
	}
}

// FetchResult - what happened for one galaxy. Err is set (as a TRANSIENT_FETCH error) only when
// every attempt failed
type FetchResult struct {
	Skipped  bool
	Success  bool
	Attempts int
	Err      error
}

// Fetcher - downloads cutouts for one release. Safe to share between workers
type Fetcher struct {
	opts    FetchOptions
	fs      fileaccess.FileAccess
	log     logger.ILogger
	client  *http.Client
	limiter *utils.RateLimiter
	sleep   func(context.Context, time.Duration)
}

// NewFetcher - client may be nil to use http.DefaultClient, limiter may be nil for no limit
func NewFetcher(opts FetchOptions, fs fileaccess.FileAccess, log logger.ILogger, client *http.Client, limiter *utils.RateLimiter) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Fetcher{
		opts:    opts,
		fs:      fs,
		log:     log,
		client:  client,
		limiter: limiter,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (f *Fetcher) Options() FetchOptions {
	return f.opts
}

// RequestFor - the clamped request we'd make for a galaxy
func (f *Fetcher) RequestFor(g catalog.Galaxy) Request {
	return Request{
		RA:       g.RA,
		Dec:      g.Dec,
		PixScale: PixelScale(g.PetroTh50, g.PetroTh90, f.opts.Scale),
		Size:     f.opts.Size,
		Layer:    f.opts.Layer,
	}.ClampToBudget(f.opts.MaxSize)
}

// Fetch - downloads the FITS cutout for a galaxy to dest, unless it's already known good and we're
// not overwriting. Never returns an error to abort a batch, failures are in the result
func (f *Fetcher) Fetch(ctx context.Context, g catalog.Galaxy, dest fileaccess.Location, alreadyGood bool, overwrite bool) FetchResult {
	if alreadyGood && !overwrite {
		return FetchResult{Skipped: true, Success: true}
	}

	url := f.RequestFor(g).URL(f.opts.BaseURL, ArtifactFITS)
	return f.fetchWithRetry(ctx, g.Name, url, dest, checkFITS)
}

// FetchPreview - downloads the service's own JPEG rendering of the galaxy
func (f *Fetcher) FetchPreview(ctx context.Context, g catalog.Galaxy, dest fileaccess.Location, overwrite bool) FetchResult {
	if !overwrite {
		if exists, err := f.fs.ObjectExists(dest.Bucket, dest.Path); err == nil && exists {
			return FetchResult{Skipped: true, Success: true}
		}
	}

	url := f.RequestFor(g).URL(f.opts.BaseURL, ArtifactJPEG)
	return f.fetchWithRetry(ctx, g.Name, url, dest, checkImage)
}

func checkFITS(body []byte) error {
	_, err := imgFormat.ReadFITSCube(body)
	return err
}

func checkImage(body []byte) error {
	_, _, err := utils.DecodeImageBytes(body)
	return err
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, name string, url string, dest fileaccess.Location, check func([]byte) error) FetchResult {
	result := FetchResult{}
	var lastErr error

	for result.Attempts < f.opts.MaxAttempts {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		if result.Attempts > 0 {
			f.sleep(ctx, f.opts.RetryDelay)
		}
		result.Attempts++

		lastErr = f.attempt(ctx, url, dest, check)
		if lastErr == nil {
			result.Success = true
			f.log.Debugf("Downloaded %v to %v (attempt %v)", name, dest, result.Attempts)
			return result
		}

		f.log.Debugf("Attempt %v/%v for %v failed: %v", result.Attempts, f.opts.MaxAttempts, name, lastErr)
	}

	result.Err = pipelineerror.MakeError(pipelineerror.KindTransientFetch, errors.Wrapf(lastErr, "giving up on %v after %v attempts", name, result.Attempts))
	f.log.Warnf("%v", result.Err)
	return result
}

func (f *Fetcher) attempt(ctx context.Context, url string, dest fileaccess.Location, check func([]byte) error) error {
	if f.limiter != nil {
		f.limiter.CheckRateLimit()
	}

	attemptCtx := ctx
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cutout service returned status %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := check(body); err != nil {
		return errors.Wrap(err, "downloaded file failed verification")
	}

	return f.fs.WriteObject(dest.Bucket, dest.Path, body)
}
