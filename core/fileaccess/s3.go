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

package fileaccess

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// S3Access - catalogs and cutouts kept in AWS S3. Uploads are tagged with a content type derived
// from the artifact extension so cutouts can be viewed straight from the console
type S3Access struct {
	s3Api s3iface.S3API
}

func MakeS3Access(s3Api s3iface.S3API) S3Access {
	return S3Access{s3Api: s3Api}
}

// S3Url - inverse of ParseS3Url
func S3Url(loc Location) string {
	return "s3://" + loc.Bucket + "/" + loc.Path
}

// ParseS3Url - splits s3://bucket/some/path into bucket and path
func ParseS3Url(url string) (Location, error) {
	trimmed := strings.TrimPrefix(url, "s3://")
	if trimmed == url {
		return Location{}, fmt.Errorf("ParseS3Url parameter was not a valid S3 url: %v", url)
	}

	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || len(bucket) <= 0 {
		return Location{}, fmt.Errorf("ParseS3Url failed to get bucket from S3 url: %v", url)
	}
	return Location{Bucket: bucket, Path: key}, nil
}

var artifactContentTypes = map[string]string{
	".fits": "application/fits",
	".fit":  "application/fits",
	".png":  "image/png",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".json": "application/json",
	".csv":  "text/csv",
}

func contentTypeFor(key string) string {
	if ct, ok := artifactContentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ListObjects - every key under prefix, across as many pages as S3 returns. Directory placeholder
// keys (ending in /) made by the web console are left out
func (s3Access S3Access) ListObjects(bucket string, prefix string) ([]string, error) {
	result := []string{}

	err := s3Access.s3Api.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{Bucket: aws.String(bucket), Prefix: aws.String(prefix)},
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, item := range page.Contents {
				if item.Key != nil && !strings.HasSuffix(*item.Key, "/") {
					result = append(result, *item.Key)
				}
			}
			return true
		},
	)
	if err != nil {
		return []string{}, errors.Wrapf(err, "failed to list %v", S3Url(Location{Bucket: bucket, Path: prefix}))
	}
	return result, nil
}

func (s3Access S3Access) ObjectExists(bucket string, key string) (bool, error) {
	_, err := s3Access.s3Api.HeadObject(&s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if s3Access.IsNotFoundError(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to check %v", S3Url(Location{Bucket: bucket, Path: key}))
}

func (s3Access S3Access) ReadObject(bucket string, key string) ([]byte, error) {
	result, err := s3Access.s3Api.GetObject(&s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %v", S3Url(Location{Bucket: bucket, Path: key}))
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (s3Access S3Access) WriteObject(bucket string, key string, data []byte) error {
	_, err := s3Access.s3Api.PutObject(&s3.PutObjectInput{
		Body:        bytes.NewReader(data),
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentTypeFor(key)),
	})
	return errors.Wrapf(err, "failed to write %v", S3Url(Location{Bucket: bucket, Path: key}))
}

func (s3Access S3Access) ReadJSON(bucket string, key string, itemsPtr interface{}, emptyIfNotFound bool) error {
	return readJSON(s3Access, bucket, key, itemsPtr, emptyIfNotFound)
}

func (s3Access S3Access) WriteJSON(bucket string, key string, itemsPtr interface{}) error {
	return writeJSON(s3Access, bucket, key, itemsPtr)
}

func (s3Access S3Access) DeleteObject(bucket string, key string) error {
	_, err := s3Access.s3Api.DeleteObject(&s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	return errors.Wrapf(err, "failed to delete %v", S3Url(Location{Bucket: bucket, Path: key}))
}

// IsNotFoundError - GetObject reports NoSuchKey, HeadObject has no body so only says NotFound
func (s3Access S3Access) IsNotFoundError(err error) bool {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
