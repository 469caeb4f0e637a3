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
	"path"
	"strings"
)

// Generic interface for reading/writing catalogs and image artifacts.
// The pipeline can keep its tables and cutouts on the local file system, in AWS S3 or
// in a MinIO deployment, so everything codes against this.

// Besides just needing a path, we may need a root directory or bucket at the start of a path.

type FileAccess interface {
	ListObjects(bucket string, prefix string) ([]string, error)
	ObjectExists(bucket string, path string) (bool, error)

	ReadObject(bucket string, path string) ([]byte, error)
	WriteObject(bucket string, path string, data []byte) error

	ReadJSON(bucket string, s3Path string, itemsPtr interface{}, emptyIfNotFound bool) error
	WriteJSON(bucket string, s3Path string, itemsPtr interface{}) error

	DeleteObject(bucket string, path string) error

	IsNotFoundError(err error) bool
}

// Location - where one object lives: a bucket (or local root dir) and a path within it
type Location struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

func (l Location) String() string {
	if len(l.Bucket) <= 0 {
		return l.Path
	}
	return path.Join(l.Bucket, l.Path)
}

// WithExtension - same location, with the file extension swapped
func (l Location) WithExtension(ext string) Location {
	p := strings.TrimSuffix(l.Path, path.Ext(l.Path))
	return Location{Bucket: l.Bucket, Path: p + ext}
}

func MakeValidObjectName(name string) string {
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "$", "")
	name = strings.ReplaceAll(name, "#", "")
	name = strings.ReplaceAll(name, "!", "")
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")

	// . and .. would step out of the directory the object is meant to be in
	if len(name) > 0 && strings.Trim(name, ".") == "" {
		name = strings.Repeat("_", len(name))
	}

	return name
}

// Is this string a valid name to use as an object name?
func IsValidObjectName(name string) bool {
	// Names should be non-zero length containing some non-crazy characters
	if len(name) <= 0 {
		return false
	}

	if strings.ContainsAny(name, "\"") {
		return false
	}

	return true
}
