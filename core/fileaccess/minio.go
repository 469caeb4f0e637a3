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
	"context"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Implementation of file access using a MinIO (or other S3 compatible) server
type MinioAccess struct {
	client *minio.Client
}

func MakeMinioAccess(endpoint string, accessKey string, secretKey string, secure bool) (*MinioAccess, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioAccess{client: client}, nil
}

func (m *MinioAccess) ListObjects(bucket string, prefix string) ([]string, error) {
	result := []string{}

	for obj := range m.client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return []string{}, obj.Err
		}
		if !strings.HasSuffix(obj.Key, "/") {
			result = append(result, obj.Key)
		}
	}

	sort.Strings(result)
	return result, nil
}

func (m *MinioAccess) ObjectExists(bucket string, path string) (bool, error) {
	_, err := m.client.StatObject(context.Background(), bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if m.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (m *MinioAccess) ReadObject(bucket string, path string) ([]byte, error) {
	obj, err := m.client.GetObject(context.Background(), bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// Errors such as a missing key only surface once we read
	return io.ReadAll(obj)
}

func (m *MinioAccess) WriteObject(bucket string, path string, data []byte) error {
	_, err := m.client.PutObject(context.Background(), bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func (m *MinioAccess) ReadJSON(bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	return readJSON(m, bucket, path, itemsPtr, emptyIfNotFound)
}

func (m *MinioAccess) WriteJSON(bucket string, path string, itemsPtr interface{}) error {
	return writeJSON(m, bucket, path, itemsPtr)
}

func (m *MinioAccess) DeleteObject(bucket string, path string) error {
	return m.client.RemoveObject(context.Background(), bucket, path, minio.RemoveObjectOptions{})
}

func (m *MinioAccess) IsNotFoundError(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
