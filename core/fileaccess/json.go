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
	"encoding/json"

	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/pkg/errors"
)

// readJSON - reads and unmarshals an object through any backend. A missing object leaves itemsPtr
// untouched when emptyIfNotFound is set
func readJSON(fs FileAccess, bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := fs.ReadObject(bucket, path)
	if err != nil {
		if emptyIfNotFound && fs.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	if err := json.Unmarshal(fileData, itemsPtr); err != nil {
		return errors.Wrapf(err, "failed to parse JSON in %v", Location{Bucket: bucket, Path: path})
	}
	return nil
}

func writeJSON(fs FileAccess, bucket string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return fs.WriteObject(bucket, path, fileData)
}
