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
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/galaxyzoo/decals-pipeline/core/utils"
)

// Implementation of file access using local file system
type FSAccess struct {
}

func (fsa *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	rootOnly := path.Join(rootPath) // Using path.Join to make it match the fullPath cleans off ./ for example
	fullPath := fsa.filePath(rootPath, prefix)

	// Prefix may be a partial file name, so walk from its directory and filter
	walkRoot := fullPath
	if info, err := os.Stat(fullPath); err != nil || !info.IsDir() {
		walkRoot = filepath.Dir(fullPath)
	}

	err := filepath.Walk(walkRoot, func(pathFound string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.IsDir() && strings.HasPrefix(filepath.ToSlash(pathFound), filepath.ToSlash(fullPath)) {
			// Temp files from an in-progress atomic write are not objects yet
			if strings.Contains(info.Name(), ".tmp-") {
				return nil
			}

			// pathFound contains the root directory, so we chop it off
			toSave := filepath.ToSlash(pathFound)
			if len(rootOnly) > 0 && strings.HasPrefix(toSave, rootOnly+"/") {
				toSave = toSave[len(rootOnly)+1:]
			}
			result = append(result, toSave)
		}
		return nil
	})

	sort.Strings(result)
	return result, err
}

func (fsa *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	info, err := os.Stat(fsa.filePath(rootPath, path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if fsa.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fsa *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	fullPath := fsa.filePath(rootPath, path)
	return os.ReadFile(fullPath)
}

// WriteObject - creates any subdirs in between (tolerating other workers creating them at the
// same time), then writes atomically
func (fsa *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fsa.filePath(rootPath, path)
	return utils.WriteFileAtomic(fullPath, data)
}

func (fsa *FSAccess) ReadJSON(rootPath string, s3Path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	return readJSON(fsa, rootPath, s3Path, itemsPtr, emptyIfNotFound)
}

func (fsa *FSAccess) WriteJSON(rootPath string, s3Path string, itemsPtr interface{}) error {
	return writeJSON(fsa, rootPath, s3Path, itemsPtr)
}

func (fsa *FSAccess) DeleteObject(rootPath string, path string) error {
	fullPath := fsa.filePath(rootPath, path)
	return os.Remove(fullPath)
}

func (fsa *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (fsa *FSAccess) filePath(rootPath string, filePath string) string {
	return path.Join(rootPath, filePath)
}
