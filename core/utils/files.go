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

package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const PrettyPrintIndentForJSON = "    "

// EnsureDir - creates dir (and parents) if needed. Several workers may race to create the same
// directory, whoever loses sees "already exists" which we treat as success, as long as what's
// there is actually a directory
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0777)
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrExist) {
		info, statErr := os.Stat(dir)
		if statErr == nil && info.IsDir() {
			return nil
		}
	}

	return err
}

// WriteFileAtomic - writes to a temp file in the same directory then renames over the target, so
// readers never see a half written file at path
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}

	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func FilesEqual(aPath, bPath string) (bool, error) {
	abytes, err := os.ReadFile(aPath)
	if err != nil {
		return false, err
	}

	bbytes, err := os.ReadFile(bPath)
	if err != nil {
		return false, err
	}

	if len(abytes) != len(bbytes) {
		return false, nil
	}

	for c := range abytes {
		if abytes[c] != bbytes[c] {
			return false, nil
		}
	}

	return true, nil
}
