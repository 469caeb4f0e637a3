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
	"path"

	"github.com/galaxyzoo/decals-pipeline/core/fileaccess"
)

const prefixLength = 4

// PathPrefix - galaxies are spread over subdirectories named by the first few characters of the
// galaxy name, so no one directory gets too big
func PathPrefix(name string) string {
	runes := []rune(name)
	if len(runes) <= prefixLength {
		return name
	}
	return string(runes[:prefixLength])
}

// ArtifactLocation - where a galaxy's artifact of the given extension lives under root
func ArtifactLocation(root fileaccess.Location, name string, ext string) fileaccess.Location {
	fileName := fileaccess.MakeValidObjectName(name) + ext
	return fileaccess.Location{
		Bucket: root.Bucket,
		Path:   path.Join(root.Path, fileaccess.MakeValidObjectName(PathPrefix(name)), fileName),
	}
}
