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

// Package pipelineerror classifies failures so callers can tell per-object
// problems (recovered into status flags) from run-aborting ones.
package pipelineerror

import (
	"errors"
	"fmt"
)

// Kind names a class of pipeline failure. String based so it reads well in logs
type Kind string

const (
	// KindTransientFetch - a download attempt failed (network, timeout, bad status). Retried locally
	KindTransientFetch Kind = "TRANSIENT_FETCH"

	// KindCorruptArtifact - a stored image could not be parsed. Object is treated as not ready
	KindCorruptArtifact Kind = "CORRUPT_ARTIFACT"

	// KindQualityInsufficient - image parses but too many pixels are missing. A classification, reported as a flag
	KindQualityInsufficient Kind = "QUALITY_INSUFFICIENT"

	// KindGeometryMismatch - matched row counts disagree after a join. Programming defect, aborts the run
	KindGeometryMismatch Kind = "GEOMETRY_MISMATCH"

	// KindConfiguration - unknown data release or otherwise unusable settings. Aborts the run
	KindConfiguration Kind = "CONFIGURATION"

	// KindDuplicatePath - two objects derive the same output path. Aborts the run
	KindDuplicatePath Kind = "DUPLICATE_PATH"

	// KindInvalidInput - a catalog row breaks the data model (eg RA outside [0,360))
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindUnknown - anything not classified
	KindUnknown Kind = "UNKNOWN"
)

var fatalKinds = map[Kind]bool{
	KindGeometryMismatch: true,
	KindConfiguration:    true,
	KindDuplicatePath:    true,
	KindInvalidInput:     true,
}

type KindError struct {
	Kind Kind
	Err  error
}

func (ke KindError) Error() string {
	return fmt.Sprintf("%v: %v", ke.Kind, ke.Err)
}

func (ke KindError) Unwrap() error {
	return ke.Err
}

func MakeError(kind Kind, err error) KindError {
	return KindError{
		Kind: kind,
		Err:  err,
	}
}

func Errorf(kind Kind, format string, a ...interface{}) KindError {
	return KindError{
		Kind: kind,
		Err:  fmt.Errorf(format, a...),
	}
}

func MakeConfigurationError(err error) KindError {
	return MakeError(KindConfiguration, err)
}

func MakeGeometryMismatchError(expected int, got int) KindError {
	return Errorf(KindGeometryMismatch, "joined catalog has %v rows but %v objects matched a brick", got, expected)
}

// KindOf - returns the kind of the first KindError found in the chain, or KindUnknown
func KindOf(err error) Kind {
	var ke KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindUnknown
}

// IsFatal - true if this error must abort the whole run rather than being recorded against one object
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return fatalKinds[KindOf(err)]
}
