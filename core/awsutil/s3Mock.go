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

package awsutil

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MockS3Client - mock S3 client for unit tests. Don't forget to call FinishTest() at the end of your test to check
// that all calls to S3 were made, and there were no unexpected calls!
type MockS3Client struct {
	mutex sync.Mutex

	s3iface.S3API

	// Expected requests
	ExpListObjectsV2Input []s3.ListObjectsV2Input
	ExpGetObjectInput     []s3.GetObjectInput
	ExpHeadObjectInput    []s3.HeadObjectInput
	ExpPutObjectInput     []s3.PutObjectInput
	ExpDeleteObjectInput  []s3.DeleteObjectInput

	// Responses replayed as each request comes in. A nil entry is returned as an error
	QueuedListObjectsV2Output []*s3.ListObjectsV2Output
	QueuedGetObjectOutput     []*s3.GetObjectOutput
	QueuedHeadObjectOutput    []*s3.HeadObjectOutput
	QueuedPutObjectOutput     []*s3.PutObjectOutput
	QueuedDeleteObjectOutput  []*s3.DeleteObjectOutput
}

const ErrNoMoreInputsExpected = "No more inputs expected for "
const ErrWrongInput = "Incorrect input in "
const ErrNothingToReturn = "Nothing to return from "
const ErrReturningError = "Returning error from "

// NOTE: This function MUST be called at the end of a unit test/example test. Use defer when declaring MockS3Client!
func (m *MockS3Client) FinishTest() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.getFinishTestResult()

	// If we found something unexpected, print an error so any example tests get this in their output
	if err != nil {
		fmt.Println(err)
	}

	return err
}

func (m *MockS3Client) getFinishTestResult() error {
	remaining := []struct {
		name string
		exp  int
		out  int
	}{
		{"ListObjectsV2", len(m.ExpListObjectsV2Input), len(m.QueuedListObjectsV2Output)},
		{"GetObject", len(m.ExpGetObjectInput), len(m.QueuedGetObjectOutput)},
		{"HeadObject", len(m.ExpHeadObjectInput), len(m.QueuedHeadObjectOutput)},
		{"PutObject", len(m.ExpPutObjectInput), len(m.QueuedPutObjectOutput)},
		{"DeleteObject", len(m.ExpDeleteObjectInput), len(m.QueuedDeleteObjectOutput)},
	}

	for _, r := range remaining {
		if r.exp > 0 {
			return fmt.Errorf("Test expected more %v calls to func", r.name)
		}
		if r.out > 0 {
			return fmt.Errorf("Remaining output %v for func", r.name)
		}
	}
	return nil
}

// popExpected checks the next expected input (compared by its string form) and pops the matching queued output
func popExpected[I any, O any](name string, inp string, expList *[]I, outputs *[]*O, str func(I) string, notFound bool) (*O, error) {
	if len(*expList) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expStr := str((*expList)[0])
	*expList = (*expList)[1:]

	if expStr != inp {
		return nil, fmt.Errorf("%v expected: \"%v\" S3 recvd: \"%v\"\n", ErrWrongInput+name, expStr, inp)
	}

	if len(*outputs) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := (*outputs)[0]
	*outputs = (*outputs)[1:]

	if result == nil {
		if notFound {
			return nil, awserr.New(s3.ErrCodeNoSuchKey, ErrReturningError+name, nil)
		}
		return nil, errors.New(ErrReturningError + name)
	}

	return result, nil
}

func (m *MockS3Client) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return popExpected("ListObjectsV2", input.String(), &m.ExpListObjectsV2Input, &m.QueuedListObjectsV2Output, func(i s3.ListObjectsV2Input) string { return i.String() }, false)
}

// ListObjectsV2Pages - feeds queued ListObjectsV2 outputs to fn page by page, following
// continuation tokens the way the SDK paginator does
func (m *MockS3Client) ListObjectsV2Pages(input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	params := *input
	for {
		page, err := m.ListObjectsV2(&params)
		if err != nil {
			return err
		}

		lastPage := page.IsTruncated == nil || !*page.IsTruncated || page.NextContinuationToken == nil
		if !fn(page, lastPage) || lastPage {
			return nil
		}
		params.ContinuationToken = page.NextContinuationToken
	}
}

func (m *MockS3Client) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return popExpected("GetObject", input.String(), &m.ExpGetObjectInput, &m.QueuedGetObjectOutput, func(i s3.GetObjectInput) string { return i.String() }, true)
}

func (m *MockS3Client) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return popExpected("HeadObject", input.String(), &m.ExpHeadObjectInput, &m.QueuedHeadObjectOutput, func(i s3.HeadObjectInput) string { return i.String() }, true)
}

func (m *MockS3Client) DeleteObject(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return popExpected("DeleteObject", input.String(), &m.ExpDeleteObjectInput, &m.QueuedDeleteObjectOutput, func(i s3.DeleteObjectInput) string { return i.String() }, false)
}

// PutObject compares bucket, key and body. Bodies are readers so they can't go through String()
func (m *MockS3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	inpStr := putAsStr(*input)
	return popExpected("PutObject", inpStr, &m.ExpPutObjectInput, &m.QueuedPutObjectOutput, putAsStr, false)
}

func putAsStr(input s3.PutObjectInput) string {
	body := ""
	if input.Body != nil {
		data, err := io.ReadAll(input.Body)
		if err != nil {
			body = "ERROR GETTING DATA"
		} else {
			body = string(data)
		}
		input.Body.Seek(0, io.SeekStart)
	}
	bucket, key := "", ""
	if input.Bucket != nil {
		bucket = *input.Bucket
	}
	if input.Key != nil {
		key = *input.Key
	}
	if input.ContentType != nil {
		return fmt.Sprintf("%v/%v (%v): %v", bucket, key, *input.ContentType, body)
	}
	return fmt.Sprintf("%v/%v: %v", bucket, key, body)
}
