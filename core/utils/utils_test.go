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
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

func Example_findDuplicates() {
	fmt.Println(FindDuplicates([]string{"a/b.fits", "a/c.fits", "a/b.fits", "d.fits", "a/b.fits", "d.fits"}))
	fmt.Println(FindDuplicates([]int{1, 2, 3}))

	// Output:
	// [a/b.fits d.fits]
	// []
}

func Example_minMax() {
	fmt.Println(MinMax([]float64{-10, 3.5, -12.25, 40}))
	fmt.Println(MinMax([]int{}))
	fmt.Println(Clamp(1.4, 0.0, 1.0), Clamp(-3, 0, 10), Clamp(5, 0, 10))

	// Output:
	// -12.25 40 true
	// 0 0 false
	// 1 0 5
}

func Example_getSortedMapKeys() {
	fmt.Println(GetSortedMapKeys(map[string]bool{"dr8": true, "dr2": true, "dr5": false}))

	// Output:
	// [dr2 dr5 dr8]
}

func Example_ensureDirConcurrent() {
	root, _ := os.MkdirTemp("", "ensuredir")
	defer os.RemoveAll(root)

	dir := filepath.Join(root, "J123", "sub")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for c := 0; c < len(errs); c++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = EnsureDir(dir)
		}(c)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	info, err := os.Stat(dir)
	fmt.Printf("failed: %v, isDir: %v, err: %v\n", failed, info.IsDir(), err)

	// A file in the way is still an error
	blocker := filepath.Join(root, "blocker")
	os.WriteFile(blocker, []byte{1}, 0666)
	fmt.Println(EnsureDir(blocker) != nil)

	// Output:
	// failed: 0, isDir: true, err: <nil>
	// true
}

func Example_writeFileAtomic() {
	root, _ := os.MkdirTemp("", "atomic")
	defer os.RemoveAll(root)

	p := filepath.Join(root, "J000", "J000012.fits")
	fmt.Println(WriteFileAtomic(p, []byte("SIMPLE")))
	fmt.Println(WriteFileAtomic(p, []byte("SIMPLE  =")))

	data, err := os.ReadFile(p)
	fmt.Printf("%v|%v\n", string(data), err)

	entries, _ := os.ReadDir(filepath.Dir(p))
	fmt.Println(len(entries))

	// Output:
	// <nil>
	// <nil>
	// SIMPLE  =|<nil>
	// 1
}
