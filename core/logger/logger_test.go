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

package logger

import "fmt"

func Example_getLogLevel() {
	for _, name := range []string{"debug", "INFO", "Warn", "error", "verbose"} {
		level, ok := GetLogLevel(name)
		fmt.Printf("%v: %v|%v\n", name, GetLogLevelName(level), ok)
	}

	// Output:
	// debug: DEBUG|true
	// INFO: INFO|true
	// Warn: WARN|true
	// error: ERROR|true
	// verbose: INFO|false
}

func Example_stdOutLoggerForTest() {
	l := &StdOutLoggerForTest{}
	l.Infof("Fetched %v of %v", 3, 10)
	l.Warnf("Giving up on %v", "J000001.00+000001.0")

	fmt.Println(l.GetLogs())
	fmt.Println(l.LastLogLine())
	fmt.Println(l.LogContains("Giving up"), l.LogContains("Retrying"))

	// Output:
	// [INFO: Fetched 3 of 10 WARN: Giving up on J000001.00+000001.0]
	// WARN: Giving up on J000001.00+000001.0
	// true false
}

func Example_nullLoggerCounts() {
	l := &NullLogger{}
	l.Debugf("Downloaded %v", "J000001.00+000001.0")
	l.Warnf("Giving up on %v", "J000002.00+000001.0")
	l.Warnf("Excluding %v from manifest", "J000003.00+000001.0")
	l.Printf(LogLevel(9), "ignored")

	fmt.Println(l.Count(LogDebug), l.Count(LogInfo), l.Count(LogWarn), l.Count(LogError), l.Count(LogLevel(9)))

	// Output:
	// 1 0 2 0 0
}
