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

import (
	"fmt"
	"strings"
	"sync"
)

// StdOutLoggerForTest - remembers everything logged so tests can check for messages.
// Safe to share between worker goroutines
type StdOutLoggerForTest struct {
	mu   sync.Mutex
	logs []string
}

func (l *StdOutLoggerForTest) Printf(level LogLevel, format string, a ...interface{}) {
	txt := logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, txt)
}
func (l *StdOutLoggerForTest) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdOutLoggerForTest) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdOutLoggerForTest) Warnf(format string, a ...interface{}) {
	l.Printf(LogWarn, format, a...)
}
func (l *StdOutLoggerForTest) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

// GetLogs - returns a copy of all lines logged so far
func (l *StdOutLoggerForTest) GetLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.logs...)
}

// LastLogLine - returns the most recent line, or empty string
func (l *StdOutLoggerForTest) LastLogLine() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.logs) == 0 {
		return ""
	}
	return l.logs[len(l.logs)-1]
}

// LogContains - true if any logged line contains the given text
func (l *StdOutLoggerForTest) LogContains(txt string) bool {
	for _, line := range l.GetLogs() {
		if strings.Contains(line, txt) {
			return true
		}
	}
	return false
}
