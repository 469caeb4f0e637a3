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
	"sync"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/timestamper"
)

// RateLimiter - keeps request counts within a sliding window. Once more than softLimit requests
// have been made in the window, callers are made to sleep. Shared between workers, so it locks
type RateLimiter struct {
	mu                sync.Mutex
	requestTimestamps []int64
	timestamper       timestamper.ITimeStamper
	softLimitInWindow int
	timeWindowSec     int64
	softLimitSleep    time.Duration
	sleep             func(time.Duration)
}

func MakeRateLimiter(timestamper timestamper.ITimeStamper, softLimit int, timeWindowSec int64, softLimitSleep time.Duration) *RateLimiter {
	return &RateLimiter{
		requestTimestamps: []int64{},
		timestamper:       timestamper,
		softLimitInWindow: softLimit,
		timeWindowSec:     timeWindowSec,
		softLimitSleep:    softLimitSleep,
		sleep:             time.Sleep,
	}
}

// CheckRateLimit - records a request, returns how long we slept (0 if not limited)
func (r *RateLimiter) CheckRateLimit() time.Duration {
	r.mu.Lock()

	now := r.timestamper.GetTimeNowSec()
	oldest := now - r.timeWindowSec

	// Clear too old
	validTimestamps := []int64{}
	for _, ts := range r.requestTimestamps {
		if ts >= oldest {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	// Add ours
	r.requestTimestamps = append(validTimestamps, now)
	limited := len(r.requestTimestamps) > r.softLimitInWindow
	r.mu.Unlock()

	if limited {
		r.sleep(r.softLimitSleep)
		return r.softLimitSleep
	}
	return 0
}
