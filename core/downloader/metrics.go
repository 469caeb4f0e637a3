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

package downloader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	objectsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutout_objects_processed_total",
		Help: "Galaxies through each pipeline phase, by outcome.",
	}, []string{"phase", "outcome"})
	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cutout_object_phase_seconds",
		Help:    "Time spent on one galaxy in a pipeline phase.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"phase"})
)

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
