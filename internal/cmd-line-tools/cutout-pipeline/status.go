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


package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/galaxyzoo/decals-pipeline/core/downloader"
	"github.com/galaxyzoo/decals-pipeline/core/logger"
	"github.com/galaxyzoo/decals-pipeline/core/utils"
	"github.com/galaxyzoo/decals-pipeline/pipeline/services"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// runStatus - what a long run is up to, served on the status port. Progress counts themselves are
// in the prometheus metrics
type runStatus struct {
	mu sync.Mutex

	Version  string              `json:"version"`
	Phase    string              `json:"phase"`
	Started  int64               `json:"started"`
	Galaxies int                 `json:"galaxies"`
	Summary  *downloader.Summary `json:"summary,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (s *runStatus) setPhase(phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Started == 0 {
		s.Started = time.Now().Unix()
	}
	s.Phase = phase
}

func (s *runStatus) setGalaxies(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Galaxies = n
}

func (s *runStatus) setSummary(summary downloader.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Summary = &summary
}

func (s *runStatus) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Phase = "failed"
		s.Error = err.Error()
		return
	}
	s.Phase = "done"
}

func (s *runStatus) toJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Version = getVersion()
	return json.MarshalIndent(s, "", utils.PrettyPrintIndentForJSON)
}

func getVersion() string {
	if len(services.PipelineVersion) <= 0 {
		return "N/A - Local build"
	}
	return services.PipelineVersion
}

func makeStatusRouter(status *runStatus) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		body, err := status.toJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}).Methods(http.MethodGet)

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, getVersion())
	}).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

func serveStatus(port int32, status *runStatus, iLog logger.ILogger) {
	addr := fmt.Sprintf(":%v", port)
	iLog.Infof("Serving status and metrics on %v", addr)

	handler := handlers.CombinedLoggingHandler(os.Stdout, makeStatusRouter(status))
	if err := http.ListenAndServe(addr, handler); err != nil {
		iLog.Errorf("Status server stopped: %v", err)
	}
}
