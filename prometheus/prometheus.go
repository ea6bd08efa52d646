// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package prometheus provides functions that are useful to control and manage
// the build-in prometheus instance.
package prometheus

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// shutdownTimeout is how long Stop waits for in flight scrapes.
const shutdownTimeout = 5 * time.Second

// Prometheus is the struct that contains information about the
// prometheus instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen address for the net/http server

	// Logf receives the errors of the http server. It may be nil.
	Logf func(format string, v ...interface{})

	registry *prometheus.Registry
	server   *http.Server

	documentsTotal          *prometheus.CounterVec // total of documents that have been resolved
	passesTotal             prometheus.Counter     // total of completed enumeration passes
	generators              prometheus.Gauge       // size of the current generator stack
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch
}

// Init some parameters - currently the Listen address. Each instance has its
// own registry, so that more than one can exist in the same process.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	obj.registry = prometheus.NewRegistry()

	obj.documentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genson_documents_total",
			Help: "Number of documents that have been resolved.",
		},
		// Labels for this metric.
		// errorful: did the resolution fail
		[]string{"errorful"},
	)
	obj.passesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "genson_passes_total",
			Help: "Number of complete passes through a template grid.",
		},
	)
	obj.generators = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "genson_generators",
			Help: "Number of generators in the template being enumerated.",
		},
	)
	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "genson_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)

	for _, c := range []prometheus.Collector{
		obj.documentsTotal,
		obj.passesTotal,
		obj.generators,
		obj.processStartTimeSeconds,
	} {
		if err := obj.registry.Register(c); err != nil {
			return errwrap.Wrapf(err, "can't register metric")
		}
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Gatherer returns the registry that holds the metrics of this instance.
func (obj *Prometheus) Gatherer() prometheus.Gatherer {
	return obj.registry
}

// Start runs a http server in a go routine, that responds to /metrics
// as prometheus would expect.
func (obj *Prometheus) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{}))
	obj.server = &http.Server{
		Addr:    obj.Listen,
		Handler: mux,
	}
	if obj.Logf != nil {
		obj.server.ErrorLog = log.New(&util.LogWriter{Prefix: "http: ", Logf: obj.Logf}, "", 0)
	}
	ln, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return errwrap.Wrapf(err, "can't listen on %s", obj.Listen)
	}
	go obj.server.Serve(ln) // returns ErrServerClosed on Stop
	return nil
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return obj.server.Shutdown(ctx)
}

// WriteTextfile writes the current value of every metric to a file in the
// text format, for use with the node exporter textfile collector.
func (obj *Prometheus) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, obj.registry)
}

// UpdateDocumentsTotal counts one resolved document.
func (obj *Prometheus) UpdateDocumentsTotal(errorful bool) error {
	labels := prometheus.Labels{"errorful": strconv.FormatBool(errorful)}
	metric := obj.documentsTotal.With(labels)
	metric.Inc()
	return nil
}

// UpdatePassesTotal counts one complete pass through a grid.
func (obj *Prometheus) UpdatePassesTotal() error {
	obj.passesTotal.Inc()
	return nil
}

// UpdateGenerators sets the size of the generator stack.
func (obj *Prometheus) UpdateGenerators(count int) error {
	obj.generators.Set(float64(count))
	return nil
}
