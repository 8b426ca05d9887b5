// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the handful of Prometheus series that let an
// operator see the bundle package's cache behavior from outside: how many
// band descriptors are open, how often eviction and hole-fill fire, and
// how many bytes move through pread/pwrite.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BundleMetrics is the set of instruments a bundle.Handle reports to.
// The zero value is not usable; construct one with New.
type BundleMetrics struct {
	openBands      prometheus.Gauge
	bandEvictions  prometheus.Counter
	bandOpens      prometheus.Counter
	holeFills      prometheus.Counter
	bytesRead      prometheus.Counter
	bytesWritten   prometheus.Counter
	ioErrors       *prometheus.CounterVec
}

// New creates a BundleMetrics and registers its instruments with reg. reg
// may be nil, in which case the returned BundleMetrics records nothing but
// remains safe to call.
func New(reg prometheus.Registerer) *BundleMetrics {
	m := &BundleMetrics{
		openBands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sparsebundle",
			Name:      "open_bands",
			Help:      "Number of bands currently held by the LRU cache, including entries for bands absent on disk.",
		}),
		bandEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "band_evictions_total",
			Help:      "Number of bands evicted from the LRU cache to make room for a miss.",
		}),
		bandOpens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "band_opens_total",
			Help:      "Number of band open attempts on a cache miss, including reopens for write and attempts that found no file.",
		}),
		holeFills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "hole_fills_total",
			Help:      "Number of read chunks satisfied by zero-filling: an absent band, or no bytes stored at that offset.",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "bytes_read_total",
			Help:      "Total bytes returned by pread, including zero-filled holes.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "bytes_written_total",
			Help:      "Total bytes accepted by pwrite.",
		}),
		ioErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparsebundle",
			Name:      "io_errors_total",
			Help:      "Per-request I/O failures, labeled by the operation that failed.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(m.openBands, m.bandEvictions, m.bandOpens, m.holeFills, m.bytesRead, m.bytesWritten, m.ioErrors)
	}
	return m
}

func (m *BundleMetrics) SetOpenBands(n int)      { m.openBands.Set(float64(n)) }
func (m *BundleMetrics) BandEvicted()            { m.bandEvictions.Inc() }
func (m *BundleMetrics) BandOpened()             { m.bandOpens.Inc() }
func (m *BundleMetrics) HoleFilled()             { m.holeFills.Inc() }
func (m *BundleMetrics) ReadBytes(n int)         { m.bytesRead.Add(float64(n)) }
func (m *BundleMetrics) WrittenBytes(n int)      { m.bytesWritten.Add(float64(n)) }
func (m *BundleMetrics) IOError(op string)       { m.ioErrors.WithLabelValues(op).Inc() }
