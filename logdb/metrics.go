// Copyright 2026 The Detcore Authors
// This file is part of Detcore.
//
// Detcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Detcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Detcore. If not, see <http://www.gnu.org/licenses/>.

package logdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for one LogDB instance. A nil
// *Metrics is valid everywhere in this package and simply means "don't
// instrument" - no HTTP exposition server is wired here, registration
// against an exporter is left to the embedding application (spec.md §1
// explicitly puts process/CLI wiring out of scope).
type Metrics struct {
	framesWritten  prometheus.Counter
	framesRejected prometheus.Counter
	flushDuration  prometheus.Histogram
	loadDuration   prometheus.Histogram
	usedBytes      prometheus.Gauge
	writtenBytes   prometheus.Gauge
}

// NewMetrics builds a Metrics instance with the given label set (typically
// just the database path) but does not register it anywhere.
func NewMetrics(constLabels prometheus.Labels) *Metrics {
	return &Metrics{
		framesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "frames_written_total",
			Help:        "Number of frames successfully appended by Flush.",
			ConstLabels: constLabels,
		}),
		framesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "frames_rejected_total",
			Help:        "Number of frames rejected during Load due to corruption.",
			ConstLabels: constLabels,
		}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "flush_duration_seconds",
			Help:        "Wall-clock time spent in Flush, including fsync.",
			ConstLabels: constLabels,
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "load_duration_seconds",
			Help:        "Wall-clock time spent replaying frames during Open.",
			ConstLabels: constLabels,
		}),
		usedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "used_bytes",
			Help:        "Advisory sum of |key|+|value| over present entries.",
			ConstLabels: constLabels,
		}),
		writtenBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "detcore",
			Subsystem:   "logdb",
			Name:        "written_bytes_total",
			Help:        "Advisory lifetime sum of bytes contributed to on-disk records.",
			ConstLabels: constLabels,
		}),
	}
}

// Register adds every instrument to reg. Safe to call with a nil *Metrics.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	if m == nil || reg == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{
		m.framesWritten, m.framesRejected, m.flushDuration,
		m.loadDuration, m.usedBytes, m.writtenBytes,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeFlush(dur time.Duration) {
	if m == nil {
		return
	}
	m.framesWritten.Inc()
	m.flushDuration.Observe(dur.Seconds())
}

func (m *Metrics) observeRejectedFrame() {
	if m == nil {
		return
	}
	m.framesRejected.Inc()
}

func (m *Metrics) observeLoad(dur time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(dur.Seconds())
}

func (m *Metrics) setUsage(used, written uint64) {
	if m == nil {
		return
	}
	m.usedBytes.Set(float64(used))
	m.writtenBytes.Set(float64(written))
}
