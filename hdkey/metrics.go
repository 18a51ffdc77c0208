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

package hdkey

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds derivation counters split by mode (private-chain vs
// public-chain) plus a latency histogram. A nil *Metrics disables
// instrumentation; registration against an exporter is left to the
// embedding application.
type Metrics struct {
	privateDerivations prometheus.Counter
	publicDerivations  prometheus.Counter
	deriveDuration     prometheus.Histogram
	failures           prometheus.Counter
}

// NewMetrics builds a Metrics instance with the given label set but does
// not register it anywhere.
func NewMetrics(constLabels prometheus.Labels) *Metrics {
	return &Metrics{
		privateDerivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "detcore",
			Subsystem:   "hdkey",
			Name:        "private_derivations_total",
			Help:        "Number of Derive calls on a key holding a private scalar.",
			ConstLabels: constLabels,
		}),
		publicDerivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "detcore",
			Subsystem:   "hdkey",
			Name:        "public_derivations_total",
			Help:        "Number of Derive calls on a public-only key.",
			ConstLabels: constLabels,
		}),
		deriveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "detcore",
			Subsystem:   "hdkey",
			Name:        "derive_duration_seconds",
			Help:        "Wall-clock time spent in Derive, including the HMAC and curve op.",
			ConstLabels: constLabels,
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "detcore",
			Subsystem:   "hdkey",
			Name:        "derive_failures_total",
			Help:        "Number of Derive calls that returned an error.",
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
		m.privateDerivations, m.publicDerivations, m.deriveDuration, m.failures,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeDerive(privateMode bool, dur time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.Inc()
		return
	}
	if privateMode {
		m.privateDerivations.Inc()
	} else {
		m.publicDerivations.Inc()
	}
	m.deriveDuration.Observe(dur.Seconds())
}
