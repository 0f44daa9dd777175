// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package comtrade

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "comtrade_"

	kindConfiguration = "configuration"
	kindData          = "data"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics counts configuration and data loads. A nil *Metrics records nothing.
type Metrics struct {
	loads    *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the load metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "loads_total",
				Help: "Total configuration and data file loads by result",
			},
			[]string{"kind", "encoding", "result"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_decoded_total",
				Help: "Total data rows decoded by encoding",
			},
			[]string{"encoding"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "load_duration_seconds",
				Help:    "Load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.loads, m.rows, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeLoad(kind string, encoding DataFileType, start time.Time, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.loads.WithLabelValues(kind, string(encoding), result).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) addRows(encoding DataFileType, n int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(string(encoding)).Add(float64(n))
}
