// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	iterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "galax_iterations_total",
		Help: "Completed simulation iterations.",
	})

	bodiesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "galax_bodies",
		Help: "Bodies in the simulation.",
	})

	clientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "galax_viewer_clients",
		Help: "Connected websocket viewers.",
	})

	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "galax_phase_duration_seconds",
		Help:    "Wall time of each pipeline phase.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
	}, []string{"phase"})
)
