// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesFactored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spchol_nodes_factored_total",
		Help: "Supernodes whose Factor step completed successfully",
	})

	factorizeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spchol_factorize_failures_total",
		Help: "Factorization runs that ended in error, by reason",
	}, []string{"reason"})

	factorizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spchol_factorize_duration_seconds",
		Help:    "Wall time of a numeric factorization run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spchol_solve_duration_seconds",
		Help:    "Wall time of a forward+backward solve",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
)
