// SPDX-License-Identifier: MIT

package solver

import "github.com/prometheus/client_golang/prometheus"

// FactorizeFailures exposes the failure counter to external tests.
func FactorizeFailures() *prometheus.CounterVec { return factorizeFailures }

// NodesFactored exposes the node counter to external tests.
func NodesFactored() prometheus.Counter { return nodesFactored }
