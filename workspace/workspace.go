// SPDX-License-Identifier: MIT

// Package workspace - typed scoped-buffer pool.
//
// Purpose:
//   - Hand out temporary buffers of N elements of type T and take them back for reuse,
//     so repeated supernode calls do not allocate on every visit.
//   - Make release explicit but hard to forget: Acquire returns a *Lease whose
//     Release is meant to be deferred in the acquiring scope.
//
// Contract:
//   - Buffers are NOT zero-initialized on reuse; callers must overwrite before reading.
//   - A lease is exclusively owned by its holder until Release.
//   - Releasing a lease twice is a programmer error and panics.
//   - Manager is safe for concurrent use; leases from different goroutines never alias.
//
// Complexity quicksheet:
//   - Acquire: O(F) over the free list of that element type (kept short by maxFree).
//   - Release: O(1) amortized.

package workspace

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultMaxFree bounds the number of idle buffers kept per element type.
const DefaultMaxFree = 32

var (
	acquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spchol_workspace_acquire_total",
		Help: "Workspace buffers handed out, by element type",
	}, []string{"type"})

	reuseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spchol_workspace_reuse_total",
		Help: "Workspace acquisitions satisfied from the free list, by element type",
	}, []string{"type"})

	outstandingBuffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spchol_workspace_outstanding_buffers",
		Help: "Workspace buffers currently leased across all managers",
	})
)

// Observer receives a callback for every acquire and release. Test harnesses
// use it to check that every acquisition is matched by a release of the same size.
type Observer interface {
	OnAcquire(elem string, count int)
	OnRelease(elem string, count int)
}

// Stats is a point-in-time snapshot of a Manager's counters.
type Stats struct {
	Acquires    int // total Acquire calls
	Releases    int // total Release calls
	Reused      int // acquisitions served from the free list
	Outstanding int // leases not yet released
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver installs an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithMaxFree bounds the idle buffers kept per element type. Panics on n < 0.
func WithMaxFree(n int) Option {
	if n < 0 {
		panic("workspace: WithMaxFree(n<0)")
	}

	return func(m *Manager) { m.maxFree = n }
}

// Manager is a pool of reusable typed buffers.
type Manager struct {
	mu       sync.Mutex
	free     map[reflect.Type][]any // idle []T slices keyed by T
	maxFree  int
	observer Observer
	stats    Stats
}

// NewManager creates an empty pool.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		free:    make(map[reflect.Type][]any),
		maxFree: DefaultMaxFree,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Lease is an exclusively owned buffer of exactly Len() elements.
type Lease[T any] struct {
	// Data is the leased buffer; len(Data) equals the requested count.
	Data     []T
	m        *Manager
	elem     reflect.Type
	released bool
}

// Len returns the leased element count.
func (l *Lease[T]) Len() int { return len(l.Data) }

// Acquire leases count elements of type T from m.
// MAIN DESCRIPTION:
//   - Reuse the smallest idle buffer whose capacity fits, else allocate.
//
// Behavior highlights:
//   - Content of a reused buffer is whatever its previous holder left there.
//   - count == 0 yields an empty, still releasable lease.
//
// Panics:
//   - count < 0 (programmer error).
func Acquire[T any](m *Manager, count int) *Lease[T] {
	if count < 0 {
		panic(fmt.Sprintf("workspace: Acquire(%d)", count))
	}
	elem := reflect.TypeFor[T]()
	name := elem.String()

	m.mu.Lock()
	var buf []T
	list := m.free[elem]
	best := -1
	for i, v := range list {
		c := cap(v.([]T))
		if c >= count && (best < 0 || c < cap(list[best].([]T))) {
			best = i
		}
	}
	if best >= 0 {
		buf = list[best].([]T)[:count]
		list[best] = list[len(list)-1]
		m.free[elem] = list[:len(list)-1]
		m.stats.Reused++
	}
	m.stats.Acquires++
	m.stats.Outstanding++
	obs := m.observer
	m.mu.Unlock()

	if best >= 0 {
		reuseTotal.WithLabelValues(name).Inc()
	} else {
		buf = make([]T, count)
	}
	acquireTotal.WithLabelValues(name).Inc()
	outstandingBuffers.Inc()
	if obs != nil {
		obs.OnAcquire(name, count)
	}

	return &Lease[T]{Data: buf, m: m, elem: elem}
}

// Release returns the buffer to its manager. Data must not be used afterwards.
// Panics when called twice on the same lease.
func (l *Lease[T]) Release() {
	if l.released {
		panic("workspace: lease released twice")
	}
	l.released = true
	count := len(l.Data)
	buf := l.Data
	l.Data = nil

	m := l.m
	m.mu.Lock()
	if len(m.free[l.elem]) < m.maxFree {
		m.free[l.elem] = append(m.free[l.elem], buf)
	}
	m.stats.Releases++
	m.stats.Outstanding--
	obs := m.observer
	m.mu.Unlock()

	outstandingBuffers.Dec()
	if obs != nil {
		obs.OnRelease(l.elem.String(), count)
	}
}

// Outstanding returns the number of leases not yet released.
func (m *Manager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats.Outstanding
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}

// AcquireCounter exposes the per-type acquisition counter for metric assertions.
func AcquireCounter(elem string) prometheus.Counter {
	return acquireTotal.WithLabelValues(elem)
}
