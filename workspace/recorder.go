// SPDX-License-Identifier: MIT

package workspace

import (
	"fmt"
	"sort"
	"sync"
)

// Recorder is an Observer that tracks every acquisition by (type, size) and
// reports acquisitions that have no matching release.
type Recorder struct {
	mu      sync.Mutex
	pending map[string]int // "type[count]" -> net outstanding
	log     []string
}

// Compile-time assertion.
var _ Observer = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{pending: make(map[string]int)}
}

func recordKey(elem string, count int) string {
	return fmt.Sprintf("%s[%d]", elem, count)
}

// OnAcquire implements Observer.
func (r *Recorder) OnAcquire(elem string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := recordKey(elem, count)
	r.pending[k]++
	r.log = append(r.log, "+"+k)
}

// OnRelease implements Observer.
func (r *Recorder) OnRelease(elem string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := recordKey(elem, count)
	r.pending[k]--
	if r.pending[k] == 0 {
		delete(r.pending, k)
	}
	r.log = append(r.log, "-"+k)
}

// Unbalanced lists the (type, size) keys whose acquire and release counts differ,
// sorted for stable assertions. Empty means every acquisition was released with
// the same size.
func (r *Recorder) Unbalanced() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pending))
	for k, v := range r.pending {
		out = append(out, fmt.Sprintf("%s:%+d", k, v))
	}
	sort.Strings(out)

	return out
}

// Events returns the acquire ("+") / release ("-") sequence observed so far.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.log...)
}
