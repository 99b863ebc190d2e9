// Package history keeps a bounded in-memory window of recent price
// observations per symbol. Each symbol gets a fixed-size ring; once the
// ring is full the oldest observation is overwritten. Readers always see
// the points in chronological order.
package history

import (
	"sync"

	"stockpulse/internal/model"
)

// Window holds per-symbol rings of recent price points. A nil Window
// is valid; every operation on it is a no-op.
// Capacity is rounded up to the next power of two for fast bitwise
// modulo. Minimum capacity is 2.
type Window struct {
	mu    sync.RWMutex
	size  int
	mask  uint64
	rings map[string]*ring
}

type ring struct {
	buf  []model.PricePoint
	head uint64 // total observations ever recorded
}

// NewWindow creates a window keeping up to capacity points per symbol.
func NewWindow(capacity int) *Window {
	size := nextPow2(capacity)
	if size < 2 {
		size = 2
	}
	return &Window{
		size:  size,
		mask:  uint64(size - 1),
		rings: make(map[string]*ring),
	}
}

// Record appends one observation for symbol, overwriting the oldest
// point when the ring is full.
func (w *Window) Record(symbol string, p model.PricePoint) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.rings[symbol]
	if !ok {
		r = &ring{buf: make([]model.PricePoint, w.size)}
		w.rings[symbol] = r
	}
	r.buf[r.head&w.mask] = p
	r.head++
}

// Points returns a chronological copy of the recorded points for symbol.
// Unknown symbols yield nil.
func (w *Window) Points(symbol string) []model.PricePoint {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	r, ok := w.rings[symbol]
	if !ok {
		return nil
	}
	n := r.head
	if n <= uint64(w.size) {
		out := make([]model.PricePoint, n)
		copy(out, r.buf[:n])
		return out
	}
	// Ring has wrapped: oldest point sits at head&mask.
	out := make([]model.PricePoint, 0, w.size)
	start := r.head & w.mask
	out = append(out, r.buf[start:]...)
	out = append(out, r.buf[:start]...)
	return out
}

// Len returns the number of points currently held for symbol.
func (w *Window) Len(symbol string) int {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	r, ok := w.rings[symbol]
	if !ok {
		return 0
	}
	if r.head > uint64(w.size) {
		return w.size
	}
	return int(r.head)
}

// Cap returns the per-symbol capacity.
func (w *Window) Cap() int { return w.size }

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
