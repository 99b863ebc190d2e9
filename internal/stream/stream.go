// Package stream turns periodic upstream polling into a multi-subscriber
// push stream of quote events with heartbeats.
//
// One shared poll loop fetches each distinct symbol exactly once per
// cycle, however many subscriptions reference it, and fans the results
// out per subscription. Heartbeats stay per-subscription so an idle
// transport is kept alive even when every quote fetch fails. Delivery
// is fire-and-forget per tick: a subscriber that cannot keep up loses
// events rather than stalling the loop.
package stream

import (
	"errors"
	"strings"
	"sync"

	"stockpulse/internal/model"
)

// Event is one frame of the live stream protocol.
type Event struct {
	Type      string        `json:"type"`
	Symbols   []string      `json:"symbols,omitempty"`
	Data      []model.Quote `json:"data,omitempty"`
	Timestamp int64         `json:"timestamp,omitempty"` // epoch millis
	Message   string        `json:"message,omitempty"`
}

// Event types.
const (
	EventConnected = "connected"
	EventPrices    = "prices"
	EventHeartbeat = "heartbeat"
	EventError     = "error"
)

// ErrNoSymbols rejects a subscribe request whose symbol set is empty
// after normalization.
var ErrNoSymbols = errors.New("subscribe requires at least one symbol")

// subscriberBuffer is the per-subscription event queue depth. Overflow
// drops the event (at-most-once delivery).
const subscriberBuffer = 32

// Subscription is one live client's registration for a set of symbols.
type Subscription struct {
	symbols []string // normalized, deduplicated, insertion order

	events chan Event
	done   chan struct{}

	closeOnce sync.Once
	b         *Broadcaster
}

// Symbols returns the normalized symbol set of this subscription.
func (s *Subscription) Symbols() []string { return s.symbols }

// Events is the stream of outbound frames. The channel is never
// closed; consumers must also select on Done.
func (s *Subscription) Events() <-chan Event { return s.events }

// Done is closed when the subscription is disconnected.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close disconnects the subscription: it is removed from the poll
// cycle and its heartbeat stops. Idempotent — closing twice is a no-op.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.b.remove(s)
		close(s.done)
	})
}

// normalizeSymbols trims, uppercases and deduplicates, preserving
// first-seen order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
