package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stockpulse/internal/markethours"
	"stockpulse/internal/metrics"
	"stockpulse/internal/model"
	"stockpulse/internal/quotes"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeSource serves canned prices and counts fetches per symbol.
type fakeSource struct {
	mu      sync.Mutex
	prices  map[string]float64
	count   map[string]int
	failAll bool
}

func newFakeSource(prices map[string]float64) *fakeSource {
	return &fakeSource{prices: prices, count: make(map[string]int)}
}

func (f *fakeSource) Fetch(_ context.Context, symbol string) (model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count[symbol]++
	if f.failAll {
		return model.Quote{}, quotes.ErrUnavailable
	}
	p, ok := f.prices[symbol]
	if !ok {
		return model.Quote{}, quotes.ErrUnavailable
	}
	return model.Quote{Symbol: symbol, Price: p}, nil
}

func (f *fakeSource) setFailAll(v bool) {
	f.mu.Lock()
	f.failAll = v
	f.mu.Unlock()
}

func (f *fakeSource) fetches(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count[symbol]
}

func newTestBroadcaster(t *testing.T, src quotes.Source) (*Broadcaster, context.CancelFunc) {
	t.Helper()
	cfg := Config{
		PollInterval:      20 * time.Millisecond,
		HeartbeatInterval: 35 * time.Millisecond,
		FetchTimeout:      time.Second,
	}
	clock := fixedClock{time.Date(2025, 6, 16, 10, 0, 0, 0, markethours.IST)}
	b := NewBroadcaster(cfg, src, nil, clock, metrics.New(prometheus.NewRegistry()), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	return b, cancel
}

// collect drains events until the deadline, returning what arrived.
func collect(sub *Subscription, d time.Duration) []Event {
	var out []Event
	deadline := time.After(d)
	for {
		select {
		case ev := <-sub.Events():
			out = append(out, ev)
		case <-deadline:
			return out
		}
	}
}

func TestSubscribe_InitialBurst(t *testing.T) {
	src := newFakeSource(map[string]float64{"TCS.NS": 4100, "INFY.NS": 1500})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	sub, err := b.Subscribe(context.Background(), []string{" tcs.ns ", "INFY.NS", "tcs.ns"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	if got := sub.Symbols(); len(got) != 2 || got[0] != "TCS.NS" || got[1] != "INFY.NS" {
		t.Fatalf("normalized symbols = %v", got)
	}

	first := <-sub.Events()
	if first.Type != EventConnected || len(first.Symbols) != 2 {
		t.Fatalf("first event = %+v, want connected with symbols", first)
	}
	second := <-sub.Events()
	if second.Type != EventPrices || len(second.Data) != 2 || second.Timestamp == 0 {
		t.Fatalf("second event = %+v, want full prices batch", second)
	}
}

func TestSubscribe_EmptySetRejected(t *testing.T) {
	src := newFakeSource(nil)
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	if _, err := b.Subscribe(context.Background(), []string{" ", ""}); !errors.Is(err, ErrNoSymbols) {
		t.Fatalf("err = %v, want ErrNoSymbols", err)
	}
}

func TestPartialFailure_DeliversRest(t *testing.T) {
	src := newFakeSource(map[string]float64{"OK.NS": 100})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	sub, err := b.Subscribe(context.Background(), []string{"OK.NS", "DEAD.NS"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	<-sub.Events() // connected
	prices := <-sub.Events()
	if prices.Type != EventPrices || len(prices.Data) != 1 || prices.Data[0].Symbol != "OK.NS" {
		t.Fatalf("partial batch = %+v, want just OK.NS", prices)
	}
}

func TestAllFailed_ErrorEventButHeartbeatSurvives(t *testing.T) {
	src := newFakeSource(map[string]float64{"X.NS": 100})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	src.setFailAll(true)
	sub, err := b.Subscribe(context.Background(), []string{"X.NS"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	evs := collect(sub, 120*time.Millisecond)

	byType := map[string]int{}
	for _, ev := range evs {
		byType[ev.Type]++
	}
	if byType[EventError] == 0 {
		t.Error("no error event for fully-failed poll cycles")
	}
	if byType[EventHeartbeat] == 0 {
		t.Error("heartbeat stopped while fetches were failing")
	}
	// No fetch ever succeeded, so no prices events at all.
	if byType[EventPrices] != 0 {
		t.Errorf("%d prices events emitted while every fetch failed", byType[EventPrices])
	}
	select {
	case <-sub.Done():
		t.Error("subscription closed by fetch failures")
	default:
	}
}

func TestDisconnect_StopsAllEvents(t *testing.T) {
	src := newFakeSource(map[string]float64{"X.NS": 100})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	sub, err := b.Subscribe(context.Background(), []string{"X.NS"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	sub.Close()
	sub.Close() // idempotent

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	// Drain whatever was queued before the close, then verify silence.
	collect(sub, 30*time.Millisecond)
	if late := collect(sub, 100*time.Millisecond); len(late) != 0 {
		t.Fatalf("%d events delivered after disconnect: %+v", len(late), late)
	}
}

func TestCoalescing_OneFetchPerSymbolPerCycle(t *testing.T) {
	src := newFakeSource(map[string]float64{"X.NS": 100})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	// Three subscriptions all watching the same symbol.
	var subs []*Subscription
	for i := 0; i < 3; i++ {
		sub, err := b.Subscribe(context.Background(), []string{"X.NS"})
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		defer sub.Close()
		subs = append(subs, sub)
	}
	base := src.fetches("X.NS") // 3 initial fetches, one per subscribe

	time.Sleep(110 * time.Millisecond) // ~5 poll cycles
	polled := src.fetches("X.NS") - base

	// Shared cycle: fetch count tracks cycles, not cycles × subscribers.
	if polled > 8 {
		t.Errorf("%d fetches across ~5 cycles for 3 subscribers — polling is per-subscription", polled)
	}

	// Every subscriber still saw prices events.
	for i, sub := range subs {
		evs := collect(sub, 10*time.Millisecond)
		found := false
		for _, ev := range evs {
			if ev.Type == EventPrices {
				found = true
			}
		}
		if !found {
			t.Errorf("subscriber %d received no prices events", i)
		}
	}
}

func TestRefcounts_ReleaseSymbols(t *testing.T) {
	src := newFakeSource(map[string]float64{"X.NS": 100})
	b, cancel := newTestBroadcaster(t, src)
	defer cancel()

	s1, _ := b.Subscribe(context.Background(), []string{"X.NS"})
	s2, _ := b.Subscribe(context.Background(), []string{"X.NS"})
	s1.Close()

	b.mu.Lock()
	refs := b.refs["X.NS"]
	b.mu.Unlock()
	if refs != 1 {
		t.Fatalf("refs after one close = %d, want 1", refs)
	}

	s2.Close()
	b.mu.Lock()
	_, still := b.refs["X.NS"]
	b.mu.Unlock()
	if still {
		t.Fatal("symbol still referenced after all subscribers closed")
	}
}
