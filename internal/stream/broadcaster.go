package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stockpulse/internal/history"
	"stockpulse/internal/markethours"
	"stockpulse/internal/metrics"
	"stockpulse/internal/model"
	"stockpulse/internal/quotes"
	redisstore "stockpulse/internal/store/redis"
)

// Config holds the broadcaster knobs. Zero values take the defaults
// below.
type Config struct {
	PollInterval      time.Duration // default 3s
	HeartbeatInterval time.Duration // default 15s
	FetchTimeout      time.Duration // default 5s, bounds each upstream fetch

	// History, when set, receives one price point per symbol per
	// successful fetch.
	History *history.Window
}

const (
	defaultPollInterval      = 3 * time.Second
	defaultHeartbeatInterval = 15 * time.Second
	defaultFetchTimeout      = 5 * time.Second
)

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	return c
}

// Broadcaster owns the shared poll cycle and the set of live
// subscriptions.
type Broadcaster struct {
	cfg     Config
	src     quotes.Source
	cache   *redisstore.Cache // nil-safe
	clock   markethours.Clock
	metrics *metrics.Metrics
	log     *slog.Logger

	mu   sync.Mutex
	refs map[string]int // distinct symbol -> subscription count
	subs map[*Subscription]struct{}
}

// NewBroadcaster wires a broadcaster. cache may be nil.
func NewBroadcaster(cfg Config, src quotes.Source, cache *redisstore.Cache, clock markethours.Clock, m *metrics.Metrics, log *slog.Logger) *Broadcaster {
	return &Broadcaster{
		cfg:     cfg.withDefaults(),
		src:     src,
		cache:   cache,
		clock:   clock,
		metrics: m,
		log:     log,
		refs:    make(map[string]int),
		subs:    make(map[*Subscription]struct{}),
	}
}

// Subscribe opens a subscription for a nonempty symbol set. The caller
// immediately receives a connected event followed by a prices event
// with whatever quotes resolved (or an error event if none did), after
// which the subscription joins the shared poll cycle and its own
// heartbeat schedule. The caller must Close the subscription on
// transport disconnect.
func (b *Broadcaster) Subscribe(ctx context.Context, symbols []string) (*Subscription, error) {
	norm := normalizeSymbols(symbols)
	if len(norm) == 0 {
		return nil, ErrNoSymbols
	}

	sub := &Subscription{
		symbols: norm,
		events:  make(chan Event, subscriberBuffer),
		done:    make(chan struct{}),
		b:       b,
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	for _, s := range norm {
		b.refs[s]++
	}
	b.metrics.ActiveSubscriptions.Inc()
	b.metrics.PolledSymbols.Set(float64(len(b.refs)))
	b.mu.Unlock()

	b.log.Info("subscription opened", "symbols", norm)

	// Initial burst: connected, then whatever resolved right now.
	b.deliver(sub, Event{Type: EventConnected, Symbols: norm})
	batch := b.fetchAll(ctx, norm)
	b.emitCycle(sub, batch)

	go b.heartbeatLoop(sub)

	return sub, nil
}

// remove is called exactly once per subscription, from Close.
func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	for _, s := range sub.symbols {
		if b.refs[s]--; b.refs[s] <= 0 {
			delete(b.refs, s)
		}
	}
	b.metrics.ActiveSubscriptions.Dec()
	b.metrics.PolledSymbols.Set(float64(len(b.refs)))
	b.log.Info("subscription closed", "symbols", sub.symbols)
}

// Run drives the shared poll cycle. Blocks until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.poll(ctx)
		}
	}
}

// poll fetches every referenced symbol once and fans the cycle out to
// all subscriptions.
func (b *Broadcaster) poll(ctx context.Context) {
	b.mu.Lock()
	symbols := make([]string, 0, len(b.refs))
	for s := range b.refs {
		symbols = append(symbols, s)
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	if len(symbols) == 0 {
		return
	}

	batch := b.fetchAll(ctx, symbols)
	for _, sub := range subs {
		b.emitCycle(sub, batch)
	}
}

// fetchAll fetches the given symbols concurrently, each bounded by the
// fetch timeout. Failed symbols are simply absent from the result.
func (b *Broadcaster) fetchAll(ctx context.Context, symbols []string) map[string]model.Quote {
	var mu sync.Mutex
	out := make(map[string]model.Quote, len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, b.cfg.FetchTimeout)
			defer cancel()

			start := time.Now()
			q, err := b.src.Fetch(fctx, symbol)
			b.metrics.QuoteFetchDur.Observe(time.Since(start).Seconds())
			if err != nil {
				b.metrics.QuoteFetchErrors.Inc()
				b.log.Debug("poll fetch failed", "symbol", symbol, "err", err)
				return
			}
			b.metrics.QuoteFetchesTotal.Inc()

			if err := b.cache.Put(ctx, q); err != nil {
				b.log.Debug("quote cache write failed", "symbol", symbol, "err", err)
			}
			if b.cfg.History != nil {
				b.cfg.History.Record(symbol, model.PricePoint{
					Time:  time.UnixMilli(q.Timestamp).UTC().Format(time.RFC3339),
					Price: q.Price,
				})
			}

			mu.Lock()
			out[symbol] = q
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()
	return out
}

// emitCycle sends one poll cycle's outcome to a subscription: a prices
// event when at least one of its symbols resolved, an error event when
// all of them failed.
func (b *Broadcaster) emitCycle(sub *Subscription, batch map[string]model.Quote) {
	data := make([]model.Quote, 0, len(sub.symbols))
	for _, s := range sub.symbols {
		if q, ok := batch[s]; ok {
			data = append(data, q)
		}
	}

	if len(data) == 0 {
		b.deliver(sub, Event{Type: EventError, Message: "failed to fetch prices"})
		return
	}
	b.deliver(sub, Event{
		Type:      EventPrices,
		Data:      data,
		Timestamp: b.clock.Now().UnixMilli(),
	})
}

func (b *Broadcaster) heartbeatLoop(sub *Subscription) {
	ticker := time.NewTicker(b.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			b.deliver(sub, Event{Type: EventHeartbeat})
		}
	}
}

// deliver pushes an event to one subscription, non-blocking. Events to
// a disconnected or saturated subscriber are dropped.
func (b *Broadcaster) deliver(sub *Subscription, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	select {
	case sub.events <- ev:
		b.metrics.StreamEventsTotal.WithLabelValues(ev.Type).Inc()
	default:
		b.metrics.DroppedEvents.Inc()
	}
}
