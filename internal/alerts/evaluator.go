package alerts

import (
	"context"
	"log/slog"
	"time"

	"stockpulse/internal/markethours"
	"stockpulse/internal/metrics"
	"stockpulse/internal/model"
	"stockpulse/internal/notification"
	"stockpulse/internal/quotes"
)

// ShouldTrigger evaluates one alert condition against the current
// price. For percent-change types, previous is the price baseline from
// the prior evaluation pass; with no baseline yet they never trigger
// (the first pass only records one).
func ShouldTrigger(typ model.AlertType, currentPrice, targetValue float64, previous *float64) bool {
	switch typ {
	case model.PriceAbove:
		return currentPrice >= targetValue
	case model.PriceBelow:
		return currentPrice <= targetValue
	case model.PercentUp:
		if previous == nil || *previous == 0 {
			return false
		}
		return (currentPrice-*previous) / *previous * 100 >= targetValue
	case model.PercentDown:
		if previous == nil || *previous == 0 {
			return false
		}
		return (*previous-currentPrice) / *previous * 100 >= targetValue
	default:
		return false
	}
}

// SweepResult summarizes one evaluation sweep.
type SweepResult struct {
	Checked   int           `json:"checked"`
	Failed    int           `json:"failed"`
	Triggered []model.Alert `json:"triggered"`
}

// Evaluator runs evaluation sweeps over the active alerts. Sweeps are
// invoked externally (cron or the on-demand endpoint) and may run
// concurrently; the repository's atomic transition keeps each alert
// at-most-once regardless.
type Evaluator struct {
	repo     Repository
	src      quotes.Source
	notifier notification.Notifier // nil disables notifications
	clock    markethours.Clock
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewEvaluator wires an evaluator. notifier may be nil.
func NewEvaluator(repo Repository, src quotes.Source, notifier notification.Notifier, clock markethours.Clock, m *metrics.Metrics, log *slog.Logger) *Evaluator {
	return &Evaluator{repo: repo, src: src, notifier: notifier, clock: clock, metrics: m, log: log}
}

// Sweep fetches a fresh quote for every active, untriggered alert and
// applies the trigger state machine. A failed fetch leaves that alert
// untouched for this cycle; the failure only shows up in the aggregate
// count.
func (e *Evaluator) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	e.metrics.SweepsTotal.Inc()
	defer func() {
		e.metrics.SweepDur.Observe(time.Since(start).Seconds())
	}()

	active, err := e.repo.List(ctx, FilterActive)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Checked: len(active), Triggered: []model.Alert{}}
	e.metrics.AlertsCheckedTotal.Add(float64(len(active)))

	for _, a := range active {
		q, err := e.src.Fetch(ctx, a.Symbol)
		if err != nil {
			res.Failed++
			e.metrics.QuoteFetchErrors.Inc()
			e.log.Warn("sweep: quote fetch failed, skipping alert",
				"alert", a.ID, "symbol", a.Symbol, "err", err)
			continue
		}
		e.metrics.QuoteFetchesTotal.Inc()

		if !ShouldTrigger(a.Type, q.Price, a.TargetValue, a.LastObserved) {
			if err := e.repo.RecordObservation(ctx, a.ID, q.Price, e.clock.Now()); err != nil && err != ErrNotFound {
				e.log.Warn("sweep: baseline update failed", "alert", a.ID, "err", err)
			}
			continue
		}

		updated, won, err := e.repo.MarkTriggered(ctx, a.ID, q.Price, e.clock.Now())
		if err != nil {
			if err != ErrNotFound { // deleted mid-sweep
				e.log.Warn("sweep: trigger transition failed", "alert", a.ID, "err", err)
			}
			continue
		}
		if !won {
			// A concurrent sweep got there first.
			continue
		}

		res.Triggered = append(res.Triggered, updated)
		e.metrics.AlertsTriggeredTotal.Inc()
		e.log.Info("alert triggered",
			"alert", updated.ID, "symbol", updated.Symbol,
			"type", updated.Type, "target", updated.TargetValue, "price", q.Price)

		if e.notifier != nil {
			if err := e.notifier.Send(ctx, notification.ForTriggeredAlert(updated, q.Price)); err != nil {
				e.log.Warn("sweep: notification failed", "alert", updated.ID, "err", err)
			}
		}
	}

	return res, nil
}
