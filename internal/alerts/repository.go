// Package alerts holds the alert store and the evaluation sweep that
// transitions alerts to triggered against live quotes.
package alerts

import (
	"context"
	"time"

	"stockpulse/internal/model"
)

// Filter selects which alerts a listing returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"    // isActive && !isTriggered
	FilterTriggered Filter = "triggered" // isTriggered
)

// ParseFilter maps a query string to a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterActive, FilterTriggered:
		return Filter(s)
	default:
		return FilterAll
	}
}

// Repository is the persistence boundary for alerts. All alert
// mutation goes through it; nothing touches an Alert directly.
//
// MarkTriggered and RecordObservation carry the at-most-once-trigger
// guarantee: both are no-ops on an already-triggered alert, and
// MarkTriggered reports via its bool whether this call won the
// transition. Implementations must make that check-and-set atomic per
// alert id so concurrent sweeps cannot double-trigger.
type Repository interface {
	Insert(ctx context.Context, a model.Alert) error
	Get(ctx context.Context, id string) (model.Alert, error)

	// List returns alerts matching the filter, newest first (createdAt
	// descending).
	List(ctx context.Context, f Filter) ([]model.Alert, error)

	SetActive(ctx context.Context, id string, active bool, now time.Time) (model.Alert, error)
	Delete(ctx context.Context, id string) error

	// MarkTriggered atomically flips an untriggered alert to triggered,
	// recording the trigger time and price. Returns the updated alert
	// and true if this call performed the transition; false if the
	// alert was already triggered.
	MarkTriggered(ctx context.Context, id string, price float64, now time.Time) (model.Alert, bool, error)

	// RecordObservation stores the latest evaluated price as the
	// percent-change baseline. No-op once the alert is triggered.
	RecordObservation(ctx context.Context, id string, price float64, now time.Time) error
}
