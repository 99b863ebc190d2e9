// Package quotes fetches point-in-time quotes from the upstream market
// data provider and converts its loosely-shaped payload into the typed
// model.Quote at a strict parse-and-validate boundary.
package quotes

import (
	"context"
	"errors"
	"fmt"

	"stockpulse/internal/model"
)

// ErrUnavailable marks an upstream fetch that failed or timed out.
// Callers recover locally (skip the symbol this cycle) rather than
// treating it as a hard failure.
var ErrUnavailable = errors.New("quote source unavailable")

// Source supplies current quotes. Implementations must be safe for
// concurrent use: the broadcaster and the alert evaluator both call it
// independently.
type Source interface {
	Fetch(ctx context.Context, symbol string) (model.Quote, error)
}

// FormatVolume renders a share volume in Indian units (Cr/L/K),
// matching the display convention of the upstream exchange.
func FormatVolume(v int64) string {
	switch {
	case v >= 1e7:
		return fmt.Sprintf("%.1fCr", float64(v)/1e7)
	case v >= 1e5:
		return fmt.Sprintf("%.1fL", float64(v)/1e5)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", float64(v)/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}
