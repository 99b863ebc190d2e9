package alerts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stockpulse/internal/markethours"
	"stockpulse/internal/model"
)

// Service is the alert management surface. It validates requests,
// generates ids and timestamps, and delegates storage to the injected
// Repository.
type Service struct {
	repo  Repository
	clock markethours.Clock
}

// NewService creates an alert Service on the given repository.
func NewService(repo Repository, clock markethours.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

// Repo exposes the underlying repository for the evaluator.
func (s *Service) Repo() Repository { return s.repo }

// Create registers a new alert. The alert starts active and
// untriggered. Rejected with a ValidationError for an empty symbol, an
// unknown alert type, or a non-positive target value.
func (s *Service) Create(ctx context.Context, symbol, displayName string, typ model.AlertType, target float64) (model.Alert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.Alert{}, &ValidationError{Reason: "symbol is required"}
	}
	if !typ.Valid() {
		return model.Alert{}, &ValidationError{Reason: "unknown alert type " + string(typ)}
	}
	if target <= 0 {
		return model.Alert{}, &ValidationError{Reason: "target value must be positive"}
	}

	now := s.clock.Now()
	a := model.Alert{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		DisplayName: displayName,
		Type:        typ,
		TargetValue: target,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.DisplayName == "" {
		a.DisplayName = symbol
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

// List returns alerts matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Alert, error) {
	return s.repo.List(ctx, f)
}

// SetActive pauses or resumes an alert. Resuming a triggered alert does
// not re-arm it — triggered is terminal.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (model.Alert, error) {
	return s.repo.SetActive(ctx, id, active, s.clock.Now())
}

// Delete removes an alert permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
