package alerts

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockpulse/internal/model"
)

// MemoryRepository is the in-process alert store. State lives from
// process start to shutdown; durability is explicitly not provided.
type MemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]model.Alert
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{alerts: make(map[string]model.Alert)}
}

func (r *MemoryRepository) Insert(_ context.Context, a model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[a.ID] = a
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alerts[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]model.Alert, error) {
	r.mu.RLock()
	out := make([]model.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matches(a model.Alert, f Filter) bool {
	switch f {
	case FilterActive:
		return a.IsActive && !a.IsTriggered
	case FilterTriggered:
		return a.IsTriggered
	default:
		return true
	}
}

func (r *MemoryRepository) SetActive(_ context.Context, id string, active bool, now time.Time) (model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	a.IsActive = active
	a.UpdatedAt = now
	r.alerts[id] = a
	return a, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return ErrNotFound
	}
	delete(r.alerts, id)
	return nil
}

func (r *MemoryRepository) MarkTriggered(_ context.Context, id string, price float64, now time.Time) (model.Alert, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return model.Alert{}, false, ErrNotFound
	}
	if a.IsTriggered {
		return a, false, nil
	}
	a.IsTriggered = true
	a.TriggeredAt = &now
	a.LastObserved = &price
	a.UpdatedAt = now
	r.alerts[id] = a
	return a, true, nil
}

func (r *MemoryRepository) RecordObservation(_ context.Context, id string, price float64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return ErrNotFound
	}
	if a.IsTriggered {
		return nil
	}
	a.LastObserved = &price
	a.UpdatedAt = now
	r.alerts[id] = a
	return nil
}
