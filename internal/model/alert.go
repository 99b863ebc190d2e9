package model

import "time"

// AlertType enumerates the supported alert conditions.
type AlertType string

const (
	PriceAbove  AlertType = "PRICE_ABOVE"
	PriceBelow  AlertType = "PRICE_BELOW"
	PercentUp   AlertType = "PERCENT_UP"
	PercentDown AlertType = "PERCENT_DOWN"
)

// Valid reports whether t is one of the enumerated alert types.
func (t AlertType) Valid() bool {
	switch t {
	case PriceAbove, PriceBelow, PercentUp, PercentDown:
		return true
	}
	return false
}

// Alert is a standing price condition that fires at most once.
//
// State machine: an alert starts active and untriggered. The evaluator
// may flip IsTriggered to true exactly once; that transition is terminal
// and removes the alert from further evaluation. IsActive=false with
// IsTriggered=false means paused — excluded from sweeps but resumable.
type Alert struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol"`
	DisplayName  string     `json:"name"`
	Type         AlertType  `json:"alertType"`
	TargetValue  float64    `json:"targetValue"`
	LastObserved *float64   `json:"lastObservedValue,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsTriggered  bool       `json:"isTriggered"`
	TriggeredAt  *time.Time `json:"triggeredAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
