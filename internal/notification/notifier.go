// Package notification delivers triggered-alert messages to external
// channels (Telegram, webhooks) on a best-effort basis: a failed
// delivery never rolls back the trigger.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"stockpulse/internal/model"
)

// Message is one outbound notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers a message. Returns error if delivery fails.
	Send(ctx context.Context, msg Message) error
}

// ForTriggeredAlert builds the message for an alert that just fired.
func ForTriggeredAlert(a model.Alert, price float64) Message {
	var cond string
	switch a.Type {
	case model.PriceAbove:
		cond = fmt.Sprintf("rose above %.2f", a.TargetValue)
	case model.PriceBelow:
		cond = fmt.Sprintf("fell below %.2f", a.TargetValue)
	case model.PercentUp:
		cond = fmt.Sprintf("gained %.2f%% since the last check", a.TargetValue)
	case model.PercentDown:
		cond = fmt.Sprintf("lost %.2f%% since the last check", a.TargetValue)
	}
	return Message{
		Title: fmt.Sprintf("Alert: %s", a.DisplayName),
		Body:  fmt.Sprintf("%s %s (current price %.2f)", a.Symbol, cond, price),
	}
}

// LogNotifier writes messages to the structured log (useful in
// development and as the default backend).
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.Log.Info("alert notification", "title", msg.Title, "body", msg.Body)
	return nil
}

// Multi fans one message out to several backends, returning the first
// error after attempting all of them.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, msg Message) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}
