package events

import (
	"context"
	"time"
)

const (
	TypeCheckoutCompleted = "checkout.completed"
	TypeCheckoutFailed    = "checkout.failed"
)

type Event struct {
	Type             string    `json:"type"`
	OrderID          int64     `json:"order_id"`
	ExternalOrderKey string    `json:"external_order_key,omitempty"`
	UserID           int64     `json:"user_id"`
	Amount           int64     `json:"amount"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
