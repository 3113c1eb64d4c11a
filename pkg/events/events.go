// Package events publishes booking lifecycle events to Kafka. Delivery
// is always best-effort: the triggering state transition never waits on
// or fails with the event stream.
package events

import (
	"context"
	"time"
)

const (
	TypeBookingApproved       = "booking.approved"
	TypeBookingRejected       = "booking.rejected"
	TypeBookingCancelled      = "booking.cancelled"
	TypePropertyStatusChanged = "property.status_changed"
	TypePropertyAssigned      = "property.assigned"
	TypeNotificationCreated   = "notification.created"
)

// LifecycleEvent is the payload published for every booking/property
// state transition. PropertyID doubles as the partition key so events
// for one property stay ordered.
type LifecycleEvent struct {
	Type       string    `json:"type"`
	PropertyID string    `json:"property_id,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
	Close() error
}

// NopPublisher drops all events. Used when the event stream is
// disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event LifecycleEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
