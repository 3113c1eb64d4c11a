package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
)

// Booking is a rental request. OwnerID denormalizes the property owner
// at booking time; rows written before that field existed may carry an
// empty value and go through owner recovery instead.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	OwnerID    string    `json:"owner_id,omitempty" bson:"owner_id,omitempty" validate:"omitempty,mongodb"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected cancelled"`
	Message    string    `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=500"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingRequest is the creation payload accepted from clients.
type BookingRequest struct {
	PropertyID string `json:"property_id" validate:"required,mongodb"`
	Message    string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// BookingDecision is an owner/admin verdict on a pending booking.
type BookingDecision struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// BookingParticipants is the resolved (requester, owner) pair for a
// booking, after owner recovery if the stored owner was missing.
type BookingParticipants struct {
	BookingUserID  string `json:"booking_user_id"`
	BookingOwnerID string `json:"booking_owner_id"`
}

// IsTerminal reports whether a booking status admits no further
// transitions.
func IsTerminalBookingStatus(status string) bool {
	return status == BookingStatusRejected || status == BookingStatusCancelled
}
