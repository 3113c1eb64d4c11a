package model

import (
	"time"
)

const (
	PropertyStatusPending   = "pending"
	PropertyStatusApproved  = "approved"
	PropertyStatusRejected  = "rejected"
	PropertyStatusAvailable = "available"
	PropertyStatusAssigned  = "assigned"
	PropertyStatusBooked    = "booked"
)

// BookableStatuses are the property statuses that admit new booking
// requests.
var BookableStatuses = []string{PropertyStatusAvailable, PropertyStatusApproved}

// AvailabilityWindow is a date range during which the property can be
// rented.
type AvailabilityWindow struct {
	StartDate time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
}

// Property invariant: AssignedTo is set if and only if Status is
// assigned or booked.
type Property struct {
	ID           string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title        string               `json:"title" bson:"title" validate:"required,min=2,max=150"`
	Description  string               `json:"description" bson:"description" validate:"required,min=2,max=5000"`
	Location     string               `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Price        float64              `json:"price" bson:"price" validate:"required,gt=0"`
	Availability []AvailabilityWindow `json:"availability,omitempty" bson:"availability,omitempty" validate:"omitempty,dive"`
	Images       []string             `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,dive,max=500"`
	OwnerID      string               `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Status       string               `json:"status" bson:"status" validate:"required,oneof=pending approved rejected available assigned booked"`
	AssignedTo   string               `json:"assigned_to,omitempty" bson:"assigned_to,omitempty" validate:"omitempty,mongodb"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// PropertyUpdate carries the owner-editable subset of Property fields.
type PropertyUpdate struct {
	Title        string               `json:"title,omitempty" validate:"omitempty,min=2,max=150"`
	Description  string               `json:"description,omitempty" validate:"omitempty,min=2,max=5000"`
	Location     string               `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	Price        *float64             `json:"price,omitempty" validate:"omitempty,gt=0"`
	Availability []AvailabilityWindow `json:"availability,omitempty" validate:"omitempty,dive"`
	Images       []string             `json:"images,omitempty" validate:"omitempty,dive,max=500"`
}

// PropertyFilter narrows property listings; zero values mean "no
// constraint".
type PropertyFilter struct {
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Location string   `json:"location,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
}

// StatusCarriesAssignment reports whether a property status implies a
// tenant assignment.
func StatusCarriesAssignment(status string) bool {
	return status == PropertyStatusAssigned || status == PropertyStatusBooked
}
