package errors

import "errors"

var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid booking id")
	// ErrDuplicate surfaces the unique (property_id, user_id) index: a
	// user already holds a live booking on the property.
	ErrDuplicate = errors.New("duplicate booking for property and user")
)
