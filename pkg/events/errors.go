package events

import "errors"

var (
	ErrProducerClosed = errors.New("events producer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)
