package validator

import (
	"strings"
	"testing"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
)

func TestValidateRequest(t *testing.T) {
	v := NewBookingValidator()

	tests := []struct {
		name    string
		request model.BookingRequest
		wantErr bool
	}{
		{
			name:    "valid",
			request: model.BookingRequest{PropertyID: "64a000000000000000000001", Message: "hello"},
		},
		{
			name:    "valid without message",
			request: model.BookingRequest{PropertyID: "64a000000000000000000001"},
		},
		{
			name:    "missing property id",
			request: model.BookingRequest{Message: "hello"},
			wantErr: true,
		},
		{
			name:    "malformed property id",
			request: model.BookingRequest{PropertyID: "not-an-object-id"},
			wantErr: true,
		},
		{
			name: "message too long",
			request: model.BookingRequest{
				PropertyID: "64a000000000000000000001",
				Message:    strings.Repeat("x", 501),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(&tt.request)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeValidation) {
					t.Fatalf("expected VALIDATION_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDecision(t *testing.T) {
	v := NewBookingValidator()

	for _, status := range []string{model.BookingStatusApproved, model.BookingStatusRejected} {
		if err := v.ValidateDecision(&model.BookingDecision{Status: status}); err != nil {
			t.Errorf("status %q: unexpected error: %v", status, err)
		}
	}

	for _, status := range []string{"", "pending", "cancelled", "banana"} {
		err := v.ValidateDecision(&model.BookingDecision{Status: status})
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("status %q: expected VALIDATION_ERROR, got %v", status, err)
		}
	}
}
