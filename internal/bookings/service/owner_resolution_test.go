package service

import (
	"context"
	"testing"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
)

func legacyBooking() *model.Booking {
	return &model.Booking{
		ID:         testBookingID,
		PropertyID: testPropertyID,
		UserID:     testUserID,
		Status:     model.BookingStatusPending,
	}
}

func TestResolveOwnerFromBooking(t *testing.T) {
	booking := legacyBooking()
	booking.OwnerID = testOwnerID

	properties := &mockPropertyRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			t.Error("chain must short-circuit on the booking's own reference")
			return nil, nil
		},
	}
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
		UpdateOwnerFn: func(ctx context.Context, id, ownerID string) error {
			t.Error("no backfill needed when the reference is already present")
			return nil
		},
	}
	svc := newTestService(bookings, properties, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
	if participants.BookingUserID != testUserID {
		t.Errorf("expected user %q, got %q", testUserID, participants.BookingUserID)
	}
}

func TestResolveOwnerFromProperty(t *testing.T) {
	var backfilled string

	properties := &mockPropertyRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return availableProperty(), nil
		},
	}
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
		UpdateOwnerFn: func(ctx context.Context, id, ownerID string) error {
			backfilled = ownerID
			return nil
		},
	}
	svc := newTestService(bookings, properties, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
	if backfilled != testOwnerID {
		t.Errorf("expected backfill of %q, got %q", testOwnerID, backfilled)
	}
}

func TestResolveOwnerFromSiblingBooking(t *testing.T) {
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
		FindOwnerOnPropertyFn: func(ctx context.Context, propertyID, excludeUserID string) (string, error) {
			if excludeUserID != testUserID {
				t.Errorf("expected requester %q excluded from the sibling lookup, got %q", testUserID, excludeUserID)
			}
			return testOwnerID, nil
		},
	}
	// Property record is gone; the chain falls through to sibling
	// bookings.
	svc := newTestService(bookings, &mockPropertyRepo{}, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
}

func TestResolveOwnerSiblingLookupSkipsRequesterOwnedSibling(t *testing.T) {
	// The newest sibling carries the requester as its owner reference;
	// the lookup must still surface the older sibling's owner.
	siblingOwners := []string{testUserID, testOwnerID}
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
		FindOwnerOnPropertyFn: func(ctx context.Context, propertyID, excludeUserID string) (string, error) {
			for _, ownerID := range siblingOwners {
				if ownerID != excludeUserID && ownerID != "" {
					return ownerID, nil
				}
			}
			return "", nil
		},
	}
	svc := newTestService(bookings, &mockPropertyRepo{}, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
}

func TestResolveOwnerFromNotificationHint(t *testing.T) {
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
	}
	notifications := &mockNotifications{
		OwnerHintFn: func(ctx context.Context, propertyID, excludeUserID string) (string, error) {
			if excludeUserID != testUserID {
				t.Errorf("hint lookup must exclude the requester, got %q", excludeUserID)
			}
			return testOwnerID, nil
		},
	}
	svc := newTestService(bookings, &mockPropertyRepo{}, notifications)

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
}

func TestResolveOwnerSkipsRequesterAsOwner(t *testing.T) {
	// A property record wrongly naming the requester as its owner must
	// not resolve; the chain keeps going.
	property := availableProperty()
	property.OwnerID = testUserID

	properties := &mockPropertyRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return property, nil
		},
	}
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
		FindOwnerOnPropertyFn: func(ctx context.Context, propertyID, excludeUserID string) (string, error) {
			return testOwnerID, nil
		},
	}
	svc := newTestService(bookings, properties, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner returned error: %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
}

func TestResolveOwnerExhaustedChain(t *testing.T) {
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
	}
	svc := newTestService(bookings, &mockPropertyRepo{}, &mockNotifications{})

	_, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if !apperrors.HasCode(err, apperrors.CodeInvalidOperation) {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestResolveOwnerForbiddenForStranger(t *testing.T) {
	booking := legacyBooking()
	booking.OwnerID = testOwnerID

	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	svc := newTestService(bookings, &mockPropertyRepo{}, &mockNotifications{})

	_, err := svc.ResolveOwner(context.Background(), testBookingID, testOtherID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestResolveOwnerBackfillFailureIsNonFatal(t *testing.T) {
	properties := &mockPropertyRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return availableProperty(), nil
		},
	}
	bookings := &mockBookingRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return legacyBooking(), nil
		},
		UpdateOwnerFn: func(ctx context.Context, id, ownerID string) error {
			return context.DeadlineExceeded
		},
	}
	svc := newTestService(bookings, properties, &mockNotifications{})

	participants, err := svc.ResolveOwner(context.Background(), testBookingID, testUserID)
	if err != nil {
		t.Fatalf("ResolveOwner must tolerate a failed backfill, got %v", err)
	}
	if participants.BookingOwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, participants.BookingOwnerID)
	}
}
