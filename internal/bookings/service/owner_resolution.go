package service

import (
	"context"
	"errors"

	propertieserrors "renthub/internal/properties/errors"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
)

// ResolveOwner recovers the (requester, owner) pair for a booking and
// authorizes the caller as one of the two.
func (s *bookingService) ResolveOwner(ctx context.Context, bookingID, requesterID string) (*model.BookingParticipants, error) {
	bookingID = model.NormalizeID(bookingID)
	requesterID = model.NormalizeID(requesterID)

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, translateBookingError(bookingID, err)
	}

	participants, err := s.resolveParticipants(ctx, booking)
	if err != nil {
		return nil, err
	}

	if requesterID != participants.BookingUserID && requesterID != participants.BookingOwnerID {
		return nil, apperrors.Forbidden("caller is not a participant of this booking")
	}

	return participants, nil
}

// resolveParticipants walks the owner fallback chain. Bookings written
// before the owner reference was denormalized carry no owner_id; the
// chain recovers it from progressively weaker sources and backfills the
// result so the next resolution short-circuits at step one.
func (s *bookingService) resolveParticipants(ctx context.Context, booking *model.Booking) (*model.BookingParticipants, error) {
	if !model.IsValidID(booking.UserID) {
		return nil, apperrors.InvalidOperation("invalid booking participants")
	}

	ownerID := s.resolveOwnerID(ctx, booking)
	if ownerID == "" {
		return nil, apperrors.InvalidOperation("invalid booking participants")
	}

	if booking.OwnerID != ownerID {
		// Best-effort: a failed backfill just means the chain runs
		// again next time.
		if err := s.repo.UpdateOwner(ctx, booking.ID, ownerID); err != nil {
			s.cfg.Log.Warn("Failed to backfill booking owner",
				"booking_id", booking.ID, "owner_id", ownerID, "error", err)
		} else {
			booking.OwnerID = ownerID
		}
	}

	return &model.BookingParticipants{
		BookingUserID:  booking.UserID,
		BookingOwnerID: ownerID,
	}, nil
}

func (s *bookingService) resolveOwnerID(ctx context.Context, booking *model.Booking) string {
	// Step 1: the denormalized reference on the booking itself.
	if model.IsValidID(booking.OwnerID) {
		return booking.OwnerID
	}

	// Step 2: the property record.
	property, err := s.properties.FindByID(ctx, booking.PropertyID)
	if err != nil && !errors.Is(err, propertieserrors.ErrNotFound) {
		s.cfg.Log.Warn("Owner recovery: property lookup failed",
			"booking_id", booking.ID, "property_id", booking.PropertyID, "error", err)
	}
	if property != nil && model.IsValidID(property.OwnerID) && property.OwnerID != booking.UserID {
		return property.OwnerID
	}

	// Step 3: another booking on the same property that still carries
	// an owner reference differing from the requester.
	ownerID, err := s.repo.FindOwnerOnProperty(ctx, booking.PropertyID, booking.UserID)
	if err != nil {
		s.cfg.Log.Warn("Owner recovery: sibling booking lookup failed",
			"booking_id", booking.ID, "error", err)
	}
	if model.IsValidID(ownerID) && ownerID != booking.UserID {
		return ownerID
	}

	// Step 4: the recipient of the latest owner-directed notification
	// about the property.
	ownerID, err = s.notifications.OwnerHint(ctx, booking.PropertyID, booking.UserID)
	if err != nil {
		s.cfg.Log.Warn("Owner recovery: notification hint lookup failed",
			"booking_id", booking.ID, "error", err)
	}
	if model.IsValidID(ownerID) && ownerID != booking.UserID {
		return ownerID
	}

	return ""
}
