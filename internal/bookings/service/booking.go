package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "renthub/internal/bookings/errors"
	"renthub/internal/bookings/repository"
	"renthub/internal/bookings/validator"
	notificationservice "renthub/internal/notifications/service"
	propertieserrors "renthub/internal/properties/errors"
	propertiesrepository "renthub/internal/properties/repository"
	"renthub/pkg/config"
	dbmongo "renthub/pkg/db/mongo"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/events"
	"renthub/pkg/middleware"
	"renthub/pkg/model"
	"renthub/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	// Create admits a booking request. When the property is open the
	// request is approved immediately: the property reservation is a
	// single conditional update, so exactly one of any number of
	// concurrent callers wins and every loser gets a conflict.
	Create(ctx context.Context, actor middleware.Identity, request *model.BookingRequest) (*model.Booking, error)

	// Decide applies an owner or admin verdict to a pending booking.
	// Pending rows predate immediate approval and are drained through
	// this path.
	Decide(ctx context.Context, actor middleware.Identity, bookingID string, decision *model.BookingDecision) (*model.Booking, error)

	Cancel(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error)

	// ResolveOwner returns the (requester, owner) pair for a booking,
	// recovering a missing owner reference through the fallback chain.
	ResolveOwner(ctx context.Context, bookingID, requesterID string) (*model.BookingParticipants, error)

	GetByID(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error)
	GetByProperty(ctx context.Context, actor middleware.Identity, propertyID string) ([]*model.Booking, error)
	GetByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	GetOwnerRequests(ctx context.Context, ownerID string) ([]*model.Booking, error)
}

type bookingService struct {
	repo          repository.BookingRepository
	properties    propertiesrepository.PropertyRepository
	validator     *validator.BookingValidator
	notifications notificationservice.NotificationService
	publisher     events.Publisher
	txManager     dbmongo.TransactionManager
	cfg           *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	properties propertiesrepository.PropertyRepository,
	bookingValidator *validator.BookingValidator,
	notifications notificationservice.NotificationService,
	publisher events.Publisher,
	txManager dbmongo.TransactionManager,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:          repo,
		properties:    properties,
		validator:     bookingValidator,
		notifications: notifications,
		publisher:     publisher,
		txManager:     txManager,
		cfg:           cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, actor middleware.Identity, request *model.BookingRequest) (*model.Booking, error) {
	request.PropertyID = model.NormalizeID(request.PropertyID)
	request.Message = sanitizer.NormalizeMessage(request.Message)
	if err := s.validator.ValidateRequest(request); err != nil {
		return nil, err
	}

	property, err := s.properties.FindByID(ctx, request.PropertyID)
	if err != nil {
		return nil, translatePropertyError(request.PropertyID, err)
	}

	if property.OwnerID == actor.UserID {
		return nil, apperrors.InvalidOperation("cannot book your own property")
	}

	if _, err := s.repo.FindApprovedByProperty(ctx, property.ID); err == nil {
		return nil, apperrors.Conflict("Property is already rented")
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	if _, err := s.repo.FindByPropertyAndUser(ctx, property.ID, actor.UserID); err == nil {
		return nil, apperrors.Conflict("You already have a booking for this property")
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	// The reservation race is decided here and only here. Both checks
	// above are advisory fast paths; a concurrent winner between them
	// and this update still loses nothing, because the conditional
	// filter no longer matches.
	reserved, err := s.properties.Reserve(ctx, property.ID, actor.UserID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotReservable) {
			return nil, apperrors.Conflict("Property is already booked by another user")
		}
		return nil, apperrors.Internal("Failed to reserve property", err)
	}

	booking := &model.Booking{
		PropertyID: property.ID,
		UserID:     actor.UserID,
		OwnerID:    property.OwnerID,
		Status:     model.BookingStatusApproved,
		Message:    request.Message,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.releaseReservation(ctx, property)
		if errors.Is(err, bookingserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("You already have a booking for this property")
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.rejectCompetitors(ctx, reserved, booking.ID)

	s.notifications.Notify(ctx, property.OwnerID,
		fmt.Sprintf("New booking request received for your property %q. It has been booked.", property.Title),
		model.NotificationTypeStatusUpdate, property.ID)
	s.notifications.Notify(ctx, actor.UserID,
		fmt.Sprintf("Your booking for %q has been approved.", property.Title),
		model.NotificationTypeStatusUpdate, property.ID)

	s.publish(ctx, events.LifecycleEvent{
		Type:       events.TypeBookingApproved,
		PropertyID: property.ID,
		BookingID:  booking.ID,
		UserID:     actor.UserID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking created and approved",
		"booking_id", booking.ID,
		"property_id", property.ID,
		"user_id", actor.UserID,
	)
	return booking, nil
}

func (s *bookingService) Decide(ctx context.Context, actor middleware.Identity, bookingID string, decision *model.BookingDecision) (*model.Booking, error) {
	bookingID = model.NormalizeID(bookingID)
	if err := s.validator.ValidateDecision(decision); err != nil {
		return nil, err
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, translateBookingError(bookingID, err)
	}

	participants, err := s.resolveParticipants(ctx, booking)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && actor.UserID != participants.BookingOwnerID {
		return nil, apperrors.Forbidden("only the property owner or an admin may decide a booking")
	}

	if booking.Status != model.BookingStatusPending {
		return nil, apperrors.InvalidOperation(
			fmt.Sprintf("booking is %s; only pending bookings can be decided", booking.Status))
	}

	property, err := s.properties.FindByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, translatePropertyError(booking.PropertyID, err)
	}

	var decided *model.Booking

	switch decision.Status {
	case model.BookingStatusApproved:
		// The reservation and the booking transition commit together:
		// a booking must never read approved while the property stayed
		// unreserved, and vice versa.
		err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			reserved, err := s.properties.Reserve(sessCtx, booking.PropertyID, booking.UserID)
			if err != nil {
				if errors.Is(err, propertieserrors.ErrNotReservable) {
					return apperrors.Conflict("Property is already booked by another user")
				}
				return apperrors.Internal("Failed to reserve property", err)
			}

			decided, err = s.repo.UpdateStatusFrom(sessCtx, booking.ID,
				[]string{model.BookingStatusPending}, model.BookingStatusApproved)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrNotFound) {
					return apperrors.Conflict("Booking was decided concurrently")
				}
				return apperrors.Internal("Failed to update booking status", err)
			}

			property = reserved
			return nil
		})
		if err != nil {
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.Internal("Failed to approve booking", err)
		}

		s.rejectCompetitors(ctx, property, booking.ID)

		s.notifications.Notify(ctx, participants.BookingOwnerID,
			fmt.Sprintf("You approved a booking request for %q.", property.Title),
			model.NotificationTypeStatusUpdate, property.ID)

	case model.BookingStatusRejected:
		decided, err = s.repo.UpdateStatusFrom(ctx, booking.ID,
			[]string{model.BookingStatusPending}, model.BookingStatusRejected)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return nil, apperrors.Conflict("Booking was decided concurrently")
			}
			return nil, apperrors.Internal("Failed to update booking status", err)
		}

	default:
		return nil, apperrors.Validation(fmt.Sprintf("invalid decision status %q", decision.Status), nil)
	}

	s.notifications.Notify(ctx, participants.BookingUserID,
		fmt.Sprintf("Your booking for %q has been %s.", property.Title, decided.Status),
		model.NotificationTypeStatusUpdate, property.ID)

	eventType := events.TypeBookingRejected
	if decided.Status == model.BookingStatusApproved {
		eventType = events.TypeBookingApproved
	}
	s.publish(ctx, events.LifecycleEvent{
		Type:       eventType,
		PropertyID: booking.PropertyID,
		BookingID:  booking.ID,
		UserID:     participants.BookingUserID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking decided",
		"booking_id", booking.ID,
		"status", decided.Status,
		"actor_id", actor.UserID,
	)
	return decided, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error) {
	bookingID = model.NormalizeID(bookingID)

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, translateBookingError(bookingID, err)
	}

	if booking.UserID != actor.UserID {
		return nil, apperrors.Forbidden("only the requester may cancel a booking")
	}

	if booking.Status != model.BookingStatusPending {
		return nil, apperrors.InvalidOperation(
			fmt.Sprintf("booking is %s; only pending bookings can be cancelled", booking.Status))
	}

	cancelled, err := s.repo.UpdateStatusFrom(ctx, booking.ID,
		[]string{model.BookingStatusPending}, model.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.Conflict("Booking was decided concurrently")
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.notifications.Notify(ctx, actor.UserID,
		"Your booking request has been cancelled.",
		model.NotificationTypeStatusUpdate, booking.PropertyID)

	// Owner notification rides on recovery; an unresolvable owner must
	// not block the cancellation itself.
	if participants, resolveErr := s.resolveParticipants(ctx, cancelled); resolveErr == nil {
		s.notifications.Notify(ctx, participants.BookingOwnerID,
			"A booking request received for your property has been cancelled by the requester.",
			model.NotificationTypeStatusUpdate, booking.PropertyID)
	} else {
		s.cfg.Log.Warn("Skipping owner cancellation notice",
			"booking_id", booking.ID, "error", resolveErr)
	}

	s.publish(ctx, events.LifecycleEvent{
		Type:       events.TypeBookingCancelled,
		PropertyID: booking.PropertyID,
		BookingID:  booking.ID,
		UserID:     actor.UserID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})

	return cancelled, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error) {
	bookingID = model.NormalizeID(bookingID)

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, translateBookingError(bookingID, err)
	}

	if actor.IsAdmin() || booking.UserID == actor.UserID {
		return booking, nil
	}

	participants, err := s.resolveParticipants(ctx, booking)
	if err != nil || participants.BookingOwnerID != actor.UserID {
		return nil, apperrors.Forbidden("booking belongs to a different user")
	}

	return booking, nil
}

func (s *bookingService) GetByProperty(ctx context.Context, actor middleware.Identity, propertyID string) ([]*model.Booking, error) {
	propertyID = model.NormalizeID(propertyID)

	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, translatePropertyError(propertyID, err)
	}

	if !actor.IsAdmin() && property.OwnerID != actor.UserID {
		return nil, apperrors.Forbidden("only the property owner or an admin may list property bookings")
	}

	bookings, err := s.repo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GetByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	userID = model.NormalizeID(userID)
	if !model.IsValidID(userID) {
		return nil, apperrors.InvalidInput("Invalid user ID format")
	}

	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GetOwnerRequests(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	ownerID = model.NormalizeID(ownerID)
	if !model.IsValidID(ownerID) {
		return nil, apperrors.InvalidInput("Invalid owner ID format")
	}

	bookings, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list owner booking requests", err)
	}
	return bookings, nil
}

// rejectCompetitors closes out every other pending booking on a freshly
// reserved property and tells each losing requester. Failures only log:
// the winner's transition already committed.
func (s *bookingService) rejectCompetitors(ctx context.Context, property *model.Property, winnerID string) {
	losers, err := s.repo.RejectOtherPending(ctx, property.ID, winnerID)
	if err != nil {
		s.cfg.Log.Error("Failed to reject competing bookings",
			"property_id", property.ID, "winner_id", winnerID, "error", err)
		return
	}

	for _, loser := range losers {
		s.notifications.Notify(ctx, loser.UserID,
			fmt.Sprintf("Your booking request for %q was rejected because the property is no longer available.", property.Title),
			model.NotificationTypeStatusUpdate, property.ID)
	}
}

// releaseReservation compensates a reservation whose booking insert
// failed, restoring the property's pre-reservation status.
func (s *bookingService) releaseReservation(ctx context.Context, property *model.Property) {
	if err := s.properties.Release(ctx, property.ID, property.Status); err != nil {
		s.cfg.Log.Error("Failed to release property reservation",
			"property_id", property.ID, "error", err)
	}
}

func (s *bookingService) publish(ctx context.Context, event events.LifecycleEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish lifecycle event",
			"type", event.Type, "booking_id", event.BookingID, "error", err)
	}
}

func translateBookingError(id string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Booking storage operation failed", err)
}

func translatePropertyError(id string, err error) error {
	if errors.Is(err, propertieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Property", id)
	}
	if errors.Is(err, propertieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid property ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Property storage operation failed", err)
}
