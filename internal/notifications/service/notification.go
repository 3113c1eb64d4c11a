package service

import (
	"context"
	"errors"
	"time"

	notificationserrors "renthub/internal/notifications/errors"
	"renthub/internal/notifications/repository"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/events"
	"renthub/pkg/model"
)

// Notifier is the fan-out sink consumed by the lifecycle engines.
// Notify never returns an error: delivery is best-effort and a failed
// notification must not fail the state transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID, message, notificationType, relatedID string)
}

type NotificationService interface {
	Notifier
	GetByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	OwnerHint(ctx context.Context, propertyID, excludeUserID string) (string, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher events.Publisher
	cfg       *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, publisher events.Publisher, cfg *config.Config) NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, message, notificationType, relatedID string) {
	userID = model.NormalizeID(userID)
	if !model.IsValidID(userID) || message == "" {
		s.cfg.Log.Warn("Dropping notification with invalid recipient or empty message",
			"user_id", userID,
			"type", notificationType,
		)
		return
	}

	notification := &model.Notification{
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		RelatedID: model.NormalizeID(relatedID),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.cfg.Log.Warn("Failed to deliver notification",
			"user_id", userID,
			"type", notificationType,
			"related_id", relatedID,
			"error", err,
		)
		return
	}

	if err := s.publisher.Publish(ctx, events.LifecycleEvent{
		Type:       events.TypeNotificationCreated,
		PropertyID: notification.RelatedID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.cfg.Log.Warn("Failed to publish notification event", "error", err)
	}
}

func (s *notificationService) GetByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	notifications, err := s.repo.FindByUser(ctx, userID, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to list notifications", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	// Recipient check runs before any write; a forbidden caller must
	// leave the notification untouched.
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotificationError(id, err)
	}
	if notification.UserID != userID {
		return nil, apperrors.Forbidden("notification belongs to a different user")
	}

	updated, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return nil, translateNotificationError(id, err)
	}
	return updated, nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return apperrors.Internal("Failed to mark notifications read", err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal("Failed to count unread notifications", err)
	}
	return count, nil
}

func (s *notificationService) OwnerHint(ctx context.Context, propertyID, excludeUserID string) (string, error) {
	return s.repo.FindOwnerHint(ctx, propertyID, excludeUserID)
}

func translateNotificationError(id string, err error) error {
	if errors.Is(err, notificationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Notification", id)
	}
	if errors.Is(err, notificationserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid notification ID format")
	}
	return apperrors.Internal("Failed to mark notification read", err)
}
