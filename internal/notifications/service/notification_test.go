package service

import (
	"context"
	"io"
	"testing"

	notificationserrors "renthub/internal/notifications/errors"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/model"
)

const (
	recipientID = "64c000000000000000000001"
	strangerID  = "64c000000000000000000002"
	relatedID   = "64c000000000000000000003"
)

type stubRepo struct {
	CreateFn        func(ctx context.Context, notification *model.Notification) error
	FindByIDFn      func(ctx context.Context, id string) (*model.Notification, error)
	FindOwnerHintFn func(ctx context.Context, propertyID, excludeUserID string) (string, error)

	markedRead int
}

func (s *stubRepo) Create(ctx context.Context, notification *model.Notification) error {
	if s.CreateFn == nil {
		return nil
	}
	return s.CreateFn(ctx, notification)
}

func (s *stubRepo) FindByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	return nil, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	if s.FindByIDFn == nil {
		return nil, notificationserrors.ErrNotFound
	}
	return s.FindByIDFn(ctx, id)
}

func (s *stubRepo) MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	notification, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, notificationserrors.ErrNotFound
	}
	s.markedRead++
	notification.IsRead = true
	return notification, nil
}

func (s *stubRepo) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (s *stubRepo) CountUnread(ctx context.Context, userID string) (int64, error) { return 0, nil }

func (s *stubRepo) FindOwnerHint(ctx context.Context, propertyID, excludeUserID string) (string, error) {
	if s.FindOwnerHintFn == nil {
		return "", nil
	}
	return s.FindOwnerHintFn(ctx, propertyID, excludeUserID)
}

func newService(repo *stubRepo) NotificationService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard, Format: logger.TEXT}),
	}
	return NewNotificationService(repo, nil, cfg)
}

func TestNotifyPersists(t *testing.T) {
	var created *model.Notification
	repo := &stubRepo{
		CreateFn: func(ctx context.Context, notification *model.Notification) error {
			created = notification
			return nil
		},
	}
	svc := newService(repo)

	svc.Notify(context.Background(), recipientID, "hello", model.NotificationTypeGeneral, relatedID)

	if created == nil {
		t.Fatal("expected notification to be persisted")
	}
	if created.UserID != recipientID || created.Message != "hello" {
		t.Errorf("unexpected notification: %+v", created)
	}
}

func TestNotifyDropsInvalidRecipient(t *testing.T) {
	repo := &stubRepo{
		CreateFn: func(ctx context.Context, notification *model.Notification) error {
			t.Error("invalid recipient must not reach the store")
			return nil
		},
	}
	svc := newService(repo)

	svc.Notify(context.Background(), "not-an-id", "hello", model.NotificationTypeGeneral, relatedID)
	svc.Notify(context.Background(), recipientID, "", model.NotificationTypeGeneral, relatedID)
}

func TestNotifySwallowsStoreFailure(t *testing.T) {
	repo := &stubRepo{
		CreateFn: func(ctx context.Context, notification *model.Notification) error {
			return context.DeadlineExceeded
		},
	}
	svc := newService(repo)

	// Must not panic or propagate anything.
	svc.Notify(context.Background(), recipientID, "hello", model.NotificationTypeGeneral, relatedID)
}

func TestMarkAsReadChecksRecipient(t *testing.T) {
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Notification, error) {
			return &model.Notification{ID: id, UserID: recipientID}, nil
		},
	}
	svc := newService(repo)

	notification, err := svc.MarkAsRead(context.Background(), relatedID, recipientID)
	if err != nil {
		t.Fatalf("recipient must be allowed: %v", err)
	}
	if !notification.IsRead {
		t.Error("expected notification to be marked read")
	}
	if repo.markedRead != 1 {
		t.Fatalf("expected one store mutation, got %d", repo.markedRead)
	}

	_, err = svc.MarkAsRead(context.Background(), relatedID, strangerID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if repo.markedRead != 1 {
		t.Fatalf("forbidden caller must not mutate the store, got %d mutations", repo.markedRead)
	}
}

func TestMarkAsReadNotFound(t *testing.T) {
	svc := newService(&stubRepo{})

	_, err := svc.MarkAsRead(context.Background(), relatedID, recipientID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
