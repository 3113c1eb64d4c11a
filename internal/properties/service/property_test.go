package service

import (
	"context"
	"io"
	"testing"

	propertieserrors "renthub/internal/properties/errors"
	"renthub/internal/properties/validator"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"
	"renthub/pkg/model"
)

const (
	ownerID = "64b000000000000000000001"
	userID  = "64b000000000000000000002"
	propID  = "64b000000000000000000003"
)

type stubRepo struct {
	CreateFn    func(ctx context.Context, property *model.Property) error
	FindByIDFn  func(ctx context.Context, id string) (*model.Property, error)
	UpdateFn    func(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error)
	DeleteFn    func(ctx context.Context, id string) error
	SetStatusFn func(ctx context.Context, id, status string) (*model.Property, error)
	AssignFn    func(ctx context.Context, id, userID, status string) (*model.Property, error)
}

func (s *stubRepo) Create(ctx context.Context, property *model.Property) error {
	if s.CreateFn == nil {
		return nil
	}
	return s.CreateFn(ctx, property)
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if s.FindByIDFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return s.FindByIDFn(ctx, id)
}

func (s *stubRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) Filter(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) Update(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error) {
	if s.UpdateFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return s.UpdateFn(ctx, id, update)
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	if s.DeleteFn == nil {
		return nil
	}
	return s.DeleteFn(ctx, id)
}

func (s *stubRepo) Reserve(ctx context.Context, id, userID string) (*model.Property, error) {
	return nil, propertieserrors.ErrNotReservable
}

func (s *stubRepo) Release(ctx context.Context, id, previousStatus string) error { return nil }

func (s *stubRepo) SetStatus(ctx context.Context, id, status string) (*model.Property, error) {
	if s.SetStatusFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return s.SetStatusFn(ctx, id, status)
}

func (s *stubRepo) Assign(ctx context.Context, id, userID, status string) (*model.Property, error) {
	if s.AssignFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return s.AssignFn(ctx, id, userID, status)
}

type stubNotifier struct {
	sent []string
}

func (s *stubNotifier) Notify(ctx context.Context, userID, message, notificationType, relatedID string) {
	s.sent = append(s.sent, userID)
}

func newService(repo *stubRepo, notifier *stubNotifier) PropertyService {
	cfg := &config.Config{
		BaseURL: "http://localhost:8080",
		Log:     logger.New(logger.Config{Output: io.Discard, Format: logger.TEXT}),
	}
	return NewPropertyService(repo, validator.NewPropertyValidator(), notifier, nil, cfg)
}

func owner() middleware.Identity {
	return middleware.Identity{UserID: ownerID, Role: middleware.RoleUser}
}

func admin() middleware.Identity {
	return middleware.Identity{UserID: userID, Role: middleware.RoleAdmin}
}

func listedProperty(status string) *model.Property {
	return &model.Property{
		ID:          propID,
		Title:       "City Loft",
		Description: "Bright loft in the center.",
		Location:    "Rotterdam",
		Price:       1500,
		OwnerID:     ownerID,
		Status:      status,
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	var stored *model.Property
	repo := &stubRepo{
		CreateFn: func(ctx context.Context, property *model.Property) error {
			property.ID = propID
			stored = property
			return nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	created, err := svc.Create(context.Background(), owner(), &model.Property{
		Title:       "  City Loft  ",
		Description: "Bright loft in the center.",
		Location:    "rotterdam",
		Price:       1500,
		Status:      model.PropertyStatusAvailable,
		AssignedTo:  userID,
		Images:      []string{"/uploads/a.jpg"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if stored.Status != model.PropertyStatusPending {
		t.Errorf("new listings must enter moderation, got %q", stored.Status)
	}
	if stored.AssignedTo != "" {
		t.Error("a new listing must not carry an assignment")
	}
	if created.OwnerID != ownerID {
		t.Errorf("owner must come from the identity, got %q", created.OwnerID)
	}
	if got := created.Images[0]; got != "http://localhost:8080/uploads/a.jpg" {
		t.Errorf("image not resolved against base URL: %q", got)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(&stubRepo{}, &stubNotifier{})

	_, err := svc.Create(context.Background(), owner(), &model.Property{Title: "x"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateForbiddenForStranger(t *testing.T) {
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return listedProperty(model.PropertyStatusAvailable), nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	stranger := middleware.Identity{UserID: userID, Role: middleware.RoleUser}
	_, err := svc.Update(context.Background(), stranger, propID, model.PropertyUpdate{Title: "Nope"})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestDeleteRefusedWithActiveAssignment(t *testing.T) {
	property := listedProperty(model.PropertyStatusBooked)
	property.AssignedTo = userID

	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return property, nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	err := svc.Delete(context.Background(), owner(), propID)
	if !apperrors.HasCode(err, apperrors.CodeInvalidOperation) {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestSetStatusOwnerTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"publish approved listing", model.PropertyStatusApproved, model.PropertyStatusAvailable, true},
		{"unpublish listing", model.PropertyStatusAvailable, model.PropertyStatusApproved, true},
		{"self approve", model.PropertyStatusPending, model.PropertyStatusApproved, false},
		{"self book", model.PropertyStatusAvailable, model.PropertyStatusBooked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{
				FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
					return listedProperty(tt.from), nil
				},
				SetStatusFn: func(ctx context.Context, id, status string) (*model.Property, error) {
					updated := listedProperty(status)
					return updated, nil
				},
			}
			svc := newService(repo, &stubNotifier{})

			_, err := svc.SetStatus(context.Background(), owner(), propID, tt.to)
			if tt.allowed && err != nil {
				t.Fatalf("expected transition to succeed, got %v", err)
			}
			if !tt.allowed && !apperrors.HasCode(err, apperrors.CodeForbidden) {
				t.Fatalf("expected FORBIDDEN, got %v", err)
			}
		})
	}
}

func TestSetStatusAdminNotifiesOwner(t *testing.T) {
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return listedProperty(model.PropertyStatusPending), nil
		},
		SetStatusFn: func(ctx context.Context, id, status string) (*model.Property, error) {
			return listedProperty(status), nil
		},
	}
	notifier := &stubNotifier{}
	svc := newService(repo, notifier)

	if _, err := svc.SetStatus(context.Background(), admin(), propID, model.PropertyStatusApproved); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != ownerID {
		t.Errorf("expected one owner notification, got %v", notifier.sent)
	}
}

func TestSetStatusAssignedRequiresTenant(t *testing.T) {
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return listedProperty(model.PropertyStatusAvailable), nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	_, err := svc.SetStatus(context.Background(), admin(), propID, model.PropertyStatusAssigned)
	if !apperrors.HasCode(err, apperrors.CodeInvalidOperation) {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestAssignConflictsWhenOccupied(t *testing.T) {
	property := listedProperty(model.PropertyStatusBooked)
	property.AssignedTo = userID

	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return property, nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	_, err := svc.Assign(context.Background(), admin(), propID, "64b000000000000000000004")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestAssignNotifiesTenant(t *testing.T) {
	tenant := "64b000000000000000000004"
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Property, error) {
			return listedProperty(model.PropertyStatusAvailable), nil
		},
		AssignFn: func(ctx context.Context, id, userID, status string) (*model.Property, error) {
			assigned := listedProperty(status)
			assigned.AssignedTo = userID
			return assigned, nil
		},
	}
	notifier := &stubNotifier{}
	svc := newService(repo, notifier)

	property, err := svc.Assign(context.Background(), admin(), propID, tenant)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if property.AssignedTo != tenant {
		t.Errorf("expected assignment to %q, got %q", tenant, property.AssignedTo)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != tenant {
		t.Errorf("expected one tenant notification, got %v", notifier.sent)
	}
}
