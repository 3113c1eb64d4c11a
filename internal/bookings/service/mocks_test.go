package service

import (
	"context"
	"io"
	"sync"

	bookingserrors "renthub/internal/bookings/errors"
	propertieserrors "renthub/internal/properties/errors"
	"renthub/pkg/config"
	dbmongo "renthub/pkg/db/mongo"
	"renthub/pkg/logger"
	"renthub/pkg/model"
)

type mockBookingRepo struct {
	CreateFn                 func(ctx context.Context, booking *model.Booking) error
	FindByIDFn               func(ctx context.Context, id string) (*model.Booking, error)
	FindByPropertyFn         func(ctx context.Context, propertyID string) ([]*model.Booking, error)
	FindByUserFn             func(ctx context.Context, userID string) ([]*model.Booking, error)
	FindByOwnerFn            func(ctx context.Context, ownerID string) ([]*model.Booking, error)
	FindApprovedByPropertyFn func(ctx context.Context, propertyID string) (*model.Booking, error)
	FindByPropertyAndUserFn  func(ctx context.Context, propertyID, userID string) (*model.Booking, error)
	UpdateStatusFromFn       func(ctx context.Context, id string, from []string, to string) (*model.Booking, error)
	RejectOtherPendingFn     func(ctx context.Context, propertyID, winnerID string) ([]*model.Booking, error)
	UpdateOwnerFn            func(ctx context.Context, id, ownerID string) error
	FindOwnerOnPropertyFn    func(ctx context.Context, propertyID, excludeUserID string) (string, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.FindByIDFn == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return m.FindByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error) {
	if m.FindByPropertyFn == nil {
		return nil, nil
	}
	return m.FindByPropertyFn(ctx, propertyID)
}

func (m *mockBookingRepo) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if m.FindByUserFn == nil {
		return nil, nil
	}
	return m.FindByUserFn(ctx, userID)
}

func (m *mockBookingRepo) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	if m.FindByOwnerFn == nil {
		return nil, nil
	}
	return m.FindByOwnerFn(ctx, ownerID)
}

func (m *mockBookingRepo) FindApprovedByProperty(ctx context.Context, propertyID string) (*model.Booking, error) {
	if m.FindApprovedByPropertyFn == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return m.FindApprovedByPropertyFn(ctx, propertyID)
}

func (m *mockBookingRepo) FindByPropertyAndUser(ctx context.Context, propertyID, userID string) (*model.Booking, error) {
	if m.FindByPropertyAndUserFn == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return m.FindByPropertyAndUserFn(ctx, propertyID, userID)
}

func (m *mockBookingRepo) UpdateStatusFrom(ctx context.Context, id string, from []string, to string) (*model.Booking, error) {
	if m.UpdateStatusFromFn == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return m.UpdateStatusFromFn(ctx, id, from, to)
}

func (m *mockBookingRepo) RejectOtherPending(ctx context.Context, propertyID, winnerID string) ([]*model.Booking, error) {
	if m.RejectOtherPendingFn == nil {
		return nil, nil
	}
	return m.RejectOtherPendingFn(ctx, propertyID, winnerID)
}

func (m *mockBookingRepo) UpdateOwner(ctx context.Context, id, ownerID string) error {
	if m.UpdateOwnerFn == nil {
		return nil
	}
	return m.UpdateOwnerFn(ctx, id, ownerID)
}

func (m *mockBookingRepo) FindOwnerOnProperty(ctx context.Context, propertyID, excludeUserID string) (string, error) {
	if m.FindOwnerOnPropertyFn == nil {
		return "", nil
	}
	return m.FindOwnerOnPropertyFn(ctx, propertyID, excludeUserID)
}

type mockPropertyRepo struct {
	CreateFn      func(ctx context.Context, property *model.Property) error
	FindByIDFn    func(ctx context.Context, id string) (*model.Property, error)
	FindAllFn     func(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	FindByOwnerFn func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error)
	SearchFn      func(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error)
	FilterFn      func(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error)
	UpdateFn      func(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error)
	DeleteFn      func(ctx context.Context, id string) error
	ReserveFn     func(ctx context.Context, id, userID string) (*model.Property, error)
	ReleaseFn     func(ctx context.Context, id, previousStatus string) error
	SetStatusFn   func(ctx context.Context, id, status string) (*model.Property, error)
	AssignFn      func(ctx context.Context, id, userID, status string) (*model.Property, error)
}

func (m *mockPropertyRepo) Create(ctx context.Context, property *model.Property) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, property)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.FindByIDFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return m.FindByIDFn(ctx, id)
}

func (m *mockPropertyRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	if m.FindAllFn == nil {
		return nil, 0, nil
	}
	return m.FindAllFn(ctx, limit, offset)
}

func (m *mockPropertyRepo) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	if m.FindByOwnerFn == nil {
		return nil, 0, nil
	}
	return m.FindByOwnerFn(ctx, ownerID, limit, offset)
}

func (m *mockPropertyRepo) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error) {
	if m.SearchFn == nil {
		return nil, 0, nil
	}
	return m.SearchFn(ctx, query, limit, offset)
}

func (m *mockPropertyRepo) Filter(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error) {
	if m.FilterFn == nil {
		return nil, 0, nil
	}
	return m.FilterFn(ctx, filter, limit, offset)
}

func (m *mockPropertyRepo) Update(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error) {
	if m.UpdateFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return m.UpdateFn(ctx, id, update)
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

func (m *mockPropertyRepo) Reserve(ctx context.Context, id, userID string) (*model.Property, error) {
	if m.ReserveFn == nil {
		return nil, propertieserrors.ErrNotReservable
	}
	return m.ReserveFn(ctx, id, userID)
}

func (m *mockPropertyRepo) Release(ctx context.Context, id, previousStatus string) error {
	if m.ReleaseFn == nil {
		return nil
	}
	return m.ReleaseFn(ctx, id, previousStatus)
}

func (m *mockPropertyRepo) SetStatus(ctx context.Context, id, status string) (*model.Property, error) {
	if m.SetStatusFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return m.SetStatusFn(ctx, id, status)
}

func (m *mockPropertyRepo) Assign(ctx context.Context, id, userID, status string) (*model.Property, error) {
	if m.AssignFn == nil {
		return nil, propertieserrors.ErrNotFound
	}
	return m.AssignFn(ctx, id, userID, status)
}

type sentNotification struct {
	UserID    string
	Message   string
	Type      string
	RelatedID string
}

// mockNotifications records fan-out calls; OwnerHint is injectable for
// recovery tests.
type mockNotifications struct {
	mu          sync.Mutex
	Sent        []sentNotification
	OwnerHintFn func(ctx context.Context, propertyID, excludeUserID string) (string, error)
}

func (m *mockNotifications) Notify(ctx context.Context, userID, message, notificationType, relatedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentNotification{
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		RelatedID: relatedID,
	})
}

func (m *mockNotifications) sentTo(userID string) []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentNotification
	for _, n := range m.Sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *mockNotifications) GetByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	return nil, nil
}

func (m *mockNotifications) MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	return nil, nil
}

func (m *mockNotifications) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (m *mockNotifications) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotifications) OwnerHint(ctx context.Context, propertyID, excludeUserID string) (string, error) {
	if m.OwnerHintFn == nil {
		return "", nil
	}
	return m.OwnerHintFn(ctx, propertyID, excludeUserID)
}

// fakeTxManager runs the transaction body directly; the mocked
// repositories ignore the session context.
type fakeTxManager struct{}

func (fakeTxManager) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "http://localhost:8080",
		Log:     logger.New(logger.Config{Output: io.Discard, Format: logger.TEXT}),
	}
}
