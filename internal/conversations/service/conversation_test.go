package service

import (
	"context"
	"io"
	"testing"

	conversationserrors "renthub/internal/conversations/errors"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"
	"renthub/pkg/model"
)

const (
	requesterID    = "64d000000000000000000001"
	homeOwnerID    = "64d000000000000000000002"
	outsiderID     = "64d000000000000000000003"
	chatBookingID  = "64d000000000000000000004"
	conversationID = "64d000000000000000000005"
)

type stubRepo struct {
	CreateFn        func(ctx context.Context, conversation *model.Conversation) error
	FindByIDFn      func(ctx context.Context, id string) (*model.Conversation, error)
	FindByBookingFn func(ctx context.Context, bookingID string) (*model.Conversation, error)
	AppendMessageFn func(ctx context.Context, id string, message model.ConversationMessage) (*model.Conversation, error)
}

func (s *stubRepo) Create(ctx context.Context, conversation *model.Conversation) error {
	if s.CreateFn == nil {
		conversation.ID = conversationID
		return nil
	}
	return s.CreateFn(ctx, conversation)
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	if s.FindByIDFn == nil {
		return nil, conversationserrors.ErrNotFound
	}
	return s.FindByIDFn(ctx, id)
}

func (s *stubRepo) FindByBooking(ctx context.Context, bookingID string) (*model.Conversation, error) {
	if s.FindByBookingFn == nil {
		return nil, conversationserrors.ErrNotFound
	}
	return s.FindByBookingFn(ctx, bookingID)
}

func (s *stubRepo) FindByParticipant(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return nil, nil
}

func (s *stubRepo) FindDirect(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	return nil, conversationserrors.ErrNotFound
}

func (s *stubRepo) AppendMessage(ctx context.Context, id string, message model.ConversationMessage) (*model.Conversation, error) {
	if s.AppendMessageFn == nil {
		return nil, conversationserrors.ErrNotFound
	}
	return s.AppendMessageFn(ctx, id, message)
}

// stubBookings resolves participants for the one test booking and
// rejects everyone else, mirroring the engine's authorization.
type stubBookings struct{}

func (stubBookings) ResolveOwner(ctx context.Context, bookingID, requesterID string) (*model.BookingParticipants, error) {
	if requesterID != "64d000000000000000000001" && requesterID != "64d000000000000000000002" {
		return nil, apperrors.Forbidden("caller is not a participant of this booking")
	}
	return &model.BookingParticipants{
		BookingUserID:  "64d000000000000000000001",
		BookingOwnerID: "64d000000000000000000002",
	}, nil
}

func (stubBookings) Create(ctx context.Context, actor middleware.Identity, request *model.BookingRequest) (*model.Booking, error) {
	return nil, nil
}

func (stubBookings) Decide(ctx context.Context, actor middleware.Identity, bookingID string, decision *model.BookingDecision) (*model.Booking, error) {
	return nil, nil
}

func (stubBookings) Cancel(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error) {
	return nil, nil
}

func (stubBookings) GetByID(ctx context.Context, actor middleware.Identity, bookingID string) (*model.Booking, error) {
	return nil, nil
}

func (stubBookings) GetByProperty(ctx context.Context, actor middleware.Identity, propertyID string) ([]*model.Booking, error) {
	return nil, nil
}

func (stubBookings) GetByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return nil, nil
}

func (stubBookings) GetOwnerRequests(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	return nil, nil
}

type stubNotifier struct {
	sent []string
}

func (s *stubNotifier) Notify(ctx context.Context, userID, message, notificationType, relatedID string) {
	s.sent = append(s.sent, userID)
}

func newService(repo *stubRepo, notifier *stubNotifier) ConversationService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Output: io.Discard, Format: logger.TEXT}),
	}
	return NewConversationService(repo, stubBookings{}, notifier, cfg)
}

func TestBookingConversationCreatedOnFirstAccess(t *testing.T) {
	var created *model.Conversation
	repo := &stubRepo{
		CreateFn: func(ctx context.Context, conversation *model.Conversation) error {
			conversation.ID = conversationID
			created = conversation
			return nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	conversation, err := svc.GetBookingConversation(context.Background(), chatBookingID, requesterID)
	if err != nil {
		t.Fatalf("GetBookingConversation returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected a conversation to be created")
	}
	if conversation.BookingID != chatBookingID {
		t.Errorf("expected booking reference %q, got %q", chatBookingID, conversation.BookingID)
	}
	if !conversation.HasParticipant(requesterID) || !conversation.HasParticipant(homeOwnerID) {
		t.Errorf("both booking participants must be in the thread, got %v", conversation.Participants)
	}
}

func TestBookingConversationForbiddenForOutsider(t *testing.T) {
	svc := newService(&stubRepo{}, &stubNotifier{})

	_, err := svc.GetBookingConversation(context.Background(), chatBookingID, outsiderID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestSendBookingMessageNotifiesOtherParticipant(t *testing.T) {
	thread := &model.Conversation{
		ID:           conversationID,
		BookingID:    chatBookingID,
		Participants: []string{requesterID, homeOwnerID},
	}
	repo := &stubRepo{
		FindByBookingFn: func(ctx context.Context, bookingID string) (*model.Conversation, error) {
			return thread, nil
		},
		AppendMessageFn: func(ctx context.Context, id string, message model.ConversationMessage) (*model.Conversation, error) {
			updated := *thread
			updated.Messages = append(updated.Messages, message)
			return &updated, nil
		},
	}
	notifier := &stubNotifier{}
	svc := newService(repo, notifier)

	conversation, err := svc.SendBookingMessage(context.Background(), chatBookingID, requesterID, "when can we move in?")
	if err != nil {
		t.Fatalf("SendBookingMessage returned error: %v", err)
	}
	if len(conversation.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conversation.Messages))
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != homeOwnerID {
		t.Errorf("expected a notification to the other participant, got %v", notifier.sent)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	svc := newService(&stubRepo{}, &stubNotifier{})

	_, err := svc.SendMessage(context.Background(), conversationID, requesterID, "   ")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSendMessageForbiddenForNonParticipant(t *testing.T) {
	repo := &stubRepo{
		FindByIDFn: func(ctx context.Context, id string) (*model.Conversation, error) {
			return &model.Conversation{
				ID:           conversationID,
				Participants: []string{requesterID, homeOwnerID},
			}, nil
		},
	}
	svc := newService(repo, &stubNotifier{})

	_, err := svc.SendMessage(context.Background(), conversationID, outsiderID, "hi")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreateDirectRejectsSelf(t *testing.T) {
	svc := newService(&stubRepo{}, &stubNotifier{})

	_, err := svc.CreateDirect(context.Background(), requesterID, requesterID)
	if !apperrors.HasCode(err, apperrors.CodeInvalidOperation) {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}
