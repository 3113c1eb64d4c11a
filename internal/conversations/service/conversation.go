package service

import (
	"context"
	"errors"
	"time"

	bookingservice "renthub/internal/bookings/service"
	conversationserrors "renthub/internal/conversations/errors"
	"renthub/internal/conversations/repository"
	notificationservice "renthub/internal/notifications/service"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
	"renthub/pkg/sanitizer"
)

type ConversationService interface {
	// GetBookingConversation returns the thread attached to a booking,
	// creating it on first access. Participation is authorized through
	// the booking engine's owner resolution, so threads work even for
	// bookings whose owner reference had to be recovered.
	GetBookingConversation(ctx context.Context, bookingID, userID string) (*model.Conversation, error)
	SendBookingMessage(ctx context.Context, bookingID, userID, content string) (*model.Conversation, error)

	CreateDirect(ctx context.Context, userID, otherUserID string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Conversation, error)
	GetByID(ctx context.Context, id, userID string) (*model.Conversation, error)
	SendMessage(ctx context.Context, id, userID, content string) (*model.Conversation, error)
}

type conversationService struct {
	repo     repository.ConversationRepository
	bookings bookingservice.BookingService
	notifier notificationservice.Notifier
	cfg      *config.Config
}

func NewConversationService(
	repo repository.ConversationRepository,
	bookings bookingservice.BookingService,
	notifier notificationservice.Notifier,
	cfg *config.Config,
) ConversationService {
	return &conversationService{
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *conversationService) GetBookingConversation(ctx context.Context, bookingID, userID string) (*model.Conversation, error) {
	bookingID = model.NormalizeID(bookingID)

	participants, err := s.bookings.ResolveOwner(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	conversation, err := s.repo.FindByBooking(ctx, bookingID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, conversationserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to load booking conversation", err)
	}

	conversation = &model.Conversation{
		Participants: []string{participants.BookingUserID, participants.BookingOwnerID},
		BookingID:    bookingID,
	}
	if err := s.repo.Create(ctx, conversation); err != nil {
		return nil, apperrors.Internal("Failed to create booking conversation", err)
	}

	return conversation, nil
}

func (s *conversationService) SendBookingMessage(ctx context.Context, bookingID, userID, content string) (*model.Conversation, error) {
	content = sanitizer.NormalizeMessage(content)
	if content == "" {
		return nil, apperrors.InvalidInput("Message content must not be empty")
	}

	conversation, err := s.GetBookingConversation(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	return s.appendAndNotify(ctx, conversation, userID, content)
}

func (s *conversationService) CreateDirect(ctx context.Context, userID, otherUserID string) (*model.Conversation, error) {
	otherUserID = model.NormalizeID(otherUserID)
	if !model.IsValidID(otherUserID) {
		return nil, apperrors.InvalidInput("Invalid user ID format")
	}
	if otherUserID == userID {
		return nil, apperrors.InvalidOperation("cannot start a conversation with yourself")
	}

	existing, err := s.repo.FindDirect(ctx, userID, otherUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, conversationserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to look up conversation", err)
	}

	conversation := &model.Conversation{
		Participants: sanitizer.NormalizeParticipants([]string{userID, otherUserID}),
	}
	if err := s.repo.Create(ctx, conversation); err != nil {
		return nil, apperrors.Internal("Failed to create conversation", err)
	}

	return conversation, nil
}

func (s *conversationService) ListByUser(ctx context.Context, userID string) ([]*model.Conversation, error) {
	conversations, err := s.repo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list conversations", err)
	}
	return conversations, nil
}

func (s *conversationService) GetByID(ctx context.Context, id, userID string) (*model.Conversation, error) {
	conversation, err := s.findAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *conversationService) SendMessage(ctx context.Context, id, userID, content string) (*model.Conversation, error) {
	content = sanitizer.NormalizeMessage(content)
	if content == "" {
		return nil, apperrors.InvalidInput("Message content must not be empty")
	}

	conversation, err := s.findAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return s.appendAndNotify(ctx, conversation, userID, content)
}

func (s *conversationService) findAuthorized(ctx context.Context, id, userID string) (*model.Conversation, error) {
	id = model.NormalizeID(id)

	conversation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, conversationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Conversation", id)
		}
		if errors.Is(err, conversationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid conversation ID format")
		}
		return nil, apperrors.Internal("Failed to load conversation", err)
	}

	if !conversation.HasParticipant(userID) {
		return nil, apperrors.Forbidden("caller is not a participant of this conversation")
	}

	return conversation, nil
}

func (s *conversationService) appendAndNotify(ctx context.Context, conversation *model.Conversation, senderID, content string) (*model.Conversation, error) {
	message := model.ConversationMessage{
		SenderID: senderID,
		Content:  content,
		SentAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	updated, err := s.repo.AppendMessage(ctx, conversation.ID, message)
	if err != nil {
		return nil, apperrors.Internal("Failed to send message", err)
	}

	for _, participant := range updated.Participants {
		participant = model.NormalizeID(participant)
		if participant == senderID {
			continue
		}
		s.notifier.Notify(ctx, participant,
			"You have a new message.",
			model.NotificationTypeMessage, updated.ID)
	}

	return updated, nil
}
