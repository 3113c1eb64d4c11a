package model

import (
	"time"
)

type ConversationMessage struct {
	SenderID string    `json:"sender_id" bson:"sender_id" validate:"required,mongodb"`
	Content  string    `json:"content" bson:"content" validate:"required,max=2000"`
	SentAt   time.Time `json:"sent_at" bson:"sent_at"`
}

// Conversation is a message thread. BookingID is set for booking chats
// derived from a rental request; direct threads leave it empty.
type Conversation struct {
	ID           string                `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Participants []string              `json:"participants" bson:"participants" validate:"required,min=2,dive,mongodb"`
	BookingID    string                `json:"booking_id,omitempty" bson:"booking_id,omitempty" validate:"omitempty,mongodb"`
	Messages     []ConversationMessage `json:"messages" bson:"messages"`
	CreatedAt    time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at" bson:"updated_at"`
}

// HasParticipant reports whether userID takes part in the thread.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if NormalizeID(p) == userID {
			return true
		}
	}
	return false
}
