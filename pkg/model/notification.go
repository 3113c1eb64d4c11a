package model

import (
	"time"
)

const (
	NotificationTypeAssignment   = "assignment"
	NotificationTypeStatusUpdate = "status_update"
	NotificationTypeMessage      = "message"
	NotificationTypeGeneral      = "general"
)

type Notification struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Message   string    `json:"message" bson:"message" validate:"required,max=1000"`
	Type      string    `json:"type" bson:"type" validate:"required,oneof=assignment status_update message general"`
	RelatedID string    `json:"related_id,omitempty" bson:"related_id,omitempty" validate:"omitempty,mongodb"`
	IsRead    bool      `json:"is_read" bson:"is_read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
