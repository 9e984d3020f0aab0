package models

import "time"

// NotificationType identifies the domain event a notification was produced from.
type NotificationType string

const (
	NotificationTypeFollow                NotificationType = "follow"
	NotificationTypeAmen                  NotificationType = "amen"
	NotificationTypeComment               NotificationType = "comment"
	NotificationTypeReply                 NotificationType = "reply"
	NotificationTypeMention               NotificationType = "mention"
	NotificationTypeRepost                NotificationType = "repost"
	NotificationTypeFollowRequestAccepted NotificationType = "follow_request_accepted"
	NotificationTypeMessage               NotificationType = "message"
)

// Notification is a per-recipient notification record (PostgreSQL).
// ActorDisplayName is denormalized at write time and is not kept in sync
// with later profile edits. A notification is never created with
// ActorID == RecipientID.
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	RecipientID      string           `json:"recipient_id" gorm:"size:128;index"`
	Type             NotificationType `json:"type" gorm:"size:30;index"`
	ActorID          string           `json:"actor_id" gorm:"size:128;index"`
	ActorDisplayName string           `json:"actor_display_name"`
	SubjectID        string           `json:"subject_id,omitempty"` // post or comment ID this notification concerns
	Preview          string           `json:"preview,omitempty" gorm:"size:280"`
	IsRead           bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index"`
}
