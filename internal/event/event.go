// Package event defines the domain events consumed by the notification
// fan-out pipeline. Events describe document create/delete mutations; the
// Path field carries the logical document path of the mutated record.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of domain mutation an event describes.
type Type string

const (
	TypeFollowCreated         Type = "FollowCreated"
	TypeFollowDeleted         Type = "FollowDeleted"
	TypeAmenCreated           Type = "AmenCreated"
	TypeCommentCreated        Type = "CommentCreated"
	TypeRepostCreated         Type = "RepostCreated"
	TypePostCreated           Type = "PostCreated"
	TypeMessageSent           Type = "MessageSent"
	TypeFollowRequestAccepted Type = "FollowRequestAccepted"
)

// Event is the envelope delivered to fan-out handlers. Delivery is
// at-least-once: a handler may see the same event twice under retry, and
// handlers are expected to tolerate that.
type Event struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	Path       string      `json:"path"` // logical document path, e.g. posts/{id}/comments/{id}
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// New builds an event envelope with a fresh ID and timestamp.
func New(t Type, path string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Path:       path,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// FollowCreatedData is the payload for TypeFollowCreated.
type FollowCreatedData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

// FollowDeletedData is the payload for TypeFollowDeleted.
type FollowDeletedData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

// AmenCreatedData is the payload for TypeAmenCreated.
type AmenCreatedData struct {
	PostID       string `json:"post_id"`
	PostAuthorID string `json:"post_author_id"`
	UserID       string `json:"user_id"`
}

// CommentCreatedData is the payload for TypeCommentCreated. ParentAuthorID
// is set only when the comment replies to another comment.
type CommentCreatedData struct {
	PostID         string `json:"post_id"`
	PostAuthorID   string `json:"post_author_id"`
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	Text           string `json:"text"`
	ParentAuthorID string `json:"parent_author_id,omitempty"`
}

// RepostCreatedData is the payload for TypeRepostCreated.
type RepostCreatedData struct {
	PostID       string `json:"post_id"`
	PostAuthorID string `json:"post_author_id"`
	UserID       string `json:"user_id"`
}

// PostCreatedData is the payload for TypePostCreated. The mention scan
// runs against Text; mentions are only detected on create, never on edit.
type PostCreatedData struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
}

// MessageSentData is the payload for TypeMessageSent.
type MessageSentData struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Preview     string `json:"preview"`
}

// FollowRequestAcceptedData is the payload for TypeFollowRequestAccepted.
// AccepterID accepted RequesterID's request; the requester is notified.
type FollowRequestAcceptedData struct {
	RequesterID string `json:"requester_id"`
	AccepterID  string `json:"accepter_id"`
}
