package models

import "time"

// Comment represents a comment on a post. A non-nil ParentCommentID makes
// it a reply to another comment on the same post.
type Comment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	PostID          string    `json:"post_id" gorm:"size:64;index"` // MongoDB ObjectID as string
	AuthorID        string    `json:"author_id" gorm:"size:128;index"`
	Text            string    `json:"text" gorm:"size:500"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a comment.
type CreateCommentRequest struct {
	Text            string `json:"text" validate:"required,min=1,max=500"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}
