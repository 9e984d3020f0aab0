package models

import "time"

// Repost represents a user resharing a post to their own profile.
type Repost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:64;index;uniqueIndex:idx_repost_post_user"` // MongoDB ObjectID as string
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_repost_post_user"`
	CreatedAt time.Time `json:"created_at"`
}
