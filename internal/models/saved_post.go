package models

import "time"

// SavedPost represents a bookmarked post.
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:64;index;uniqueIndex:idx_saved_user_post"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_saved_user_post"`
	CreatedAt time.Time `json:"created_at"`
}
