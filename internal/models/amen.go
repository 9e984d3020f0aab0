package models

import "time"

// Amen represents an "amen" reaction on a post (the app's like).
type Amen struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:64;index;uniqueIndex:idx_amen_post_user"` // MongoDB ObjectID as string
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_amen_post_user"`
	CreatedAt time.Time `json:"created_at"`
}
