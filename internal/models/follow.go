package models

import "time"

// Follow represents a follow relationship, uniquely identified by the
// ordered (follower, followee) pair.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID string    `json:"follower_id" gorm:"size:128;index;uniqueIndex:idx_follower_followee"`
	FolloweeID string    `json:"followee_id" gorm:"size:128;index;uniqueIndex:idx_follower_followee"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowRequest represents a pending follow request against a private profile.
// Accepting one produces a follow_request_accepted notification for the requester.
type FollowRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequesterID string    `json:"requester_id" gorm:"size:128;index;uniqueIndex:idx_requester_target"`
	TargetID    string    `json:"target_id" gorm:"size:128;index;uniqueIndex:idx_requester_target"`
	Status      string    `json:"status" gorm:"size:20;default:pending"` // pending, accepted, declined
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
