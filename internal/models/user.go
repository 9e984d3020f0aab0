package models

import "time"

// User is a profile record keyed by Firebase UID (PostgreSQL).
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:128"` // Firebase UID
	Username    string    `json:"username" gorm:"size:30;uniqueIndex"`
	DisplayName string    `json:"display_name" gorm:"size:80"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	FCMToken    string    `json:"-" gorm:"size:512"` // push device token; empty when no device registered
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the actor shape embedded in API responses.
type UserCompact struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ToCompact returns the compact representation of a user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

// CreateUserRequest defines the request body for registering a profile.
// The profile ID is never client-supplied; it is the verified Firebase UID
// of the caller.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=30"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=80"`
	Email       string `json:"email" validate:"required,email"`
}

// RegisterDeviceRequest defines the request body for registering a push token.
type RegisterDeviceRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
}
