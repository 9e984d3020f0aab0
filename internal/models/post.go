package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document stored in MongoDB.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID      string             `json:"author_id" bson:"author_id"` // Firebase UID of the author
	Text          string             `json:"text" bson:"text"`
	AmensCount    int                `json:"amens_count" bson:"amens_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	RepostsCount  int                `json:"reposts_count" bson:"reposts_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a post.
type CreatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
