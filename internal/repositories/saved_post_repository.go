package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/models"
)

// SavedPostRepository defines the interface for saved-post operations.
type SavedPostRepository interface {
	SavePost(ctx context.Context, saved *models.SavedPost) error
	UnsavePost(ctx context.Context, postID, userID string) error
	IsSaved(ctx context.Context, postID, userID string) (bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository for PostgreSQL.
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new PostgresSavedPostRepository.
func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) SavePost(ctx context.Context, saved *models.SavedPost) error {
	return r.db.WithContext(ctx).Create(saved).Error
}

func (r *PostgresSavedPostRepository) UnsavePost(ctx context.Context, postID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.SavedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved post not found")
	}
	return nil
}

func (r *PostgresSavedPostRepository) IsSaved(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
