package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/models"
)

// RepostRepository defines the interface for repost data operations.
type RepostRepository interface {
	CreateRepost(ctx context.Context, repost *models.Repost) error
	DeleteRepost(ctx context.Context, postID, userID string) error
	HasUserReposted(ctx context.Context, postID, userID string) (bool, error)
}

// PostgresRepostRepository implements RepostRepository for PostgreSQL.
type PostgresRepostRepository struct {
	db *gorm.DB
}

// NewPostgresRepostRepository creates a new PostgresRepostRepository.
func NewPostgresRepostRepository(db *gorm.DB) *PostgresRepostRepository {
	return &PostgresRepostRepository{db: db}
}

func (r *PostgresRepostRepository) CreateRepost(ctx context.Context, repost *models.Repost) error {
	return r.db.WithContext(ctx).Create(repost).Error
}

func (r *PostgresRepostRepository) DeleteRepost(ctx context.Context, postID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Repost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("repost not found")
	}
	return nil
}

func (r *PostgresRepostRepository) HasUserReposted(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Repost{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
