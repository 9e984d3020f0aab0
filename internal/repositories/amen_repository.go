package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/models"
)

// AmenRepository defines the interface for amen reaction operations.
type AmenRepository interface {
	CreateAmen(ctx context.Context, amen *models.Amen) error
	DeleteAmen(ctx context.Context, postID, userID string) error
	HasUserAmened(ctx context.Context, postID, userID string) (bool, error)
	GetAmensCountByPostID(ctx context.Context, postID string) (int64, error)
}

// PostgresAmenRepository implements AmenRepository for PostgreSQL.
type PostgresAmenRepository struct {
	db *gorm.DB
}

// NewPostgresAmenRepository creates a new PostgresAmenRepository.
func NewPostgresAmenRepository(db *gorm.DB) *PostgresAmenRepository {
	return &PostgresAmenRepository{db: db}
}

func (r *PostgresAmenRepository) CreateAmen(ctx context.Context, amen *models.Amen) error {
	return r.db.WithContext(ctx).Create(amen).Error
}

func (r *PostgresAmenRepository) DeleteAmen(ctx context.Context, postID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Amen{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("amen not found")
	}
	return nil
}

func (r *PostgresAmenRepository) HasUserAmened(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Amen{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresAmenRepository) GetAmensCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Amen{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
