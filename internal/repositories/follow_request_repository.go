package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/models"
)

// FollowRequestRepository defines the interface for follow-request operations.
type FollowRequestRepository interface {
	CreateRequest(ctx context.Context, request *models.FollowRequest) error
	GetRequest(ctx context.Context, requesterID, targetID string) (*models.FollowRequest, error)
	UpdateStatus(ctx context.Context, requesterID, targetID, status string) error
}

// PostgresFollowRequestRepository implements FollowRequestRepository for PostgreSQL.
type PostgresFollowRequestRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRequestRepository creates a new PostgresFollowRequestRepository.
func NewPostgresFollowRequestRepository(db *gorm.DB) *PostgresFollowRequestRepository {
	return &PostgresFollowRequestRepository{db: db}
}

func (r *PostgresFollowRequestRepository) CreateRequest(ctx context.Context, request *models.FollowRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *PostgresFollowRequestRepository) GetRequest(ctx context.Context, requesterID, targetID string) (*models.FollowRequest, error) {
	var request models.FollowRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *PostgresFollowRequestRepository) UpdateStatus(ctx context.Context, requesterID, targetID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, "pending").
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
