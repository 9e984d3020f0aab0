package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/stream"
)

// NotificationRepository defines the interface for notification operations.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID string, id uint) error
	MarkAllRead(ctx context.Context, recipientID string) error
	DeleteNotification(ctx context.Context, recipientID string, id uint) error
	DeleteFollowNotifications(ctx context.Context, recipientID, actorID string) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository for
// PostgreSQL. Every successful write signals the stream hub so standing
// subscriptions re-deliver the recipient's current record set.
type PostgresNotificationRepository struct {
	db  *gorm.DB
	hub *stream.Hub
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *gorm.DB, hub *stream.Hub) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db, hub: hub}
}

func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return err
	}
	r.hub.Notify(notification.RecipientID)
	return nil
}

func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, recipientID string, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	r.hub.Notify(recipientID)
	return nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	r.hub.Notify(recipientID)
	return nil
}

func (r *PostgresNotificationRepository) DeleteNotification(ctx context.Context, recipientID string, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		r.hub.Notify(recipientID)
	}
	return nil
}

// DeleteFollowNotifications removes every follow-type record the actor
// produced for the recipient. Normally zero or one, but uniqueness is not
// enforced, so it deletes many.
func (r *PostgresNotificationRepository) DeleteFollowNotifications(ctx context.Context, recipientID, actorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND actor_id = ? AND type = ?", recipientID, actorID, models.NotificationTypeFollow).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.hub.Notify(recipientID)
	}
	return res.RowsAffected, nil
}
