package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

// Repository persists user notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.Notification, *pagination.Cursor, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
	HasUnread(ctx context.Context, userID uuid.UUID, postID uuid.UUID, kind enums.NotificationType) (bool, error)
}

// ListParams filters the notification feed.
type ListParams struct {
	UnreadOnly bool
	Limit      int
	Cursor     *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) List(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead stamps read_at on an unread notification. Returns false when the
// notification does not exist, belongs to someone else, or was already read.
func (r *repositoryImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		UpdateColumn("read_at", time.Now().UTC())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// HasUnread reports whether the user already has an unread notification of the
// given type for the post. Used to collapse repeated new-message pings.
func (r *repositoryImpl) HasUnread(ctx context.Context, userID uuid.UUID, postID uuid.UUID, kind enums.NotificationType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND post_id = ? AND type = ? AND read_at IS NULL", userID, postID, kind).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}
