package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
)

// Repository persists conversation messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, message *models.Message) error
	ListConversation(ctx context.Context, postID, userID uuid.UUID) ([]models.Message, error)
	NewSince(ctx context.Context, postID, userID uuid.UUID, since time.Time) ([]models.Message, error)
	MarkRead(ctx context.Context, postID, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, postID, userID uuid.UUID) (int64, error)
	UnreadCountsByPost(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)
	LastMessage(ctx context.Context, postID, userID uuid.UUID) (*models.Message, error)
	Partners(ctx context.Context, postID, ownerID uuid.UUID) ([]uuid.UUID, error)
	ParticipatingPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a message repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListConversation returns the user's thread on the post in send order.
// Ordering ties on created_at break by id, so replay is deterministic.
func (r *repositoryImpl) ListConversation(ctx context.Context, postID, userID uuid.UUID) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND (sender_id = ? OR receiver_id = ?)", postID, userID, userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// NewSince returns the user's messages on the post created strictly after the
// given instant. Boundary messages were already delivered.
func (r *repositoryImpl) NewSince(ctx context.Context, postID, userID uuid.UUID, since time.Time) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND (sender_id = ? OR receiver_id = ?) AND created_at > ?", postID, userID, userID, since).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// MarkRead flips every unread message addressed to the user in the post's
// conversation. Idempotent; returns how many rows flipped this call.
func (r *repositoryImpl) MarkRead(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("post_id = ? AND receiver_id = ? AND is_read = ?", postID, userID, false).
		UpdateColumn("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) UnreadCount(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("post_id = ? AND receiver_id = ? AND is_read = ?", postID, userID, false).
		Count(&count).Error
	return count, err
}

type unreadRow struct {
	PostID uuid.UUID `gorm:"column:post_id"`
	Count  int64     `gorm:"column:count"`
}

func (r *repositoryImpl) UnreadCountsByPost(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []unreadRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("post_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("post_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}

// LastMessage returns the newest message in the user's thread on the post,
// or nil when the thread is empty.
func (r *repositoryImpl) LastMessage(ctx context.Context, postID, userID uuid.UUID) (*models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND (sender_id = ? OR receiver_id = ?)", postID, userID, userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Partners returns the distinct users the owner has exchanged messages with
// on the post.
func (r *repositoryImpl) Partners(ctx context.Context, postID, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND (sender_id = ? OR receiver_id = ?)", postID, ownerID, ownerID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{})
	partners := make([]uuid.UUID, 0)
	for _, row := range rows {
		other := row.SenderID
		if other == ownerID {
			other = row.ReceiverID
		}
		if other == ownerID {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		partners = append(partners, other)
	}
	return partners, nil
}

// ParticipatingPostIDs returns posts where the user has messages but which
// they may not own. The caller filters out owned posts.
func (r *repositoryImpl) ParticipatingPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Distinct("post_id").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Pluck("post_id", &ids).Error
	return ids, err
}
