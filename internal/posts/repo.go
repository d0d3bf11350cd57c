package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

// Repository encapsulates post persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, params ListPostsParams) ([]models.Post, *pagination.Cursor, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Post, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	MarkVerified(ctx context.Context, postID uuid.UUID) (bool, error)
	EvidenceObjects(ctx context.Context, postID uuid.UUID) ([]string, error)
	DeleteCascade(ctx context.Context, postID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a posts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListPostsParams filters the public post listing.
type ListPostsParams struct {
	Kind   *enums.PostKind
	Query  string
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListPostsParams) ([]models.Post, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Post{})
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		like := "%" + q + "%"
		query = query.Where("item_name ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Post
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

func (r *repositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Post, error) {
	result := make(map[uuid.UUID]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

func (r *repositoryImpl) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// MarkVerified flips the post's verification status and reports whether this
// call won the transition. A false return means another claim was approved
// first; the caller treats that as a state conflict.
func (r *repositoryImpl) MarkVerified(ctx context.Context, postID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND verification_status = ?", postID, enums.VerificationStatusPending).
		UpdateColumn("verification_status", enums.VerificationStatusVerified)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// EvidenceObjects collects the storage object names referenced by the
// evidence of every claim on the post.
func (r *repositoryImpl) EvidenceObjects(ctx context.Context, postID uuid.UUID) ([]string, error) {
	var rows []models.VerificationClaim
	err := r.db.WithContext(ctx).
		Select("evidence").
		Where("post_id = ?", postID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	var objects []string
	for i := range rows {
		files, ok := rows[i].Evidence["files"].([]any)
		if !ok {
			continue
		}
		for _, entry := range files {
			file, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if object, ok := file["object"].(string); ok && object != "" {
				objects = append(objects, object)
			}
		}
	}
	return objects, nil
}

// DeleteCascade removes the post together with its claims, messages, and
// post-scoped notifications. Run inside a transaction via WithTx.
func (r *repositoryImpl) DeleteCascade(ctx context.Context, postID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", postID).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.VerificationClaim{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", postID).Delete(&models.Post{}).Error
}
