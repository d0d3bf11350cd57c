package claims

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
)

// Repository persists verification claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, claim *models.VerificationClaim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationClaim, error)
	GetByPostAndClaimant(ctx context.Context, postID, claimantID uuid.UUID) (*models.VerificationClaim, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.VerificationClaim, error)
	ApprovedClaimant(ctx context.Context, postID uuid.UUID) (*uuid.UUID, error)
	HasApprovedClaim(ctx context.Context, postID, claimantID uuid.UUID) (bool, error)
	SettleIfPending(ctx context.Context, claimID uuid.UUID, status enums.ClaimStatus) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a claims repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, claim *models.VerificationClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationClaim, error) {
	var claim models.VerificationClaim
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *repositoryImpl) GetByPostAndClaimant(ctx context.Context, postID, claimantID uuid.UUID) (*models.VerificationClaim, error) {
	var claim models.VerificationClaim
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND claimant_id = ?", postID, claimantID).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *repositoryImpl) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.VerificationClaim, error) {
	var rows []models.VerificationClaim
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ApprovedClaimant returns the claimant holding the approved claim on the
// post, or nil when no claim has been approved yet.
func (r *repositoryImpl) ApprovedClaimant(ctx context.Context, postID uuid.UUID) (*uuid.UUID, error) {
	var claim models.VerificationClaim
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, enums.ClaimStatusApproved).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	claimant := claim.ClaimantID
	return &claimant, nil
}

func (r *repositoryImpl) HasApprovedClaim(ctx context.Context, postID, claimantID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationClaim{}).
		Where("post_id = ? AND claimant_id = ? AND status = ?", postID, claimantID, enums.ClaimStatusApproved).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// SettleIfPending moves the claim out of pending. A false return means the
// claim was already settled by a concurrent decision.
func (r *repositoryImpl) SettleIfPending(ctx context.Context, claimID uuid.UUID, status enums.ClaimStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationClaim{}).
		Where("id = ? AND status = ?", claimID, enums.ClaimStatusPending).
		UpdateColumn("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
