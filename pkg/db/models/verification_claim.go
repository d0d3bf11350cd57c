package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

// VerificationClaim asserts that a non-owner is the rightful owner of a found
// item. At most one claim exists per (post, claimant) pair; status mutates via
// conditional update only while pending.
type VerificationClaim struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID     uuid.UUID         `gorm:"column:post_id;type:uuid;not null;index:verification_claims_post_id_idx;uniqueIndex:verification_claims_post_claimant_key"`
	ClaimantID uuid.UUID         `gorm:"column:claimant_id;type:uuid;not null;uniqueIndex:verification_claims_post_claimant_key"`
	Status     enums.ClaimStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Evidence   types.JSONMap     `gorm:"column:evidence;type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
