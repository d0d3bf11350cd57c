package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

// ClaimDTO is the API-facing shape of a verification claim.
type ClaimDTO struct {
	ID         uuid.UUID         `json:"id"`
	PostID     uuid.UUID         `json:"post_id"`
	ClaimantID uuid.UUID         `json:"claimant_id"`
	Status     enums.ClaimStatus `json:"status"`
	Evidence   types.JSONMap     `json:"evidence"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func toClaimDTO(claim *models.VerificationClaim) *ClaimDTO {
	if claim == nil {
		return nil
	}
	return &ClaimDTO{
		ID:         claim.ID,
		PostID:     claim.PostID,
		ClaimantID: claim.ClaimantID,
		Status:     claim.Status,
		Evidence:   claim.Evidence,
		CreatedAt:  claim.CreatedAt,
		UpdatedAt:  claim.UpdatedAt,
	}
}
