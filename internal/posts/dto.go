package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
)

// PostDTO is the API-facing shape of a post.
type PostDTO struct {
	ID                 uuid.UUID                `json:"id"`
	OwnerID            uuid.UUID                `json:"owner_id"`
	Kind               enums.PostKind           `json:"kind"`
	ItemName           string                   `json:"item_name"`
	Description        string                   `json:"description"`
	Location           string                   `json:"location,omitempty"`
	VerificationStatus enums.VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// PostListResult pairs a page of posts with the cursor for the next page.
type PostListResult struct {
	Posts      []PostDTO `json:"posts"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

func toPostDTO(post *models.Post) *PostDTO {
	if post == nil {
		return nil
	}
	return &PostDTO{
		ID:                 post.ID,
		OwnerID:            post.OwnerID,
		Kind:               post.Kind,
		ItemName:           post.ItemName,
		Description:        post.Description,
		Location:           post.Location,
		VerificationStatus: post.VerificationStatus,
		CreatedAt:          post.CreatedAt,
		UpdatedAt:          post.UpdatedAt,
	}
}
