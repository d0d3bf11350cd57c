package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/claims"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
)

// AccessPolicy is the single authorization gate in front of a post's
// conversation. Every message path (REST append, websocket send, polling,
// inbox previews) asks it the same question.
//
// The rules, in order:
//   - the post owner always has access
//   - lost-item threads are open to any signed-in user when open threads are
//     enabled (the default); finders need to hear from strangers
//   - found-item threads require an approved verification claim
type AccessPolicy struct {
	claims claims.Repository
	cfg    config.ChatConfig
}

// NewAccessPolicy constructs the conversation authorization gate.
func NewAccessPolicy(claimRepo claims.Repository, cfg config.ChatConfig) (*AccessPolicy, error) {
	if claimRepo == nil {
		return nil, fmt.Errorf("claim repository required")
	}
	return &AccessPolicy{claims: claimRepo, cfg: cfg}, nil
}

// CanAccess reports whether the user may read and write the post's
// conversation.
func (p *AccessPolicy) CanAccess(ctx context.Context, userID uuid.UUID, post *models.Post) (bool, error) {
	if post == nil {
		return false, nil
	}
	if post.OwnerID == userID {
		return true, nil
	}
	if post.Kind == enums.PostKindLost && p.cfg.OpenLostThreads {
		return true, nil
	}
	approved, err := p.claims.HasApprovedClaim(ctx, post.ID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check approved claim")
	}
	return approved, nil
}

// Require is CanAccess with the denial mapped to the error the API returns.
func (p *AccessPolicy) Require(ctx context.Context, userID uuid.UUID, post *models.Post) error {
	allowed, err := p.CanAccess(ctx, userID, post)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you are not authorized for this conversation")
	}
	return nil
}
