package claims

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/notifications"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

// Service drives the verification claim lifecycle.
type Service interface {
	SubmitClaim(ctx context.Context, claimantID, postID uuid.UUID, input SubmitClaimInput) (*ClaimDTO, error)
	ApproveClaim(ctx context.Context, actorID, claimID uuid.UUID) (*ClaimDTO, error)
	RejectClaim(ctx context.Context, actorID, claimID uuid.UUID) (*ClaimDTO, error)
	ListClaims(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID) ([]ClaimDTO, error)
	GetOwnClaim(ctx context.Context, claimantID, postID uuid.UUID) (*ClaimDTO, error)
}

// SubmitClaimInput holds the validated claim payload. Evidence files are
// uploaded before the claim row exists, so a failed upload never leaves a
// claim pointing at nothing.
type SubmitClaimInput struct {
	Description string
	Files       []EvidenceFile
}

// EvidenceFile is one uploaded proof-of-ownership attachment.
type EvidenceFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// Uploader stores evidence files and returns their public locations.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, payload []byte) (StoredEvidence, error)
}

// StoredEvidence locates one uploaded evidence object.
type StoredEvidence struct {
	Name string
	URL  string
}

type service struct {
	repo       Repository
	posts      posts.Repository
	dbClient   *db.Client
	uploader   Uploader
	dispatcher *notifications.Dispatcher
}

// NewService constructs a claim service instance.
func NewService(repo Repository, postRepo posts.Repository, dbClient *db.Client, uploader Uploader, dispatcher *notifications.Dispatcher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("claim repository required")
	}
	if postRepo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	return &service{
		repo:       repo,
		posts:      postRepo,
		dbClient:   dbClient,
		uploader:   uploader,
		dispatcher: dispatcher,
	}, nil
}

// SubmitClaim files a pending ownership claim on a found post.
func (s *service) SubmitClaim(ctx context.Context, claimantID, postID uuid.UUID, input SubmitClaimInput) (*ClaimDTO, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if post.Kind != enums.PostKindFound {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claims can only be filed on found-item posts")
	}
	if post.OwnerID == claimantID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you cannot claim your own post")
	}
	if post.VerificationStatus == enums.VerificationStatusVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "this item has already been verified")
	}

	existing, err := s.repo.GetByPostAndClaimant(ctx, postID, claimantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load existing claim")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you have already claimed this item")
	}

	evidence, err := s.buildEvidence(ctx, input)
	if err != nil {
		return nil, err
	}

	claim := &models.VerificationClaim{
		PostID:     postID,
		ClaimantID: claimantID,
		Status:     enums.ClaimStatusPending,
		Evidence:   evidence,
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, claim); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "you have already claimed this item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert claim")
		}
		return s.dispatcher.WithTx(tx).ClaimSubmitted(ctx, post.OwnerID, postID, post.ItemName)
	}); err != nil {
		return nil, err
	}

	return toClaimDTO(claim), nil
}

// ApproveClaim settles a pending claim in the claimant's favor. Both the
// claim row and the post's verification status flip with conditional updates
// in one transaction; the post row is the serialization point, so at most one
// claim per post can ever win.
func (s *service) ApproveClaim(ctx context.Context, actorID, claimID uuid.UUID) (*ClaimDTO, error) {
	claim, post, err := s.loadDecision(ctx, actorID, claimID)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		settled, err := s.repo.WithTx(tx).SettleIfPending(ctx, claim.ID, enums.ClaimStatusApproved)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: approve claim")
		}
		if !settled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "claim has already been settled")
		}

		verified, err := s.posts.WithTx(tx).MarkVerified(ctx, post.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark post verified")
		}
		if !verified {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "another claim on this post was already approved")
		}

		return s.dispatcher.WithTx(tx).ClaimApproved(ctx, post.OwnerID, claim.ClaimantID, post.ID, post.ItemName)
	}); err != nil {
		return nil, err
	}

	claim.Status = enums.ClaimStatusApproved
	return toClaimDTO(claim), nil
}

// RejectClaim settles a pending claim against the claimant.
func (s *service) RejectClaim(ctx context.Context, actorID, claimID uuid.UUID) (*ClaimDTO, error) {
	claim, post, err := s.loadDecision(ctx, actorID, claimID)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		settled, err := s.repo.WithTx(tx).SettleIfPending(ctx, claim.ID, enums.ClaimStatusRejected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reject claim")
		}
		if !settled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "claim has already been settled")
		}
		return s.dispatcher.WithTx(tx).ClaimRejected(ctx, claim.ClaimantID, post.ID, post.ItemName)
	}); err != nil {
		return nil, err
	}

	claim.Status = enums.ClaimStatusRejected
	return toClaimDTO(claim), nil
}

// ListClaims returns every claim on the post. Only the post owner and
// moderators may review evidence.
func (s *service) ListClaims(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID) ([]ClaimDTO, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if post.OwnerID != actorID && !actorIsModerator {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the post owner can review claims")
	}

	rows, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list claims")
	}
	result := make([]ClaimDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *toClaimDTO(&rows[i]))
	}
	return result, nil
}

// GetOwnClaim returns the caller's claim on the post, if any.
func (s *service) GetOwnClaim(ctx context.Context, claimantID, postID uuid.UUID) (*ClaimDTO, error) {
	claim, err := s.repo.GetByPostAndClaimant(ctx, postID, claimantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load claim")
	}
	if claim == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
	}
	return toClaimDTO(claim), nil
}

func (s *service) loadDecision(ctx context.Context, actorID, claimID uuid.UUID) (*models.VerificationClaim, *models.Post, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load claim")
	}
	if claim == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
	}

	post, err := s.posts.GetByID(ctx, claim.PostID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if post.OwnerID != actorID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the post owner can decide claims")
	}
	return claim, post, nil
}

func (s *service) buildEvidence(ctx context.Context, input SubmitClaimInput) (types.JSONMap, error) {
	evidence := types.JSONMap{}
	if description := strings.TrimSpace(input.Description); description != "" {
		evidence["description"] = description
	}
	if len(input.Files) == 0 {
		if len(evidence) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim requires a description or evidence files")
		}
		return evidence, nil
	}
	if s.uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "evidence storage is not configured")
	}

	files := make([]any, 0, len(input.Files))
	for _, file := range input.Files {
		stored, err := s.uploader.Upload(ctx, file.Filename, file.ContentType, file.Payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload evidence")
		}
		files = append(files, map[string]any{
			"name":   file.Filename,
			"object": stored.Name,
			"url":    stored.URL,
		})
	}
	evidence["files"] = files
	return evidence, nil
}
