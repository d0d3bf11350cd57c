package claims

import (
	"context"
	"testing"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

func TestRepositoryClaimFlow(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	claimant := mustCreateTestUser(t, tx)
	post := mustCreateTestPost(t, tx, owner.ID)

	claim := &models.VerificationClaim{
		PostID:     post.ID,
		ClaimantID: claimant.ID,
		Status:     enums.ClaimStatusPending,
		Evidence:   types.JSONMap{"description": "engraving on the back"},
	}
	if err := repo.Create(ctx, claim); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	duplicate := &models.VerificationClaim{
		PostID:     post.ID,
		ClaimantID: claimant.ID,
		Status:     enums.ClaimStatusPending,
		Evidence:   types.JSONMap{},
	}
	err := repo.Create(ctx, duplicate)
	if err == nil {
		t.Fatal("expected unique violation for duplicate claim")
	}
	if !pkgerrors.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRepositorySettleIfPendingOnce(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	claimant := mustCreateTestUser(t, tx)
	post := mustCreateTestPost(t, tx, owner.ID)

	claim := &models.VerificationClaim{
		PostID:     post.ID,
		ClaimantID: claimant.ID,
		Status:     enums.ClaimStatusPending,
		Evidence:   types.JSONMap{},
	}
	if err := repo.Create(ctx, claim); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	settled, err := repo.SettleIfPending(ctx, claim.ID, enums.ClaimStatusApproved)
	if err != nil {
		t.Fatalf("settle claim: %v", err)
	}
	if !settled {
		t.Fatal("expected first settle to win")
	}

	settled, err = repo.SettleIfPending(ctx, claim.ID, enums.ClaimStatusRejected)
	if err != nil {
		t.Fatalf("settle claim again: %v", err)
	}
	if settled {
		t.Fatal("expected settled claim to be immutable")
	}

	approved, err := repo.HasApprovedClaim(ctx, post.ID, claimant.ID)
	if err != nil {
		t.Fatalf("has approved claim: %v", err)
	}
	if !approved {
		t.Fatal("expected approved claim to be visible")
	}

	winner, err := repo.ApprovedClaimant(ctx, post.ID)
	if err != nil {
		t.Fatalf("approved claimant: %v", err)
	}
	if winner == nil || *winner != claimant.ID {
		t.Fatalf("expected claimant %s, got %v", claimant.ID, winner)
	}
}
