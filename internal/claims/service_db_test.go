package claims

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/notifications"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

// The service commits real transactions, so this test runs against the live
// connection instead of a rolled-back tx and removes its rows afterwards.
func TestService_ApproveClaimSecondApprovalRollsBack(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	owner := mustCreateTestUser(t, conn)
	firstClaimant := mustCreateTestUser(t, conn)
	secondClaimant := mustCreateTestUser(t, conn)
	post := mustCreateTestPost(t, conn, owner.ID)
	t.Cleanup(func() {
		conn.Where("post_id = ?", post.ID).Delete(&models.Notification{})
		conn.Where("post_id = ?", post.ID).Delete(&models.VerificationClaim{})
		conn.Where("id = ?", post.ID).Delete(&models.Post{})
		conn.Where("id IN ?", []uuid.UUID{owner.ID, firstClaimant.ID, secondClaimant.ID}).Delete(&models.User{})
	})

	repo := NewRepository(conn)
	first := &models.VerificationClaim{PostID: post.ID, ClaimantID: firstClaimant.ID, Status: enums.ClaimStatusPending}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first claim: %v", err)
	}
	second := &models.VerificationClaim{PostID: post.ID, ClaimantID: secondClaimant.ID, Status: enums.ClaimStatusPending}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second claim: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	dispatcher, err := notifications.NewDispatcher(notifications.NewRepository(conn), logg, nil)
	if err != nil {
		t.Fatalf("create dispatcher: %v", err)
	}
	svc := &service{
		repo:       repo,
		posts:      posts.NewRepository(conn),
		dbClient:   db.NewWithConn(conn),
		dispatcher: dispatcher,
	}

	dto, err := svc.ApproveClaim(ctx, owner.ID, first.ID)
	if err != nil {
		t.Fatalf("approve first claim: %v", err)
	}
	if dto.Status != enums.ClaimStatusApproved {
		t.Fatalf("expected approved status, got %s", dto.Status)
	}

	_, err = svc.ApproveClaim(ctx, owner.ID, second.ID)
	if err == nil {
		t.Fatal("expected second approval to fail")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %s", code)
	}

	// The losing approval's claim update must have rolled back with the
	// transaction, not left the claim half-settled.
	reloaded, err := repo.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("reload second claim: %v", err)
	}
	if reloaded == nil || reloaded.Status != enums.ClaimStatusPending {
		t.Fatalf("expected second claim still pending, got %+v", reloaded)
	}

	verified, err := posts.NewRepository(conn).GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if verified == nil || verified.VerificationStatus != enums.VerificationStatusVerified {
		t.Fatalf("expected post verified by the first approval, got %+v", verified)
	}
}
