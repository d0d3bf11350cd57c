package posts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

func TestRepositoryPostFlow(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)

	post := &models.Post{
		OwnerID:            owner.ID,
		Kind:               enums.PostKindFound,
		ItemName:           "Silver watch",
		Description:        "Found near the library entrance",
		Location:           "Library",
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ID == uuid.Nil {
		t.Fatal("expected post id to be generated")
	}

	fetched, err := repo.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if fetched == nil || fetched.ItemName != "Silver watch" {
		t.Fatalf("unexpected fetch result: %+v", fetched)
	}

	fetched.Description = "Found near the library, engraved back"
	if err := repo.Update(ctx, fetched); err != nil {
		t.Fatalf("update post: %v", err)
	}

	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("get missing post: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing post")
	}
}

func TestRepositoryListCursorPagination(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		post := &models.Post{
			OwnerID:            owner.ID,
			Kind:               enums.PostKindLost,
			ItemName:           "Notebook",
			Description:        "Spiral bound",
			VerificationStatus: enums.VerificationStatusPending,
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, post); err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}

	kind := enums.PostKindLost
	firstPage, next, err := repo.List(ctx, ListPostsParams{Kind: &kind, Query: "spiral", Limit: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(firstPage) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(firstPage))
	}
	if next == nil {
		t.Fatal("expected next cursor")
	}
	if !firstPage[0].CreatedAt.After(firstPage[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	secondPage, next, err := repo.List(ctx, ListPostsParams{Kind: &kind, Query: "spiral", Limit: 2, Cursor: next})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(secondPage) != 1 {
		t.Fatalf("expected 1 post on second page, got %d", len(secondPage))
	}
	if next != nil {
		t.Fatal("expected no cursor after last page")
	}
	if secondPage[0].CreatedAt.After(firstPage[1].CreatedAt) {
		t.Fatal("expected second page older than first")
	}

	none, emptyCursor, err := repo.List(ctx, ListPostsParams{Kind: &kind, Query: "no such item", Limit: 2})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(none) != 0 || emptyCursor != nil {
		t.Fatalf("expected empty result, got %d rows", len(none))
	}
}

func TestRepositoryMarkVerifiedOnce(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	post := &models.Post{
		OwnerID:            owner.ID,
		Kind:               enums.PostKindFound,
		ItemName:           "Keys",
		Description:        "Set of three keys",
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	won, err := repo.MarkVerified(ctx, post.ID)
	if err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	if !won {
		t.Fatal("expected first transition to win")
	}

	won, err = repo.MarkVerified(ctx, post.ID)
	if err != nil {
		t.Fatalf("mark verified again: %v", err)
	}
	if won {
		t.Fatal("expected second transition to lose")
	}
}

func TestRepositoryEvidenceObjects(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	first := mustCreateTestUser(t, tx)
	second := mustCreateTestUser(t, tx)
	post := &models.Post{
		OwnerID:            owner.ID,
		Kind:               enums.PostKindFound,
		ItemName:           "Silver watch",
		Description:        "Engraved back",
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	seed := []models.VerificationClaim{
		{
			PostID: post.ID, ClaimantID: first.ID, Status: enums.ClaimStatusPending,
			Evidence: types.JSONMap{
				"description": "purchase receipt",
				"files": []any{
					map[string]any{"name": "receipt.jpg", "object": "claims/a/receipt.jpg"},
					map[string]any{"name": "photo.png", "object": "claims/a/photo.png"},
				},
			},
		},
		{
			PostID: post.ID, ClaimantID: second.ID, Status: enums.ClaimStatusPending,
			Evidence: types.JSONMap{"description": "no attachments"},
		},
	}
	for i := range seed {
		if err := tx.Create(&seed[i]).Error; err != nil {
			t.Fatalf("create claim %d: %v", i, err)
		}
	}

	objects, err := repo.EvidenceObjects(ctx, post.ID)
	if err != nil {
		t.Fatalf("evidence objects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %v", objects)
	}
	want := map[string]bool{"claims/a/receipt.jpg": true, "claims/a/photo.png": true}
	for _, object := range objects {
		if !want[object] {
			t.Fatalf("unexpected object %q", object)
		}
	}
}

func TestRepositoryDeleteCascade(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	claimant := mustCreateTestUser(t, tx)
	post := &models.Post{
		OwnerID:            owner.ID,
		Kind:               enums.PostKindFound,
		ItemName:           "Umbrella",
		Description:        "Black, folding",
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	claim := &models.VerificationClaim{PostID: post.ID, ClaimantID: claimant.ID, Status: enums.ClaimStatusPending}
	if err := tx.Create(claim).Error; err != nil {
		t.Fatalf("create claim: %v", err)
	}
	message := &models.Message{PostID: post.ID, SenderID: claimant.ID, ReceiverID: owner.ID, Body: "mine"}
	if err := tx.Create(message).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := repo.DeleteCascade(ctx, post.ID); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	var count int64
	if err := tx.Model(&models.Message{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected messages deleted, found %d", count)
	}
	if err := tx.Model(&models.VerificationClaim{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected claims deleted, found %d", count)
	}
	gone, err := repo.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get deleted post: %v", err)
	}
	if gone != nil {
		t.Fatal("expected post deleted")
	}
}
