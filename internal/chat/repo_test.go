package chat

import (
	"context"
	"testing"
	"time"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
)

func TestRepositoryConversationFlow(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	finder := mustCreateTestUser(t, tx)
	other := mustCreateTestUser(t, tx)
	post := mustCreateTestPost(t, tx, owner.ID)

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	seed := []models.Message{
		{PostID: post.ID, SenderID: finder.ID, ReceiverID: owner.ID, Body: "I found it", CreatedAt: base},
		{PostID: post.ID, SenderID: owner.ID, ReceiverID: finder.ID, Body: "Where?", CreatedAt: base.Add(time.Minute)},
		{PostID: post.ID, SenderID: other.ID, ReceiverID: owner.ID, Body: "me too", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := repo.Insert(ctx, &seed[i]); err != nil {
			t.Fatalf("insert message %d: %v", i, err)
		}
	}

	// The finder's view excludes the other participant's thread.
	rows, err := repo.ListConversation(ctx, post.ID, finder.ID)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 messages for finder, got %d", len(rows))
	}
	if rows[0].Body != "I found it" || rows[1].Body != "Where?" {
		t.Fatalf("expected ascending send order, got %q then %q", rows[0].Body, rows[1].Body)
	}

	fresh, err := repo.NewSince(ctx, post.ID, finder.ID, base)
	if err != nil {
		t.Fatalf("new since: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Body != "Where?" {
		t.Fatalf("expected strictly-after filtering, got %+v", fresh)
	}

	last, err := repo.LastMessage(ctx, post.ID, finder.ID)
	if err != nil {
		t.Fatalf("last message: %v", err)
	}
	if last == nil || last.Body != "Where?" {
		t.Fatalf("expected latest message, got %+v", last)
	}

	unread, err := repo.UnreadCount(ctx, post.ID, owner.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread for owner, got %d", unread)
	}

	marked, err := repo.MarkRead(ctx, post.ID, owner.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}
	marked, err = repo.MarkRead(ctx, post.ID, owner.ID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if marked != 0 {
		t.Fatalf("expected idempotent mark read, got %d", marked)
	}

	participating, err := repo.ParticipatingPostIDs(ctx, finder.ID)
	if err != nil {
		t.Fatalf("participating posts: %v", err)
	}
	if len(participating) != 1 || participating[0] != post.ID {
		t.Fatalf("expected finder participating in %s, got %v", post.ID, participating)
	}
}

func TestRepositoryInsertStampsCreatedAt(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	finder := mustCreateTestUser(t, tx)
	post := mustCreateTestPost(t, tx, owner.ID)

	msg := models.Message{PostID: post.ID, SenderID: finder.ID, ReceiverID: owner.ID, Body: "hello"}
	if err := repo.Insert(ctx, &msg); err != nil {
		t.Fatalf("insert message: %v", err)
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be filled by the database")
	}
	if d := time.Since(msg.CreatedAt); d < 0 || d > time.Minute {
		t.Fatalf("created_at %v not near the database clock", msg.CreatedAt)
	}
}

func TestRepositoryUnreadCountsByPost(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	owner := mustCreateTestUser(t, tx)
	finder := mustCreateTestUser(t, tx)
	first := mustCreateTestPost(t, tx, owner.ID)
	second := mustCreateTestPost(t, tx, owner.ID)

	seed := []models.Message{
		{PostID: first.ID, SenderID: finder.ID, ReceiverID: owner.ID, Body: "a"},
		{PostID: first.ID, SenderID: finder.ID, ReceiverID: owner.ID, Body: "b"},
		{PostID: second.ID, SenderID: finder.ID, ReceiverID: owner.ID, Body: "c"},
		{PostID: second.ID, SenderID: owner.ID, ReceiverID: finder.ID, Body: "d", IsRead: true},
	}
	for i := range seed {
		if err := repo.Insert(ctx, &seed[i]); err != nil {
			t.Fatalf("insert message %d: %v", i, err)
		}
	}

	counts, err := repo.UnreadCountsByPost(ctx, owner.ID)
	if err != nil {
		t.Fatalf("unread counts: %v", err)
	}
	if counts[first.ID] != 2 || counts[second.ID] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
