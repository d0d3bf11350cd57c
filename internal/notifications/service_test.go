package notifications

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

type fakeRepository struct {
	created []models.Notification

	listFn      func(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.Notification, *pagination.Cursor, error)
	markReadFn  func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	hasUnreadFn func(ctx context.Context, userID uuid.UUID, postID uuid.UUID, kind enums.NotificationType) (bool, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) HasUnread(ctx context.Context, userID uuid.UUID, postID uuid.UUID, kind enums.NotificationType) (bool, error) {
	if f.hasUnreadFn != nil {
		return f.hasUnreadFn(ctx, userID, postID, kind)
	}
	return false, nil
}

func newServiceWithRepo(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	next := pagination.Cursor{CreatedAt: time.Now(), ID: uuid.New()}
	readAt := time.Now()
	repo := &fakeRepository{
		listFn: func(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
			rows := []models.Notification{
				{ID: uuid.New(), UserID: userID, Type: enums.NotificationTypeNewMessage},
				{ID: uuid.New(), UserID: userID, Type: enums.NotificationTypeClaimApproved, ReadAt: &readAt},
			}
			return rows, &next, nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	result, err := svc.ListNotifications(context.Background(), uuid.New(), ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(result.Notifications))
	}
	if result.Notifications[0].Read {
		t.Fatal("expected first notification unread")
	}
	if !result.Notifications[1].Read {
		t.Fatal("expected second notification read")
	}
	if result.NextCursor == nil {
		t.Fatal("expected next cursor")
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(t, &fakeRepository{})
	_, err := svc.ListNotifications(context.Background(), uuid.New(), ListInput{Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", code)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	svc := newServiceWithRepo(t, &fakeRepository{})
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %s", code)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := newServiceWithRepo(t, repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func newTestDispatcher(t *testing.T, repo Repository) *Dispatcher {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	d, err := NewDispatcher(repo, logg, nil)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func TestDispatcher_ClaimApprovedNotifiesBothParties(t *testing.T) {
	repo := &fakeRepository{}
	d := newTestDispatcher(t, repo)

	owner := uuid.New()
	claimant := uuid.New()
	if err := d.ClaimApproved(context.Background(), owner, claimant, uuid.New(), "Silver watch"); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	if repo.created[0].UserID != claimant || repo.created[1].UserID != owner {
		t.Fatalf("expected claimant then owner, got %s then %s", repo.created[0].UserID, repo.created[1].UserID)
	}
	for _, n := range repo.created {
		if n.Type != enums.NotificationTypeClaimApproved {
			t.Fatalf("expected claim_approved type, got %s", n.Type)
		}
		if n.Link == nil || n.PostID == nil {
			t.Fatal("expected post link on claim notification")
		}
	}
}

func TestDispatcher_NewMessageDedupes(t *testing.T) {
	repo := &fakeRepository{
		hasUnreadFn: func(ctx context.Context, userID uuid.UUID, postID uuid.UUID, kind enums.NotificationType) (bool, error) {
			return true, nil
		},
	}
	d := newTestDispatcher(t, repo)

	d.NewMessage(context.Background(), uuid.New(), uuid.New(), "Rafi", "Student ID card")
	if len(repo.created) != 0 {
		t.Fatalf("expected dedupe to drop the ping, got %d notifications", len(repo.created))
	}
}

func TestDispatcher_NewMessageCreatesPing(t *testing.T) {
	repo := &fakeRepository{}
	d := newTestDispatcher(t, repo)

	receiver := uuid.New()
	d.NewMessage(context.Background(), receiver, uuid.New(), "Rafi", "Student ID card")
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	if repo.created[0].UserID != receiver {
		t.Fatalf("expected ping for receiver, got %s", repo.created[0].UserID)
	}
	if repo.created[0].Type != enums.NotificationTypeNewMessage {
		t.Fatalf("expected new_message type, got %s", repo.created[0].Type)
	}
}
