package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

// Service exposes the notification feed and read-state operations.
type Service interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, input ListInput) (*NotificationListResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ListInput filters the notification feed.
type ListInput struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

type service struct {
	repo Repository
}

// NewService constructs a notification service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListNotifications(ctx context.Context, userID uuid.UUID, input ListInput) (*NotificationListResult, error) {
	var cursor *pagination.Cursor
	if input.Cursor != "" {
		parsed, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, userID, ListParams{
		UnreadOnly: input.UnreadOnly,
		Limit:      input.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list notifications")
	}

	result := &NotificationListResult{Notifications: make([]NotificationDTO, 0, len(rows))}
	for i := range rows {
		result.Notifications = append(result.Notifications, *toNotificationDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	updated, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark notification read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark all notifications read")
	}
	return count, nil
}

func (s *service) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.ClearAll(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear notifications")
	}
	return count, nil
}
