package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/metrics"
)

// Dispatcher fans out notifications for claim and chat events. Claim
// notifications run inside the caller's transaction so they commit with the
// state change; message notifications are best effort.
type Dispatcher struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.ChatMetrics
}

// NewDispatcher constructs a notification dispatcher.
func NewDispatcher(repo Repository, logg *logger.Logger, m *metrics.ChatMetrics) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{repo: repo, logg: logg, metrics: m}, nil
}

// WithTx returns a dispatcher whose writes join the given transaction.
func (d *Dispatcher) WithTx(tx *gorm.DB) *Dispatcher {
	if tx == nil {
		return d
	}
	return &Dispatcher{repo: d.repo.WithTx(tx), logg: d.logg, metrics: d.metrics}
}

// ClaimSubmitted tells the post owner a new claim arrived.
func (d *Dispatcher) ClaimSubmitted(ctx context.Context, ownerID, postID uuid.UUID, itemName string) error {
	return d.create(ctx, &models.Notification{
		UserID:  ownerID,
		PostID:  &postID,
		Type:    enums.NotificationTypeClaimSubmitted,
		Message: fmt.Sprintf("New ownership claim on your post %q", itemName),
		Link:    postLink(postID),
	})
}

// ClaimApproved tells both parties the claim was approved and the
// conversation is open.
func (d *Dispatcher) ClaimApproved(ctx context.Context, ownerID, claimantID, postID uuid.UUID, itemName string) error {
	if err := d.create(ctx, &models.Notification{
		UserID:  claimantID,
		PostID:  &postID,
		Type:    enums.NotificationTypeClaimApproved,
		Message: fmt.Sprintf("Your claim on %q was approved. You can now message the finder.", itemName),
		Link:    postLink(postID),
	}); err != nil {
		return err
	}
	return d.create(ctx, &models.Notification{
		UserID:  ownerID,
		PostID:  &postID,
		Type:    enums.NotificationTypeClaimApproved,
		Message: fmt.Sprintf("You approved a claim on %q. The item is now marked verified.", itemName),
		Link:    postLink(postID),
	})
}

// ClaimRejected tells the claimant their claim was rejected.
func (d *Dispatcher) ClaimRejected(ctx context.Context, claimantID, postID uuid.UUID, itemName string) error {
	return d.create(ctx, &models.Notification{
		UserID:  claimantID,
		PostID:  &postID,
		Type:    enums.NotificationTypeClaimRejected,
		Message: fmt.Sprintf("Your claim on %q was rejected.", itemName),
		Link:    postLink(postID),
	})
}

// NewMessage pings the receiver about fresh chat activity. At most one unread
// new-message notification exists per (receiver, post); repeats are dropped
// until the previous one is read. Failures are logged, never surfaced, so a
// notification hiccup cannot fail a message send.
func (d *Dispatcher) NewMessage(ctx context.Context, receiverID, postID uuid.UUID, senderName, itemName string) {
	pending, err := d.repo.HasUnread(ctx, receiverID, postID, enums.NotificationTypeNewMessage)
	if err != nil {
		d.logg.Error(ctx, "notifications: checking unread message ping", err)
		return
	}
	if pending {
		return
	}

	err = d.create(ctx, &models.Notification{
		UserID:  receiverID,
		PostID:  &postID,
		Type:    enums.NotificationTypeNewMessage,
		Message: fmt.Sprintf("%s sent you a message about %q", senderName, itemName),
		Link:    postLink(postID),
	})
	if err != nil {
		d.logg.Error(ctx, "notifications: creating message ping", err)
	}
}

func (d *Dispatcher) create(ctx context.Context, notification *models.Notification) error {
	if err := d.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert notification")
	}
	d.metrics.IncNotification(string(notification.Type))
	return nil
}

func postLink(postID uuid.UUID) *string {
	link := "/posts/" + postID.String()
	return &link
}
