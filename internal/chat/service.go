package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/notifications"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/users"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/metrics"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/realtime"
)

// Transport labels for message-send metrics.
const (
	TransportREST      = "rest"
	TransportWebsocket = "ws"
)

// Service drives conversations: the authorized append path, history reads,
// polling, and read receipts.
type Service interface {
	AppendMessage(ctx context.Context, senderID, postID uuid.UUID, input AppendMessageInput) (*MessageDTO, error)
	ListConversation(ctx context.Context, userID, postID uuid.UUID) ([]MessageDTO, error)
	NewSince(ctx context.Context, userID, postID uuid.UUID, since time.Time, markRead bool) ([]MessageDTO, error)
	MarkRead(ctx context.Context, userID, postID uuid.UUID) (*ReadReceipt, error)
	UnreadCount(ctx context.Context, userID, postID uuid.UUID) (int64, error)
	Authorize(ctx context.Context, userID, postID uuid.UUID) error
}

// AppendMessageInput holds the validated message payload.
type AppendMessageInput struct {
	ReceiverID uuid.UUID
	Body       string
	Transport  string
}

// RateLimiter caps how fast one user can send messages.
type RateLimiter interface {
	AllowMessage(ctx context.Context, userID uuid.UUID) (bool, error)
}

type userReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo       Repository
	posts      posts.Repository
	policy     *AccessPolicy
	dispatcher *notifications.Dispatcher
	publisher  realtime.Publisher
	limiter    RateLimiter
	users      userReader
	metrics    *metrics.ChatMetrics
	logg       *logger.Logger
	cfg        config.ChatConfig
}

// NewService constructs a chat service instance.
func NewService(
	repo Repository,
	postRepo posts.Repository,
	policy *AccessPolicy,
	dispatcher *notifications.Dispatcher,
	publisher realtime.Publisher,
	limiter RateLimiter,
	userRepo *users.Repository,
	m *metrics.ChatMetrics,
	logg *logger.Logger,
	cfg config.ChatConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("message repository required")
	}
	if postRepo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("access policy required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		posts:      postRepo,
		policy:     policy,
		dispatcher: dispatcher,
		publisher:  publisher,
		limiter:    limiter,
		users:      userRepo,
		metrics:    m,
		logg:       logg,
		cfg:        cfg,
	}, nil
}

// AppendMessage runs the send path: authorization gate, body validation,
// rate limit, insert, then fan-out. Fan-out failures are logged and dropped;
// once the row is committed the send has happened.
func (s *service) AppendMessage(ctx context.Context, senderID, postID uuid.UUID, input AppendMessageInput) (*MessageDTO, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body cannot be empty")
	}
	if s.cfg.MaxMessageLen > 0 && len(body) > s.cfg.MaxMessageLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message body exceeds %d characters", s.cfg.MaxMessageLen))
	}
	if input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver_id is required")
	}
	if input.ReceiverID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot message yourself")
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Require(ctx, senderID, post); err != nil {
		return nil, err
	}
	if err := s.requireCounterpart(ctx, senderID, input.ReceiverID, post); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.AllowMessage(ctx, senderID)
		if err != nil {
			s.logg.Error(ctx, "chat: rate limit check failed, allowing send", err)
		} else if !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "you are sending messages too quickly")
		}
	}

	message := &models.Message{
		PostID:     postID,
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Body:       body,
	}
	if err := s.repo.Insert(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert message")
	}

	transport := input.Transport
	if transport == "" {
		transport = TransportREST
	}
	s.metrics.IncMessageSent(transport)

	dto := toMessageDTO(message)
	s.publishEvent(ctx, realtime.EventMessage, postID, dto)
	s.notifyReceiver(ctx, message, post)

	return dto, nil
}

// ListConversation returns the caller's full thread on the post in send
// order. Participants of an existing thread keep read access even if the
// gate would deny them today, so a rejected claimant can still see their own
// history.
func (s *service) ListConversation(ctx context.Context, userID, postID uuid.UUID) ([]MessageDTO, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.CanAccess(ctx, userID, post)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListConversation(ctx, postID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list conversation")
	}
	if !allowed && len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you are not authorized for this conversation")
	}

	result := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *toMessageDTO(&rows[i]))
	}
	return result, nil
}

// NewSince returns messages created strictly after the given instant. With
// markRead set, messages addressed to the caller are flipped to read in the
// same call, matching the polling client's contract.
func (s *service) NewSince(ctx context.Context, userID, postID uuid.UUID, since time.Time, markRead bool) ([]MessageDTO, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccessOrParticipation(ctx, userID, post); err != nil {
		return nil, err
	}

	rows, err := s.repo.NewSince(ctx, postID, userID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: poll messages")
	}

	if markRead {
		if _, err := s.markReadAndPublish(ctx, userID, postID); err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i].ReceiverID == userID {
				rows[i].IsRead = true
			}
		}
	}

	result := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *toMessageDTO(&rows[i]))
	}
	return result, nil
}

// MarkRead flips every unread message addressed to the caller in the post's
// conversation. Idempotent.
func (s *service) MarkRead(ctx context.Context, userID, postID uuid.UUID) (*ReadReceipt, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccessOrParticipation(ctx, userID, post); err != nil {
		return nil, err
	}
	return s.markReadAndPublish(ctx, userID, postID)
}

func (s *service) UnreadCount(ctx context.Context, userID, postID uuid.UUID) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, postID, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count unread messages")
	}
	return count, nil
}

// Authorize answers the gate question for transports that hold a connection
// open, like the websocket room join.
func (s *service) Authorize(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	return s.policy.Require(ctx, userID, post)
}

func (s *service) loadPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return post, nil
}

// requireCounterpart pins the receiver to the other side of the thread: a
// non-owner can only write to the post owner, and any receiver must pass the
// gate themselves.
func (s *service) requireCounterpart(ctx context.Context, senderID, receiverID uuid.UUID, post *models.Post) error {
	if senderID != post.OwnerID && receiverID != post.OwnerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver must be the post owner")
	}
	allowed, err := s.policy.CanAccess(ctx, receiverID, post)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver is not authorized for this conversation")
	}
	return nil
}

func (s *service) requireAccessOrParticipation(ctx context.Context, userID uuid.UUID, post *models.Post) error {
	allowed, err := s.policy.CanAccess(ctx, userID, post)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}
	last, err := s.repo.LastMessage(ctx, post.ID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check participation")
	}
	if last == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you are not authorized for this conversation")
	}
	return nil
}

func (s *service) markReadAndPublish(ctx context.Context, userID, postID uuid.UUID) (*ReadReceipt, error) {
	count, err := s.repo.MarkRead(ctx, postID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark messages read")
	}
	receipt := &ReadReceipt{PostID: postID, ReaderID: userID, Count: count}
	if count > 0 {
		s.publishEvent(ctx, realtime.EventMessagesRead, postID, receipt)
	}
	return receipt, nil
}

func (s *service) publishEvent(ctx context.Context, kind realtime.EventType, postID uuid.UUID, payload any) {
	if s.publisher == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logg.Error(ctx, "chat: marshaling realtime payload", err)
		return
	}
	event := realtime.Event{Type: kind, PostID: postID, Payload: raw}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logg.Error(ctx, "chat: publishing realtime event", err)
	}
}

func (s *service) notifyReceiver(ctx context.Context, message *models.Message, post *models.Post) {
	senderName := "Someone"
	if s.users != nil {
		sender, err := s.users.GetByID(ctx, message.SenderID)
		if err != nil {
			s.logg.Error(ctx, "chat: loading sender for notification", err)
		} else if sender != nil {
			senderName = sender.Name
		}
	}
	s.dispatcher.NewMessage(ctx, message.ReceiverID, message.PostID, senderName, post.ItemName)
}
