package inbox

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/chat"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/claims"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/users"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
)

const previewLen = 120

// Service assembles the unified conversation inbox: threads on posts the
// user owns and threads on posts they participate in as the other side.
type Service interface {
	GetInbox(ctx context.Context, userID uuid.UUID) (*InboxDTO, error)
}

// InboxDTO is the aggregated inbox view.
type InboxDTO struct {
	Owned         []ThreadDTO `json:"owned"`
	Participating []ThreadDTO `json:"participating"`
	TotalUnread   int64       `json:"total_unread"`
}

// ThreadDTO is one conversation entry in the inbox.
type ThreadDTO struct {
	PostID          uuid.UUID      `json:"post_id"`
	ItemName        string         `json:"item_name"`
	Kind            enums.PostKind `json:"kind"`
	CounterpartID   *uuid.UUID     `json:"counterpart_id,omitempty"`
	CounterpartName string         `json:"counterpart_name,omitempty"`
	LastMessage     *string        `json:"last_message,omitempty"`
	LastMessageAt   *time.Time     `json:"last_message_at,omitempty"`
	UnreadCount     int64          `json:"unread_count"`
}

type userReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type service struct {
	messages chat.Repository
	posts    posts.Repository
	claims   claims.Repository
	users    userReader
}

// NewService constructs an inbox service instance.
func NewService(messageRepo chat.Repository, postRepo posts.Repository, claimRepo claims.Repository, userRepo *users.Repository) (Service, error) {
	if messageRepo == nil {
		return nil, fmt.Errorf("message repository required")
	}
	if postRepo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if claimRepo == nil {
		return nil, fmt.Errorf("claim repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{
		messages: messageRepo,
		posts:    postRepo,
		claims:   claimRepo,
		users:    userRepo,
	}, nil
}

// GetInbox returns the user's threads, newest activity first in each
// section. Owned threads surface the counterpart the owner last heard from,
// preferring the approved claimant when one exists.
func (s *service) GetInbox(ctx context.Context, userID uuid.UUID) (*InboxDTO, error) {
	unreadByPost, err := s.messages.UnreadCountsByPost(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: unread counts")
	}

	owned, err := s.ownedThreads(ctx, userID, unreadByPost)
	if err != nil {
		return nil, err
	}
	participating, err := s.participatingThreads(ctx, userID, unreadByPost)
	if err != nil {
		return nil, err
	}

	if err := s.fillCounterpartNames(ctx, owned, participating); err != nil {
		return nil, err
	}

	inbox := &InboxDTO{Owned: owned, Participating: participating}
	for _, count := range unreadByPost {
		inbox.TotalUnread += count
	}
	return inbox, nil
}

func (s *service) ownedThreads(ctx context.Context, userID uuid.UUID, unread map[uuid.UUID]int64) ([]ThreadDTO, error) {
	ownedPosts, err := s.posts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list owned posts")
	}

	threads := make([]ThreadDTO, 0, len(ownedPosts))
	for i := range ownedPosts {
		post := &ownedPosts[i]
		thread, err := s.buildThread(ctx, userID, post, unread[post.ID])
		if err != nil {
			return nil, err
		}
		if thread.LastMessage == nil && thread.CounterpartID == nil {
			// Nothing has happened on this post yet; keep the inbox to
			// actual conversations.
			continue
		}
		threads = append(threads, *thread)
	}
	sortThreads(threads)
	return threads, nil
}

func (s *service) participatingThreads(ctx context.Context, userID uuid.UUID, unread map[uuid.UUID]int64) ([]ThreadDTO, error) {
	postIDs, err := s.messages.ParticipatingPostIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: participating posts")
	}
	postsByID, err := s.posts.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load posts")
	}

	threads := make([]ThreadDTO, 0, len(postIDs))
	for _, postID := range postIDs {
		post, ok := postsByID[postID]
		if !ok || post.OwnerID == userID {
			continue
		}
		thread, err := s.buildThread(ctx, userID, &post, unread[post.ID])
		if err != nil {
			return nil, err
		}
		owner := post.OwnerID
		thread.CounterpartID = &owner
		threads = append(threads, *thread)
	}
	sortThreads(threads)
	return threads, nil
}

func (s *service) buildThread(ctx context.Context, userID uuid.UUID, post *models.Post, unreadCount int64) (*ThreadDTO, error) {
	thread := &ThreadDTO{
		PostID:      post.ID,
		ItemName:    post.ItemName,
		Kind:        post.Kind,
		UnreadCount: unreadCount,
	}

	last, err := s.messages.LastMessage(ctx, post.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: last message")
	}
	if last != nil {
		preview := truncatePreview(last.Body)
		thread.LastMessage = &preview
		created := last.CreatedAt
		thread.LastMessageAt = &created

		other := last.SenderID
		if other == userID {
			other = last.ReceiverID
		}
		if other != userID {
			thread.CounterpartID = &other
		}
	}

	if post.OwnerID == userID {
		claimant, err := s.claims.ApprovedClaimant(ctx, post.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: approved claimant")
		}
		if claimant != nil {
			thread.CounterpartID = claimant
		}
	}
	return thread, nil
}

func (s *service) fillCounterpartNames(ctx context.Context, sections ...[]ThreadDTO) error {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, section := range sections {
		for i := range section {
			if section[i].CounterpartID == nil {
				continue
			}
			id := *section[i].CounterpartID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	usersByID, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load counterpart users")
	}
	for _, section := range sections {
		for i := range section {
			if section[i].CounterpartID == nil {
				continue
			}
			if user, ok := usersByID[*section[i].CounterpartID]; ok {
				section[i].CounterpartName = user.Name
			}
		}
	}
	return nil
}

// truncatePreview caps the body at previewLen bytes without splitting a
// multi-byte rune.
func truncatePreview(body string) string {
	if len(body) <= previewLen {
		return body
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

func sortThreads(threads []ThreadDTO) {
	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i].LastMessageAt, threads[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
