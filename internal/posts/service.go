package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

// Service exposes lost/found post management.
type Service interface {
	CreatePost(ctx context.Context, ownerID uuid.UUID, input CreatePostInput) (*PostDTO, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*PostDTO, error)
	ListPosts(ctx context.Context, input ListPostsInput) (*PostListResult, error)
	UpdatePost(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID, input UpdatePostInput) (*PostDTO, error)
	DeletePost(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID) error
}

// CreatePostInput holds the validated payload to report an item.
type CreatePostInput struct {
	Kind        enums.PostKind
	ItemName    string
	Description string
	Location    string
}

// UpdatePostInput holds optional mutation values for a post.
type UpdatePostInput struct {
	ItemName    *string
	Description *string
	Location    *string
}

// ListPostsInput filters the public listing.
type ListPostsInput struct {
	Kind   *enums.PostKind
	Query  string
	Limit  int
	Cursor string
}

// EvidenceStore removes uploaded evidence objects when the claims that
// reference them are deleted. A nil store skips the cleanup.
type EvidenceStore interface {
	Delete(ctx context.Context, object string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	dbClient txRunner
	storage  EvidenceStore
	logg     *logger.Logger
}

// NewService constructs a post service instance. storage may be nil when no
// object store is configured.
func NewService(repo Repository, dbClient *db.Client, storage EvidenceStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, storage: storage, logg: logg}, nil
}

func (s *service) CreatePost(ctx context.Context, ownerID uuid.UUID, input CreatePostInput) (*PostDTO, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be lost or found")
	}
	itemName := strings.TrimSpace(input.ItemName)
	if itemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_name is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	post := &models.Post{
		OwnerID:            ownerID,
		Kind:               input.Kind,
		ItemName:           itemName,
		Description:        description,
		Location:           strings.TrimSpace(input.Location),
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert post")
	}
	return toPostDTO(post), nil
}

func (s *service) GetPost(ctx context.Context, postID uuid.UUID) (*PostDTO, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return toPostDTO(post), nil
}

func (s *service) ListPosts(ctx context.Context, input ListPostsInput) (*PostListResult, error) {
	var cursor *pagination.Cursor
	if input.Cursor != "" {
		parsed, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}
	if input.Kind != nil && !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be lost or found")
	}

	rows, next, err := s.repo.List(ctx, ListPostsParams{
		Kind:   input.Kind,
		Query:  input.Query,
		Limit:  input.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list posts")
	}

	result := &PostListResult{Posts: make([]PostDTO, 0, len(rows))}
	for i := range rows {
		result.Posts = append(result.Posts, *toPostDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) UpdatePost(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID, input UpdatePostInput) (*PostDTO, error) {
	post, err := s.loadOwned(ctx, actorID, actorIsModerator, postID)
	if err != nil {
		return nil, err
	}

	if input.ItemName != nil {
		name := strings.TrimSpace(*input.ItemName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_name cannot be empty")
		}
		post.ItemName = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
		}
		post.Description = description
	}
	if input.Location != nil {
		post.Location = strings.TrimSpace(*input.Location)
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update post")
	}
	return toPostDTO(post), nil
}

// DeletePost removes the post and everything hanging off it in one
// transaction, so a half-deleted conversation can never be observed. Evidence
// objects in the store are removed best-effort after the rows are gone.
func (s *service) DeletePost(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actorID, actorIsModerator, postID); err != nil {
		return err
	}

	var objects []string
	if s.storage != nil {
		var err error
		objects, err = s.repo.EvidenceObjects(ctx, postID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: collect evidence objects")
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteCascade(ctx, postID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete post cascade")
	}

	for _, object := range objects {
		if err := s.storage.Delete(ctx, object); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"object": object,
				"error":  err.Error(),
			}), "failed to delete evidence object")
		}
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, actorID uuid.UUID, actorIsModerator bool, postID uuid.UUID) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if post.OwnerID != actorID && !actorIsModerator {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the post owner can modify this post")
	}
	return post, nil
}
