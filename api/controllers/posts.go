package controllers

import (
	"net/http"
	"strings"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/middleware"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/validators"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/pagination"
)

type createPostRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=lost found"`
	ItemName    string `json:"item_name" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Location    string `json:"location" validate:"max=500"`
}

type updatePostRequest struct {
	ItemName    *string `json:"item_name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Location    *string `json:"location" validate:"omitempty,max=500"`
}

// CreatePost reports a lost or found item.
func CreatePost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPostRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePostKind(req.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		post, err := svc.CreatePost(r.Context(), userID, posts.CreatePostInput{
			Kind:        kind,
			ItemName:    req.ItemName,
			Description: req.Description,
			Location:    req.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// GetPost returns a single post by id.
func GetPost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathUUID(r, "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.GetPost(r.Context(), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// ListPosts returns the public feed with optional kind and search filters.
func ListPosts(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := posts.ListPostsInput{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), 200),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParsePostKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
				return
			}
			input.Kind = &kind
		}

		result, err := svc.ListPosts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdatePost edits the caller's post.
func UpdatePost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		postID, err := pathUUID(r, "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePostRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.UpdatePost(r.Context(), userID, middleware.ModeratorFromContext(r.Context()), postID, posts.UpdatePostInput{
			ItemName:    req.ItemName,
			Description: req.Description,
			Location:    req.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// DeletePost removes the caller's post and its conversations.
func DeletePost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		postID, err := pathUUID(r, "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePost(r.Context(), userID, middleware.ModeratorFromContext(r.Context()), postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
