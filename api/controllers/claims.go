package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/middleware"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/validators"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/claims"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

type submitClaimRequest struct {
	Description string                `json:"description" validate:"max=5000"`
	Files       []claimEvidenceUpload `json:"files" validate:"max=5,dive"`
}

type claimEvidenceUpload struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"max=100"`
	Data        []byte `json:"data" validate:"required"`
}

// SubmitClaim files an ownership claim on a found post.
func SubmitClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req submitClaimRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := claims.SubmitClaimInput{Description: req.Description}
		for _, file := range req.Files {
			input.Files = append(input.Files, claims.EvidenceFile{
				Filename:    file.Filename,
				ContentType: file.ContentType,
				Payload:     file.Data,
			})
		}

		claim, err := svc.SubmitClaim(r.Context(), userID, postID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, claim)
	}
}

// ListClaims returns every claim on the post for the owner's review.
func ListClaims(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListClaims(r.Context(), userID, middleware.ModeratorFromContext(r.Context()), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"claims": result})
	}
}

// GetOwnClaim returns the caller's claim on the post.
func GetOwnClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
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

		claim, err := svc.GetOwnClaim(r.Context(), userID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// ApproveClaim settles a claim in the claimant's favor.
func ApproveClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return decideClaim(logg, svc.ApproveClaim)
}

// RejectClaim settles a claim against the claimant.
func RejectClaim(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return decideClaim(logg, svc.RejectClaim)
}

func decideClaim(logg *logger.Logger, decide func(ctx context.Context, actorID, claimID uuid.UUID) (*claims.ClaimDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claimID, err := pathUUID(r, "claimID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := decide(r.Context(), userID, claimID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}
