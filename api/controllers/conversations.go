package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/validators"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/chat"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

type appendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Text       string `json:"text" validate:"required"`
}

// AppendMessage posts a message into a post's conversation.
func AppendMessage(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req appendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver_id"))
			return
		}

		message, err := svc.AppendMessage(r.Context(), userID, postID, chat.AppendMessageInput{
			ReceiverID: receiverID,
			Body:       req.Text,
			Transport:  chat.TransportREST,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListConversation returns the caller's full thread on the post.
func ListConversation(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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

		messages, err := svc.ListConversation(r.Context(), userID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"messages": messages})
	}
}

// PollMessages returns messages newer than the given instant. Setting
// markRead also flips messages addressed to the caller, which is what the
// polling client wants: fetched means seen.
func PollMessages(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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
		since, err := validators.ParseQueryTime(r, "since")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markRead, err := validators.ParseQueryBool(r, "markRead", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, err := svc.NewSince(r.Context(), userID, postID, since, markRead)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"messages": messages})
	}
}

// MarkConversationRead flips every unread message addressed to the caller.
func MarkConversationRead(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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

		receipt, err := svc.MarkRead(r.Context(), userID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// ConversationUnreadCount returns how many unread messages await the caller.
func ConversationUnreadCount(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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

		count, err := svc.UnreadCount(r.Context(), userID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
