package controllers

import (
	"net/http"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/inbox"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

// GetInbox returns the caller's aggregated conversation inbox.
func GetInbox(svc inbox.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetInbox(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
