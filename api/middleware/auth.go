package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	pkgAuth "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/auth"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxModerator, claims.IsModerator)

			if logg != nil {
				fields := map[string]any{
					"user_id": claims.UserID.String(),
				}
				if claims.IsModerator {
					fields["is_moderator"] = true
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
