package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/controllers"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/middleware"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/chat"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/claims"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/inbox"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/notifications"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/posts"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/realtime"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/redis"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/storage/gcs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Storage *gcs.Client
	Hub     *realtime.Hub

	Posts         posts.Service
	Claims        claims.Service
	Chat          chat.Service
	Inbox         inbox.Service
	Notifications notifications.Service

	Metrics http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	claimPolicy := middleware.NewWriteRateLimitPolicy(
		"claims",
		cfg.RateLimit.ClaimWindow,
		cfg.RateLimit.ClaimLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, storagePinger(deps.Storage)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", controllers.ListPosts(deps.Posts, logg))
			r.Get("/{postID}", controllers.GetPost(deps.Posts, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Post("/", controllers.CreatePost(deps.Posts, logg))
				r.Patch("/{postID}", controllers.UpdatePost(deps.Posts, logg))
				r.Delete("/{postID}", controllers.DeletePost(deps.Posts, logg))

				r.With(
					middleware.WriteRateLimit(claimPolicy, deps.Redis, logg),
					middleware.MaxBody(cfg.Storage.MaxUploadBytes()),
				).Post("/{postID}/claims", controllers.SubmitClaim(deps.Claims, logg))
				r.Get("/{postID}/claims", controllers.ListClaims(deps.Claims, logg))
				r.Get("/{postID}/claims/mine", controllers.GetOwnClaim(deps.Claims, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/claims", func(r chi.Router) {
				r.Post("/{claimID}/approve", controllers.ApproveClaim(deps.Claims, logg))
				r.Post("/{claimID}/reject", controllers.RejectClaim(deps.Claims, logg))
			})

			r.Route("/conversations/{postID}", func(r chi.Router) {
				r.Get("/messages", controllers.ListConversation(deps.Chat, logg))
				r.Post("/messages", controllers.AppendMessage(deps.Chat, logg))
				r.Get("/messages/new", controllers.PollMessages(deps.Chat, logg))
				r.Post("/read", controllers.MarkConversationRead(deps.Chat, logg))
				r.Get("/unread", controllers.ConversationUnreadCount(deps.Chat, logg))
			})

			r.Get("/inbox", controllers.GetInbox(deps.Inbox, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread", controllers.NotificationUnreadCount(deps.Notifications, logg))
				r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
				r.Delete("/", controllers.ClearNotifications(deps.Notifications, logg))
			})
		})

		r.Get("/realtime/ws", controllers.RealtimeSocket(deps.Hub, deps.Chat, cfg.JWT, logg))
	})

	return r
}

// storagePinger hides a missing GCS client behind a nil interface so the
// readiness check skips it instead of panicking.
func storagePinger(client *gcs.Client) db.Pinger {
	if client == nil {
		return nil
	}
	return client
}
