package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/middleware"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/internal/chat"
	pkgAuth "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/auth"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/realtime"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsMaxFrame   = 8 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The bearer token in the query string is the gate; origin pinning
		// would break native mobile clients.
		return true
	},
}

// clientFrame is what subscribers send upstream.
type clientFrame struct {
	Type       string `json:"type"`
	PostID     string `json:"postId"`
	ReceiverID string `json:"receiverId,omitempty"`
	Body       string `json:"body,omitempty"`
}

// errorFrame is pushed back when a client frame is rejected.
type errorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ackFrame confirms a room join or leave.
type ackFrame struct {
	Type   string `json:"type"`
	PostID string `json:"postId"`
}

// RealtimeSocket upgrades to a websocket and speaks the room protocol:
// join/leave subscribe the connection to post rooms, message appends through
// the same authorization gate as the REST path, mark_read flips receipts.
// Events published on any instance reach every subscriber via the Redis
// bridge feeding the hub.
func RealtimeSocket(hub *realtime.Hub, svc chat.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			token = middleware.BearerToken(r)
		}
		if token == "" {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}
		authClaims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "realtime: upgrade failed", err)
			}
			return
		}

		conn := hub.Register(authClaims.UserID)
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithUserID(ctx, authClaims.UserID.String())
		}

		go writePump(ws, conn)
		readPump(ctx, ws, conn, svc, logg)
	}
}

func readPump(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn, svc chat.Service, logg *logger.Logger) {
	defer func() {
		conn.Close()
		ws.Close()
	}()

	ws.SetReadLimit(wsMaxFrame)
	ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && logg != nil {
				logg.Error(ctx, "realtime: read failed", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			sendError(conn, pkgerrors.New(pkgerrors.CodeValidation, "malformed frame"))
			continue
		}
		postID, err := uuid.Parse(frame.PostID)
		if err != nil {
			sendError(conn, pkgerrors.New(pkgerrors.CodeValidation, "invalid postId"))
			continue
		}

		switch frame.Type {
		case "join":
			if err := svc.Authorize(ctx, conn.UserID(), postID); err != nil {
				sendError(conn, err)
				continue
			}
			conn.Join(postID)
			sendAck(conn, "joined", postID)

		case "leave":
			conn.Leave(postID)
			sendAck(conn, "left", postID)

		case "message":
			receiverID, err := uuid.Parse(frame.ReceiverID)
			if err != nil {
				sendError(conn, pkgerrors.New(pkgerrors.CodeValidation, "invalid receiverId"))
				continue
			}
			if _, err := svc.AppendMessage(ctx, conn.UserID(), postID, chat.AppendMessageInput{
				ReceiverID: receiverID,
				Body:       frame.Body,
				Transport:  chat.TransportWebsocket,
			}); err != nil {
				sendError(conn, err)
			}

		case "mark_read":
			if _, err := svc.MarkRead(ctx, conn.UserID(), postID); err != nil {
				sendError(conn, err)
			}

		default:
			sendError(conn, pkgerrors.New(pkgerrors.CodeValidation, "unknown frame type"))
		}
	}
}

func writePump(ws *websocket.Conn, conn *realtime.Conn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.Send():
			ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sendAck(conn *realtime.Conn, kind string, postID uuid.UUID) {
	pushFrame(conn, ackFrame{Type: kind, PostID: postID.String()})
}

func sendError(conn *realtime.Conn, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	pushFrame(conn, errorFrame{Type: "error", Code: string(typed.Code()), Message: typed.Message()})
}

// pushFrame routes per-connection frames through the write pump; the
// websocket has a single writer.
func pushFrame(conn *realtime.Conn, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	conn.Push(raw)
}
