package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	chatsvc "github.com/amora-app/amora/backend/internal/services/chat"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatWSHandler streams the live tail of a chat channel over a WebSocket.
// The connection is one-directional: messages are sent via the REST endpoint
// and arrive here through the feed subscription.
type ChatWSHandler struct {
	service *chatsvc.Service
	log     *zap.Logger
}

func NewChatWSHandler(service *chatsvc.Service, log *zap.Logger) *ChatWSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatWSHandler{service: service, log: log}
}

func (h *ChatWSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	// Authorization runs before the upgrade so the client gets a proper
	// HTTP status instead of a dropped socket.
	feed, cancel, err := h.service.Subscribe(r.Context(), matchID, identity.UserID)
	if err != nil {
		handleChatError(w, err)
		return
	}
	defer cancel()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Read pump: the client sends nothing meaningful, but reading is what
	// surfaces close frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-feed:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(messageResponse(msg)); err != nil {
				h.log.Debug("websocket write failed", zap.Int64("match_id", matchID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
