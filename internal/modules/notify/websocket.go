package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/response"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Authenticator resolves an access token to the principal of a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (session.Principal, error)
}

type WSHandler struct {
	hub  *Hub
	auth Authenticator
	log  *zap.Logger
}

func NewWSHandler(hub *Hub, auth Authenticator, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{hub: hub, auth: auth, log: log.Named("ws")}
}

func (h *WSHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades GET /ws?token=ACCESS_TOKEN. Browsers cannot set
// headers on websocket requests, so the token comes in the query string.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required. Use ?token=ACCESS_TOKEN")
		return
	}

	principal, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := h.hub.register(principal.UserID, conn)
	h.log.Debug("connected", zap.String("user_id", principal.UserID))
	defer func() {
		h.hub.unregister(principal.UserID, cl)
		h.log.Debug("disconnected", zap.String("user_id", principal.UserID))
	}()

	go h.hub.writePump(cl)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients only listen; anything they send is discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("read failed", zap.String("user_id", principal.UserID), zap.Error(err))
			}
			return
		}
	}
}
