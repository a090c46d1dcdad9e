package realtime

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
)

type Handler struct {
	hub        *Hub
	jwtManager *auth.JWTManager
	upgrader   websocket.Upgrader
}

// NewHandler builds the feed endpoint. An empty allowedOrigins accepts any origin.
func NewHandler(hub *Hub, jwtManager *auth.JWTManager, allowedOrigins []string) *Handler {
	return &Handler{
		hub:        hub,
		jwtManager: jwtManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Bookings streams booking events to an admin. Browsers cannot set headers on
// a websocket handshake, so the access token travels in the query string.
func (h *Handler) Bookings(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, apperror.New(apperror.KindUnauthorized, "missing token"))
		return
	}
	claims, err := h.jwtManager.ParseAndValidate(token)
	if err != nil {
		response.Error(c, apperror.New(apperror.KindUnauthorized, "invalid or expired token"))
		return
	}
	actor := claims.Actor()
	if err := auth.Authorize(actor, "", auth.RoleAdmin); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	cl := &client{
		hub:    h.hub,
		userID: actor.ID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	if err := h.hub.register(cl); err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/realtime/bookings", h.Bookings)
}
