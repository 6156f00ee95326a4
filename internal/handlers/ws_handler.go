package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/titoride/backend/internal/middleware"
	"github.com/titoride/backend/internal/notify"
)

// WSHandler upgrades notification push connections. Browsers cannot set an
// Authorization header on a websocket handshake, so the token rides in the
// query string instead.
type WSHandler struct {
	hub       *notify.Hub
	jwtSecret string
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *notify.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: jwtSecret}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve authenticates the handshake and hands the connection to the hub.
// The connection becomes addressable only after its join message.
func (h *WSHandler) Serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}
	claims, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	// The join message may only claim the room of the token's owner.
	h.hub.Serve(c.Response(), c.Request(), claims.UserID)
	return nil
}
