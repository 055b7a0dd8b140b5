package handlers

import (
	"log"
	"net/http"

	"fleet-management/internal/websocket"
	"fleet-management/pkg/jwt"
	"fleet-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type WebSocketHandler struct {
	hub     *websocket.Hub
	jwtUtil *jwt.JWTUtil
}

func NewWebSocketHandler(hub *websocket.Hub, jwtUtil *jwt.JWTUtil) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtUtil: jwtUtil}
}

// Connect upgrades the request and registers the client with the hub.
// Browsers cannot set an Authorization header on a WebSocket dial, so
// the token is also accepted as a query parameter.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
	}
	if token == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication token required", nil)
		return
	}

	claims, err := h.jwtUtil.ValidateToken(token)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token", err)
		return
	}

	conn, err := h.hub.GetUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.hub.RegisterClient(claims.UserID, claims.Role, conn)
}

// Stats reports connection counts per role
func (h *WebSocketHandler) Stats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "WebSocket stats retrieved successfully", h.hub.Stats())
}
