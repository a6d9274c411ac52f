package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/services"
)

type AuthHandler struct {
	jwtService *services.JWTService
	logger     *zap.Logger
}

func NewAuthHandler(jwtService *services.JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{jwtService: jwtService, logger: logger}
}

// CreateSession issues an anonymous player id and its session token.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	session, token, err := h.jwtService.NewSession()
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create session",
			"details": err.Error(),
		})
		return
	}

	h.logger.Info("player session created", zap.String("player_id", session.PlayerID))

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"player_id":  session.PlayerID,
		"session_id": session.SessionID,
		"expires_at": session.ExpiresAt,
	})
}
