package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"
	"zela-wheel-backend/internal/wheel"
)

type TokenHandler struct {
	validator *wheel.Validator
	registry  *services.Registry
	logger    *zap.Logger
}

func NewTokenHandler(validator *wheel.Validator, registry *services.Registry, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{validator: validator, registry: registry, logger: logger}
}

type validateRequest struct {
	Token interface{} `json:"token"`
}

// Validate checks the format first, then whether the token was issued here and is still live.
func (h *TokenHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result := h.validator.ValidateValue(req.Token)
	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": result.Reason})
		return
	}

	token := req.Token.(string)
	rec, err := h.registry.Find(c.Request.Context(), token)
	if errors.Is(err, models.ErrTokenNotFound) {
		c.JSON(http.StatusOK, gin.H{"valid": true, "registered": false})
		return
	}
	if err != nil {
		h.logger.Error("token lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token lookup failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"registered": true,
		"prize":      rec.Prize,
		"issued_at":  rec.IssuedAt,
		"expires_at": rec.ExpiresAt,
		"expired":    rec.Expired(time.Now()),
		"used":       rec.Used,
	})
}
