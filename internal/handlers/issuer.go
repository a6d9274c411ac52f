package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"
)

// IssuerHandler is the signing authority other instances reach through RemoteIssuer.
type IssuerHandler struct {
	issuer services.TokenIssuer
	signer *services.PrizeSigner
	logger *zap.Logger
}

func NewIssuerHandler(issuer services.TokenIssuer, signer *services.PrizeSigner, logger *zap.Logger) *IssuerHandler {
	return &IssuerHandler{issuer: issuer, signer: signer, logger: logger}
}

func (h *IssuerHandler) Issue(c *gin.Context) {
	var req models.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if req.Prize != models.CategoryGrand {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only GRAND prizes carry a token"})
		return
	}

	issued, err := h.issuer.Issue(c.Request.Context(), req.Prize)
	if err != nil {
		h.logger.Error("signing authority failed to issue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token", "details": err.Error()})
		return
	}

	signature, err := h.signer.Sign(issued.Token, req.Prize, time.Now(), issued.ExpiresAt)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign token", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.IssueResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.Unix(),
		Signature: signature,
	})
}
