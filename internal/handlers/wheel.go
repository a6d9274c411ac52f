package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zela-wheel-backend/internal/middleware"
	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"
)

type WheelHandler struct {
	manager *services.SessionManager
	fair    *services.FairSeed
	logger  *zap.Logger
}

func NewWheelHandler(manager *services.SessionManager, fair *services.FairSeed, logger *zap.Logger) *WheelHandler {
	return &WheelHandler{manager: manager, fair: fair, logger: logger}
}

func (h *WheelHandler) session(c *gin.Context) (*services.WheelSession, bool) {
	session, err := h.manager.Session(c.GetString(middleware.KeyPlayerID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to open session",
			"details": err.Error(),
		})
		return nil, false
	}
	return session, true
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNoSpinsLeft):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "No spins left today", "details": err.Error()})
	case errors.Is(err, models.ErrSpinInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Spin already in progress", "details": err.Error()})
	case errors.Is(err, models.ErrIssuance):
		c.JSON(http.StatusBadGateway, gin.H{"error": models.ErrIssuance.Error(), "details": err.Error()})
	case errors.Is(err, models.ErrNoPendingPrize):
		c.JSON(http.StatusNotFound, gin.H{"error": "No prize awaiting issuance"})
	case errors.Is(err, models.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

func (h *WheelHandler) GetWheel(c *gin.Context) {
	w := h.manager.Wheel()
	c.JSON(http.StatusOK, gin.H{
		"slots":      w.Layout().Slots(),
		"slot_width": w.Layout().SlotWidth(),
		"weights":    w.Selector().Weights(),
	})
}

func (h *WheelHandler) GetAllowance(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Allowance(c.Request.Context()))
}

func (h *WheelHandler) Spin(c *gin.Context) {
	playerID := c.GetString(middleware.KeyPlayerID)

	result, err := h.manager.Spin(c.Request.Context(), playerID)
	if err != nil {
		if !errors.Is(err, models.ErrNoSpinsLeft) && !errors.Is(err, models.ErrSpinInProgress) {
			h.logger.Error("spin failed", zap.String("player_id", playerID), zap.Error(err))
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"spin":    result,
	})
}

func (h *WheelHandler) GetState(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.State(c.Request.Context()))
}

func (h *WheelHandler) RetryPrize(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	claim, err := session.RetryIssuance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prize": claim})
}

// DownloadPrize serves the prize file for ?token=, or for the session's last issued prize.
func (h *WheelHandler) DownloadPrize(c *gin.Context) {
	playerID := c.GetString(middleware.KeyPlayerID)

	token := c.Query("token")
	if token == "" {
		session, ok := h.session(c)
		if !ok {
			return
		}
		claim := session.Claim()
		if claim == nil || claim.Status != models.PrizeStatusIssued {
			respondError(c, models.ErrTokenNotFound)
			return
		}
		token = claim.Token
	}

	artifact, err := h.manager.Prizes().Artifact(c.Request.Context(), playerID, token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", artifact.Content)
}

func (h *WheelHandler) ListTokens(c *gin.Context) {
	records, err := h.manager.Prizes().Registry().List(c.Request.Context(), c.GetString(middleware.KeyPlayerID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": records})
}

func (h *WheelHandler) GetFairness(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Fairness())
}

func (h *WheelHandler) VerifySpin(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	proof, err := services.VerifySpin(h.manager.Wheel(), req.ServerSeed, req.ClientSeed, req.Nonce)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proof":          proof,
		"matches_active": proof.ServerHash == h.fair.ServerHash(),
	})
}

// RotateSeed publishes a new server seed hash and reveals the previous seed.
// It is an operator action; every player's future spins move to the new seed.
func (h *WheelHandler) RotateSeed(c *gin.Context) {
	previous, err := h.fair.Rotate()
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("server seed rotated",
		zap.String("revealed_hash", services.HashSeed(previous)),
		zap.String("server_hash", h.fair.ServerHash()))

	c.JSON(http.StatusOK, gin.H{
		"revealed_seed": previous,
		"revealed_hash": services.HashSeed(previous),
		"server_hash":   h.fair.ServerHash(),
	})
}
