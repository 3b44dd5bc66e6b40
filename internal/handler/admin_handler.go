package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// AdminHandler exposes the orchestrator surface: actor creation, phase/day/
// round control, ranking passes, and battle reset. All routes sit behind the
// admin key middleware.
type AdminHandler struct {
	authService    *service.AuthService
	battleService  *service.BattleService
	rankingService *service.RankingService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(authService *service.AuthService, battleService *service.BattleService, rankingService *service.RankingService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		battleService:  battleService,
		rankingService: rankingService,
	}
}

type createActorRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSeller registers a seller and returns its id and bearer token. The
// token appears in this response only.
func (h *AdminHandler) CreateSeller(c *gin.Context) {
	var req createActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	seller, err := h.authService.CreateSeller(c.Request.Context(), req.Name)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 201, "Seller created successfully", gin.H{
		"id":        seller.ID,
		"name":      seller.Name,
		"authToken": seller.AuthToken,
	})
}

// CreateBuyer registers a buyer and returns its id and bearer token.
func (h *AdminHandler) CreateBuyer(c *gin.Context) {
	var req createActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	buyer, err := h.authService.CreateBuyer(c.Request.Context(), req.Name)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 201, "Buyer created successfully", gin.H{
		"id":        buyer.ID,
		"name":      buyer.Name,
		"authToken": buyer.AuthToken,
	})
}

// GetPhase returns the currently active phase.
func (h *AdminHandler) GetPhase(c *gin.Context) {
	state, err := h.battleService.State(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Phase retrieved successfully", gin.H{"phase": state.Phase})
}

type phaseUpdateRequest struct {
	Phase string `json:"phase" binding:"required"`
}

// SetPhase replaces the current phase.
func (h *AdminHandler) SetPhase(c *gin.Context) {
	var req phaseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	phase, err := battle.ParsePhase(req.Phase)
	if err != nil {
		utils.Error(c, 400, "INVALID_PHASE", err.Error())
		return
	}

	if err := h.battleService.SetPhase(c.Request.Context(), phase); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Phase updated successfully", gin.H{"phase": phase})
}

// GetDay returns the current day counter.
func (h *AdminHandler) GetDay(c *gin.Context) {
	state, err := h.battleService.State(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Day retrieved successfully", gin.H{"day": state.Day})
}

type counterUpdateRequest struct {
	Value *int `json:"value" binding:"required"`
}

// SetDay replaces the day counter.
func (h *AdminHandler) SetDay(c *gin.Context) {
	var req counterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.battleService.SetDay(c.Request.Context(), *req.Value); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Day updated successfully", gin.H{"day": *req.Value})
}

// GetRound returns the current round counter.
func (h *AdminHandler) GetRound(c *gin.Context) {
	state, err := h.battleService.State(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Round retrieved successfully", gin.H{"round": state.Round})
}

// SetRound replaces the round counter.
func (h *AdminHandler) SetRound(c *gin.Context) {
	var req counterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.battleService.SetRound(c.Request.Context(), *req.Value); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Round updated successfully", gin.H{"round": *req.Value})
}

// RecomputeRankings runs a ranking pass over all listings.
func (h *AdminHandler) RecomputeRankings(c *gin.Context) {
	updated, err := h.rankingService.Recompute(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Rankings recomputed successfully", gin.H{
		"updatedCount": updated,
	})
}

// InitializeRankings shuffles rankings randomly, used before any purchases.
func (h *AdminHandler) InitializeRankings(c *gin.Context) {
	updated, err := h.rankingService.InitializeRandom(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Rankings initialized successfully", gin.H{
		"updatedCount": updated,
	})
}

// Reset clears the whole battle and reseeds orchestration metadata.
func (h *AdminHandler) Reset(c *gin.Context) {
	battleID, err := h.battleService.Reset(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Battle reset successfully", gin.H{
		"battleId": battleID,
	})
}

// parseOptionalRound parses an optional ?round=N query parameter.
func parseOptionalRound(c *gin.Context) (*int, bool) {
	raw := c.Query("round")
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}
