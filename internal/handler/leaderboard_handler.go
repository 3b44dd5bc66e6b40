package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// LeaderboardHandler serves seller standings. Public: agents may inspect the
// board mid-battle, and the orchestrator reads it to crown winners.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler constructs a LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard returns seller standings, optionally filtered to one round
// via ?round=N.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	round, ok := parseOptionalRound(c)
	if !ok {
		utils.Error(c, 400, "INVALID_REQUEST", "round must be an integer")
		return
	}

	entries, err := h.leaderboardService.Leaderboard(c.Request.Context(), round)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Leaderboard retrieved successfully", gin.H{
		"leaderboard": entries,
	})
}
