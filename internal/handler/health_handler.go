package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// HealthHandler reports service liveness plus the current battle coordinates,
// which the orchestrator polls between phase transitions.
type HealthHandler struct {
	battleService *service.BattleService
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(battleService *service.BattleService) *HealthHandler {
	return &HealthHandler{battleService: battleService}
}

// GetHealth returns service status and battle state.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	state, err := h.battleService.State(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Service healthy", gin.H{
		"status":   "running",
		"battleId": state.BattleID,
		"phase":    state.Phase,
		"day":      state.Day,
		"round":    state.Round,
	})
}
