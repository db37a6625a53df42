package handler

import (
	"github.com/gin-gonic/gin"

	"vendex/internal/service"
)

// StatsHandler handles pipeline statistics endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	overview, err := h.statsService.GetOverview(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, overview)
}
