package api

import (
	"alcyxob/fittracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Summary godoc
// @Summary Aggregate counts for the current user
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UserStats
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to compute stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// WeightProgress godoc
// @Summary Body weight history of the current user
// @Description Built from the body weight recorded on each execution, oldest first.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WeightEntry
// @Router /users/progress/weight [get]
func (h *StatsHandler) WeightProgress(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	entries, err := h.statsService.WeightProgress(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to load weight history.")
		return
	}
	c.JSON(http.StatusOK, entries)
}
