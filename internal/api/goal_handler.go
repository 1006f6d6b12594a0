package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	goalService service.GoalService
}

func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

type CreateGoalRequest struct {
	Kind         domain.GoalKind `json:"kind" binding:"required,oneof=workouts weight load"`
	TargetValue  float64         `json:"targetValue" binding:"required,gt=0"`
	CurrentValue float64         `json:"currentValue" binding:"omitempty,min=0"`
	StartDate    *time.Time      `json:"startDate"`
	EndDate      *time.Time      `json:"endDate"`
	Active       *bool           `json:"active"`
}

type UpdateGoalRequest struct {
	Kind         domain.Optional[domain.GoalKind] `json:"kind"`
	TargetValue  domain.Optional[float64]         `json:"targetValue"`
	CurrentValue domain.Optional[float64]         `json:"currentValue"`
	StartDate    domain.Optional[time.Time]       `json:"startDate"`
	EndDate      domain.Optional[time.Time]       `json:"endDate"`
	Active       domain.Optional[bool]            `json:"active"`
}

type GoalResponse struct {
	*domain.Goal
	Progress float64 `json:"progress"` // current / target, clamped to [0, 1]
}

func MapGoalToResponse(goal *domain.Goal) GoalResponse {
	return GoalResponse{Goal: goal, Progress: goal.Progress()}
}

// CreateGoal godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body CreateGoalRequest true "Goal"
// @Success 201 {object} GoalResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, service.GoalInput(req))
	if err != nil {
		respondWithError(c, err, "Failed to create goal.")
		return
	}
	c.JSON(http.StatusCreated, MapGoalToResponse(goal))
}

// ListGoals godoc
// @Summary List the user's goals
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active (true) or inactive (false) goals"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} GoalResponse
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), userID, active, page)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve goals.")
		return
	}
	responses := make([]GoalResponse, len(goals))
	for i := range goals {
		responses[i] = MapGoalToResponse(&goals[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetGoal godoc
// @Summary Get a goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} GoalResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve goal.")
		return
	}
	c.JSON(http.StatusOK, MapGoalToResponse(goal))
}

// UpdateGoal godoc
// @Summary Update a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param goal body UpdateGoalRequest true "Fields to change"
// @Success 200 {object} GoalResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, c.Param("id"), service.GoalUpdate(req))
	if err != nil {
		respondWithError(c, err, "Failed to update goal.")
		return
	}
	c.JSON(http.StatusOK, MapGoalToResponse(goal))
}

// DeleteGoal godoc
// @Summary Delete a goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete goal.")
		return
	}
	c.Status(http.StatusNoContent)
}
