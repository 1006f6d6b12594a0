package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name         string            `json:"name" binding:"required"`
	MuscleGroup  string            `json:"muscleGroup"` // e.g. "chest", "legs"
	Equipment    string            `json:"equipment"`
	Difficulty   domain.Difficulty `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	ImageURL     string            `json:"imageUrl" binding:"omitempty,url"` // Optional, validated as URL if provided
	Public       bool              `json:"public"`
}

// UpdateExerciseRequest carries only the fields to change.
type UpdateExerciseRequest struct {
	Name         domain.Optional[string]            `json:"name"`
	MuscleGroup  domain.Optional[string]            `json:"muscleGroup"`
	Equipment    domain.Optional[string]            `json:"equipment"`
	Difficulty   domain.Optional[domain.Difficulty] `json:"difficulty"`
	Description  domain.Optional[string]            `json:"description"`
	Instructions domain.Optional[string]            `json:"instructions"`
	ImageURL     domain.Optional[string]            `json:"imageUrl"`
	Public       domain.Optional[bool]              `json:"public"`
}

// ExerciseListQuery holds the list filters. Text filters match substrings, case-insensitive.
type ExerciseListQuery struct {
	MuscleGroup string `form:"muscleGroup"`
	Equipment   string `form:"equipment"`
	Difficulty  string `form:"difficulty"`
	Name        string `form:"name"`
	PageQuery
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Creates a new exercise owned by the authenticated user.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, service.ExerciseInput(req))
	if err != nil {
		respondWithError(c, err, "Failed to create exercise.")
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary List exercises
// @Description Public exercises plus the authenticated user's own, sorted by name.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param muscleGroup query string false "Muscle group substring"
// @Param equipment query string false "Equipment substring"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param name query string false "Name substring"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} domain.Exercise "List of exercises"
// @Failure 400 {object} gin.H "Invalid filter"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var q ExerciseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), userID, service.ExerciseFilter{
		MuscleGroup: q.MuscleGroup,
		Equipment:   q.Equipment,
		Difficulty:  domain.Difficulty(q.Difficulty),
		Name:        q.Name,
		Page:        q.Page(),
	})
	if err != nil {
		respondWithError(c, err, "Failed to retrieve exercises.")
		return
	}

	if exercises == nil {
		c.JSON(http.StatusOK, []domain.Exercise{}) // Return empty array
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Not found or not visible"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body UpdateExerciseRequest true "Fields to change"
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), userID, c.Param("id"), service.ExerciseUpdate(req))
	if err != nil {
		respondWithError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 204
// @Failure 400 {object} gin.H "Still used by a workout or an execution"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}
