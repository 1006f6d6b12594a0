package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for Workout Templates ---

type CreateWorkoutRequest struct {
	Name               string                   `json:"name" binding:"required"`
	Description        string                   `json:"description"`
	DefaultRestSeconds *int                     `json:"defaultRestSeconds" binding:"omitempty,min=0"`
	Exercises          []WorkoutExerciseRequest `json:"exercises" binding:"dive"`
}

type UpdateWorkoutRequest struct {
	Name               domain.Optional[string] `json:"name"`
	Description        domain.Optional[string] `json:"description"`
	DefaultRestSeconds domain.Optional[int]    `json:"defaultRestSeconds"`
}

// WorkoutExerciseRequest plans one exercise. Omitted values take the defaults
// (3 sets, 60 seconds rest, template default rest enabled, next free order).
type WorkoutExerciseRequest struct {
	ExerciseID      string `json:"exerciseId" binding:"required"`
	Order           int    `json:"order" binding:"omitempty,min=0"`
	Sets            *int   `json:"sets" binding:"omitempty,min=1"`
	RecommendedReps string `json:"recommendedReps"` // "10", "8-12", free text
	RestSeconds     *int   `json:"restSeconds" binding:"omitempty,min=0"`
	UseDefaultRest  *bool  `json:"useDefaultRest"`
}

type UpdateWorkoutExerciseRequest struct {
	ExerciseID      domain.Optional[string] `json:"exerciseId"`
	Order           domain.Optional[int]    `json:"order"`
	Sets            domain.Optional[int]    `json:"sets"`
	RecommendedReps domain.Optional[string] `json:"recommendedReps"`
	RestSeconds     domain.Optional[int]    `json:"restSeconds"`
	UseDefaultRest  domain.Optional[bool]   `json:"useDefaultRest"`
}

// --- Handler Methods for Workout Management ---

// CreateWorkout godoc
// @Summary Create a workout template
// @Description Creates a template, optionally with its planned exercises, in one transaction.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Template details"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Referenced exercise not found"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	in := service.WorkoutInput{
		Name:               req.Name,
		Description:        req.Description,
		DefaultRestSeconds: req.DefaultRestSeconds,
	}
	for _, ex := range req.Exercises {
		in.Exercises = append(in.Exercises, service.WorkoutExerciseInput(ex))
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err, "Failed to create workout.")
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// ListWorkouts godoc
// @Summary List the user's workout templates
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve workouts.")
		return
	}
	if workouts == nil {
		c.JSON(http.StatusOK, []domain.Workout{}) // Return empty JSON array, not null
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWorkout godoc
// @Summary Get a workout template with its exercises
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// UpdateWorkout godoc
// @Summary Update a workout template
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param workout body UpdateWorkoutRequest true "Fields to change"
// @Success 200 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, c.Param("id"), service.WorkoutUpdate(req))
	if err != nil {
		respondWithError(c, err, "Failed to update workout.")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout godoc
// @Summary Delete a workout template
// @Description Also deletes its planned exercises and every execution logged from it.
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete workout.")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Add an exercise to a workout template
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param exercise body WorkoutExerciseRequest true "Planned exercise"
// @Success 201 {object} domain.WorkoutExercise
// @Failure 400 {object} gin.H "Invalid input or order already used"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Workout or exercise not found"
// @Router /workouts/{id}/exercises [post]
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req WorkoutExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	we, err := h.workoutService.AddExercise(c.Request.Context(), userID, c.Param("id"), service.WorkoutExerciseInput(req))
	if err != nil {
		respondWithError(c, err, "Failed to add exercise to workout.")
		return
	}
	c.JSON(http.StatusCreated, we)
}

// UpdateExercise godoc
// @Summary Update a planned exercise
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param workoutExerciseId path string true "Workout exercise ID"
// @Param exercise body UpdateWorkoutExerciseRequest true "Fields to change"
// @Success 200 {object} domain.WorkoutExercise
// @Failure 400 {object} gin.H "Invalid input, or the entry belongs to another workout"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id}/exercises/{workoutExerciseId} [put]
func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req UpdateWorkoutExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	we, err := h.workoutService.UpdateExercise(
		c.Request.Context(),
		userID,
		c.Param("id"),
		c.Param("workoutExerciseId"),
		service.WorkoutExerciseUpdate(req),
	)
	if err != nil {
		respondWithError(c, err, "Failed to update workout exercise.")
		return
	}
	c.JSON(http.StatusOK, we)
}

// RemoveExercise godoc
// @Summary Remove a planned exercise from a workout template
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param workoutExerciseId path string true "Workout exercise ID"
// @Success 204
// @Failure 400 {object} gin.H "The entry belongs to another workout"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id}/exercises/{workoutExerciseId} [delete]
func (h *WorkoutHandler) RemoveExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	err := h.workoutService.RemoveExercise(c.Request.Context(), userID, c.Param("id"), c.Param("workoutExerciseId"))
	if err != nil {
		respondWithError(c, err, "Failed to remove workout exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}
