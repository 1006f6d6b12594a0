package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/metrics"
	"alcyxob/fittracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ExecutionHandler struct {
	executionService service.ExecutionService
	metricsManager   *metrics.Manager
}

func NewExecutionHandler(executionService service.ExecutionService, metricsManager *metrics.Manager) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		metricsManager:   metricsManager,
	}
}

// --- DTOs for Executions ---

type SetOverrideRequest struct {
	Reps        *int     `json:"reps"`
	Weight      *float64 `json:"weight"`
	RestSeconds *int     `json:"restSeconds"`
}

type ExerciseOverrideRequest struct {
	Sets []SetOverrideRequest `json:"sets"`
}

type StartExecutionRequest struct {
	WorkoutID  string     `json:"workoutId" binding:"required"`
	BodyWeight *float64   `json:"bodyWeight"`
	StartTime  *time.Time `json:"startTime"`
	// ExerciseOverrides is keyed by exercise id; set configs apply by position.
	ExerciseOverrides map[string]ExerciseOverrideRequest `json:"exerciseOverrides"`
}

type SetRequest struct {
	Order       int      `json:"order" binding:"omitempty,min=0"`
	Reps        *int     `json:"reps"`
	Weight      *float64 `json:"weight"`
	RestSeconds *int     `json:"restSeconds"`
	Completed   bool     `json:"completed"`
}

type ExecutionExerciseRequest struct {
	ExerciseID        string       `json:"exerciseId" binding:"required"`
	WorkoutExerciseID *string      `json:"workoutExerciseId"`
	Order             int          `json:"order" binding:"omitempty,min=0"`
	Notes             string       `json:"notes"`
	Sets              []SetRequest `json:"sets" binding:"dive"`
}

type CreateExecutionRequest struct {
	WorkoutID       string                     `json:"workoutId" binding:"required"`
	StartedAt       *time.Time                 `json:"startedAt"`
	FinishedAt      *time.Time                 `json:"finishedAt"`
	DurationMinutes *int                       `json:"durationMinutes"`
	BodyWeight      *float64                   `json:"bodyWeight"`
	Notes           string                     `json:"notes"`
	Exercises       []ExecutionExerciseRequest `json:"exercises" binding:"dive"`
}

type ExerciseUpdateRequest struct {
	ExerciseID string                        `json:"exerciseId"`
	Order      int                           `json:"order"`
	Notes      domain.Optional[string]       `json:"notes"`
	Sets       domain.Optional[[]SetRequest] `json:"sets"`
}

// FinalizeExecutionRequest is a partial update. Listed exercises are matched by
// (exerciseId, order); a present "sets" list replaces that exercise's sets.
type FinalizeExecutionRequest struct {
	FinishedAt      domain.Optional[time.Time]               `json:"finishedAt"`
	DurationMinutes domain.Optional[int]                     `json:"durationMinutes"`
	BodyWeight      domain.Optional[float64]                 `json:"bodyWeight"`
	Notes           domain.Optional[string]                  `json:"notes"`
	Exercises       domain.Optional[[]ExerciseUpdateRequest] `json:"exercises"`
}

// ExecutionResponse is an execution tree with its summary.
type ExecutionResponse struct {
	*domain.Execution
	Summary domain.ExecutionSummary `json:"summary"`
}

func MapExecutionToResponse(execution *domain.Execution) ExecutionResponse {
	return ExecutionResponse{Execution: execution, Summary: execution.Summarize()}
}

func MapExecutionsToResponse(executions []domain.Execution) []ExecutionResponse {
	responses := make([]ExecutionResponse, len(executions))
	for i := range executions {
		responses[i] = MapExecutionToResponse(&executions[i])
	}
	return responses
}

func toSetInputs(sets []SetRequest) []service.SetInput {
	out := make([]service.SetInput, len(sets))
	for i, s := range sets {
		out[i] = service.SetInput(s)
	}
	return out
}

func (r FinalizeExecutionRequest) toUpdate() service.ExecutionUpdate {
	update := service.ExecutionUpdate{
		FinishedAt:      r.FinishedAt,
		DurationMinutes: r.DurationMinutes,
		BodyWeight:      r.BodyWeight,
		Notes:           r.Notes,
	}
	if !r.Exercises.Set {
		return update
	}
	reqs, _ := r.Exercises.Get()
	exercises := make([]service.ExecutionExerciseUpdate, 0, len(reqs))
	for _, ex := range reqs {
		eu := service.ExecutionExerciseUpdate{
			ExerciseID: ex.ExerciseID,
			Order:      ex.Order,
			Notes:      ex.Notes,
		}
		if ex.Sets.Set {
			sets, _ := ex.Sets.Get()
			eu.Sets = domain.Some(toSetInputs(sets))
		}
		exercises = append(exercises, eu)
	}
	update.Exercises = domain.Some(exercises)
	return update
}

// --- Handler Methods ---

// StartExecution godoc
// @Summary Start an execution from a workout template
// @Description Creates the execution with one exercise per planned exercise and its sets.
// @Description Reps come from the per-exercise overrides, otherwise from the recommended reps.
// @Tags Executions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param execution body StartExecutionRequest true "Template and overrides"
// @Success 201 {object} ExecutionResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Template belongs to another user"
// @Failure 404 {object} gin.H "Template not found"
// @Router /executions/start [post]
func (h *ExecutionHandler) StartExecution(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req StartExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	in := service.StartExecutionInput{
		WorkoutID:  req.WorkoutID,
		BodyWeight: req.BodyWeight,
		StartTime:  req.StartTime,
	}
	if len(req.ExerciseOverrides) > 0 {
		in.Overrides = make(map[string]service.ExerciseOverride, len(req.ExerciseOverrides))
		for exerciseID, o := range req.ExerciseOverrides {
			override := service.ExerciseOverride{Sets: make([]service.SetOverride, len(o.Sets))}
			for i, s := range o.Sets {
				override.Sets[i] = service.SetOverride(s)
			}
			in.Overrides[exerciseID] = override
		}
	}

	execution, err := h.executionService.Start(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err, "Failed to start execution.")
		return
	}
	if h.metricsManager != nil {
		h.metricsManager.CounterExecutionsStarted.Inc()
	}
	c.JSON(http.StatusCreated, MapExecutionToResponse(execution))
}

// CreateExecution godoc
// @Summary Log a complete execution
// @Tags Executions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param execution body CreateExecutionRequest true "Full execution tree"
// @Success 201 {object} ExecutionResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Template belongs to another user"
// @Failure 404 {object} gin.H "Template or exercise not found"
// @Router /executions [post]
func (h *ExecutionHandler) CreateExecution(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	in := service.ExecutionInput{
		WorkoutID:       req.WorkoutID,
		StartedAt:       req.StartedAt,
		FinishedAt:      req.FinishedAt,
		DurationMinutes: req.DurationMinutes,
		BodyWeight:      req.BodyWeight,
		Notes:           req.Notes,
	}
	for _, ex := range req.Exercises {
		in.Exercises = append(in.Exercises, service.ExecutionExerciseInput{
			ExerciseID:        ex.ExerciseID,
			WorkoutExerciseID: ex.WorkoutExerciseID,
			Order:             ex.Order,
			Notes:             ex.Notes,
			Sets:              toSetInputs(ex.Sets),
		})
	}

	execution, err := h.executionService.CreateFull(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err, "Failed to create execution.")
		return
	}
	c.JSON(http.StatusCreated, MapExecutionToResponse(execution))
}

// ListExecutions godoc
// @Summary List the user's executions, newest first
// @Tags Executions
// @Produce json
// @Security BearerAuth
// @Param from query string false "Earliest start time (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Latest start time (RFC 3339 or YYYY-MM-DD)"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} ExecutionResponse
// @Failure 400 {object} gin.H "Invalid query"
// @Router /executions [get]
func (h *ExecutionHandler) ListExecutions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}

	executions, err := h.executionService.List(c.Request.Context(), userID, service.ExecutionFilter{From: from, To: to, Page: page})
	if err != nil {
		respondWithError(c, err, "Failed to retrieve executions.")
		return
	}
	c.JSON(http.StatusOK, MapExecutionsToResponse(executions))
}

// ListExecutionsByWorkout godoc
// @Summary List the executions of one workout template
// @Tags Executions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} ExecutionResponse
// @Failure 403 {object} gin.H "Template belongs to another user"
// @Failure 404 {object} gin.H "Template not found"
// @Router /executions/by-workout/{id} [get]
func (h *ExecutionHandler) ListExecutionsByWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	executions, err := h.executionService.ListByWorkout(c.Request.Context(), userID, c.Param("id"), page)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve executions.")
		return
	}
	c.JSON(http.StatusOK, MapExecutionsToResponse(executions))
}

// GetExecution godoc
// @Summary Get an execution with exercises and sets
// @Tags Executions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Execution ID"
// @Success 200 {object} ExecutionResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /executions/{id} [get]
func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	execution, err := h.executionService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve execution.")
		return
	}
	c.JSON(http.StatusOK, MapExecutionToResponse(execution))
}

// FinalizeExecution godoc
// @Summary Finalize or update an execution
// @Description Present fields overwrite, absent fields are kept, null clears. May be called repeatedly.
// @Tags Executions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Execution ID"
// @Param execution body FinalizeExecutionRequest true "Fields and exercises to merge"
// @Success 200 {object} ExecutionResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Execution or ad-hoc exercise not found"
// @Router /executions/{id} [put]
func (h *ExecutionHandler) FinalizeExecution(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req FinalizeExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	execution, err := h.executionService.Finalize(c.Request.Context(), userID, c.Param("id"), req.toUpdate())
	if err != nil {
		respondWithError(c, err, "Failed to update execution.")
		return
	}
	if h.metricsManager != nil {
		h.metricsManager.CounterExecutionsFinished.Inc()
	}
	c.JSON(http.StatusOK, MapExecutionToResponse(execution))
}

// DeleteExecution godoc
// @Summary Delete an execution with its exercises and sets
// @Tags Executions
// @Security BearerAuth
// @Param id path string true "Execution ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Not found"
// @Router /executions/{id} [delete]
func (h *ExecutionHandler) DeleteExecution(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.executionService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete execution.")
		return
	}
	c.Status(http.StatusNoContent)
}
