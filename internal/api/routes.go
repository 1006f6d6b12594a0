package api

import (
	"alcyxob/fittracker/internal/metrics"
	"alcyxob/fittracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate mockgen -destination=service_mocks_test.go -package=api alcyxob/fittracker/internal/service AuthService,ExecutionService,ExerciseService

// Services bundles everything the handlers need from the service layer.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Exercises  service.ExerciseService
	Workouts   service.WorkoutService
	Executions service.ExecutionService
	Goals      service.GoalService
	Stats      service.StatsService
}

type RouterParams struct {
	Services Services
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
	// RateLimiter guards the auth routes. Nil disables rate limiting.
	RateLimiter   RequestRateLimiter
	AuthPerMinute int
	CORSOrigins   []string
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(params RouterParams) *gin.Engine {
	router := gin.New()
	router.Use(PanicRecovery(params.Metrics), RequestLogger())
	if params.Metrics != nil {
		router.Use(RequestMetrics(params.Metrics))
	}
	router.Use(Cors(params.CORSOrigins))
	SetupRoutes(router, params)
	return router
}

func SetupRoutes(router *gin.Engine, params RouterParams) {
	s := params.Services
	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Users)
	exerciseHandler := NewExerciseHandler(s.Exercises)
	workoutHandler := NewWorkoutHandler(s.Workouts)
	executionHandler := NewExecutionHandler(s.Executions, params.Metrics)
	goalHandler := NewGoalHandler(s.Goals)
	statsHandler := NewStatsHandler(s.Stats)

	authMiddleware := AuthMiddleware(s.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if params.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		if params.RateLimiter != nil {
			authGroup.Use(RateLimit(params.RateLimiter, "auth", params.AuthPerMinute, params.Metrics))
		}
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/test-token", authHandler.TestToken)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- User Routes ---
		userGroup := protected.Group("/users/me")
		{
			userGroup.GET("", userHandler.GetMe)
			userGroup.PUT("", userHandler.UpdateMe)
			userGroup.DELETE("", userHandler.DeleteMe)
			userGroup.PUT("/photo", userHandler.UploadPhoto)
			userGroup.GET("/photo", userHandler.GetPhoto)
			userGroup.DELETE("/photo", userHandler.DeletePhoto)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		// --- Workout Template Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)

			workoutGroup.POST("/:id/exercises", workoutHandler.AddExercise)
			workoutGroup.PUT("/:id/exercises/:workoutExerciseId", workoutHandler.UpdateExercise)
			workoutGroup.DELETE("/:id/exercises/:workoutExerciseId", workoutHandler.RemoveExercise)
		}

		// --- Execution Routes ---
		executionGroup := protected.Group("/executions")
		{
			executionGroup.POST("/start", executionHandler.StartExecution)
			executionGroup.POST("", executionHandler.CreateExecution)
			executionGroup.GET("", executionHandler.ListExecutions)
			executionGroup.GET("/by-workout/:id", executionHandler.ListExecutionsByWorkout)
			executionGroup.GET("/:id", executionHandler.GetExecution)
			executionGroup.PUT("/:id", executionHandler.FinalizeExecution)
			executionGroup.DELETE("/:id", executionHandler.DeleteExecution)
		}

		// --- Goal Routes ---
		goalGroup := protected.Group("/goals")
		{
			goalGroup.POST("", goalHandler.CreateGoal)
			goalGroup.GET("", goalHandler.ListGoals)
			goalGroup.GET("/:id", goalHandler.GetGoal)
			goalGroup.PUT("/:id", goalHandler.UpdateGoal)
			goalGroup.DELETE("/:id", goalHandler.DeleteGoal)
		}

		protected.GET("/stats/summary", statsHandler.Summary)
		protected.GET("/users/progress/weight", statsHandler.WeightProgress)
	}
}
