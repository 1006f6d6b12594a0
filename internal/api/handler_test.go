package api

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/metrics"
	"alcyxob/fittracker/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

const (
	testToken  = "good-token"
	testUserID = "user-1"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type mockedRouter struct {
	router     *gin.Engine
	metrics    *metrics.Manager
	auth       *MockAuthService
	exercises  *MockExerciseService
	executions *MockExecutionService
}

func newMockedRouter(t *testing.T) *mockedRouter {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &mockedRouter{
		metrics:    metrics.NewTestManager(),
		auth:       NewMockAuthService(ctrl),
		exercises:  NewMockExerciseService(ctrl),
		executions: NewMockExecutionService(ctrl),
	}
	m.auth.EXPECT().ParseToken(testToken).Return(testUserID, nil).AnyTimes()
	m.router = NewRouter(RouterParams{
		Services: Services{
			Auth:       m.auth,
			Exercises:  m.exercises,
			Executions: m.executions,
		},
		Metrics: m.metrics,
	})
	return m
}

func (m *mockedRouter) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	m.router.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	m := newMockedRouter(t)
	m.auth.EXPECT().ParseToken("bad").Return("", service.ErrInvalidToken)

	testCases := []struct {
		name   string
		header string
	}{
		{name: "MissingHeader", header: ""},
		{name: "WrongScheme", header: "Basic abc"},
		{name: "TooManyParts", header: "Bearer a b"},
		{name: "InvalidToken", header: "Bearer bad"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			m.router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.NotEmpty(t, errorMessage(t, rr))
		})
	}
}

func TestPing(t *testing.T) {
	m := newMockedRouter(t)
	rr := httptest.NewRecorder()
	m.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestExerciseHandler_Create(t *testing.T) {
	m := newMockedRouter(t)
	owner := testUserID

	m.exercises.EXPECT().
		CreateExercise(gomock.Any(), testUserID, service.ExerciseInput{
			Name:        "Squat",
			MuscleGroup: "legs",
			Difficulty:  domain.DifficultyBeginner,
			Public:      true,
		}).
		Return(&domain.Exercise{ID: "ex-1", OwnerID: &owner, Name: "Squat", MuscleGroup: "legs", Public: true}, nil)

	rr := m.do(t, http.MethodPost, "/api/v1/exercises", `{"name":"Squat","muscleGroup":"legs","difficulty":"beginner","public":true}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var got domain.Exercise
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ex-1", got.ID)
	assert.True(t, got.Public)
}

func TestExerciseHandler_Create_BindingErrors(t *testing.T) {
	m := newMockedRouter(t)

	for _, body := range []string{
		`{"muscleGroup":"legs"}`,
		`{"name":"Squat","difficulty":"expert"}`,
		`{"name":"Squat","imageUrl":"not a url"}`,
		`not json`,
	} {
		rr := m.do(t, http.MethodPost, "/api/v1/exercises", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestExerciseHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "NotFound", err: service.ErrExerciseNotFound, wantStatus: http.StatusNotFound, wantMsg: service.ErrExerciseNotFound.Error()},
		{name: "Forbidden", err: service.ErrExerciseAccessDenied, wantStatus: http.StatusForbidden, wantMsg: service.ErrExerciseAccessDenied.Error()},
		{name: "InUse", err: service.ErrExerciseInUse, wantStatus: http.StatusBadRequest, wantMsg: service.ErrExerciseInUse.Error()},
		{name: "Unknown", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantMsg: "Failed to delete exercise."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMockedRouter(t)
			m.exercises.EXPECT().DeleteExercise(gomock.Any(), testUserID, "ex-1").Return(tc.err)

			rr := m.do(t, http.MethodDelete, "/api/v1/exercises/ex-1", "")
			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantMsg, errorMessage(t, rr))
		})
	}
}

func TestExerciseHandler_Delete(t *testing.T) {
	m := newMockedRouter(t)
	m.exercises.EXPECT().DeleteExercise(gomock.Any(), testUserID, "ex-1").Return(nil)

	rr := m.do(t, http.MethodDelete, "/api/v1/exercises/ex-1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestExerciseHandler_List(t *testing.T) {
	m := newMockedRouter(t)
	m.exercises.EXPECT().
		ListExercises(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ any, _ string, filter service.ExerciseFilter) ([]domain.Exercise, error) {
			assert.Equal(t, "chest", filter.MuscleGroup)
			assert.Equal(t, domain.DifficultyAdvanced, filter.Difficulty)
			assert.Equal(t, 5, filter.Page.Skip)
			assert.Equal(t, 10, filter.Page.Limit)
			return nil, nil
		})

	rr := m.do(t, http.MethodGet, "/api/v1/exercises?muscleGroup=chest&difficulty=advanced&skip=5&limit=10", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = m.do(t, http.MethodGet, "/api/v1/exercises?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExerciseHandler_Update_PartialBody(t *testing.T) {
	m := newMockedRouter(t)
	m.exercises.EXPECT().
		UpdateExercise(gomock.Any(), testUserID, "ex-1", gomock.Any()).
		DoAndReturn(func(_ any, _, _ string, in service.ExerciseUpdate) (*domain.Exercise, error) {
			assert.True(t, in.Name.Set)
			assert.Equal(t, "Row", *in.Name.Value)
			assert.True(t, in.Equipment.Set)
			assert.Nil(t, in.Equipment.Value)
			assert.False(t, in.Public.Set)
			return &domain.Exercise{ID: "ex-1", Name: "Row"}, nil
		})

	rr := m.do(t, http.MethodPut, "/api/v1/exercises/ex-1", `{"name":"Row","equipment":null}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExecutionHandler_Start(t *testing.T) {
	m := newMockedRouter(t)
	reps := 10
	m.executions.EXPECT().
		Start(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ any, _ string, in service.StartExecutionInput) (*domain.Execution, error) {
			assert.Equal(t, "w-1", in.WorkoutID)
			require.Contains(t, in.Overrides, "ex-1")
			require.Len(t, in.Overrides["ex-1"].Sets, 1)
			assert.Equal(t, 5, *in.Overrides["ex-1"].Sets[0].Reps)
			return &domain.Execution{
				ID:        "exec-1",
				WorkoutID: "w-1",
				OwnerID:   testUserID,
				Exercises: []domain.ExecutionExercise{{
					ExerciseID: "ex-1",
					Order:      1,
					Sets:       []domain.ExecutionSet{{Order: 1, Reps: &reps}},
				}},
			}, nil
		})

	rr := m.do(t, http.MethodPost, "/api/v1/executions/start", `{"workoutId":"w-1","exerciseOverrides":{"ex-1":{"sets":[{"reps":5}]}}}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var got struct {
		ID      string                  `json:"id"`
		Summary domain.ExecutionSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "exec-1", got.ID)
	assert.Equal(t, 1, got.Summary.Sets)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.CounterExecutionsStarted))
}

func TestExecutionHandler_Finalize_RequestMapping(t *testing.T) {
	m := newMockedRouter(t)
	m.executions.EXPECT().
		Finalize(gomock.Any(), testUserID, "exec-1", gomock.Any()).
		DoAndReturn(func(_ any, _, _ string, in service.ExecutionUpdate) (*domain.Execution, error) {
			assert.True(t, in.BodyWeight.Set)
			assert.Nil(t, in.BodyWeight.Value)
			assert.False(t, in.Notes.Set)
			assert.True(t, in.DurationMinutes.Set)
			exercises, ok := in.Exercises.Get()
			require.True(t, ok)
			require.Len(t, exercises, 2)
			assert.False(t, exercises[0].Sets.Set, "sets absent")
			sets, ok := exercises[1].Sets.Get()
			require.True(t, ok)
			require.Len(t, sets, 1)
			assert.True(t, sets[0].Completed)
			return &domain.Execution{ID: "exec-1"}, nil
		})

	body := `{
		"bodyWeight": null,
		"durationMinutes": 55,
		"exercises": [
			{"exerciseId": "ex-1", "order": 1, "notes": "ok"},
			{"exerciseId": "ex-2", "order": 2, "sets": [{"order": 1, "reps": 8, "weight": 40, "completed": true}]}
		]
	}`
	rr := m.do(t, http.MethodPut, "/api/v1/executions/exec-1", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.CounterExecutionsFinished))
}

func TestExecutionHandler_List_BadWindow(t *testing.T) {
	m := newMockedRouter(t)

	rr := m.do(t, http.MethodGet, "/api/v1/executions?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	m.executions.EXPECT().
		List(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ any, _ string, filter service.ExecutionFilter) ([]domain.Execution, error) {
			require.NotNil(t, filter.From)
			assert.Equal(t, 2024, filter.From.Year())
			assert.Nil(t, filter.To)
			return nil, nil
		})
	rr = m.do(t, http.MethodGet, "/api/v1/executions?from=2024-02-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAuthHandler_Login(t *testing.T) {
	m := newMockedRouter(t)
	user := &domain.User{ID: testUserID, Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}
	m.auth.EXPECT().Login(gomock.Any(), "ana@example.com", "secret123").Return("tok", user, nil).Times(2)

	rr := m.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hash")

	// OAuth2 password form
	form := url.Values{"username": {"ana@example.com"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	formRR := httptest.NewRecorder()
	m.router.ServeHTTP(formRR, req)
	require.Equal(t, http.StatusOK, formRR.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(formRR.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, testUserID, resp.User.ID)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	m := newMockedRouter(t)
	m.auth.EXPECT().Login(gomock.Any(), "ana@example.com", "wrong").Return("", nil, service.ErrAuthenticationFailed)

	rr := m.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = m.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPanicRecovery(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	router := gin.New()
	router.Use(PanicRecovery(metricsManager))
	router.GET("/boom", func(*gin.Context) { panic("YOLO") })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterHandleRequestPanic))
}

func TestCors(t *testing.T) {
	router := gin.New()
	router.Use(Cors([]string{"http://localhost:3000"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "no Origin header")
}

func TestRequestMetrics(t *testing.T) {
	m := newMockedRouter(t)
	m.exercises.EXPECT().GetExercise(gomock.Any(), testUserID, "ex-9").Return(nil, service.ErrExerciseNotFound)

	rr := m.do(t, http.MethodGet, "/api/v1/exercises/ex-9", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	counter := m.metrics.CounterRequests.WithLabelValues(http.MethodGet, "/api/v1/exercises/:id", "404")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}
