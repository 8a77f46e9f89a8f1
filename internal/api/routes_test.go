package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository/memstore"
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/stats"
	"alcyxob/fitness-tracker/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	store := memstore.New()

	exercises := service.NewExerciseService(store.Exercises(), 0, log)
	_, _, err := exercises.SeedCatalog(context.Background(), []domain.Exercise{
		{Name: "Push-ups", MuscleGroup: "chest"},
		{Name: "Lat Pulldown", MuscleGroup: "back"},
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestLogger(log))
	SetupRoutes(router, Services{
		Auth:         service.NewAuthService(store.Users(), "test-secret", time.Hour, log),
		Exercises:    exercises,
		Plans:        service.NewPlanService(store.Plans(), service.PlanDefaults{}, log),
		Materializer: service.NewMaterializerService(store, store.Plans(), store.Workouts(), store.WorkoutExercises(), store.Exercises(), service.MaterializerOptions{}, log),
		Completions:  service.NewCompletionService(store.Plans(), store.Completions(), store.SchemaProbe(), service.CompletionOptions{}, log),
		Stats:        service.NewStatsService(store.Completions(), stats.Calendar{}),
		Exports:      service.NewExportService(store, store.Plans(), store.Workouts(), store.WorkoutExercises(), store.Completions(), storage.Disabled{}, 0, log),
	})
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Alex", "email": email, "password": "long enough"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "long enough"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestPlanLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alex@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/plans", token, `{
		"title": "Push & Pull",
		"weekly_structure": {"Monday": {"focus": "upper", "duration": 40}},
		"exercises": [
			{"name": "Push-ups", "muscle": "chest", "sets": 3, "reps": 12},
			{"name": "Unknown Lat Pulldown Variant X", "muscle": "back", "sets": "4", "reps": "8-12"}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var plan domain.GeneratedPlan
	decode(t, w, &plan)
	planPath := "/api/v1/plans/" + plan.ID.Hex()

	w = s.do(t, http.MethodGet, planPath+"/workout", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, planPath+"/materialize", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first service.MaterializedWorkout
	decode(t, w, &first)
	require.Len(t, first.Links, 2)
	assert.Equal(t, domain.MatchExact, first.Links[0].MatchKind)
	assert.Equal(t, domain.MatchCategory, first.Links[1].MatchKind)

	w = s.do(t, http.MethodPost, planPath+"/materialize", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again service.MaterializedWorkout
	decode(t, w, &again)
	assert.Equal(t, first.WorkoutID, again.WorkoutID)

	w = s.do(t, http.MethodPost, planPath+"/completions", token,
		gin.H{"exercisesCompleted": 8, "totalExercises": 10, "duration": 45, "userNotes": "Great!", "caloriesBurned": 300})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec domain.CompletionRecord
	decode(t, w, &rec)
	assert.True(t, strings.HasSuffix(rec.Notes, `[DATA:{"exercisesCompleted":8,"totalExercises":10,"duration":45,"userNotes":"Great!"}]`))

	w = s.do(t, http.MethodGet, "/api/v1/completions?kind=ai_generated", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []domain.CompletionRecord
	decode(t, w, &history)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Metadata)
	assert.Equal(t, "Great!", history[0].Metadata.UserNotes)

	w = s.do(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st service.Stats
	decode(t, w, &st)
	assert.EqualValues(t, 1, st.TotalCount)
	assert.EqualValues(t, 1, st.WeeklyCount)
	assert.EqualValues(t, 100, st.PercentChange)
	assert.EqualValues(t, 300, st.Calories.Today)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, "owner@example.com")
	intruder := s.login(t, "intruder@example.com")

	w := s.do(t, http.MethodGet, "/api/v1/plans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/plans", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/plans", owner, gin.H{"title": ""})
	require.Equal(t, http.StatusCreated, w.Code)
	var plan domain.GeneratedPlan
	decode(t, w, &plan)
	assert.Equal(t, "Full Body Starter", plan.Title)

	w = s.do(t, http.MethodPost, "/api/v1/plans/"+plan.ID.Hex()+"/materialize", intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/plans/not-an-id", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.store.FailOn(memstore.OpCreateLinks, errors.New("socket closed"))
	w = s.do(t, http.MethodPost, "/api/v1/plans/"+plan.ID.Hex()+"/materialize", owner, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, true, body["retryable"])

	w = s.do(t, http.MethodPost, "/api/v1/completions/export", owner, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/me/data", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report service.ErasureReport
	decode(t, w, &report)
	assert.EqualValues(t, 1, report.Plans)
}
