package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/stats"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockCompletionRepo is a testify mock of repository.CompletionRepository.
type mockCompletionRepo struct {
	mock.Mock
}

func (m *mockCompletionRepo) Create(ctx context.Context, record *domain.CompletionRecord, cols domain.CompletionColumns) (primitive.ObjectID, error) {
	args := m.Called(ctx, record, cols)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockCompletionRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error) {
	args := m.Called(ctx, ownerID, kind, limit)
	records, _ := args.Get(0).([]domain.CompletionRecord)
	return records, args.Error(1)
}

func (m *mockCompletionRepo) CountCompleted(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	args := m.Called(ctx, ownerID, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCompletionRepo) SumCalories(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	args := m.Called(ctx, ownerID, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCompletionRepo) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	planID := primitive.NewObjectID()
	// Wednesday.
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	add := func(owner primitive.ObjectID, at *time.Time, calories *int) {
		f.store.InsertCompletion(domain.CompletionRecord{
			OwnerID: owner, PlanID: planID, Kind: domain.CompletionKindAIGenerated,
			CompletedAt: at, CaloriesBurned: calories,
		})
	}
	ts := func(month time.Month, day, hour, min int) *time.Time {
		t := time.Date(2026, month, day, hour, min, 0, 0, time.UTC)
		return &t
	}
	add(f.owner, ts(10, 14, 10, 0), intp(300))  // today
	add(f.owner, ts(10, 12, 18, 0), nil)        // this week, no calories
	add(f.owner, ts(10, 11, 0, 0), intp(200))   // first instant of this week
	add(f.owner, ts(10, 10, 23, 59), intp(100)) // last week
	add(f.owner, ts(10, 4, 0, 0), intp(50))     // first instant of last week
	add(f.owner, ts(10, 3, 12, 0), intp(70))    // older
	add(f.owner, nil, intp(999))                // never completed
	add(primitive.NewObjectID(), ts(10, 14, 9, 0), intp(400))

	svc := NewStatsService(f.store.Completions(), stats.Calendar{Location: time.UTC, WeekStart: time.Sunday}).(*statsService)
	svc.now = func() time.Time { return now }

	got, err := svc.GetStats(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		TotalCount:        6,
		WeeklyCount:       3,
		PreviousWeekCount: 2,
		PercentChange:     50,
		Calories:          CalorieSums{Total: 720, Weekly: 500, Today: 300},
		WeekStart:         time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestGetStats_NoHistory(t *testing.T) {
	f := newFixture(t)
	svc := NewStatsService(f.store.Completions(), stats.Calendar{})

	got, err := svc.GetStats(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Zero(t, got.TotalCount)
	assert.Zero(t, got.PercentChange)
	assert.Equal(t, CalorieSums{}, got.Calories)
}

func TestGetStats_QueryFailure(t *testing.T) {
	repo := &mockCompletionRepo{}
	repo.On("CountCompleted", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	repo.On("SumCalories", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("cursor killed"))

	_, err := NewStatsService(repo, stats.Calendar{}).GetStats(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cursor killed")
}
