package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/stats"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type CalorieSums struct {
	Total  int64 `json:"total"`
	Weekly int64 `json:"weekly"`
	Today  int64 `json:"today"`
}

// Stats is a point-in-time rollup of an owner's completions.
type Stats struct {
	TotalCount        int64       `json:"totalCount"`
	WeeklyCount       int64       `json:"weeklyCount"`
	PreviousWeekCount int64       `json:"previousWeekCount"`
	PercentChange     int64       `json:"percentChange"`
	Calories          CalorieSums `json:"calories"`
	WeekStart         time.Time   `json:"weekStart"`
}

type StatsService interface {
	GetStats(ctx context.Context, ownerID primitive.ObjectID) (*Stats, error)
}

type statsService struct {
	completionRepo repository.CompletionRepository
	calendar       stats.Calendar
	now            func() time.Time
}

func NewStatsService(completionRepo repository.CompletionRepository, calendar stats.Calendar) StatsService {
	return &statsService{completionRepo: completionRepo, calendar: calendar, now: time.Now}
}

func (s *statsService) GetStats(ctx context.Context, ownerID primitive.ObjectID) (*Stats, error) {
	now := s.now()
	w := s.calendar.Windows(now)
	all := domain.TimeWindow{}

	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, window domain.TimeWindow) {
		g.Go(func() (err error) {
			*dst, err = s.completionRepo.CountCompleted(gctx, ownerID, window)
			return err
		})
	}
	sum := func(dst *int64, window domain.TimeWindow) {
		g.Go(func() (err error) {
			*dst, err = s.completionRepo.SumCalories(gctx, ownerID, window)
			return err
		})
	}
	count(&out.TotalCount, all)
	count(&out.WeeklyCount, w.ThisWeek)
	count(&out.PreviousWeekCount, w.LastWeek)
	sum(&out.Calories.Total, all)
	sum(&out.Calories.Weekly, w.ThisWeek)
	sum(&out.Calories.Today, w.Today)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	out.PercentChange = stats.PercentChange(out.WeeklyCount, out.PreviousWeekCount)
	out.WeekStart = *w.ThisWeek.From
	return &out, nil
}
