package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanDocument is the raw plan produced by the generative model. Every field
// may be missing or loosely typed.
type PlanDocument struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	WeeklyStructure map[string]PlanDayInput `json:"weekly_structure"`
	Exercises       []PlanExerciseInput     `json:"exercises"`
}

type PlanDayInput struct {
	Focus    LooseString `json:"focus"`
	Duration LooseString `json:"duration"`
}

type PlanExerciseInput struct {
	Name   LooseString `json:"name"`
	Muscle LooseString `json:"muscle"`
	Sets   LooseString `json:"sets"`
	Reps   LooseString `json:"reps"`
}

// LooseString accepts a JSON string, number, bool or null.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("expected scalar, got %s", b)
	}
	*s = LooseString(b)
	return nil
}

// PlanDefaults are applied to missing or unusable exercise fields.
type PlanDefaults struct {
	Sets int
	Reps string
}

type PlanService interface {
	// ImportPlan normalizes doc and stores it for ownerID. A malformed document
	// is replaced by the default plan instead of failing.
	ImportPlan(ctx context.Context, ownerID primitive.ObjectID, doc *PlanDocument) (*domain.GeneratedPlan, error)
	ListPlans(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.GeneratedPlan, error)
	GetPlan(ctx context.Context, ownerID, planID primitive.ObjectID) (*domain.GeneratedPlan, error)
}

type planService struct {
	planRepo repository.GeneratedPlanRepository
	defaults PlanDefaults
	log      *logger.Logger
}

func NewPlanService(planRepo repository.GeneratedPlanRepository, defaults PlanDefaults, log *logger.Logger) PlanService {
	if defaults.Sets <= 0 {
		defaults.Sets = 3
	}
	if strings.TrimSpace(defaults.Reps) == "" {
		defaults.Reps = "10"
	}
	return &planService{planRepo: planRepo, defaults: defaults, log: log}
}

func (s *planService) ImportPlan(ctx context.Context, ownerID primitive.ObjectID, doc *PlanDocument) (*domain.GeneratedPlan, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}

	plan, err := NormalizePlan(doc, s.defaults)
	if err != nil {
		if !errors.Is(err, ErrMalformedPlanDocument) {
			return nil, err
		}
		s.log.Warn("malformed plan document, using default plan", "ownerId", ownerID.Hex())
		plan = DefaultPlan(s.defaults)
	}
	plan.OwnerID = ownerID

	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, &StorageWriteError{Op: "import plan", Err: err}
	}
	s.log.Info("plan imported", "planId", plan.ID.Hex(), "ownerId", ownerID.Hex(), "exercises", len(plan.Exercises))
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.GeneratedPlan, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.planRepo.GetByOwnerID(ctx, ownerID, limit)
}

func (s *planService) GetPlan(ctx context.Context, ownerID, planID primitive.ObjectID) (*domain.GeneratedPlan, error) {
	return loadOwnedPlan(ctx, s.planRepo, ownerID, planID)
}

// loadOwnedPlan is shared by every service that acts on a plan.
func loadOwnedPlan(ctx context.Context, planRepo repository.GeneratedPlanRepository, ownerID, planID primitive.ObjectID) (*domain.GeneratedPlan, error) {
	plan, err := planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// NormalizePlan turns an untrusted document into a plan ready to store.
// Exercises without a name are dropped. It returns ErrMalformedPlanDocument
// when the title or every exercise is missing.
func NormalizePlan(doc *PlanDocument, defaults PlanDefaults) (*domain.GeneratedPlan, error) {
	if doc == nil || strings.TrimSpace(doc.Title) == "" {
		return nil, ErrMalformedPlanDocument
	}

	exercises := make([]domain.PlanExerciseSpec, 0, len(doc.Exercises))
	for _, in := range doc.Exercises {
		name := strings.TrimSpace(string(in.Name))
		if name == "" {
			continue
		}
		sets, err := strconv.Atoi(strings.TrimSpace(string(in.Sets)))
		if err != nil || sets <= 0 {
			sets = defaults.Sets
		}
		reps := strings.TrimSpace(string(in.Reps))
		if reps == "" {
			reps = defaults.Reps
		}
		exercises = append(exercises, domain.PlanExerciseSpec{
			Name:   name,
			Muscle: strings.TrimSpace(string(in.Muscle)),
			Sets:   sets,
			Reps:   reps,
		})
	}
	if len(exercises) == 0 {
		return nil, ErrMalformedPlanDocument
	}

	return &domain.GeneratedPlan{
		Title:           strings.TrimSpace(doc.Title),
		Description:     strings.TrimSpace(doc.Description),
		Exercises:       exercises,
		WeeklyStructure: orderWeek(doc.WeeklyStructure),
	}, nil
}

var weekdayOrder = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// orderWeek lists known weekdays Monday first, then any other keys sorted.
func orderWeek(in map[string]PlanDayInput) []domain.PlanDay {
	days := make([]domain.PlanDay, 0, len(in))
	for day, v := range in {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		days = append(days, domain.PlanDay{
			Day:      day,
			Focus:    strings.TrimSpace(string(v.Focus)),
			Duration: strings.TrimSpace(string(v.Duration)),
		})
	}
	rank := func(d string) int {
		if r, ok := weekdayOrder[strings.ToLower(d)]; ok {
			return r
		}
		return len(weekdayOrder)
	}
	sort.Slice(days, func(i, j int) bool {
		ri, rj := rank(days[i].Day), rank(days[j].Day)
		if ri != rj {
			return ri < rj
		}
		return days[i].Day < days[j].Day
	})
	return days
}

// DefaultPlan is the minimal safe plan substituted for malformed documents.
func DefaultPlan(defaults PlanDefaults) *domain.GeneratedPlan {
	return &domain.GeneratedPlan{
		Title:       "Full Body Starter",
		Description: "A basic full body routine.",
		Exercises: []domain.PlanExerciseSpec{
			{Name: "Push-ups", Muscle: "chest", Sets: defaults.Sets, Reps: defaults.Reps},
			{Name: "Bodyweight Squats", Muscle: "legs", Sets: defaults.Sets, Reps: defaults.Reps},
			{Name: "Plank", Muscle: "core", Sets: defaults.Sets, Reps: "30 seconds"},
		},
		WeeklyStructure: []domain.PlanDay{
			{Day: "Monday", Focus: "Full body", Duration: "30 minutes"},
			{Day: "Wednesday", Focus: "Full body", Duration: "30 minutes"},
			{Day: "Friday", Focus: "Full body", Duration: "30 minutes"},
		},
	}
}
