package memstore

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	defer r.s.lock(ctx)()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.d.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.d.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// --- catalog ---

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if strings.TrimSpace(exercise.Name) == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	defer r.s.lock(ctx)()
	for _, e := range r.s.d.exercises {
		if strings.EqualFold(e.Name, exercise.Name) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.d.exercises = append(r.s.d.exercises, *exercise)
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	defer r.s.lock(ctx)()
	for _, e := range r.s.d.exercises {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *exerciseRepo) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	defer r.s.lock(ctx)()
	for _, e := range r.s.d.exercises {
		if strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListCatalog returns entries in insertion order.
func (r *exerciseRepo) ListCatalog(ctx context.Context, limit int) ([]domain.Exercise, error) {
	defer r.s.lock(ctx)()
	n := len(r.s.d.exercises)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.Exercise{}, r.s.d.exercises[:n]...), nil
}

// --- plans ---

type planRepo struct{ s *Store }

func (r *planRepo) Create(ctx context.Context, plan *domain.GeneratedPlan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires ownerId and title")
	}
	defer r.s.lock(ctx)()
	plan.ID = primitive.NewObjectID()
	plan.Mapped = false
	plan.MaterializedWorkoutID = nil
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.s.d.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedPlan, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.d.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *planRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.GeneratedPlan, error) {
	defer r.s.lock(ctx)()
	plans := []domain.GeneratedPlan{}
	for _, p := range r.s.d.plans {
		if p.OwnerID == ownerID {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].ID.Hex() > plans[j].ID.Hex()
		}
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

func (r *planRepo) MarkMapped(ctx context.Context, planID, workoutID primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	if err := r.s.failure(OpMarkMapped); err != nil {
		return err
	}
	p, ok := r.s.d.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Mapped {
		return repository.ErrConflict
	}
	id := workoutID
	p.Mapped = true
	p.MaterializedWorkoutID = &id
	p.UpdatedAt = time.Now().UTC()
	r.s.d.plans[planID] = p
	return nil
}

func (r *planRepo) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for id, p := range r.s.d.plans {
		if p.OwnerID == ownerID {
			delete(r.s.d.plans, id)
			n++
		}
	}
	return n, nil
}

// --- workouts ---

type workoutRepo struct{ s *Store }

func (r *workoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.GeneratedPlanID == primitive.NilObjectID || workout.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires generatedPlanId and ownerId")
	}
	defer r.s.lock(ctx)()
	if err := r.s.failure(OpCreateWorkout); err != nil {
		return primitive.NilObjectID, err
	}
	for _, w := range r.s.d.workouts {
		if w.GeneratedPlanID == workout.GeneratedPlanID {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = time.Now().UTC()
	r.s.d.workouts[workout.ID] = *workout
	return workout.ID, nil
}

func (r *workoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	defer r.s.lock(ctx)()
	w, ok := r.s.d.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *workoutRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.Workout, error) {
	defer r.s.lock(ctx)()
	for _, w := range r.s.d.workouts {
		if w.GeneratedPlanID == planID {
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutRepo) GetIDsByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	defer r.s.lock(ctx)()
	ids := []primitive.ObjectID{}
	for id, w := range r.s.d.workouts {
		if w.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *workoutRepo) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for id, w := range r.s.d.workouts {
		if w.OwnerID == ownerID {
			delete(r.s.d.workouts, id)
			n++
		}
	}
	return n, nil
}

// --- workout exercise links ---

type linkRepo struct{ s *Store }

func (r *linkRepo) CreateMany(ctx context.Context, links []domain.WorkoutExercise) error {
	defer r.s.lock(ctx)()
	if err := r.s.failure(OpCreateLinks); err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range links {
		if links[i].WorkoutID == primitive.NilObjectID || links[i].ExerciseID == primitive.NilObjectID {
			return errors.New("workout exercise requires workoutId and exerciseId")
		}
		links[i].ID = primitive.NewObjectID()
		links[i].CreatedAt = now
		r.s.d.links = append(r.s.d.links, links[i])
	}
	return nil
}

func (r *linkRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	defer r.s.lock(ctx)()
	links := []domain.WorkoutExercise{}
	for _, l := range r.s.d.links {
		if l.WorkoutID == workoutID {
			links = append(links, l)
		}
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].OrderPosition < links[j].OrderPosition })
	return links, nil
}

func (r *linkRepo) DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	drop := make(map[primitive.ObjectID]bool, len(workoutIDs))
	for _, id := range workoutIDs {
		drop[id] = true
	}
	kept := r.s.d.links[:0:0]
	var n int64
	for _, l := range r.s.d.links {
		if drop[l.WorkoutID] {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.s.d.links = kept
	return n, nil
}

// --- completions ---

type completionRepo struct{ s *Store }

func (r *completionRepo) Create(ctx context.Context, record *domain.CompletionRecord, cols domain.CompletionColumns) (primitive.ObjectID, error) {
	if record.OwnerID == primitive.NilObjectID || record.PlanID == primitive.NilObjectID || record.Kind == "" {
		return primitive.NilObjectID, errors.New("completion requires ownerId, planId and kind")
	}
	defer r.s.lock(ctx)()
	if err := r.s.failure(OpCreateCompletion); err != nil {
		return primitive.NilObjectID, err
	}

	row := domain.CompletionRecord{
		OwnerID:        record.OwnerID,
		PlanID:         record.PlanID,
		Kind:           record.Kind,
		CaloriesBurned: record.CaloriesBurned,
		Rating:         record.Rating,
		Notes:          record.Notes,
		CompletedAt:    record.CompletedAt,
	}
	if cols.Duration && record.Duration != nil {
		if !r.s.columns.Duration {
			return primitive.NilObjectID, errUnsupportedColumn("duration")
		}
		row.Duration = record.Duration
	}
	if cols.ExercisesCompleted && record.ExercisesCompleted != nil {
		if !r.s.columns.ExercisesCompleted {
			return primitive.NilObjectID, errUnsupportedColumn("exercisesCompleted")
		}
		row.ExercisesCompleted = record.ExercisesCompleted
	}
	if cols.TotalExercises && record.TotalExercises != nil {
		if !r.s.columns.TotalExercises {
			return primitive.NilObjectID, errUnsupportedColumn("totalExercises")
		}
		row.TotalExercises = record.TotalExercises
	}

	if row.CompletedAt == nil {
		now := time.Now().UTC()
		row.CompletedAt = &now
		record.CompletedAt = &now
	}
	row.ID = primitive.NewObjectID()
	record.ID = row.ID
	r.s.d.completions = append(r.s.d.completions, row)
	return row.ID, nil
}

func (r *completionRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error) {
	defer r.s.lock(ctx)()
	records := []domain.CompletionRecord{}
	for _, c := range r.s.d.completions {
		if c.OwnerID != ownerID || (kind != "" && c.Kind != kind) {
			continue
		}
		records = append(records, c)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return completedAt(records[i]).After(completedAt(records[j]))
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *completionRepo) CountCompleted(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, c := range r.s.d.completions {
		if inWindow(c, ownerID, window) {
			n++
		}
	}
	return n, nil
}

func (r *completionRepo) SumCalories(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	defer r.s.lock(ctx)()
	var total int64
	for _, c := range r.s.d.completions {
		if inWindow(c, ownerID, window) && c.CaloriesBurned != nil {
			total += int64(*c.CaloriesBurned)
		}
	}
	return total, nil
}

func (r *completionRepo) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure(OpDeleteCompletions); err != nil {
		return 0, err
	}
	kept := r.s.d.completions[:0:0]
	var n int64
	for _, c := range r.s.d.completions {
		if c.OwnerID == ownerID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.s.d.completions = kept
	return n, nil
}

func inWindow(c domain.CompletionRecord, ownerID primitive.ObjectID, window domain.TimeWindow) bool {
	return c.OwnerID == ownerID && c.CompletedAt != nil && window.Contains(*c.CompletedAt)
}

func completedAt(c domain.CompletionRecord) time.Time {
	if c.CompletedAt == nil {
		return time.Time{}
	}
	return *c.CompletedAt
}

// --- schema probe ---

type schemaProbe struct{ s *Store }

func (p *schemaProbe) CompletionColumns(ctx context.Context) (domain.CompletionColumns, error) {
	defer p.s.lock(ctx)()
	if err := p.s.failure(OpProbeSchema); err != nil {
		return domain.CompletionColumns{}, err
	}
	return p.s.columns, nil
}
