// Package resolver maps free-text plan exercises onto catalog entries.
//
// Resolution is a three-tier cascade: exact name, then muscle category, then a
// round-robin pick from the catalog. It is total for any non-empty catalog.
package resolver

import (
	"alcyxob/fitness-tracker/internal/domain"
	"errors"
	"strings"
)

// ErrCatalogUnavailable is returned when there is nothing to resolve against.
var ErrCatalogUnavailable = errors.New("exercise catalog is empty")

// Resolution is the outcome for one plan exercise.
type Resolution struct {
	Exercise domain.Exercise
	Kind     domain.MatchKind
}

// Resolve picks the catalog entry for spec, which sits at position i in its plan.
func Resolve(spec domain.PlanExerciseSpec, catalog []domain.Exercise, i int) (Resolution, error) {
	if len(catalog) == 0 {
		return Resolution{}, ErrCatalogUnavailable
	}

	if name := strings.TrimSpace(spec.Name); name != "" {
		for _, e := range catalog {
			if strings.EqualFold(strings.TrimSpace(e.Name), name) {
				return Resolution{Exercise: e, Kind: domain.MatchExact}, nil
			}
		}
	}

	if muscle := normalize(spec.Muscle); muscle != "" {
		for _, e := range catalog {
			group := normalize(e.MuscleGroup)
			if group == "" {
				continue
			}
			if strings.Contains(muscle, group) || strings.Contains(group, muscle) {
				return Resolution{Exercise: e, Kind: domain.MatchCategory}, nil
			}
		}
	}

	if i < 0 {
		i = -i
	}
	return Resolution{Exercise: catalog[i%len(catalog)], Kind: domain.MatchFallback}, nil
}

// ResolveAll resolves every exercise of a plan, in order. It fails as a whole
// when the catalog is empty, so callers can abort before writing anything.
func ResolveAll(specs []domain.PlanExerciseSpec, catalog []domain.Exercise) ([]Resolution, error) {
	if len(catalog) == 0 {
		return nil, ErrCatalogUnavailable
	}
	out := make([]Resolution, 0, len(specs))
	for i, spec := range specs {
		r, err := Resolve(spec, catalog, i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
