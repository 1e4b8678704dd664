package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type plansRepo interface {
	SelectedProgram(ctx context.Context) (*plans.Program, error)
	Plan(ctx context.Context, programID int) ([]plans.PlanEntry, error)
	OrderedWorkouts(ctx context.Context, routineID int, includeSkipped bool) ([]plans.Workout, error)
	MaxPriorityOrder(ctx context.Context, routineID int) (int, error)
}

type historyRepo interface {
	RecentRoutineIDs(ctx context.Context, limit int) ([]int, error)
	RecentWorkoutIDs(ctx context.Context, routineID, limit int) ([]int, error)
}

// Service predicts the next routine and workout from the selected program's
// plan and the recent session history.
type Service struct {
	plans   plansRepo
	history historyRepo

	weekendOnly map[string]struct{}
	loc         *time.Location
	now         func() time.Time
}

func NewService(plansRepo plansRepo, historyRepo historyRepo, cfg config.Training) (*Service, error) {
	// weekday checks happen in the athlete's timezone, same as the
	// backfill day boundaries
	loc, err := time.LoadLocation(cfg.BackfillTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	weekendOnly := make(map[string]struct{}, len(cfg.WeekendOnlyRoutines))
	for _, name := range cfg.WeekendOnlyRoutines {
		weekendOnly[name] = struct{}{}
	}
	return &Service{
		plans:       plansRepo,
		history:     historyRepo,
		weekendOnly: weekendOnly,
		loc:         loc,
		now:         time.Now,
	}, nil
}

// NextRoutine predicts the routine that should come next according to the
// plan order and the last N logged routines, N being the plan length.
// An empty plan yields nil without error, it is an expected state while a
// program is still being configured.
func (s *Service) NextRoutine(ctx context.Context) (_ *plans.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "predictor.nextroutine")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	program, err := s.plans.SelectedProgram(ctx)
	if err != nil {
		return nil, fmt.Errorf("selected program: %w", err)
	}

	plan, err := s.plans.Plan(ctx, program.ID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if len(plan) == 0 {
		return nil, nil
	}

	planIDs := make([]int, len(plan))
	routinesByID := make(map[int]plans.Routine, len(plan))
	for i, entry := range plan {
		planIDs[i] = entry.Routine.ID
		routinesByID[entry.Routine.ID] = entry.Routine
	}

	recent, err := s.history.RecentRoutineIDs(ctx, len(plan))
	if err != nil {
		return nil, fmt.Errorf("recent routines: %w", err)
	}

	pattern := filterToPlan(recent, planIDs)
	nextID := nextInSequence(planIDs, pattern)
	nextID = s.firstEligible(planIDs, routinesByID, nextID)

	span.SetAttributes(attribute.Int("routine.id", nextID))

	next := routinesByID[nextID]
	return &next, nil
}

// NextWorkout predicts the workout that should come next within a routine,
// matched against the last M logs where M is the routine's max priority
// order. A routine with no workouts yields nil without error.
func (s *Service) NextWorkout(ctx context.Context, routineID int) (_ *plans.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "predictor.nextworkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	workouts, err := s.plans.OrderedWorkouts(ctx, routineID, false)
	if err != nil {
		return nil, fmt.Errorf("ordered workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, nil
	}

	planIDs := make([]int, len(workouts))
	workoutsByID := make(map[int]plans.Workout, len(workouts))
	for i, w := range workouts {
		planIDs[i] = w.ID
		workoutsByID[w.ID] = w
	}

	maxPriority, err := s.plans.MaxPriorityOrder(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("max priority order: %w", err)
	}

	recent, err := s.history.RecentWorkoutIDs(ctx, routineID, maxPriority)
	if err != nil {
		return nil, fmt.Errorf("recent workouts: %w", err)
	}

	pattern := filterToPlan(recent, planIDs)
	if len(pattern) == 0 {
		return &workouts[0], nil
	}

	// prefer any plan workout not completed within the recent window
	if missingID, ok := singleMissing(planIDs, pattern); ok {
		missing := workoutsByID[missingID]
		return &missing, nil
	}

	nextID := nextInSequence(planIDs, pattern)
	span.SetAttributes(attribute.Int("workout.id", nextID))

	next := workoutsByID[nextID]
	return &next, nil
}

// singleMissing reports the one plan element absent from the pattern, if
// exactly one is missing.
func singleMissing(planIDs, pattern []int) (int, bool) {
	seen := make(map[int]struct{}, len(pattern))
	for _, id := range pattern {
		seen[id] = struct{}{}
	}
	var missing []int
	for _, id := range planIDs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 1 {
		return missing[0], true
	}
	return 0, false
}

// firstEligible enforces the weekend-only rule: routines marked weekend-only
// are skipped on weekdays, scanning forward in plan order for the first
// eligible routine, up to one full cycle.
func (s *Service) firstEligible(planIDs []int, routinesByID map[int]plans.Routine, nextID int) int {
	if len(s.weekendOnly) == 0 || isWeekend(s.now().In(s.loc)) {
		return nextID
	}
	if _, restricted := s.weekendOnly[routinesByID[nextID].Name]; !restricted {
		return nextID
	}

	start := 0
	for i, id := range planIDs {
		if id == nextID {
			start = i
			break
		}
	}
	for offset := 1; offset <= len(planIDs); offset++ {
		candidate := planIDs[(start+offset)%len(planIDs)]
		if _, restricted := s.weekendOnly[routinesByID[candidate].Name]; !restricted {
			return candidate
		}
	}
	return nextID
}

func isWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}
