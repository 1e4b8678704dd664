package recommend

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kgriffin/trainloop/internal/goals"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

type predictorService interface {
	NextRoutine(ctx context.Context) (*plans.Routine, error)
	NextWorkout(ctx context.Context, routineID int) (*plans.Workout, error)
}

type ladderService interface {
	NextStep(ctx context.Context, workoutID int) (*plans.ProgressionStep, error)
}

type strengthLadderService interface {
	NextGoal(ctx context.Context, routineID int) (*plans.StrengthProgressionStep, error)
}

type goalsEngine interface {
	RateGoal(ctx context.Context, workout plans.Workout, strategy goals.Strategy, currentTarget *float64) (*goals.RateGoals, error)
}

type strengthGoalsEngine interface {
	RateGoal(ctx context.Context, routineID int) (*goals.RateGoals, error)
	MaxCeiling(ctx context.Context, routineID int) (*goals.Ceiling, error)
}

type plansRepo interface {
	SelectedProgram(ctx context.Context) (*plans.Program, error)
	RoutinesOrderedByLastCompleted(ctx context.Context, programID int) ([]plans.Routine, error)
	WorkoutsOrderedByLastCompleted(ctx context.Context, routineID int, includeSkipped bool) ([]plans.Workout, error)
}

type strengthPlansRepo interface {
	RoutinesOrderedByLastCompleted(ctx context.Context, programID int) ([]plans.StrengthRoutine, error)
}

type supplementalPlansRepo interface {
	RoutinesOrderedByLastDone(ctx context.Context, programID int) ([]plans.SupplementalRoutine, error)
}

type backfiller interface {
	EnsureBackfilled(ctx context.Context) ([]trainlog.EnduranceLog, error)
}

// Endurance is the endurance part of a daily recommendation. Workouts holds
// every workout of the program stacked per routine, ordered so that the
// predicted workout comes last within the predicted routine's block, which
// itself comes last.
type Endurance struct {
	NextRoutine     *plans.Routine         `json:"nextRoutine"`
	NextWorkout     *plans.Workout         `json:"nextWorkout"`
	NextProgression *plans.ProgressionStep `json:"nextProgression,omitempty"`
	Goals           *goals.RateGoals       `json:"goals,omitempty"`
	Workouts        []plans.Workout        `json:"workouts"`
}

type Strength struct {
	NextRoutine *plans.StrengthRoutine         `json:"nextRoutine"`
	NextGoal    *plans.StrengthProgressionStep `json:"nextGoal,omitempty"`
	RateGoals   *goals.RateGoals               `json:"rateGoals,omitempty"`
	Ceiling     *goals.Ceiling                 `json:"ceiling,omitempty"`
	Routines    []plans.StrengthRoutine        `json:"routines"`
}

type Supplemental struct {
	NextRoutine *plans.SupplementalRoutine  `json:"nextRoutine"`
	Routines    []plans.SupplementalRoutine `json:"routines"`
}

// Recommendation is the full answer to "what should I train today".
type Recommendation struct {
	Endurance    Endurance    `json:"endurance"`
	Strength     Strength     `json:"strength"`
	Supplemental Supplemental `json:"supplemental"`
}

// Recommender composes the predictor, the ladders and the goal engines into
// one daily recommendation per discipline.
type Recommender struct {
	predictor      predictorService
	ladder         ladderService
	strengthLadder strengthLadderService
	goals          goalsEngine
	strengthGoals  strengthGoalsEngine
	plans          plansRepo
	strengthPlans  strengthPlansRepo
	suppPlans      supplementalPlansRepo
	backfill       backfiller
}

type Deps struct {
	Predictor      predictorService
	Ladder         ladderService
	StrengthLadder strengthLadderService
	Goals          goalsEngine
	StrengthGoals  strengthGoalsEngine
	Plans          plansRepo
	StrengthPlans  strengthPlansRepo
	SuppPlans      supplementalPlansRepo
	Backfill       backfiller
}

func NewRecommender(deps Deps) *Recommender {
	return &Recommender{
		predictor:      deps.Predictor,
		ladder:         deps.Ladder,
		strengthLadder: deps.StrengthLadder,
		goals:          deps.Goals,
		strengthGoals:  deps.StrengthGoals,
		plans:          deps.Plans,
		strengthPlans:  deps.StrengthPlans,
		suppPlans:      deps.SuppPlans,
		backfill:       deps.Backfill,
	}
}

// Today computes the daily recommendation. Rest-day gaps are backfilled
// first so the predictors see an unbroken history; a backfill failure only
// degrades the prediction, it never fails the recommendation.
func (r *Recommender) Today(ctx context.Context, includeSkipped bool) (_ *Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recommend.today")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.backfill.EnsureBackfilled(ctx); err != nil {
		log.Errorf("recommend: backfill before recommendation: %s", err)
	}

	program, err := r.plans.SelectedProgram(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("program.id", program.ID))

	recommendation := &Recommendation{}

	endurance, err := r.endurance(ctx, program.ID, includeSkipped)
	if err != nil {
		return nil, fmt.Errorf("endurance: %w", err)
	}
	recommendation.Endurance = *endurance

	strength, err := r.strength(ctx, program.ID)
	if err != nil {
		return nil, fmt.Errorf("strength: %w", err)
	}
	recommendation.Strength = *strength

	supplemental, err := r.supplemental(ctx, program.ID)
	if err != nil {
		return nil, fmt.Errorf("supplemental: %w", err)
	}
	recommendation.Supplemental = *supplemental

	return recommendation, nil
}

func (r *Recommender) endurance(ctx context.Context, programID int, includeSkipped bool) (*Endurance, error) {
	nextRoutine, err := r.predictor.NextRoutine(ctx)
	if err != nil {
		return nil, fmt.Errorf("next routine: %w", err)
	}
	if nextRoutine == nil {
		// plan still being configured, the other disciplines still render
		return &Endurance{}, nil
	}

	nextWorkout, err := r.predictor.NextWorkout(ctx, nextRoutine.ID)
	if err != nil {
		return nil, fmt.Errorf("next workout: %w", err)
	}

	routines, err := r.plans.RoutinesOrderedByLastCompleted(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("ordered routines: %w", err)
	}
	routines = moveToEnd(routines, func(routine plans.Routine) bool {
		return routine.ID == nextRoutine.ID
	})

	var workouts []plans.Workout
	for _, routine := range routines {
		block, err := r.plans.WorkoutsOrderedByLastCompleted(ctx, routine.ID, includeSkipped)
		if err != nil {
			return nil, fmt.Errorf("ordered workouts of routine %d: %w", routine.ID, err)
		}
		if nextWorkout != nil && routine.ID == nextRoutine.ID {
			block = moveToEnd(block, func(w plans.Workout) bool {
				return w.ID == nextWorkout.ID
			})
		}
		workouts = append(workouts, block...)
	}

	endurance := &Endurance{
		NextRoutine: nextRoutine,
		NextWorkout: nextWorkout,
		Workouts:    workouts,
	}
	if nextWorkout == nil {
		return endurance, nil
	}

	nextProgression, err := r.ladder.NextStep(ctx, nextWorkout.ID)
	if err != nil {
		return nil, fmt.Errorf("next progression: %w", err)
	}
	endurance.NextProgression = nextProgression

	strategy, err := goals.ParseStrategy(nextWorkout.GoalStrategy)
	if err != nil {
		// a misconfigured workout should not sink the whole recommendation
		log.Errorf("recommend: workout %d has invalid goal strategy %q, using default", nextWorkout.ID, nextWorkout.GoalStrategy)
		strategy = goals.DefaultStrategy
	}

	var currentTarget *float64
	if nextProgression != nil {
		currentTarget = &nextProgression.Value
	}
	rateGoals, err := r.goals.RateGoal(ctx, *nextWorkout, strategy, currentTarget)
	if err != nil {
		return nil, fmt.Errorf("rate goal: %w", err)
	}
	endurance.Goals = rateGoals

	return endurance, nil
}

func (r *Recommender) strength(ctx context.Context, programID int) (*Strength, error) {
	routines, err := r.strengthPlans.RoutinesOrderedByLastCompleted(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("ordered routines: %w", err)
	}
	if len(routines) == 0 {
		return &Strength{}, nil
	}

	// least recently completed comes last in the ordering
	next := routines[len(routines)-1]

	nextGoal, err := r.strengthLadder.NextGoal(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("next goal: %w", err)
	}

	rateGoals, err := r.strengthGoals.RateGoal(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("rate goal: %w", err)
	}

	ceiling, err := r.strengthGoals.MaxCeiling(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("max ceiling: %w", err)
	}

	return &Strength{
		NextRoutine: &next,
		NextGoal:    nextGoal,
		RateGoals:   rateGoals,
		Ceiling:     ceiling,
		Routines:    routines,
	}, nil
}

func (r *Recommender) supplemental(ctx context.Context, programID int) (*Supplemental, error) {
	routines, err := r.suppPlans.RoutinesOrderedByLastDone(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("ordered routines: %w", err)
	}
	if len(routines) == 0 {
		return &Supplemental{}, nil
	}

	next := routines[len(routines)-1]
	return &Supplemental{
		NextRoutine: &next,
		Routines:    routines,
	}, nil
}

// moveToEnd moves the first element matching the predicate to the end of
// the slice, keeping the rest in order.
func moveToEnd[T any](items []T, match func(T) bool) []T {
	for i := range items {
		if match(items[i]) {
			moved := items[i]
			out := make([]T, 0, len(items))
			out = append(out, items[:i]...)
			out = append(out, items[i+1:]...)
			return append(out, moved)
		}
	}
	return items
}
