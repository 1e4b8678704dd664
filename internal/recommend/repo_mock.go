package recommend

import (
	"context"

	"github.com/kgriffin/trainloop/internal/goals"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

var (
	_ predictorService      = (*enduranceDepsMock)(nil)
	_ ladderService         = (*enduranceDepsMock)(nil)
	_ goalsEngine           = (*enduranceDepsMock)(nil)
	_ plansRepo             = (*enduranceDepsMock)(nil)
	_ backfiller            = (*enduranceDepsMock)(nil)
	_ strengthLadderService = (*strengthDepsMock)(nil)
	_ strengthGoalsEngine   = (*strengthDepsMock)(nil)
	_ strengthPlansRepo     = (*strengthDepsMock)(nil)
	_ supplementalPlansRepo = (*suppDepsMock)(nil)
)

// enduranceDepsMock fakes the endurance-side collaborators plus the plans
// repo and the backfill hook.
type enduranceDepsMock struct {
	program        *plans.Program
	nextRoutine    *plans.Routine
	nextRoutineErr error
	nextWorkouts   map[int]*plans.Workout
	routines       []plans.Routine
	workoutBlocks  map[int][]plans.Workout
	nextSteps      map[int]*plans.ProgressionStep
	rateGoals      *goals.RateGoals

	lastStrategy      *goals.Strategy
	lastCurrentTarget *float64

	backfillCalls int
	backfillErr   error
}

func newEnduranceDepsMock() *enduranceDepsMock {
	return &enduranceDepsMock{
		program:       &plans.Program{ID: 1, Name: "base", Selected: true},
		nextWorkouts:  make(map[int]*plans.Workout),
		workoutBlocks: make(map[int][]plans.Workout),
		nextSteps:     make(map[int]*plans.ProgressionStep),
	}
}

func (m *enduranceDepsMock) NextRoutine(_ context.Context) (*plans.Routine, error) {
	if m.nextRoutineErr != nil {
		return nil, m.nextRoutineErr
	}
	return m.nextRoutine, nil
}

func (m *enduranceDepsMock) NextWorkout(_ context.Context, routineID int) (*plans.Workout, error) {
	return m.nextWorkouts[routineID], nil
}

func (m *enduranceDepsMock) NextStep(_ context.Context, workoutID int) (*plans.ProgressionStep, error) {
	return m.nextSteps[workoutID], nil
}

func (m *enduranceDepsMock) RateGoal(_ context.Context, _ plans.Workout, strategy goals.Strategy, currentTarget *float64) (*goals.RateGoals, error) {
	m.lastStrategy = &strategy
	m.lastCurrentTarget = currentTarget
	return m.rateGoals, nil
}

func (m *enduranceDepsMock) SelectedProgram(_ context.Context) (*plans.Program, error) {
	if m.program == nil {
		return nil, plans.ErrNoSelectedProgram
	}
	return m.program, nil
}

func (m *enduranceDepsMock) RoutinesOrderedByLastCompleted(_ context.Context, _ int) ([]plans.Routine, error) {
	return m.routines, nil
}

func (m *enduranceDepsMock) WorkoutsOrderedByLastCompleted(_ context.Context, routineID int, _ bool) ([]plans.Workout, error) {
	return m.workoutBlocks[routineID], nil
}

func (m *enduranceDepsMock) EnsureBackfilled(_ context.Context) ([]trainlog.EnduranceLog, error) {
	m.backfillCalls++
	return nil, m.backfillErr
}

type strengthDepsMock struct {
	routines  []plans.StrengthRoutine
	nextGoals map[int]*plans.StrengthProgressionStep
	rateGoals map[int]*goals.RateGoals
	ceilings  map[int]*goals.Ceiling
}

func newStrengthDepsMock() *strengthDepsMock {
	return &strengthDepsMock{
		nextGoals: make(map[int]*plans.StrengthProgressionStep),
		rateGoals: make(map[int]*goals.RateGoals),
		ceilings:  make(map[int]*goals.Ceiling),
	}
}

func (m *strengthDepsMock) NextGoal(_ context.Context, routineID int) (*plans.StrengthProgressionStep, error) {
	return m.nextGoals[routineID], nil
}

func (m *strengthDepsMock) RateGoal(_ context.Context, routineID int) (*goals.RateGoals, error) {
	return m.rateGoals[routineID], nil
}

func (m *strengthDepsMock) MaxCeiling(_ context.Context, routineID int) (*goals.Ceiling, error) {
	return m.ceilings[routineID], nil
}

func (m *strengthDepsMock) RoutinesOrderedByLastCompleted(_ context.Context, _ int) ([]plans.StrengthRoutine, error) {
	return m.routines, nil
}

type suppDepsMock struct {
	routines []plans.SupplementalRoutine
}

func (m *suppDepsMock) RoutinesOrderedByLastDone(_ context.Context, _ int) ([]plans.SupplementalRoutine, error) {
	return m.routines, nil
}
