package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgriffin/trainloop/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) SelectedProgram(ctx context.Context) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.selectedprogram")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, selected FROM program WHERE selected = TRUE LIMIT 1;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrNoSelectedProgram
	}

	var p Program
	if err := rows.Scan(&p.ID, &p.Name, &p.Selected); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &p, nil
}

func (r *Repo) GetProgram(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.getprogram")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var p Program
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, selected FROM program WHERE id = $1;`,
		id,
	).Scan(&p.ID, &p.Name, &p.Selected)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Plan returns the program's repeating routine cycle in routine_order.
func (r *Repo) Plan(ctx context.Context, programID int) (_ []PlanEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.plan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT ep.routine_order, er.id, er.name
			FROM endurance_plan ep
			JOIN endurance_routine er ON er.id = ep.routine_id
			WHERE ep.program_id = $1
			ORDER BY ep.routine_order;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var entries []PlanEntry
	for rows.Next() {
		var e PlanEntry
		if err := rows.Scan(&e.Order, &e.Routine.ID, &e.Routine.Name); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Repo) GetRoutine(ctx context.Context, id int) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.getroutine")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var routine Routine
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name FROM endurance_routine WHERE id = $1;`,
		id,
	).Scan(&routine.ID, &routine.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *Repo) GetWorkout(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.getworkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		workoutSelect+`WHERE w.id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}
	return &workouts[0], nil
}

const workoutSelect = `
	SELECT
		w.id, w.name, w.routine_id, w.priority_order, w.skip, w.difficulty,
		COALESCE(w.goal_strategy, ''),
		u.id, u.name, u.kind, u.mile_equiv_num, u.mile_equiv_den
	FROM endurance_workout w
	JOIN endurance_unit u ON u.id = w.unit_id
	`

// OrderedWorkouts returns a routine's workouts in plan order
// (priority_order, then name), optionally including skip-flagged ones.
func (r *Repo) OrderedWorkouts(ctx context.Context, routineID int, includeSkipped bool) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.orderedworkouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))
	span.SetAttributes(attribute.Bool("include-skipped", includeSkipped))

	rows, err := r.db.Query(
		ctx,
		workoutSelect+`
			WHERE w.routine_id = $1
			AND ($2::boolean IS TRUE OR w.skip = FALSE)
			ORDER BY w.priority_order, w.name;`,
		routineID, includeSkipped,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return r.rows2workouts(rows)
}

// MaxPriorityOrder returns the highest priority_order among a routine's
// non-skipped workouts, or 0 when the routine has none.
func (r *Repo) MaxPriorityOrder(ctx context.Context, routineID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.maxpriorityorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	var maxOrder int
	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(MAX(priority_order), 0) FROM endurance_workout WHERE routine_id = $1 AND skip = FALSE;`,
		routineID,
	).Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	return maxOrder, nil
}

// OrderedProgressions returns a workout's goal ladder in progression order.
func (r *Repo) OrderedProgressions(ctx context.Context, workoutID int) (_ []ProgressionStep, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.orderedprogressions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, workout_id, progression_order, progression
			FROM endurance_progression
			WHERE workout_id = $1
			ORDER BY progression_order;`,
		workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var steps []ProgressionStep
	for rows.Next() {
		var s ProgressionStep
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.Order, &s.Value); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// RoutinesOrderedByLastCompleted returns the program's routines ordered by
// their most recent log, newest first, routines never logged last.
// Ties break by plan order, then name.
func (r *Repo) RoutinesOrderedByLastCompleted(ctx context.Context, programID int) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.routinesbylastcompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT er.id, er.name
			FROM endurance_routine er
			JOIN (
				SELECT routine_id, MIN(routine_order) AS plan_order
				FROM endurance_plan
				WHERE program_id = $1
				GROUP BY routine_id
			) ep ON ep.routine_id = er.id
			LEFT JOIN LATERAL (
				SELECT l.started_at
				FROM endurance_log l
				JOIN endurance_workout w ON w.id = l.workout_id
				WHERE w.routine_id = er.id
				ORDER BY l.started_at DESC
				LIMIT 1
			) last ON TRUE
			ORDER BY last.started_at DESC NULLS LAST, ep.plan_order, er.name;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var routines []Routine
	for rows.Next() {
		var routine Routine
		if err := rows.Scan(&routine.ID, &routine.Name); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, nil
}

// WorkoutsOrderedByLastCompleted returns a routine's workouts ordered by
// their most recent log, newest first, never-logged workouts last.
// Ties break by (priority_order, name).
func (r *Repo) WorkoutsOrderedByLastCompleted(ctx context.Context, routineID int, includeSkipped bool) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.workoutsbylastcompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))
	span.SetAttributes(attribute.Bool("include-skipped", includeSkipped))

	rows, err := r.db.Query(
		ctx,
		workoutSelect+`
			LEFT JOIN LATERAL (
				SELECT l.started_at
				FROM endurance_log l
				WHERE l.workout_id = w.id
				ORDER BY l.started_at DESC
				LIMIT 1
			) last ON TRUE
			WHERE w.routine_id = $1
			AND ($2::boolean IS TRUE OR w.skip = FALSE)
			ORDER BY last.started_at DESC NULLS LAST, w.priority_order, w.name;`,
		routineID, includeSkipped,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return r.rows2workouts(rows)
}

// RestWorkout resolves the workout used for synthetic rest entries: a
// workout literally named "Rest", or the first workout under a routine
// named "Rest". Matching is case-insensitive.
func (r *Repo) RestWorkout(ctx context.Context) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.restworkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		workoutSelect+`
			JOIN endurance_routine er ON er.id = w.routine_id
			WHERE LOWER(w.name) = LOWER($1) OR LOWER(er.name) = LOWER($1)
			ORDER BY (LOWER(w.name) = LOWER($1)) DESC, w.priority_order, w.name
			LIMIT 1;`,
		RestWorkoutName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrWorkoutNotFound
	}
	return &workouts[0], nil
}

func (r *Repo) ListUnits(ctx context.Context) (_ []Unit, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.listunits")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, kind, mile_equiv_num, mile_equiv_den FROM endurance_unit ORDER BY name;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Kind, &u.MileEquivNum, &u.MileEquivDen); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		units = append(units, u)
	}
	return units, nil
}

func (r *Repo) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.listexercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name FROM endurance_exercise ORDER BY name;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

func (r *Repo) rows2workouts(rows pgx.Rows) ([]Workout, error) {
	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.Name, &w.RoutineID, &w.PriorityOrder, &w.Skip, &w.Difficulty,
			&w.GoalStrategy,
			&w.Unit.ID, &w.Unit.Name, &w.Unit.Kind, &w.Unit.MileEquivNum, &w.Unit.MileEquivDen,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}
