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

type StrengthRepo struct {
	db *pgxpool.Pool
}

func NewStrengthRepo(db *pgxpool.Pool) *StrengthRepo {
	return &StrengthRepo{
		db: db,
	}
}

func (r *StrengthRepo) GetRoutine(ctx context.Context, id int) (_ *StrengthRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthplans.getroutine")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var routine StrengthRoutine
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, hundred_points_reps, hundred_points_weight FROM strength_routine WHERE id = $1;`,
		id,
	).Scan(&routine.ID, &routine.Name, &routine.HundredPointsReps, &routine.HundredPointsWeight)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

// RoutinesOrderedByLastCompleted returns the program's strength routines
// ordered by their most recent completed session (rep goal met), newest
// first, never-completed routines last, ties by name. The least recently
// completed routine is therefore the final element.
func (r *StrengthRepo) RoutinesOrderedByLastCompleted(ctx context.Context, programID int) (_ []StrengthRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthplans.routinesbylastcompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT sr.id, sr.name, sr.hundred_points_reps, sr.hundred_points_weight
			FROM strength_routine sr
			JOIN strength_plan sp ON sp.routine_id = sr.id AND sp.program_id = $1
			LEFT JOIN LATERAL (
				SELECT l.started_at
				FROM strength_log l
				WHERE l.routine_id = sr.id
				AND l.rep_goal IS NOT NULL
				AND l.total_reps >= l.rep_goal
				ORDER BY l.started_at DESC
				LIMIT 1
			) last ON TRUE
			ORDER BY last.started_at DESC NULLS LAST, sr.name;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var routines []StrengthRoutine
	for rows.Next() {
		var routine StrengthRoutine
		if err := rows.Scan(
			&routine.ID, &routine.Name, &routine.HundredPointsReps, &routine.HundredPointsWeight,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, nil
}

// OrderedProgressions returns the published progression table for a routine
// in progression order.
func (r *StrengthRepo) OrderedProgressions(ctx context.Context, routineName string) (_ []StrengthProgressionStep, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthplans.orderedprogressions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.name", routineName))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT progression_order, routine_name, current_max, training_set, daily_volume, weekly_volume
			FROM strength_progression
			WHERE routine_name = $1
			ORDER BY progression_order;`,
		routineName,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var steps []StrengthProgressionStep
	for rows.Next() {
		var s StrengthProgressionStep
		if err := rows.Scan(
			&s.Order, &s.RoutineName, &s.CurrentMax, &s.TrainingSet, &s.DailyVolume, &s.WeeklyVolume,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}
