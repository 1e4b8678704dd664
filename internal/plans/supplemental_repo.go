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

type SupplementalRepo struct {
	db *pgxpool.Pool
}

func NewSupplementalRepo(db *pgxpool.Pool) *SupplementalRepo {
	return &SupplementalRepo{
		db: db,
	}
}

func (r *SupplementalRepo) GetRoutine(ctx context.Context, id int) (_ *SupplementalRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.supplementalplans.getroutine")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var routine SupplementalRoutine
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, unit FROM supplemental_routine WHERE id = $1;`,
		id,
	).Scan(&routine.ID, &routine.Name, &routine.Unit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

// RoutinesOrderedByLastDone returns the program's supplemental routines
// ordered by their most recent session, newest first, never-done routines
// last, ties by name. The least recently done routine is the final element.
func (r *SupplementalRepo) RoutinesOrderedByLastDone(ctx context.Context, programID int) (_ []SupplementalRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.supplementalplans.routinesbylastdone")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT sr.id, sr.name, sr.unit
			FROM supplemental_routine sr
			JOIN supplemental_plan sp ON sp.routine_id = sr.id AND sp.program_id = $1
			LEFT JOIN LATERAL (
				SELECT l.started_at
				FROM supplemental_log l
				WHERE l.routine_id = sr.id
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

	var routines []SupplementalRoutine
	for rows.Next() {
		var routine SupplementalRoutine
		if err := rows.Scan(&routine.ID, &routine.Name, &routine.Unit); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		routines = append(routines, routine)
	}
	return routines, nil
}
