package trainlog

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

func (r *SupplementalRepo) Create(ctx context.Context, log SupplementalLog) (_ *SupplementalLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.supplementallog.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(
		ctx,
		`
			INSERT INTO supplemental_log (started_at, routine_id, goal, total_completed)
				VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		log.StartedAt, log.RoutineID, log.Goal, log.TotalCompleted,
	).Scan(&log.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("log.id", log.ID))

	for _, d := range log.Details {
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO supplemental_log_detail (log_id, at, unit_count) VALUES ($1, $2, $3);`,
			log.ID, d.At, d.UnitCount,
		); err != nil {
			return nil, fmt.Errorf("insert detail: %w", err)
		}
	}

	if len(log.Details) > 0 {
		if err = recomputeSupplemental(ctx, tx, log.ID); err != nil {
			return nil, err
		}
		var refreshed *SupplementalLog
		refreshed, err = r.get(ctx, tx, log.ID)
		if err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	return &log, nil
}

func (r *SupplementalRepo) Get(ctx context.Context, id int) (_ *SupplementalLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.supplementallog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return r.get(ctx, r.db, id)
}

func (r *SupplementalRepo) get(ctx context.Context, q querier, id int) (*SupplementalLog, error) {
	var log SupplementalLog
	err := q.QueryRow(
		ctx,
		`
			SELECT id, started_at, routine_id, goal, total_completed
			FROM supplemental_log
			WHERE id = $1;`,
		id,
	).Scan(&log.ID, &log.StartedAt, &log.RoutineID, &log.Goal, &log.TotalCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(
		ctx,
		`
			SELECT id, log_id, at, unit_count
			FROM supplemental_log_detail
			WHERE log_id = $1
			ORDER BY at, id;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query details: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("detail rows: %w", err)
	}

	for rows.Next() {
		var d SupplementalDetail
		if err := rows.Scan(&d.ID, &d.LogID, &d.At, &d.UnitCount); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		log.Details = append(log.Details, d)
	}
	return &log, nil
}

func (r *SupplementalRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.supplementallog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM supplemental_log WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// recomputeSupplemental rewrites total_completed as the sum of the log's
// detail unit counts. Full recompute, same contract as the other two.
func recomputeSupplemental(ctx context.Context, q querier, logID int) error {
	if _, err := q.Exec(
		ctx,
		`
			UPDATE supplemental_log
			SET total_completed = (
				SELECT SUM(unit_count) FROM supplemental_log_detail WHERE log_id = $1
			)
			WHERE id = $1;`,
		logID,
	); err != nil {
		return fmt.Errorf("update total: %w", err)
	}
	return nil
}
