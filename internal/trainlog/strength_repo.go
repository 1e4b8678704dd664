package trainlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *StrengthRepo) Create(ctx context.Context, log StrengthLog) (_ *StrengthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.create")
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
			INSERT INTO strength_log
				(started_at, routine_id, rep_goal, total_reps, max_reps, max_weight, minutes_elapsed)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		log.StartedAt, log.RoutineID, log.RepGoal, log.TotalReps, log.MaxReps, log.MaxWeight, log.MinutesElapsed,
	).Scan(&log.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("routine %d does not exist: %w", log.RoutineID, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("log.id", log.ID))

	if len(log.Sets) > 0 {
		if err = insertSets(ctx, tx, log.ID, log.Sets); err != nil {
			return nil, err
		}
		if err = recomputeStrength(ctx, tx, log.ID); err != nil {
			return nil, err
		}
		var refreshed *StrengthLog
		refreshed, err = r.get(ctx, tx, log.ID)
		if err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	return &log, nil
}

func (r *StrengthRepo) Get(ctx context.Context, id int) (_ *StrengthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return r.get(ctx, r.db, id)
}

func (r *StrengthRepo) get(ctx context.Context, q querier, id int) (*StrengthLog, error) {
	var log StrengthLog
	err := q.QueryRow(
		ctx,
		`
			SELECT id, started_at, routine_id, rep_goal, total_reps, max_reps, max_weight, minutes_elapsed
			FROM strength_log
			WHERE id = $1;`,
		id,
	).Scan(
		&log.ID, &log.StartedAt, &log.RoutineID,
		&log.RepGoal, &log.TotalReps, &log.MaxReps, &log.MaxWeight, &log.MinutesElapsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	sets, err := loadSets(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}
	log.Sets = sets
	return &log, nil
}

func (r *StrengthRepo) Update(ctx context.Context, log *StrengthLog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", log.ID))

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE strength_log
			SET started_at = $1, routine_id = $2, rep_goal = $3, total_reps = $4,
				max_reps = $5, max_weight = $6, minutes_elapsed = $7
			WHERE id = $8;`,
		log.StartedAt, log.RoutineID, log.RepGoal, log.TotalReps,
		log.MaxReps, log.MaxWeight, log.MinutesElapsed, log.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

func (r *StrengthRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM strength_log WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// RecentLogs returns strength logs started at or after the given time,
// newest first, with their sets attached.
func (r *StrengthRepo) RecentLogs(ctx context.Context, since time.Time) (_ []StrengthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.recentlogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("since", since.String()))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, started_at, routine_id, rep_goal, total_reps, max_reps, max_weight, minutes_elapsed
			FROM strength_log
			WHERE started_at >= $1
			ORDER BY started_at DESC;`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var logs []StrengthLog
	for rows.Next() {
		var log StrengthLog
		if err := rows.Scan(
			&log.ID, &log.StartedAt, &log.RoutineID,
			&log.RepGoal, &log.TotalReps, &log.MaxReps, &log.MaxWeight, &log.MinutesElapsed,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, log)
	}
	if len(logs) == 0 {
		return logs, nil
	}

	logIDs := make([]int, 0, len(logs))
	byID := make(map[int]*StrengthLog, len(logs))
	for i := range logs {
		logIDs = append(logIDs, logs[i].ID)
		byID[logs[i].ID] = &logs[i]
	}

	setRows, err := r.db.Query(
		ctx,
		setSelect+`WHERE log_id = ANY($1) ORDER BY at, id;`,
		logIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer setRows.Close()

	if err := setRows.Err(); err != nil {
		return nil, fmt.Errorf("set rows: %w", err)
	}

	sets, err := rows2sets(setRows)
	if err != nil {
		return nil, err
	}
	for _, s := range sets {
		if log, ok := byID[s.LogID]; ok {
			log.Sets = append(log.Sets, s)
		}
	}

	return logs, nil
}

// AddSets bulk-inserts sets for a log and recomputes its aggregates in one
// transaction, then returns the refreshed log.
func (r *StrengthRepo) AddSets(ctx context.Context, logID int, sets []SetDetail) (_ *StrengthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.addsets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("count", len(sets)))

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

	if err = insertSets(ctx, tx, logID, sets); err != nil {
		return nil, err
	}
	if err = recomputeStrength(ctx, tx, logID); err != nil {
		return nil, err
	}

	var refreshed *StrengthLog
	refreshed, err = r.get(ctx, tx, logID)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

// UpdateSet rewrites one set row and recomputes the parent log's
// aggregates in the same transaction.
func (r *StrengthRepo) UpdateSet(ctx context.Context, logID int, set SetDetail) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.updateset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("set.id", set.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
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

	var tag pgconn.CommandTag
	tag, err = tx.Exec(
		ctx,
		`
			UPDATE strength_log_set
			SET at = $1, exercise_id = $2, reps = $3, weight = $4
			WHERE id = $5 AND log_id = $6;`,
		set.At, set.ExerciseID, set.Reps, set.Weight, set.ID, logID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return recomputeStrength(ctx, tx, logID)
}

// DeleteSet removes one set row and recomputes the parent log's aggregates
// in the same transaction.
func (r *StrengthRepo) DeleteSet(ctx context.Context, logID, setID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.deleteset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("set.id", setID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
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

	var tag pgconn.CommandTag
	tag, err = tx.Exec(
		ctx,
		`DELETE FROM strength_log_set WHERE id = $1 AND log_id = $2;`,
		setID, logID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return recomputeStrength(ctx, tx, logID)
}

// LastSet returns the newest set of a log, falling back to nothing: the
// handler decides whether to look at a previous log.
func (r *StrengthRepo) LastSet(ctx context.Context, logID int) (_ *SetDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.lastset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))

	rows, err := r.db.Query(
		ctx,
		setSelect+`WHERE log_id = $1 ORDER BY at DESC, id DESC LIMIT 1;`,
		logID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sets, err := rows2sets(rows)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrSetNotFound
	}
	return &sets[0], nil
}

// LastLogForRoutine returns the newest log of a routine, optionally
// excluding one log ID (pass 0 to exclude nothing).
func (r *StrengthRepo) LastLogForRoutine(ctx context.Context, routineID, excludeLogID int) (_ *StrengthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.lastlogforroutine")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	var id int
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id FROM strength_log
			WHERE routine_id = $1 AND id != $2
			ORDER BY started_at DESC
			LIMIT 1;`,
		routineID, excludeLogID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.get(ctx, r.db, id)
}

// LastCompletedVolume returns the total reps of the most recent log where
// the rep goal was met, or nil without error when there is none.
func (r *StrengthRepo) LastCompletedVolume(ctx context.Context, routineID int) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.lastcompletedvolume")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	var volume *float64
	err = r.db.QueryRow(
		ctx,
		`
			SELECT total_reps
			FROM strength_log
			WHERE routine_id = $1
			AND rep_goal IS NOT NULL
			AND total_reps >= rep_goal
			ORDER BY started_at DESC
			LIMIT 1;`,
		routineID,
	).Scan(&volume)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return volume, nil
}

// MaxVolumeEver returns the highest total reps ever logged for the routine
// among logs that carried a rep goal, or nil without error.
func (r *StrengthRepo) MaxVolumeEver(ctx context.Context, routineID int) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.maxvolumeever")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	var volume *float64
	err = r.db.QueryRow(
		ctx,
		`
			SELECT MAX(total_reps)
			FROM strength_log
			WHERE routine_id = $1 AND rep_goal IS NOT NULL;`,
		routineID,
	).Scan(&volume)
	if err != nil {
		return nil, err
	}
	return volume, nil
}

// RateSamples returns per-session reps-per-hour samples for a routine,
// newest first, restricted to the window when since is non-nil. Sessions
// without elapsed time cannot produce a rate and are skipped.
func (r *StrengthRepo) RateSamples(ctx context.Context, routineID int, since *time.Time) (_ []Sample, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.strengthlog.ratesamples")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT started_at, total_reps, total_reps / (minutes_elapsed / 60.0) AS rph
			FROM strength_log
			WHERE routine_id = $1
			AND total_reps IS NOT NULL
			AND minutes_elapsed IS NOT NULL AND minutes_elapsed > 0
			AND ($2::timestamptz IS NULL OR started_at >= $2)
			ORDER BY started_at DESC;`,
		routineID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var samples []Sample
	for rows.Next() {
		var s Sample
		var rph float64
		if err := rows.Scan(&s.StartedAt, &s.Achieved, &rph); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		// a session log has no per-set rate history, its reps-per-hour
		// serves as both peak and average
		s.MaxRate = &rph
		s.AvgRate = &rph
		samples = append(samples, s)
	}
	return samples, nil
}

// PeakReps returns the highest max_reps among the routine's logs in the
// window, falling back to the most recent log's max_reps, or nil without
// error when the routine has no rep history at all.
func (r *StrengthRepo) PeakReps(ctx context.Context, routineID int, since *time.Time) (_ *float64, err error) {
	return r.peakField(ctx, routineID, since, "max_reps", "repo.strengthlog.peakreps")
}

// PeakWeight is PeakReps for max_weight.
func (r *StrengthRepo) PeakWeight(ctx context.Context, routineID int, since *time.Time) (_ *float64, err error) {
	return r.peakField(ctx, routineID, since, "max_weight", "repo.strengthlog.peakweight")
}

func (r *StrengthRepo) peakField(ctx context.Context, routineID int, since *time.Time, field, spanName string) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	var peak *float64
	err = r.db.QueryRow(
		ctx,
		`
			SELECT MAX(`+field+`)
			FROM strength_log
			WHERE routine_id = $1
			AND ($2::timestamptz IS NULL OR started_at >= $2);`,
		routineID, since,
	).Scan(&peak)
	if err != nil {
		return nil, err
	}
	if peak != nil {
		return peak, nil
	}

	// window empty, fall back to the most recent value ever
	err = r.db.QueryRow(
		ctx,
		`
			SELECT `+field+`
			FROM strength_log
			WHERE routine_id = $1 AND `+field+` IS NOT NULL
			ORDER BY started_at DESC
			LIMIT 1;`,
		routineID,
	).Scan(&peak)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return peak, nil
}

func recomputeStrength(ctx context.Context, q querier, logID int) error {
	sets, err := loadSets(ctx, q, logID)
	if err != nil {
		return fmt.Errorf("load sets: %w", err)
	}

	agg := ComputeStrengthAggregates(sets)
	if _, err := q.Exec(
		ctx,
		`
			UPDATE strength_log
			SET total_reps = $1, max_reps = $2, max_weight = $3, minutes_elapsed = $4
			WHERE id = $5;`,
		agg.TotalReps, agg.MaxReps, agg.MaxWeight, agg.MinutesElapsed, logID,
	); err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}
	return nil
}

const setSelect = `
	SELECT id, log_id, at, exercise_id, reps, weight
	FROM strength_log_set
	`

func insertSets(ctx context.Context, q querier, logID int, sets []SetDetail) error {
	for _, s := range sets {
		if _, err := q.Exec(
			ctx,
			`
				INSERT INTO strength_log_set (log_id, at, exercise_id, reps, weight)
					VALUES ($1, $2, $3, $4, $5);`,
			logID, s.At, s.ExerciseID, s.Reps, s.Weight,
		); err != nil {
			return fmt.Errorf("insert set: %w", err)
		}
	}
	return nil
}

func loadSets(ctx context.Context, q querier, logID int) ([]SetDetail, error) {
	rows, err := q.Query(
		ctx,
		setSelect+`WHERE log_id = $1 ORDER BY at, id;`,
		logID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2sets(rows)
}

func rows2sets(rows pgx.Rows) ([]SetDetail, error) {
	var sets []SetDetail
	for rows.Next() {
		var s SetDetail
		if err := rows.Scan(&s.ID, &s.LogID, &s.At, &s.ExerciseID, &s.Reps, &s.Weight); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, nil
}
