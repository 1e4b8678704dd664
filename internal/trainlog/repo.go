package trainlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the
// normalization helpers can run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SampleParams filters rate samples for the goal engine. A zero WorkoutID
// or RoutineID leaves that axis unrestricted; a nil From means no window.
type SampleParams struct {
	WorkoutID int
	RoutineID int
	From      *time.Time
}

// LogStub is the slim view of a log the backfill sweep works with.
type LogStub struct {
	ID        int
	StartedAt time.Time
	WorkoutID int
	IsRest    bool
}

type Repo struct {
	db      *pgxpool.Pool
	metrics *metrics.Manager
}

func NewRepo(db *pgxpool.Pool, metricsManager *metrics.Manager) *Repo {
	return &Repo{
		db:      db,
		metrics: metricsManager,
	}
}

func (r *Repo) Create(ctx context.Context, log EnduranceLog) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.create")
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
			INSERT INTO endurance_log
				(started_at, workout_id, goal, total_completed, max_rate, avg_rate, minutes_elapsed)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		log.StartedAt, log.WorkoutID, log.Goal, log.TotalCompleted, log.MaxRate, log.AvgRate, log.MinutesElapsed,
	).Scan(&log.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("workout %d does not exist: %w", log.WorkoutID, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("log.id", log.ID))

	if len(log.Intervals) > 0 {
		if err = insertIntervals(ctx, tx, log.ID, log.Intervals); err != nil {
			return nil, err
		}
		if err = r.renormalize(ctx, tx, log.ID); err != nil {
			return nil, err
		}
		var refreshed *EnduranceLog
		refreshed, err = r.get(ctx, tx, log.ID)
		if err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	return &log, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return r.get(ctx, r.db, id)
}

func (r *Repo) get(ctx context.Context, q querier, id int) (*EnduranceLog, error) {
	var log EnduranceLog
	err := q.QueryRow(
		ctx,
		`
			SELECT id, started_at, workout_id, goal, total_completed, max_rate, avg_rate, minutes_elapsed
			FROM endurance_log
			WHERE id = $1;`,
		id,
	).Scan(
		&log.ID, &log.StartedAt, &log.WorkoutID,
		&log.Goal, &log.TotalCompleted, &log.MaxRate, &log.AvgRate, &log.MinutesElapsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	intervals, err := loadIntervals(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("load intervals: %w", err)
	}
	log.Intervals = intervals
	return &log, nil
}

func (r *Repo) Update(ctx context.Context, log *EnduranceLog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", log.ID))

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE endurance_log
			SET started_at = $1, workout_id = $2, goal = $3, total_completed = $4,
				max_rate = $5, avg_rate = $6, minutes_elapsed = $7
			WHERE id = $8;`,
		log.StartedAt, log.WorkoutID, log.Goal, log.TotalCompleted,
		log.MaxRate, log.AvgRate, log.MinutesElapsed, log.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	// intervals go with the log via FK cascade
	tag, err := r.db.Exec(ctx, `DELETE FROM endurance_log WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// DeleteByIDs removes the given logs and returns how many were deleted.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.deletebyids")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("count", len(ids)))

	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM endurance_log WHERE id = ANY($1);`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// RecentLogs returns logs started at or after the given time, newest
// first, with their intervals attached.
func (r *Repo) RecentLogs(ctx context.Context, since time.Time) (_ []EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.recentlogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("since", since.String()))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, started_at, workout_id, goal, total_completed, max_rate, avg_rate, minutes_elapsed
			FROM endurance_log
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

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return logs, nil
	}

	logIDs := make([]int, 0, len(logs))
	byID := make(map[int]*EnduranceLog, len(logs))
	for i := range logs {
		logIDs = append(logIDs, logs[i].ID)
		byID[logs[i].ID] = &logs[i]
	}

	intervalRows, err := r.db.Query(
		ctx,
		intervalSelect+`WHERE log_id = ANY($1) ORDER BY at, id;`,
		logIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer intervalRows.Close()

	if err := intervalRows.Err(); err != nil {
		return nil, fmt.Errorf("interval rows: %w", err)
	}

	intervals, err := rows2intervals(intervalRows)
	if err != nil {
		return nil, err
	}
	for _, iv := range intervals {
		if log, ok := byID[iv.LogID]; ok {
			log.Intervals = append(log.Intervals, iv)
		}
	}

	return logs, nil
}

// LastLog returns the newest log, or ErrLogNotFound when there are none.
func (r *Repo) LastLog(ctx context.Context) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.lastlog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var log EnduranceLog
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, started_at, workout_id, goal, total_completed, max_rate, avg_rate, minutes_elapsed
			FROM endurance_log
			ORDER BY started_at DESC
			LIMIT 1;`,
	).Scan(
		&log.ID, &log.StartedAt, &log.WorkoutID,
		&log.Goal, &log.TotalCompleted, &log.MaxRate, &log.AvgRate, &log.MinutesElapsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// LastLogForWorkout returns the newest log of a workout, optionally
// excluding one log ID (pass 0 to exclude nothing).
func (r *Repo) LastLogForWorkout(ctx context.Context, workoutID, excludeLogID int) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.lastlogforworkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var log EnduranceLog
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, started_at, workout_id, goal, total_completed, max_rate, avg_rate, minutes_elapsed
			FROM endurance_log
			WHERE workout_id = $1 AND id != $2
			ORDER BY started_at DESC
			LIMIT 1;`,
		workoutID, excludeLogID,
	).Scan(
		&log.ID, &log.StartedAt, &log.WorkoutID,
		&log.Goal, &log.TotalCompleted, &log.MaxRate, &log.AvgRate, &log.MinutesElapsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	intervals, err := loadIntervals(ctx, r.db, log.ID)
	if err != nil {
		return nil, fmt.Errorf("load intervals: %w", err)
	}
	log.Intervals = intervals
	return &log, nil
}

// RecentRoutineIDs returns the routine IDs of the last N logs,
// oldest to newest.
func (r *Repo) RecentRoutineIDs(ctx context.Context, limit int) (_ []int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.recentroutineids")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT w.routine_id
			FROM endurance_log l
			JOIN endurance_workout w ON w.id = l.workout_id
			ORDER BY l.started_at DESC
			LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ids, err := rows2ids(rows)
	if err != nil {
		return nil, err
	}
	reverse(ids)
	return ids, nil
}

// RecentWorkoutIDs returns the workout IDs of the routine's last N logs,
// oldest to newest.
func (r *Repo) RecentWorkoutIDs(ctx context.Context, routineID, limit int) (_ []int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.recentworkoutids")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT l.workout_id
			FROM endurance_log l
			JOIN endurance_workout w ON w.id = l.workout_id
			WHERE w.routine_id = $1
			ORDER BY l.started_at DESC
			LIMIT $2;`,
		routineID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ids, err := rows2ids(rows)
	if err != nil {
		return nil, err
	}
	reverse(ids)
	return ids, nil
}

// LastAchieved returns the achieved total of the most recent log where the
// goal was met, restricted to the window when since is non-nil. Returns nil
// without error when no such log exists.
func (r *Repo) LastAchieved(ctx context.Context, workoutID int, since *time.Time) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.lastachieved")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var achieved *float64
	err = r.db.QueryRow(
		ctx,
		`
			SELECT total_completed
			FROM endurance_log
			WHERE workout_id = $1
			AND goal IS NOT NULL
			AND total_completed >= goal
			AND ($2::timestamptz IS NULL OR started_at >= $2)
			ORDER BY started_at DESC
			LIMIT 1;`,
		workoutID, since,
	).Scan(&achieved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return achieved, nil
}

// MaxCompletedEver returns the highest achieved total ever logged for the
// workout, ignoring any window. Returns nil without error when no log has
// a goal and total.
func (r *Repo) MaxCompletedEver(ctx context.Context, workoutID int) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.maxcompletedever")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var maxCompleted *float64
	err = r.db.QueryRow(
		ctx,
		`
			SELECT MAX(total_completed)
			FROM endurance_log
			WHERE workout_id = $1 AND goal IS NOT NULL;`,
		workoutID,
	).Scan(&maxCompleted)
	if err != nil {
		return nil, err
	}
	return maxCompleted, nil
}

// AchievedNewestFirst returns the achieved totals of logs where the goal
// was met, newest first, restricted to the window when since is non-nil.
func (r *Repo) AchievedNewestFirst(ctx context.Context, workoutID int, since *time.Time) (_ []float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.achievednewestfirst")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT total_completed
			FROM endurance_log
			WHERE workout_id = $1
			AND goal IS NOT NULL
			AND total_completed >= goal
			AND ($2::timestamptz IS NULL OR started_at >= $2)
			ORDER BY started_at DESC;`,
		workoutID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var achieved []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		achieved = append(achieved, v)
	}
	return achieved, nil
}

// Samples returns rate samples matching the params, newest first.
func (r *Repo) Samples(ctx context.Context, params SampleParams) (_ []Sample, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.samples")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", params.WorkoutID))
	span.SetAttributes(attribute.Int("routine.id", params.RoutineID))

	rows, err := r.db.Query(
		ctx,
		sampleSelect+`
			AND ($3::timestamptz IS NULL OR l.started_at >= $3)
			ORDER BY l.started_at DESC;`,
		params.WorkoutID, params.RoutineID, params.From,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2samples(rows)
}

// MostRecentSample returns the single newest sample in scope regardless of
// any window, or nil without error when the scope has no history at all.
func (r *Repo) MostRecentSample(ctx context.Context, params SampleParams) (_ *Sample, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.mostrecentsample")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", params.WorkoutID))
	span.SetAttributes(attribute.Int("routine.id", params.RoutineID))

	rows, err := r.db.Query(
		ctx,
		sampleSelect+`
			ORDER BY l.started_at DESC
			LIMIT 1;`,
		params.WorkoutID, params.RoutineID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	samples, err := rows2samples(rows)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}
	return &samples[0], nil
}

const sampleSelect = `
	SELECT l.started_at, l.total_completed, l.max_rate, l.avg_rate
	FROM endurance_log l
	JOIN endurance_workout w ON w.id = l.workout_id
	WHERE ($1::int = 0 OR l.workout_id = $1)
	AND ($2::int = 0 OR w.routine_id = $2)
	AND l.max_rate IS NOT NULL
	`

// ListStubsAsc returns all logs oldest first as slim stubs, flagging the
// synthetic rest entries, for the backfill sweep.
func (r *Repo) ListStubsAsc(ctx context.Context) (_ []LogStub, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.liststubsasc")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT l.id, l.started_at, l.workout_id,
				(LOWER(w.name) = LOWER($1) OR LOWER(er.name) = LOWER($1)) AS is_rest
			FROM endurance_log l
			JOIN endurance_workout w ON w.id = l.workout_id
			JOIN endurance_routine er ON er.id = w.routine_id
			ORDER BY l.started_at, l.id;`,
		plans.RestWorkoutName,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var stubs []LogStub
	for rows.Next() {
		var s LogStub
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.WorkoutID, &s.IsRest); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		stubs = append(stubs, s)
	}
	return stubs, nil
}

// CreateRest inserts a synthetic rest entry: a bare log with no goal and
// no aggregates.
func (r *Repo) CreateRest(ctx context.Context, workoutID int, at time.Time) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.createrest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.String("at", at.String()))

	log := EnduranceLog{
		StartedAt: at,
		WorkoutID: workoutID,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO endurance_log (started_at, workout_id) VALUES ($1, $2) RETURNING id;`,
		at, workoutID,
	).Scan(&log.ID)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// AddIntervals bulk-inserts intervals for a log, renormalizes the
// cumulative markers and recomputes the log's aggregates, all in one
// transaction, then returns the refreshed log.
func (r *Repo) AddIntervals(ctx context.Context, logID int, intervals []Interval) (_ *EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.addintervals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("count", len(intervals)))

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

	if err = insertIntervals(ctx, tx, logID, intervals); err != nil {
		return nil, err
	}
	if err = r.renormalize(ctx, tx, logID); err != nil {
		return nil, err
	}

	var refreshed *EnduranceLog
	refreshed, err = r.get(ctx, tx, logID)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

// UpdateInterval rewrites one interval row and recomputes the parent log's
// aggregates in the same transaction.
func (r *Repo) UpdateInterval(ctx context.Context, logID int, interval Interval) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.updateinterval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("interval.id", interval.ID))

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
			UPDATE endurance_log_interval
			SET at = $1, exercise_id = $2, minutes = $3, seconds = $4, miles = $5,
				rate = $6, machine_minutes = $7, machine_seconds = $8
			WHERE id = $9 AND log_id = $10;`,
		interval.At, interval.ExerciseID, interval.Minutes, interval.Seconds, interval.Miles,
		interval.Rate, interval.MachineMinutes, interval.MachineSeconds,
		interval.ID, logID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIntervalNotFound
	}

	return r.renormalize(ctx, tx, logID)
}

// DeleteInterval removes one interval row and recomputes the parent log's
// aggregates in the same transaction.
func (r *Repo) DeleteInterval(ctx context.Context, logID, intervalID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.deleteinterval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))
	span.SetAttributes(attribute.Int("interval.id", intervalID))

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
		`DELETE FROM endurance_log_interval WHERE id = $1 AND log_id = $2;`,
		intervalID, logID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIntervalNotFound
	}

	return r.renormalize(ctx, tx, logID)
}

// LastInterval returns the newest interval of a log, or ErrIntervalNotFound.
func (r *Repo) LastInterval(ctx context.Context, logID int) (_ *Interval, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.trainlog.lastinterval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("log.id", logID))

	rows, err := r.db.Query(
		ctx,
		intervalSelect+`WHERE log_id = $1 ORDER BY at DESC, id DESC LIMIT 1;`,
		logID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	intervals, err := rows2intervals(rows)
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return nil, ErrIntervalNotFound
	}
	return &intervals[0], nil
}

// renormalize reloads the log's intervals, reconciles cumulative markers,
// writes back the changed rows and recomputes the log aggregates. Must run
// inside the caller's transaction when paired with a detail write.
func (r *Repo) renormalize(ctx context.Context, q querier, logID int) error {
	defer func(start time.Time) {
		r.metrics.HistAggregateRecompute.Observe(time.Since(start).Seconds())
	}(time.Now())

	var unit plans.Unit
	err := q.QueryRow(
		ctx,
		`
			SELECT u.id, u.name, u.kind, u.mile_equiv_num, u.mile_equiv_den
			FROM endurance_log l
			JOIN endurance_workout w ON w.id = l.workout_id
			JOIN endurance_unit u ON u.id = w.unit_id
			WHERE l.id = $1;`,
		logID,
	).Scan(&unit.ID, &unit.Name, &unit.Kind, &unit.MileEquivNum, &unit.MileEquivDen)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLogNotFound
	}
	if err != nil {
		return fmt.Errorf("load unit: %w", err)
	}

	intervals, err := loadIntervals(ctx, q, logID)
	if err != nil {
		return fmt.Errorf("load intervals: %w", err)
	}

	NormalizeCumulative(intervals)

	for _, iv := range intervals {
		if _, err := q.Exec(
			ctx,
			`
				UPDATE endurance_log_interval
				SET minutes = $1, seconds = $2, rate = $3, machine_minutes = $4, machine_seconds = $5
				WHERE id = $6;`,
			iv.Minutes, iv.Seconds, iv.Rate, iv.MachineMinutes, iv.MachineSeconds, iv.ID,
		); err != nil {
			return fmt.Errorf("update interval %d: %w", iv.ID, err)
		}
	}

	agg := ComputeAggregates(unit, intervals)
	if _, err := q.Exec(
		ctx,
		`
			UPDATE endurance_log
			SET total_completed = $1, max_rate = $2, avg_rate = $3, minutes_elapsed = $4
			WHERE id = $5;`,
		agg.TotalCompleted, agg.MaxRate, agg.AvgRate, agg.MinutesElapsed, logID,
	); err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}

	return nil
}

const intervalSelect = `
	SELECT id, log_id, at, exercise_id, minutes, seconds, miles, rate, machine_minutes, machine_seconds
	FROM endurance_log_interval
	`

func insertIntervals(ctx context.Context, q querier, logID int, intervals []Interval) error {
	for _, iv := range intervals {
		if _, err := q.Exec(
			ctx,
			`
				INSERT INTO endurance_log_interval
					(log_id, at, exercise_id, minutes, seconds, miles, rate, machine_minutes, machine_seconds)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			logID, iv.At, iv.ExerciseID, iv.Minutes, iv.Seconds, iv.Miles, iv.Rate,
			iv.MachineMinutes, iv.MachineSeconds,
		); err != nil {
			return fmt.Errorf("insert interval: %w", err)
		}
	}
	return nil
}

func loadIntervals(ctx context.Context, q querier, logID int) ([]Interval, error) {
	rows, err := q.Query(
		ctx,
		intervalSelect+`WHERE log_id = $1 ORDER BY at, id;`,
		logID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2intervals(rows)
}

func rows2logs(rows pgx.Rows) ([]EnduranceLog, error) {
	var logs []EnduranceLog
	for rows.Next() {
		var log EnduranceLog
		if err := rows.Scan(
			&log.ID, &log.StartedAt, &log.WorkoutID,
			&log.Goal, &log.TotalCompleted, &log.MaxRate, &log.AvgRate, &log.MinutesElapsed,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func rows2intervals(rows pgx.Rows) ([]Interval, error) {
	var intervals []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(
			&iv.ID, &iv.LogID, &iv.At, &iv.ExerciseID,
			&iv.Minutes, &iv.Seconds, &iv.Miles, &iv.Rate,
			&iv.MachineMinutes, &iv.MachineSeconds,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

func rows2samples(rows pgx.Rows) ([]Sample, error) {
	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.StartedAt, &s.Achieved, &s.MaxRate, &s.AvgRate); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func rows2ids(rows pgx.Rows) ([]int, error) {
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func reverse(ids []int) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
