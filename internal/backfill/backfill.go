package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

type restWorkoutRepo interface {
	RestWorkout(ctx context.Context) (*plans.Workout, error)
}

type logsRepo interface {
	LastLog(ctx context.Context) (*trainlog.EnduranceLog, error)
	ListStubsAsc(ctx context.Context) ([]trainlog.LogStub, error)
	CreateRest(ctx context.Context, workoutID int, at time.Time) (*trainlog.EnduranceLog, error)
	DeleteByIDs(ctx context.Context, ids []int) (int, error)
}

// Service inserts synthetic rest entries into gaps in the session history,
// so that the predictor and the ladder see an unbroken day sequence. The
// debounce state is process wide: one instance per process, constructed at
// wiring time.
type Service struct {
	plans   restWorkoutRepo
	logs    logsRepo
	cfg     config.Training
	metrics *metrics.Manager

	loc *time.Location
	now func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func NewService(plansRepo restWorkoutRepo, logsRepo logsRepo, cfg config.Training, metricsManager *metrics.Manager) (*Service, error) {
	loc, err := time.LoadLocation(cfg.BackfillTimezone)
	if err != nil {
		return nil, fmt.Errorf("load backfill timezone: %w", err)
	}
	return &Service{
		plans:   plansRepo,
		logs:    logsRepo,
		cfg:     cfg,
		metrics: metricsManager,
		loc:     loc,
		now:     time.Now,
	}, nil
}

// EnsureBackfilled fills the trailing gap between the newest log and now,
// debounced so request bursts do not redo the same work. The lock is held
// across the debounce check, the run, and the timestamp update.
func (s *Service) EnsureBackfilled(ctx context.Context) (_ []trainlog.EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backfill.ensure")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	debounce := time.Duration(s.cfg.BackfillDebounceMinutes) * time.Minute
	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < debounce {
		span.SetAttributes(attribute.Bool("debounced", true))
		return nil, nil
	}

	created, err := s.fillTrailingGap(ctx, now)
	if err != nil {
		return nil, err
	}
	s.lastRun = now

	span.SetAttributes(attribute.Int("created", len(created)))
	return created, nil
}

// fillTrailingGap adds 24-hour-spaced rest entries after the newest log
// until the remaining gap to now has settled below the threshold. A gap
// below the trigger is left alone.
func (s *Service) fillTrailingGap(ctx context.Context, now time.Time) ([]trainlog.EnduranceLog, error) {
	lastLog, err := s.logs.LastLog(ctx)
	if err != nil {
		if errors.Is(err, trainlog.ErrLogNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("last log: %w", err)
	}

	trigger := time.Duration(s.cfg.TrailingGapHours) * time.Hour
	if now.Sub(lastLog.StartedAt) <= trigger {
		return nil, nil
	}

	restWorkout, err := s.plans.RestWorkout(ctx)
	if err != nil {
		if errors.Is(err, plans.ErrWorkoutNotFound) {
			log.Warnf("backfill: no rest workout configured, trailing gap left open")
			return nil, nil
		}
		return nil, fmt.Errorf("rest workout: %w", err)
	}

	settled := time.Duration(s.cfg.SettledGapHours) * time.Hour
	spacing := time.Duration(s.cfg.RestSpacingHours) * time.Hour

	var created []trainlog.EnduranceLog
	next := lastLog.StartedAt
	for now.Sub(next) > settled {
		next = next.Add(spacing)
		restLog, err := s.createRestWithRetry(ctx, restWorkout.ID, next)
		if err != nil {
			return created, err
		}
		created = append(created, *restLog)
	}

	if len(created) > 0 {
		s.metrics.CounterRestDaysBackfilled.Add(float64(len(created)))
		log.Debugf("backfill: created %d trailing rest entries", len(created))
	}
	return created, nil
}

// BackfillAllGaps sweeps the whole history and inserts one rest entry per
// missing calendar day strictly between two logged days. Days that already
// have activity, of any kind, are left alone.
func (s *Service) BackfillAllGaps(ctx context.Context) (_ []trainlog.EnduranceLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backfill.allgaps")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stubs, err := s.logs.ListStubsAsc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if len(stubs) < 2 {
		return nil, nil
	}

	restWorkout, err := s.plans.RestWorkout(ctx)
	if err != nil {
		if errors.Is(err, plans.ErrWorkoutNotFound) {
			log.Warnf("backfill: no rest workout configured, gap sweep skipped")
			return nil, nil
		}
		return nil, fmt.Errorf("rest workout: %w", err)
	}

	loggedDays := make(map[string]struct{}, len(stubs))
	for _, stub := range stubs {
		loggedDays[s.dayKey(stub.StartedAt)] = struct{}{}
	}

	var created []trainlog.EnduranceLog
	for i := 1; i < len(stubs); i++ {
		prev, curr := stubs[i-1], stubs[i]

		prevDay := s.startOfDay(prev.StartedAt)
		currDay := s.startOfDay(curr.StartedAt)

		for day := prevDay.AddDate(0, 0, 1); day.Before(currDay); day = day.AddDate(0, 0, 1) {
			if _, logged := loggedDays[day.Format(time.DateOnly)]; logged {
				continue
			}
			// midpoint between the neighbors, clamped into the missing day
			at := s.clampIntoDay(midpoint(prev.StartedAt, curr.StartedAt), day)
			restLog, err := s.createRestWithRetry(ctx, restWorkout.ID, at)
			if err != nil {
				return created, err
			}
			created = append(created, *restLog)
			loggedDays[day.Format(time.DateOnly)] = struct{}{}
		}
	}

	if len(created) > 0 {
		s.metrics.CounterRestDaysBackfilled.Add(float64(len(created)))
	}
	span.SetAttributes(attribute.Int("created", len(created)))
	return created, nil
}

// CleanupRestConflicts deletes synthetic rest entries on any calendar day
// that also has real activity, where the backfill and later real logging
// have collided.
func (s *Service) CleanupRestConflicts(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backfill.cleanup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stubs, err := s.logs.ListStubsAsc(ctx)
	if err != nil {
		return 0, fmt.Errorf("list logs: %w", err)
	}

	realDays := make(map[string]struct{})
	for _, stub := range stubs {
		if !stub.IsRest {
			realDays[s.dayKey(stub.StartedAt)] = struct{}{}
		}
	}

	var conflicting []int
	for _, stub := range stubs {
		if !stub.IsRest {
			continue
		}
		if _, hasReal := realDays[s.dayKey(stub.StartedAt)]; hasReal {
			conflicting = append(conflicting, stub.ID)
		}
	}
	if len(conflicting) == 0 {
		return 0, nil
	}

	deleted, err := s.logs.DeleteByIDs(ctx, conflicting)
	if err != nil {
		return 0, fmt.Errorf("delete rest conflicts: %w", err)
	}

	log.Debugf("backfill: removed %d rest entries shadowed by real activity", deleted)
	span.SetAttributes(attribute.Int("deleted", deleted))
	return deleted, nil
}

// createRestWithRetry retries on transient write contention instead of
// failing the caller.
func (s *Service) createRestWithRetry(ctx context.Context, workoutID int, at time.Time) (*trainlog.EnduranceLog, error) {
	var restLog *trainlog.EnduranceLog
	operation := func() error {
		var err error
		restLog, err = s.logs.CreateRest(ctx, workoutID, at)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("create rest entry: %w", err)
	}
	return restLog, nil
}

func (s *Service) dayKey(t time.Time) string {
	return t.In(s.loc).Format(time.DateOnly)
}

func (s *Service) startOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// clampIntoDay keeps the midpoint's time of day but pins the date to the
// missing day, so a wide gap's midpoint cannot land outside it.
func (s *Service) clampIntoDay(t, day time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(day.Year(), day.Month(), day.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, s.loc)
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}
