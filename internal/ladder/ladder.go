package ladder

import (
	"context"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/pkg"

	"go.opentelemetry.io/otel/attribute"
)

type progressionsRepo interface {
	OrderedProgressions(ctx context.Context, workoutID int) ([]plans.ProgressionStep, error)
}

type achievementsRepo interface {
	LastAchieved(ctx context.Context, workoutID int, since *time.Time) (*float64, error)
	MaxCompletedEver(ctx context.Context, workoutID int) (*float64, error)
	AchievedNewestFirst(ctx context.Context, workoutID int, since *time.Time) ([]float64, error)
}

// Service walks a workout's progression ladder. Duplicate bands (contiguous
// runs of equal values) mean "repeat this level N times"; the service tracks
// how far into the current band the athlete has gotten and serves the next
// rung accordingly.
type Service struct {
	progressions progressionsRepo
	achievements achievementsRepo
	cfg          config.Training
	now          func() time.Time
}

func NewService(progressionsRepo progressionsRepo, achievementsRepo achievementsRepo, cfg config.Training) *Service {
	return &Service{
		progressions: progressionsRepo,
		achievements: achievementsRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// NextStep returns the progression step the athlete should target next, or
// nil when the workout has no ladder configured.
func (s *Service) NextStep(ctx context.Context, workoutID int) (_ *plans.ProgressionStep, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ladder.nextstep")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	steps, err := s.progressions.OrderedProgressions(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("ordered progressions: %w", err)
	}
	if len(steps) == 0 {
		return nil, nil
	}

	since := s.now().Add(-time.Duration(s.cfg.ProgressionLookbackWeeks) * 7 * 24 * time.Hour)

	lastAchieved, err := s.achievements.LastAchieved(ctx, workoutID, &since)
	if err != nil {
		return nil, fmt.Errorf("last achieved: %w", err)
	}
	if lastAchieved == nil {
		// stale history: fall back to the best value ever logged
		lastAchieved, err = s.achievements.MaxCompletedEver(ctx, workoutID)
		if err != nil {
			return nil, fmt.Errorf("max completed ever: %w", err)
		}
	}
	if lastAchieved == nil {
		return &steps[0], nil
	}

	values := make([]float64, len(steps))
	for i, step := range steps {
		values[i] = step.Value
	}

	start, end := bandAround(values, nearestIndex(values, *lastAchieved))

	consec, err := s.consecutiveAtValue(ctx, workoutID, values, values[start], since)
	if err != nil {
		return nil, err
	}

	if consec < end-start+1 {
		return &steps[start+consec], nil
	}
	if end < len(steps)-1 {
		return &steps[end+1], nil
	}

	// end of the ladder: rotate back to the band a few rungs down instead of
	// repeating the top value forever
	restartIdx := len(steps) - s.cfg.EndOfLadderOffset
	if restartIdx < 0 {
		restartIdx = 0
	}
	start, end = bandAround(values, restartIdx)

	consec, err = s.consecutiveAtValue(ctx, workoutID, values, values[start], since)
	if err != nil {
		return nil, err
	}
	offset := consec
	if offset > end-start {
		offset = end - start
	}
	return &steps[start+offset], nil
}

// consecutiveAtValue counts how many of the most recent achieved results snap
// to target, stopping at the first one that snaps elsewhere.
func (s *Service) consecutiveAtValue(ctx context.Context, workoutID int, values []float64, target float64, since time.Time) (int, error) {
	achieved, err := s.achievements.AchievedNewestFirst(ctx, workoutID, &since)
	if err != nil {
		return 0, fmt.Errorf("achieved newest first: %w", err)
	}

	count := 0
	for _, a := range achieved {
		if !pkg.ApproxEqual(pkg.NearestOf(a, values), target) {
			break
		}
		count++
	}
	return count, nil
}

// nearestIndex returns the index of the value closest to v. The first of
// equally close indexes wins, which combined with ascending ladders resolves
// ties toward the lower value.
func nearestIndex(values []float64, v float64) int {
	bestIdx := 0
	bestDiff := -1.0
	for i, candidate := range values {
		d := candidate - v
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			bestDiff = d
			bestIdx = i
		}
	}
	return bestIdx
}

// bandAround expands idx to the contiguous run of equal values containing it.
func bandAround(values []float64, idx int) (int, int) {
	start, end := idx, idx
	for start > 0 && pkg.ApproxEqual(values[start-1], values[idx]) {
		start--
	}
	for end < len(values)-1 && pkg.ApproxEqual(values[end+1], values[idx]) {
		end++
	}
	return start, end
}
