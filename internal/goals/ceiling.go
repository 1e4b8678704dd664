package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
	"github.com/kgriffin/trainloop/pkg"

	"go.opentelemetry.io/otel/attribute"
)

type strengthSamplesRepo interface {
	RateSamples(ctx context.Context, routineID int, since *time.Time) ([]trainlog.Sample, error)
	PeakReps(ctx context.Context, routineID int, since *time.Time) (*float64, error)
	PeakWeight(ctx context.Context, routineID int, since *time.Time) (*float64, error)
}

type strengthLadderRepo interface {
	GetRoutine(ctx context.Context, id int) (*plans.StrengthRoutine, error)
	OrderedProgressions(ctx context.Context, routineName string) ([]plans.StrengthProgressionStep, error)
}

// Ceiling is the max-effort target pair for a strength routine.
type Ceiling struct {
	Reps   float64 `json:"reps"`
	Weight float64 `json:"weight"`
}

// StrengthEngine computes reps-per-hour goals and max-effort ceilings for
// strength routines.
type StrengthEngine struct {
	samples strengthSamplesRepo
	ladder  strengthLadderRepo
	cfg     config.Training
	now     func() time.Time
}

func NewStrengthEngine(samplesRepo strengthSamplesRepo, ladderRepo strengthLadderRepo, cfg config.Training) *StrengthEngine {
	return &StrengthEngine{
		samples: samplesRepo,
		ladder:  ladderRepo,
		cfg:     cfg,
		now:     time.Now,
	}
}

// RateGoal computes the reps-per-hour goal pair for a routine. A nil result
// with nil error means the routine has no usable history.
func (e *StrengthEngine) RateGoal(ctx context.Context, routineID int) (_ *RateGoals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.strength.rategoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	since := e.now().Add(-time.Duration(e.cfg.RateGoalWindowWeeks) * 7 * 24 * time.Hour)

	candidates, err := e.samples.RateSamples(ctx, routineID, &since)
	if err != nil {
		return nil, fmt.Errorf("rate samples: %w", err)
	}
	if len(candidates) == 0 {
		all, err := e.samples.RateSamples(ctx, routineID, nil)
		if err != nil {
			return nil, fmt.Errorf("rate samples: %w", err)
		}
		if len(all) == 0 {
			return nil, nil
		}
		candidates = all[:1]
	}

	best := pickBest(candidates, CriterionMax)
	if best == nil {
		return nil, nil
	}

	step := e.cfg.GoalRoundStep
	goals := &RateGoals{}
	if best.MaxRate != nil {
		goals.Max = pkg.RoundUpToStep(*best.MaxRate, step)
	}
	if best.AvgRate != nil {
		goals.Avg = pkg.RoundUpToStep(*best.AvgRate, step)
	}
	if pkg.ApproxEqual(goals.Max, goals.Avg) {
		goals.Max += step
	}
	return goals, nil
}

// MaxCeiling computes the max-reps / max-weight targets for a routine. Reps
// walk the published progression ladder to the next higher level; weight has
// no published ladder and rounds up from history.
func (e *StrengthEngine) MaxCeiling(ctx context.Context, routineID int) (_ *Ceiling, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.strength.maxceiling")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	since := e.now().Add(-time.Duration(e.cfg.RateGoalWindowWeeks) * 7 * 24 * time.Hour)

	peakReps, err := e.samples.PeakReps(ctx, routineID, &since)
	if err != nil {
		return nil, fmt.Errorf("peak reps: %w", err)
	}
	peakWeight, err := e.samples.PeakWeight(ctx, routineID, &since)
	if err != nil {
		return nil, fmt.Errorf("peak weight: %w", err)
	}
	if peakReps == nil && peakWeight == nil {
		return nil, nil
	}

	ceiling := &Ceiling{}
	if peakWeight != nil {
		ceiling.Weight = pkg.RoundUpToStep(*peakWeight, e.cfg.GoalRoundStep)
	}
	if peakReps == nil {
		return ceiling, nil
	}

	levels, err := e.publishedRepLevels(ctx, routineID)
	if err != nil {
		return nil, err
	}
	ceiling.Reps = nextLevelAbove(levels, *peakReps, e.cfg.GoalRoundStep)
	return ceiling, nil
}

func (e *StrengthEngine) publishedRepLevels(ctx context.Context, routineID int) ([]float64, error) {
	routine, err := e.ladder.GetRoutine(ctx, routineID)
	if err != nil {
		if errors.Is(err, plans.ErrRoutineNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get routine: %w", err)
	}

	steps, err := e.ladder.OrderedProgressions(ctx, routine.Name)
	if err != nil {
		return nil, fmt.Errorf("ordered progressions: %w", err)
	}

	levels := make([]float64, len(steps))
	for i, step := range steps {
		levels[i] = step.CurrentMax
	}
	return levels, nil
}

// nextLevelAbove prefers the first published level strictly above peak; the
// top level stays the target once outgrown. Without a ladder the peak is
// rounded up from raw history.
func nextLevelAbove(levels []float64, peak, step float64) float64 {
	if len(levels) == 0 {
		return pkg.RoundUpToStep(peak, step)
	}
	for _, level := range levels {
		if level > peak && !pkg.ApproxEqual(level, peak) {
			return level
		}
	}
	return levels[len(levels)-1]
}
