package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
	"github.com/kgriffin/trainloop/pkg"

	"go.opentelemetry.io/otel/attribute"
)

type samplesRepo interface {
	Samples(ctx context.Context, params trainlog.SampleParams) ([]trainlog.Sample, error)
	MostRecentSample(ctx context.Context, params trainlog.SampleParams) (*trainlog.Sample, error)
}

type progressionsRepo interface {
	OrderedProgressions(ctx context.Context, workoutID int) ([]plans.ProgressionStep, error)
}

// RateGoals is a (peak, average) goal pair. The peak goal is always kept
// strictly above the average goal so the two stay visibly distinct.
type RateGoals struct {
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Engine computes rate goals from historical samples, per the workout's
// configured strategy.
type Engine struct {
	samples      samplesRepo
	progressions progressionsRepo
	cfg          config.Training
	now          func() time.Time
}

func NewEngine(samplesRepo samplesRepo, progressionsRepo progressionsRepo, cfg config.Training) *Engine {
	return &Engine{
		samples:      samplesRepo,
		progressions: progressionsRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// RateGoal computes the speed goal pair for a workout. currentTarget is the
// progression value the athlete is working toward, used only by the
// progression scope; nil disables the progression filter. A nil result with
// nil error means the scope has no history at all.
func (e *Engine) RateGoal(ctx context.Context, workout plans.Workout, strategy Strategy, currentTarget *float64) (_ *RateGoals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.rategoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	span.SetAttributes(attribute.String("strategy", strategy.String()))

	since := e.now().Add(-time.Duration(e.cfg.SpeedGoalWindowWeeks) * 7 * 24 * time.Hour)

	params := trainlog.SampleParams{From: &since}
	if strategy.Scope == ScopeRoutine {
		params.RoutineID = workout.RoutineID
	} else {
		params.WorkoutID = workout.ID
	}

	candidates, err := e.samples.Samples(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("samples: %w", err)
	}
	if len(candidates) == 0 {
		// never answer "no data" while any history exists in scope
		recent, err := e.samples.MostRecentSample(ctx, trainlog.SampleParams{
			WorkoutID: params.WorkoutID,
			RoutineID: params.RoutineID,
		})
		if err != nil {
			return nil, fmt.Errorf("most recent sample: %w", err)
		}
		if recent == nil {
			return nil, nil
		}
		candidates = []trainlog.Sample{*recent}
	}

	filtered := candidates
	if strategy.Scope == ScopeProgression && currentTarget != nil {
		filtered, err = e.filterToProgression(ctx, workout.ID, *currentTarget, candidates)
		if err != nil {
			return nil, err
		}
		if len(filtered) == 0 {
			// the rung was never logged: fall back to the newest sample in
			// scope instead of answering zero
			filtered = candidates[:1]
		}
	}

	best := pickBest(filtered, strategy.Criterion)
	if best == nil {
		return nil, nil
	}

	return e.roundedGoals(*best), nil
}

// filterToProgression keeps the samples whose achieved value snaps to the
// same progression rung as currentTarget.
func (e *Engine) filterToProgression(ctx context.Context, workoutID int, currentTarget float64, candidates []trainlog.Sample) ([]trainlog.Sample, error) {
	steps, err := e.progressions.OrderedProgressions(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("ordered progressions: %w", err)
	}
	if len(steps) == 0 {
		return candidates, nil
	}

	values := make([]float64, len(steps))
	for i, step := range steps {
		values[i] = step.Value
	}
	target := pkg.NearestOf(currentTarget, values)

	var filtered []trainlog.Sample
	for _, c := range candidates {
		if c.Achieved == nil {
			continue
		}
		if pkg.ApproxEqual(pkg.NearestOf(*c.Achieved, values), target) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// pickBest selects the candidate maximizing the criterion field. Samples
// with a missing criterion value are skipped.
func pickBest(candidates []trainlog.Sample, criterion Criterion) *trainlog.Sample {
	var best *trainlog.Sample
	var bestVal float64
	for i := range candidates {
		var v *float64
		if criterion == CriterionAvg {
			v = candidates[i].AvgRate
		} else {
			v = candidates[i].MaxRate
		}
		if v == nil {
			continue
		}
		if best == nil || *v > bestVal {
			best = &candidates[i]
			bestVal = *v
		}
	}
	return best
}

// roundedGoals rounds the winning sample's rates strictly upward and nudges
// the peak one extra step when the two land on the same value.
func (e *Engine) roundedGoals(best trainlog.Sample) *RateGoals {
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
	return goals
}
