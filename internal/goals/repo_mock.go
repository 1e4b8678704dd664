package goals

import (
	"context"
	"time"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

var (
	_ samplesRepo         = (*samplesRepoMock)(nil)
	_ progressionsRepo    = (*progressionsRepoMock)(nil)
	_ strengthSamplesRepo = (*strengthSamplesRepoMock)(nil)
	_ strengthLadderRepo  = (*strengthLadderRepoMock)(nil)
)

type scopedSample struct {
	workoutID int
	routineID int
	sample    trainlog.Sample
}

type samplesRepoMock struct {
	// newest first, like the real repo
	all []scopedSample
}

func (r *samplesRepoMock) add(workoutID, routineID int, sample trainlog.Sample) {
	r.all = append([]scopedSample{{workoutID: workoutID, routineID: routineID, sample: sample}}, r.all...)
}

func (r *samplesRepoMock) matching(params trainlog.SampleParams) []trainlog.Sample {
	var out []trainlog.Sample
	for _, s := range r.all {
		if params.WorkoutID != 0 && s.workoutID != params.WorkoutID {
			continue
		}
		if params.RoutineID != 0 && s.routineID != params.RoutineID {
			continue
		}
		if params.From != nil && s.sample.StartedAt.Before(*params.From) {
			continue
		}
		out = append(out, s.sample)
	}
	return out
}

func (r *samplesRepoMock) Samples(_ context.Context, params trainlog.SampleParams) ([]trainlog.Sample, error) {
	return r.matching(params), nil
}

func (r *samplesRepoMock) MostRecentSample(_ context.Context, params trainlog.SampleParams) (*trainlog.Sample, error) {
	params.From = nil
	matching := r.matching(params)
	if len(matching) == 0 {
		return nil, nil
	}
	return &matching[0], nil
}

type progressionsRepoMock struct {
	steps map[int][]plans.ProgressionStep
}

func newProgressionsRepoMock() *progressionsRepoMock {
	return &progressionsRepoMock{
		steps: make(map[int][]plans.ProgressionStep),
	}
}

func (r *progressionsRepoMock) setLadder(workoutID int, values ...float64) {
	steps := make([]plans.ProgressionStep, len(values))
	for i, v := range values {
		steps[i] = plans.ProgressionStep{ID: i + 1, WorkoutID: workoutID, Order: i + 1, Value: v}
	}
	r.steps[workoutID] = steps
}

func (r *progressionsRepoMock) OrderedProgressions(_ context.Context, workoutID int) ([]plans.ProgressionStep, error) {
	return r.steps[workoutID], nil
}

type strengthSamplesRepoMock struct {
	rateSamples map[int][]trainlog.Sample
	peakReps    map[int]*float64
	peakWeight  map[int]*float64
}

func newStrengthSamplesRepoMock() *strengthSamplesRepoMock {
	return &strengthSamplesRepoMock{
		rateSamples: make(map[int][]trainlog.Sample),
		peakReps:    make(map[int]*float64),
		peakWeight:  make(map[int]*float64),
	}
}

func (r *strengthSamplesRepoMock) RateSamples(_ context.Context, routineID int, since *time.Time) ([]trainlog.Sample, error) {
	var out []trainlog.Sample
	for _, s := range r.rateSamples[routineID] {
		if since != nil && s.StartedAt.Before(*since) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *strengthSamplesRepoMock) PeakReps(_ context.Context, routineID int, _ *time.Time) (*float64, error) {
	return r.peakReps[routineID], nil
}

func (r *strengthSamplesRepoMock) PeakWeight(_ context.Context, routineID int, _ *time.Time) (*float64, error) {
	return r.peakWeight[routineID], nil
}

type strengthLadderRepoMock struct {
	routines map[int]plans.StrengthRoutine
	steps    map[string][]plans.StrengthProgressionStep
}

func newStrengthLadderRepoMock() *strengthLadderRepoMock {
	return &strengthLadderRepoMock{
		routines: make(map[int]plans.StrengthRoutine),
		steps:    make(map[string][]plans.StrengthProgressionStep),
	}
}

func (r *strengthLadderRepoMock) GetRoutine(_ context.Context, id int) (*plans.StrengthRoutine, error) {
	routine, ok := r.routines[id]
	if !ok {
		return nil, plans.ErrRoutineNotFound
	}
	return &routine, nil
}

func (r *strengthLadderRepoMock) OrderedProgressions(_ context.Context, routineName string) ([]plans.StrengthProgressionStep, error) {
	return r.steps[routineName], nil
}
