package ladder

import (
	"context"
	"time"

	"github.com/kgriffin/trainloop/internal/plans"
)

var (
	_ progressionsRepo    = (*progressionsRepoMock)(nil)
	_ achievementsRepo    = (*achievementsRepoMock)(nil)
	_ strengthPlansRepo   = (*strengthPlansRepoMock)(nil)
	_ strengthVolumesRepo = (*strengthVolumesRepoMock)(nil)
)

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

type achievementsRepoMock struct {
	// achieved results per workout, newest first, paired with start times
	achieved  map[int][]float64
	startedAt map[int][]time.Time
	maxEver   map[int]*float64
}

func newAchievementsRepoMock() *achievementsRepoMock {
	return &achievementsRepoMock{
		achieved:  make(map[int][]float64),
		startedAt: make(map[int][]time.Time),
		maxEver:   make(map[int]*float64),
	}
}

func (r *achievementsRepoMock) setAchieved(workoutID int, at time.Time, achieved ...float64) {
	r.achieved[workoutID] = achieved
	times := make([]time.Time, len(achieved))
	for i := range achieved {
		times[i] = at
	}
	r.startedAt[workoutID] = times
}

func (r *achievementsRepoMock) inWindow(workoutID int, since *time.Time) []float64 {
	var out []float64
	for i, a := range r.achieved[workoutID] {
		if since != nil && r.startedAt[workoutID][i].Before(*since) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *achievementsRepoMock) LastAchieved(_ context.Context, workoutID int, since *time.Time) (*float64, error) {
	achieved := r.inWindow(workoutID, since)
	if len(achieved) == 0 {
		return nil, nil
	}
	last := achieved[0]
	return &last, nil
}

func (r *achievementsRepoMock) MaxCompletedEver(_ context.Context, workoutID int) (*float64, error) {
	if max, ok := r.maxEver[workoutID]; ok {
		return max, nil
	}
	var best *float64
	for _, a := range r.achieved[workoutID] {
		a := a
		if best == nil || a > *best {
			best = &a
		}
	}
	return best, nil
}

func (r *achievementsRepoMock) AchievedNewestFirst(_ context.Context, workoutID int, since *time.Time) ([]float64, error) {
	return r.inWindow(workoutID, since), nil
}

type strengthPlansRepoMock struct {
	routines map[int]plans.StrengthRoutine
	steps    map[string][]plans.StrengthProgressionStep
}

func newStrengthPlansRepoMock() *strengthPlansRepoMock {
	return &strengthPlansRepoMock{
		routines: make(map[int]plans.StrengthRoutine),
		steps:    make(map[string][]plans.StrengthProgressionStep),
	}
}

func (r *strengthPlansRepoMock) GetRoutine(_ context.Context, id int) (*plans.StrengthRoutine, error) {
	routine, ok := r.routines[id]
	if !ok {
		return nil, plans.ErrRoutineNotFound
	}
	return &routine, nil
}

func (r *strengthPlansRepoMock) OrderedProgressions(_ context.Context, routineName string) ([]plans.StrengthProgressionStep, error) {
	return r.steps[routineName], nil
}

type strengthVolumesRepoMock struct {
	lastCompleted map[int]*float64
	maxEver       map[int]*float64
}

func newStrengthVolumesRepoMock() *strengthVolumesRepoMock {
	return &strengthVolumesRepoMock{
		lastCompleted: make(map[int]*float64),
		maxEver:       make(map[int]*float64),
	}
}

func (r *strengthVolumesRepoMock) LastCompletedVolume(_ context.Context, routineID int) (*float64, error) {
	return r.lastCompleted[routineID], nil
}

func (r *strengthVolumesRepoMock) MaxVolumeEver(_ context.Context, routineID int) (*float64, error) {
	return r.maxEver[routineID], nil
}
