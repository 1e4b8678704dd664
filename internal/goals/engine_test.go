package goals

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

func fp(v float64) *float64 { return &v }

var testNow = time.Date(2025, 8, 11, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *samplesRepoMock, *progressionsRepoMock) {
	t.Helper()
	samplesMock := &samplesRepoMock{}
	progressionsMock := newProgressionsRepoMock()
	e := NewEngine(samplesMock, progressionsMock, config.DefaultTraining())
	e.now = func() time.Time { return testNow }
	return e, samplesMock, progressionsMock
}

func sampleAt(daysAgo int, achieved, maxRate, avgRate float64) trainlog.Sample {
	return trainlog.Sample{
		StartedAt: testNow.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		Achieved:  fp(achieved),
		MaxRate:   fp(maxRate),
		AvgRate:   fp(avgRate),
	}
}

func TestEngine_RateGoal_noHistory(t *testing.T) {
	e, _, _ := newTestEngine(t)

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1}, DefaultStrategy, nil)
	require.NoError(t, err)
	assert.Nil(t, goals)
}

func TestEngine_RateGoal_roundsUpward(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	samplesMock.add(1, 2, sampleAt(3, 40, 6.23, 5.81))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 6.3, goals.Max, 1e-9)
	assert.InDelta(t, 5.9, goals.Avg, 1e-9)
}

func TestEngine_RateGoal_nudgesEqualPair(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	// both rates round to 6.0
	samplesMock.add(1, 2, sampleAt(3, 40, 6.0, 5.95))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 6.0, goals.Avg, 1e-9)
	assert.InDelta(t, 6.1, goals.Max, 1e-9)
	assert.Greater(t, goals.Max, goals.Avg)
}

func TestEngine_RateGoal_criterionPicksWinner(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	// older sample has the higher average, newer one the higher peak
	samplesMock.add(1, 2, sampleAt(10, 40, 5.5, 5.4))
	samplesMock.add(1, 2, sampleAt(3, 40, 6.5, 5.0))

	byMax, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, byMax.Max, 1e-9)

	byAvg, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionAvg}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5.4, byAvg.Avg, 1e-9)
}

func TestEngine_RateGoal_routineScopeWidensCandidates(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	// the stronger sample belongs to a sibling workout of the same routine
	samplesMock.add(1, 2, sampleAt(3, 40, 5.5, 5.0))
	samplesMock.add(9, 2, sampleAt(4, 40, 7.0, 6.0))

	workoutScoped, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, workoutScoped.Max, 1e-9)

	routineScoped, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeRoutine, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, routineScoped.Max, 1e-9)
}

func TestEngine_RateGoal_progressionScopeFiltersByRung(t *testing.T) {
	e, samplesMock, progressionsMock := newTestEngine(t)
	progressionsMock.setLadder(1, 30, 40, 50)
	// a faster result at a lower rung must not drive the goal for rung 40
	samplesMock.add(1, 2, sampleAt(5, 31, 8.0, 7.5))
	samplesMock.add(1, 2, sampleAt(3, 41, 6.0, 5.5))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, DefaultStrategy, fp(40))
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 6.0, goals.Max, 1e-9)
}

func TestEngine_RateGoal_progressionFallbackToNewest(t *testing.T) {
	e, samplesMock, progressionsMock := newTestEngine(t)
	progressionsMock.setLadder(1, 30, 40, 50)
	// no sample snaps to rung 50, the newest in scope wins instead
	samplesMock.add(1, 2, sampleAt(5, 31, 8.0, 7.5))
	samplesMock.add(1, 2, sampleAt(3, 41, 6.0, 5.5))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, DefaultStrategy, fp(50))
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 6.0, goals.Max, 1e-9)
}

func TestEngine_RateGoal_windowFallsBackToMostRecent(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	// only sample is far outside the window
	samplesMock.add(1, 2, sampleAt(400, 40, 5.5, 5.0))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 5.5, goals.Max, 1e-9)
}

func TestEngine_RateGoal_neverBelowBestCandidate(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)
	rates := []float64{5.01, 5.09, 5.11, 6.0, 6.001}
	for i, rate := range rates {
		samplesMock.add(1, 2, sampleAt(i+1, 40, rate, rate-0.2))
	}

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.GreaterOrEqual(t, goals.Max, 6.001)
}

func TestEngine_RateGoal_bulkHistoryPicksBest(t *testing.T) {
	e, samplesMock, _ := newTestEngine(t)

	for daysAgo := 1; daysAgo <= 60; daysAgo++ {
		samplesMock.add(1, 2, sampleAt(
			daysAgo,
			gofakeit.Float64Range(20, 50),
			gofakeit.Float64Range(4.0, 5.9),
			gofakeit.Float64Range(3.0, 4.9),
		))
	}
	// one session strictly above everything the generator can produce
	samplesMock.add(1, 2, sampleAt(14, 60, 6.42, 5.55))

	goals, err := e.RateGoal(context.Background(), plans.Workout{ID: 1, RoutineID: 2}, Strategy{Scope: ScopeWorkout, Criterion: CriterionMax}, nil)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 6.5, goals.Max, 1e-9)
	assert.InDelta(t, 5.6, goals.Avg, 1e-9)
}

func TestStrengthEngine_RateGoal(t *testing.T) {
	samplesMock := newStrengthSamplesRepoMock()
	ladderMock := newStrengthLadderRepoMock()
	e := NewStrengthEngine(samplesMock, ladderMock, config.DefaultTraining())
	e.now = func() time.Time { return testNow }

	rph := 412.5
	samplesMock.rateSamples[4] = []trainlog.Sample{
		{StartedAt: testNow.Add(-48 * time.Hour), MaxRate: &rph, AvgRate: &rph},
	}

	goals, err := e.RateGoal(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, goals)
	assert.InDelta(t, 412.5, goals.Avg, 1e-9)
	// an equal pair gets nudged apart
	assert.InDelta(t, 412.6, goals.Max, 1e-9)
}

func TestStrengthEngine_MaxCeiling(t *testing.T) {
	samplesMock := newStrengthSamplesRepoMock()
	ladderMock := newStrengthLadderRepoMock()
	e := NewStrengthEngine(samplesMock, ladderMock, config.DefaultTraining())
	e.now = func() time.Time { return testNow }

	ladderMock.routines[4] = plans.StrengthRoutine{ID: 4, Name: "Pushups"}
	ladderMock.steps["Pushups"] = []plans.StrengthProgressionStep{
		{Order: 1, RoutineName: "Pushups", CurrentMax: 20},
		{Order: 2, RoutineName: "Pushups", CurrentMax: 25},
		{Order: 3, RoutineName: "Pushups", CurrentMax: 30},
	}
	samplesMock.peakReps[4] = fp(21)
	samplesMock.peakWeight[4] = fp(152.5)

	ceiling, err := e.MaxCeiling(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, ceiling)
	// next published level above 21
	assert.InDelta(t, 25.0, ceiling.Reps, 1e-9)
	assert.InDelta(t, 152.5, ceiling.Weight, 1e-9)

	// outgrown ladder: top stays top
	samplesMock.peakReps[4] = fp(35)
	ceiling, err = e.MaxCeiling(context.Background(), 4)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, ceiling.Reps, 1e-9)
}

func TestStrengthEngine_MaxCeiling_noLadderRoundsUp(t *testing.T) {
	samplesMock := newStrengthSamplesRepoMock()
	ladderMock := newStrengthLadderRepoMock()
	e := NewStrengthEngine(samplesMock, ladderMock, config.DefaultTraining())
	e.now = func() time.Time { return testNow }

	samplesMock.peakReps[4] = fp(21.02)

	ceiling, err := e.MaxCeiling(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, ceiling)
	assert.InDelta(t, 21.1, ceiling.Reps, 1e-9)
	assert.Zero(t, ceiling.Weight)
}
