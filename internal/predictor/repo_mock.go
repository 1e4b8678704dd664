package predictor

import (
	"context"

	"github.com/kgriffin/trainloop/internal/plans"
)

var (
	_ plansRepo   = (*plansRepoMock)(nil)
	_ historyRepo = (*historyRepoMock)(nil)
)

type plansRepoMock struct {
	program  plans.Program
	plan     []plans.PlanEntry
	workouts map[int][]plans.Workout
}

func newPlansRepoMock() *plansRepoMock {
	return &plansRepoMock{
		program:  plans.Program{ID: 1, Name: "base", Selected: true},
		workouts: make(map[int][]plans.Workout),
	}
}

func (r *plansRepoMock) SelectedProgram(_ context.Context) (*plans.Program, error) {
	return &r.program, nil
}

func (r *plansRepoMock) Plan(_ context.Context, _ int) ([]plans.PlanEntry, error) {
	return r.plan, nil
}

func (r *plansRepoMock) OrderedWorkouts(_ context.Context, routineID int, includeSkipped bool) ([]plans.Workout, error) {
	var workouts []plans.Workout
	for _, w := range r.workouts[routineID] {
		if w.Skip && !includeSkipped {
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func (r *plansRepoMock) MaxPriorityOrder(_ context.Context, routineID int) (int, error) {
	maxPriority := 0
	for _, w := range r.workouts[routineID] {
		if !w.Skip && w.PriorityOrder > maxPriority {
			maxPriority = w.PriorityOrder
		}
	}
	return maxPriority, nil
}

type historyRepoMock struct {
	// both oldest first, the way the real repo returns them
	routineIDs []int
	workoutIDs map[int][]int
}

func newHistoryRepoMock() *historyRepoMock {
	return &historyRepoMock{
		workoutIDs: make(map[int][]int),
	}
}

func (r *historyRepoMock) RecentRoutineIDs(_ context.Context, limit int) ([]int, error) {
	return tail(r.routineIDs, limit), nil
}

func (r *historyRepoMock) RecentWorkoutIDs(_ context.Context, routineID, limit int) ([]int, error) {
	return tail(r.workoutIDs[routineID], limit), nil
}

func tail(ids []int, limit int) []int {
	if limit <= 0 || len(ids) <= limit {
		return ids
	}
	return ids[len(ids)-limit:]
}
