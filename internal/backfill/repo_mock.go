package backfill

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

var (
	_ restWorkoutRepo = (*plansRepoMock)(nil)
	_ logsRepo        = (*logsRepoMock)(nil)
)

var errContention = errors.New("write contention")

type plansRepoMock struct {
	restWorkout *plans.Workout
}

func (r *plansRepoMock) RestWorkout(_ context.Context) (*plans.Workout, error) {
	if r.restWorkout == nil {
		return nil, plans.ErrWorkoutNotFound
	}
	return r.restWorkout, nil
}

type logsRepoMock struct {
	mutex  sync.Mutex
	nextID int
	logs   map[int]*trainlog.EnduranceLog
	// workout names, for rest detection
	workoutNames map[int]string

	createErrs int
}

func newLogsRepoMock() *logsRepoMock {
	return &logsRepoMock{
		logs:         make(map[int]*trainlog.EnduranceLog),
		workoutNames: make(map[int]string),
	}
}

func (r *logsRepoMock) addLog(workoutID int, at time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.nextID++
	r.logs[r.nextID] = &trainlog.EnduranceLog{
		ID:        r.nextID,
		StartedAt: at,
		WorkoutID: workoutID,
	}
}

func (r *logsRepoMock) sorted() []*trainlog.EnduranceLog {
	var all []*trainlog.EnduranceLog
	for _, l := range r.logs {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.Before(all[j].StartedAt)
	})
	return all
}

func (r *logsRepoMock) LastLog(_ context.Context) (*trainlog.EnduranceLog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := r.sorted()
	if len(all) == 0 {
		return nil, trainlog.ErrLogNotFound
	}
	return all[len(all)-1], nil
}

func (r *logsRepoMock) ListStubsAsc(_ context.Context) ([]trainlog.LogStub, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var stubs []trainlog.LogStub
	for _, l := range r.sorted() {
		stubs = append(stubs, trainlog.LogStub{
			ID:        l.ID,
			StartedAt: l.StartedAt,
			WorkoutID: l.WorkoutID,
			IsRest:    strings.EqualFold(r.workoutNames[l.WorkoutID], plans.RestWorkoutName),
		})
	}
	return stubs, nil
}

func (r *logsRepoMock) CreateRest(_ context.Context, workoutID int, at time.Time) (*trainlog.EnduranceLog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.createErrs > 0 {
		r.createErrs--
		return nil, errContention
	}

	r.nextID++
	created := &trainlog.EnduranceLog{
		ID:        r.nextID,
		StartedAt: at,
		WorkoutID: workoutID,
	}
	r.logs[r.nextID] = created
	return created, nil
}

func (r *logsRepoMock) DeleteByIDs(_ context.Context, ids []int) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.logs[id]; ok {
			delete(r.logs, id)
			deleted++
		}
	}
	return deleted, nil
}
