package integration_testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/recommend"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

// requires a running docker daemon
func TestMain(m *testing.M) {
	if os.Getenv("TRAINLOOP_RUN_INTEGRATION_TESTS") != "true" {
		fmt.Println("skipping integration tests, set TRAINLOOP_RUN_INTEGRATION_TESTS=true to run them")
		return
	}
	os.Exit(m.Run())
}

func Test_Server(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suite := newSuite(ctx)
	defer suite.cleanup()
	require.NotNil(t, suite.server)

	client := &http.Client{Timeout: 10 * time.Second}

	t.Run("trainlog crud", func(t *testing.T) {
		goal := 3.0
		created := postJSON[trainlog.EnduranceLog](t, client, serverEndpoint+"/trainlog", trainlog.EnduranceLog{
			WorkoutID: 1,
			StartedAt: time.Now().Add(-2 * time.Hour),
			Goal:      &goal,
		})
		require.NotZero(t, created.ID)

		miles := 1.5
		minutes := 12
		refreshed := postJSON[trainlog.EnduranceLog](
			t, client,
			fmt.Sprintf("%s/trainlog/%d/intervals", serverEndpoint, created.ID),
			trainlog.AddIntervalsRequest{Intervals: []trainlog.Interval{
				{At: time.Now().Add(-100 * time.Minute), Minutes: &minutes, Miles: &miles},
				{At: time.Now().Add(-80 * time.Minute), Minutes: &minutes, Miles: &miles},
			}},
		)
		require.Len(t, refreshed.Intervals, 2)
		require.NotNil(t, refreshed.TotalCompleted)
		assert.InDelta(t, 3.0, *refreshed.TotalCompleted, 1e-9)
		require.NotNil(t, refreshed.MinutesElapsed)

		resp, err := client.Get(fmt.Sprintf("%s/trainlog/%d/intervals/last", serverEndpoint, created.ID))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("catalog", func(t *testing.T) {
		resp, err := client.Get(serverEndpoint + "/plans/units")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var units []plans.Unit
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&units))
		require.Len(t, units, 2)

		workoutResp, err := client.Get(serverEndpoint + "/plans/workouts/1")
		require.NoError(t, err)
		defer workoutResp.Body.Close()
		require.Equal(t, http.StatusOK, workoutResp.StatusCode)

		var workout plans.Workout
		require.NoError(t, json.NewDecoder(workoutResp.Body).Decode(&workout))
		assert.Equal(t, "Easy", workout.Name)
	})

	t.Run("recommendation", func(t *testing.T) {
		resp, err := client.Get(serverEndpoint + "/recommend/today")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var recommendation recommend.Recommendation
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&recommendation))

		require.NotNil(t, recommendation.Endurance.NextRoutine)
		// a Run session was just logged, the plan cycles to Row
		assert.Equal(t, "Row", recommendation.Endurance.NextRoutine.Name)
		assert.NotEmpty(t, recommendation.Endurance.Workouts)

		require.NotNil(t, recommendation.Strength.NextRoutine)
		assert.Equal(t, "Pullups", recommendation.Strength.NextRoutine.Name)
		require.NotNil(t, recommendation.Strength.NextGoal)
		// no strength history: first published progression step
		assert.InDelta(t, 50.0, recommendation.Strength.NextGoal.DailyVolume, 1e-9)

		require.NotNil(t, recommendation.Supplemental.NextRoutine)
		assert.Equal(t, "Plank", recommendation.Supplemental.NextRoutine.Name)
	})

	t.Run("backfill sweep", func(t *testing.T) {
		resp, err := client.Post(serverEndpoint+"/recommend/backfill", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func postJSON[T any](t *testing.T, client *http.Client, url string, payload any) T {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}
