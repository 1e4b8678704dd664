package recommend_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/recommend"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/trainlog"
)

func todayRecommendation() *recommend.Recommendation {
	return &recommend.Recommendation{
		Endurance: recommend.Endurance{
			NextRoutine: &plans.Routine{ID: 2, Name: "Row"},
			NextWorkout: &plans.Workout{ID: 11, Name: "Intervals", RoutineID: 2},
		},
	}
}

func TestHandler_HandleToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(todayRecommendation(), nil)

	req := httptest.NewRequest("GET", "/recommend/today", nil)
	rr := httptest.NewRecorder()
	handler.HandleToday(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got recommend.Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.NotNil(t, got.Endurance.NextRoutine)
	assert.Equal(t, "Row", got.Endurance.NextRoutine.Name)
	assert.Equal(t, "Intervals", got.Endurance.NextWorkout.Name)
}

func TestHandler_HandleToday_servedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	// only the first request reaches the recommender
	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(todayRecommendation(), nil).
		Times(1)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/recommend/today", nil)
		rr := httptest.NewRecorder()
		handler.HandleToday(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestHandler_HandleToday_includeSkippedIsSeparateCacheKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(todayRecommendation(), nil)
	recommenderMock.EXPECT().
		Today(gomock.Any(), true).
		Return(todayRecommendation(), nil)

	rr := httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today?includeSkipped=true", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_HandleToday_noSelectedProgram(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(nil, plans.ErrNoSelectedProgram)

	rr := httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_HandleToday_internalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_HandleBackfillSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	backfillMock.EXPECT().
		BackfillAllGaps(gomock.Any()).
		Return([]trainlog.EnduranceLog{{ID: 100, WorkoutID: 7}}, nil)
	backfillMock.EXPECT().
		CleanupRestConflicts(gomock.Any()).
		Return(2, nil)

	rr := httptest.NewRecorder()
	handler.HandleBackfillSweep(rr, httptest.NewRequest("POST", "/recommend/backfill", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var result struct {
		Created []trainlog.EnduranceLog `json:"created"`
		Deleted int                     `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Len(t, result.Created, 1)
	assert.Equal(t, 100, result.Created[0].ID)
	assert.Equal(t, 2, result.Deleted)
}

func TestHandler_HandleBackfillSweep_invalidatesTodayCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recommenderMock := NewMockrecommenderService(ctrl)
	backfillMock := NewMockbackfillService(ctrl)
	handler := recommend.NewHandler(recommenderMock, backfillMock, metrics.NewTestManager())

	// a sweep between the two today requests clears the cache, so the
	// recommender gets asked twice
	recommenderMock.EXPECT().
		Today(gomock.Any(), false).
		Return(todayRecommendation(), nil).
		Times(2)
	backfillMock.EXPECT().BackfillAllGaps(gomock.Any()).Return(nil, nil)
	backfillMock.EXPECT().CleanupRestConflicts(gomock.Any()).Return(0, nil)

	rr := httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.HandleBackfillSweep(rr, httptest.NewRequest("POST", "/recommend/backfill", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.HandleToday(rr, httptest.NewRequest("GET", "/recommend/today", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
