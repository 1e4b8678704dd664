package trainlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=trainlog_test

type logsRepo interface {
	Create(ctx context.Context, log EnduranceLog) (*EnduranceLog, error)
	Get(ctx context.Context, id int) (*EnduranceLog, error)
	Update(ctx context.Context, log *EnduranceLog) error
	Delete(ctx context.Context, id int) error
	RecentLogs(ctx context.Context, since time.Time) ([]EnduranceLog, error)
	AddIntervals(ctx context.Context, logID int, intervals []Interval) (*EnduranceLog, error)
	UpdateInterval(ctx context.Context, logID int, interval Interval) error
	DeleteInterval(ctx context.Context, logID, intervalID int) error
	LastInterval(ctx context.Context, logID int) (*Interval, error)
	LastLogForWorkout(ctx context.Context, workoutID, excludeLogID int) (*EnduranceLog, error)
}

const defaultRecentWeeks = 8

type UpdateLogRequest struct {
	StartedAt      *time.Time `json:"startedAt"`
	WorkoutID      *int       `json:"workoutId"`
	Goal           *float64   `json:"goal"`
	TotalCompleted *float64   `json:"totalCompleted"`
	MaxRate        *float64   `json:"maxRate"`
	AvgRate        *float64   `json:"avgRate"`
	MinutesElapsed *float64   `json:"minutesElapsed"`
}

type AddIntervalsRequest struct {
	Intervals []Interval `json:"intervals"`
}

type Handler struct {
	repo    logsRepo
	metrics *metrics.Manager
}

func NewHandler(repo logsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) HandleNewLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var sessionLog EnduranceLog
	if err := json.NewDecoder(r.Body).Decode(&sessionLog); err != nil {
		log.Tracef("new log, unmarshal json params: %s", err)
		http.Error(w, "add log failed", http.StatusBadRequest)
		return
	}

	if sessionLog.WorkoutID == 0 {
		http.Error(w, "error, workout id empty", http.StatusBadRequest)
		return
	}
	if sessionLog.StartedAt.IsZero() {
		sessionLog.StartedAt = time.Now()
	}

	added, err := handler.repo.Create(ctx, sessionLog)
	if err != nil {
		log.Errorf("failed to add new log for workout %d: %s", sessionLog.WorkoutID, err)
		http.Error(w, "error, failed to add new log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSessionLogs.Inc()

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new log: %s", err)
		http.Error(w, "error, failed to add new log", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleGetLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.get")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	sessionLog, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get log %d: %s", id, err)
		http.Error(w, "failed to get log", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *Handler) HandleUpdateLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.update")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	var params UpdateLogRequest
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "update log failed", http.StatusBadRequest)
		return
	}

	sessionLog, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get log %d for update: %s", id, err)
		http.Error(w, "failed to update log", http.StatusInternalServerError)
		return
	}

	if params.StartedAt != nil {
		sessionLog.StartedAt = *params.StartedAt
	}
	if params.WorkoutID != nil {
		sessionLog.WorkoutID = *params.WorkoutID
	}
	if params.Goal != nil {
		sessionLog.Goal = params.Goal
	}
	if params.TotalCompleted != nil {
		sessionLog.TotalCompleted = params.TotalCompleted
	}
	if params.MaxRate != nil {
		sessionLog.MaxRate = params.MaxRate
	}
	if params.AvgRate != nil {
		sessionLog.AvgRate = params.AvgRate
	}
	if params.MinutesElapsed != nil {
		sessionLog.MinutesElapsed = params.MinutesElapsed
	}

	if err := handler.repo.Update(ctx, sessionLog); err != nil {
		log.Errorf("failed to update log %d: %s", id, err)
		http.Error(w, "failed to update log", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *Handler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.delete")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete log %d: %s", id, err)
		http.Error(w, "failed to delete log", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleRecentLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.recent")
	defer span.End()

	weeks := defaultRecentWeeks
	if weeksParam := r.URL.Query().Get("weeks"); weeksParam != "" {
		parsed, err := strconv.Atoi(weeksParam)
		if err != nil || parsed < 1 {
			http.Error(w, "weeks must be a positive integer", http.StatusBadRequest)
			return
		}
		weeks = parsed
	}

	since := time.Now().Add(-time.Duration(weeks) * 7 * 24 * time.Hour)
	logs, err := handler.repo.RecentLogs(ctx, since)
	if err != nil {
		log.Errorf("failed to get recent logs: %s", err)
		http.Error(w, "failed to get recent logs", http.StatusInternalServerError)
		return
	}

	writeJson(w, logs, http.StatusOK)
}

func (handler *Handler) HandleAddIntervals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.addintervals")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	var params AddIntervalsRequest
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "add intervals failed", http.StatusBadRequest)
		return
	}
	if len(params.Intervals) == 0 {
		http.Error(w, "intervals must be a non-empty list", http.StatusBadRequest)
		return
	}

	refreshed, err := handler.repo.AddIntervals(ctx, id, params.Intervals)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add intervals to log %d: %s", id, err)
		http.Error(w, "failed to add intervals", http.StatusInternalServerError)
		return
	}

	writeJson(w, refreshed, http.StatusCreated)
}

func (handler *Handler) HandleUpdateInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.updateinterval")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}
	intervalID, ok := pathID(w, r, "intervalId")
	if !ok {
		return
	}

	var interval Interval
	if err := json.NewDecoder(r.Body).Decode(&interval); err != nil {
		http.Error(w, "update interval failed", http.StatusBadRequest)
		return
	}
	interval.ID = intervalID

	if err := handler.repo.UpdateInterval(ctx, id, interval); err != nil {
		if errors.Is(err, ErrIntervalNotFound) {
			http.Error(w, "interval not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update interval %d of log %d: %s", intervalID, id, err)
		http.Error(w, "failed to update interval", http.StatusInternalServerError)
		return
	}

	sessionLog, err := handler.repo.Get(ctx, id)
	if err != nil {
		log.Errorf("failed to get log %d after interval update: %s", id, err)
		http.Error(w, "failed to update interval", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *Handler) HandleDeleteInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.deleteinterval")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}
	intervalID, ok := pathID(w, r, "intervalId")
	if !ok {
		return
	}

	if err := handler.repo.DeleteInterval(ctx, id, intervalID); err != nil {
		if errors.Is(err, ErrIntervalNotFound) {
			http.Error(w, "interval not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete interval %d of log %d: %s", intervalID, id, err)
		http.Error(w, "failed to delete interval", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLastInterval returns the newest interval of a log, falling back to
// the newest interval of the workout's previous log, and finally to zeros,
// so the client can always prefill its interval form.
func (handler *Handler) HandleLastInterval(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.trainlog.lastinterval")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	interval, err := handler.repo.LastInterval(ctx, id)
	if err != nil && !errors.Is(err, ErrIntervalNotFound) {
		log.Errorf("failed to get last interval of log %d: %s", id, err)
		http.Error(w, "failed to get last interval", http.StatusInternalServerError)
		return
	}

	if interval == nil {
		sessionLog, err := handler.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrLogNotFound) {
				http.Error(w, "log not found", http.StatusNotFound)
				return
			}
			log.Errorf("failed to get log %d: %s", id, err)
			http.Error(w, "failed to get last interval", http.StatusInternalServerError)
			return
		}

		prev, err := handler.repo.LastLogForWorkout(ctx, sessionLog.WorkoutID, sessionLog.ID)
		if err != nil && !errors.Is(err, ErrLogNotFound) {
			log.Errorf("failed to get previous log for workout %d: %s", sessionLog.WorkoutID, err)
			http.Error(w, "failed to get last interval", http.StatusInternalServerError)
			return
		}
		if prev != nil && len(prev.Intervals) > 0 {
			interval = &prev.Intervals[len(prev.Intervals)-1]
		}
	}

	if interval == nil {
		zero := 0
		zeroF := 0.0
		interval = &Interval{
			Minutes: &zero,
			Seconds: &zeroF,
			Miles:   &zeroF,
			Rate:    &zeroF,
		}
	}

	writeJson(w, interval, http.StatusOK)
}

func logID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return pathID(w, r, "id")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	vars := mux.Vars(r)
	idStr := vars[name]
	if idStr == "" {
		http.Error(w, name+" is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, name+" must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJson(w http.ResponseWriter, payload any, statusCode int) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJson, statusCode)
}
