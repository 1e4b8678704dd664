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

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=strength_handler_mocks_test.go -package=trainlog_test

type strengthLogsRepo interface {
	Create(ctx context.Context, log StrengthLog) (*StrengthLog, error)
	Get(ctx context.Context, id int) (*StrengthLog, error)
	Update(ctx context.Context, log *StrengthLog) error
	Delete(ctx context.Context, id int) error
	RecentLogs(ctx context.Context, since time.Time) ([]StrengthLog, error)
	AddSets(ctx context.Context, logID int, sets []SetDetail) (*StrengthLog, error)
	UpdateSet(ctx context.Context, logID int, set SetDetail) error
	DeleteSet(ctx context.Context, logID, setID int) error
	LastSet(ctx context.Context, logID int) (*SetDetail, error)
	LastLogForRoutine(ctx context.Context, routineID, excludeLogID int) (*StrengthLog, error)
}

type UpdateStrengthLogRequest struct {
	StartedAt      *time.Time `json:"startedAt"`
	RoutineID      *int       `json:"routineId"`
	RepGoal        *float64   `json:"repGoal"`
	TotalReps      *float64   `json:"totalReps"`
	MaxReps        *float64   `json:"maxReps"`
	MaxWeight      *float64   `json:"maxWeight"`
	MinutesElapsed *float64   `json:"minutesElapsed"`
}

type AddSetsRequest struct {
	Sets []SetDetail `json:"sets"`
}

type StrengthHandler struct {
	repo    strengthLogsRepo
	metrics *metrics.Manager
}

func NewStrengthHandler(repo strengthLogsRepo, metricsManager *metrics.Manager) *StrengthHandler {
	return &StrengthHandler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *StrengthHandler) HandleNewLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var sessionLog StrengthLog
	if err := json.NewDecoder(r.Body).Decode(&sessionLog); err != nil {
		log.Tracef("new strength log, unmarshal json params: %s", err)
		http.Error(w, "add log failed", http.StatusBadRequest)
		return
	}

	if sessionLog.RoutineID == 0 {
		http.Error(w, "error, routine id empty", http.StatusBadRequest)
		return
	}
	if sessionLog.StartedAt.IsZero() {
		sessionLog.StartedAt = time.Now()
	}

	added, err := handler.repo.Create(ctx, sessionLog)
	if err != nil {
		log.Errorf("failed to add new strength log for routine %d: %s", sessionLog.RoutineID, err)
		http.Error(w, "error, failed to add new log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSessionLogs.Inc()

	writeJson(w, added, http.StatusCreated)
}

func (handler *StrengthHandler) HandleGetLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.get")
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
		log.Errorf("failed to get strength log %d: %s", id, err)
		http.Error(w, "failed to get log", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *StrengthHandler) HandleUpdateLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.update")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	var params UpdateStrengthLogRequest
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
		log.Errorf("failed to get strength log %d for update: %s", id, err)
		http.Error(w, "failed to update log", http.StatusInternalServerError)
		return
	}

	if params.StartedAt != nil {
		sessionLog.StartedAt = *params.StartedAt
	}
	if params.RoutineID != nil {
		sessionLog.RoutineID = *params.RoutineID
	}
	if params.RepGoal != nil {
		sessionLog.RepGoal = params.RepGoal
	}
	if params.TotalReps != nil {
		sessionLog.TotalReps = params.TotalReps
	}
	if params.MaxReps != nil {
		sessionLog.MaxReps = params.MaxReps
	}
	if params.MaxWeight != nil {
		sessionLog.MaxWeight = params.MaxWeight
	}
	if params.MinutesElapsed != nil {
		sessionLog.MinutesElapsed = params.MinutesElapsed
	}

	if err := handler.repo.Update(ctx, sessionLog); err != nil {
		log.Errorf("failed to update strength log %d: %s", id, err)
		http.Error(w, "failed to update log", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *StrengthHandler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.delete")
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
		log.Errorf("failed to delete strength log %d: %s", id, err)
		http.Error(w, "failed to delete log", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *StrengthHandler) HandleRecentLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.recent")
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
		log.Errorf("failed to get recent strength logs: %s", err)
		http.Error(w, "failed to get recent logs", http.StatusInternalServerError)
		return
	}

	writeJson(w, logs, http.StatusOK)
}

func (handler *StrengthHandler) HandleAddSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.addsets")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	var params AddSetsRequest
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "add sets failed", http.StatusBadRequest)
		return
	}
	if len(params.Sets) == 0 {
		http.Error(w, "sets must be a non-empty list", http.StatusBadRequest)
		return
	}

	refreshed, err := handler.repo.AddSets(ctx, id, params.Sets)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add sets to strength log %d: %s", id, err)
		http.Error(w, "failed to add sets", http.StatusInternalServerError)
		return
	}

	writeJson(w, refreshed, http.StatusCreated)
}

func (handler *StrengthHandler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.updateset")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}
	setID, ok := pathID(w, r, "setId")
	if !ok {
		return
	}

	var set SetDetail
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}
	set.ID = setID

	if err := handler.repo.UpdateSet(ctx, id, set); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			http.Error(w, "set not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update set %d of strength log %d: %s", setID, id, err)
		http.Error(w, "failed to update set", http.StatusInternalServerError)
		return
	}

	sessionLog, err := handler.repo.Get(ctx, id)
	if err != nil {
		log.Errorf("failed to get strength log %d after set update: %s", id, err)
		http.Error(w, "failed to update set", http.StatusInternalServerError)
		return
	}

	writeJson(w, sessionLog, http.StatusOK)
}

func (handler *StrengthHandler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.deleteset")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}
	setID, ok := pathID(w, r, "setId")
	if !ok {
		return
	}

	if err := handler.repo.DeleteSet(ctx, id, setID); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			http.Error(w, "set not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete set %d of strength log %d: %s", setID, id, err)
		http.Error(w, "failed to delete set", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLastSet mirrors HandleLastInterval for strength logs.
func (handler *StrengthHandler) HandleLastSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strengthlog.lastset")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	set, err := handler.repo.LastSet(ctx, id)
	if err != nil && !errors.Is(err, ErrSetNotFound) {
		log.Errorf("failed to get last set of strength log %d: %s", id, err)
		http.Error(w, "failed to get last set", http.StatusInternalServerError)
		return
	}

	if set == nil {
		sessionLog, err := handler.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrLogNotFound) {
				http.Error(w, "log not found", http.StatusNotFound)
				return
			}
			log.Errorf("failed to get strength log %d: %s", id, err)
			http.Error(w, "failed to get last set", http.StatusInternalServerError)
			return
		}

		prev, err := handler.repo.LastLogForRoutine(ctx, sessionLog.RoutineID, sessionLog.ID)
		if err != nil && !errors.Is(err, ErrLogNotFound) {
			log.Errorf("failed to get previous log for routine %d: %s", sessionLog.RoutineID, err)
			http.Error(w, "failed to get last set", http.StatusInternalServerError)
			return
		}
		if prev != nil && len(prev.Sets) > 0 {
			set = &prev.Sets[len(prev.Sets)-1]
		}
	}

	if set == nil {
		zero := 0
		zeroF := 0.0
		set = &SetDetail{
			Reps:   &zero,
			Weight: &zeroF,
		}
	}

	writeJson(w, set, http.StatusOK)
}
