package trainlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=supplemental_handler_mocks_test.go -package=trainlog_test

type supplementalLogsRepo interface {
	Create(ctx context.Context, log SupplementalLog) (*SupplementalLog, error)
	Get(ctx context.Context, id int) (*SupplementalLog, error)
	Delete(ctx context.Context, id int) error
}

type SupplementalHandler struct {
	repo    supplementalLogsRepo
	metrics *metrics.Manager
}

func NewSupplementalHandler(repo supplementalLogsRepo, metricsManager *metrics.Manager) *SupplementalHandler {
	return &SupplementalHandler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *SupplementalHandler) HandleNewLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.supplementallog.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var supplementalLog SupplementalLog
	if err := json.NewDecoder(r.Body).Decode(&supplementalLog); err != nil {
		log.Tracef("new supplemental log, unmarshal json params: %s", err)
		http.Error(w, "add log failed", http.StatusBadRequest)
		return
	}

	if supplementalLog.RoutineID == 0 {
		http.Error(w, "error, routine id empty", http.StatusBadRequest)
		return
	}
	if supplementalLog.StartedAt.IsZero() {
		supplementalLog.StartedAt = time.Now()
	}

	added, err := handler.repo.Create(ctx, supplementalLog)
	if err != nil {
		log.Errorf("failed to add new supplemental log for routine %d: %s", supplementalLog.RoutineID, err)
		http.Error(w, "error, failed to add new log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSessionLogs.Inc()

	writeJson(w, added, http.StatusCreated)
}

func (handler *SupplementalHandler) HandleGetLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.supplementallog.get")
	defer span.End()

	id, ok := logID(w, r)
	if !ok {
		return
	}

	supplementalLog, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get supplemental log %d: %s", id, err)
		http.Error(w, "failed to get log", http.StatusInternalServerError)
		return
	}

	writeJson(w, supplementalLog, http.StatusOK)
}

func (handler *SupplementalHandler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.supplementallog.delete")
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
		log.Errorf("failed to delete supplemental log %d: %s", id, err)
		http.Error(w, "failed to delete log", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
