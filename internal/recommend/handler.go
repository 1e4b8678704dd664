package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/internal/trainlog"
	"github.com/kgriffin/trainloop/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=recommend_test

type recommenderService interface {
	Today(ctx context.Context, includeSkipped bool) (*Recommendation, error)
}

type backfillService interface {
	BackfillAllGaps(ctx context.Context) ([]trainlog.EnduranceLog, error)
	CleanupRestConflicts(ctx context.Context) (int, error)
}

const (
	cacheSizeMegabytes = 2
	// a recommendation only changes when a log lands, a short TTL keeps the
	// answer fresh enough while absorbing request bursts
	cacheExpireSeconds = 60
)

type Handler struct {
	recommender recommenderService
	backfill    backfillService
	cache       *freecache.Cache
	metrics     *metrics.Manager
}

func NewHandler(recommender recommenderService, backfill backfillService, metricsManager *metrics.Manager) *Handler {
	megabyte := 1024 * 1024
	return &Handler{
		recommender: recommender,
		backfill:    backfill,
		cache:       freecache.NewCache(cacheSizeMegabytes * megabyte),
		metrics:     metricsManager,
	}
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommend.today")
	defer span.End()

	includeSkipped := r.URL.Query().Get("includeSkipped") == "true"

	cacheKey := []byte(fmt.Sprintf("today::%t", includeSkipped))
	if cached, err := handler.cache.Get(cacheKey); err == nil {
		log.Tracef("recommendation found in cache [includeSkipped: %t]", includeSkipped)
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cached, http.StatusOK)
		return
	}

	recommendation, err := handler.recommender.Today(ctx, includeSkipped)
	if err != nil {
		if errors.Is(err, plans.ErrNoSelectedProgram) {
			http.Error(w, "no selected program", http.StatusNotFound)
			return
		}
		log.Errorf("failed to compute recommendation: %s", err)
		http.Error(w, "failed to compute recommendation", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRecommendations.Inc()

	body, err := json.Marshal(recommendation)
	if err != nil {
		log.Errorf("failed to marshal recommendation: %s", err)
		http.Error(w, "failed to compute recommendation", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, body, cacheExpireSeconds); err != nil {
		log.Errorf("failed to cache recommendation: %s", err)
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, body, http.StatusOK)
}

// HandleBackfillSweep runs the full historical gap sweep plus the rest
// conflict cleanup, reporting what changed.
func (handler *Handler) HandleBackfillSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommend.backfillsweep")
	defer span.End()

	created, err := handler.backfill.BackfillAllGaps(ctx)
	if err != nil {
		log.Errorf("failed to backfill gaps: %s", err)
		http.Error(w, "failed to backfill gaps", http.StatusInternalServerError)
		return
	}

	deleted, err := handler.backfill.CleanupRestConflicts(ctx)
	if err != nil {
		log.Errorf("failed to cleanup rest conflicts: %s", err)
		http.Error(w, "failed to cleanup rest conflicts", http.StatusInternalServerError)
		return
	}

	// the stored history changed, cached recommendations are stale
	handler.cache.Clear()

	body, err := json.Marshal(struct {
		Created []trainlog.EnduranceLog `json:"created"`
		Deleted int                     `json:"deleted"`
	}{
		Created: created,
		Deleted: deleted,
	})
	if err != nil {
		log.Errorf("failed to marshal backfill sweep result: %s", err)
		http.Error(w, "failed to backfill gaps", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, body, http.StatusOK)
}
