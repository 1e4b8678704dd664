package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kgriffin/trainloop/internal/telemetry/tracing"
	"github.com/kgriffin/trainloop/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=plans_test

type catalogRepo interface {
	GetProgram(ctx context.Context, id int) (*Program, error)
	GetWorkout(ctx context.Context, id int) (*Workout, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
}

// Handler serves the read-only training catalog: programs, workouts with
// their units, and the unit/exercise lists the log forms need.
type Handler struct {
	repo catalogRepo
}

func NewHandler(repo catalogRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleGetProgram(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.getprogram")
	defer span.End()

	id, ok := catalogID(w, r)
	if !ok {
		return
	}

	program, err := handler.repo.GetProgram(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			http.Error(w, "program not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get program %d: %s", id, err)
		http.Error(w, "failed to get program", http.StatusInternalServerError)
		return
	}

	writeCatalogJson(w, program)
}

func (handler *Handler) HandleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.getworkout")
	defer span.End()

	id, ok := catalogID(w, r)
	if !ok {
		return
	}

	workout, err := handler.repo.GetWorkout(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	writeCatalogJson(w, workout)
}

func (handler *Handler) HandleListUnits(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.listunits")
	defer span.End()

	units, err := handler.repo.ListUnits(ctx)
	if err != nil {
		log.Errorf("failed to list units: %s", err)
		http.Error(w, "failed to list units", http.StatusInternalServerError)
		return
	}

	writeCatalogJson(w, units)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.listexercises")
	defer span.End()

	exercises, err := handler.repo.ListExercises(ctx)
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	writeCatalogJson(w, exercises)
}

func catalogID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "id must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeCatalogJson(w http.ResponseWriter, payload any) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJson, http.StatusOK)
}
