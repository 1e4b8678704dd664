package ladder

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type strengthPlansRepo interface {
	GetRoutine(ctx context.Context, id int) (*plans.StrengthRoutine, error)
	OrderedProgressions(ctx context.Context, routineName string) ([]plans.StrengthProgressionStep, error)
}

type strengthVolumesRepo interface {
	LastCompletedVolume(ctx context.Context, routineID int) (*float64, error)
	MaxVolumeEver(ctx context.Context, routineID int) (*float64, error)
}

// StrengthService picks the next strength goal for a routine: the first
// published progression whose daily volume exceeds the last completed
// volume, or the top of the ladder once the athlete has outgrown it.
type StrengthService struct {
	plans   strengthPlansRepo
	volumes strengthVolumesRepo
}

func NewStrengthService(plansRepo strengthPlansRepo, volumesRepo strengthVolumesRepo) *StrengthService {
	return &StrengthService{
		plans:   plansRepo,
		volumes: volumesRepo,
	}
}

func (s *StrengthService) NextGoal(ctx context.Context, routineID int) (_ *plans.StrengthProgressionStep, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ladder.strength.nextgoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("routine.id", routineID))

	routine, err := s.plans.GetRoutine(ctx, routineID)
	if err != nil {
		if errors.Is(err, plans.ErrRoutineNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get routine: %w", err)
	}

	steps, err := s.plans.OrderedProgressions(ctx, routine.Name)
	if err != nil {
		return nil, fmt.Errorf("ordered progressions: %w", err)
	}
	if len(steps) == 0 {
		return nil, nil
	}

	lastCompleted, err := s.volumes.LastCompletedVolume(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("last completed volume: %w", err)
	}
	if lastCompleted == nil {
		lastCompleted, err = s.volumes.MaxVolumeEver(ctx, routineID)
		if err != nil {
			return nil, fmt.Errorf("max volume ever: %w", err)
		}
	}
	if lastCompleted == nil {
		return &steps[0], nil
	}

	for i := range steps {
		if steps[i].DailyVolume > *lastCompleted {
			return &steps[i], nil
		}
	}
	return &steps[len(steps)-1], nil
}
