package goals

import (
	"fmt"
	"strings"
)

// Scope selects which historical logs count toward a goal.
type Scope int

const (
	// ScopeProgression restricts candidates to logs of the same workout
	// whose achieved value snaps to the same progression rung as the
	// current target.
	ScopeProgression Scope = iota
	// ScopeRoutine considers every log of the workout's routine.
	ScopeRoutine
	// ScopeWorkout considers every log of the workout.
	ScopeWorkout
)

func (s Scope) String() string {
	switch s {
	case ScopeProgression:
		return "progression"
	case ScopeRoutine:
		return "routine"
	case ScopeWorkout:
		return "workout"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Criterion selects how candidate logs are ranked.
type Criterion int

const (
	// CriterionMax ranks candidates by their peak rate.
	CriterionMax Criterion = iota
	// CriterionAvg ranks candidates by their average rate.
	CriterionAvg
)

func (c Criterion) String() string {
	switch c {
	case CriterionMax:
		return "max"
	case CriterionAvg:
		return "avg"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

// Strategy is the product of the two independent goal axes. Strategies are
// validated once, when a workout is loaded, never per call.
type Strategy struct {
	Scope     Scope
	Criterion Criterion
}

func (s Strategy) String() string {
	return s.Scope.String() + "-" + s.Criterion.String()
}

// DefaultStrategy is used for workouts without an explicit configuration.
var DefaultStrategy = Strategy{Scope: ScopeProgression, Criterion: CriterionMax}

// ParseStrategy parses a "<scope>-<criterion>" string, e.g. "routine-avg".
// The empty string yields DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}

	scopeStr, criterionStr, found := strings.Cut(s, "-")
	if !found {
		return Strategy{}, fmt.Errorf("invalid strategy %q: want <scope>-<criterion>", s)
	}

	var strategy Strategy
	switch scopeStr {
	case "progression":
		strategy.Scope = ScopeProgression
	case "routine":
		strategy.Scope = ScopeRoutine
	case "workout":
		strategy.Scope = ScopeWorkout
	default:
		return Strategy{}, fmt.Errorf("invalid strategy scope %q", scopeStr)
	}

	switch criterionStr {
	case "max":
		strategy.Criterion = CriterionMax
	case "avg":
		strategy.Criterion = CriterionAvg
	default:
		return Strategy{}, fmt.Errorf("invalid strategy criterion %q", criterionStr)
	}

	return strategy, nil
}
