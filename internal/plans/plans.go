package plans

import "errors"

var (
	ErrNoSelectedProgram = errors.New("no selected program")
	ErrProgramNotFound   = errors.New("program not found")
	ErrRoutineNotFound   = errors.New("routine not found")
	ErrWorkoutNotFound   = errors.New("workout not found")
)

// UnitKind says what a workout's total is measured in. Endurance workouts
// use time or distance units, supplemental routines use time or reps.
type UnitKind string

const (
	UnitTime     UnitKind = "time"
	UnitDistance UnitKind = "distance"
	UnitReps     UnitKind = "reps"
)

// RestWorkoutName marks the workout (or its routine) used for synthetic
// rest day entries. Matched case-insensitively.
const RestWorkoutName = "Rest"

type Program struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type Routine struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Unit is a measurement unit for endurance workouts, e.g. Miles, Minutes,
// 400m Intervals. MileEquivNum/MileEquivDen give miles per one unit,
// used to convert summed raw miles back into the workout's native unit.
type Unit struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Kind         UnitKind `json:"kind"`
	MileEquivNum float64  `json:"mileEquivNum"`
	MileEquivDen float64  `json:"mileEquivDen"`
}

// MilesPerUnit returns how many raw miles one unit represents,
// or 0 when the unit carries no usable conversion.
func (u Unit) MilesPerUnit() float64 {
	if u.MileEquivDen == 0 {
		return 0
	}
	return u.MileEquivNum / u.MileEquivDen
}

type Workout struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	RoutineID     int    `json:"routineId"`
	Unit          Unit   `json:"unit"`
	PriorityOrder int    `json:"priorityOrder"`
	Skip          bool   `json:"skip"`
	Difficulty    int    `json:"difficulty"`
	// GoalStrategy selects how rate goals are computed for this workout,
	// in "<scope>-<criterion>" form, e.g. "progression-max". Empty means
	// the default strategy.
	GoalStrategy string `json:"goalStrategy,omitempty"`
}

// ProgressionStep is one rung of a workout's goal ladder. Steps are only
// ever read in Order; equal consecutive values form duplicate bands.
type ProgressionStep struct {
	ID        int     `json:"id"`
	WorkoutID int     `json:"workoutId"`
	Order     int     `json:"order"`
	Value     float64 `json:"value"`
}

// PlanEntry is one slot of a program's repeating endurance routine cycle.
type PlanEntry struct {
	Order   int     `json:"order"`
	Routine Routine `json:"routine"`
}

// Exercise is a concrete endurance activity (Run, Swim, Row, Bike)
// referenced by per-interval log details.
type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StrengthRoutine struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	HundredPointsReps   int    `json:"hundredPointsReps"`
	HundredPointsWeight int    `json:"hundredPointsWeight"`
}

// StrengthProgressionStep is one row of the published strength progression
// table: a current max and the training volumes prescribed for it.
type StrengthProgressionStep struct {
	Order        int     `json:"order"`
	RoutineName  string  `json:"routineName"`
	CurrentMax   float64 `json:"currentMax"`
	TrainingSet  float64 `json:"trainingSet"`
	DailyVolume  float64 `json:"dailyVolume"`
	WeeklyVolume float64 `json:"weeklyVolume"`
}

type SupplementalRoutine struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Unit UnitKind `json:"unit"`
}
