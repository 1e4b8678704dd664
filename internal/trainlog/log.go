package trainlog

import (
	"errors"
	"time"
)

var (
	ErrLogNotFound      = errors.New("log not found")
	ErrIntervalNotFound = errors.New("interval not found")
	ErrSetNotFound      = errors.New("set not found")
)

// EnduranceLog is one endurance training session. Goal and the aggregate
// fields are nullable: synthetic rest entries carry none of them, and
// aggregates only exist once intervals are logged.
type EnduranceLog struct {
	ID             int        `json:"id"`
	StartedAt      time.Time  `json:"startedAt"`
	WorkoutID      int        `json:"workoutId"`
	Goal           *float64   `json:"goal,omitempty"`
	TotalCompleted *float64   `json:"totalCompleted,omitempty"`
	MaxRate        *float64   `json:"maxRate,omitempty"`
	AvgRate        *float64   `json:"avgRate,omitempty"`
	MinutesElapsed *float64   `json:"minutesElapsed,omitempty"`
	Intervals      []Interval `json:"intervals,omitempty"`
}

// Interval is a per-interval detail row of an endurance session.
// Minutes/Seconds hold the interval's own duration; MachineMinutes/
// MachineSeconds hold the machine's cumulative elapsed time at the end of
// the interval, which is authoritative when present (see NormalizeCumulative).
type Interval struct {
	ID             int       `json:"id"`
	LogID          int       `json:"logId"`
	At             time.Time `json:"at"`
	ExerciseID     int       `json:"exerciseId"`
	Minutes        *int      `json:"minutes,omitempty"`
	Seconds        *float64  `json:"seconds,omitempty"`
	Miles          *float64  `json:"miles,omitempty"`
	Rate           *float64  `json:"rate,omitempty"`
	MachineMinutes *int      `json:"machineMinutes,omitempty"`
	MachineSeconds *float64  `json:"machineSeconds,omitempty"`
}

// StrengthLog is one strength training session.
type StrengthLog struct {
	ID             int         `json:"id"`
	StartedAt      time.Time   `json:"startedAt"`
	RoutineID      int         `json:"routineId"`
	RepGoal        *float64    `json:"repGoal,omitempty"`
	TotalReps      *float64    `json:"totalReps,omitempty"`
	MaxReps        *float64    `json:"maxReps,omitempty"`
	MaxWeight      *float64    `json:"maxWeight,omitempty"`
	MinutesElapsed *float64    `json:"minutesElapsed,omitempty"`
	Sets           []SetDetail `json:"sets,omitempty"`
}

// SetDetail is one set of a strength session.
type SetDetail struct {
	ID         int       `json:"id"`
	LogID      int       `json:"logId"`
	At         time.Time `json:"at"`
	ExerciseID int       `json:"exerciseId"`
	Reps       *int      `json:"reps,omitempty"`
	Weight     *float64  `json:"weight,omitempty"`
}

// SupplementalLog is one supplemental session. TotalCompleted is generic:
// seconds for time-based routines, reps for rep-based ones.
type SupplementalLog struct {
	ID             int                  `json:"id"`
	StartedAt      time.Time            `json:"startedAt"`
	RoutineID      int                  `json:"routineId"`
	Goal           *string              `json:"goal,omitempty"`
	TotalCompleted *float64             `json:"totalCompleted,omitempty"`
	Details        []SupplementalDetail `json:"details,omitempty"`
}

type SupplementalDetail struct {
	ID        int       `json:"id"`
	LogID     int       `json:"logId"`
	At        time.Time `json:"at"`
	UnitCount float64   `json:"unitCount"`
}

// Sample is the slice of a session log the goal engine works with:
// when it was, what was achieved, and the session's rate aggregates.
type Sample struct {
	StartedAt time.Time
	Achieved  *float64
	MaxRate   *float64
	AvgRate   *float64
}
