package trainlog

import (
	"math"

	"github.com/kgriffin/trainloop/internal/plans"
	"github.com/kgriffin/trainloop/pkg"
)

// IntervalMinutes returns the interval's own duration in minutes,
// or nil when neither minutes nor seconds were logged.
func IntervalMinutes(iv Interval) *float64 {
	if iv.Minutes == nil && iv.Seconds == nil {
		return nil
	}
	var m, s float64
	if iv.Minutes != nil {
		m = float64(*iv.Minutes)
	}
	if iv.Seconds != nil {
		s = *iv.Seconds
	}
	total := m + s/60.0
	return &total
}

// MachineMinutes returns the machine's cumulative elapsed minutes at this
// interval, or nil when no cumulative marker was logged.
func MachineMinutes(iv Interval) *float64 {
	if iv.MachineMinutes == nil && iv.MachineSeconds == nil {
		return nil
	}
	var m, s float64
	if iv.MachineMinutes != nil {
		m = float64(*iv.MachineMinutes)
	}
	if iv.MachineSeconds != nil {
		s = *iv.MachineSeconds
	}
	total := m + s/60.0
	return &total
}

func setIntervalFromMinutes(iv *Interval, total float64) {
	total = math.Max(0, total)
	m := int(total)
	s := round3((total - float64(m)) * 60.0)
	iv.Minutes = &m
	iv.Seconds = &s
}

func setMachineFromMinutes(iv *Interval, cumulative float64) {
	cumulative = math.Max(0, cumulative)
	m := int(cumulative)
	s := round3((cumulative - float64(m)) * 60.0)
	iv.MachineMinutes = &m
	iv.MachineSeconds = &s
}

func recalcRate(iv *Interval) {
	mins := IntervalMinutes(*iv)
	if iv.Miles == nil || mins == nil || *mins <= 0 {
		iv.Rate = nil
		return
	}
	rate := round3(*iv.Miles / (*mins / 60.0))
	iv.Rate = &rate
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// NormalizeCumulative reconciles interval durations with the machine's
// cumulative time markers, in place. The first row is accepted as sent: a
// provided cumulative marker is kept (clamped to >= 0) and the interval
// fields are left untouched. From the second row on the cumulative marker
// is authoritative and non-decreasing, and the interval duration becomes
// the delta to the previous marker; rows without a marker have one derived
// from their interval duration. Per-interval rates are recomputed from the
// normalized durations. Rows must already be ordered by time.
func NormalizeCumulative(intervals []Interval) {
	prev := 0.0
	for i := range intervals {
		iv := &intervals[i]
		machine := MachineMinutes(*iv)
		interval := IntervalMinutes(*iv)

		if i == 0 {
			var cumulative float64
			if machine != nil {
				cumulative = math.Max(0, *machine)
			} else if interval != nil {
				cumulative = math.Max(0, *interval)
			}
			setMachineFromMinutes(iv, cumulative)
			recalcRate(iv)
			prev = cumulative
			continue
		}

		if machine != nil {
			cumulative := *machine
			if cumulative+pkg.Epsilon < prev {
				cumulative = prev
			}
			setMachineFromMinutes(iv, cumulative)
			setIntervalFromMinutes(iv, math.Max(0, cumulative-prev))
			prev = cumulative
		} else {
			var delta float64
			if interval != nil {
				delta = *interval
			}
			cumulative := prev + delta
			setMachineFromMinutes(iv, cumulative)
			prev = cumulative
		}

		recalcRate(iv)
	}
}

// Aggregates are the derived per-log fields recomputed from detail rows.
type Aggregates struct {
	TotalCompleted *float64
	MaxRate        *float64
	AvgRate        *float64
	MinutesElapsed float64
}

// ComputeAggregates derives a log's aggregates from its intervals: total
// completed in the workout's native unit, peak rate, average rate weighted
// by interval duration, and elapsed time taken from the last cumulative
// marker. It is a full recompute over all rows, never an incremental patch,
// so repeated runs over the same rows give the same result.
func ComputeAggregates(unit plans.Unit, intervals []Interval) Aggregates {
	var (
		totalMinutes float64
		totalMiles   float64
		haveMinutes  bool
		haveMiles    bool

		maxRate     *float64
		weightedNum float64
		weightedDen float64
	)

	for _, iv := range intervals {
		mins := IntervalMinutes(iv)
		if mins != nil {
			haveMinutes = true
			totalMinutes += *mins
		}
		if iv.Miles != nil {
			haveMiles = true
			totalMiles += *iv.Miles
		}
		if iv.Rate != nil {
			rate := *iv.Rate
			if mins != nil && *mins > 0 {
				hours := *mins / 60.0
				weightedNum += rate * hours
				weightedDen += hours
			} else {
				weightedNum += rate
				weightedDen += 1.0
			}
			if maxRate == nil || rate > *maxRate {
				maxRate = &rate
			}
		}
	}

	var avgRate *float64
	if weightedDen > 0 {
		avg := weightedNum / weightedDen
		avgRate = &avg
	}

	var totalCompleted *float64
	switch unit.Kind {
	case plans.UnitTime:
		if haveMinutes {
			totalCompleted = &totalMinutes
		}
	case plans.UnitDistance:
		milesPerUnit := unit.MilesPerUnit()
		if haveMiles && milesPerUnit > 0 {
			total := totalMiles / milesPerUnit
			totalCompleted = &total
		}
	}

	// fall back when the unit is missing or mismatched
	if totalCompleted == nil {
		if haveMinutes {
			totalCompleted = &totalMinutes
		} else if haveMiles {
			totalCompleted = &totalMiles
		}
	}

	var minutesElapsed float64
	if len(intervals) > 0 {
		if last := MachineMinutes(intervals[len(intervals)-1]); last != nil {
			minutesElapsed = *last
		}
	}

	return Aggregates{
		TotalCompleted: totalCompleted,
		MaxRate:        maxRate,
		AvgRate:        avgRate,
		MinutesElapsed: minutesElapsed,
	}
}

// StrengthAggregates are the derived per-log fields for strength sessions.
type StrengthAggregates struct {
	TotalReps      *float64
	MaxReps        *float64
	MaxWeight      *float64
	MinutesElapsed *float64
}

// ComputeStrengthAggregates derives a strength log's aggregates from its
// sets: total and peak reps, peak weight, and elapsed time as the span
// between the first and last set. Full recompute, same as the endurance one.
func ComputeStrengthAggregates(sets []SetDetail) StrengthAggregates {
	var agg StrengthAggregates

	var totalReps float64
	haveReps := false
	for _, s := range sets {
		if s.Reps != nil {
			haveReps = true
			reps := float64(*s.Reps)
			totalReps += reps
			if agg.MaxReps == nil || reps > *agg.MaxReps {
				agg.MaxReps = &reps
			}
		}
		if s.Weight != nil {
			w := *s.Weight
			if agg.MaxWeight == nil || w > *agg.MaxWeight {
				agg.MaxWeight = &w
			}
		}
	}
	if haveReps {
		agg.TotalReps = &totalReps
	}

	if len(sets) > 1 {
		elapsed := sets[len(sets)-1].At.Sub(sets[0].At).Minutes()
		if elapsed >= 0 {
			agg.MinutesElapsed = &elapsed
		}
	}

	return agg
}
