// ABOUTME: Athlete profile with bodyweight and the three competition-lift maxes.
// ABOUTME: Also holds the calendar-day helpers every dated record uses.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for every dated record.
const DateLayout = "2006-01-02"

// Lift identifies one of the three competition lifts.
type Lift string

const (
	LiftBench    Lift = "bench"
	LiftSquat    Lift = "squat"
	LiftDeadlift Lift = "deadlift"
)

// Lifts lists the competition lifts in display order.
var Lifts = []Lift{LiftBench, LiftSquat, LiftDeadlift}

// Profile is the single athlete's current state.
type Profile struct {
	Name         string  `json:"name" yaml:"name"`
	BodyweightKg float64 `json:"bodyweightKg" yaml:"bodyweightKg"`
	Bench1RM     float64 `json:"bench1RM" yaml:"bench1RM"`
	Squat1RM     float64 `json:"squat1RM" yaml:"squat1RM"`
	Deadlift1RM  float64 `json:"deadlift1RM" yaml:"deadlift1RM"`
	TrainingDays int     `json:"trainingDays" yaml:"trainingDays"`
}

// DefaultProfile is what a fresh store starts from.
func DefaultProfile() Profile {
	return Profile{
		Name:         "Athlete",
		BodyweightKg: 78,
		Bench1RM:     100,
		Squat1RM:     130,
		Deadlift1RM:  160,
		TrainingDays: 4,
	}
}

// TotalKg sums the three lift maxes.
func (p Profile) TotalKg() float64 {
	return p.Bench1RM + p.Squat1RM + p.Deadlift1RM
}

// OneRepMax returns the stored max for a lift.
func (p Profile) OneRepMax(l Lift) float64 {
	switch l {
	case LiftBench:
		return p.Bench1RM
	case LiftSquat:
		return p.Squat1RM
	case LiftDeadlift:
		return p.Deadlift1RM
	}
	return 0
}

// WithOneRepMax returns a copy of p with the lift's max replaced.
func (p Profile) WithOneRepMax(l Lift, kg float64) Profile {
	switch l {
	case LiftBench:
		p.Bench1RM = kg
	case LiftSquat:
		p.Squat1RM = kg
	case LiftDeadlift:
		p.Deadlift1RM = kg
	}
	return p
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.BodyweightKg <= 0 {
		return fmt.Errorf("bodyweight must be positive, got %g", p.BodyweightKg)
	}
	for _, l := range Lifts {
		if p.OneRepMax(l) < 0 {
			return fmt.Errorf("%s 1RM must not be negative, got %g", l, p.OneRepMax(l))
		}
	}
	if p.TrainingDays < 0 || p.TrainingDays > 7 {
		return fmt.Errorf("training days must be 0-7, got %d", p.TrainingDays)
	}
	return nil
}

// ParseLift accepts a lift name such as "bench" or "deadlift".
func ParseLift(s string) (Lift, error) {
	for _, l := range Lifts {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown lift %q (valid: bench, squat, deadlift)", s)
}

// FormatDate renders t as a calendar day in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate validates and parses a calendar-day string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// Today returns the local calendar day.
func Today() string {
	return FormatDate(time.Now())
}
