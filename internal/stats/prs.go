// ABOUTME: One-rep-max auto-update from completed sessions.
// ABOUTME: Maps exercise names to lifts and raises stored maxes monotonically.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/scoring"
)

var liftNames = map[models.Lift][]string{
	models.LiftBench:    {"ベンチプレス", "ベンチ", "bench", "bench press"},
	models.LiftSquat:    {"スクワット", "squat", "back squat"},
	models.LiftDeadlift: {"デッドリフト", "deadlift", "conventional deadlift"},
}

// LiftForExercise maps an exercise name to a competition lift, ignoring case
// and surrounding space.
func LiftForExercise(name string) (models.Lift, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for lift, names := range liftNames {
		for _, n := range names {
			if n == name {
				return lift, true
			}
		}
	}
	return "", false
}

// LiftUpdate records one raised max.
type LiftUpdate struct {
	Lift     models.Lift `json:"lift"`
	Exercise string      `json:"exercise"`
	Previous float64     `json:"previous"`
	New      float64     `json:"new"`
}

func (u LiftUpdate) String() string {
	return fmt.Sprintf("%s 1RM %g → %g kg", u.Lift, u.Previous, u.New)
}

// BestEstimate returns the highest estimated 1RM among qualifying sets of ex.
// A set qualifies with weight > 0 and 1-30 reps; strict also requires Completed.
func BestEstimate(ex models.ExerciseRecord, strict bool) (float64, bool) {
	best, found := 0.0, false
	for _, st := range ex.Sets {
		if strict && !st.Completed {
			continue
		}
		est, err := scoring.EstimateOneRepMax(st.Weight, st.Reps)
		if err != nil {
			continue
		}
		if est > best {
			best, found = est, true
		}
	}
	return best, found
}

// ApplySessionPRs raises the profile's maxes where the session beats them.
// The candidate is the best estimate rounded to whole kg and replaces the
// stored max only when strictly greater, so reapplying is a no-op.
func ApplySessionPRs(p models.Profile, s models.TrainingSession, strict bool) (models.Profile, []LiftUpdate) {
	var updates []LiftUpdate
	for _, ex := range s.Exercises {
		lift, ok := LiftForExercise(ex.Name)
		if !ok {
			continue
		}
		best, ok := BestEstimate(ex, strict)
		if !ok {
			continue
		}
		candidate := math.Round(best)
		current := p.OneRepMax(lift)
		if candidate > current {
			p = p.WithOneRepMax(lift, candidate)
			updates = append(updates, LiftUpdate{Lift: lift, Exercise: ex.Name, Previous: current, New: candidate})
		}
	}
	return p, updates
}

// SessionStore is the subset of the repository session completion writes to.
type SessionStore interface {
	Profile() models.Profile
	SaveProfile(p models.Profile) error
	SaveSession(s models.TrainingSession) error
	SetMenuDay(day time.Weekday, items []models.MenuTemplateItem) error
}

// Completion is the outcome of finishing a session.
type Completion struct {
	Session models.TrainingSession `json:"session"`
	Profile models.Profile         `json:"profile"`
	Updates []LiftUpdate           `json:"updates"`
}

// CompleteSession marks s completed, stores it, applies any new maxes to the
// profile and keeps its exercises as the template for its weekday.
func CompleteSession(store SessionStore, s models.TrainingSession, now time.Time, strict bool) (Completion, error) {
	s = s.Clone()
	s.Completed = true
	s.SavedAt = &now
	if err := store.SaveSession(s); err != nil {
		return Completion{}, fmt.Errorf("save session: %w", err)
	}

	profile, updates := ApplySessionPRs(store.Profile(), s, strict)
	if len(updates) > 0 {
		if err := store.SaveProfile(profile); err != nil {
			return Completion{}, fmt.Errorf("save profile: %w", err)
		}
	}

	if day, ok := s.Weekday(); ok && len(s.Exercises) > 0 {
		if err := store.SetMenuDay(day, s.Template()); err != nil {
			return Completion{}, fmt.Errorf("save menu template: %w", err)
		}
	}

	return Completion{Session: s, Profile: profile, Updates: updates}, nil
}
