// ABOUTME: Training session, exercise and set records.
// ABOUTME: Sessions are built from a menu template and completed once.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SetRecord is one set of an exercise.
type SetRecord struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	Reps      int     `json:"reps" yaml:"reps"`
	Completed bool    `json:"completed" yaml:"completed"`
}

// ExerciseRecord is an exercise and its ordered sets.
type ExerciseRecord struct {
	Name string      `json:"name" yaml:"name"`
	Sets []SetRecord `json:"sets" yaml:"sets"`
}

// TrainingSession is a day's workout.
type TrainingSession struct {
	ID        string           `json:"id" yaml:"id"`
	Date      string           `json:"date" yaml:"date"`
	Exercises []ExerciseRecord `json:"exercises" yaml:"exercises"`
	Completed bool             `json:"completed" yaml:"completed"`
	SavedAt   *time.Time       `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
}

// Default set values for a newly added set or exercise.
const (
	DefaultSetWeightKg = 60
	DefaultSetReps     = 8
)

// NewTrainingSession creates an empty session for a date with a generated id.
func NewTrainingSession(date string) *TrainingSession {
	return &TrainingSession{
		ID:        uuid.New().String(),
		Date:      date,
		Exercises: []ExerciseRecord{},
	}
}

// WithTemplate fills the session with uncompleted sets from a menu template.
func (s *TrainingSession) WithTemplate(items []MenuTemplateItem) *TrainingSession {
	for _, it := range items {
		ex := ExerciseRecord{Name: it.Exercise, Sets: make([]SetRecord, 0, it.Sets)}
		for i := 0; i < it.Sets; i++ {
			ex.Sets = append(ex.Sets, SetRecord{Weight: it.WeightKg, Reps: it.Reps})
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s
}

// Clone deep-copies the session.
func (s TrainingSession) Clone() TrainingSession {
	out := s
	out.Exercises = make([]ExerciseRecord, len(s.Exercises))
	for i, ex := range s.Exercises {
		out.Exercises[i] = ExerciseRecord{Name: ex.Name, Sets: append([]SetRecord(nil), ex.Sets...)}
	}
	if s.SavedAt != nil {
		t := *s.SavedAt
		out.SavedAt = &t
	}
	return out
}

// SetCounts returns completed and total set counts.
func (s TrainingSession) SetCounts() (done, total int) {
	for _, ex := range s.Exercises {
		for _, st := range ex.Sets {
			total++
			if st.Completed {
				done++
			}
		}
	}
	return done, total
}

// Template derives the menu template for this session: one item per exercise,
// with reps and weight taken from the first set.
func (s TrainingSession) Template() []MenuTemplateItem {
	items := make([]MenuTemplateItem, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		it := MenuTemplateItem{
			Exercise: ex.Name,
			Sets:     len(ex.Sets),
			Reps:     DefaultSetReps,
			WeightKg: DefaultSetWeightKg,
		}
		if len(ex.Sets) > 0 {
			it.Reps = ex.Sets[0].Reps
			it.WeightKg = ex.Sets[0].Weight
		}
		items = append(items, it)
	}
	return items
}

// Weekday returns the session date's weekday, or false if the date is malformed.
func (s TrainingSession) Weekday() (time.Weekday, bool) {
	t, err := ParseDate(s.Date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// Exercise returns the index of the exercise named name, ignoring case and
// surrounding space, or -1.
func (s TrainingSession) Exercise(name string) int {
	name = strings.TrimSpace(name)
	for i, ex := range s.Exercises {
		if strings.EqualFold(strings.TrimSpace(ex.Name), name) {
			return i
		}
	}
	return -1
}

// LogSet records a set for exercise, adding the exercise if missing. index is
// 1-based; 0 appends. It returns the 1-based position of the set.
func (s *TrainingSession) LogSet(exercise string, index int, set SetRecord) (int, error) {
	exercise = strings.TrimSpace(exercise)
	if exercise == "" {
		return 0, fmt.Errorf("exercise name is required")
	}
	if set.Weight < 0 || set.Reps < 0 {
		return 0, fmt.Errorf("weight and reps must be non-negative")
	}

	i := s.Exercise(exercise)
	if i < 0 {
		s.Exercises = append(s.Exercises, ExerciseRecord{Name: exercise, Sets: []SetRecord{}})
		i = len(s.Exercises) - 1
	}
	ex := &s.Exercises[i]

	switch {
	case index == 0:
		ex.Sets = append(ex.Sets, set)
		return len(ex.Sets), nil
	case index > 0 && index <= len(ex.Sets):
		ex.Sets[index-1] = set
		return index, nil
	default:
		return 0, fmt.Errorf("%s has %d sets, no set %d", ex.Name, len(ex.Sets), index)
	}
}
