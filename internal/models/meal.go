// ABOUTME: Meal entries grouped into one record per calendar day.
// ABOUTME: Nutrition values are per entry; totals are computed by stats.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the HH:mm clock format of a meal entry.
const TimeLayout = "15:04"

// MealEntry is one logged food.
type MealEntry struct {
	ID      string   `json:"id" yaml:"id"`
	Time    string   `json:"time" yaml:"time"`
	Name    string   `json:"name" yaml:"name"`
	Kcal    float64  `json:"kcal" yaml:"kcal"`
	Protein float64  `json:"protein" yaml:"protein"`
	Fat     float64  `json:"fat" yaml:"fat"`
	Carbs   float64  `json:"carbs" yaml:"carbs"`
	Amount  *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Unit    *string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// NewMealEntry creates an entry stamped with the current clock time.
func NewMealEntry(name string, kcal, protein, fat, carbs float64) *MealEntry {
	return &MealEntry{
		ID:      uuid.New().String(),
		Time:    time.Now().Format(TimeLayout),
		Name:    name,
		Kcal:    kcal,
		Protein: protein,
		Fat:     fat,
		Carbs:   carbs,
	}
}

// WithTime sets the HH:mm time.
func (m *MealEntry) WithTime(hhmm string) *MealEntry {
	m.Time = hhmm
	return m
}

// WithAmount records the portion size.
func (m *MealEntry) WithAmount(amount float64, unit string) *MealEntry {
	m.Amount = &amount
	if unit != "" {
		m.Unit = &unit
	}
	return m
}

// Validate checks the nutrition values are non-negative.
func (m MealEntry) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("meal name is required")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"kcal", m.Kcal}, {"protein", m.Protein}, {"fat", m.Fat}, {"carbs", m.Carbs}} {
		if f.v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", f.name, f.v)
		}
	}
	if m.Amount != nil && *m.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %g", *m.Amount)
	}
	return nil
}

// DayMealRecord holds every meal logged on one date.
type DayMealRecord struct {
	Date    string      `json:"date" yaml:"date"`
	Entries []MealEntry `json:"entries" yaml:"entries"`
}

// WeightEntry is one bodyweight measurement; at most one per date.
type WeightEntry struct {
	Date string  `json:"date" yaml:"date"`
	Kg   float64 `json:"kg" yaml:"kg"`
}

// Validate checks the date format and that kg is positive.
func (w WeightEntry) Validate() error {
	if _, err := ParseDate(w.Date); err != nil {
		return err
	}
	if w.Kg <= 0 {
		return fmt.Errorf("weight must be positive, got %g", w.Kg)
	}
	return nil
}
