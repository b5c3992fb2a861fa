// ABOUTME: Pure merge policies for each collection.
// ABOUTME: Every function returns a new slice and never mutates its input.
package repository

import "github.com/harperreed/big3/internal/models"

// UpsertSession replaces the session with the same id in place, or prepends s.
func UpsertSession(list []models.TrainingSession, s models.TrainingSession) []models.TrainingSession {
	for i, x := range list {
		if x.ID == s.ID {
			out := append([]models.TrainingSession(nil), list...)
			out[i] = s
			return out
		}
	}
	out := make([]models.TrainingSession, 0, len(list)+1)
	out = append(out, s)
	return append(out, list...)
}

// AddMealEntry appends e to the record for date. A missing record is created
// at the position that keeps dates in descending order.
func AddMealEntry(list []models.DayMealRecord, date string, e models.MealEntry) []models.DayMealRecord {
	out := make([]models.DayMealRecord, 0, len(list)+1)
	for i, r := range list {
		if r.Date == date {
			out = append(out, list...)
			entries := make([]models.MealEntry, 0, len(r.Entries)+1)
			entries = append(entries, r.Entries...)
			out[i] = models.DayMealRecord{Date: date, Entries: append(entries, e)}
			return out
		}
	}

	rec := models.DayMealRecord{Date: date, Entries: []models.MealEntry{e}}
	inserted := false
	for _, r := range list {
		if !inserted && r.Date < date {
			out = append(out, rec)
			inserted = true
		}
		out = append(out, r)
	}
	if !inserted {
		out = append(out, rec)
	}
	return out
}

// RemoveMealEntry drops entry id from the record for date.
// The day record itself is kept even when it becomes empty.
func RemoveMealEntry(list []models.DayMealRecord, date, id string) ([]models.DayMealRecord, bool) {
	return mapDay(list, date, func(entries []models.MealEntry) ([]models.MealEntry, bool) {
		out := make([]models.MealEntry, 0, len(entries))
		found := false
		for _, e := range entries {
			if e.ID == id {
				found = true
				continue
			}
			out = append(out, e)
		}
		return out, found
	})
}

// UpdateMealEntry replaces the entry with e.ID on date.
func UpdateMealEntry(list []models.DayMealRecord, date string, e models.MealEntry) ([]models.DayMealRecord, bool) {
	return mapDay(list, date, func(entries []models.MealEntry) ([]models.MealEntry, bool) {
		out := append([]models.MealEntry(nil), entries...)
		for i, x := range out {
			if x.ID == e.ID {
				out[i] = e
				return out, true
			}
		}
		return out, false
	})
}

func mapDay(list []models.DayMealRecord, date string, fn func([]models.MealEntry) ([]models.MealEntry, bool)) ([]models.DayMealRecord, bool) {
	for i, r := range list {
		if r.Date != date {
			continue
		}
		entries, ok := fn(r.Entries)
		if !ok {
			return list, false
		}
		out := append([]models.DayMealRecord(nil), list...)
		out[i] = models.DayMealRecord{Date: date, Entries: entries}
		return out, true
	}
	return list, false
}

// PutWeight drops any entry with e's date and prepends e.
func PutWeight(list []models.WeightEntry, e models.WeightEntry) []models.WeightEntry {
	out := make([]models.WeightEntry, 0, len(list)+1)
	out = append(out, e)
	for _, x := range list {
		if x.Date != e.Date {
			out = append(out, x)
		}
	}
	return out
}
