// ABOUTME: Derived views over the record store: score, rank progress, volume, trends.
// ABOUTME: Everything is recomputed on demand from the current records; nothing is cached.
package stats

import (
	"math"
	"sort"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/scoring"
)

// TokenBudget is the planner's advisory token allowance.
const TokenBudget = 1_000_000

// Stats is the athlete's current standing.
type Stats struct {
	TotalKg float64 `json:"totalKg"`
	Score   float64 `json:"score"`
	// Defined is false when the profile is outside the score formula's domain.
	Defined  bool             `json:"defined"`
	Progress scoring.Progress `json:"progress"`
}

// Compute derives score and rank progress from the profile. Out-of-domain
// profiles yield the neutral state (score 0, lowest tier) rather than an error.
func Compute(p models.Profile) Stats {
	total := p.TotalKg()
	score, err := scoring.Score(p.BodyweightKg, total)
	defined := true
	if err != nil {
		score, defined = 0, false
	}
	return Stats{
		TotalKg:  total,
		Score:    score,
		Defined:  defined,
		Progress: scoring.ProgressToNext(score),
	}
}

// Volume sums weight × reps over a session's sets.
func Volume(s models.TrainingSession, completedOnly bool) float64 {
	var v float64
	for _, ex := range s.Exercises {
		for _, st := range ex.Sets {
			if completedOnly && !st.Completed {
				continue
			}
			v += st.Weight * float64(st.Reps)
		}
	}
	return v
}

// SessionVolume summarizes one session.
type SessionVolume struct {
	Date      string   `json:"date"`
	VolumeKg  float64  `json:"volumeKg"`
	DoneSets  int      `json:"doneSets"`
	TotalSets int      `json:"totalSets"`
	Exercises []string `json:"exercises"`
}

// RecentVolumes returns completed-set volume for the n most recent sessions
// by date, oldest first.
func RecentVolumes(sessions []models.TrainingSession, n int) []SessionVolume {
	sorted := append([]models.TrainingSession(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]SessionVolume, len(sorted))
	for i, s := range sorted {
		done, total := s.SetCounts()
		names := make([]string, 0, len(s.Exercises))
		for _, ex := range s.Exercises {
			names = append(names, ex.Name)
		}
		out[len(sorted)-1-i] = SessionVolume{
			Date:      s.Date,
			VolumeKg:  Volume(s, true),
			DoneSets:  done,
			TotalSets: total,
			Exercises: names,
		}
	}
	return out
}

// Trend is a window of bodyweight entries, oldest first.
type Trend struct {
	Points []models.WeightEntry `json:"points"`
	MinKg  float64              `json:"minKg"`
	MaxKg  float64              `json:"maxKg"`
	// ChangeKg is last minus first, rounded to 0.1 kg.
	ChangeKg float64 `json:"changeKg"`
}

// WeightTrend returns the n most recent entries by date, oldest first.
func WeightTrend(weights []models.WeightEntry, n int) Trend {
	sorted := append([]models.WeightEntry(nil), weights...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	t := Trend{Points: sorted}
	if len(sorted) == 0 {
		return t
	}
	t.MinKg, t.MaxKg = math.Inf(1), math.Inf(-1)
	for _, w := range sorted {
		t.MinKg = math.Min(t.MinKg, w.Kg)
		t.MaxKg = math.Max(t.MaxKg, w.Kg)
	}
	t.ChangeKg = math.Round((sorted[len(sorted)-1].Kg-sorted[0].Kg)*10) / 10
	return t
}

// Totals is summed nutrition.
type Totals struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carbs   float64 `json:"carbs"`
}

// DayTotals sums a day's entries.
func DayTotals(rec models.DayMealRecord) Totals {
	var t Totals
	for _, e := range rec.Entries {
		t.Kcal += e.Kcal
		t.Protein += e.Protein
		t.Fat += e.Fat
		t.Carbs += e.Carbs
	}
	return t
}

// TokenBudgetRemaining is the advisory allowance left after totals, never negative.
func TokenBudgetRemaining(totals models.TokenUsage) int {
	if r := TokenBudget - totals.Total(); r > 0 {
		return r
	}
	return 0
}
