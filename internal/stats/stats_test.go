// ABOUTME: Tests for score aggregation and summary views.
// ABOUTME: Covers the neutral fallback, volume, trends and the daily snapshot.
package stats

import (
	"context"
	"strings"
	"testing"

	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/logging"
	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/repository"
	"github.com/harperreed/big3/internal/scoring"
)

func setupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	r := repository.New(kv.NewMemory(), logging.Discard())
	r.Hydrate(context.Background())
	return r
}

func TestComputeDefaultProfile(t *testing.T) {
	s := Compute(models.DefaultProfile())

	if !s.Defined {
		t.Fatal("expected defined score")
	}
	if s.TotalKg != 390 {
		t.Errorf("TotalKg = %v, want 390", s.TotalKg)
	}
	want, _ := scoring.Score(78, 390)
	if s.Score != want {
		t.Errorf("Score = %v, want %v", s.Score, want)
	}
	if s.Progress.Current.Tier != scoring.LookupRank(want).Tier {
		t.Errorf("tier = %s", s.Progress.Current.Tier)
	}
}

func TestComputeNeutralFallback(t *testing.T) {
	tests := []struct {
		name string
		p    models.Profile
	}{
		{"bodyweight below range", models.Profile{BodyweightKg: 30, Bench1RM: 50, Squat1RM: 50, Deadlift1RM: 50}},
		{"zero total", models.Profile{BodyweightKg: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(tt.p)
			if s.Defined || s.Score != 0 {
				t.Errorf("got %+v, want undefined zero score", s)
			}
			if s.Progress.Current.Tier != scoring.TierBronze1 || s.Progress.ProgressPercent != 0 {
				t.Errorf("progress = %+v, want bronze1 at 0%%", s.Progress)
			}
		})
	}
}

func TestVolume(t *testing.T) {
	s := models.TrainingSession{Exercises: []models.ExerciseRecord{
		{Name: "Bench", Sets: []models.SetRecord{{Weight: 100, Reps: 5, Completed: true}, {Weight: 100, Reps: 5}}},
		{Name: "Row", Sets: []models.SetRecord{{Weight: 60, Reps: 10, Completed: true}}},
	}}

	if got := Volume(s, true); got != 1100 {
		t.Errorf("Volume(completed) = %v, want 1100", got)
	}
	if got := Volume(s, false); got != 1600 {
		t.Errorf("Volume(all) = %v, want 1600", got)
	}
}

func TestRecentVolumes(t *testing.T) {
	mk := func(date string, w float64) models.TrainingSession {
		return models.TrainingSession{Date: date, Exercises: []models.ExerciseRecord{
			{Name: "Squat", Sets: []models.SetRecord{{Weight: w, Reps: 1, Completed: true}}},
		}}
	}
	sessions := []models.TrainingSession{mk("2024-03-10", 1), mk("2024-03-15", 3), mk("2024-03-12", 2)}

	got := RecentVolumes(sessions, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2024-03-12" || got[1].Date != "2024-03-15" {
		t.Errorf("dates = %s, %s; want oldest first of the two most recent", got[0].Date, got[1].Date)
	}
	if got[1].VolumeKg != 3 || got[1].DoneSets != 1 || got[1].Exercises[0] != "Squat" {
		t.Errorf("got[1] = %+v", got[1])
	}
	if sessions[0].Date != "2024-03-10" {
		t.Error("input reordered")
	}
}

func TestWeightTrend(t *testing.T) {
	weights := []models.WeightEntry{
		{Date: "2024-03-14", Kg: 79.0},
		{Date: "2024-03-16", Kg: 78.2},
		{Date: "2024-03-15", Kg: 78.9},
		{Date: "2024-03-01", Kg: 81.0},
	}

	tr := WeightTrend(weights, 3)
	if len(tr.Points) != 3 || tr.Points[0].Date != "2024-03-14" || tr.Points[2].Date != "2024-03-16" {
		t.Errorf("points = %+v", tr.Points)
	}
	if tr.MinKg != 78.2 || tr.MaxKg != 79.0 {
		t.Errorf("min/max = %v/%v", tr.MinKg, tr.MaxKg)
	}
	if tr.ChangeKg != -0.8 {
		t.Errorf("ChangeKg = %v, want -0.8", tr.ChangeKg)
	}

	if empty := WeightTrend(nil, 14); len(empty.Points) != 0 || empty.MinKg != 0 {
		t.Errorf("empty trend = %+v", empty)
	}
}

func TestDayTotals(t *testing.T) {
	rec := models.DayMealRecord{Entries: []models.MealEntry{
		{Kcal: 500, Protein: 30, Fat: 10, Carbs: 60},
		{Kcal: 250, Protein: 5.5, Fat: 1, Carbs: 50},
	}}
	got := DayTotals(rec)
	if got != (Totals{Kcal: 750, Protein: 35.5, Fat: 11, Carbs: 110}) {
		t.Errorf("DayTotals = %+v", got)
	}
}

func TestTokenBudgetRemaining(t *testing.T) {
	if got := TokenBudgetRemaining(models.TokenUsage{Input: 1000, Output: 500}); got != 998500 {
		t.Errorf("remaining = %d, want 998500", got)
	}
	if got := TokenBudgetRemaining(models.TokenUsage{Input: 900000, Output: 200000}); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestToday(t *testing.T) {
	r := setupTestRepo(t)
	_ = r.AddWeight(models.WeightEntry{Date: "2024-03-15", Kg: 79.5})
	_, _ = r.AddMeal("2024-03-15", models.MealEntry{Name: "Rice", Kcal: 300, Protein: 5})
	_, _ = r.AddMeal("2024-03-14", models.MealEntry{Name: "Cake", Kcal: 900})
	s := models.NewTrainingSession("2024-03-15").WithTemplate(models.DefaultMenu())
	s.Exercises[0].Sets[0].Completed = true
	_ = r.SaveSession(*s)

	snap := Today(r, "2024-03-15")
	if snap.WeightKg == nil || *snap.WeightKg != 79.5 {
		t.Errorf("WeightKg = %v", snap.WeightKg)
	}
	if snap.Nutrition.Kcal != 300 || snap.MealCount != 1 {
		t.Errorf("nutrition = %+v count=%d", snap.Nutrition, snap.MealCount)
	}
	if !snap.HasSession || snap.DoneSets != 1 || snap.TotalSets != 10 {
		t.Errorf("session = %v %d/%d", snap.HasSession, snap.DoneSets, snap.TotalSets)
	}

	empty := Today(r, "2024-01-01")
	if empty.WeightKg != nil || empty.HasSession || empty.MealCount != 0 {
		t.Errorf("empty day = %+v", empty)
	}
}

func TestPlannerContext(t *testing.T) {
	p := models.DefaultProfile()
	goals := models.Goals{models.HorizonMonth: {Text: "ベンチ110kg"}}

	ctx := PlannerContext(p, Compute(p), goals)
	for _, want := range []string{"体重: 78kg", "ベンチ1RM: 100kg", "週トレ日数: 4日", "今月: ベンチ110kg", "日本語で回答"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q", want)
		}
	}

	bad := models.Profile{BodyweightKg: 20}
	if !strings.Contains(PlannerContext(bad, Compute(bad), nil), "未算出") {
		t.Error("undefined score should be marked")
	}
}
