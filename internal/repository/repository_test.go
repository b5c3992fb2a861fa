// ABOUTME: Tests for the Repository over the memory backend.
// ABOUTME: Covers validation, hydration, side effects and persistence across instances.
package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/logging"
	"github.com/harperreed/big3/internal/models"
)

func setupTestRepo(t *testing.T) (*Repository, *kv.MemoryBackend) {
	t.Helper()
	mem := kv.NewMemory()
	r := New(mem, logging.Discard())
	r.Hydrate(context.Background())
	return r, mem
}

func reopen(t *testing.T, mem kv.Backend, opts ...Option) *Repository {
	t.Helper()
	r := New(mem, logging.Discard(), opts...)
	r.Hydrate(context.Background())
	return r
}

func TestNewRepositoryDefaults(t *testing.T) {
	r := New(kv.NewMemory(), nil)

	if r.Profile() != models.DefaultProfile() {
		t.Errorf("Profile = %+v, want default", r.Profile())
	}
	if len(r.Sessions()) != 0 || len(r.Meals()) != 0 || len(r.Weights()) != 0 {
		t.Error("expected empty collections before hydration")
	}
}

func TestRepositoryHydrateAsync(t *testing.T) {
	mem := kv.NewMemory()
	first := reopen(t, mem)
	if err := first.AddWeight(models.WeightEntry{Date: "2024-03-15", Kg: 82}); err != nil {
		t.Fatalf("AddWeight failed: %v", err)
	}

	r := New(mem, logging.Discard())
	r.HydrateAsync(context.Background())
	select {
	case <-r.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("repository never became ready")
	}
	if r.Profile().BodyweightKg != 82 {
		t.Errorf("BodyweightKg = %v, want 82", r.Profile().BodyweightKg)
	}
}

func TestRepositoryPrefix(t *testing.T) {
	mem := kv.NewMemory()
	r := reopen(t, mem, WithPrefix("big3:"))
	if err := r.SaveProfile(models.DefaultProfile()); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	if _, err := mem.Get("big3:profile"); err != nil {
		t.Errorf("expected prefixed key: %v", err)
	}
	if _, err := mem.Get("profile"); !errors.Is(err, kv.ErrNotFound) {
		t.Error("unprefixed key should not be written")
	}
}

func TestSaveProfileValidation(t *testing.T) {
	r, _ := setupTestRepo(t)
	p := models.DefaultProfile()
	p.BodyweightKg = 0

	err := r.SaveProfile(p)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("SaveProfile error = %v, want ErrInvalid", err)
	}
	if r.Profile().BodyweightKg != 78 {
		t.Error("invalid profile should not be stored")
	}
}

func TestSaveSessionPersists(t *testing.T) {
	r, mem := setupTestRepo(t)
	s := models.NewTrainingSession("2024-03-15").WithTemplate(models.DefaultMenu())

	if err := r.SaveSession(*s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	s.Completed = true
	if err := r.SaveSession(*s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	again := reopen(t, mem)
	got, ok := again.SessionByDate("2024-03-15")
	if !ok || !got.Completed || len(again.Sessions()) != 1 {
		t.Errorf("got %+v (%v), sessions=%d", got, ok, len(again.Sessions()))
	}
}

func TestSaveSessionValidation(t *testing.T) {
	r, _ := setupTestRepo(t)
	tests := []struct {
		name string
		s    models.TrainingSession
	}{
		{"missing id", models.TrainingSession{Date: "2024-03-15"}},
		{"bad date", models.TrainingSession{ID: "x", Date: "tomorrow"}},
		{"negative reps", models.TrainingSession{ID: "x", Date: "2024-03-15", Exercises: []models.ExerciseRecord{
			{Name: "Bench", Sets: []models.SetRecord{{Weight: 100, Reps: -1}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.SaveSession(tt.s); !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSessionByIDPrefix(t *testing.T) {
	r, _ := setupTestRepo(t)
	_ = r.SaveSession(models.TrainingSession{ID: "abc123", Date: "2024-03-15"})
	_ = r.SaveSession(models.TrainingSession{ID: "abd456", Date: "2024-03-16"})

	if s, err := r.SessionByID("abc"); err != nil || s.Date != "2024-03-15" {
		t.Errorf("SessionByID(abc) = %+v, %v", s, err)
	}
	if _, err := r.SessionByID("ab"); err == nil {
		t.Error("expected ambiguous prefix error")
	}
	if _, err := r.SessionByID("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSessionByDateReturnsCopy(t *testing.T) {
	r, _ := setupTestRepo(t)
	s := models.NewTrainingSession("2024-03-15").WithTemplate(models.DefaultMenu())
	_ = r.SaveSession(*s)

	got, _ := r.SessionByDate("2024-03-15")
	got.Exercises[0].Sets[0].Weight = 1

	again, _ := r.SessionByDate("2024-03-15")
	if again.Exercises[0].Sets[0].Weight != 85 {
		t.Error("SessionByDate leaked internal state")
	}
}

func TestSessionForDate(t *testing.T) {
	r, _ := setupTestRepo(t)
	friday := []models.MenuTemplateItem{{Exercise: "デッドリフト", Sets: 2, Reps: 3, WeightKg: 180}}
	if err := r.SetMenuDay(time.Friday, friday); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		date       string
		wantStored bool
		wantFirst  string
		wantSets   int
	}{
		{"weekday template", "2024-03-15", false, "デッドリフト", 2},
		{"default menu fallback", "2024-03-14", false, "ベンチプレス", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, stored, err := r.SessionForDate(tt.date)
			if err != nil {
				t.Fatalf("SessionForDate failed: %v", err)
			}
			if stored != tt.wantStored || s.Date != tt.date {
				t.Errorf("stored = %v, date = %s", stored, s.Date)
			}
			if len(s.Exercises) == 0 || s.Exercises[0].Name != tt.wantFirst || len(s.Exercises[0].Sets) != tt.wantSets {
				t.Errorf("Exercises = %+v", s.Exercises)
			}
		})
	}
	if len(r.Sessions()) != 0 {
		t.Error("SessionForDate should not save")
	}

	saved := models.NewTrainingSession("2024-03-15")
	if err := r.SaveSession(*saved); err != nil {
		t.Fatal(err)
	}
	s, stored, err := r.SessionForDate("2024-03-15")
	if err != nil || !stored || s.ID != saved.ID || len(s.Exercises) != 0 {
		t.Errorf("stored session = %+v, %v, %v", s, stored, err)
	}

	if _, _, err := r.SessionForDate("2024-13-40"); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad date err = %v, want ErrInvalid", err)
	}
}

func TestAddMeal(t *testing.T) {
	r, mem := setupTestRepo(t)

	e, err := r.AddMeal("2024-03-15", models.MealEntry{Name: "Chicken", Kcal: 300, Protein: 40})
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if e.ID == "" || e.Time == "" {
		t.Errorf("expected id and time to be assigned, got %+v", e)
	}

	again := reopen(t, mem)
	rec, ok := again.MealsOn("2024-03-15")
	if !ok || len(rec.Entries) != 1 || rec.Entries[0].Kcal != 300 {
		t.Errorf("MealsOn = %+v, %v", rec, ok)
	}
}

func TestAddMealValidation(t *testing.T) {
	r, _ := setupTestRepo(t)

	if _, err := r.AddMeal("2024-03-15", models.MealEntry{Name: "Bad", Kcal: -5}); !errors.Is(err, ErrInvalid) {
		t.Errorf("negative kcal error = %v, want ErrInvalid", err)
	}
	if _, err := r.AddMeal("15-03-2024", models.MealEntry{Name: "Rice"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad date error = %v, want ErrInvalid", err)
	}
	if len(r.Meals()) != 0 {
		t.Error("invalid meals should not be stored")
	}
}

func TestRemoveAndUpdateMeal(t *testing.T) {
	r, _ := setupTestRepo(t)
	e, _ := r.AddMeal("2024-03-15", models.MealEntry{ID: "meal-1", Name: "Rice", Kcal: 250})
	_, _ = r.AddMeal("2024-03-15", models.MealEntry{ID: "meal-2", Name: "Egg", Kcal: 80})

	e.Kcal = 300
	if err := r.UpdateMeal("2024-03-15", e); err != nil {
		t.Fatalf("UpdateMeal failed: %v", err)
	}
	rec, _ := r.MealsOn("2024-03-15")
	if rec.Entries[0].Kcal != 300 {
		t.Errorf("Kcal = %v, want 300", rec.Entries[0].Kcal)
	}

	if err := r.RemoveMeal("2024-03-15", "meal"); err == nil {
		t.Error("expected ambiguous prefix error")
	}
	if err := r.RemoveMeal("2024-03-15", "meal-2"); err != nil {
		t.Fatalf("RemoveMeal failed: %v", err)
	}
	rec, _ = r.MealsOn("2024-03-15")
	if len(rec.Entries) != 1 || rec.Entries[0].ID != "meal-1" {
		t.Errorf("entries = %+v", rec.Entries)
	}

	if err := r.RemoveMeal("2024-03-15", "meal-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if err := r.UpdateMeal("2024-03-16", e); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAddWeightUpdatesProfile(t *testing.T) {
	r, mem := setupTestRepo(t)

	if err := r.AddWeight(models.WeightEntry{Date: "2024-03-15", Kg: 80.5}); err != nil {
		t.Fatalf("AddWeight failed: %v", err)
	}
	if err := r.AddWeight(models.WeightEntry{Date: "2024-03-15", Kg: 80.1}); err != nil {
		t.Fatalf("AddWeight failed: %v", err)
	}

	if len(r.Weights()) != 1 {
		t.Errorf("len(Weights) = %d, want 1", len(r.Weights()))
	}
	if r.Profile().BodyweightKg != 80.1 {
		t.Errorf("BodyweightKg = %v, want 80.1", r.Profile().BodyweightKg)
	}

	again := reopen(t, mem)
	if again.Profile().BodyweightKg != 80.1 {
		t.Error("bodyweight side effect not persisted")
	}

	if err := r.AddWeight(models.WeightEntry{Date: "2024-03-16", Kg: -1}); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestWeeklyMenu(t *testing.T) {
	r, mem := setupTestRepo(t)
	items := []models.MenuTemplateItem{{Exercise: "Deadlift", Sets: 5, Reps: 3, WeightKg: 180}}

	if err := r.SetMenuDay(time.Wednesday, items); err != nil {
		t.Fatalf("SetMenuDay failed: %v", err)
	}
	again := reopen(t, mem)
	if got := again.WeeklyMenu().Day(time.Wednesday); len(got) != 1 || got[0].WeightKg != 180 {
		t.Errorf("Day(Wednesday) = %+v", got)
	}

	if err := r.SaveWeeklyMenu(models.WeeklyMenu{9: items}); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid for weekday 9", err)
	}
	if err := r.SetMenuDay(time.Monday, []models.MenuTemplateItem{{Exercise: "", Sets: 1}}); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid for empty name", err)
	}

	if err := r.SaveWeeklyMenu(models.WeeklyMenu{}); err != nil {
		t.Fatalf("SaveWeeklyMenu failed: %v", err)
	}
	if len(r.WeeklyMenu()) != 0 {
		t.Error("SaveWeeklyMenu should overwrite wholesale")
	}
}

func TestGoals(t *testing.T) {
	r, _ := setupTestRepo(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	if err := r.SetGoal(models.HorizonMonth, "  Bench 110  ", now); err != nil {
		t.Fatalf("SetGoal failed: %v", err)
	}
	g := r.Goals()[models.HorizonMonth]
	if g.Text != "Bench 110" || !g.SavedAt.Equal(now) {
		t.Errorf("goal = %+v", g)
	}

	if err := r.SetGoal(models.HorizonMonth, "", now); err != nil {
		t.Fatalf("SetGoal failed: %v", err)
	}
	if _, ok := r.Goals()[models.HorizonMonth]; ok {
		t.Error("empty text should clear the goal")
	}

	if err := r.SetGoal("decade", "x", now); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestChatHistory(t *testing.T) {
	r, mem := setupTestRepo(t)

	r.ReplaceLastChat(models.ChatMessage{Role: models.RoleAssistant, Content: "hi"})
	r.AppendChat(
		models.ChatMessage{Role: models.RoleUser, Content: "plan my week"},
		models.ChatMessage{Role: models.RoleAssistant},
	)
	r.ReplaceLastChat(models.ChatMessage{Role: models.RoleAssistant, Content: "Day 1: squat"})

	again := reopen(t, mem)
	h := again.ChatHistory()
	if len(h) != 3 || h[2].Content != "Day 1: squat" {
		t.Errorf("history = %+v", h)
	}

	r.AddTokens(models.TokenUsage{Input: 100, Output: 50})
	r.AddTokens(models.TokenUsage{Input: -5, Output: 10})
	r.ClearChat()
	if len(r.ChatHistory()) != 0 {
		t.Error("ClearChat left messages")
	}
	if got := r.TokenTotals(); got.Input != 100 || got.Output != 60 {
		t.Errorf("TokenTotals = %+v, want 100/60", got)
	}
}

func TestRepositoryFailOpen(t *testing.T) {
	r := New(brokenBackend{}, logging.Discard())
	r.Hydrate(context.Background())

	if err := r.AddWeight(models.WeightEntry{Date: "2024-03-15", Kg: 81}); err != nil {
		t.Fatalf("AddWeight should not surface storage errors: %v", err)
	}
	if r.Profile().BodyweightKg != 81 || len(r.Weights()) != 1 {
		t.Error("in-memory state should reflect the write")
	}
}

type brokenBackend struct{}

func (brokenBackend) Get(string) ([]byte, error) { return nil, errors.New("offline") }
func (brokenBackend) Set(string, []byte) error   { return errors.New("offline") }
func (brokenBackend) Close() error               { return nil }
