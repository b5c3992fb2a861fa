// ABOUTME: Backup export and import of every collection.
// ABOUTME: Supports JSON and YAML round trips plus a Markdown training log.
package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/big3/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the backup format version.
const ExportVersion = "1.0"

// ExportData is the full backup document.
type ExportData struct {
	Version     string                   `json:"version" yaml:"version"`
	ExportedAt  time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool        string                   `json:"tool" yaml:"tool"`
	Profile     models.Profile           `json:"profile" yaml:"profile"`
	Sessions    []models.TrainingSession `json:"sessions" yaml:"sessions"`
	Meals       []models.DayMealRecord   `json:"meals" yaml:"meals"`
	Weights     []models.WeightEntry     `json:"weights" yaml:"weights"`
	WeeklyMenu  models.WeeklyMenu        `json:"weeklyMenu,omitempty" yaml:"weeklyMenu,omitempty"`
	Goals       models.Goals             `json:"goals,omitempty" yaml:"goals,omitempty"`
	ChatHistory []models.ChatMessage     `json:"chatHistory,omitempty" yaml:"chatHistory,omitempty"`
	TokenTotals *models.TokenUsage       `json:"chatTokenTotals,omitempty" yaml:"chatTokenTotals,omitempty"`
}

// GetAllData snapshots every collection for export.
func (r *Repository) GetAllData() *ExportData {
	tokens := r.TokenTotals()
	return &ExportData{
		Version:     ExportVersion,
		ExportedAt:  time.Now(),
		Tool:        "big3",
		Profile:     r.Profile(),
		Sessions:    r.Sessions(),
		Meals:       r.Meals(),
		Weights:     r.Weights(),
		WeeklyMenu:  r.WeeklyMenu(),
		Goals:       r.Goals(),
		ChatHistory: r.ChatHistory(),
		TokenTotals: &tokens,
	}
}

// ImportData merges a backup into the store. Sessions merge by id, meals by
// date and id, weights by date. Profile, menu and goals are overwritten;
// chat history and token totals are replaced when present.
// Everything is validated before anything is written.
func (r *Repository) ImportData(data *ExportData) error {
	if err := data.validate(); err != nil {
		return err
	}

	if err := r.SaveProfile(data.Profile); err != nil {
		return fmt.Errorf("import profile: %w", err)
	}
	// Oldest first so the export's most-recent-first order survives.
	for i := len(data.Sessions) - 1; i >= 0; i-- {
		s := data.Sessions[i]
		if err := r.SaveSession(s); err != nil {
			return fmt.Errorf("import session %s: %w", s.ID, err)
		}
	}
	for _, rec := range data.Meals {
		for _, e := range rec.Entries {
			if r.hasMeal(rec.Date, e.ID) {
				if err := r.UpdateMeal(rec.Date, e); err != nil {
					return fmt.Errorf("import meal %s: %w", e.ID, err)
				}
				continue
			}
			if _, err := r.AddMeal(rec.Date, e); err != nil {
				return fmt.Errorf("import meal %s: %w", e.ID, err)
			}
		}
	}
	// Oldest first so the newest import lands at the front.
	for i := len(data.Weights) - 1; i >= 0; i-- {
		if err := r.AddWeight(data.Weights[i]); err != nil {
			return fmt.Errorf("import weight %s: %w", data.Weights[i].Date, err)
		}
	}
	// AddWeight moves the profile bodyweight; the imported profile is authoritative.
	if len(data.Weights) > 0 {
		r.profile.Set(data.Profile)
	}
	if data.WeeklyMenu != nil {
		if err := r.SaveWeeklyMenu(data.WeeklyMenu); err != nil {
			return fmt.Errorf("import weekly menu: %w", err)
		}
	}
	if data.Goals != nil {
		if err := r.SaveGoals(data.Goals); err != nil {
			return fmt.Errorf("import goals: %w", err)
		}
	}
	if data.ChatHistory != nil {
		r.chat.Set(append([]models.ChatMessage(nil), data.ChatHistory...))
	}
	if data.TokenTotals != nil {
		r.tokens.Set(*data.TokenTotals)
	}
	return nil
}

func (r *Repository) hasMeal(date, id string) bool {
	rec, _ := r.MealsOn(date)
	for _, e := range rec.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (d *ExportData) validate() error {
	if d.Version != "" && d.Version != ExportVersion {
		return invalid(fmt.Errorf("unsupported export version %q", d.Version))
	}
	if err := d.Profile.Validate(); err != nil {
		return invalid(fmt.Errorf("profile: %w", err))
	}
	for _, s := range d.Sessions {
		if err := validateSession(s); err != nil {
			return invalid(fmt.Errorf("session %s: %w", s.ID, err))
		}
	}
	for _, rec := range d.Meals {
		if _, err := models.ParseDate(rec.Date); err != nil {
			return invalid(err)
		}
		for _, e := range rec.Entries {
			if e.ID == "" {
				return invalid(fmt.Errorf("meal on %s has no id", rec.Date))
			}
			if err := e.Validate(); err != nil {
				return invalid(fmt.Errorf("meal %s: %w", e.ID, err))
			}
		}
	}
	for _, w := range d.Weights {
		if err := w.Validate(); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// ExportJSON exports all data as indented JSON.
func (r *Repository) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(r.GetAllData(), "", "  ")
}

// ExportYAML exports all data as YAML.
func (r *Repository) ExportYAML() ([]byte, error) {
	return yaml.Marshal(r.GetAllData())
}

// ImportJSON imports a JSON backup.
func (r *Repository) ImportJSON(data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return r.ImportData(&exportData)
}

// ImportYAML imports a YAML backup.
func (r *Repository) ImportYAML(data []byte) error {
	var exportData ExportData
	if err := yaml.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal YAML: %w", err)
	}
	return r.ImportData(&exportData)
}

// ExportMarkdown renders sessions, weights and meals on or after since
// (all when since is empty) as Markdown tables.
func (r *Repository) ExportMarkdown(since string) string {
	var sb strings.Builder
	now := time.Now()
	p := r.Profile()

	sb.WriteString(fmt.Sprintf("# Big3 Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**%s** · %.1f kg · bench %.1f / squat %.1f / deadlift %.1f\n\n",
		p.Name, p.BodyweightKg, p.Bench1RM, p.Squat1RM, p.Deadlift1RM))

	sb.WriteString("## Training\n\n")
	sb.WriteString("| Date | Exercise | Sets | Done |\n")
	sb.WriteString("|------|----------|------|------|\n")
	for _, s := range r.Sessions() {
		if s.Date < since {
			continue
		}
		for _, ex := range s.Exercises {
			sets := make([]string, 0, len(ex.Sets))
			done := 0
			for _, st := range ex.Sets {
				sets = append(sets, fmt.Sprintf("%gx%d", st.Weight, st.Reps))
				if st.Completed {
					done++
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d/%d |\n",
				s.Date, ex.Name, strings.Join(sets, ", "), done, len(ex.Sets)))
		}
	}

	sb.WriteString("\n## Bodyweight\n\n")
	sb.WriteString("| Date | kg |\n")
	sb.WriteString("|------|----|\n")
	for _, w := range r.Weights() {
		if w.Date < since {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %.1f |\n", w.Date, w.Kg))
	}

	sb.WriteString("\n## Meals\n\n")
	sb.WriteString("| Date | Time | Food | kcal | P | F | C |\n")
	sb.WriteString("|------|------|------|------|---|---|---|\n")
	for _, rec := range r.Meals() {
		if rec.Date < since {
			continue
		}
		for _, e := range rec.Entries {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.0f | %.1f | %.1f | %.1f |\n",
				rec.Date, e.Time, e.Name, e.Kcal, e.Protein, e.Fat, e.Carbs))
		}
	}

	return sb.String()
}
