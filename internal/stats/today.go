// ABOUTME: Dashboard snapshot for one day and the planner's system context.
// ABOUTME: Both read through a narrow interface so tests can pass any store.
package stats

import (
	"fmt"
	"strings"

	"github.com/harperreed/big3/internal/models"
)

// Reader is the read side of the repository.
type Reader interface {
	Profile() models.Profile
	SessionByDate(date string) (models.TrainingSession, bool)
	MealsOn(date string) (models.DayMealRecord, bool)
	Weights() []models.WeightEntry
}

// Snapshot is the home view for a day.
type Snapshot struct {
	Date       string   `json:"date"`
	Stats      Stats    `json:"stats"`
	WeightKg   *float64 `json:"weightKg,omitempty"`
	Nutrition  Totals   `json:"nutrition"`
	MealCount  int      `json:"mealCount"`
	HasSession bool     `json:"hasSession"`
	Completed  bool     `json:"completed"`
	DoneSets   int      `json:"doneSets"`
	TotalSets  int      `json:"totalSets"`
}

// Today assembles the snapshot for date.
func Today(r Reader, date string) Snapshot {
	snap := Snapshot{Date: date, Stats: Compute(r.Profile())}

	for _, w := range r.Weights() {
		if w.Date == date {
			kg := w.Kg
			snap.WeightKg = &kg
			break
		}
	}

	if rec, ok := r.MealsOn(date); ok {
		snap.Nutrition = DayTotals(rec)
		snap.MealCount = len(rec.Entries)
	}

	if s, ok := r.SessionByDate(date); ok {
		snap.HasSession = true
		snap.Completed = s.Completed
		snap.DoneSets, snap.TotalSets = s.SetCounts()
	}
	return snap
}

// PlannerContext is the system prompt that grounds the planning conversation
// in the athlete's current numbers.
func PlannerContext(p models.Profile, s Stats, goals models.Goals) string {
	var sb strings.Builder
	sb.WriteString("あなたは優秀なパーソナルトレーナーAIです。ユーザーと対話しながら、科学的根拠に基づいたトレーニングメニューをゼロから一緒に作り上げていきます。\n\n")

	sb.WriteString("【ユーザーデータ】\n")
	score := "未算出"
	if s.Defined {
		score = fmt.Sprintf("%.1f", s.Score)
	}
	sb.WriteString(fmt.Sprintf("体重: %gkg / WILKSスコア: %s (%s)\n", p.BodyweightKg, score, s.Progress.Current.LabelJa))
	sb.WriteString(fmt.Sprintf("ベンチ1RM: %gkg / スクワット1RM: %gkg / デッドリフト1RM: %gkg\n", p.Bench1RM, p.Squat1RM, p.Deadlift1RM))
	sb.WriteString(fmt.Sprintf("週トレ日数: %d日\n", p.TrainingDays))

	if len(goals) > 0 {
		sb.WriteString("\n【目標】\n")
		labels := map[models.Horizon]string{
			models.HorizonWeek:  "今週",
			models.HorizonMonth: "今月",
			models.HorizonYear:  "今年",
		}
		for _, h := range models.Horizons {
			if g, ok := goals[h]; ok {
				sb.WriteString(fmt.Sprintf("%s: %s\n", labels[h], g.Text))
			}
		}
	}

	sb.WriteString("\n【進め方】\n")
	sb.WriteString("1. 今日の状態（疲労度・利用時間・前回トレ内容）を1〜2の質問で確認する\n")
	sb.WriteString("2. ボリューム理論・RPEに基づいて具体的な種目・重量・回数・セット数を提案する\n")
	sb.WriteString("3. ユーザーのフィードバックで柔軟に調整する\n")
	sb.WriteString("4. 最終メニューは箇条書きで構造的に提示する\n\n")
	sb.WriteString("論理的・客観的に、データドリブンで、日本語で回答してください。")
	return sb.String()
}
