// ABOUTME: Prompt, response parsing and normalization for nutrition estimates.
// ABOUTME: Shared by every provider so results are rounded the same way.
package assistant

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const nutritionSystemPrompt = "You are a nutrition expert. Return only valid JSON with numeric values for kcal, protein, fat, and carbs."

func nutritionPrompt(food string) string {
	return fmt.Sprintf("食品「%s」の標準的な1食分の栄養素をJSONで返してください。\n"+
		"形式: {\"kcal\": 数値, \"protein\": 数値, \"fat\": 数値, \"carbs\": 数値}\n"+
		"kcal: カロリー(整数), protein/fat/carbs: g単位(小数第1位)", food)
}

func validateFood(req NutritionRequest) (string, error) {
	name := strings.TrimSpace(req.FoodName)
	if name == "" {
		return "", &ValidationError{Field: "foodName", Message: "食品名が必要です"}
	}
	return name, nil
}

// extractJSON returns the outermost {...} span of s, tolerating code fences
// and prose around the object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// ParseNutrition reads a model reply into a normalized Nutrition. Missing or
// non-numeric fields count as zero.
func ParseNutrition(text string) (Nutrition, error) {
	raw := extractJSON(text)
	if raw == "" {
		return Nutrition{}, fmt.Errorf("no JSON object in response")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Nutrition{}, fmt.Errorf("parse response: %w", err)
	}
	return Normalize(Nutrition{
		Kcal:    number(fields["kcal"]),
		Protein: number(fields["protein"]),
		Fat:     number(fields["fat"]),
		Carbs:   number(fields["carbs"]),
	}), nil
}

// Normalize rounds kcal to a whole number and macros to 0.1 g, clamping
// everything at zero.
func Normalize(n Nutrition) Nutrition {
	return Nutrition{
		Kcal:    clamp(math.Round(n.Kcal)),
		Protein: clamp(math.Round(n.Protein*10) / 10),
		Fat:     clamp(math.Round(n.Fat*10) / 10),
		Carbs:   clamp(math.Round(n.Carbs*10) / 10),
	}
}

func number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
