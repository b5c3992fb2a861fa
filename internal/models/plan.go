// ABOUTME: Weekly menu templates, goals, and planner chat records.
// ABOUTME: All are overwritten wholesale except chat, which is appended.
package models

import (
	"fmt"
	"strings"
	"time"
)

// MenuTemplateItem prescribes one exercise for a day.
type MenuTemplateItem struct {
	Exercise string  `json:"exercise" yaml:"exercise"`
	Sets     int     `json:"sets" yaml:"sets"`
	Reps     int     `json:"reps" yaml:"reps"`
	WeightKg float64 `json:"weightKg" yaml:"weightKg"`
}

// WeeklyMenu maps a weekday index (0 = Sunday) to that day's template.
type WeeklyMenu map[int][]MenuTemplateItem

// DefaultMenu is used for a day with no stored template.
func DefaultMenu() []MenuTemplateItem {
	return []MenuTemplateItem{
		{Exercise: "ベンチプレス", Sets: 4, Reps: 5, WeightKg: 85},
		{Exercise: "スクワット", Sets: 3, Reps: 8, WeightKg: 110},
		{Exercise: "インクラインダンベルプレス", Sets: 3, Reps: 10, WeightKg: 32},
	}
}

// Day returns the template for a weekday, falling back to DefaultMenu.
func (m WeeklyMenu) Day(d time.Weekday) []MenuTemplateItem {
	if items, ok := m[int(d)]; ok && len(items) > 0 {
		return items
	}
	return DefaultMenu()
}

// Clone copies the map and its slices.
func (m WeeklyMenu) Clone() WeeklyMenu {
	out := make(WeeklyMenu, len(m))
	for k, v := range m {
		out[k] = append([]MenuTemplateItem(nil), v...)
	}
	return out
}

// Horizon is a goal time frame.
type Horizon string

const (
	HorizonWeek  Horizon = "week"
	HorizonMonth Horizon = "month"
	HorizonYear  Horizon = "year"
)

// Horizons lists the goal horizons in display order.
var Horizons = []Horizon{HorizonWeek, HorizonMonth, HorizonYear}

// ParseHorizon accepts week, month or year.
func ParseHorizon(s string) (Horizon, error) {
	h := Horizon(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Horizons {
		if v == h {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown goal horizon %q (valid: week, month, year)", s)
}

// Goal is free-text intent for one horizon.
type Goal struct {
	Text    string    `json:"text" yaml:"text"`
	SavedAt time.Time `json:"savedAt" yaml:"savedAt"`
}

// Goals holds up to one goal per horizon.
type Goals map[Horizon]Goal

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TokenUsage counts model tokens.
type TokenUsage struct {
	Input  int `json:"input" yaml:"input"`
	Output int `json:"output" yaml:"output"`
}

// Add returns the element-wise sum.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{Input: u.Input + o.Input, Output: u.Output + o.Output}
}

// Total is input plus output tokens.
func (u TokenUsage) Total() int {
	return u.Input + u.Output
}

// ChatMessage is one planner conversation turn.
type ChatMessage struct {
	Role    string      `json:"role" yaml:"role"`
	Content string      `json:"content" yaml:"content"`
	Usage   *TokenUsage `json:"usage,omitempty" yaml:"usage,omitempty"`
}
