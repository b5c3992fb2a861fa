// ABOUTME: MCP tool implementations for big3.
// ABOUTME: Scoring calculators plus logging of weights, meals and sets.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/scoring"
	"github.com/harperreed/big3/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Current Wilks score, rank tier and progress to the next tier",
	}, s.handleGetStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compute_score",
		Description: "Compute the Wilks score and rank for a bodyweight and total",
	}, s.handleComputeScore)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "estimate_1rm",
		Description: "Estimate a one-rep max from weight and reps (Epley)",
	}, s.handleEstimateOneRepMax)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_ranks",
		Description: "List all fourteen rank tiers with score bounds",
	}, s.handleGetRanks)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_weight",
		Description: "Record bodyweight for a day, replacing any entry for that date",
	}, s.handleLogWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal",
		Description: "Add a meal entry with calories and macros",
	}, s.handleAddMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_meals",
		Description: "List a day's meals with nutrition totals",
	}, s.handleListMeals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sessions",
		Description: "Summarize recent training sessions with volume",
	}, s.handleListSessions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_set",
		Description: "Record or replace a set in a day's training session",
	}, s.handleLogSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_session",
		Description: "Mark a day's session complete and update 1RMs from it",
	}, s.handleCompleteSession)
}

// Tool input/output types

type emptyInput struct{}

type statsOutput struct {
	Profile              models.Profile `json:"profile"`
	Stats                stats.Stats    `json:"stats"`
	TokenBudgetRemaining int            `json:"token_budget_remaining"`
}

type computeScoreInput struct {
	BodyweightKg float64 `json:"bodyweight_kg" jsonschema:"Bodyweight in kg (40-635)"`
	TotalKg      float64 `json:"total_kg" jsonschema:"Bench + squat + deadlift total in kg"`
}

type scoreOutput struct {
	Score    float64          `json:"score"`
	Progress scoring.Progress `json:"progress"`
	Message  string           `json:"message"`
}

type estimateInput struct {
	WeightKg float64 `json:"weight_kg" jsonschema:"Weight lifted in kg"`
	Reps     int     `json:"reps" jsonschema:"Repetitions performed (1-30)"`
}

type estimateOutput struct {
	OneRepMax float64 `json:"one_rep_max"`
	Message   string  `json:"message"`
}

type ranksOutput struct {
	Ranks []scoring.Rank `json:"ranks"`
}

type logWeightInput struct {
	Kg   float64 `json:"kg" jsonschema:"Bodyweight in kg"`
	Date string  `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type addMealInput struct {
	Name    string   `json:"name" jsonschema:"Food name"`
	Kcal    float64  `json:"kcal" jsonschema:"Calories"`
	Protein float64  `json:"protein,omitempty" jsonschema:"Protein in grams"`
	Fat     float64  `json:"fat,omitempty" jsonschema:"Fat in grams"`
	Carbs   float64  `json:"carbs,omitempty" jsonschema:"Carbohydrates in grams"`
	Date    string   `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Time    string   `json:"time,omitempty" jsonschema:"Time of day as HH:MM, defaults to now"`
	Amount  *float64 `json:"amount,omitempty" jsonschema:"Portion size"`
	Unit    string   `json:"unit,omitempty" jsonschema:"Portion unit such as g or ml"`
}

type mealOutput struct {
	Entry   models.MealEntry `json:"entry"`
	Totals  stats.Totals     `json:"day_totals"`
	Message string           `json:"message"`
}

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type mealsOutput struct {
	Date    string             `json:"date"`
	Entries []models.MealEntry `json:"entries"`
	Totals  stats.Totals       `json:"totals"`
}

type listSessionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max sessions (default 10)"`
}

type sessionsOutput struct {
	Sessions []stats.SessionVolume `json:"sessions"`
}

type logSetInput struct {
	Exercise  string  `json:"exercise" jsonschema:"Exercise name"`
	WeightKg  float64 `json:"weight_kg" jsonschema:"Weight in kg"`
	Reps      int     `json:"reps" jsonschema:"Repetitions"`
	Completed bool    `json:"completed,omitempty" jsonschema:"Whether the set was finished"`
	Set       int     `json:"set,omitempty" jsonschema:"1-based set number to replace; omit to append"`
	Date      string  `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type sessionOutput struct {
	Session models.TrainingSession `json:"session"`
	Message string                 `json:"message"`
}

type completeOutput struct {
	Completion stats.Completion `json:"completion"`
	Message    string           `json:"message"`
}

// Tool handlers

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, statsOutput, error) {
	p := s.repo.Profile()
	return nil, statsOutput{
		Profile:              p,
		Stats:                stats.Compute(p),
		TokenBudgetRemaining: stats.TokenBudgetRemaining(s.repo.TokenTotals()),
	}, nil
}

func (s *Server) handleComputeScore(ctx context.Context, req *mcp.CallToolRequest, input computeScoreInput) (*mcp.CallToolResult, scoreOutput, error) {
	score, err := scoring.Score(input.BodyweightKg, input.TotalKg)
	if err != nil {
		return nil, scoreOutput{}, err
	}
	progress := scoring.ProgressToNext(score)
	return nil, scoreOutput{
		Score:    score,
		Progress: progress,
		Message:  fmt.Sprintf("Wilks %.2f (%s)", score, progress.Current.Label),
	}, nil
}

func (s *Server) handleEstimateOneRepMax(ctx context.Context, req *mcp.CallToolRequest, input estimateInput) (*mcp.CallToolResult, estimateOutput, error) {
	orm, err := scoring.EstimateOneRepMax(input.WeightKg, input.Reps)
	if err != nil {
		return nil, estimateOutput{}, err
	}
	return nil, estimateOutput{
		OneRepMax: orm,
		Message:   fmt.Sprintf("%gkg x %d ≈ %gkg 1RM", input.WeightKg, input.Reps, orm),
	}, nil
}

func (s *Server) handleGetRanks(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, ranksOutput, error) {
	return nil, ranksOutput{Ranks: scoring.Ranks()}, nil
}

func (s *Server) handleLogWeight(ctx context.Context, req *mcp.CallToolRequest, input logWeightInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := s.dateOrToday(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.AddWeight(models.WeightEntry{Date: date, Kg: input.Kg}); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log weight: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Logged %gkg for %s", input.Kg, date)}, nil
}

func (s *Server) handleAddMeal(ctx context.Context, req *mcp.CallToolRequest, input addMealInput) (*mcp.CallToolResult, mealOutput, error) {
	date, err := s.dateOrToday(input.Date)
	if err != nil {
		return nil, mealOutput{}, err
	}

	e := models.NewMealEntry(input.Name, input.Kcal, input.Protein, input.Fat, input.Carbs)
	if input.Time != "" {
		e.WithTime(input.Time)
	}
	if input.Amount != nil {
		e.WithAmount(*input.Amount, input.Unit)
	}

	saved, err := s.repo.AddMeal(date, *e)
	if err != nil {
		return nil, mealOutput{}, fmt.Errorf("failed to add meal: %w", err)
	}

	rec, _ := s.repo.MealsOn(date)
	return nil, mealOutput{
		Entry:   saved,
		Totals:  stats.DayTotals(rec),
		Message: fmt.Sprintf("Added %s (%gkcal) on %s (ID: %s)", saved.Name, saved.Kcal, date, shortID(saved.ID)),
	}, nil
}

func (s *Server) handleListMeals(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, mealsOutput, error) {
	date, err := s.dateOrToday(input.Date)
	if err != nil {
		return nil, mealsOutput{}, err
	}
	rec, _ := s.repo.MealsOn(date)
	entries := rec.Entries
	if entries == nil {
		entries = []models.MealEntry{}
	}
	return nil, mealsOutput{Date: date, Entries: entries, Totals: stats.DayTotals(rec)}, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input listSessionsInput) (*mcp.CallToolResult, sessionsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 10
	}
	return nil, sessionsOutput{Sessions: stats.RecentVolumes(s.repo.Sessions(), input.Limit)}, nil
}

func (s *Server) handleLogSet(ctx context.Context, req *mcp.CallToolRequest, input logSetInput) (*mcp.CallToolResult, sessionOutput, error) {
	date, err := s.dateOrToday(input.Date)
	if err != nil {
		return nil, sessionOutput{}, err
	}

	// Read-modify-save without a lock: one MCP client per store.
	session, _, err := s.repo.SessionForDate(date)
	if err != nil {
		return nil, sessionOutput{}, err
	}
	if session.Completed {
		return nil, sessionOutput{}, fmt.Errorf("session for %s is already completed", date)
	}

	pos, err := session.LogSet(input.Exercise, input.Set, models.SetRecord{
		Weight:    input.WeightKg,
		Reps:      input.Reps,
		Completed: input.Completed,
	})
	if err != nil {
		return nil, sessionOutput{}, err
	}
	if err := s.repo.SaveSession(session); err != nil {
		return nil, sessionOutput{}, fmt.Errorf("failed to save session: %w", err)
	}

	return nil, sessionOutput{
		Session: session,
		Message: fmt.Sprintf("%s set %d: %gkg x %d", strings.TrimSpace(input.Exercise), pos, input.WeightKg, input.Reps),
	}, nil
}

func (s *Server) handleCompleteSession(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, completeOutput, error) {
	date, err := s.dateOrToday(input.Date)
	if err != nil {
		return nil, completeOutput{}, err
	}

	session, ok := s.repo.SessionByDate(date)
	if !ok {
		return nil, completeOutput{}, fmt.Errorf("no session for %s", date)
	}

	res, err := stats.CompleteSession(s.repo, session, s.now(), s.strict)
	if err != nil {
		return nil, completeOutput{}, fmt.Errorf("failed to complete session: %w", err)
	}

	msg := fmt.Sprintf("Completed session %s", date)
	for _, u := range res.Updates {
		msg += "; " + u.String()
	}
	return nil, completeOutput{Completion: res, Message: msg}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
