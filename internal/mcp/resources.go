// ABOUTME: MCP resource implementations for big3.
// ABOUTME: Provides big3://stats, big3://sessions/recent and big3://today.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	statsURI          = "big3://stats"
	recentSessionsURI = "big3://sessions/recent"
	todayURI          = "big3://today"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "Strength Stats",
		Description: "Profile, Wilks score, rank and 14-day bodyweight trend",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentSessionsURI,
		Name:        "Recent Sessions",
		Description: "Last 10 training sessions with volume and set counts",
		MIMEType:    "application/json",
	}, s.handleRecentSessionsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's bodyweight, meals, nutrition totals and session progress",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

// Resource handlers

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p := s.repo.Profile()
	result := map[string]interface{}{
		"profile":      p,
		"stats":        stats.Compute(p),
		"weight_trend": stats.WeightTrend(s.repo.Weights(), 14),
		"goals":        s.repo.Goals(),
		"tokens": map[string]int{
			"used":      s.repo.TokenTotals().Total(),
			"remaining": stats.TokenBudgetRemaining(s.repo.TokenTotals()),
		},
	}
	return jsonResource(statsURI, result)
}

func (s *Server) handleRecentSessionsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]interface{}{
		"sessions": stats.RecentVolumes(s.repo.Sessions(), 10),
	}
	return jsonResource(recentSessionsURI, result)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	date := models.FormatDate(s.now())
	snap := stats.Today(s.repo, date)

	result := map[string]interface{}{
		"snapshot": snap,
		"menu":     s.repo.WeeklyMenu().Day(s.now().Weekday()),
	}
	if rec, ok := s.repo.MealsOn(date); ok {
		result["meals"] = rec.Entries
	}
	return jsonResource(todayURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
