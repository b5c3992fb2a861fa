// ABOUTME: CLI commands for the weekly menu templates and goals.
// ABOUTME: Menu items use the compact exercise:SETSxREPS@KG form.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/big3/internal/models"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show or edit weekday menu templates",
}

// parseMenuItem reads "name:SETSxREPS@KG", e.g. "ベンチプレス:4x5@85".
// The @KG part is optional.
func parseMenuItem(s string) (models.MenuTemplateItem, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return models.MenuTemplateItem{}, fmt.Errorf("invalid menu item %q (use name:SETSxREPS@KG)", s)
	}
	item := models.MenuTemplateItem{Exercise: strings.TrimSpace(s[:i]), WeightKg: models.DefaultSetWeightKg}
	rx := strings.ToLower(s[i+1:])

	if at := strings.Index(rx, "@"); at >= 0 {
		kg, err := strconv.ParseFloat(strings.TrimSuffix(rx[at+1:], "kg"), 64)
		if err != nil {
			return models.MenuTemplateItem{}, fmt.Errorf("invalid weight in %q", s)
		}
		item.WeightKg = kg
		rx = rx[:at]
	}

	sets, reps, ok := strings.Cut(rx, "x")
	if !ok {
		return models.MenuTemplateItem{}, fmt.Errorf("invalid sets/reps in %q", s)
	}
	var err error
	if item.Sets, err = strconv.Atoi(sets); err != nil {
		return models.MenuTemplateItem{}, fmt.Errorf("invalid sets in %q", s)
	}
	if item.Reps, err = strconv.Atoi(reps); err != nil {
		return models.MenuTemplateItem{}, fmt.Errorf("invalid reps in %q", s)
	}
	return item, nil
}

func printMenuDay(cmd *cobra.Command, d time.Weekday, items []models.MenuTemplateItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", bold.Sprint(weekdayName(d)))
	for _, it := range items {
		fmt.Fprintf(out, "  %s %d×%d @ %gkg\n", padRight(truncate(it.Exercise, 28), 28), it.Sets, it.Reps, it.WeightKg)
	}
}

var menuShowCmd = &cobra.Command{
	Use:   "show [weekday]",
	Short: "Show the template for one weekday or the whole week",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		menu := repo.WeeklyMenu()
		if len(args) == 1 {
			d, err := parseWeekday(args[0])
			if err != nil {
				return err
			}
			printMenuDay(cmd, d, menu.Day(d))
			return nil
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if _, ok := menu[int(d)]; !ok {
				continue
			}
			printMenuDay(cmd, d, menu.Day(d))
		}
		if len(menu) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), faint.Sprint("No templates saved. Every day uses the default menu:"))
			printMenuDay(cmd, time.Now().Weekday(), models.DefaultMenu())
		}
		return nil
	},
}

var menuSetCmd = &cobra.Command{
	Use:   "set <weekday> <exercise:SETSxREPS@KG>...",
	Short: "Replace a weekday's template",
	Long: `Replace a weekday's template. Weekdays may be 0-6, mon, monday or 月.

Examples:
  big3 menu set mon ベンチプレス:4x5@85 スクワット:3x8@110
  big3 menu set 金 "Deadlift:1x5@160"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseWeekday(args[0])
		if err != nil {
			return err
		}
		items := make([]models.MenuTemplateItem, 0, len(args)-1)
		for _, a := range args[1:] {
			it, err := parseMenuItem(a)
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		if err := repo.SetMenuDay(d, items); err != nil {
			return fmt.Errorf("failed to save menu: %w", err)
		}
		success(cmd.OutOrStdout(), "Saved %s template (%d exercises)", weekdayName(d), len(items))
		return nil
	},
}

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Set weekly, monthly and yearly goals",
}

var goalSetCmd = &cobra.Command{
	Use:   "set <week|month|year> [text...]",
	Short: "Set a goal (empty text clears it)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := models.ParseHorizon(args[0])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		if err := repo.SetGoal(h, text, time.Now()); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			success(cmd.OutOrStdout(), "Cleared %s goal", h)
		} else {
			success(cmd.OutOrStdout(), "Set %s goal", h)
		}
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		goals := repo.Goals()
		if len(goals) == 0 {
			fmt.Fprintln(out, "No goals set.")
			return nil
		}
		for _, h := range models.Horizons {
			g, ok := goals[h]
			if !ok {
				continue
			}
			fmt.Fprintf(out, "%s %s %s\n", bold.Sprint(padRight(string(h), 6)), g.Text, faint.Sprint(g.SavedAt.Format(models.DateLayout)))
		}
		return nil
	},
}

func init() {
	menuCmd.AddCommand(menuShowCmd)
	menuCmd.AddCommand(menuSetCmd)
	rootCmd.AddCommand(menuCmd)

	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalShowCmd)
	rootCmd.AddCommand(goalCmd)
}
