// ABOUTME: CLI commands for the meal log: add, list, rm and estimate.
// ABOUTME: estimate asks the configured assistant provider for nutrients.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/big3/internal/assistant"
	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/stats"
	"github.com/spf13/cobra"
)

var (
	mealDate    string
	mealTime    string
	mealProtein float64
	mealFat     float64
	mealCarbs   float64
	mealAmount  float64
	mealUnit    string
	mealAddEst  bool
)

// newEstimator builds the nutrition client; tests replace it.
var newEstimator = func(ctx context.Context) (assistant.NutritionEstimator, func(), error) {
	client, err := assistant.New(ctx, cfg.AssistantSettings())
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

var mealCmd = &cobra.Command{
	Use:     "meal",
	Aliases: []string{"m"},
	Short:   "Log meals and nutrition",
}

var mealAddCmd = &cobra.Command{
	Use:   "add <name> <kcal>",
	Short: "Add a meal entry",
	Long: `Add a meal entry for a day.

Examples:
  big3 meal add "鶏むね肉" 165 --protein 31 --fat 3.6
  big3 meal add Rice 250 --carbs 55 --amount 150 --unit g
  big3 meal add Oats 380 --date 2024-03-14 --time 07:30`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kcal, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid kcal: %s", args[1])
		}
		return addMeal(cmd, args[0], kcal, mealProtein, mealFat, mealCarbs)
	},
}

func addMeal(cmd *cobra.Command, name string, kcal, protein, fat, carbs float64) error {
	date, err := dateArg(mealDate)
	if err != nil {
		return err
	}

	e := models.NewMealEntry(strings.TrimSpace(name), kcal, protein, fat, carbs)
	if mealTime != "" {
		if _, err := time.Parse(models.TimeLayout, mealTime); err != nil {
			return fmt.Errorf("invalid time: %s (use HH:MM)", mealTime)
		}
		e.WithTime(mealTime)
	}
	if cmd.Flags().Changed("amount") {
		e.WithAmount(mealAmount, mealUnit)
	}

	saved, err := repo.AddMeal(date, *e)
	if err != nil {
		return fmt.Errorf("failed to add meal: %w", err)
	}

	success(cmd.OutOrStdout(), "Added %s", saved.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %.0fkcal P%.1f F%.1f C%.1f\n",
		faint.Sprint(shortID(saved.ID)), date, saved.Kcal, saved.Protein, saved.Fat, saved.Carbs)
	return nil
}

var mealListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List a day's meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		date, err := dateArg(mealDate)
		if err != nil {
			return err
		}

		rec, ok := repo.MealsOn(date)
		if !ok || len(rec.Entries) == 0 {
			fmt.Fprintf(out, "No meals on %s.\n", date)
			return nil
		}

		for _, e := range rec.Entries {
			portion := ""
			if e.Amount != nil {
				unit := ""
				if e.Unit != nil {
					unit = *e.Unit
				}
				portion = faint.Sprintf(" (%g%s)", *e.Amount, unit)
			}
			fmt.Fprintf(out, "%s %s %s %6.0fkcal  P%5.1f F%5.1f C%5.1f%s\n",
				faint.Sprint(shortID(e.ID)),
				faint.Sprint(e.Time),
				padRight(truncate(e.Name, 24), 24),
				e.Kcal, e.Protein, e.Fat, e.Carbs,
				portion)
		}

		t := stats.DayTotals(rec)
		fmt.Fprintf(out, "%s %6.0fkcal  P%5.1f F%5.1f C%5.1f\n",
			bold.Sprint(padRight("Total", 39)), t.Kcal, t.Protein, t.Fat, t.Carbs)
		return nil
	},
}

var mealRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove a meal entry by ID or ID prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(mealDate)
		if err != nil {
			return err
		}
		if err := repo.RemoveMeal(date, args[0]); err != nil {
			return fmt.Errorf("failed to remove meal: %w", err)
		}
		success(cmd.OutOrStdout(), "Removed meal %s", args[0])
		return nil
	},
}

var mealEstimateCmd = &cobra.Command{
	Use:   "estimate <food>",
	Short: "Estimate nutrients for one serving",
	Long: `Ask the configured assistant provider (Groq by default) for the nutrients
of a standard serving. Needs GROQ_API_KEY or GEMINI_API_KEY in the
environment or a .env file.

Examples:
  big3 meal estimate 親子丼
  big3 meal estimate "ramen" --add --time 12:30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		food := strings.Join(args, " ")

		est, done, err := newEstimator(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		n, err := est.Estimate(ctx, assistant.NutritionRequest{FoodName: food})
		if err != nil {
			return fmt.Errorf("estimate failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %.0fkcal  P%.1f F%.1f C%.1f\n", bold.Sprint(food), n.Kcal, n.Protein, n.Fat, n.Carbs)
		if !mealAddEst {
			return nil
		}
		return addMeal(cmd, food, n.Kcal, n.Protein, n.Fat, n.Carbs)
	},
}

func init() {
	for _, c := range []*cobra.Command{mealAddCmd, mealListCmd, mealRmCmd, mealEstimateCmd} {
		c.Flags().StringVar(&mealDate, "date", "", "date (YYYY-MM-DD, default today)")
	}
	for _, c := range []*cobra.Command{mealAddCmd, mealEstimateCmd} {
		c.Flags().StringVar(&mealTime, "time", "", "time of day (HH:MM, default now)")
		c.Flags().Float64Var(&mealAmount, "amount", 0, "portion size")
		c.Flags().StringVar(&mealUnit, "unit", "", "portion unit (g, ml, ...)")
	}
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "protein in grams")
	mealAddCmd.Flags().Float64Var(&mealFat, "fat", 0, "fat in grams")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "carbohydrates in grams")
	mealEstimateCmd.Flags().BoolVar(&mealAddEst, "add", false, "log the estimate as a meal")

	mealCmd.AddCommand(mealAddCmd)
	mealCmd.AddCommand(mealListCmd)
	mealCmd.AddCommand(mealRmCmd)
	mealCmd.AddCommand(mealEstimateCmd)
	rootCmd.AddCommand(mealCmd)
}
