// ABOUTME: CLI commands for scores and ranks: stats, ranks, score, onerm.
// ABOUTME: The calculators run without touching the store.
package main

import (
	"fmt"
	"strconv"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/scoring"
	"github.com/harperreed/big3/internal/stats"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"st"},
	Short:   "Show Wilks score, rank and today's summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p := repo.Profile()
		snap := stats.Today(repo, models.Today())
		st := snap.Stats

		rank := st.Progress.Current
		magenta.Fprintf(out, "%s %s\n", rank.Icon, rank.Label)
		if st.Defined {
			fmt.Fprintf(out, "  Wilks   %s\n", bold.Sprintf("%.2f", st.Score))
		} else {
			fmt.Fprintf(out, "  Wilks   %s\n", faint.Sprint("undefined (check bodyweight 40-635kg and lifts)"))
		}
		if next := st.Progress.Next; next != nil {
			fmt.Fprintf(out, "  Next    %s %s %.1f%%  (%.2f to go)\n",
				next.Label, progressBar(st.Progress.ProgressPercent, 20), st.Progress.ProgressPercent, st.Progress.PointsToNext)
		} else {
			fmt.Fprintf(out, "  Next    %s\n", faint.Sprint("top tier reached"))
		}
		fmt.Fprintln(out)

		fmt.Fprintf(out, "  Bodyweight  %gkg\n", p.BodyweightKg)
		fmt.Fprintf(out, "  Bench       %gkg\n", p.Bench1RM)
		fmt.Fprintf(out, "  Squat       %gkg\n", p.Squat1RM)
		fmt.Fprintf(out, "  Deadlift    %gkg\n", p.Deadlift1RM)
		fmt.Fprintf(out, "  Total       %s\n", bold.Sprintf("%gkg", st.TotalKg))
		fmt.Fprintln(out)

		fmt.Fprintf(out, "%s\n", bold.Sprint("Today ", snap.Date))
		if snap.WeightKg != nil {
			fmt.Fprintf(out, "  Weight    %gkg\n", *snap.WeightKg)
		}
		fmt.Fprintf(out, "  Meals     %d  %.0fkcal  P%.1f F%.1f C%.1f\n",
			snap.MealCount, snap.Nutrition.Kcal, snap.Nutrition.Protein, snap.Nutrition.Fat, snap.Nutrition.Carbs)
		if snap.HasSession {
			state := fmt.Sprintf("%d/%d sets", snap.DoneSets, snap.TotalSets)
			if snap.Completed {
				state += " (completed)"
			}
			fmt.Fprintf(out, "  Session   %s\n", state)
		}

		if trend := stats.WeightTrend(repo.Weights(), 14); len(trend.Points) > 1 {
			fmt.Fprintf(out, "  Trend     %+.1fkg over %d entries (%.1f-%.1f)\n", trend.ChangeKg, len(trend.Points), trend.MinKg, trend.MaxKg)
		}
		return nil
	},
}

var ranksCmd = &cobra.Command{
	Use:   "ranks",
	Short: "List the fourteen rank tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, r := range scoring.Ranks() {
			upper := "∞"
			if r.MaxScore != nil {
				upper = strconv.FormatFloat(*r.MaxScore, 'f', -1, 64)
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				r.Icon,
				padRight(r.Label, 13),
				padRight(r.LabelJa, 16),
				faint.Sprintf("%g-%s", r.MinScore, upper))
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <bodyweight-kg> <total-kg>",
	Short: "Compute a Wilks score",
	Long: `Compute the Wilks score (male coefficients) for a bodyweight and a
bench + squat + deadlift total.

Examples:
  big3 score 80 300
  big3 score 93 612.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bw, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid bodyweight: %s", args[0])
		}
		total, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid total: %s", args[1])
		}

		score, err := scoring.Score(bw, total)
		if err != nil {
			return err
		}
		rank := scoring.LookupRank(score)
		fmt.Fprintf(cmd.OutOrStdout(), "%.2f  %s %s\n", score, rank.Icon, rank.Label)
		return nil
	},
}

var oneRMCmd = &cobra.Command{
	Use:   "onerm <weight-kg> <reps>",
	Short: "Estimate a one-rep max",
	Long: `Estimate a one-rep max with the Epley formula. A single rep returns the
weight unchanged.

Examples:
  big3 onerm 100 5     # 116.7
  big3 onerm 120 1     # 120`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}
		reps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[1])
		}

		orm, err := scoring.EstimateOneRepMax(weight, reps)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%g\n", orm)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ranksCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(oneRMCmd)
}
