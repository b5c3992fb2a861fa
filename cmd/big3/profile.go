// ABOUTME: CLI commands for the athlete profile and bodyweight log.
// ABOUTME: Weight entries replace by date and update profile bodyweight.
package main

import (
	"fmt"
	"strconv"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/stats"
	"github.com/spf13/cobra"
)

var (
	profileName       string
	profileBodyweight float64
	profileBench      float64
	profileSquat      float64
	profileDeadlift   float64
	profileDays       int

	weightDate  string
	weightLimit int
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the athlete profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p := repo.Profile()
		fmt.Fprintf(out, "%s\n", bold.Sprint(p.Name))
		fmt.Fprintf(out, "  Bodyweight     %gkg\n", p.BodyweightKg)
		fmt.Fprintf(out, "  Bench 1RM      %gkg\n", p.Bench1RM)
		fmt.Fprintf(out, "  Squat 1RM      %gkg\n", p.Squat1RM)
		fmt.Fprintf(out, "  Deadlift 1RM   %gkg\n", p.Deadlift1RM)
		fmt.Fprintf(out, "  Training days  %d/week\n", p.TrainingDays)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Long: `Update one or more profile fields. Unset flags keep their current value.

Examples:
  big3 profile set --bodyweight 80.5
  big3 profile set --bench 105 --squat 140 --deadlift 170
  big3 profile set --name Aki --days 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := repo.Profile()
		flags := cmd.Flags()
		if flags.Changed("name") {
			p.Name = profileName
		}
		if flags.Changed("bodyweight") {
			p.BodyweightKg = profileBodyweight
		}
		if flags.Changed("bench") {
			p.Bench1RM = profileBench
		}
		if flags.Changed("squat") {
			p.Squat1RM = profileSquat
		}
		if flags.Changed("deadlift") {
			p.Deadlift1RM = profileDeadlift
		}
		if flags.Changed("days") {
			p.TrainingDays = profileDays
		}

		if err := repo.SaveProfile(p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		st := stats.Compute(p)
		success(cmd.OutOrStdout(), "Profile saved")
		if st.Defined {
			fmt.Fprintf(cmd.OutOrStdout(), "  Wilks %.2f  %s %s\n", st.Score, st.Progress.Current.Icon, st.Progress.Current.Label)
		}
		return nil
	},
}

var weightCmd = &cobra.Command{
	Use:     "weight",
	Aliases: []string{"w"},
	Short:   "Log and list bodyweight",
}

var weightAddCmd = &cobra.Command{
	Use:   "add <kg>",
	Short: "Log bodyweight for a day",
	Long: `Log bodyweight. A second entry for the same date replaces the first, and
the profile bodyweight follows the newest entry.

Examples:
  big3 weight add 78.4
  big3 weight add 79 --date 2024-03-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}
		date, err := dateArg(weightDate)
		if err != nil {
			return err
		}

		if err := repo.AddWeight(models.WeightEntry{Date: date, Kg: kg}); err != nil {
			return fmt.Errorf("failed to log weight: %w", err)
		}
		success(cmd.OutOrStdout(), "Logged %gkg for %s", kg, date)
		return nil
	},
}

var weightListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent bodyweight entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		trend := stats.WeightTrend(repo.Weights(), weightLimit)
		if len(trend.Points) == 0 {
			fmt.Fprintln(out, "No weight entries.")
			return nil
		}

		for i := len(trend.Points) - 1; i >= 0; i-- {
			w := trend.Points[i]
			fmt.Fprintf(out, "%s  %gkg\n", faint.Sprint(w.Date), w.Kg)
		}
		if len(trend.Points) > 1 {
			fmt.Fprintf(out, "%s\n", faint.Sprintf("change %+.1fkg, range %.1f-%.1f", trend.ChangeKg, trend.MinKg, trend.MaxKg))
		}
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileSetCmd.Flags().Float64Var(&profileBodyweight, "bodyweight", 0, "bodyweight in kg")
	profileSetCmd.Flags().Float64Var(&profileBench, "bench", 0, "bench press 1RM in kg")
	profileSetCmd.Flags().Float64Var(&profileSquat, "squat", 0, "squat 1RM in kg")
	profileSetCmd.Flags().Float64Var(&profileDeadlift, "deadlift", 0, "deadlift 1RM in kg")
	profileSetCmd.Flags().IntVar(&profileDays, "days", 0, "training days per week")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)

	weightAddCmd.Flags().StringVar(&weightDate, "date", "", "date (YYYY-MM-DD, default today)")
	weightListCmd.Flags().IntVarP(&weightLimit, "limit", "n", 14, "max number of entries")
	weightCmd.AddCommand(weightAddCmd)
	weightCmd.AddCommand(weightListCmd)

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(weightCmd)
}
