// ABOUTME: CLI commands for training sessions: show, add, set, done and list.
// ABOUTME: A new session starts from the weekday's menu template.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/stats"
	"github.com/spf13/cobra"
)

var (
	sessionDate   string
	sessionSets   int
	sessionReps   int
	sessionWeight float64
	sessionDone   bool
	sessionLimit  int
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"workout", "train"},
	Short:   "Log training sessions",
	Long: `Log a day's training session.

A session belongs to one date. It starts from that weekday's menu template
and is completed with 'big3 session done', which updates 1RMs from the
best qualifying set of each big-three lift and saves the session as the
new template for its weekday.`,
}

func printSession(cmd *cobra.Command, s models.TrainingSession) {
	out := cmd.OutOrStdout()
	status := faint.Sprint("in progress")
	if s.Completed {
		status = green.Sprint("completed")
	}
	day := ""
	if wd, ok := s.Weekday(); ok {
		day = " (" + weekdayName(wd) + ")"
	}
	fmt.Fprintf(out, "%s%s  %s\n", bold.Sprint(s.Date), day, status)

	for _, ex := range s.Exercises {
		fmt.Fprintf(out, "  %s\n", ex.Name)
		for i, st := range ex.Sets {
			mark := faint.Sprint("·")
			if st.Completed {
				mark = green.Sprint("✓")
			}
			fmt.Fprintf(out, "    %s %d. %gkg × %d\n", mark, i+1, st.Weight, st.Reps)
		}
	}

	done, total := s.SetCounts()
	fmt.Fprintf(out, "%s %d/%d sets, %.0fkg volume\n", faint.Sprint("→"), done, total, stats.Volume(s, true))
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a day's session or its planned template",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(sessionDate)
		if err != nil {
			return err
		}
		s, stored, err := repo.SessionForDate(date)
		if err != nil {
			return err
		}
		if !stored {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", faint.Sprint("No session yet. Planned from the weekday menu:"))
		}
		printSession(cmd, s)
		return nil
	},
}

var sessionAddCmd = &cobra.Command{
	Use:   "add [exercise]",
	Short: "Start a session or add an exercise to it",
	Long: `With no exercise, start the day's session from its weekday menu.
With an exercise, add it (creating the session if needed).

Examples:
  big3 session add
  big3 session add "ルーマニアンデッドリフト" --sets 3 --reps 10 --weight 80
  big3 session add Dips --date 2024-03-14`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(sessionDate)
		if err != nil {
			return err
		}
		s, stored, err := repo.SessionForDate(date)
		if err != nil {
			return err
		}
		if s.Completed {
			return fmt.Errorf("session on %s is already completed", date)
		}

		if len(args) == 1 {
			if s.Exercise(args[0]) >= 0 {
				return fmt.Errorf("%s is already in the session", args[0])
			}
			s.Exercises = append(s.Exercises, models.ExerciseRecord{Name: args[0], Sets: []models.SetRecord{}})
			ex := &s.Exercises[len(s.Exercises)-1]
			for i := 0; i < sessionSets; i++ {
				ex.Sets = append(ex.Sets, models.SetRecord{Weight: sessionWeight, Reps: sessionReps})
			}
		} else if stored {
			return fmt.Errorf("session on %s already exists", date)
		}

		if err := repo.SaveSession(s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		success(cmd.OutOrStdout(), "Session %s on %s", shortID(s.ID), date)
		printSession(cmd, s)
		return nil
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <exercise> <set#> <weight> <reps>",
	Short: "Record a set (set# 0 appends)",
	Long: `Record the weight and reps of one set. Set numbers start at 1; 0 adds
a new set. Missing exercises are added to the session.

Examples:
  big3 session set スクワット 1 130 5 --done
  big3 session set Bench 0 100 3 --done`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid set number: %s", args[1])
		}
		weight, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[2])
		}
		reps, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[3])
		}

		date, err := dateArg(sessionDate)
		if err != nil {
			return err
		}
		s, _, err := repo.SessionForDate(date)
		if err != nil {
			return err
		}
		if s.Completed {
			return fmt.Errorf("session on %s is already completed", date)
		}

		pos, err := s.LogSet(args[0], index, models.SetRecord{Weight: weight, Reps: reps, Completed: sessionDone})
		if err != nil {
			return err
		}
		if err := repo.SaveSession(s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		success(cmd.OutOrStdout(), "%s set %d: %gkg × %d", args[0], pos, weight, reps)
		return nil
	},
}

var sessionDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Complete the session and update 1RMs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		date, err := dateArg(sessionDate)
		if err != nil {
			return err
		}
		s, ok := repo.SessionByDate(date)
		if !ok {
			return fmt.Errorf("no session on %s", date)
		}

		res, err := stats.CompleteSession(repo, s, time.Now(), cfg.IsStrict())
		if err != nil {
			return err
		}

		done, total := res.Session.SetCounts()
		success(out, "Completed %s: %d/%d sets, %.0fkg volume", date, done, total, stats.Volume(res.Session, true))
		for _, u := range res.Updates {
			fmt.Fprintf(out, "  %s %s\n", magenta.Sprint("PR"), u)
		}
		if len(res.Updates) > 0 {
			st := stats.Compute(res.Profile)
			fmt.Fprintf(out, "  Wilks %.1f  %s\n", st.Score, st.Progress.Current.LabelJa)
		}
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent sessions with volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		vols := stats.RecentVolumes(repo.Sessions(), sessionLimit)
		if len(vols) == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			return nil
		}
		for i := len(vols) - 1; i >= 0; i-- {
			v := vols[i]
			fmt.Fprintf(out, "%s  %3d/%-3d sets  %7.0fkg  %s\n",
				v.Date, v.DoneSets, v.TotalSets, v.VolumeKg,
				faint.Sprint(truncate(strings.Join(v.Exercises, ", "), 40)))
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	for _, c := range []*cobra.Command{sessionShowCmd, sessionAddCmd, sessionSetCmd, sessionDoneCmd} {
		c.Flags().StringVar(&sessionDate, "date", "", "date (YYYY-MM-DD, default today)")
	}
	sessionAddCmd.Flags().IntVar(&sessionSets, "sets", 3, "number of sets")
	sessionAddCmd.Flags().IntVar(&sessionReps, "reps", models.DefaultSetReps, "reps per set")
	sessionAddCmd.Flags().Float64Var(&sessionWeight, "weight", models.DefaultSetWeightKg, "weight in kg")
	sessionSetCmd.Flags().BoolVar(&sessionDone, "done", false, "mark the set completed")
	sessionListCmd.Flags().IntVarP(&sessionLimit, "limit", "n", 10, "number of sessions")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionAddCmd)
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionDoneCmd)
	sessionCmd.AddCommand(sessionListCmd)
	rootCmd.AddCommand(sessionCmd)
}
