// ABOUTME: CLI command for the streaming training-plan conversation.
// ABOUTME: Replies stream to the terminal and persist in the chat history.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/big3/internal/assistant"
	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/stats"
	"github.com/spf13/cobra"
)

var (
	planHistory bool
	planClear   bool
)

// newChatClient builds the chat streamer; tests replace it.
var newChatClient = func(ctx context.Context) (assistant.ChatStreamer, func(), error) {
	client, err := assistant.New(ctx, cfg.AssistantSettings())
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

var planCmd = &cobra.Command{
	Use:   "plan [message...]",
	Short: "Plan training with the assistant",
	Long: `Talk through today's training with the assistant. Each message is sent
with the full conversation so far and a summary of your profile, score and
goals. Replies stream as they arrive.

Examples:
  big3 plan "今日は脚の日。60分あります"
  big3 plan --history
  big3 plan --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if planClear {
			repo.ClearChat()
			success(out, "Cleared conversation")
			return nil
		}
		if planHistory || len(args) == 0 {
			printChat(cmd, repo.ChatHistory())
			return nil
		}

		streamer, done, err := newChatClient(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		system := func() string {
			p := repo.Profile()
			return stats.PlannerContext(p, stats.Compute(p), repo.Goals())
		}
		planner := assistant.NewPlanner(repo, streamer, system, logger)

		msg, err := planner.Send(cmd.Context(), strings.Join(args, " "), func(chunk string) {
			fmt.Fprint(out, chunk)
		})
		fmt.Fprintln(out)
		if err != nil {
			if msg.Content == assistant.FallbackMessage {
				warn(out, "%s", msg.Content)
			}
			return err
		}

		fmt.Fprintf(out, "%s\n", faint.Sprintf("tokens %d in / %d out · %d remaining",
			msg.Usage.Input, msg.Usage.Output, stats.TokenBudgetRemaining(repo.TokenTotals())))
		return nil
	},
}

func printChat(cmd *cobra.Command, history []models.ChatMessage) {
	out := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintln(out, "No conversation yet.")
		return
	}
	for _, m := range history {
		if m.Role == models.RoleUser {
			fmt.Fprintf(out, "%s %s\n\n", bold.Sprint("you:"), m.Content)
			continue
		}
		fmt.Fprintf(out, "%s %s\n\n", magenta.Sprint("coach:"), m.Content)
	}
	fmt.Fprintf(out, "%s\n", faint.Sprintf("%d tokens remaining", stats.TokenBudgetRemaining(repo.TokenTotals())))
}

func init() {
	planCmd.Flags().BoolVar(&planHistory, "history", false, "show the conversation")
	planCmd.Flags().BoolVar(&planClear, "clear", false, "clear the conversation (token totals are kept)")
	rootCmd.AddCommand(planCmd)
}
