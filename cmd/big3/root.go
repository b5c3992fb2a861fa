// ABOUTME: Root Cobra command for big3 CLI.
// ABOUTME: Opens the configured backend and hydrates the repository per invocation.
package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/big3/internal/config"
	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/logging"
	"github.com/harperreed/big3/internal/repository"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *log.Logger
	repo   *repository.Repository
)

// storeless commands run without opening the backend.
var storeless = map[string]bool{
	"help":          true,
	"completion":    true,
	"ranks":         true,
	"score":         true,
	"onerm":         true,
	"install-skill": true,
	// charm sync maintenance opens the database itself
	"link":   true,
	"unlink": true,
	"repair": true,
	"reset":  true,
	"wipe":   true,
}

var rootCmd = &cobra.Command{
	Use:   "big3",
	Short: "Big-three strength tracker with Wilks scoring",
	Long: `big3 tracks bench, squat and deadlift progress. It turns your lifts into a
Wilks score, places it on a fourteen-tier rank ladder, and keeps a local
record of training sessions, meals and bodyweight.

QUICK START:

  $ big3 profile set --bodyweight 78 --bench 100 --squat 130 --deadlift 160
  $ big3 stats                          # Score, rank and progress
  $ big3 weight add 77.6                # Log bodyweight (updates profile)
  $ big3 onerm 100 5                    # Estimate a 1RM

TRAINING:

  $ big3 session add                    # Start today from the weekday menu
  $ big3 session set スクワット 1 130 5 --done
  $ big3 session done                   # Complete and update 1RMs

MEALS:

  $ big3 meal add "鶏むね肉" 165 --protein 31 --fat 3.6
  $ big3 meal estimate 親子丼 --add     # Ask the assistant, then log it

PLANNING:

  $ big3 plan "今日は脚の日。60分あります"

STORAGE:

  Data lives in a local badger store under ~/.local/share/big3 by default.
  Set "backend" in ~/.config/big3/config.json to charm (encrypted cloud
  sync), sqlite or memory. BIG3_* environment variables override the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging())
		if err != nil {
			return err
		}

		if storeless[cmd.Name()] {
			return nil
		}
		return openStore(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func openStore(cmd *cobra.Command) error {
	backend, err := cfg.OpenBackend(logger)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}

	var opts []repository.Option
	if cfg.KeyPrefix != "" {
		opts = append(opts, repository.WithPrefix(cfg.KeyPrefix))
	}
	repo = repository.New(backend, logger, opts...)
	repo.Hydrate(cmd.Context())

	if c, ok := backend.(*kv.CharmBackend); ok && c.IsReadOnly() {
		logger.Warn("charm store is locked by another process; changes will not be saved")
	}
	logger.Debug("store ready", "backend", cfg.GetBackend(), "dir", cfg.GetDataDir())
	return nil
}

func closeStore() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// Execute runs the root command and always releases the store.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeStore(); err == nil {
		err = cerr
	}
	return err
}
