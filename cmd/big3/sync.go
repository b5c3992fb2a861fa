// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports status, now, link, unlink, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	charmkv "github.com/charmbracelet/charm/kv"
	"github.com/harperreed/big3/internal/config"
	"github.com/harperreed/big3/internal/kv"
	"github.com/spf13/cobra"
)

// charmDBName is the charm kv database big3 stores its records in.
const charmDBName = "big3"

var syncRepairForce bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync data across devices",
	Long: `Sync data across devices using Charm Cloud.

Requires "backend": "charm" in ~/.config/big3/config.json (or
BIG3_BACKEND=charm). Your data is E2E encrypted with your SSH key before
upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     big3 sync link

  2. On other devices, link with the same Charm account:
     big3 sync link

  3. Check sync status:
     big3 sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Sync immediately
  repair      Repair database corruption
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Data syncs automatically after each write.`,
}

// charmBackend returns the open charm store, or an error when big3 is
// configured for another backend.
func charmBackend() (*kv.CharmBackend, error) {
	if repo != nil {
		if c, ok := repo.Backend().(*kv.CharmBackend); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("sync needs the charm backend (current: %s)", cfg.GetBackend())
}

// confirm reads one line from in and reports whether it matches want.
func confirm(in io.Reader, out io.Writer, prompt, want string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line) == want
}

func runCharm(args ...string) error {
	c := exec.Command("charm", args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		success(out, "Device linked to Charm")

		if cfg.GetBackend() != config.BackendCharm {
			warn(out, "backend is %s; set \"backend\": \"charm\" to sync", cfg.GetBackend())
			return nil
		}
		c, err := kv.OpenCharm(charmDBName, cfg.GetCharmHost())
		if err != nil {
			warn(out, "Initial sync failed: %v", err)
			return nil
		}
		defer c.Close()
		if err := c.Sync(); err != nil {
			warn(out, "Initial sync failed: %v", err)
			return nil
		}
		success(out, "Initial sync complete")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		success(cmd.OutOrStdout(), "Device unlinked from Charm")
		fmt.Fprintln(cmd.OutOrStdout(), "Your local data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := charmBackend()
		if err != nil {
			return err
		}

		id, err := kv.CharmID()
		if err != nil {
			warn(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'big3 sync link' to connect to Charm.")
			return nil
		}

		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", cfg.GetCharmHost())
		if c.IsReadOnly() {
			warn(out, "Read-only: another big3 process holds the database")
		} else {
			success(out, "Connected to Charm")
		}
		fmt.Fprintf(out, "  Sessions: %d\n", len(repo.Sessions()))
		fmt.Fprintf(out, "  Meal days: %d\n", len(repo.Meals()))
		fmt.Fprintf(out, "  Weights: %d\n", len(repo.Weights()))
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync with Charm immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmBackend()
		if err != nil {
			return err
		}
		if err := c.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		success(cmd.OutOrStdout(), "Synced")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Repairing big3 database...")
		result, err := charmkv.Repair(charmDBName, syncRepairForce)

		if result.WalCheckpointed {
			success(out, "WAL checkpointed")
		}
		if result.ShmRemoved {
			success(out, "SHM file removed")
		}
		if result.IntegrityOK {
			success(out, "Integrity check passed")
		} else {
			warn(out, "Integrity check failed")
		}
		if result.Vacuumed {
			success(out, "Database vacuumed")
		}

		if err != nil {
			if !syncRepairForce {
				warn(out, "Run with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}
		success(out, "Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local big3 data and restore from cloud.")
		if !confirm(cmd.InOrStdin(), out, "Continue? [y/N]: ", "y") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}
		if err := charmkv.Reset(charmDBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		success(out, "Local data reset and restored from cloud")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local big3 data.")
		if !confirm(cmd.InOrStdin(), out, "Type 'wipe' to confirm: ", "wipe") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}
		result, err := charmkv.Wipe(charmDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		success(out, "Data wiped successfully")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

func init() {
	syncRepairCmd.Flags().BoolVar(&syncRepairForce, "force", false, "Attempt recovery even if integrity checks fail")

	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
