// ABOUTME: CLI commands for exporting and importing big3 data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/big3/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export all data",
	Long: `Export all data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable, same content as json)
  markdown   Markdown tables of sessions, weights and meals

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include days on or after this date (markdown only)

EXAMPLES:

  big3 export json -o backup.json
  big3 export yaml
  big3 export markdown --since 2024-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = repo.ExportJSON()
		case "yaml":
			data, err = repo.ExportYAML()
		case "markdown", "md":
			if exportSince != "" {
				if _, perr := models.ParseDate(exportSince); perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
			}
			data = []byte(repo.ExportMarkdown(exportSince))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success(cmd.OutOrStdout(), "Exported to %s", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON or YAML export",
	Long: `Import data from a file written by 'big3 export json' or 'big3 export yaml'.

Sessions and meals merge by ID, weights replace by date, and the profile,
menu and goals in the file overwrite the current ones.

EXAMPLES:

  big3 import backup.json
  big3 import backup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".yaml", ".yml":
			err = repo.ImportYAML(data)
		default:
			err = repo.ImportJSON(data)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		success(cmd.OutOrStdout(), "Imported %s", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "  Sessions: %d\n  Meal days: %d\n  Weights: %d\n",
			len(repo.Sessions()), len(repo.Meals()), len(repo.Weights()))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
