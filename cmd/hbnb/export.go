package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <db>",
	Short: "Export the data file to a SQLite database",
	Long: `Write a snapshot of every record to a SQLite database, one table per
type tag. Tables are created when missing and their rows replaced.

Example:
  hbnb export snapshot.db
  hbnb export --file objects.json snapshot.db`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	n, err := st.Export(args[0])
	if err != nil {
		return fmt.Errorf("exporting to %s: %w", args[0], err)
	}

	return outputJSON(cmd.OutOrStdout(), ExportResponse{
		Status:  "exported",
		Path:    args[0],
		Records: n,
	})
}
