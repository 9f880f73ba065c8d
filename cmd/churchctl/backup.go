package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"churchadmin/internal/service"
)

var (
	backupOutput  string
	backupReplace bool
)

// backupCmd groups export and import
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore a JSON backup",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every table to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		out := backupOutput
		if out == "" {
			out = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(out); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		if err := service.NewBackupService(db, nil, nil).Export(cmd.Context(), out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", out)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Restore a JSON backup",
	Long: `Restore a JSON backup written by "backup export" or the admin API.

Without --replace the import fails if any row collides with an existing id.
With --replace every table is cleared first (WARNING: destructive).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := service.NewBackupService(db, nil, nil).Import(cmd.Context(), args[0], backupReplace)
		if err != nil {
			return err
		}
		counts := data.Counts()
		tables := make([]string, 0, len(counts))
		for t := range counts {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		fmt.Fprintf(cmd.OutOrStdout(), "imported backup version %s exported %s\n", data.Version, data.ExportedAt.Format(time.RFC3339))
		for _, t := range tables {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %d\n", t, counts[t])
		}
		return nil
	},
}

func init() {
	backupExportCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Output file (default: backup_YYYYMMDD_HHMMSS.json)")
	backupImportCmd.Flags().BoolVar(&backupReplace, "replace", false, "Clear existing data before import")
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
}
