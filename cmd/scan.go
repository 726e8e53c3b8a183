package main

import (
	"path/filepath"

	"smellsense/internal/service"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [flags] <dir>",
		Short: "Classify every source file under a directory",
		Long:  `Scan walks a directory, honoring .gitignore, and classifies each supported source file in parallel`,
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	cmd.Flags().Int("workers", 0, "parallel classifications (default from config)")
	cmd.Flags().Bool("changed", false, "only scan files changed since git HEAD")
	cmd.Flags().Bool("save", false, "record every verdict in the history store")
	cmd.Flags().Bool("json", false, "print the results as JSON")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	svc, cfg, _, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.App.NumWorkers
	}
	changed, _ := cmd.Flags().GetBool("changed")
	save, _ := cmd.Flags().GetBool("save")

	results, err := svc.Scan(cmd.Context(), service.ScanOptions{
		Root:        root,
		Workers:     workers,
		ChangedOnly: changed,
		Save:        save,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{
			"files": results,
			"tally": service.Tally(results),
		})
	}
	printScan(out, results)
	return nil
}
