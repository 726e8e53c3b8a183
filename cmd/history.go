package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded verdicts and per-smell counts",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "number of verdicts to show, newest first")
	cmd.Flags().Bool("json", false, "print the history as JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	svc, _, _, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := svc.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{"records": records, "stats": stats})
	}
	printHistory(out, records, stats)
	return nil
}
