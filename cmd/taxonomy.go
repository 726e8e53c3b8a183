package main

import (
	"github.com/spf13/cobra"
)

func newTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "List the smell kinds in priority order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printTaxonomy(cmd.OutOrStdout())
		},
	}
}
