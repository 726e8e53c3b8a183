package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [flags] <file|->",
		Short: "Classify one code unit",
		Long:  `Classify reads a class or method from a file, or from stdin when the argument is "-", and prints its verdict`,
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}
	cmd.Flags().String("language", "", "source language (java|python|go|javascript|typescript); detected when empty")
	cmd.Flags().Bool("json", false, "print the verdict as JSON")
	cmd.Flags().Bool("save", false, "record the verdict in the history store")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	in, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		in.Language = syntax.Language(strings.ToLower(lang))
	}

	svc, _, _, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	save, _ := cmd.Flags().GetBool("save")
	verdict, record, err := svc.Classify(cmd.Context(), in, save)
	if verdict == nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		payload := map[string]any{"verdict": verdict}
		if record != nil {
			payload["record_id"] = record.ID
		}
		if jsonErr := writeJSON(out, payload); jsonErr != nil {
			return jsonErr
		}
	} else {
		printVerdict(out, in.Path, verdict)
		if record != nil {
			dimColor.Fprintf(out, "recorded as %s\n", record.ID)
		}
	}
	if err != nil {
		return fmt.Errorf("verdict not recorded: %w", err)
	}
	return nil
}

// readInput loads the code unit from a file or, for "-", from stdin
func readInput(cmd *cobra.Command, arg string) (unit.Input, error) {
	var (
		data []byte
		err  error
		in   unit.Input
	)
	if arg == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(arg)
		in.Path = arg
	}
	if err != nil {
		return in, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return in, fmt.Errorf("%s is empty", arg)
	}
	in.Source = string(data)
	return in, nil
}
