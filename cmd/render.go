package main

import (
	"encoding/json"
	"fmt"
	"io"

	"smellsense/internal/ensemble"
	"smellsense/internal/service"
	"smellsense/internal/smells"
	"smellsense/internal/store"

	"github.com/fatih/color"
)

var (
	cleanColor      = color.New(color.FgGreen, color.Bold)
	structuralColor = color.New(color.FgRed, color.Bold)
	semanticColor   = color.New(color.FgYellow, color.Bold)
	lexicalColor    = color.New(color.FgMagenta, color.Bold)
	dimColor        = color.New(color.Faint)
)

func kindColor(kind smells.Kind) *color.Color {
	switch kind.Class() {
	case smells.ClassStructural:
		return structuralColor
	case smells.ClassSemantic:
		return semanticColor
	case smells.ClassLexical:
		return lexicalColor
	default:
		return cleanColor
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVerdict writes a verdict in the human-readable form
func printVerdict(w io.Writer, label string, v *ensemble.Verdict) {
	if label != "" {
		fmt.Fprintf(w, "%s: ", label)
	}
	kindColor(v.PrimarySmell).Fprint(w, v.PrimarySmell)
	fmt.Fprintf(w, " (%.1f%%)", v.Confidence)
	if v.Degraded {
		dimColor.Fprint(w, " [heuristics only]")
	}
	fmt.Fprintln(w)

	for _, s := range v.SecondarySmells {
		fmt.Fprintf(w, "  also: %s %.3f\n", s.Smell, s.Score)
	}
	for _, line := range v.Rationale {
		dimColor.Fprintf(w, "  - %s\n", line)
	}
}

// printTally writes per-kind counts in taxonomy order, skipping zeros
func printTally(w io.Writer, title string, counts map[smells.Kind]int) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, kind := range smells.AllKinds() {
		if n := counts[kind]; n > 0 {
			fmt.Fprintf(w, "  %-20s %d\n", kind, n)
		}
	}
}

func printScan(w io.Writer, results []service.FileVerdict) {
	for _, r := range results {
		printVerdict(w, r.Path, r.Verdict)
	}
	fmt.Fprintln(w)
	printTally(w, fmt.Sprintf("%d files", len(results)), service.Tally(results))
}

func printHistory(w io.Writer, records []*store.Record, stats *store.Stats) {
	for _, r := range records {
		label := r.Path
		if label == "" {
			label = r.ID
		}
		fmt.Fprintf(w, "%s  %s  ", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), label)
		kindColor(r.PrimarySmell).Fprint(w, r.PrimarySmell)
		fmt.Fprintf(w, " (%.1f%%)\n", r.Confidence)
	}
	if stats == nil {
		return
	}
	fmt.Fprintln(w)
	printTally(w, "primary", stats.Primary)
	printTally(w, "secondary", stats.Secondary)
}

func printTaxonomy(w io.Writer) {
	for _, kind := range smells.AllKinds() {
		fmt.Fprintf(w, "%2d  ", kind.Priority())
		kindColor(kind).Fprintf(w, "%-20s", kind)
		fmt.Fprintf(w, " %-22s %s\n", kind.DisplayName(), kind.Class())
	}
}
