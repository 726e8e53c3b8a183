package smells

import (
	"fmt"
	"strings"
)

// Finding is one heuristic detection for a code unit
type Finding struct {
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	Evidence   string  `json:"evidence"`
	Detector   string  `json:"detector"`
}

// Tagged returns the evidence prefixed with the detector id
func (f Finding) Tagged() string {
	return fmt.Sprintf("[%s] %s", f.Detector, f.Evidence)
}

// Recommendation suggests a refactoring action
type Recommendation struct {
	Type        string `json:"type"` // "extract_class", "reduce_coupling", etc.
	Description string `json:"description"`
}

// String renders "type (description)"
func (r Recommendation) String() string {
	if r.Description == "" {
		return r.Type
	}
	return fmt.Sprintf("%s (%s)", r.Type, r.Description)
}

// Sites collects the occurrences a detector saw and renders them as one
// evidence string, keeping the first few.
type Sites struct {
	items []string
	seen  map[string]bool
}

const maxListedSites = 5

// Add records a site once
func (s *Sites) Add(format string, args ...any) {
	site := fmt.Sprintf(format, args...)
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[site] {
		return
	}
	s.seen[site] = true
	s.items = append(s.items, site)
}

// Len returns the number of distinct sites
func (s *Sites) Len() int {
	return len(s.items)
}

// Evidence renders "summary: a; b; c (+2 more)"
func (s *Sites) Evidence(summary string) string {
	if len(s.items) == 0 {
		return summary
	}
	shown := s.items
	more := 0
	if len(shown) > maxListedSites {
		more = len(shown) - maxListedSites
		shown = shown[:maxListedSites]
	}
	text := summary + ": " + strings.Join(shown, "; ")
	if more > 0 {
		text += fmt.Sprintf(" (+%d more)", more)
	}
	return text
}
