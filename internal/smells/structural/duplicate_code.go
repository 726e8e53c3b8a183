package structural

import (
	"context"
	"fmt"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// DuplicateCodeDetector finds repeated statements inside one unit: runs of
// identical consecutive statements and windows of statements that repeat
// once identifiers and literals are normalized.
type DuplicateCodeDetector struct {
	thresholds DuplicateCodeThresholds
	normalizer *utils.Normalizer
}

// NewDuplicateCodeDetector creates a new duplicate code detector
func NewDuplicateCodeDetector(thresholds DuplicateCodeThresholds) *DuplicateCodeDetector {
	return &DuplicateCodeDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *DuplicateCodeDetector) Name() string {
	return "duplicate_code_detector"
}

func (d *DuplicateCodeDetector) Kind() smells.Kind {
	return smells.DuplicateCode
}

type statement struct {
	node       *syntax.Node
	text       string // whitespace-collapsed source
	normalized string
	tokens     int
}

type window struct {
	block, start, line int
}

func (d *DuplicateCodeDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}

	var blocks [][]statement
	u.Root().Walk(func(n *syntax.Node) bool {
		if n.Is(syntax.CatBlock, syntax.CatRoot) {
			if stmts := statementsOf(n); len(stmts) > 1 {
				blocks = append(blocks, stmts)
			}
		}
		return true
	})

	var sites smells.Sites
	for _, stmts := range blocks {
		d.findRuns(stmts, &sites)
	}
	d.findWindows(blocks, &sites)

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.DuplicateCode,
		Confidence: d.normalizer.Saturate(sites.Len(), d.thresholds.Confidence.Rate, d.thresholds.Confidence.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d duplicated statement group(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

// findRuns reports runs of at least MinRun identical consecutive statements
func (d *DuplicateCodeDetector) findRuns(stmts []statement, sites *smells.Sites) {
	for i := 0; i < len(stmts); {
		j := i + 1
		for j < len(stmts) && stmts[j].text == stmts[i].text {
			j++
		}
		if run := j - i; run >= d.thresholds.MinRun {
			sites.Add("line %d: `%s` repeated %d times in a row", stmts[i].node.Line, stmts[i].node.Snippet(snippetLength), run)
		}
		i = j
	}
}

// findWindows reports windows of Window normalized statements that occur
// more than once without overlapping
func (d *DuplicateCodeDetector) findWindows(blocks [][]statement, sites *smells.Sites) {
	size := d.thresholds.Window
	first := make(map[string]window)
	var order []string
	repeats := make(map[string]window)

	for b, stmts := range blocks {
		for i := 0; i+size <= len(stmts); i++ {
			part := stmts[i : i+size]
			if uniform(part) {
				continue
			}
			tokens := 0
			keys := make([]string, len(part))
			for k, s := range part {
				keys[k] = s.normalized
				tokens += s.tokens
			}
			if tokens < d.thresholds.MinWindowTokens {
				continue
			}
			key := strings.Join(keys, "\n")
			at := window{block: b, start: i, line: part[0].node.Line}
			prev, seen := first[key]
			if !seen {
				first[key] = at
				order = append(order, key)
				continue
			}
			if _, reported := repeats[key]; reported {
				continue
			}
			if prev.block == b && i-prev.start < size {
				continue
			}
			repeats[key] = at
		}
	}

	for _, key := range order {
		if at, ok := repeats[key]; ok {
			sites.Add("lines %d and %d: %d statements repeated", first[key].line, at.line, size)
		}
	}
}

// uniform reports windows whose statements share one normalized shape, such
// as a row of field assignments. Literal repeats are left to findRuns.
func uniform(part []statement) bool {
	for _, s := range part[1:] {
		if s.normalized != part[0].normalized {
			return false
		}
	}
	return true
}

func statementsOf(block *syntax.Node) []statement {
	var result []statement
	for _, n := range block.Statements() {
		if n.Is(syntax.CatCase, syntax.CatBlock, syntax.CatClass, syntax.CatMethod, syntax.CatConstructor) {
			continue
		}
		normalized, tokens := normalize(n)
		result = append(result, statement{
			node:       n,
			text:       syntax.CollapseSpace(n.Text),
			normalized: normalized,
			tokens:     tokens,
		})
	}
	return result
}

// normalize folds identifiers and literals of a statement
func normalize(n *syntax.Node) (string, int) {
	var parts []string
	n.Walk(func(leaf *syntax.Node) bool {
		if len(leaf.Children) > 0 {
			return true
		}
		if leaf.Category == syntax.CatComment || leaf.Text == "" {
			return false
		}
		parts = append(parts, syntax.Token{Category: leaf.Category, Value: leaf.Text}.Normalize())
		return false
	})
	return strings.Join(parts, " "), len(parts)
}
