package structural

import (
	"context"
	"fmt"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// DeadCodeDetector finds code that can never run: constant-false branches,
// statements after an unconditional jump and private methods nobody calls.
type DeadCodeDetector struct {
	thresholds SaturationThresholds
	normalizer *utils.Normalizer
}

// NewDeadCodeDetector creates a new dead code detector
func NewDeadCodeDetector(thresholds SaturationThresholds) *DeadCodeDetector {
	return &DeadCodeDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *DeadCodeDetector) Name() string {
	return "dead_code_detector"
}

func (d *DeadCodeDetector) Kind() smells.Kind {
	return smells.DeadCode
}

const snippetLength = 60

func (d *DeadCodeDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}

	var sites smells.Sites
	u.Root().Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatIf:
			d.checkBranch(n, &sites)
		case syntax.CatLoop:
			if constantFalse(n.ChildByField("condition")) {
				sites.Add("line %d: loop `%s` never runs", n.Line, n.Snippet(snippetLength))
			}
		case syntax.CatBlock:
			d.checkAfterJump(n, &sites)
		}
		return true
	})
	d.checkUnusedPrivate(u, &sites)

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.DeadCode,
		Confidence: d.normalizer.Saturate(sites.Len(), d.thresholds.Rate, d.thresholds.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d unreachable block(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

func (d *DeadCodeDetector) checkBranch(n *syntax.Node, sites *smells.Sites) {
	condition := n.ChildByField("condition")
	switch {
	case constantFalse(condition):
		if body := n.ChildByField("consequence"); body != nil {
			sites.Add("line %d: `%s` is never executed", n.Line, n.Snippet(snippetLength))
		}
	case constantTrue(condition):
		if alt := n.ChildByField("alternative"); alt != nil {
			sites.Add("line %d: else branch `%s` of a constant-true condition is never executed",
				alt.Line, alt.Snippet(snippetLength))
		}
	}
}

// checkAfterJump reports the first statement following an unconditional
// return, throw, break or continue in the same block
func (d *DeadCodeDetector) checkAfterJump(block *syntax.Node, sites *smells.Sites) {
	stmts := block.Statements()
	for i, stmt := range stmts {
		if !stmt.Is(syntax.CatReturn, syntax.CatThrow, syntax.CatBreak, syntax.CatContinue) {
			continue
		}
		if i+1 < len(stmts) {
			next := stmts[i+1]
			if next.Is(syntax.CatCase) {
				return
			}
			sites.Add("line %d: `%s` follows an unconditional %s", next.Line, next.Snippet(snippetLength), stmt.Category)
		}
		return
	}
}

// checkUnusedPrivate reports private methods whose name never appears
// outside their own declaration
func (d *DeadCodeDetector) checkUnusedPrivate(u *unit.CodeUnit, sites *smells.Sites) {
	if !u.Structure.HasClass {
		return
	}
	uses := make(map[string]int)
	for _, tok := range u.Tokens() {
		if tok.Category == syntax.CatIdentifier {
			uses[tok.Value]++
		}
	}
	for _, m := range u.Structure.RegularMethods() {
		if m.Visibility != unit.Private || m.IsStatic && m.Name == "main" {
			continue
		}
		if uses[m.Name] <= 1 {
			sites.Add("line %d: private method %s is never called", m.Line, m.Name)
		}
	}
}

func constantFalse(n *syntax.Node) bool {
	return literal(n, syntax.CatFalse)
}

func constantTrue(n *syntax.Node) bool {
	return literal(n, syntax.CatTrue)
}

func literal(n *syntax.Node, cat syntax.Category) bool {
	return syntax.Unwrap(n).Is(cat)
}
