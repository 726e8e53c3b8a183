package structural

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

var (
	// parse(format(x)) round trips
	parseCalls = map[string]bool{
		"parseInt": true, "parseLong": true, "parseDouble": true, "parseFloat": true,
		"parseShort": true, "parseByte": true, "parseBoolean": true,
		"Atoi": true, "ParseInt": true, "ParseFloat": true, "ParseBool": true,
		"int": true, "float": true, "Number": true,
	}
	formatCalls = map[string]bool{
		"valueOf": true, "toString": true,
		"Itoa": true, "FormatInt": true, "FormatFloat": true, "FormatBool": true, "Sprint": true,
		"str": true, "String": true,
	}
	// operators that are their own inverse when doubled
	involutions = map[string]bool{"!": true, "-": true, "~": true, "not": true, "^": true}
)

// PointlessOperationDetector finds operations that have no effect: doubled
// inversions, self assignment, identity arithmetic, parse/format round trips
// and loops that never iterate meaningfully.
type PointlessOperationDetector struct {
	thresholds SaturationThresholds
	normalizer *utils.Normalizer
}

// NewPointlessOperationDetector creates a new pointless operation detector
func NewPointlessOperationDetector(thresholds SaturationThresholds) *PointlessOperationDetector {
	return &PointlessOperationDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *PointlessOperationDetector) Name() string {
	return "pointless_operation_detector"
}

func (d *PointlessOperationDetector) Kind() smells.Kind {
	return smells.PointlessOperation
}

func (d *PointlessOperationDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}

	var sites smells.Sites
	u.Root().Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatUnary:
			if d.doubleInversion(n) {
				sites.Add("line %d: `%s` cancels itself out", n.Line, n.Snippet(snippetLength))
				return false
			}
		case syntax.CatAssign:
			if selfAssignment(n) {
				sites.Add("line %d: `%s` assigns a value to itself", n.Line, n.Snippet(snippetLength))
			}
		case syntax.CatBinary:
			if identityArithmetic(n) {
				sites.Add("line %d: `%s` does not change the value", n.Line, n.Snippet(snippetLength))
			}
		case syntax.CatCall:
			if roundTrip(n) {
				sites.Add("line %d: `%s` converts a value back and forth", n.Line, n.Snippet(snippetLength))
				return false
			}
		case syntax.CatLoop:
			if reason := pointlessLoop(n); reason != "" {
				sites.Add("line %d: loop `%s` %s", n.Line, n.Snippet(snippetLength), reason)
			}
		}
		return true
	})

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.PointlessOperation,
		Confidence: d.normalizer.Saturate(sites.Len(), d.thresholds.Rate, d.thresholds.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d pointless operation(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

func (d *PointlessOperationDetector) doubleInversion(n *syntax.Node) bool {
	op := syntax.Operator(n)
	if !involutions[op] {
		return false
	}
	inner := syntax.Unwrap(syntax.Operand(n))
	return inner.Is(syntax.CatUnary) && syntax.Operator(inner) == op
}

func selfAssignment(n *syntax.Node) bool {
	if syntax.Operator(n) != "=" {
		return false
	}
	left := n.ChildByField("left")
	right := n.ChildByField("right")
	if left == nil || right == nil {
		return false
	}
	l := syntax.CollapseSpace(left.Text)
	return l != "" && l == syntax.CollapseSpace(right.Text) && !strings.ContainsAny(l, "()[")
}

func identityArithmetic(n *syntax.Node) bool {
	left := syntax.Unwrap(n.ChildByField("left"))
	right := syntax.Unwrap(n.ChildByField("right"))
	if left == nil || right == nil {
		return false
	}
	switch syntax.Operator(n) {
	case "+":
		// "" + x is a string conversion idiom, only numeric zero counts
		return numberIs(right, 0) || numberIs(left, 0)
	case "-":
		return numberIs(right, 0)
	case "*":
		return numberIs(right, 1) || numberIs(left, 1)
	case "/", "//":
		return numberIs(right, 1)
	}
	return false
}

func numberIs(n *syntax.Node, value float64) bool {
	if !n.Is(syntax.CatNumber) {
		return false
	}
	text := strings.TrimRight(strings.ReplaceAll(n.Text, "_", ""), "lLfFdD")
	v, err := strconv.ParseFloat(text, 64)
	return err == nil && v == value
}

func roundTrip(n *syntax.Node) bool {
	if !parseCalls[syntax.MemberName(n)] {
		return false
	}
	args := syntax.Arguments(n)
	if len(args) == 0 {
		return false
	}
	inner := syntax.Unwrap(args[0])
	return inner.Is(syntax.CatCall) && formatCalls[syntax.MemberName(inner)]
}

// pointlessLoop reports loops whose body is empty or exits unconditionally
// on its first statement
func pointlessLoop(n *syntax.Node) string {
	body := n.ChildByField("body")
	if body == nil || !body.Is(syntax.CatBlock) {
		return ""
	}
	stmts := utils.BodyStatements(body)
	empty := true
	for _, stmt := range stmts {
		if !stmt.Is(syntax.CatPass) {
			empty = false
			break
		}
	}
	if empty {
		return "has an empty body"
	}
	if stmts[0].Is(syntax.CatBreak, syntax.CatReturn, syntax.CatThrow) {
		return "exits on its first iteration"
	}
	return ""
}
