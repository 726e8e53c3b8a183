package utils

import (
	"strings"

	"smellsense/internal/syntax"
)

// ComplexityCalculator calculates cyclomatic complexity on the syntax tree.
//
// Cyclomatic Complexity = 1 + number of decision points. Decision points are
// conditionals, loops, catch clauses, non-default switch cases, ternaries and
// short-circuit logical operators. Nested classes and functions are not
// counted towards the enclosing method.
type ComplexityCalculator struct{}

// NewComplexityCalculator creates a new complexity calculator
func NewComplexityCalculator() *ComplexityCalculator {
	return &ComplexityCalculator{}
}

// Calculate computes cyclomatic complexity for one method or body node
func (c *ComplexityCalculator) Calculate(node *syntax.Node) int {
	return 1 + c.DecisionPoints(node)
}

// CalculateForClass computes total complexity for all methods in a class
func (c *ComplexityCalculator) CalculateForClass(methods []*syntax.Node) int {
	total := 0
	for _, method := range methods {
		total += c.Calculate(method)
	}
	return total
}

// DecisionPoints counts the branches below node
func (c *ComplexityCalculator) DecisionPoints(node *syntax.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	node.Walk(func(n *syntax.Node) bool {
		if n != node && n.Is(syntax.CatMethod, syntax.CatConstructor, syntax.CatClass) {
			return false
		}
		if c.isDecision(n) {
			count++
		}
		return true
	})
	return count
}

func (c *ComplexityCalculator) isDecision(n *syntax.Node) bool {
	switch n.Category {
	case syntax.CatIf, syntax.CatLoop, syntax.CatCatch, syntax.CatTernary:
		return true
	case syntax.CatCase:
		text := strings.TrimSpace(n.Text)
		return !strings.HasPrefix(text, "default")
	case syntax.CatBinary:
		switch syntax.Operator(n) {
		case "&&", "||", "and", "or", "??":
			return true
		}
	}
	return false
}
