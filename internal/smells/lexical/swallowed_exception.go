package lexical

import (
	"context"
	"fmt"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// calls that report an error without handling it
var reportOnlyCalls = map[string]bool{
	"printStackTrace": true, "println": true, "print": true, "print_exc": true,
	"log": true, "Println": true, "Printf": true,
}

// SwallowedExceptionDetector finds handlers that drop the error: empty
// catch blocks, `pass`, a lone stack trace print, or Go's empty
// `if err != nil {}`
type SwallowedExceptionDetector struct {
	scale      Scale
	normalizer *utils.Normalizer
}

// NewSwallowedExceptionDetector creates a new swallowed exception detector
func NewSwallowedExceptionDetector(scale Scale) *SwallowedExceptionDetector {
	return &SwallowedExceptionDetector{scale: scale, normalizer: utils.NewNormalizer()}
}

func (d *SwallowedExceptionDetector) Name() string {
	return "swallowed_exception_detector"
}

func (d *SwallowedExceptionDetector) Kind() smells.Kind {
	return smells.SwallowedException
}

func (d *SwallowedExceptionDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	root := u.Root()
	if root == nil {
		return nil
	}

	var sites smells.Sites
	root.Walk(func(n *syntax.Node) bool {
		switch {
		case n.Is(syntax.CatCatch):
			body := n.ChildByField("body")
			if body == nil {
				body = n.FirstChild(syntax.CatBlock)
			}
			if reason := swallowed(body); reason != "" {
				sites.Add("line %d: `%s` %s", n.Line, n.Snippet(60), reason)
			}
		case n.Is(syntax.CatIf) && u.Language == syntax.LanguageGo:
			if isErrCheck(n.ChildByField("condition")) && n.ChildByField("alternative") == nil {
				if reason := swallowed(n.ChildByField("consequence")); reason != "" {
					sites.Add("line %d: `%s` %s", n.Line, n.Snippet(60), reason)
				}
			}
		}
		return true
	})

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.SwallowedException,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d swallowed error(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

// swallowed explains why a handler body drops the error, or returns ""
func swallowed(body *syntax.Node) string {
	if body == nil {
		return ""
	}
	stmts := utils.BodyStatements(body)
	if len(stmts) == 0 {
		return "is empty"
	}
	onlyPass, onlyReport := true, true
	for _, stmt := range stmts {
		if !stmt.Is(syntax.CatPass) {
			onlyPass = false
		}
		call := utils.StatementExpression(stmt)
		if !call.Is(syntax.CatCall) || !reportOnlyCalls[syntax.MemberName(call)] {
			onlyReport = false
		}
	}
	switch {
	case onlyPass:
		return "only passes"
	case onlyReport:
		return "only prints the error"
	}
	return ""
}

// isErrCheck matches `err != nil`
func isErrCheck(cond *syntax.Node) bool {
	cond = syntax.Unwrap(cond)
	if !cond.Is(syntax.CatBinary) || syntax.Operator(cond) != "!=" {
		return false
	}
	left := syntax.Unwrap(cond.ChildByField("left"))
	right := syntax.Unwrap(cond.ChildByField("right"))
	return left.Is(syntax.CatIdentifier) && right.Is(syntax.CatNull) &&
		(left.Text == "err" || strings.HasSuffix(left.Text, "Err"))
}
