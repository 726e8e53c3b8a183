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

// mutable literal kinds assigned at Python module level
var mutableLiterals = map[string]bool{"list": true, "dictionary": true, "set": true}

// GlobalStateDetector finds mutable shared state: Java static non-final
// fields, Python `global` statements and module-level mutable values, Go
// package-level vars and top-level `let`/`var` in JavaScript.
type GlobalStateDetector struct {
	scale      Scale
	normalizer *utils.Normalizer
}

// NewGlobalStateDetector creates a new global state detector
func NewGlobalStateDetector(scale Scale) *GlobalStateDetector {
	return &GlobalStateDetector{scale: scale, normalizer: utils.NewNormalizer()}
}

func (d *GlobalStateDetector) Name() string {
	return "global_state_detector"
}

func (d *GlobalStateDetector) Kind() smells.Kind {
	return smells.GlobalState
}

func (d *GlobalStateDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	root := u.Root()
	if root == nil {
		return nil
	}

	var sites smells.Sites
	if u.Structure != nil {
		for _, f := range u.Structure.Fields {
			if u.Language == syntax.LanguageJava && f.IsStatic && !f.IsFinal && !inInterface(u) {
				sites.Add("line %d: static field %s is mutable", f.Line, f.Name)
			}
		}
	}

	root.Walk(func(n *syntax.Node) bool {
		if n.Is(syntax.CatGlobal) {
			sites.Add("line %d: `%s` rebinds module state", n.Line, n.Snippet(60))
		}
		return true
	})

	for _, stmt := range root.Statements() {
		switch u.Language {
		case syntax.LanguagePython:
			assign := utils.StatementExpression(stmt)
			if !assign.Is(syntax.CatAssign) {
				continue
			}
			left := assign.ChildByField("left")
			right := assign.ChildByField("right")
			if left != nil && right != nil && mutableLiterals[right.Kind] && !upperSnake.MatchString(left.Text) {
				sites.Add("line %d: module-level %s is mutable", stmt.Line, left.Text)
			}
		case syntax.LanguageGo:
			if stmt.Kind != "var_declaration" {
				continue
			}
			for _, name := range goVarNames(stmt) {
				if name != "_" && !strings.HasPrefix(name, "Err") && !strings.HasPrefix(name, "err") {
					sites.Add("line %d: package-level var %s", stmt.Line, name)
				}
			}
		case syntax.LanguageJavaScript, syntax.LanguageTypeScript:
			if stmt.Kind == "variable_declaration" || stmt.Kind == "lexical_declaration" && !stmt.HasKeyword("const") {
				sites.Add("line %d: top-level `%s`", stmt.Line, stmt.Snippet(60))
			}
		}
	}

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.GlobalState,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d mutable global(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

func inInterface(u *unit.CodeUnit) bool {
	return u.Structure.Class != nil && u.Structure.Class.Kind == "interface_declaration"
}

// goVarNames lists the names declared by a var declaration
func goVarNames(decl *syntax.Node) []string {
	var names []string
	decl.Walk(func(n *syntax.Node) bool {
		if n.Kind == "var_spec" {
			for _, name := range n.ChildrenByField("name") {
				names = append(names, name.Text)
			}
			return false
		}
		return true
	})
	return names
}
