package utils

import (
	"regexp"

	"smellsense/internal/syntax"
)

// AccessorKind tells getters from setters
type AccessorKind int

const (
	NotAccessor AccessorKind = iota
	Getter
	Setter
)

// AccessorDetector identifies getter/setter methods
type AccessorDetector struct {
	getterPattern *regexp.Regexp
	setterPattern *regexp.Regexp
	boolPattern   *regexp.Regexp
}

// NewAccessorDetector creates a new accessor detector
func NewAccessorDetector() *AccessorDetector {
	return &AccessorDetector{
		getterPattern: regexp.MustCompile(`^(get|Get)([A-Z]|_[a-z])`),
		setterPattern: regexp.MustCompile(`^(set|Set)([A-Z]|_[a-z])`),
		boolPattern:   regexp.MustCompile(`^(is|Is|has|Has)([A-Z]|_[a-z])`),
	}
}

// IsAccessor determines if a method is a simple getter/setter by name and
// body size alone, for callers that do not know the class fields.
func (d *AccessorDetector) IsAccessor(methodName string, body *syntax.Node) bool {
	if !d.matchesAccessorPattern(methodName) || body == nil {
		return false
	}
	return len(BodyStatements(body)) <= 2
}

// Classify checks the method body against the fields of its class: a getter
// returns one field, a setter assigns one parameter to one field. selves
// holds the receiver names ("self", a Go receiver) besides `this`.
func (d *AccessorDetector) Classify(methodName string, paramCount int, body *syntax.Node, fields, selves map[string]bool) (AccessorKind, string) {
	if body == nil {
		return NotAccessor, ""
	}
	stmts := BodyStatements(body)

	switch {
	case (d.getterPattern.MatchString(methodName) || d.boolPattern.MatchString(methodName)) && paramCount == 0:
		if len(stmts) != 1 || !stmts[0].Is(syntax.CatReturn) {
			return NotAccessor, ""
		}
		if field, ok := FieldRef(ReturnValue(stmts[0]), fields, selves); ok {
			return Getter, field
		}
	case d.setterPattern.MatchString(methodName) && paramCount == 1:
		if len(stmts) == 2 && stmts[1].Is(syntax.CatReturn) {
			// fluent setters return the receiver
			stmts = stmts[:1]
		}
		if len(stmts) != 1 {
			return NotAccessor, ""
		}
		assign := StatementExpression(stmts[0])
		if !assign.Is(syntax.CatAssign) || syntax.Operator(assign) != "=" {
			return NotAccessor, ""
		}
		if field, ok := FieldRef(Single(assign.ChildByField("left")), fields, selves); ok {
			return Setter, field
		}
	}
	return NotAccessor, ""
}

// matchesAccessorPattern checks if method name follows accessor naming convention
func (d *AccessorDetector) matchesAccessorPattern(name string) bool {
	return d.getterPattern.MatchString(name) ||
		d.setterPattern.MatchString(name) ||
		d.boolPattern.MatchString(name)
}

// FieldRef resolves an expression to an own field name: a bare identifier
// naming a field, or a member access on this/self/the receiver.
func FieldRef(n *syntax.Node, fields, selves map[string]bool) (string, bool) {
	n = syntax.Unwrap(n)
	if n == nil {
		return "", false
	}
	switch n.Category {
	case syntax.CatIdentifier:
		if fields[n.Text] {
			return n.Text, true
		}
	case syntax.CatMember:
		if !IsSelf(syntax.Receiver(n), selves) {
			return "", false
		}
		name := syntax.MemberName(n)
		if fields == nil || fields[name] {
			return name, name != ""
		}
	}
	return "", false
}

// IsSelf reports whether n refers to the current instance
func IsSelf(n *syntax.Node, selves map[string]bool) bool {
	n = syntax.Unwrap(n)
	if n == nil {
		return false
	}
	if n.Is(syntax.CatThis) {
		return true
	}
	return n.Is(syntax.CatIdentifier) && selves[n.Text]
}

// BodyStatements returns the statements of a method body, flattening
// statement lists and dropping docstrings.
func BodyStatements(body *syntax.Node) []*syntax.Node {
	var result []*syntax.Node
	for _, stmt := range body.Statements() {
		if stmt.Is(syntax.CatBlock) && stmt.Kind == "statement_list" {
			result = append(result, BodyStatements(stmt)...)
			continue
		}
		if stmt.Is(syntax.CatExprStmt) {
			if inner := stmt.NamedChildren(); len(inner) == 1 && inner[0].Is(syntax.CatString) {
				continue
			}
		}
		result = append(result, stmt)
	}
	return result
}

// ReturnValue returns the expression of a return statement, if any
func ReturnValue(stmt *syntax.Node) *syntax.Node {
	for _, child := range stmt.NamedChildren() {
		if child.Category != syntax.CatComment {
			return Single(child)
		}
	}
	return nil
}

// StatementExpression unwraps an expression statement down to its expression.
// Other statements are returned unchanged.
func StatementExpression(stmt *syntax.Node) *syntax.Node {
	if stmt.Is(syntax.CatExprStmt) {
		if inner := stmt.NamedChildren(); len(inner) > 0 {
			return syntax.Unwrap(inner[0])
		}
	}
	return stmt
}

// Single unwraps one-element expression lists (Go's `a = b` sides)
func Single(n *syntax.Node) *syntax.Node {
	if n != nil && n.Kind == "expression_list" {
		if named := n.NamedChildren(); len(named) == 1 {
			return named[0]
		}
	}
	return n
}
