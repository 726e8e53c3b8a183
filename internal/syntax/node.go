package syntax

import "strings"

// Language identifies the grammar a unit was parsed with
type Language string

const (
	LanguageJava       Language = "java"
	LanguagePython     Language = "python"
	LanguageGo         Language = "go"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// Category is the language-neutral role of a node. Parsers map every raw
// grammar kind onto one of these so detectors never look at grammar names.
type Category string

const (
	CatOther       Category = ""
	CatRoot        Category = "root"
	CatClass       Category = "class"
	CatClassBody   Category = "class_body"
	CatMethod      Category = "method"
	CatConstructor Category = "constructor"
	CatField       Category = "field"
	CatParameters  Category = "parameters"
	CatParameter   Category = "parameter"
	CatDeclarator  Category = "declarator"
	CatModifiers   Category = "modifiers"
	CatAnnotation  Category = "annotation"
	CatBlock       Category = "block"
	CatIf          Category = "if"
	CatElse        Category = "else"
	CatLoop        Category = "loop"
	CatTry         Category = "try"
	CatCatch       Category = "catch"
	CatCase        Category = "case"
	CatReturn      Category = "return"
	CatThrow       Category = "throw"
	CatBreak       Category = "break"
	CatContinue    Category = "continue"
	CatPass        Category = "pass"
	CatExprStmt    Category = "expression_statement"
	CatLocalVar    Category = "local_variable"
	CatGlobal      Category = "global"
	CatCall        Category = "call"
	CatMember      Category = "member"
	CatNew         Category = "new"
	CatAssign      Category = "assign"
	CatUnary       Category = "unary"
	CatBinary      Category = "binary"
	CatTernary     Category = "ternary"
	CatParen       Category = "paren"
	CatLambda      Category = "lambda"
	CatNumber      Category = "number"
	CatString      Category = "string"
	CatTrue        Category = "true"
	CatFalse       Category = "false"
	CatNull        Category = "null"
	CatIdentifier  Category = "identifier"
	CatType        Category = "type_identifier"
	CatGenericType Category = "generic_type"
	CatThis        Category = "this"
	CatComment     Category = "comment"
)

// Node is an immutable, language-neutral syntax node. Nodes are created once
// per unit by the parser and only read afterwards.
type Node struct {
	Kind     string   // raw grammar kind
	Category Category // language-neutral role
	Field    string   // field name in the parent, if any
	Text     string
	Line     int // 1-based, relative to the caller's source
	EndLine  int
	Named    bool
	Error    bool // ERROR or MISSING node
	Children []*Node
}

// Is reports whether the node has one of the given categories
func (n *Node) Is(cats ...Category) bool {
	if n == nil {
		return false
	}
	for _, c := range cats {
		if n.Category == c {
			return true
		}
	}
	return false
}

// ChildByField returns the first child stored under the given field name
func (n *Node) ChildByField(names ...string) *Node {
	if n == nil {
		return nil
	}
	for _, name := range names {
		for _, child := range n.Children {
			if child.Field == name {
				return child
			}
		}
	}
	return nil
}

// ChildrenByField returns every child stored under the given field name
func (n *Node) ChildrenByField(name string) []*Node {
	if n == nil {
		return nil
	}
	var result []*Node
	for _, child := range n.Children {
		if child.Field == name {
			result = append(result, child)
		}
	}
	return result
}

// FirstChild returns the first direct child with one of the categories
func (n *Node) FirstChild(cats ...Category) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Is(cats...) {
			return child
		}
	}
	return nil
}

// NamedChildren returns named children, skipping punctuation and keywords
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	result := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Named {
			result = append(result, child)
		}
	}
	return result
}

// Statements returns the named, non-comment children of a block-like node
func (n *Node) Statements() []*Node {
	if n == nil {
		return nil
	}
	var result []*Node
	for _, child := range n.Children {
		if child.Named && child.Category != CatComment {
			result = append(result, child)
		}
	}
	return result
}

// HasKeyword reports whether a direct or modifier-level child is the given
// anonymous keyword, e.g. "static" under a Java modifiers node.
func (n *Node) HasKeyword(keyword string) bool {
	if n == nil {
		return false
	}
	for _, child := range n.Children {
		if !child.Named && child.Kind == keyword {
			return true
		}
		if child.Category == CatModifiers {
			for _, mod := range child.Children {
				if mod.Kind == keyword || mod.Text == keyword {
					return true
				}
			}
		}
	}
	return false
}

// Snippet returns the first line of the node text, trimmed and shortened
func (n *Node) Snippet(max int) string {
	if n == nil {
		return ""
	}
	text := strings.TrimSpace(n.Text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if max > 0 && len(text) > max {
		text = text[:max] + "..."
	}
	return text
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// WalkWithAncestors is Walk with the chain of ancestors (root first)
func (n *Node) WalkWithAncestors(fn func(node *Node, ancestors []*Node) bool) {
	var visit func(node *Node, ancestors []*Node)
	visit = func(node *Node, ancestors []*Node) {
		if !fn(node, ancestors) {
			return
		}
		next := append(ancestors, node)
		for _, child := range node.Children {
			visit(child, next[:len(next):len(next)])
		}
	}
	if n != nil {
		visit(n, nil)
	}
}

// FindAll returns every node in the subtree with one of the categories
func (n *Node) FindAll(cats ...Category) []*Node {
	var result []*Node
	n.Walk(func(node *Node) bool {
		if node.Is(cats...) {
			result = append(result, node)
		}
		return true
	})
	return result
}

// Unwrap strips parenthesis wrappers
func Unwrap(n *Node) *Node {
	for n != nil && n.Category == CatParen {
		inner := n.NamedChildren()
		if len(inner) != 1 {
			return n
		}
		n = inner[0]
	}
	return n
}

// CollapseSpace normalizes whitespace so that formatting differences do not
// affect text comparisons.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
