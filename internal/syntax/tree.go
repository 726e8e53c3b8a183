package syntax

import "strings"

// Token represents a single lexical token in source code
type Token struct {
	Kind     string   // raw grammar kind
	Category Category // language-neutral role
	Value    string
	Line     int
	Column   int
}

// Normalize folds identifiers and literals so that token sequences can be
// compared structurally.
func (t Token) Normalize() string {
	switch t.Category {
	case CatIdentifier, CatType:
		return "ID"
	case CatNumber:
		return "NUM"
	case CatString:
		return "STR"
	case CatTrue, CatFalse:
		return "BOOL"
	case CatNull:
		return "NULL"
	default:
		return t.Value
	}
}

// TokenSequence is a slice of tokens
type TokenSequence []Token

// Tree is the parsed, immutable form of one code unit
type Tree struct {
	Language   Language
	Root       *Node
	Tokens     TokenSequence
	ErrorCount int
	// Wrapped is set when the source was parsed inside a synthetic
	// class or method wrapper.
	Wrapped bool
}

// Malformed reports whether the parser had to recover from syntax errors
func (t *Tree) Malformed() bool {
	return t == nil || t.Root == nil || t.ErrorCount > 0
}

// TokensIn returns the tokens whose line falls inside the node
func (t *Tree) TokensIn(n *Node) TokenSequence {
	if t == nil || n == nil {
		return nil
	}
	var result TokenSequence
	for _, tok := range t.Tokens {
		if tok.Line >= n.Line && tok.Line <= n.EndLine {
			result = append(result, tok)
		}
	}
	return result
}

// Receiver returns the object a member access or call is made on, or nil
// for unqualified calls.
func Receiver(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Category {
	case CatMember:
		return n.ChildByField("object", "operand", "value")
	case CatCall:
		if obj := n.ChildByField("object"); obj != nil {
			return obj
		}
		if fn := n.ChildByField("function"); fn != nil && fn.Category == CatMember {
			return Receiver(fn)
		}
	}
	return nil
}

// MemberName returns the accessed member or called function name
func MemberName(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Category {
	case CatMember:
		if name := n.ChildByField("field", "property", "attribute", "name"); name != nil {
			return name.Text
		}
	case CatCall:
		if name := n.ChildByField("name"); name != nil {
			return name.Text
		}
		if fn := n.ChildByField("function"); fn != nil {
			if fn.Category == CatMember {
				return MemberName(fn)
			}
			return fn.Text
		}
	}
	return ""
}

// Arguments returns the argument expressions of a call or constructor
func Arguments(n *Node) []*Node {
	if n == nil {
		return nil
	}
	args := n.ChildByField("arguments")
	if args == nil {
		return nil
	}
	var result []*Node
	for _, child := range args.NamedChildren() {
		if child.Category != CatComment {
			result = append(result, child)
		}
	}
	return result
}

// RootReceiver follows a chain of member accesses and calls down to the
// innermost receiver, e.g. `order` in `order.getCustomer().getName()`.
func RootReceiver(n *Node) *Node {
	current := Receiver(n)
	for current != nil {
		current = Unwrap(current)
		if !current.Is(CatMember, CatCall) {
			return current
		}
		next := Receiver(current)
		if next == nil {
			return current
		}
		current = next
	}
	return nil
}

// Operator returns the operator text of a unary, binary or assignment node
func Operator(n *Node) string {
	if n == nil {
		return ""
	}
	if op := n.ChildByField("operator"); op != nil {
		return op.Text
	}
	for _, child := range n.Children {
		if !child.Named {
			text := strings.TrimSpace(child.Text)
			if text != "(" && text != ")" {
				return text
			}
		}
	}
	return ""
}

// Operand returns the single operand of a unary node
func Operand(n *Node) *Node {
	if n == nil {
		return nil
	}
	if op := n.ChildByField("operand", "argument"); op != nil {
		return op
	}
	named := n.NamedChildren()
	if len(named) > 0 {
		return named[len(named)-1]
	}
	return nil
}

// IsIdentifierLike reports whether s looks like an identifier token
func IsIdentifierLike(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
