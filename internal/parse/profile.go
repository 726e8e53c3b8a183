package parse

import (
	"unsafe"

	"smellsense/internal/syntax"
)

// Wrapper embeds a snippet into a synthetic declaration so that grammars
// which only accept whole compilation units can still parse it.
type Wrapper struct {
	Prefix string
	Suffix string
}

// lineOffset is the number of lines the prefix adds before the snippet
func (w Wrapper) lineOffset() int {
	n := 0
	for i := 0; i < len(w.Prefix); i++ {
		if w.Prefix[i] == '\n' {
			n++
		}
	}
	return n
}

// Profile describes how a tree-sitter grammar maps onto syntax categories
type Profile struct {
	Language   syntax.Language
	Extensions []string
	// grammar returns the tree-sitter language pointer from the binding
	grammar    func() unsafe.Pointer
	categories map[string]syntax.Category
	// atomic kinds are emitted as a single token even when the grammar
	// gives them children (e.g. string literals)
	atomic map[syntax.Category]bool
	// Wrappers are tried in order when the raw source does not parse
	Wrappers []Wrapper
	// preferWrapped reports that a clean raw parse still holds class
	// members and should be re-parsed inside the first wrapper
	preferWrapped func(root *syntax.Node) bool
}

// Category maps a raw grammar kind to its language-neutral role
func (p *Profile) Category(kind string) syntax.Category {
	if cat, ok := p.categories[kind]; ok {
		return cat
	}
	return syntax.CatOther
}

// SyntheticNames are the identifiers introduced by wrappers; detectors must
// never report them.
var SyntheticNames = map[string]bool{
	"__SmellUnit__":   true,
	"__smellUnitBody": true,
}

var defaultAtomic = map[syntax.Category]bool{
	syntax.CatString:  true,
	syntax.CatNumber:  true,
	syntax.CatComment: true,
}
