package parse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"smellsense/internal/syntax"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrMalformedInput is returned for source that cannot be handed to a grammar
// at all, such as invalid UTF-8.
var ErrMalformedInput = errors.New("malformed input")

// Parser turns source code of one language into a syntax.Tree
type Parser struct {
	profile  *Profile
	parser   *tree_sitter.Parser
	language *tree_sitter.Language
	mu       sync.Mutex // Protects parser (tree-sitter parsers are not thread-safe)
}

// NewParser creates a parser for the given language profile
func NewParser(profile *Profile) (*Parser, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(profile.grammar())

	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set %s language: %w", profile.Language, err)
	}

	return &Parser{
		profile:  profile,
		parser:   parser,
		language: language,
	}, nil
}

// Language returns the language this parser handles
func (p *Parser) Language() syntax.Language {
	return p.profile.Language
}

// Profile returns the category profile of the parser
func (p *Parser) Profile() *Profile {
	return p.profile
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parser.Close()
}

// Parse parses the source as-is first and then inside each wrapper of the
// profile, keeping the first attempt without syntax errors. When every
// attempt has errors the one with the fewest is returned; callers check
// Tree.Malformed. A clean raw parse that the profile recognizes as loose
// class members is re-parsed inside the first wrapper.
func (p *Parser) Parse(ctx context.Context, source []byte) (*syntax.Tree, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("%s source is not valid UTF-8: %w", p.profile.Language, ErrMalformedInput)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := p.parseWrapped(source, Wrapper{})
	if err != nil {
		return nil, err
	}
	if raw.ErrorCount == 0 {
		if len(p.profile.Wrappers) == 0 || p.profile.preferWrapped == nil || !p.profile.preferWrapped(raw.Root) {
			return raw, nil
		}
		wrapped, err := p.parseWrapped(source, p.profile.Wrappers[0])
		if err != nil {
			return nil, err
		}
		if wrapped.ErrorCount == 0 {
			wrapped.Wrapped = true
			return wrapped, nil
		}
		return raw, nil
	}

	best := raw
	for _, wrapper := range p.profile.Wrappers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tree, err := p.parseWrapped(source, wrapper)
		if err != nil {
			return nil, err
		}
		tree.Wrapped = true
		if tree.ErrorCount == 0 {
			return tree, nil
		}
		if tree.ErrorCount < best.ErrorCount {
			best = tree
		}
	}
	return best, nil
}

func (p *Parser) parseWrapped(source []byte, wrapper Wrapper) (*syntax.Tree, error) {
	text := make([]byte, 0, len(wrapper.Prefix)+len(source)+len(wrapper.Suffix))
	text = append(text, wrapper.Prefix...)
	text = append(text, source...)
	text = append(text, wrapper.Suffix...)

	p.mu.Lock()
	defer p.mu.Unlock()

	tsTree := p.parser.Parse(text, nil)
	if tsTree == nil {
		return nil, fmt.Errorf("failed to parse %s source", p.profile.Language)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	cursor := root.Walk()
	defer cursor.Close()

	c := &converter{
		profile: p.profile,
		source:  text,
		offset:  wrapper.lineOffset(),
		start:   uint(len(wrapper.Prefix)),
		end:     uint(len(wrapper.Prefix) + len(source)),
	}
	converted := c.convert(cursor)

	return &syntax.Tree{
		Language:   p.profile.Language,
		Root:       converted,
		Tokens:     c.tokens,
		ErrorCount: c.errors,
	}, nil
}

// converter copies a tree-sitter tree into syntax nodes in one pass
type converter struct {
	profile *Profile
	source  []byte
	offset  int
	// byte window of the caller's source inside the wrapped text
	start, end uint
	tokens     syntax.TokenSequence
	errors     int
}

func (c *converter) convert(cursor *tree_sitter.TreeCursor) *syntax.Node {
	n := cursor.Node()
	kind := n.Kind()
	category := c.profile.Category(kind)

	node := &syntax.Node{
		Kind:     kind,
		Category: category,
		Field:    cursor.FieldName(),
		Text:     n.Utf8Text(c.source),
		Line:     c.line(n.StartPosition().Row),
		EndLine:  c.line(n.EndPosition().Row),
		Named:    n.IsNamed(),
		Error:    n.IsError() || n.IsMissing(),
	}
	if node.Error {
		c.errors++
	}

	if c.profile.atomic[category] || n.ChildCount() == 0 {
		c.emit(n, node)
		return node
	}

	if cursor.GotoFirstChild() {
		for {
			node.Children = append(node.Children, c.convert(cursor))
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return node
}

// emit records a leaf token when it lies inside the caller's source
func (c *converter) emit(n *tree_sitter.Node, node *syntax.Node) {
	if node.Category == syntax.CatComment || node.Text == "" {
		return
	}
	if n.StartByte() < c.start || n.EndByte() > c.end {
		return
	}
	column, err := safecast.Conv[int](n.StartPosition().Column)
	if err != nil {
		column = 0
	}
	c.tokens = append(c.tokens, syntax.Token{
		Kind:     node.Kind,
		Category: node.Category,
		Value:    node.Text,
		Line:     node.Line,
		Column:   column + 1,
	})
}

func (c *converter) line(row uint) int {
	r, err := safecast.Conv[int](row)
	if err != nil {
		return 0
	}
	return r + 1 - c.offset
}
