package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"smellsense/internal/syntax"

	"go.uber.org/zap"
)

// detectionOrder breaks ties when several grammars parse a snippet equally well
var detectionOrder = []syntax.Language{
	syntax.LanguageJava,
	syntax.LanguagePython,
	syntax.LanguageGo,
	syntax.LanguageTypeScript,
	syntax.LanguageJavaScript,
}

// Registry manages parsers for different languages
type Registry struct {
	parsers    map[syntax.Language]*Parser
	extensions map[string]syntax.Language // file extension -> language
	logger     *zap.Logger
}

// NewRegistry creates an empty parser registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		parsers:    make(map[syntax.Language]*Parser),
		extensions: make(map[string]syntax.Language),
		logger:     logger,
	}
}

// NewDefaultRegistry registers a parser for every supported language
func NewDefaultRegistry(logger *zap.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, profile := range []*Profile{
		JavaProfile(),
		PythonProfile(),
		GoProfile(),
		JavaScriptProfile(),
		TypeScriptProfile(),
	} {
		parser, err := NewParser(profile)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.Register(parser)
	}
	return r, nil
}

// Register adds a parser and its file extensions
func (r *Registry) Register(parser *Parser) {
	lang := parser.Language()
	r.parsers[lang] = parser
	for _, ext := range parser.Profile().Extensions {
		r.extensions[ext] = lang
	}
	r.logger.Debug("Registered parser",
		zap.String("language", string(lang)),
		zap.Strings("extensions", parser.Profile().Extensions))
}

// Get returns the parser for a language
func (r *Registry) Get(lang syntax.Language) (*Parser, bool) {
	parser, ok := r.parsers[lang]
	return parser, ok
}

// LanguageForPath maps a file name to a registered language by extension
func (r *Registry) LanguageForPath(path string) (syntax.Language, bool) {
	lang, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Languages returns the registered languages in sorted order
func (r *Registry) Languages() []syntax.Language {
	languages := make([]syntax.Language, 0, len(r.parsers))
	for lang := range r.parsers {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i] < languages[j] })
	return languages
}

// ParseAs parses source with the parser of the given language
func (r *Registry) ParseAs(ctx context.Context, lang syntax.Language, source []byte) (*syntax.Tree, error) {
	parser, ok := r.Get(lang)
	if !ok {
		return nil, fmt.Errorf("no parser registered for language %q", lang)
	}
	return parser.Parse(ctx, source)
}

// Detect parses source with every registered grammar and returns the tree
// with the fewest error nodes. Ties keep the earlier language in
// detectionOrder.
func (r *Registry) Detect(ctx context.Context, source []byte) (*syntax.Tree, error) {
	var best *syntax.Tree
	for _, lang := range detectionOrder {
		parser, ok := r.Get(lang)
		if !ok {
			continue
		}
		tree, err := parser.Parse(ctx, source)
		if err != nil {
			return nil, err
		}
		if best == nil || tree.ErrorCount < best.ErrorCount {
			best = tree
		}
		if best.ErrorCount == 0 && !best.Wrapped {
			break
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no parsers registered")
	}
	r.logger.Debug("Detected language",
		zap.String("language", string(best.Language)),
		zap.Int("errors", best.ErrorCount))
	return best, nil
}

// Close releases every registered parser
func (r *Registry) Close() {
	for _, parser := range r.parsers {
		parser.Close()
	}
}
