package unit

import (
	"context"
	"errors"
	"strings"

	"smellsense/internal/parse"
	"smellsense/internal/signals/utils"
	"smellsense/internal/syntax"

	"go.uber.org/zap"
)

// DefaultServiceSuffixes name the collaborator types a god class tends to
// accumulate
var DefaultServiceSuffixes = []string{
	"Service", "Repository", "Repo", "Dao", "Client", "Gateway", "Manager",
	"Provider", "Factory", "Handler", "Controller", "Logger", "Sender",
	"Notifier", "Generator", "Processor", "Validator", "Cache", "Store",
	"Adapter", "Publisher", "Scheduler",
}

// Builder turns an Input into a CodeUnit, parsing the source exactly once
type Builder struct {
	registry        *parse.Registry
	serviceSuffixes []string
	logger          *zap.Logger
}

// NewBuilder creates a builder. An empty suffix list selects
// DefaultServiceSuffixes.
func NewBuilder(registry *parse.Registry, serviceSuffixes []string, logger *zap.Logger) *Builder {
	if len(serviceSuffixes) == 0 {
		serviceSuffixes = DefaultServiceSuffixes
	}
	return &Builder{
		registry:        registry,
		serviceSuffixes: serviceSuffixes,
		logger:          logger,
	}
}

// Build parses the input and computes its structure and summary. Parse
// problems never fail the build: they are recorded on CodeUnit.Err so that
// detectors can degrade. Only context cancellation is returned.
func (b *Builder) Build(ctx context.Context, in Input) (*CodeUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u := &CodeUnit{
		Source:   in.Source,
		Path:     in.Path,
		Language: in.Language,
	}

	lang := in.Language
	if lang == "" && in.Path != "" {
		if detected, ok := b.registry.LanguageForPath(in.Path); ok {
			lang = detected
		}
	}
	if lang != "" {
		if _, ok := b.registry.Get(lang); !ok {
			b.logger.Warn("Unsupported language, detecting from source",
				zap.String("language", string(lang)))
			lang = ""
		}
	}

	var (
		tree *syntax.Tree
		err  error
	)
	if lang != "" {
		tree, err = b.registry.ParseAs(ctx, lang, []byte(in.Source))
	} else {
		tree, err = b.registry.Detect(ctx, []byte(in.Source))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrMalformedInput) {
			err = errors.Join(ErrMalformedInput, err)
		}
		b.logger.Debug("Unit could not be parsed", zap.Error(err))
		u.Err = err
		u.Summary = Summary{}.merge(in.Summary)
		return u, nil
	}

	u.Tree = tree
	u.Language = tree.Language
	u.Structure = newExtractor(tree).extract()
	u.Summary = b.summarize(u).merge(in.Summary)

	b.logger.Debug("Built code unit",
		zap.String("language", string(u.Language)),
		zap.String("class", u.Structure.ClassName),
		zap.Int("methods", u.Summary.MethodCount),
		zap.Int("fields", u.Summary.FieldCount),
		zap.Int("errors", tree.ErrorCount))

	return u, nil
}

func (b *Builder) summarize(u *CodeUnit) Summary {
	lines := make(map[int]bool)
	for _, tok := range u.Tree.Tokens {
		lines[tok.Line] = true
	}
	return Summary{
		MethodCount:         len(u.Structure.RegularMethods()),
		FieldCount:          len(u.Structure.Fields),
		LineCount:           len(lines),
		Branches:            utils.NewComplexityCalculator().DecisionPoints(u.Tree.Root),
		ServiceDependencies: len(b.ServiceDependencies(u.Structure)),
	}
}

// ServiceDependencies returns the distinct service-like collaborators held in
// fields, matched by type name or, for untyped fields, by field name.
func (b *Builder) ServiceDependencies(s *Structure) []string {
	seen := make(map[string]bool)
	var result []string
	for _, f := range s.Fields {
		if f.IsStatic {
			continue
		}
		key := baseTypeName(f.Type)
		if key == "" || !b.isService(key) {
			if !b.isService(f.Name) {
				continue
			}
			key = f.Name
		}
		if !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}
	return result
}

func (b *Builder) isService(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range b.serviceSuffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// baseTypeName strips type arguments, arrays and qualifiers from a type
func baseTypeName(typ string) string {
	typ = strings.TrimSpace(typ)
	if idx := strings.IndexAny(typ, "<[("); idx >= 0 {
		typ = typ[:idx]
	}
	typ = strings.TrimLeft(typ, "*&")
	if idx := strings.LastIndexByte(typ, '.'); idx >= 0 {
		typ = typ[idx+1:]
	}
	return strings.TrimSpace(typ)
}
