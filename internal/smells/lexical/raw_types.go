package lexical

import (
	"context"
	"fmt"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// RawTypesDetector finds generic collection types used without type
// arguments, e.g. `List items` or `def f(x: Dict)`
type RawTypesDetector struct {
	generic    map[string]bool
	scale      Scale
	normalizer *utils.Normalizer
}

// NewRawTypesDetector creates a new raw type detector
func NewRawTypesDetector(thresholds RawTypeThresholds, scale Scale) *RawTypesDetector {
	generic := make(map[string]bool, len(thresholds.Generic))
	for _, name := range thresholds.Generic {
		generic[name] = true
	}
	return &RawTypesDetector{generic: generic, scale: scale, normalizer: utils.NewNormalizer()}
}

func (d *RawTypesDetector) Name() string {
	return "raw_types_detector"
}

func (d *RawTypesDetector) Kind() smells.Kind {
	return smells.RawTypes
}

func (d *RawTypesDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	root := u.Root()
	if root == nil || u.Language == syntax.LanguageGo {
		return nil
	}

	var sites smells.Sites
	root.WalkWithAncestors(func(n *syntax.Node, ancestors []*syntax.Node) bool {
		if !d.generic[n.Text] || len(n.Children) > 0 {
			return true
		}
		parent := last(ancestors)
		if d.rawUse(n, parent) {
			sites.Add("line %d: %s without type arguments", n.Line, n.Text)
		}
		return true
	})

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.RawTypes,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d raw generic type use(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

// rawUse reports a type name used in type position with no arguments
func (d *RawTypesDetector) rawUse(n, parent *syntax.Node) bool {
	if parent == nil || parent.Is(syntax.CatGenericType) {
		return false
	}
	switch {
	case n.Is(syntax.CatType):
		// imports and qualified names are not declarations
		return parent.Kind != "scoped_type_identifier" && parent.Kind != "import_declaration"
	case n.Is(syntax.CatIdentifier):
		// Python annotations wrap the type expression in a `type` node
		return parent.Kind == "type"
	}
	return false
}
