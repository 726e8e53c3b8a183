package lexical

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

var upperSnake = regexp.MustCompile(`^_*[A-Z][A-Z0-9_]*$`)

// MagicNumbersDetector finds numeric literals outside the allowed set that
// are not the value of a named constant
type MagicNumbersDetector struct {
	allowed    map[float64]bool
	scale      Scale
	normalizer *utils.Normalizer
}

// NewMagicNumbersDetector creates a new magic number detector
func NewMagicNumbersDetector(thresholds MagicNumberThresholds, scale Scale) *MagicNumbersDetector {
	allowed := make(map[float64]bool, len(thresholds.Allowed))
	for _, v := range thresholds.Allowed {
		allowed[v] = true
	}
	return &MagicNumbersDetector{allowed: allowed, scale: scale, normalizer: utils.NewNormalizer()}
}

func (d *MagicNumbersDetector) Name() string {
	return "magic_numbers_detector"
}

func (d *MagicNumbersDetector) Kind() smells.Kind {
	return smells.MagicNumbers
}

func (d *MagicNumbersDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	root := u.Root()
	if root == nil {
		return nil
	}

	var sites smells.Sites
	root.WalkWithAncestors(func(n *syntax.Node, ancestors []*syntax.Node) bool {
		if n.Is(syntax.CatAnnotation) {
			return false
		}
		if !n.Is(syntax.CatNumber) {
			return true
		}
		text := n.Text
		value, ok := parseNumber(text)
		if parent := last(ancestors); parent.Is(syntax.CatUnary) && syntax.Operator(parent) == "-" {
			value = -value
			text = "-" + text
		}
		if ok && d.allowed[value] {
			return false
		}
		if constantContext(ancestors) {
			return false
		}
		sites.Add("line %d: %s", n.Line, text)
		return false
	})

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.MagicNumbers,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d unnamed numeric literal(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

// parseNumber understands the literal forms of the supported grammars
func parseNumber(text string) (float64, bool) {
	clean := strings.ReplaceAll(text, "_", "")
	if i, err := strconv.ParseInt(strings.TrimRight(clean, "lLuU"), 0, 64); err == nil {
		return float64(i), true
	}
	if f, err := strconv.ParseFloat(strings.TrimRight(clean, "fFdDjJ"), 64); err == nil {
		return f, true
	}
	return 0, false
}

// constantContext reports whether a literal initializes a named constant:
// a static final field, an ALL_CAPS declaration or a Go const.
func constantContext(ancestors []*syntax.Node) bool {
	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]
		switch {
		case a.Kind == "const_declaration" || a.Kind == "const_spec" || a.Kind == "enum_constant":
			return true
		case a.Is(syntax.CatField, syntax.CatLocalVar):
			if a.HasKeyword("static") && a.HasKeyword("final") {
				return true
			}
		case a.Is(syntax.CatDeclarator):
			if name := a.ChildByField("name"); name != nil && upperSnake.MatchString(name.Text) {
				return true
			}
		case a.Is(syntax.CatAssign):
			if left := a.ChildByField("left"); left != nil && upperSnake.MatchString(left.Text) {
				return true
			}
		case a.Is(syntax.CatMethod, syntax.CatConstructor, syntax.CatClass, syntax.CatBlock):
			return false
		}
	}
	return false
}

func last(nodes []*syntax.Node) *syntax.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}
