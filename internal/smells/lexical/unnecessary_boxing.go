package lexical

import (
	"context"
	"fmt"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

var (
	wrapperTypes = map[string]bool{
		"Integer": true, "Long": true, "Double": true, "Float": true, "Short": true,
		"Byte": true, "Character": true, "Boolean": true,
		// JavaScript primitive wrappers
		"Number": true, "String": true,
	}
	unboxCalls = map[string]bool{
		"intValue": true, "longValue": true, "doubleValue": true, "floatValue": true,
		"shortValue": true, "byteValue": true, "charValue": true, "booleanValue": true,
	}
)

// UnnecessaryBoxingDetector finds explicit wrapper construction and
// box-then-unbox round trips
type UnnecessaryBoxingDetector struct {
	scale      Scale
	normalizer *utils.Normalizer
}

// NewUnnecessaryBoxingDetector creates a new boxing detector
func NewUnnecessaryBoxingDetector(scale Scale) *UnnecessaryBoxingDetector {
	return &UnnecessaryBoxingDetector{scale: scale, normalizer: utils.NewNormalizer()}
}

func (d *UnnecessaryBoxingDetector) Name() string {
	return "unnecessary_boxing_detector"
}

func (d *UnnecessaryBoxingDetector) Kind() smells.Kind {
	return smells.UnnecessaryBoxing
}

func (d *UnnecessaryBoxingDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	root := u.Root()
	if root == nil {
		return nil
	}

	var sites smells.Sites
	root.Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatNew:
			if typ := n.ChildByField("type", "constructor"); typ != nil && wrapperTypes[typ.Text] {
				sites.Add("line %d: `%s` constructs a wrapper explicitly", n.Line, n.Snippet(60))
			}
		case syntax.CatCall:
			if !unboxCalls[syntax.MemberName(n)] {
				return true
			}
			inner := syntax.Unwrap(syntax.Receiver(n))
			if inner.Is(syntax.CatCall) && syntax.MemberName(inner) == "valueOf" {
				if owner := syntax.Receiver(inner); owner != nil && wrapperTypes[owner.Text] {
					sites.Add("line %d: `%s` boxes and immediately unboxes", n.Line, n.Snippet(60))
					return false
				}
			}
		}
		return true
	})

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.UnnecessaryBoxing,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d unnecessary boxing operation(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}
