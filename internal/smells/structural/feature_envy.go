package structural

import (
	"context"
	"sort"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

var memberNameFields = map[string]bool{"name": true, "field": true, "property": true, "attribute": true}

// FeatureEnvyDetector finds methods more interested in another object than
// in their own class: accesses through one parameter or local outnumber the
// accesses to the method's own members.
type FeatureEnvyDetector struct {
	thresholds FeatureEnvyThresholds
	normalizer *utils.Normalizer
}

// NewFeatureEnvyDetector creates a new feature envy detector
func NewFeatureEnvyDetector(thresholds FeatureEnvyThresholds) *FeatureEnvyDetector {
	return &FeatureEnvyDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *FeatureEnvyDetector) Name() string {
	return "feature_envy_detector"
}

func (d *FeatureEnvyDetector) Kind() smells.Kind {
	return smells.FeatureEnvy
}

// envy is the access profile of one method
type envy struct {
	method   *unit.Method
	receiver string
	foreign  int
	self     int
}

func (d *FeatureEnvyDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}

	var sites smells.Sites
	strongest := 0
	for _, m := range u.Methods() {
		if m.IsAccessor() || m.Body == nil {
			continue
		}
		e := d.profile(u, m)
		if e.foreign < d.thresholds.MinForeign || float64(e.foreign) <= d.thresholds.Ratio*float64(e.self) {
			continue
		}
		sites.Add("%s uses %s %d times but its own members %d times", methodLabel(m), e.receiver, e.foreign, e.self)
		strongest = max(strongest, e.foreign-e.self)
	}
	if sites.Len() == 0 {
		return nil
	}

	minForeign := float64(d.thresholds.MinForeign)
	return []smells.Finding{{
		Kind:       smells.FeatureEnvy,
		Confidence: d.normalizer.Ramp(float64(strongest), minForeign, 3*minForeign, 0.55, 0.4),
		Evidence:   sites.Evidence("methods envy foreign data"),
		Detector:   d.Name(),
	}}
}

// profile counts member accesses per foreign receiver and on the instance
func (d *FeatureEnvyDetector) profile(u *unit.CodeUnit, m *unit.Method) envy {
	s := u.Structure
	fields := s.FieldNames()

	candidates := m.ParamNames()
	for _, local := range m.Locals {
		candidates[local] = true
	}

	counts := make(map[string]int)
	self := 0
	m.Body.Walk(func(n *syntax.Node) bool {
		switch {
		case n.Is(syntax.CatMember) || n.Is(syntax.CatCall) && n.ChildByField("object") != nil:
			receiver := syntax.Unwrap(syntax.Receiver(n))
			if utils.IsSelf(receiver, s.Selves) {
				self++
				return true
			}
			root := syntax.Unwrap(syntax.RootReceiver(n))
			if root.Is(syntax.CatIdentifier) && candidates[root.Text] && !s.Selves[root.Text] {
				counts[root.Text]++
			}
		case n.Is(syntax.CatIdentifier) && u.Language == syntax.LanguageJava:
			if fields[n.Text] && !candidates[n.Text] && !memberNameFields[n.Field] {
				self++
			}
		}
		return true
	})

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	result := envy{method: m, self: self}
	for _, name := range names {
		if counts[name] > result.foreign {
			result.foreign = counts[name]
			result.receiver = name
		}
	}
	return result
}
