package structural

import (
	"context"
	"fmt"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/unit"
)

// DataClassDetector finds classes that only hold private state behind
// getters and setters.
type DataClassDetector struct {
	thresholds DataClassThresholds
}

// NewDataClassDetector creates a new data class detector
func NewDataClassDetector(thresholds DataClassThresholds) *DataClassDetector {
	return &DataClassDetector{thresholds: thresholds}
}

func (d *DataClassDetector) Name() string {
	return "data_class_detector"
}

func (d *DataClassDetector) Kind() smells.Kind {
	return smells.DataClass
}

func (d *DataClassDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) || !u.Structure.HasClass {
		return nil
	}
	s := u.Structure

	var fields []*unit.Field
	for _, f := range s.Fields {
		if f.IsStatic {
			continue
		}
		if f.Visibility == unit.Public {
			return nil
		}
		fields = append(fields, f)
	}
	if len(fields) < d.thresholds.MinFields {
		return nil
	}

	methods := s.RegularMethods()
	if len(methods) == 0 {
		return nil
	}

	getters := make(map[string]bool)
	setters := make(map[string]bool)
	for _, m := range methods {
		switch m.Accessor {
		case utils.Getter:
			getters[m.AccessorField] = true
		case utils.Setter:
			setters[m.AccessorField] = true
		default:
			return nil
		}
	}

	paired := 0
	var names []string
	for _, f := range fields {
		if !getters[f.Name] && !setters[f.Name] {
			return nil
		}
		if getters[f.Name] && setters[f.Name] {
			paired++
		}
		names = append(names, f.Name)
	}

	fraction := float64(paired) / float64(len(fields))
	confidence := d.thresholds.BaseConfidence + d.thresholds.PairedSpan*fraction

	return []smells.Finding{{
		Kind:       smells.DataClass,
		Confidence: confidence,
		Evidence: fmt.Sprintf("class %s has %d non-public fields (%s) and only accessors; %d of %d fields have both getter and setter",
			s.ClassName, len(fields), strings.Join(names, ", "), paired, len(fields)),
		Detector: d.Name(),
	}}
}

// analyzable reports whether structural analysis can run on the unit
func analyzable(u *unit.CodeUnit) bool {
	return !u.Malformed() && u.Structure != nil
}

// methodLabel names a method in evidence; bare snippets have no name
func methodLabel(m *unit.Method) string {
	if m.Synthetic {
		return "<snippet>"
	}
	return m.Name
}
