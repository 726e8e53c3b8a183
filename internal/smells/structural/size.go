package structural

import (
	"context"
	"fmt"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/unit"
)

// LargeClassDetector flags classes with too many fields
type LargeClassDetector struct {
	thresholds LargeClassThresholds
	normalizer *utils.Normalizer
}

// NewLargeClassDetector creates a new large class detector
func NewLargeClassDetector(thresholds LargeClassThresholds) *LargeClassDetector {
	return &LargeClassDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *LargeClassDetector) Name() string {
	return "large_class_detector"
}

func (d *LargeClassDetector) Kind() smells.Kind {
	return smells.LargeClass
}

func (d *LargeClassDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) || !u.Structure.HasClass {
		return nil
	}
	fields := u.Summary.FieldCount
	if fields <= d.thresholds.MaxFields {
		return nil
	}
	limit := float64(d.thresholds.MaxFields)
	return []smells.Finding{{
		Kind:       smells.LargeClass,
		Confidence: d.normalizer.Ramp(float64(fields), limit, 2*limit, 0.5, 0.45),
		Evidence:   fmt.Sprintf("class %s declares %d fields (limit %d)", u.Structure.ClassName, fields, d.thresholds.MaxFields),
		Detector:   d.Name(),
	}}
}

// LongMethodDetector flags methods with too many code lines or too many
// decision points
type LongMethodDetector struct {
	thresholds LongMethodThresholds
	normalizer *utils.Normalizer
}

// NewLongMethodDetector creates a new long method detector
func NewLongMethodDetector(thresholds LongMethodThresholds) *LongMethodDetector {
	return &LongMethodDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *LongMethodDetector) Name() string {
	return "long_method_detector"
}

func (d *LongMethodDetector) Kind() smells.Kind {
	return smells.LongMethod
}

func (d *LongMethodDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}
	maxLines := float64(d.thresholds.MaxLines)
	maxComplexity := float64(d.thresholds.MaxComplexity)

	var sites smells.Sites
	worst := 0.0
	for _, m := range u.Methods() {
		if m.CodeLines <= d.thresholds.MaxLines && m.Complexity <= d.thresholds.MaxComplexity {
			continue
		}
		sites.Add("%s at line %d (%d lines, complexity %d)", methodLabel(m), m.Line, m.CodeLines, m.Complexity)
		excess := max(
			d.normalizer.Normalize(float64(m.CodeLines), maxLines, 2*maxLines),
			d.normalizer.Normalize(float64(m.Complexity), maxComplexity, 2*maxComplexity),
		)
		worst = max(worst, excess)
	}
	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.LongMethod,
		Confidence: d.normalizer.Clamp(0.55+0.4*worst, 0, 1),
		Evidence: sites.Evidence(fmt.Sprintf("%d method(s) exceed %d lines or complexity %d",
			sites.Len(), d.thresholds.MaxLines, d.thresholds.MaxComplexity)),
		Detector: d.Name(),
	}}
}

// LongParameterListDetector flags methods taking too many parameters
type LongParameterListDetector struct {
	thresholds LongParameterListThresholds
	normalizer *utils.Normalizer
}

// NewLongParameterListDetector creates a new long parameter list detector
func NewLongParameterListDetector(thresholds LongParameterListThresholds) *LongParameterListDetector {
	return &LongParameterListDetector{thresholds: thresholds, normalizer: utils.NewNormalizer()}
}

func (d *LongParameterListDetector) Name() string {
	return "long_parameter_list_detector"
}

func (d *LongParameterListDetector) Kind() smells.Kind {
	return smells.LongParameterList
}

func (d *LongParameterListDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !analyzable(u) {
		return nil
	}
	var sites smells.Sites
	most := 0
	for _, m := range u.Methods() {
		if len(m.Params) <= d.thresholds.MaxParams {
			continue
		}
		sites.Add("%s at line %d takes %d parameters", methodLabel(m), m.Line, len(m.Params))
		most = max(most, len(m.Params))
	}
	if sites.Len() == 0 {
		return nil
	}
	limit := float64(d.thresholds.MaxParams)
	return []smells.Finding{{
		Kind:       smells.LongParameterList,
		Confidence: d.normalizer.Ramp(float64(most), limit, 2*limit, 0.5, 0.45),
		Evidence:   sites.Evidence(fmt.Sprintf("parameter limit is %d", d.thresholds.MaxParams)),
		Detector:   d.Name(),
	}}
}
