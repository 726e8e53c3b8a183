package lexical

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"smellsense/internal/signals/utils"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

var (
	pascalCase = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	camelCase  = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
	snakeCase  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	mixedCaps  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	letterNum  = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]+$`)
)

// role of a declared identifier
type role string

const (
	roleClass  role = "class"
	roleMethod role = "method"
	roleField  role = "field"
	roleParam  role = "parameter"
	roleLocal  role = "local"
)

// BadNamingDetector checks declared identifiers for length, generic
// meaning, letter+digit names and the language's case convention
type BadNamingDetector struct {
	thresholds   NamingThresholds
	allowedShort map[string]bool
	banned       map[string]bool
	scale        Scale
	normalizer   *utils.Normalizer
}

// NewBadNamingDetector creates a new naming detector
func NewBadNamingDetector(thresholds NamingThresholds, scale Scale) *BadNamingDetector {
	d := &BadNamingDetector{
		thresholds:   thresholds,
		allowedShort: make(map[string]bool),
		banned:       make(map[string]bool),
		scale:        scale,
		normalizer:   utils.NewNormalizer(),
	}
	for _, name := range thresholds.AllowedShort {
		d.allowedShort[name] = true
	}
	for _, name := range thresholds.Banned {
		d.banned[strings.ToLower(name)] = true
	}
	return d
}

func (d *BadNamingDetector) Name() string {
	return "bad_naming_detector"
}

func (d *BadNamingDetector) Kind() smells.Kind {
	return smells.BadNaming
}

func (d *BadNamingDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if !u.Parsed() || u.Structure == nil {
		return nil
	}
	s := u.Structure

	var sites smells.Sites
	check := func(name string, r role, constant bool) {
		if problem := d.problem(u.Language, name, r, constant); problem != "" {
			sites.Add("%s %q %s", r, name, problem)
		}
	}

	if s.HasClass {
		check(s.ClassName, roleClass, false)
	}
	for _, f := range s.Fields {
		check(f.Name, roleField, f.IsStatic && f.IsFinal)
	}
	for _, m := range s.Methods {
		if !m.Synthetic && !m.IsConstructor {
			check(m.Name, roleMethod, false)
		}
		for _, p := range m.Params {
			check(p.Name, roleParam, false)
		}
		for _, local := range m.Locals {
			check(local, roleLocal, false)
		}
	}

	if sites.Len() == 0 {
		return nil
	}
	return []smells.Finding{{
		Kind:       smells.BadNaming,
		Confidence: d.normalizer.Saturate(sites.Len(), d.scale.Rate, d.scale.Max),
		Evidence:   sites.Evidence(fmt.Sprintf("%d poorly named identifier(s)", sites.Len())),
		Detector:   d.Name(),
	}}
}

// problem describes what is wrong with a name, or returns ""
func (d *BadNamingDetector) problem(lang syntax.Language, name string, r role, constant bool) string {
	if name == "" || unit.IsSynthetic(name) {
		return ""
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return ""
	}
	bare := strings.TrimLeft(name, "_#$")
	if bare == "" {
		return ""
	}

	switch {
	case d.banned[strings.ToLower(bare)]:
		return "is too generic"
	case letterNum.MatchString(bare):
		return "is a letter+digit name"
	case lang != syntax.LanguageGo && len(bare) < d.thresholds.MinLength && !d.allowedShort[bare]:
		return "is too short"
	}

	if !followsConvention(lang, bare, r, constant) {
		return fmt.Sprintf("breaks %s naming convention", lang)
	}
	return ""
}

func followsConvention(lang syntax.Language, name string, r role, constant bool) bool {
	if constant || (r != roleClass && r != roleMethod && upperSnake.MatchString(name) && len(name) > 1) {
		return r != roleClass
	}
	switch lang {
	case syntax.LanguagePython:
		if r == roleClass {
			return pascalCase.MatchString(name)
		}
		return snakeCase.MatchString(name)
	case syntax.LanguageGo:
		return mixedCaps.MatchString(name)
	default:
		if r == roleClass {
			return pascalCase.MatchString(name)
		}
		return camelCase.MatchString(name)
	}
}
