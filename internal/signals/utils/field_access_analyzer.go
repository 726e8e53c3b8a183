package utils

import (
	"sort"

	"smellsense/internal/syntax"
)

// memberNameFields hold the member part of an access, not a variable
var memberNameFields = map[string]bool{
	"name":      true,
	"field":     true,
	"property":  true,
	"attribute": true,
}

// FieldAccessAnalyzer tracks which methods access which fields
type FieldAccessAnalyzer struct{}

// NewFieldAccessAnalyzer creates a new field access analyzer
func NewFieldAccessAnalyzer() *FieldAccessAnalyzer {
	return &FieldAccessAnalyzer{}
}

// FindAccessedFields returns the sorted own fields referenced in body. With
// bare set, plain identifiers count too unless shadowed by a parameter or
// local (Java and C-like implicit this).
func (a *FieldAccessAnalyzer) FindAccessedFields(body *syntax.Node, fields, selves, shadowed map[string]bool, bare bool) []string {
	if body == nil || len(fields) == 0 {
		return nil
	}
	accessed := make(map[string]bool)
	body.Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatMember:
			if name, ok := FieldRef(n, fields, selves); ok {
				accessed[name] = true
				return false
			}
		case syntax.CatIdentifier:
			if bare && fields[n.Text] && !shadowed[n.Text] && !memberNameFields[n.Field] {
				accessed[n.Text] = true
			}
		}
		return true
	})

	result := make([]string, 0, len(accessed))
	for name := range accessed {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// BuildMethodFieldMatrix builds a matrix showing which methods access which fields
// Returns: map[methodName]map[fieldName]bool
func (a *FieldAccessAnalyzer) BuildMethodFieldMatrix(access map[string][]string) map[string]map[string]bool {
	matrix := make(map[string]map[string]bool, len(access))
	for method, fields := range access {
		row := make(map[string]bool, len(fields))
		for _, field := range fields {
			row[field] = true
		}
		matrix[method] = row
	}
	return matrix
}

// GetSharedFields returns fields accessed by both methods
func (a *FieldAccessAnalyzer) GetSharedFields(fields1, fields2 []string) []string {
	set := make(map[string]bool, len(fields1))
	for _, field := range fields1 {
		set[field] = true
	}
	var shared []string
	for _, field := range fields2 {
		if set[field] {
			shared = append(shared, field)
		}
	}
	return shared
}

// DoMethodsShareFields checks if two methods access at least one common field
func (a *FieldAccessAnalyzer) DoMethodsShareFields(fields1, fields2 []string) bool {
	return len(a.GetSharedFields(fields1, fields2)) > 0
}
