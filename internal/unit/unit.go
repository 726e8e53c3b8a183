package unit

import (
	"smellsense/internal/parse"
	"smellsense/internal/signals/utils"
	"smellsense/internal/syntax"
)

// ErrMalformedInput marks source that could not be parsed at all
var ErrMalformedInput = parse.ErrMalformedInput

// Input is one classification request
type Input struct {
	Source   string          `json:"code"`
	Language syntax.Language `json:"language,omitempty"`
	// Path is optional; its extension selects the language when Language
	// is empty.
	Path string `json:"path,omitempty"`
	// Summary is an optional caller-computed summary. Non-zero counts
	// override the computed ones.
	Summary *Summary `json:"summary,omitempty"`
}

// Summary is the lightweight structural summary shared by the detectors
type Summary struct {
	MethodCount         int `json:"method_count" yaml:"method_count"`
	FieldCount          int `json:"field_count" yaml:"field_count"`
	LineCount           int `json:"line_count" yaml:"line_count"`
	Branches            int `json:"branches" yaml:"branches"`
	ServiceDependencies int `json:"service_dependencies" yaml:"service_dependencies"`
}

// merge overlays the non-zero counts of other
func (s Summary) merge(other *Summary) Summary {
	if other == nil {
		return s
	}
	if other.MethodCount > 0 {
		s.MethodCount = other.MethodCount
	}
	if other.FieldCount > 0 {
		s.FieldCount = other.FieldCount
	}
	if other.LineCount > 0 {
		s.LineCount = other.LineCount
	}
	if other.Branches > 0 {
		s.Branches = other.Branches
	}
	if other.ServiceDependencies > 0 {
		s.ServiceDependencies = other.ServiceDependencies
	}
	return s
}

// Visibility of a member
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Package   Visibility = "package"
	Private   Visibility = "private"
)

// Param is one declared parameter
type Param struct {
	Name string
	Type string
}

// Method is a method, constructor or free function of the unit
type Method struct {
	Name          string
	Node          *syntax.Node
	Body          *syntax.Node
	Params        []Param
	Visibility    Visibility
	IsStatic      bool
	IsConstructor bool
	// Synthetic methods come from a parse wrapper around bare statements
	Synthetic bool
	Line      int
	EndLine   int
	// CodeLines counts lines carrying code, brace-only lines excluded
	CodeLines      int
	Complexity     int
	Accessor       utils.AccessorKind
	AccessorField  string
	AccessedFields []string
	Locals         []string
}

// IsAccessor reports whether the method is a plain getter or setter
func (m *Method) IsAccessor() bool {
	return m.Accessor != utils.NotAccessor
}

// ParamNames returns the set of parameter names
func (m *Method) ParamNames() map[string]bool {
	names := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		if p.Name != "" {
			names[p.Name] = true
		}
	}
	return names
}

// Field is a declared attribute of the class
type Field struct {
	Name       string
	Type       string
	Visibility Visibility
	IsStatic   bool
	IsFinal    bool
	Line       int
	Node       *syntax.Node
}

// Structure is the class-level view of a unit
type Structure struct {
	ClassName string
	// HasClass is false for bare methods and statements
	HasClass bool
	Class    *syntax.Node
	Methods  []*Method
	Fields   []*Field
	// Selves holds identifiers that denote the current instance besides
	// `this`, e.g. "self" or a Go receiver name.
	Selves map[string]bool
}

// FieldNames returns the set of field names
func (s *Structure) FieldNames() map[string]bool {
	names := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		names[f.Name] = true
	}
	return names
}

// Field finds a field by name
func (s *Structure) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// RegularMethods returns methods that are neither constructors nor synthetic
func (s *Structure) RegularMethods() []*Method {
	var result []*Method
	for _, m := range s.Methods {
		if !m.IsConstructor && !m.Synthetic {
			result = append(result, m)
		}
	}
	return result
}

// NonAccessorMethods returns regular methods that are not accessors
func (s *Structure) NonAccessorMethods() []*Method {
	var result []*Method
	for _, m := range s.RegularMethods() {
		if !m.IsAccessor() {
			result = append(result, m)
		}
	}
	return result
}

// CodeUnit is the immutable, parsed form of one classification request.
// It is built once and shared read-only by every detector.
type CodeUnit struct {
	Source    string
	Path      string
	Language  syntax.Language
	Tree      *syntax.Tree
	Structure *Structure
	Summary   Summary
	// Err wraps ErrMalformedInput when no syntax tree could be built
	Err error
}

// Parsed reports whether a syntax tree is available
func (u *CodeUnit) Parsed() bool {
	return u != nil && u.Err == nil && u.Tree != nil && u.Tree.Root != nil
}

// Malformed reports whether structural analysis should be skipped
func (u *CodeUnit) Malformed() bool {
	return !u.Parsed() || u.Tree.Malformed()
}

// Root returns the syntax root, or nil when the unit could not be parsed
func (u *CodeUnit) Root() *syntax.Node {
	if !u.Parsed() {
		return nil
	}
	return u.Tree.Root
}

// Tokens returns the shared token sequence
func (u *CodeUnit) Tokens() syntax.TokenSequence {
	if !u.Parsed() {
		return nil
	}
	return u.Tree.Tokens
}

// Methods returns the methods of the structure, or nil
func (u *CodeUnit) Methods() []*Method {
	if u == nil || u.Structure == nil {
		return nil
	}
	return u.Structure.Methods
}

// IsSynthetic reports whether a name was introduced by a parse wrapper
func IsSynthetic(name string) bool {
	return parse.SyntheticNames[name]
}
