package smells

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind is one label of the closed smell taxonomy
type Kind string

const (
	GodClass           Kind = "GodClass"
	DataClass          Kind = "DataClass"
	LargeClass         Kind = "LargeClass"
	LongMethod         Kind = "LongMethod"
	LongParameterList  Kind = "LongParameterList"
	DeadCode           Kind = "DeadCode"
	DuplicateCode      Kind = "DuplicateCode"
	PointlessOperation Kind = "PointlessOperation"
	FeatureEnvy        Kind = "FeatureEnvy"
	GlobalState        Kind = "GlobalState"
	SwallowedException Kind = "SwallowedException"
	MagicNumbers       Kind = "MagicNumbers"
	RawTypes           Kind = "RawTypes"
	UnnecessaryBoxing  Kind = "UnnecessaryBoxing"
	BadNaming          Kind = "BadNaming"
	// Clean means no smell was detected
	Clean Kind = "Clean"
)

// KindClass groups kinds for tie-breaking: structural before semantic
// before lexical before the Clean sentinel.
type KindClass string

const (
	ClassStructural KindClass = "structural"
	ClassSemantic   KindClass = "semantic"
	ClassLexical    KindClass = "lexical"
	ClassSentinel   KindClass = "sentinel"
)

// taxonomy is ordered by priority
var taxonomy = []struct {
	kind  Kind
	class KindClass
	name  string
}{
	{GodClass, ClassStructural, "God Class"},
	{DataClass, ClassStructural, "Data Class"},
	{LargeClass, ClassStructural, "Large Class"},
	{LongMethod, ClassStructural, "Long Method"},
	{LongParameterList, ClassStructural, "Long Parameter List"},
	{DeadCode, ClassStructural, "Dead Code"},
	{DuplicateCode, ClassStructural, "Duplicate Code"},
	{PointlessOperation, ClassStructural, "Pointless Operation"},
	{FeatureEnvy, ClassSemantic, "Feature Envy"},
	{GlobalState, ClassSemantic, "Global State"},
	{SwallowedException, ClassLexical, "Swallowed Exception"},
	{MagicNumbers, ClassLexical, "Magic Numbers"},
	{RawTypes, ClassLexical, "Raw Types"},
	{UnnecessaryBoxing, ClassLexical, "Unnecessary Boxing"},
	{BadNaming, ClassLexical, "Bad Naming"},
	{Clean, ClassSentinel, "Clean"},
}

var (
	priorities = make(map[Kind]int, len(taxonomy))
	byFolded   = make(map[string]Kind, len(taxonomy))
)

func init() {
	for i, entry := range taxonomy {
		priorities[entry.kind] = i
		byFolded[fold(string(entry.kind))] = entry.kind
	}
}

// AllKinds returns the taxonomy in priority order, Clean last
func AllKinds() []Kind {
	kinds := make([]Kind, len(taxonomy))
	for i, entry := range taxonomy {
		kinds[i] = entry.kind
	}
	return kinds
}

// SmellKinds returns every kind except Clean, in priority order
func SmellKinds() []Kind {
	kinds := AllKinds()
	return kinds[:len(kinds)-1]
}

// ParseKind resolves a label such as "GodClass", "god_class" or "God Class"
func ParseKind(label string) (Kind, error) {
	if kind, ok := byFolded[fold(label)]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown smell kind %q", label)
}

// Valid reports whether the kind belongs to the taxonomy
func (k Kind) Valid() bool {
	_, ok := priorities[k]
	return ok
}

// Priority is the tie-break rank of the kind; lower wins. Unknown kinds
// rank after every valid one.
func (k Kind) Priority() int {
	if p, ok := priorities[k]; ok {
		return p
	}
	return len(taxonomy)
}

// Class returns the tie-break class of the kind
func (k Kind) Class() KindClass {
	if p, ok := priorities[k]; ok {
		return taxonomy[p].class
	}
	return ""
}

// DisplayName is the human-readable name, e.g. "God Class"
func (k Kind) DisplayName() string {
	if p, ok := priorities[k]; ok {
		return taxonomy[p].name
	}
	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

func fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
