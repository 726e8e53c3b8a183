package lexical

import (
	"fmt"

	"smellsense/internal/smells"
)

// Scale is the saturating confidence curve shared by the lexical detectors:
// c(n) = min(Max, 1 - (1-Rate)^n) over n distinct occurrences.
type Scale struct {
	Rate float64 `yaml:"rate" toml:"rate"`
	Max  float64 `yaml:"max" toml:"max"`
}

// MagicNumberThresholds configure magic number detection
type MagicNumberThresholds struct {
	Allowed []float64 `yaml:"allowed" toml:"allowed"`
}

// RawTypeThresholds configure raw type detection
type RawTypeThresholds struct {
	// Generic lists type names that always take type arguments
	Generic []string `yaml:"generic" toml:"generic"`
}

// NamingThresholds configure bad naming detection
type NamingThresholds struct {
	MinLength    int      `yaml:"min_length" toml:"min_length"`
	AllowedShort []string `yaml:"allowed_short" toml:"allowed_short"`
	Banned       []string `yaml:"banned" toml:"banned"`
}

// Thresholds groups the lexical detector thresholds
type Thresholds struct {
	Scale        Scale                 `yaml:"scale" toml:"scale"`
	MagicNumbers MagicNumberThresholds `yaml:"magic_numbers" toml:"magic_numbers"`
	RawTypes     RawTypeThresholds     `yaml:"raw_types" toml:"raw_types"`
	Naming       NamingThresholds      `yaml:"naming" toml:"naming"`
}

// DefaultThresholds returns the stock lexical thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Scale:        Scale{Rate: 0.45, Max: 0.95},
		MagicNumbers: MagicNumberThresholds{Allowed: []float64{0, 1, -1, 2}},
		RawTypes: RawTypeThresholds{Generic: []string{
			"List", "ArrayList", "LinkedList", "Map", "HashMap", "TreeMap", "LinkedHashMap",
			"Set", "HashSet", "TreeSet", "LinkedHashSet", "Collection", "Iterable", "Iterator",
			"Queue", "Deque", "ArrayDeque", "PriorityQueue", "Vector", "Hashtable", "Stack",
			"Optional", "Comparator", "Comparable", "Enumeration",
			"Dict", "Tuple", "FrozenSet", "DefaultDict", "OrderedDict",
			"Array", "ReadonlyArray", "WeakMap", "WeakSet", "Promise", "Record",
		}},
		Naming: NamingThresholds{
			MinLength:    2,
			AllowedShort: []string{"i", "j", "k", "n", "x", "y", "z", "e", "t", "_"},
			Banned: []string{
				"data", "temp", "tmp", "foo", "bar", "baz", "qux", "obj", "thing", "stuff",
				"dummy", "asdf", "xxx", "yyy", "zzz", "blah", "myvar",
			},
		},
	}
}

// Validate checks the thresholds for consistency
func (t Thresholds) Validate() error {
	if t.Scale.Rate <= 0 || t.Scale.Rate > 1 || t.Scale.Max <= 0 || t.Scale.Max > 1 {
		return fmt.Errorf("lexical scale rate and max must be within (0,1]: %w", smells.ErrConfiguration)
	}
	if t.Naming.MinLength < 1 {
		return fmt.Errorf("naming min_length must be positive: %w", smells.ErrConfiguration)
	}
	return nil
}
