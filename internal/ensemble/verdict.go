package ensemble

import (
	"smellsense/internal/smells"
)

// Verdict is the single label chosen for a code unit
type Verdict struct {
	PrimarySmell smells.Kind `json:"primary_smell"`
	// Confidence is a percentage in [0,100]
	Confidence      float64          `json:"confidence"`
	SecondarySmells []SecondarySmell `json:"secondary_smells"`
	Rationale       []string         `json:"rationale"`
	// Degraded is set when the classifier did not contribute
	Degraded bool `json:"degraded"`
}

// SecondarySmell is a runner-up candidate worth mentioning
type SecondarySmell struct {
	Smell smells.Kind `json:"smell"`
	Score float64     `json:"score"`
}

// IsClean reports whether no smell was found
func (v *Verdict) IsClean() bool {
	return v.PrimarySmell == smells.Clean
}

// Provenance records which signal sources took part in a classification
type Provenance struct {
	// Detectors that fired, in bank order
	Detectors []string
	// Classifier is the model name, empty when none is configured
	Classifier    string
	ClassifierErr error
}

// Degraded reports whether the verdict rests on heuristics alone
func (p Provenance) Degraded() bool {
	return p.Classifier == "" || p.ClassifierErr != nil
}
