package godclass

import (
	"fmt"
	"strings"

	"smellsense/internal/smells"
	"smellsense/internal/unit"
)

// Recommender generates refactoring recommendations for god classes
type Recommender struct {
	thresholds Thresholds
}

// NewRecommender creates a new recommender
func NewRecommender(thresholds Thresholds) *Recommender {
	return &Recommender{thresholds: thresholds}
}

// Generate creates refactoring recommendations based on signal values
func (r *Recommender) Generate(u *unit.CodeUnit, signalValues map[string]float64) []smells.Recommendation {
	var recommendations []smells.Recommendation

	// Recommendation 1: Extract class (if many methods)
	if nomnamm, ok := signalValues["NOMNAMM"]; ok && nomnamm > float64(r.thresholds.MaxMethods) {
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "extract_class",
			Description: fmt.Sprintf("%.0f methods besides accessors, group them by responsibility", nomnamm),
		})
	}

	// Recommendation 2: Improve cohesion (if low TCC)
	if tcc, ok := signalValues["TCC"]; ok && tcc <= r.thresholds.LowCohesion {
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "improve_cohesion",
			Description: fmt.Sprintf("TCC %.2f, split by which methods use which fields", tcc),
		})
	}

	// Recommendation 3: Reduce coupling (if many collaborators)
	sdep := signalValues["SDEP"]
	atfd := signalValues["ATFD"]
	if sdep >= float64(r.thresholds.MinServiceDeps) || atfd >= r.thresholds.HighATFD {
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "reduce_coupling",
			Description: fmt.Sprintf("depends on %.0f services and reads %.0f foreign attributes", sdep, atfd),
		})
	}

	// Recommendation 4: Reduce complexity (if high WMC)
	if wmcnamm, ok := signalValues["WMCNAMM"]; ok && wmcnamm >= r.thresholds.HighWMCNAMM {
		description := fmt.Sprintf("WMC %.0f", wmcnamm)
		if complex := r.findComplexMethods(u); len(complex) > 0 {
			description += ", simplify " + strings.Join(complex, ", ")
		}
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "reduce_complexity",
			Description: description,
		})
	}

	// Recommendation 5: Reduce size (if large LOC)
	if locnamm, ok := signalValues["LOCNAMM"]; ok && locnamm >= r.thresholds.HighLOCNAMM {
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "reduce_size",
			Description: fmt.Sprintf("%.0f lines of code", locnamm),
		})
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, smells.Recommendation{
			Type:        "general",
			Description: "split the class by responsibility",
		})
	}

	return recommendations
}

// findComplexMethods names the methods above HighComplexity
func (r *Recommender) findComplexMethods(u *unit.CodeUnit) []string {
	var complexMethods []string
	for _, method := range u.Methods() {
		if method.Complexity > r.thresholds.HighComplexity {
			complexMethods = append(complexMethods, fmt.Sprintf("%s (complexity %d)", method.Name, method.Complexity))
		}
	}
	return complexMethods
}
