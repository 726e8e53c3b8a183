// Package classifier adapts a learned smell classifier to the closed
// taxonomy. The model itself is a black box returning a probability vector;
// the Adapter validates and reorders it.
package classifier

import (
	"context"

	"smellsense/internal/unit"
)

// RawVote is a model's output in the model's own label order
type RawVote struct {
	Labels        []string  `json:"labels"`
	Probabilities []float64 `json:"probabilities"`
}

// Model maps a code unit to a probability distribution over smell labels
type Model interface {
	Name() string
	Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error)
}

// StaticModel returns the same vote for every unit. It backs offline runs
// and tests.
type StaticModel struct {
	name string
	vote RawVote
}

// NewStaticModel creates a model that always answers with vote
func NewStaticModel(name string, vote RawVote) *StaticModel {
	return &StaticModel{name: name, vote: vote}
}

// NewStaticModelFromMap builds a static model from a label->probability map
func NewStaticModelFromMap(name string, probabilities map[string]float64) *StaticModel {
	vote := RawVote{}
	for _, label := range sortedLabels(probabilities) {
		vote.Labels = append(vote.Labels, label)
		vote.Probabilities = append(vote.Probabilities, probabilities[label])
	}
	return NewStaticModel(name, vote)
}

func (m *StaticModel) Name() string {
	return m.name
}

func (m *StaticModel) Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
	if err := ctx.Err(); err != nil {
		return RawVote{}, err
	}
	return copyVote(m.vote), nil
}
