package classifier

import (
	"context"
	"fmt"
	"strings"

	"smellsense/internal/smells"
	"smellsense/internal/unit"

	"fortio.org/safecast"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// LabelPayloadKey is the payload field holding an exemplar's smell label
const LabelPayloadKey = "smell"

// PointSearcher is the slice of the Qdrant client the knn model needs
type PointSearcher interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// NewQdrantClient connects to a Qdrant instance over gRPC
func NewQdrantClient(host string, port int, apiKey string) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return client, nil
}

// KNNModel votes with the labels of the nearest labelled exemplars. Each
// neighbour contributes its similarity score to its label; the distribution
// is the normalized sum over the taxonomy.
type KNNModel struct {
	embedder   Embedder
	searcher   PointSearcher
	collection string
	topK       int
	logger     *zap.Logger
}

// NewKNNModel creates a nearest-neighbour model over a Qdrant collection
func NewKNNModel(embedder Embedder, searcher PointSearcher, collection string, topK int, logger *zap.Logger) *KNNModel {
	return &KNNModel{
		embedder:   embedder,
		searcher:   searcher,
		collection: collection,
		topK:       topK,
		logger:     logger,
	}
}

func (m *KNNModel) Name() string {
	return fmt.Sprintf("knn(%s,%s,k=%d)", m.embedder.Name(), m.collection, m.topK)
}

func (m *KNNModel) Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
	if strings.TrimSpace(u.Source) == "" {
		return RawVote{}, fmt.Errorf("empty source")
	}
	vector, err := m.embedder.Embed(ctx, u.Source)
	if err != nil {
		return RawVote{}, err
	}

	limit, err := safecast.Conv[uint64](m.topK)
	if err != nil {
		return RawVote{}, fmt.Errorf("invalid top_k %d: %w", m.topK, err)
	}
	points, err := m.searcher.Query(ctx, &qdrant.QueryPoints{
		CollectionName: m.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayloadInclude(LabelPayloadKey),
	})
	if err != nil {
		return RawVote{}, fmt.Errorf("failed to search exemplars: %w", err)
	}

	kinds := smells.AllKinds()
	weights := make([]float64, len(kinds))
	total := 0.0
	for _, point := range points {
		value, ok := point.GetPayload()[LabelPayloadKey]
		if !ok {
			continue
		}
		kind, err := smells.ParseKind(value.GetStringValue())
		if err != nil {
			m.logger.Debug("Skipping exemplar with unknown label",
				zap.String("label", value.GetStringValue()))
			continue
		}
		score := float64(point.GetScore())
		if score <= 0 {
			continue
		}
		weights[kind.Priority()] += score
		total += score
	}
	if total == 0 {
		return RawVote{}, fmt.Errorf("no labelled neighbours in %s", m.collection)
	}

	vote := RawVote{
		Labels:        make([]string, len(kinds)),
		Probabilities: make([]float64, len(kinds)),
	}
	for i, kind := range kinds {
		vote.Labels[i] = string(kind)
		vote.Probabilities[i] = weights[i] / total
	}
	return vote, nil
}
