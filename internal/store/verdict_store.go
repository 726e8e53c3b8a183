package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smellsense/internal/ensemble"
	"smellsense/internal/smells"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is a stored verdict
type Record struct {
	ID              string                    `json:"id"`
	CreatedAt       time.Time                 `json:"created_at"`
	Path            string                    `json:"path,omitempty"`
	Language        string                    `json:"language"`
	PrimarySmell    smells.Kind               `json:"primary_smell"`
	Confidence      float64                   `json:"confidence"`
	SecondarySmells []ensemble.SecondarySmell `json:"secondary_smells"`
	Rationale       []string                  `json:"rationale"`
	Degraded        bool                      `json:"degraded"`
}

// Stats counts stored verdicts per smell kind
type Stats struct {
	Primary   map[smells.Kind]int `json:"primary"`
	Secondary map[smells.Kind]int `json:"secondary"`
}

// VerdictStore writes verdicts as Verdict nodes with ALSO_SHOWS edges to
// their secondary smells
type VerdictStore struct {
	db     GraphDatabase
	logger *zap.Logger
	now    func() time.Time
}

func NewVerdictStore(db GraphDatabase, logger *zap.Logger) *VerdictStore {
	return &VerdictStore{db: db, logger: logger, now: time.Now}
}

// Save stores a verdict and returns its record
func (s *VerdictStore) Save(ctx context.Context, path, language string, v *ensemble.Verdict) (*Record, error) {
	rationale, err := json.Marshal(v.Rationale)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rationale: %w", err)
	}

	record := &Record{
		ID:              uuid.New().String(),
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
		Path:            path,
		Language:        language,
		PrimarySmell:    v.PrimarySmell,
		Confidence:      v.Confidence,
		SecondarySmells: v.SecondarySmells,
		Rationale:       v.Rationale,
		Degraded:        v.Degraded,
	}

	_, err = s.db.ExecuteWrite(ctx, `
		CREATE (v:Verdict {
			id: $id,
			createdAt: $createdAt,
			path: $path,
			language: $language,
			primarySmell: $primarySmell,
			confidence: $confidence,
			degraded: $degraded,
			rationale: $rationale
		})`, map[string]any{
		"id":           record.ID,
		"createdAt":    record.CreatedAt.UnixMilli(),
		"path":         path,
		"language":     language,
		"primarySmell": string(v.PrimarySmell),
		"confidence":   v.Confidence,
		"degraded":     v.Degraded,
		"rationale":    string(rationale),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save verdict: %w", err)
	}

	for _, secondary := range v.SecondarySmells {
		if _, err := s.db.ExecuteWrite(ctx, "MERGE (s:Smell {name: $name})",
			map[string]any{"name": string(secondary.Smell)}); err != nil {
			return nil, fmt.Errorf("failed to save smell %s: %w", secondary.Smell, err)
		}
		_, err := s.db.ExecuteWrite(ctx, `
			MATCH (v:Verdict {id: $id}), (s:Smell {name: $name})
			CREATE (v)-[:ALSO_SHOWS {score: $score}]->(s)`, map[string]any{
			"id":    record.ID,
			"name":  string(secondary.Smell),
			"score": secondary.Score,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to link smell %s: %w", secondary.Smell, err)
		}
	}

	s.logger.Debug("Saved verdict",
		zap.String("id", record.ID),
		zap.String("primary_smell", string(record.PrimarySmell)))
	return record, nil
}

// Recent returns up to limit verdicts, newest first
func (s *VerdictStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		return []*Record{}, nil
	}

	rows, err := s.db.ExecuteRead(ctx, fmt.Sprintf(`
		MATCH (v:Verdict)
		RETURN v.id AS id, v.createdAt AS createdAt, v.path AS path, v.language AS language,
			v.primarySmell AS primarySmell, v.confidence AS confidence,
			v.degraded AS degraded, v.rationale AS rationale
		ORDER BY createdAt DESC, id
		LIMIT %d`, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read verdicts: %w", err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		record, err := s.recordFromRow(row)
		if err != nil {
			return nil, err
		}
		if record.SecondarySmells, err = s.secondaries(ctx, record.ID); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *VerdictStore) secondaries(ctx context.Context, id string) ([]ensemble.SecondarySmell, error) {
	rows, err := s.db.ExecuteRead(ctx, `
		MATCH (v:Verdict {id: $id})-[r:ALSO_SHOWS]->(s:Smell)
		RETURN s.name AS smell, r.score AS score
		ORDER BY score DESC, smell`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to read secondary smells of %s: %w", id, err)
	}

	result := make([]ensemble.SecondarySmell, 0, len(rows))
	for _, row := range rows {
		result = append(result, ensemble.SecondarySmell{
			Smell: smells.Kind(asString(row["smell"])),
			Score: asFloat64(row["score"]),
		})
	}
	return result, nil
}

// CountBySmell counts stored verdicts by primary and by secondary smell
func (s *VerdictStore) CountBySmell(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Primary:   make(map[smells.Kind]int),
		Secondary: make(map[smells.Kind]int),
	}

	rows, err := s.db.ExecuteRead(ctx,
		"MATCH (v:Verdict) RETURN v.primarySmell AS smell, count(*) AS total", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count verdicts: %w", err)
	}
	for _, row := range rows {
		stats.Primary[smells.Kind(asString(row["smell"]))] = int(asInt64(row["total"]))
	}

	rows, err = s.db.ExecuteRead(ctx,
		"MATCH (:Verdict)-[:ALSO_SHOWS]->(s:Smell) RETURN s.name AS smell, count(*) AS total", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count secondary smells: %w", err)
	}
	for _, row := range rows {
		stats.Secondary[smells.Kind(asString(row["smell"]))] = int(asInt64(row["total"]))
	}
	return stats, nil
}

func (s *VerdictStore) recordFromRow(row map[string]any) (*Record, error) {
	record := &Record{
		ID:           asString(row["id"]),
		CreatedAt:    time.UnixMilli(asInt64(row["createdAt"])).UTC(),
		Path:         asString(row["path"]),
		Language:     asString(row["language"]),
		PrimarySmell: smells.Kind(asString(row["primarySmell"])),
		Confidence:   asFloat64(row["confidence"]),
	}
	record.Degraded, _ = row["degraded"].(bool)

	if raw := asString(row["rationale"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &record.Rationale); err != nil {
			return nil, fmt.Errorf("failed to decode rationale of %s: %w", record.ID, err)
		}
	}
	return record, nil
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func asFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
