package store

import (
	"context"
	"os"
	"testing"
	"time"

	"smellsense/internal/config"
	"smellsense/internal/ensemble"
	"smellsense/internal/smells"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newKuzuStore(t *testing.T) *VerdictStore {
	t.Helper()
	db, err := NewKuzuDatabase(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	s := NewVerdictStore(db, zap.NewNop())
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestKuzuDatabaseBasics(t *testing.T) {
	db, err := NewKuzuDatabase(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, db.VerifyConnectivity(ctx))

	record, err := db.ExecuteReadSingle(ctx, "RETURN 'hello' AS greeting, 42 AS number", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", record["greeting"])
	assert.Equal(t, int64(42), record["number"])

	_, err = db.ExecuteReadSingle(ctx, "MATCH (v:Verdict) RETURN v.id AS id", nil)
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = db.ExecuteRead(ctx, "MATCH (n:Missing) RETURN n", nil)
	assert.Error(t, err)
}

func TestVerdictStoreRoundTrip(t *testing.T) {
	s := newKuzuStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "src/OrderManager.java", "java", &ensemble.Verdict{
		PrimarySmell: smells.GodClass,
		Confidence:   82.5,
		SecondarySmells: []ensemble.SecondarySmell{
			{Smell: smells.LongMethod, Score: 0.4},
			{Smell: smells.MagicNumbers, Score: 0.1},
		},
		Rationale: []string{"[god_class_detector] class OrderManager", "contributors: detectors [god_class_detector]; classifier unavailable"},
		Degraded:  true,
	})
	require.NoError(t, err)
	assert.Len(t, first.ID, 36)

	_, err = s.Save(ctx, "", "python", &ensemble.Verdict{
		PrimarySmell:    smells.Clean,
		Confidence:      97.5,
		SecondarySmells: []ensemble.SecondarySmell{},
	})
	require.NoError(t, err)

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, smells.Clean, records[0].PrimarySmell)
	assert.Empty(t, records[0].SecondarySmells)
	assert.Nil(t, records[0].Rationale)

	got := records[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.Equal(t, "src/OrderManager.java", got.Path)
	assert.Equal(t, "java", got.Language)
	assert.Equal(t, smells.GodClass, got.PrimarySmell)
	assert.InDelta(t, 82.5, got.Confidence, 1e-9)
	assert.True(t, got.Degraded)
	assert.Equal(t, first.Rationale, got.Rationale)
	assert.Equal(t, first.SecondarySmells, got.SecondarySmells)

	records, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, smells.Clean, records[0].PrimarySmell)

	records, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVerdictStoreCountBySmell(t *testing.T) {
	s := newKuzuStore(t)
	ctx := context.Background()

	for _, v := range []*ensemble.Verdict{
		{PrimarySmell: smells.DeadCode, SecondarySmells: []ensemble.SecondarySmell{{Smell: smells.MagicNumbers, Score: 0.2}}},
		{PrimarySmell: smells.DeadCode},
		{PrimarySmell: smells.GodClass, SecondarySmells: []ensemble.SecondarySmell{{Smell: smells.MagicNumbers, Score: 0.1}}},
	} {
		_, err := s.Save(ctx, "", "java", v)
		require.NoError(t, err)
	}

	stats, err := s.CountBySmell(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[smells.Kind]int{smells.DeadCode: 2, smells.GodClass: 1}, stats.Primary)
	assert.Equal(t, map[smells.Kind]int{smells.MagicNumbers: 2}, stats.Secondary)
}

func TestOpenWithoutStore(t *testing.T) {
	cfg := config.Default()

	db, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)

	cfg.Store.Backend = "sqlite"
	_, err = Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestOpenKuzu(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.StoreKuzu
	cfg.Kuzu.Path = ":memory:"

	db, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close(context.Background())

	_, ok := db.(*KuzuDatabase)
	assert.True(t, ok)
}

// Runs against a live server when NEO4J_URI is set
func TestNeo4jVerdictStore(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	ctx := context.Background()

	db, err := NewNeo4jDatabase(uri, os.Getenv("NEO4J_USERNAME"), os.Getenv("NEO4J_PASSWORD"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close(ctx)
	require.NoError(t, db.VerifyConnectivity(ctx))

	s := NewVerdictStore(db, zap.NewNop())
	saved, err := s.Save(ctx, "", "go", &ensemble.Verdict{PrimarySmell: smells.GlobalState, Confidence: 70})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.ExecuteWrite(ctx, "MATCH (v:Verdict {id: $id}) DETACH DELETE v", map[string]any{"id": saved.ID})
	})

	records, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, saved.ID, records[0].ID)
}
