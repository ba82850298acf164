package evidence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/internal/store"
	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func newTestStore(t *testing.T, pool []source.Source) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.UpsertSources(context.Background(), pool))
	return db
}

func TestEngineScore(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 10)

	src, result, err := engine.Score(context.Background(), "reuters.com", evidence.Context{
		ClaimType: evidence.ClaimGeneral,
	})
	require.NoError(t, err)
	require.Equal(t, "reuters.com", src.Domain)
	require.Equal(t, 100.0, result.WeightedScore) // 95 + 5 wire service
}

func TestEngineScoreNotFound(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 10)

	_, _, err := engine.Score(context.Background(), "missing.com", evidence.Context{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEngineScoreInvalidContext(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 10)

	_, _, err := engine.Score(context.Background(), "reuters.com", evidence.Context{ClaimType: "sports"})
	require.ErrorIs(t, err, evidence.ErrInvalidContext)
}

func TestEngineCounternarrativesDefaults(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 1)

	result, err := engine.Counternarratives(context.Background(), "nytimes.com", evidence.Constraints{})
	require.NoError(t, err)
	// Default limit 1 truncates; Total still reports both matches.
	require.Len(t, result.Candidates, 1)
	require.Equal(t, 2, result.Total)
	require.Equal(t, "wsj.com", result.Candidates[0].Source.Domain)
}

func TestEngineCounternarrativesInvalidLean(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 10)

	_, err := engine.Counternarratives(context.Background(), "nytimes.com", evidence.Constraints{
		PreferredLeans: []int{3},
	})
	require.ErrorIs(t, err, evidence.ErrInvalidContext)
}

func TestEngineStats(t *testing.T) {
	db := newTestStore(t, newsPool())
	engine := evidence.NewEngine(db, 60, 10)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(newsPool()), stats.TotalSources)
}

func TestNewEngineDefaults(t *testing.T) {
	engine := evidence.NewEngine(nil, 0, 0)
	require.Equal(t, 60.0, engine.Defaults().MinCredibility)
	require.Equal(t, 10, engine.Defaults().Limit)
}
