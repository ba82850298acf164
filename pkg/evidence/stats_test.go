package evidence_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func TestAggregate(t *testing.T) {
	pool := []source.Source{
		src("a.com", ptrInt(source.LeanLeft), ptrFloat(90), source.TypeNewsMedia),
		src("b.com", ptrInt(source.LeanLeanRight), ptrFloat(65), source.TypeFactCheck),
		src("c.com", nil, nil, ""),
	}

	stats := evidence.Aggregate(pool)

	require.Equal(t, 3, stats.TotalSources)
	require.Equal(t, 2, stats.WithCredibility)
	require.Equal(t, 2, stats.WithLean)

	require.Equal(t, 1, stats.CredibilityTiers.High)
	require.Equal(t, 1, stats.CredibilityTiers.Medium)
	require.Equal(t, 0, stats.CredibilityTiers.Low)

	require.Equal(t, 1, stats.LeanDistribution["Left"])
	require.Equal(t, 1, stats.LeanDistribution["Lean Right"])
	// Every lean bucket is present even when empty.
	require.Len(t, stats.LeanDistribution, 5)
	require.Equal(t, 0, stats.LeanDistribution["Center"])

	require.Equal(t, 1, stats.TypeDistribution["news_media"])
	require.Equal(t, 1, stats.TypeDistribution["fact_check"])
	require.Equal(t, 1, stats.TypeDistribution["unknown"])
}

func TestAggregateEmpty(t *testing.T) {
	stats := evidence.Aggregate(nil)

	require.Zero(t, stats.TotalSources)
	require.Len(t, stats.LeanDistribution, 5)
	require.Empty(t, stats.TypeDistribution)
}

func TestAggregateLowTier(t *testing.T) {
	pool := []source.Source{
		src("low.com", ptrInt(0), ptrFloat(59.5), source.TypeNewsMedia),
		src("zero.com", ptrInt(0), ptrFloat(0), source.TypeNewsMedia),
	}

	stats := evidence.Aggregate(pool)
	require.Equal(t, 2, stats.CredibilityTiers.Low)
	require.Equal(t, 2, stats.WithCredibility)
}
