package evidence_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func newsPool() []source.Source {
	return []source.Source{
		src("nytimes.com", ptrInt(source.LeanLeanLeft), ptrFloat(87.5), source.TypeNewsMedia),
		src("wsj.com", ptrInt(source.LeanLeanRight), ptrFloat(92.5), source.TypeNewsMedia),
		src("cnn.com", ptrInt(source.LeanLeft), ptrFloat(74), source.TypeNewsMedia),
		src("foxnews.com", ptrInt(source.LeanRight), ptrFloat(69.5), source.TypeNewsMedia),
		src("reuters.com", ptrInt(source.LeanCenter), ptrFloat(95), source.TypeWireService),
		src("dailykos.com", ptrInt(source.LeanLeft), ptrFloat(40), source.TypeNewsMedia),
		src("unrated.org", nil, ptrFloat(80), source.TypeNewsMedia),
		src("nocred.net", ptrInt(source.LeanRight), nil, source.TypeNewsMedia),
	}
}

func domains(cands []evidence.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Source.Domain
	}
	return out
}

func TestFindCounternarrativesStrictOpposite(t *testing.T) {
	pool := newsPool()
	subject := pool[0] // nytimes, Lean Left

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})

	// Only right-leaning candidates with known credibility >= 60 survive.
	// Center, same-side, unrated-lean and unrated-credibility are all out.
	require.Equal(t, []string{"wsj.com", "foxnews.com"}, domains(result.Candidates))
	require.Equal(t, 2, result.Total)
	require.False(t, result.NonStrict)
}

func TestFindCounternarrativesRightSubject(t *testing.T) {
	pool := newsPool()
	subject := pool[3] // foxnews, Right

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})

	require.Equal(t, []string{"nytimes.com", "cnn.com"}, domains(result.Candidates))
}

func TestFindCounternarrativesOrdering(t *testing.T) {
	pool := []source.Source{
		src("subject.com", ptrInt(source.LeanLeft), ptrFloat(70), source.TypeNewsMedia),
		// Same weighted score (80-10=70 vs 75-5=70): higher raw credibility wins.
		src("hardright.com", ptrInt(source.LeanRight), ptrFloat(80), source.TypeNewsMedia),
		src("leanright.com", ptrInt(source.LeanLeanRight), ptrFloat(75), source.TypeNewsMedia),
		// Fully tied with hardright: domain ascending breaks the tie.
		src("alpha.com", ptrInt(source.LeanRight), ptrFloat(80), source.TypeNewsMedia),
	}

	result := evidence.FindCounternarratives(pool[0], pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})

	require.Equal(t, []string{"alpha.com", "hardright.com", "leanright.com"}, domains(result.Candidates))
}

func TestFindCounternarrativesPreferredLeans(t *testing.T) {
	pool := newsPool()
	subject := pool[0] // nytimes, Lean Left

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
		PreferredLeans: []int{source.LeanRight},
	})

	require.Equal(t, []string{"foxnews.com"}, domains(result.Candidates))
	require.Equal(t, 1, result.Total)
}

func TestFindCounternarrativesLimitAndTotal(t *testing.T) {
	pool := newsPool()
	subject := pool[0]

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          1,
	})

	require.Len(t, result.Candidates, 1)
	require.Equal(t, 2, result.Total)
}

func TestFindCounternarrativesMinCredibility(t *testing.T) {
	pool := newsPool()
	subject := pool[1] // wsj, Lean Right

	strict := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 80,
		Limit:          10,
	})
	require.Equal(t, []string{"nytimes.com"}, domains(strict.Candidates))

	loose := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 40,
		Limit:          10,
	})
	require.Equal(t, 3, loose.Total)
}

func TestFindCounternarrativesCenterSubject(t *testing.T) {
	pool := newsPool()
	subject := pool[4] // reuters, Center

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})

	require.Empty(t, result.Candidates)
	require.Zero(t, result.Total)
	require.True(t, result.NonStrict)
}

func TestFindCounternarrativesUnknownLeanSubject(t *testing.T) {
	pool := newsPool()
	subject := pool[6] // unrated.org, no lean

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})

	require.Empty(t, result.Candidates)
	require.True(t, result.NonStrict)
}

func TestFindCounternarrativesExcludesSelf(t *testing.T) {
	// Two entries sharing the subject's domain must never match, even at
	// opposite lean.
	subject := src("dup.com", ptrInt(source.LeanLeft), ptrFloat(80), source.TypeNewsMedia)
	pool := []source.Source{
		subject,
		src("dup.com", ptrInt(source.LeanRight), ptrFloat(90), source.TypeNewsMedia),
	}

	result := evidence.FindCounternarratives(subject, pool, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})
	require.Empty(t, result.Candidates)
}

func TestFindCounternarrativesEmptyPool(t *testing.T) {
	subject := src("alone.com", ptrInt(source.LeanLeft), ptrFloat(80), source.TypeNewsMedia)

	result := evidence.FindCounternarratives(subject, nil, evidence.Constraints{
		MinCredibility: 60,
		Limit:          10,
	})
	require.Empty(t, result.Candidates)
	require.Zero(t, result.Total)
}
