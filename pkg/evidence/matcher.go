package evidence

import (
	"sort"

	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// Constraints parameterizes a counternarrative search. Defaults come from
// configuration and are filled in by the Engine, not baked in here, so tests
// can vary them freely.
type Constraints struct {
	MinCredibility float64 `json:"min_credibility"`
	Limit          int     `json:"limit"`
	PreferredLeans []int   `json:"preferred_leans,omitempty"`
}

// Candidate pairs a counternarrative source with its weighted score.
type Candidate struct {
	Source        source.Source
	WeightedScore float64
}

// MatchResult is the ranked counternarrative set for one source.
type MatchResult struct {
	Source     source.Source
	Candidates []Candidate
	// Total counts matching candidates before truncation to the limit.
	Total int
	// NonStrict is set when the subject's lean is Center or unknown. There
	// is no opposite sign, so the strict sign filter still runs but the
	// counternarrative concept does not properly apply.
	NonStrict bool
}

// FindCounternarratives selects and ranks sources of strictly opposite
// political lean from the candidate pool. A candidate survives only when its
// lean is known and of opposite sign, its credibility is known and at least
// MinCredibility, and, if PreferredLeans is non-empty, its lean is in that
// set. Survivors are scored in the default neutral context and sorted by
// weighted score desc, credibility desc, domain asc. The pool is never
// mutated; an empty result is valid.
func FindCounternarratives(src source.Source, pool []source.Source, c Constraints) MatchResult {
	lean, leanKnown := src.Lean()

	preferred := make(map[int]bool, len(c.PreferredLeans))
	for _, v := range c.PreferredLeans {
		preferred[v] = true
	}

	var candidates []Candidate
	for i := range pool {
		cand := &pool[i]
		if cand.Domain == src.Domain {
			continue
		}
		candLean, ok := cand.Lean()
		if !ok {
			continue
		}
		// Strictly opposite sign. Excludes Center candidates and, when the
		// subject is Center or unrated, everything.
		if !leanKnown || lean*candLean >= 0 {
			continue
		}
		cred, ok := cand.Credibility()
		if !ok || cred < c.MinCredibility {
			continue
		}
		if len(preferred) > 0 && !preferred[candLean] {
			continue
		}

		scored := ScoreSource(*cand, Context{})
		candidates = append(candidates, Candidate{Source: *cand, WeightedScore: scored.WeightedScore})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.WeightedScore != b.WeightedScore {
			return a.WeightedScore > b.WeightedScore
		}
		ac, _ := a.Source.Credibility()
		bc, _ := b.Source.Credibility()
		if ac != bc {
			return ac > bc
		}
		return a.Source.Domain < b.Source.Domain
	})

	total := len(candidates)
	if c.Limit > 0 && len(candidates) > c.Limit {
		candidates = candidates[:c.Limit]
	}

	return MatchResult{
		Source:     src,
		Candidates: candidates,
		Total:      total,
		NonStrict:  !leanKnown || lean == source.LeanCenter,
	}
}
