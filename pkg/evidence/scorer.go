package evidence

import (
	"fmt"
	"strings"

	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// Recommendation is the human-facing verdict derived from a weighted score.
type Recommendation string

const (
	RecommendStrong         Recommendation = "strong"
	RecommendAcceptable     Recommendation = "acceptable"
	RecommendUseWithCaution Recommendation = "use_with_caution"
	RecommendNotRecommended Recommendation = "not_recommended"
)

// Breakdown itemizes how a weighted score was assembled. It is part of the
// API contract: callers must be able to audit why a score was assigned.
type Breakdown struct {
	Base               float64 `json:"credibility_score"`
	TypeBonus          float64 `json:"type_bonus"`
	BiasPenalty        float64 `json:"bias_penalty"`
	CredibilityUnknown bool    `json:"credibility_unknown,omitempty"`
	Explanation        string  `json:"explanation"`
}

// ScoreResult is the outcome of scoring one source in one context.
type ScoreResult struct {
	WeightedScore   float64        `json:"weighted_score"`
	Breakdown       Breakdown      `json:"scoring_breakdown"`
	Recommendation  Recommendation `json:"recommendation"`
	CredibilityTier source.Tier    `json:"credibility_tier"`
}

// ScoreSource computes the context-weighted quality score for one source:
// base credibility plus a type bonus, minus a bias penalty that applies only
// in the neutral evidence role, clamped to [0,100]. Unrated sources score
// from a zero base and carry CredibilityUnknown so callers can tell
// "rated 0" from "unrated". Pure and deterministic.
func ScoreSource(src source.Source, ctx Context) ScoreResult {
	ctx = ctx.WithDefaults()

	base, rated := src.Credibility()
	bonus := typeBonus(src.SourceType, ctx.ClaimType)
	penalty := biasPenalty(&src, ctx.EvidenceRole)

	weighted := base + bonus - penalty
	if weighted < 0 {
		weighted = 0
	} else if weighted > 100 {
		weighted = 100
	}

	return ScoreResult{
		WeightedScore: weighted,
		Breakdown: Breakdown{
			Base:               base,
			TypeBonus:          bonus,
			BiasPenalty:        penalty,
			CredibilityUnknown: !rated,
			Explanation:        explain(&src, base, rated, bonus, penalty),
		},
		Recommendation:  recommend(weighted),
		CredibilityTier: source.CredibilityTier(src.NewsguardScore),
	}
}

func typeBonus(t source.Type, claim ClaimType) float64 {
	switch t {
	case source.TypeFactCheck:
		return 10
	case source.TypeThinkTank:
		if claim == ClaimPolitical || claim == ClaimEconomic || claim == ClaimForeignPolicy {
			return 5
		}
		return 0
	case source.TypeWireService:
		// Fact-focused for every claim type.
		return 5
	case source.TypeTradePublication:
		return 3
	}
	return 0
}

func biasPenalty(src *source.Source, role Role) float64 {
	if role != RoleNeutral {
		// Partisan alignment is expected for support/refute evidence.
		return 0
	}
	lean, known := src.Lean()
	if !known {
		return 0
	}
	switch lean {
	case source.LeanLeft, source.LeanRight:
		return 10
	case source.LeanLeanLeft, source.LeanLeanRight:
		return 5
	}
	return 0
}

func recommend(weighted float64) Recommendation {
	switch {
	case weighted >= 80:
		return RecommendStrong
	case weighted >= 60:
		return RecommendAcceptable
	case weighted >= 40:
		return RecommendUseWithCaution
	default:
		return RecommendNotRecommended
	}
}

func explain(src *source.Source, base float64, rated bool, bonus, penalty float64) string {
	var parts []string

	if rated {
		parts = append(parts, fmt.Sprintf("base credibility %.0f/100", base))
	} else {
		parts = append(parts, "no credibility rating available")
	}
	if bonus > 0 {
		parts = append(parts, fmt.Sprintf("+%.0f type bonus (%s)", bonus, src.SourceType))
	}
	if penalty > 0 {
		lean, _ := src.Lean()
		parts = append(parts, fmt.Sprintf("-%.0f bias penalty (%s for neutral evidence)", penalty, source.LeanLabel(lean)))
	}

	return strings.Join(parts, "; ")
}
