package source

import (
	"time"
)

// Type classifies a publisher. The catalogue data carries free-form type
// strings; ParseType folds anything unrecognized into TypeUnknown so the
// scoring bonus table stays exhaustive.
type Type string

const (
	TypeNewsMedia        Type = "news_media"
	TypeFactCheck        Type = "fact_check"
	TypeWireService      Type = "wire_service"
	TypeThinkTank        Type = "think_tank"
	TypeTradePublication Type = "trade_publication"
	TypeAuthor           Type = "author"
	TypeNewsAggregator   Type = "news_aggregator"
	TypeOpinion          Type = "opinion"
	TypeUnknown          Type = "unknown"
)

// AllTypes returns every known source type.
func AllTypes() []Type {
	return []Type{
		TypeNewsMedia,
		TypeFactCheck,
		TypeWireService,
		TypeThinkTank,
		TypeTradePublication,
		TypeAuthor,
		TypeNewsAggregator,
		TypeOpinion,
	}
}

// ParseType maps a raw catalogue type string to a known Type.
func ParseType(raw string) Type {
	switch Type(raw) {
	case TypeNewsMedia, TypeFactCheck, TypeWireService, TypeThinkTank,
		TypeTradePublication, TypeAuthor, TypeNewsAggregator, TypeOpinion:
		return Type(raw)
	}
	// Legacy label from an earlier catalogue import.
	if raw == "think_tank___policy_group" {
		return TypeThinkTank
	}
	return TypeUnknown
}

// Political lean scale: -2 (Left) to +2 (Right), 0 = Center.
const (
	LeanLeft      = -2
	LeanLeanLeft  = -1
	LeanCenter    = 0
	LeanLeanRight = 1
	LeanRight     = 2
)

// LeanLabel returns the display label for a lean value.
func LeanLabel(lean int) string {
	switch lean {
	case LeanLeft:
		return "Left"
	case LeanLeanLeft:
		return "Lean Left"
	case LeanCenter:
		return "Center"
	case LeanLeanRight:
		return "Lean Right"
	case LeanRight:
		return "Right"
	}
	return "Unknown"
}

// Tier buckets a credibility score.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierUnknown Tier = "unknown"
)

// CredibilityTier classifies a credibility score: high >= 80, medium >= 60,
// low below that, unknown when unrated.
func CredibilityTier(score *float64) Tier {
	if score == nil {
		return TierUnknown
	}
	switch {
	case *score >= 80:
		return TierHigh
	case *score >= 60:
		return TierMedium
	default:
		return TierLow
	}
}

// Source is a rated publisher. The domain is the sole identity key.
// PoliticalLean and NewsguardScore are optional: nil means unrated, which is
// distinct from a real 0 (Center lean, or a zero score).
type Source struct {
	Domain             string               `json:"domain" db:"domain"`
	Name               string               `json:"name" db:"name"`
	PoliticalLean      *int                 `json:"political_lean,omitempty" db:"political_lean"`
	PoliticalLeanLabel string               `json:"political_lean_label,omitempty" db:"political_lean_label"`
	NewsguardScore     *float64             `json:"newsguard_score,omitempty" db:"newsguard_score"`
	NewsguardRating    string               `json:"newsguard_rating,omitempty" db:"newsguard_rating"`
	SourceType         Type                 `json:"source_type" db:"source_type"`
	Criteria           map[string]Criterion `json:"criteria,omitempty" db:"-"`
	Description        string               `json:"description,omitempty" db:"description"`
	OwnershipSummary   string               `json:"ownership_summary,omitempty" db:"ownership_summary"`
	CreatedAt          time.Time            `json:"created_at" db:"created_at"`
	CriteriaJSON       string               `json:"-" db:"criteria_json"`
}

// Criterion is one named credibility sub-check from the rating provider.
// Descriptive only; never part of the scoring arithmetic.
type Criterion struct {
	Status string  `json:"status"` // pass, fail, or na
	Points float64 `json:"points"`
}

// Lean returns the political lean and whether it is known. Out-of-range
// values are treated as unknown rather than clamped or defaulted.
func (s *Source) Lean() (int, bool) {
	if s.PoliticalLean == nil {
		return 0, false
	}
	v := *s.PoliticalLean
	if v < LeanLeft || v > LeanRight {
		return 0, false
	}
	return v, true
}

// Credibility returns the credibility score and whether it is known.
// Out-of-range values count as unknown.
func (s *Source) Credibility() (float64, bool) {
	if s.NewsguardScore == nil {
		return 0, false
	}
	v := *s.NewsguardScore
	if v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}
