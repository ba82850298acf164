package evidence

import (
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// TierCounts counts sources per credibility tier, over rated sources only.
type TierCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Stats summarizes the catalogue distributions.
type Stats struct {
	TotalSources     int            `json:"total_sources"`
	WithCredibility  int            `json:"with_newsguard"`
	WithLean         int            `json:"with_political_lean"`
	LeanDistribution map[string]int `json:"lean_distribution"`
	TypeDistribution map[string]int `json:"type_distribution"`
	CredibilityTiers TierCounts     `json:"credibility_tiers"`
}

// Aggregate computes catalogue distributions in a single linear pass.
// Unknown leans are excluded from the lean distribution; unknown types are
// counted under the explicit "unknown" key, never dropped.
func Aggregate(pool []source.Source) Stats {
	stats := Stats{
		LeanDistribution: map[string]int{
			source.LeanLabel(source.LeanLeft):      0,
			source.LeanLabel(source.LeanLeanLeft):  0,
			source.LeanLabel(source.LeanCenter):    0,
			source.LeanLabel(source.LeanLeanRight): 0,
			source.LeanLabel(source.LeanRight):     0,
		},
		TypeDistribution: make(map[string]int),
	}

	for i := range pool {
		src := &pool[i]
		stats.TotalSources++

		if lean, ok := src.Lean(); ok {
			stats.WithLean++
			stats.LeanDistribution[source.LeanLabel(lean)]++
		}

		t := src.SourceType
		if t == "" {
			t = source.TypeUnknown
		}
		stats.TypeDistribution[string(t)]++

		if cred, ok := src.Credibility(); ok {
			stats.WithCredibility++
			switch {
			case cred >= 80:
				stats.CredibilityTiers.High++
			case cred >= 60:
				stats.CredibilityTiers.Medium++
			default:
				stats.CredibilityTiers.Low++
			}
		}
	}

	return stats
}
