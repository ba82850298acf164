package evidence

import (
	"errors"
	"fmt"
)

// ErrInvalidContext reports an unrecognized enum value in a scoring context.
var ErrInvalidContext = errors.New("invalid scoring context")

// ClaimType categorizes the claim a caller is gathering evidence for.
type ClaimType string

const (
	ClaimPolitical     ClaimType = "political"
	ClaimEconomic      ClaimType = "economic"
	ClaimForeignPolicy ClaimType = "foreign_policy"
	ClaimScientific    ClaimType = "scientific"
	ClaimGeneral       ClaimType = "general"
)

// Role is the part a source plays for the claim under evaluation.
type Role string

const (
	RoleSupport Role = "support"
	RoleRefute  Role = "refute"
	RoleNeutral Role = "neutral"
)

// CredibilityPreference is advisory: it never changes the arithmetic, only
// how callers may want to phrase the recommendation.
type CredibilityPreference string

const (
	PreferHigh   CredibilityPreference = "high"
	PreferMedium CredibilityPreference = "medium"
	PreferAny    CredibilityPreference = "any"
)

// Context is the caller-supplied policy for one scoring request. Empty
// fields take the documented defaults: a general claim scored in the
// neutral role.
type Context struct {
	ClaimType            ClaimType             `json:"claim_type,omitempty"`
	EvidenceRole         Role                  `json:"evidence_role,omitempty"`
	PreferredCredibility CredibilityPreference `json:"preferred_credibility,omitempty"`
}

// WithDefaults fills unset fields with the documented defaults.
func (c Context) WithDefaults() Context {
	if c.ClaimType == "" {
		c.ClaimType = ClaimGeneral
	}
	if c.EvidenceRole == "" {
		c.EvidenceRole = RoleNeutral
	}
	if c.PreferredCredibility == "" {
		c.PreferredCredibility = PreferHigh
	}
	return c
}

// Validate rejects enum values outside the documented sets. Unknown values
// are never silently defaulted; empty fields are fine and take defaults.
func (c Context) Validate() error {
	switch c.ClaimType {
	case "", ClaimPolitical, ClaimEconomic, ClaimForeignPolicy, ClaimScientific, ClaimGeneral:
	default:
		return fmt.Errorf("%w: claim_type %q", ErrInvalidContext, c.ClaimType)
	}
	switch c.EvidenceRole {
	case "", RoleSupport, RoleRefute, RoleNeutral:
	default:
		return fmt.Errorf("%w: evidence_role %q", ErrInvalidContext, c.EvidenceRole)
	}
	switch c.PreferredCredibility {
	case "", PreferHigh, PreferMedium, PreferAny:
	default:
		return fmt.Errorf("%w: preferred_credibility %q", ErrInvalidContext, c.PreferredCredibility)
	}
	return nil
}
