// Package risk obtains fraud-risk assessments for a shopper+cart pair.
//
// The upstream scoring service is opaque; only its request/response contract
// matters here. When it is unreachable or returns garbage, a deterministic
// local fallback keyed by the shopper's demo profile is substituted, so the
// checkout flow always receives a well-formed assessment.
package risk

import (
	"context"
	"time"
)

// Level is a risk band, order-consistent with the score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// ModelSourceFallback marks assessments produced locally rather than by the
// upstream scoring engine.
const ModelSourceFallback = "local-fallback"

// Assessment is one fraud-risk verdict. Immutable once created; a changed
// cart or identity produces a new assessment, never a mutation.
type Assessment struct {
	Score       int      `json:"risk_score"` // 0..100
	Level       Level    `json:"risk_level"`
	ReasonCodes []string `json:"reason_codes"`
	ModelSource string   `json:"model_used"`
}

// IsFallback returns true when the assessment was produced locally.
func (a *Assessment) IsFallback() bool {
	return a.ModelSource == ModelSourceFallback
}

// Score band thresholds. Fixed and exact: 81..100 is HIGH, 40..80 is
// MEDIUM (both bounds inclusive), 0..39 is LOW.
const (
	highScoreFloor   = 81
	mediumScoreFloor = 40
)

// LevelFromScore derives the band for a score. Monotonic by construction.
func LevelFromScore(score int) Level {
	switch {
	case score >= highScoreFloor:
		return LevelHigh
	case score >= mediumScoreFloor:
		return LevelMedium
	default:
		return LevelLow
	}
}

// fallbacks maps demo profile IDs to their deterministic local assessments.
var fallbacks = map[string]Assessment{
	"low_risk": {
		Score:       12,
		Level:       LevelLow,
		ReasonCodes: []string{"no_significant_flags"},
		ModelSource: ModelSourceFallback,
	},
	"medium_risk": {
		Score:       58,
		Level:       LevelMedium,
		ReasonCodes: []string{"high_return_ratio"},
		ModelSource: ModelSourceFallback,
	},
	"high_risk": {
		Score:       91,
		Level:       LevelHigh,
		ReasonCodes: []string{"size_variation_detected", "rapid_return_pattern", "high_return_ratio"},
		ModelSource: ModelSourceFallback,
	},
}

// Fallback returns the local assessment for a profile. Unrecognized
// profiles default to the lowest-risk fallback.
func Fallback(profileID string) *Assessment {
	a, ok := fallbacks[profileID]
	if !ok {
		a = fallbacks["low_risk"]
	}
	cp := a
	cp.ReasonCodes = append([]string(nil), a.ReasonCodes...)
	return &cp
}

// Record is an audit entry: one assessment as observed by the checkout core.
type Record struct {
	ID          string    `json:"id"`
	UserHash    string    `json:"user_hash"`
	Score       int       `json:"risk_score"`
	Level       Level     `json:"risk_level"`
	ReasonCodes []string  `json:"reason_codes"`
	ModelSource string    `json:"model_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditStore persists the assessment audit trail.
type AuditStore interface {
	Record(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userHash string, limit int) ([]*Record, error)
}
