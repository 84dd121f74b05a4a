// Package insight turns a manual vs optimized comparison into a short narrative.
package insight

import (
	"context"
	"errors"

	"spendr/backend/internal/allocation"
)

// Recommendations a narrator may return.
const (
	RecommendAdopt      = "ADOPT"
	RecommendReview     = "REVIEW"
	RecommendKeepManual = "KEEP_MANUAL"
)

// ErrDisabled is returned by narrators that cannot produce output.
var ErrDisabled = errors.New("insight narrator disabled")

// Narrator explains a comparison in plain language.
type Narrator interface {
	Enabled() bool
	Narrate(ctx context.Context, cmp allocation.Comparison) (Insight, error)
}

// Insight is the structured narrative returned to the client.
type Insight struct {
	Narrative      string   `json:"narrative"`
	Highlights     []string `json:"highlights,omitempty"`
	Recommendation string   `json:"recommendation"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Source         string   `json:"source"`
}

func validRecommendation(r string) bool {
	switch r {
	case RecommendAdopt, RecommendReview, RecommendKeepManual:
		return true
	}
	return false
}
