package insight

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"spendr/backend/internal/allocation"
)

type narratorChain struct {
	primary  Narrator
	fallback Narrator
}

// WithFallback returns a narrator that tries primary first and uses fallback when the
// primary is disabled, fails, or returns an unusable insight.
func WithFallback(primary, fallback Narrator) Narrator {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &narratorChain{primary: primary, fallback: fallback}
}

func (c *narratorChain) Enabled() bool {
	if c == nil {
		return false
	}
	return (c.primary != nil && c.primary.Enabled()) || (c.fallback != nil && c.fallback.Enabled())
}

func (c *narratorChain) Narrate(ctx context.Context, cmp allocation.Comparison) (Insight, error) {
	if c == nil {
		return Insight{}, ErrDisabled
	}
	if c.primary != nil && c.primary.Enabled() {
		out, err := c.primary.Narrate(ctx, cmp)
		if err == nil && strings.TrimSpace(out.Narrative) != "" && out.Recommendation != "" {
			return out, nil
		}
		if err != nil {
			logrus.WithError(err).Warn("primary narrator failed, using fallback")
		}
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Narrate(ctx, cmp)
	}
	return Insight{}, ErrDisabled
}
