package insight

import (
	"context"
	"fmt"

	"spendr/backend/internal/allocation"
)

// adoptThreshold is the ROI improvement, in percent, above which the optimized split is
// recommended outright.
const adoptThreshold = 5.0

// Template builds a deterministic narrative from the comparison numbers alone.
type Template struct{}

// Enabled always reports true.
func (Template) Enabled() bool { return true }

// Narrate never fails.
func (Template) Narrate(_ context.Context, cmp allocation.Comparison) (Insight, error) {
	result := cmp.Result
	leaders := leadingChannels(result.Allocation)

	var first string
	switch len(leaders) {
	case 0:
		first = fmt.Sprintf("No channels are available for %s.", result.Industry)
	case 1:
		first = fmt.Sprintf("%s leads the %s mix for %s", leaders[0], result.Industry, result.Audience)
	default:
		first = fmt.Sprintf("%s and %s lead the %s mix for %s", leaders[0], leaders[1], result.Industry, result.Audience)
	}
	if len(leaders) > 0 {
		first += fmt.Sprintf(" with a projected ROI of %.1f%%.", cmp.ProjectedROI.AI)
	}

	var second, rec string
	switch {
	case cmp.ManualCoverage <= 0:
		second = fmt.Sprintf("Adopt the slab split to reach an estimated $%.0f in revenue from %.0f conversions.",
			cmp.EstimatedRevenue.AI, cmp.EstimatedConversions.AI)
		rec = RecommendAdopt
	case cmp.Improvement > adoptThreshold:
		second = fmt.Sprintf("Moving %.0f%% of spend toward the leaders lifts ROI by %.1f%% over the manual plan (%.1f%% vs %.1f%%).",
			shiftedPercent(cmp), cmp.Improvement, cmp.ProjectedROI.AI, cmp.ProjectedROI.Manual)
		rec = RecommendAdopt
	case cmp.Improvement >= 0:
		second = fmt.Sprintf("The manual plan is already close; the optimized split adds %.1f%% ROI.", cmp.Improvement)
		rec = RecommendReview
	default:
		second = fmt.Sprintf("Keep the manual plan, which projects %.1f%% ROI against %.1f%% for the slab split.",
			cmp.ProjectedROI.Manual, cmp.ProjectedROI.AI)
		rec = RecommendKeepManual
	}

	highlights := make([]string, len(result.Explanations))
	copy(highlights, result.Explanations)
	return Insight{
		Narrative:      first + "\n" + second,
		Highlights:     highlights,
		Recommendation: rec,
		Source:         "template",
	}, nil
}

func leadingChannels(a allocation.Allocation) []string {
	for _, slab := range a.Slabs {
		if slab.Name != allocation.Slab1 {
			continue
		}
		out := make([]string, 0, len(slab.Entries))
		for _, e := range slab.Entries {
			out = append(out, e.Channel)
		}
		return out
	}
	return nil
}

// shiftedPercent is the percentage of the budget that moves to a different channel.
func shiftedPercent(cmp allocation.Comparison) float64 {
	if cmp.Result.TotalBudget <= 0 {
		return 0
	}
	var moved float64
	for _, p := range cmp.Platforms {
		if p.Change > 0 {
			moved += p.Change
		}
	}
	return moved / cmp.Result.TotalBudget * 100
}
