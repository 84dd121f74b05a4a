package allocation

import (
	"math"
	"strings"
)

var platformNames = map[string]string{
	"GoogleAds": "Google Ads",
	"LinkedIn":  "LinkedIn Ads",
	"Facebook":  "Facebook Ads",
}

var platformColors = map[string]string{
	"Facebook Ads": "#3B82F6",
	"Google Ads":   "#10B981",
	"Instagram":    "#EC4899",
	"TikTok":       "#000000",
	"LinkedIn Ads": "#0077B5",
	"YouTube":      "#FF0000",
	"Email":        "#6B7280",
}

const defaultPlatformColor = "#6B7280"

// manualKeys lists the campaign-form keys that may carry a channel's manual percentage.
var manualKeys = map[string][]string{
	"GoogleAds": {"googleads", "google"},
}

// PlatformName returns the display name for a catalog channel.
func PlatformName(channel string) string {
	if name, ok := platformNames[channel]; ok {
		return name
	}
	return channel
}

// PlatformColor returns the brand color for a display name.
func PlatformColor(platform string) string {
	if color, ok := platformColors[platform]; ok {
		return color
	}
	return defaultPlatformColor
}

// ComparisonInput describes a manual split to compare against the slab allocation.
type ComparisonInput struct {
	TotalBudget float64
	Industry    Industry
	Audience    Audience
	AOV         float64
	// Manual maps lower-case channel keys to a percentage of TotalBudget.
	Manual map[string]float64
}

// PlatformComparison is one channel's manual vs optimized spend.
type PlatformComparison struct {
	Channel     string  `json:"channel"`
	Platform    string  `json:"platform"`
	Manual      float64 `json:"manual"`
	AIOptimized float64 `json:"ai_optimized"`
	Change      float64 `json:"change"`
	Color       string  `json:"color"`
	ROI         float64 `json:"roi"`
	CPA         float64 `json:"-"`
}

// KPI holds a manual vs optimized pair.
type KPI struct {
	Manual float64 `json:"manual"`
	AI     float64 `json:"ai"`
}

// Comparison is the deterministic manual vs optimized report.
type Comparison struct {
	Result    AllocationResult     `json:"result"`
	Platforms []PlatformComparison `json:"platforms"`
	// TotalROI, TotalRevenue and TotalConversions aggregate the equal-share ranked results.
	TotalROI         float64 `json:"total_roi"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalConversions float64 `json:"total_conversions"`

	ProjectedROI         KPI     `json:"projected_roi"`
	EstimatedRevenue     KPI     `json:"estimated_revenue"`
	EstimatedConversions KPI     `json:"estimated_conversions"`
	Improvement          float64 `json:"improvement"`
	ManualCoverage       float64 `json:"manual_coverage"`
}

// Compare allocates the budget and contrasts it with the manual split. Manual projections run the
// same simulation at the manually assigned amounts, so both sides use one model.
func Compare(in ComparisonInput) (Comparison, error) {
	result, err := AllocateSlabs(in.TotalBudget, in.Industry, in.Audience, in.AOV)
	if err != nil {
		return Comparison{}, err
	}
	channels, _ := Channels(in.Industry)
	optimized := result.Allocation.ChannelTotals()

	platforms := make([]PlatformComparison, 0, len(result.Ranked))
	manualRows := make([]ChannelResult, 0, len(result.Ranked))
	var coverage float64
	for _, row := range result.Ranked {
		pct := manualPercent(in.Manual, row.Channel)
		coverage += pct
		manual := pct / 100 * result.TotalBudget
		mult, _ := Multiplier(in.Audience, row.Channel)
		manualRows = append(manualRows, ChannelResult{
			Channel: row.Channel,
			Result:  Simulate(manual, benchmarkFor(channels, row.Channel), in.AOV, mult),
		})

		name := PlatformName(row.Channel)
		platforms = append(platforms, PlatformComparison{
			Channel:     row.Channel,
			Platform:    name,
			Manual:      manual,
			AIOptimized: optimized[row.Channel],
			Change:      optimized[row.Channel] - manual,
			Color:       PlatformColor(name),
			ROI:         row.Result.ROI,
			CPA:         row.Result.CPA,
		})
	}

	ranked := Sum(result.Ranked)
	manualTotals := Sum(manualRows)
	aiTotals := Sum(result.Projected)

	cmp := Comparison{
		Result:           result,
		Platforms:        platforms,
		TotalROI:         ranked.MeanROI,
		TotalRevenue:     ranked.Revenue,
		TotalConversions: ranked.Conversions,
		ProjectedROI: KPI{
			Manual: round1(manualTotals.ROI * 100),
			AI:     round1(aiTotals.ROI * 100),
		},
		EstimatedRevenue: KPI{
			Manual: math.Round(manualTotals.Revenue),
			AI:     math.Round(aiTotals.Revenue),
		},
		EstimatedConversions: KPI{
			Manual: math.Round(manualTotals.Conversions),
			AI:     math.Round(aiTotals.Conversions),
		},
		ManualCoverage: coverage,
	}
	if manualTotals.ROI != 0 {
		cmp.Improvement = round1((aiTotals.ROI - manualTotals.ROI) / math.Abs(manualTotals.ROI) * 100)
	}
	return cmp, nil
}

func manualPercent(manual map[string]float64, channel string) float64 {
	if len(manual) == 0 {
		return 0
	}
	keys := manualKeys[channel]
	if len(keys) == 0 {
		keys = []string{strings.ToLower(channel)}
	}
	for _, key := range keys {
		if v, ok := manual[key]; ok && v > 0 && !math.IsNaN(v) {
			return v
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
