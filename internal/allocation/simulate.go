package allocation

import "math"

// MaxAmount is the largest budget or average order value the planner accepts. Projections
// of any catalog channel stay finite below it.
const MaxAmount = 1e12

// SimulationResult is the projected performance of one channel at a given spend.
type SimulationResult struct {
	Budget      float64 `json:"budget"`
	Reach       float64 `json:"reach"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	ROI         float64 `json:"roi"`
	// CPA is +Inf when the spend yields no conversions.
	CPA float64 `json:"-"`
}

// Simulate projects reach, clicks, conversions and revenue for a channel. The audience
// multiplier applies to CTR only.
func Simulate(budget float64, stats Benchmark, aov, multiplier float64) SimulationResult {
	if budget < 0 {
		budget = 0
	}
	if aov < 0 {
		aov = 0
	}
	var reach float64
	if stats.CPM > 0 {
		reach = (budget / stats.CPM) * 1000
	}
	clicks := reach * (stats.CTR * multiplier)
	conversions := clicks * stats.CVR
	revenue := conversions * aov

	roi := 0.0
	if budget > 0 {
		roi = (revenue - budget) / budget
	}
	cpa := math.Inf(1)
	if conversions > 0 {
		cpa = budget / conversions
	}

	return SimulationResult{
		Budget:      budget,
		Reach:       reach,
		Clicks:      clicks,
		Conversions: conversions,
		Revenue:     revenue,
		ROI:         roi,
		CPA:         cpa,
	}
}

// Totals aggregates a set of simulation results.
type Totals struct {
	Spend       float64 `json:"spend"`
	Reach       float64 `json:"reach"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	ROI         float64 `json:"roi"`
	MeanROI     float64 `json:"mean_roi"`
}

// Sum adds up the rows. ROI is the blended (revenue-spend)/spend, MeanROI the plain average.
func Sum(rows []ChannelResult) Totals {
	var t Totals
	for _, row := range rows {
		t.Spend += row.Result.Budget
		t.Reach += row.Result.Reach
		t.Clicks += row.Result.Clicks
		t.Conversions += row.Result.Conversions
		t.Revenue += row.Result.Revenue
		t.MeanROI += row.Result.ROI
	}
	if t.Spend > 0 {
		t.ROI = (t.Revenue - t.Spend) / t.Spend
	}
	if len(rows) > 0 {
		t.MeanROI /= float64(len(rows))
	}
	return t
}
