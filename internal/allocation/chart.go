package allocation

import (
	"math"
	"sort"
)

var chartPalette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444",
	"#8B5CF6", "#EC4899", "#14B8A6", "#F97316",
}

// PieSlice is one chart-ready row of an allocation.
type PieSlice struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	ROI        float64 `json:"roi"`
	CPA        float64 `json:"-"`
}

// ToPieChart merges the slabs per channel and returns slices largest first. Colors are
// assigned in slab order before sorting.
func ToPieChart(result AllocationResult, totalBudget float64) []PieSlice {
	order := make([]string, 0)
	amounts := make(map[string]float64)
	for _, slab := range result.Allocation.Slabs {
		for _, entry := range slab.Entries {
			if _, seen := amounts[entry.Channel]; !seen {
				order = append(order, entry.Channel)
			}
			amounts[entry.Channel] += entry.Amount
		}
	}

	slices := make([]PieSlice, 0, len(order))
	for i, channel := range order {
		value := amounts[channel]
		percentage := 0.0
		if totalBudget > 0 {
			percentage = value / totalBudget * 100
		}
		roi, cpa := 0.0, 0.0
		for _, row := range result.Ranked {
			if row.Channel == channel {
				roi, cpa = row.Result.ROI, row.Result.CPA
				break
			}
		}
		slices = append(slices, PieSlice{
			Name:       channel,
			Value:      value,
			Percentage: round2(percentage),
			Color:      chartPalette[i%len(chartPalette)],
			ROI:        round2(roi),
			CPA:        round2(cpa),
		})
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })
	return slices
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
