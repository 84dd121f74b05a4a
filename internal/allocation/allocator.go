package allocation

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	Slab1 = "Slab1"
	Slab2 = "Slab2"
	Slab3 = "Slab3"
)

// slabPlan fixes the tier layout: name, share of the total budget and how many ranked
// channels the tier takes (-1 = all remaining).
var slabPlan = []struct {
	name  string
	share float64
	size  int
}{
	{Slab1, 0.3, 2},
	{Slab2, 0.4, 3},
	{Slab3, 0.3, -1},
}

// ChannelResult pairs a channel with a simulation.
type ChannelResult struct {
	Channel string           `json:"channel"`
	Result  SimulationResult `json:"result"`
}

// SlabEntry is the amount assigned to one channel inside a slab.
type SlabEntry struct {
	Channel string  `json:"channel"`
	Amount  float64 `json:"amount"`
}

// Slab is one budget tier.
type Slab struct {
	Name    string      `json:"name"`
	Share   float64     `json:"share"`
	Entries []SlabEntry `json:"entries"`
}

// Allocation is the ordered Slab1..Slab3 partition of the total budget.
type Allocation struct {
	Slabs []Slab `json:"slabs"`
}

// AllocationResult is the full output of AllocateSlabs.
type AllocationResult struct {
	Industry    Industry   `json:"industry"`
	Audience    Audience   `json:"audience"`
	TotalBudget float64    `json:"total_budget"`
	AOV         float64    `json:"aov"`
	Allocation  Allocation `json:"allocation"`
	// Ranked holds the equal-share simulations used for ranking, best ROI first.
	Ranked []ChannelResult `json:"ranked"`
	// Projected re-simulates every channel at the amount it was actually assigned, in ranked order.
	Projected    []ChannelResult `json:"projected"`
	Explanations []string        `json:"explanations"`
}

// AllocateSlabs ranks the industry's channels by ROI under an equal split of totalBudget and
// partitions the budget into the three slabs. Unknown audiences apply no multipliers.
func AllocateSlabs(totalBudget float64, industry Industry, audience Audience, aov float64) (AllocationResult, error) {
	channels, err := Channels(industry)
	if err != nil {
		return AllocationResult{}, err
	}
	if totalBudget < 0 {
		totalBudget = 0
	}

	share := totalBudget / float64(max(1, len(channels)))
	ranked := make([]ChannelResult, 0, len(channels))
	for _, ch := range channels {
		mult, _ := Multiplier(audience, ch.Channel)
		ranked = append(ranked, ChannelResult{
			Channel: ch.Channel,
			Result:  Simulate(share, ch.Stats, aov, mult),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.ROI > ranked[j].Result.ROI
	})

	allocation := partition(totalBudget, ranked)

	assigned := allocation.ChannelTotals()
	projected := make([]ChannelResult, 0, len(ranked))
	for _, row := range ranked {
		stats := benchmarkFor(channels, row.Channel)
		mult, _ := Multiplier(audience, row.Channel)
		projected = append(projected, ChannelResult{
			Channel: row.Channel,
			Result:  Simulate(assigned[row.Channel], stats, aov, mult),
		})
	}

	return AllocationResult{
		Industry:     industry,
		Audience:     audience,
		TotalBudget:  totalBudget,
		AOV:          aov,
		Allocation:   allocation,
		Ranked:       ranked,
		Projected:    projected,
		Explanations: explain(audience, allocation),
	}, nil
}

// partition splits ranked channels into the slab tiers. The share of a tier left without
// channels is added to Slab1 so the assigned amounts always sum to totalBudget.
func partition(totalBudget float64, ranked []ChannelResult) Allocation {
	groups := make([][]ChannelResult, len(slabPlan))
	rest := ranked
	for i, tier := range slabPlan {
		n := len(rest)
		if tier.size >= 0 && tier.size < n {
			n = tier.size
		}
		groups[i] = rest[:n]
		rest = rest[n:]
	}

	shares := make([]float64, len(slabPlan))
	var unassigned float64
	for i, tier := range slabPlan {
		shares[i] = tier.share
		if i > 0 && len(groups[i]) == 0 {
			unassigned += tier.share
			shares[i] = 0
		}
	}
	if len(groups[0]) > 0 {
		shares[0] += unassigned
	}

	slabs := make([]Slab, 0, len(slabPlan))
	for i, tier := range slabPlan {
		slab := Slab{Name: tier.name, Share: shares[i], Entries: []SlabEntry{}}
		amount := totalBudget * shares[i] / float64(max(1, len(groups[i])))
		for _, row := range groups[i] {
			slab.Entries = append(slab.Entries, SlabEntry{Channel: row.Channel, Amount: amount})
		}
		slabs = append(slabs, slab)
	}
	return Allocation{Slabs: slabs}
}

func explain(audience Audience, allocation Allocation) []string {
	out := make([]string, 0)
	for _, slab := range allocation.Slabs {
		for _, entry := range slab.Entries {
			reason := fmt.Sprintf("%s chosen in %s with $%.0f", entry.Channel, slab.Name, entry.Amount)
			if mult, ok := Multiplier(audience, entry.Channel); ok {
				reason += fmt.Sprintf(" because %s multiplier boosts CTR to %sx", audience, strconv.FormatFloat(mult, 'f', -1, 64))
			} else {
				reason += " due to strong ROI baseline"
			}
			out = append(out, reason)
		}
	}
	return out
}

func benchmarkFor(channels []ChannelBenchmark, channel string) Benchmark {
	for _, ch := range channels {
		if ch.Channel == channel {
			return ch.Stats
		}
	}
	return Benchmark{}
}

// Total returns the sum of every slab entry.
func (a Allocation) Total() float64 {
	var total float64
	for _, slab := range a.Slabs {
		for _, entry := range slab.Entries {
			total += entry.Amount
		}
	}
	return total
}

// ChannelTotals flattens the slabs into channel → amount.
func (a Allocation) ChannelTotals() map[string]float64 {
	out := make(map[string]float64)
	for _, slab := range a.Slabs {
		for _, entry := range slab.Entries {
			out[entry.Channel] += entry.Amount
		}
	}
	return out
}

// SlabOf reports which slab holds the channel.
func (a Allocation) SlabOf(channel string) (string, bool) {
	for _, slab := range a.Slabs {
		for _, entry := range slab.Entries {
			if entry.Channel == channel {
				return slab.Name, true
			}
		}
	}
	return "", false
}

// AsMap renders the allocation as slab name → channel → amount.
func (a Allocation) AsMap() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(a.Slabs))
	for _, slab := range a.Slabs {
		entries := make(map[string]float64, len(slab.Entries))
		for _, entry := range slab.Entries {
			entries[entry.Channel] = entry.Amount
		}
		out[slab.Name] = entries
	}
	return out
}
