package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIndustry is returned when an industry key is absent from the benchmark catalog.
var ErrUnknownIndustry = errors.New("unknown industry")

// Industry identifies a benchmark catalog entry.
type Industry string

// Audience identifies an audience multiplier table entry.
type Audience string

const (
	IndustryEcommerce  Industry = "Ecommerce"
	IndustryB2BSaaS    Industry = "B2B_SaaS"
	IndustryHealthcare Industry = "Healthcare"
	IndustryTravel     Industry = "Travel"
	IndustryEducation  Industry = "Education"
)

const (
	AudienceGenZ        Audience = "GenZ"
	AudienceMillennials Audience = "Millennials"
	AudienceB2B         Audience = "B2B"
	AudienceHealthcare  Audience = "Healthcare"
	AudienceTravelers   Audience = "Travelers"
)

// Benchmark holds the fixed performance assumptions for one channel.
type Benchmark struct {
	CPM float64 `json:"cpm"`
	CTR float64 `json:"ctr"`
	CVR float64 `json:"cvr"`
}

// ChannelBenchmark pairs a channel name with its benchmark.
type ChannelBenchmark struct {
	Channel string    `json:"channel"`
	Stats   Benchmark `json:"stats"`
}

type industryEntry struct {
	industry Industry
	channels []ChannelBenchmark
}

type audienceBoost struct {
	channel    string
	multiplier float64
}

type audienceEntry struct {
	audience Audience
	boosts   []audienceBoost
}

// Catalog order is significant: it is the tie-break order when two channels have equal ROI.
var benchmarkCatalog = []industryEntry{
	{IndustryEcommerce, []ChannelBenchmark{
		{"TikTok", Benchmark{CPM: 6, CTR: 0.018, CVR: 0.012}},
		{"Instagram", Benchmark{CPM: 8, CTR: 0.015, CVR: 0.015}},
		{"GoogleAds", Benchmark{CPM: 12, CTR: 0.025, CVR: 0.04}},
		{"YouTube", Benchmark{CPM: 10, CTR: 0.01, CVR: 0.012}},
	}},
	{IndustryB2BSaaS, []ChannelBenchmark{
		{"LinkedIn", Benchmark{CPM: 20, CTR: 0.007, CVR: 0.06}},
		{"GoogleAds", Benchmark{CPM: 15, CTR: 0.02, CVR: 0.05}},
		{"Email", Benchmark{CPM: 5, CTR: 0.05, CVR: 0.02}},
	}},
	{IndustryHealthcare, []ChannelBenchmark{
		{"GoogleAds", Benchmark{CPM: 10, CTR: 0.015, CVR: 0.03}},
		{"YouTube", Benchmark{CPM: 8, CTR: 0.012, CVR: 0.015}},
		{"Facebook", Benchmark{CPM: 7, CTR: 0.013, CVR: 0.02}},
	}},
	{IndustryTravel, []ChannelBenchmark{
		{"Instagram", Benchmark{CPM: 9, CTR: 0.016, CVR: 0.01}},
		{"TikTok", Benchmark{CPM: 7, CTR: 0.018, CVR: 0.012}},
		{"GoogleAds", Benchmark{CPM: 11, CTR: 0.02, CVR: 0.02}},
	}},
	{IndustryEducation, []ChannelBenchmark{
		{"GoogleAds", Benchmark{CPM: 9, CTR: 0.02, CVR: 0.04}},
		{"Facebook", Benchmark{CPM: 6, CTR: 0.014, CVR: 0.025}},
		{"YouTube", Benchmark{CPM: 8, CTR: 0.012, CVR: 0.02}},
	}},
}

var audienceCatalog = []audienceEntry{
	{AudienceGenZ, []audienceBoost{{"TikTok", 1.2}, {"Instagram", 1.1}}},
	{AudienceMillennials, []audienceBoost{{"Instagram", 1.1}, {"GoogleAds", 1.05}}},
	{AudienceB2B, []audienceBoost{{"LinkedIn", 1.3}, {"GoogleAds", 1.1}}},
	{AudienceHealthcare, []audienceBoost{{"GoogleAds", 1.1}, {"YouTube", 1.05}}},
	{AudienceTravelers, []audienceBoost{{"Instagram", 1.2}, {"TikTok", 1.15}}},
}

// Industries returns the catalog industries in catalog order.
func Industries() []Industry {
	out := make([]Industry, 0, len(benchmarkCatalog))
	for _, entry := range benchmarkCatalog {
		out = append(out, entry.industry)
	}
	return out
}

// Audiences returns the known audience segments in catalog order.
func Audiences() []Audience {
	out := make([]Audience, 0, len(audienceCatalog))
	for _, entry := range audienceCatalog {
		out = append(out, entry.audience)
	}
	return out
}

// ParseIndustry resolves a catalog key case-insensitively.
func ParseIndustry(key string) (Industry, error) {
	trimmed := strings.TrimSpace(key)
	for _, entry := range benchmarkCatalog {
		if strings.EqualFold(string(entry.industry), trimmed) {
			return entry.industry, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndustry, key)
}

// ParseAudience resolves a catalog key case-insensitively. The boolean is false for
// unknown segments, which callers treat as "no multipliers".
func ParseAudience(key string) (Audience, bool) {
	trimmed := strings.TrimSpace(key)
	for _, entry := range audienceCatalog {
		if strings.EqualFold(string(entry.audience), trimmed) {
			return entry.audience, true
		}
	}
	return Audience(trimmed), false
}

// Channels returns a copy of the industry's channel benchmarks in catalog order.
func Channels(industry Industry) ([]ChannelBenchmark, error) {
	for _, entry := range benchmarkCatalog {
		if entry.industry == industry {
			out := make([]ChannelBenchmark, len(entry.channels))
			copy(out, entry.channels)
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIndustry, string(industry))
}

// Multiplier returns the CTR multiplier for a channel under an audience. Absent entries
// report (1.0, false).
func Multiplier(audience Audience, channel string) (float64, bool) {
	for _, entry := range audienceCatalog {
		if entry.audience != audience {
			continue
		}
		for _, boost := range entry.boosts {
			if boost.channel == channel {
				return boost.multiplier, true
			}
		}
		return 1.0, false
	}
	return 1.0, false
}

// Multipliers returns the audience's channel → multiplier table. Unknown audiences yield an empty map.
func Multipliers(audience Audience) map[string]float64 {
	out := make(map[string]float64)
	for _, entry := range audienceCatalog {
		if entry.audience != audience {
			continue
		}
		for _, boost := range entry.boosts {
			out[boost.channel] = boost.multiplier
		}
	}
	return out
}
