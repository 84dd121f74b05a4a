// Package match maps free-text campaign form labels onto allocation catalog keys.
package match

import (
	"regexp"
	"strings"

	"spendr/backend/internal/allocation"
)

// Fallbacks used when a label matches nothing.
const (
	DefaultIndustry = allocation.IndustryEcommerce
	DefaultAudience = allocation.AudienceMillennials
)

var separators = regexp.MustCompile(`[\s_/&]+`)

var industryLabels = map[string]allocation.Industry{
	"technology":    allocation.IndustryB2BSaaS,
	"tech":          allocation.IndustryB2BSaaS,
	"saas":          allocation.IndustryB2BSaaS,
	"b2b-saas":      allocation.IndustryB2BSaaS,
	"finance":       allocation.IndustryB2BSaaS,
	"manufacturing": allocation.IndustryB2BSaaS,
	"real-estate":   allocation.IndustryB2BSaaS,
	"healthcare":    allocation.IndustryHealthcare,
	"retail":        allocation.IndustryEcommerce,
	"e-commerce":    allocation.IndustryEcommerce,
	"ecommerce":     allocation.IndustryEcommerce,
	"food-beverage": allocation.IndustryEcommerce,
	"automotive":    allocation.IndustryEcommerce,
	"other":         allocation.IndustryEcommerce,
	"education":     allocation.IndustryEducation,
	"travel":        allocation.IndustryTravel,
}

// audienceRules are checked in order; the first rule with a matching fragment wins.
var audienceRules = []struct {
	fragments []string
	audience  allocation.Audience
}{
	{[]string{"gen z", "genz", "18-24"}, allocation.AudienceGenZ},
	{[]string{"millennial", "25-35"}, allocation.AudienceMillennials},
	{[]string{"b2b", "business"}, allocation.AudienceB2B},
	{[]string{"healthcare", "medical"}, allocation.AudienceHealthcare},
	{[]string{"travel", "tourism"}, allocation.AudienceTravelers},
}

// Result reports the mapped key and whether the label was recognised.
type Result[T ~string] struct {
	Key     T
	Matched bool
}

// MapIndustry resolves a form label such as "Real Estate" or "food-beverage". Exact catalog
// keys pass through. Unknown labels map to DefaultIndustry.
func MapIndustry(label string) Result[allocation.Industry] {
	if industry, err := allocation.ParseIndustry(label); err == nil {
		return Result[allocation.Industry]{Key: industry, Matched: true}
	}
	key := normalizeLabel(label)
	if industry, ok := industryLabels[key]; ok {
		return Result[allocation.Industry]{Key: industry, Matched: true}
	}
	return Result[allocation.Industry]{Key: DefaultIndustry}
}

// MapAudience resolves a free-text audience description by substring rules. Exact catalog
// keys pass through. Unknown descriptions map to DefaultAudience.
func MapAudience(label string) Result[allocation.Audience] {
	if audience, ok := allocation.ParseAudience(label); ok {
		return Result[allocation.Audience]{Key: audience, Matched: true}
	}
	lower := strings.ToLower(label)
	for _, rule := range audienceRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(lower, fragment) {
				return Result[allocation.Audience]{Key: rule.audience, Matched: true}
			}
		}
	}
	return Result[allocation.Audience]{Key: DefaultAudience}
}

func normalizeLabel(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	lower = separators.ReplaceAllString(lower, "-")
	return strings.Trim(lower, "-")
}
