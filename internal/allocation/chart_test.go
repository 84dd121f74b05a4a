package allocation

import (
	"math"
	"testing"
)

func TestToPieChart(t *testing.T) {
	result, err := AllocateSlabs(1000, IndustryEcommerce, AudienceGenZ, 150)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	slices := ToPieChart(result, 1000)
	if len(slices) != 4 {
		t.Fatalf("expected 4 slices got %d", len(slices))
	}

	var pct float64
	for i, s := range slices {
		pct += s.Percentage
		if i > 0 && slices[i-1].Value < s.Value {
			t.Fatalf("slices not sorted by value")
		}
	}
	if math.Abs(pct-100) > 0.05 {
		t.Fatalf("percentages sum to %v", pct)
	}
	if slices[0].Name != "GoogleAds" || slices[0].Color != "#3B82F6" {
		t.Fatalf("unexpected first slice %+v", slices[0])
	}
	if slices[0].ROI != 11.5 {
		t.Fatalf("expected GoogleAds roi 11.5 got %v", slices[0].ROI)
	}
}

func TestToPieChartZeroBudget(t *testing.T) {
	result, _ := AllocateSlabs(0, IndustryTravel, AudienceTravelers, 150)
	for _, s := range ToPieChart(result, 0) {
		if s.Percentage != 0 || s.Value != 0 {
			t.Fatalf("expected empty slice got %+v", s)
		}
	}
}

func TestCompare(t *testing.T) {
	cmp, err := Compare(ComparisonInput{
		TotalBudget: 1000,
		Industry:    IndustryEcommerce,
		Audience:    AudienceGenZ,
		AOV:         150,
		Manual:      map[string]float64{"tiktok": 25, "instagram": 25, "google": 25, "youtube": 25},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(cmp.Platforms) != 4 {
		t.Fatalf("expected 4 platforms got %d", len(cmp.Platforms))
	}
	first := cmp.Platforms[0]
	if first.Platform != "Google Ads" || first.Color != "#10B981" {
		t.Fatalf("unexpected first platform %+v", first)
	}
	if math.Abs(first.Manual-250) > 1e-9 || math.Abs(first.AIOptimized-300) > 1e-9 || math.Abs(first.Change-50) > 1e-9 {
		t.Fatalf("unexpected google amounts %+v", first)
	}
	if cmp.ManualCoverage != 100 {
		t.Fatalf("expected 100%% coverage got %v", cmp.ManualCoverage)
	}
	// an even manual split equals the equal-share ranking simulation
	if math.Abs(cmp.EstimatedRevenue.Manual-math.Round(cmp.TotalRevenue)) > 0.5 {
		t.Fatalf("manual revenue %v vs ranked %v", cmp.EstimatedRevenue.Manual, cmp.TotalRevenue)
	}
	if cmp.ProjectedROI.AI <= cmp.ProjectedROI.Manual {
		t.Fatalf("expected optimized roi above manual: %+v", cmp.ProjectedROI)
	}
	if cmp.Improvement <= 0 {
		t.Fatalf("expected positive improvement got %v", cmp.Improvement)
	}
}

func TestCompareWithoutManual(t *testing.T) {
	cmp, err := Compare(ComparisonInput{TotalBudget: 500, Industry: IndustryEducation, Audience: AudienceMillennials, AOV: 60})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Improvement != 0 || cmp.EstimatedRevenue.Manual != 0 {
		t.Fatalf("expected zero manual side, got %+v", cmp)
	}
	for _, p := range cmp.Platforms {
		if p.Change != p.AIOptimized {
			t.Fatalf("change should equal optimized amount: %+v", p)
		}
	}
}
