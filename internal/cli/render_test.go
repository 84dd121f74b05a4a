package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/scoring"
)

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$0.00", FormatMoney(0))
	assert.Equal(t, "$300.00", FormatMoney(300))
	assert.Equal(t, "$1,234.57", FormatMoney(1234.567))
	assert.Equal(t, "$1,000.00", FormatMoney(999.999))
	assert.Equal(t, "-$12.50", FormatMoney(-12.5))
	assert.Equal(t, "1,000,000", FormatNumber(1000000))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1150.0%", FormatROI(11.5))
	assert.Equal(t, "n/a", FormatCPA(math.Inf(1)))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Channel", "Budget"},
		Rows:    [][]string{{"GoogleAds", "$300.00"}, {"---"}, {"TikTok", "$300.00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, out, "GoogleAds")
	assert.Contains(t, out, "TikTok")
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderAllocation(t *testing.T) {
	result, err := allocation.AllocateSlabs(1000, allocation.IndustryEcommerce, allocation.AudienceGenZ, 150)
	require.NoError(t, err)

	out := RenderAllocation(result)
	for _, want := range []string{"Ecommerce", "GenZ", "$1,000.00", "GoogleAds", "YouTube", "Slab1", "Slab2", "Blended ROI"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, result.Explanations[0])
}

func TestRenderScore(t *testing.T) {
	out := RenderScore(scoring.EvaluateAd("We sell clothes."))
	assert.Contains(t, out, "43.2")
	assert.Contains(t, out, "Average")
	assert.Contains(t, out, "Suggestions")
}

func TestRenderCatalog(t *testing.T) {
	out, err := RenderCatalog()
	require.NoError(t, err)
	for _, industry := range allocation.Industries() {
		assert.Contains(t, out, string(industry))
	}
}
