package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCampaign(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCampaign(t *testing.T) {
	path := writeCampaign(t, "budget = 2500.0\nindustry = \"Travel\"\naudience = \"Travelers\"\n")

	got, err := LoadCampaign(path, Campaign{AOV: 150, Audience: "Millennials"})
	require.NoError(t, err)
	assert.Equal(t, Campaign{Budget: 2500, Industry: "Travel", Audience: "Travelers", AOV: 150}, got)
}

func TestLoadCampaignErrors(t *testing.T) {
	_, err := LoadCampaign(filepath.Join(t.TempDir(), "missing.toml"), Campaign{})
	assert.ErrorContains(t, err, "reading campaign")

	_, err = LoadCampaign(writeCampaign(t, "budget = "), Campaign{})
	assert.ErrorContains(t, err, "parsing campaign")

	_, err = LoadCampaign(writeCampaign(t, "budgett = 10.0\n"), Campaign{})
	assert.ErrorContains(t, err, "unknown key")

	_, err = LoadCampaign(writeCampaign(t, "budget = -1.0\n"), Campaign{})
	assert.ErrorContains(t, err, "non-negative")

	_, err = LoadCampaign(writeCampaign(t, "budget = 1e307\n"), Campaign{})
	assert.ErrorContains(t, err, "must not exceed")
}
