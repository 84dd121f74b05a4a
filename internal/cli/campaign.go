package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"spendr/backend/internal/allocation"
)

// Campaign is the TOML campaign file read by the planner CLI.
//
//	budget   = 1000.0
//	industry = "Ecommerce"
//	audience = "GenZ"
//	aov      = 150.0
type Campaign struct {
	Budget   float64 `toml:"budget"`
	Industry string  `toml:"industry"`
	Audience string  `toml:"audience"`
	AOV      float64 `toml:"aov"`
}

// LoadCampaign reads a campaign file. Keys absent from the file keep the values already in base.
func LoadCampaign(path string, base Campaign) (Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading campaign: %w", err)
	}
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, fmt.Errorf("parsing campaign: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("parsing campaign: unknown key %q", undecoded[0].String())
	}
	if cfg.Budget < 0 || cfg.AOV < 0 {
		return base, fmt.Errorf("campaign: budget and aov must be non-negative")
	}
	if cfg.Budget > allocation.MaxAmount || cfg.AOV > allocation.MaxAmount {
		return base, fmt.Errorf("campaign: budget and aov must not exceed %g", allocation.MaxAmount)
	}
	return cfg, nil
}
