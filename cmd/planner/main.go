package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/api"
	"spendr/backend/internal/cli"
	"spendr/backend/internal/match"
	"spendr/backend/internal/scoring"
)

var flagJSON bool

var rootCmd = &cobra.Command{
	Use:           "planner",
	Short:         "Marketing budget planner",
	Long:          "Split a campaign budget across channels and score ad copy from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagBudget   float64
	flagIndustry string
	flagAudience string
	flagAOV      float64
	flagFile     string
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate a budget across the channels of an industry",
	RunE:  runAllocate,
}

var scoreCmd = &cobra.Command{
	Use:   "score [ad text]",
	Short: "Score ad copy out of 100",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScore,
}

var lexiconPath string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List channel benchmarks per industry",
	RunE:  runCatalog,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")

	allocateCmd.Flags().Float64VarP(&flagBudget, "budget", "b", 0, "Total budget")
	allocateCmd.Flags().StringVarP(&flagIndustry, "industry", "i", "", "Industry key or label")
	allocateCmd.Flags().StringVarP(&flagAudience, "audience", "a", "", "Audience key or description")
	allocateCmd.Flags().Float64Var(&flagAOV, "aov", api.DefaultAOV, "Average order value")
	allocateCmd.Flags().StringVarP(&flagFile, "file", "f", "", "TOML campaign file; flags override its values")

	scoreCmd.Flags().StringVar(&lexiconPath, "lexicon", "", "JSON lexicon override")

	rootCmd.AddCommand(allocateCmd, scoreCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  error: %v\n", err)
		os.Exit(1)
	}
}

func runAllocate(cmd *cobra.Command, _ []string) error {
	campaign := cli.Campaign{AOV: api.DefaultAOV}
	if flagFile != "" {
		loaded, err := cli.LoadCampaign(flagFile, campaign)
		if err != nil {
			return err
		}
		campaign = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("budget") || flagFile == "" {
		campaign.Budget = flagBudget
	}
	if flags.Changed("industry") || flagFile == "" {
		campaign.Industry = flagIndustry
	}
	if flags.Changed("audience") || flagFile == "" {
		campaign.Audience = flagAudience
	}
	if flags.Changed("aov") {
		campaign.AOV = flagAOV
	}
	if campaign.Budget < 0 || campaign.AOV < 0 {
		return fmt.Errorf("budget and aov must be non-negative")
	}
	if campaign.Budget > allocation.MaxAmount || campaign.AOV > allocation.MaxAmount ||
		math.IsNaN(campaign.Budget) || math.IsNaN(campaign.AOV) {
		return fmt.Errorf("budget and aov must be finite and at most %g", allocation.MaxAmount)
	}

	industry := match.MapIndustry(campaign.Industry)
	if !industry.Matched {
		return fmt.Errorf("%w: %q", allocation.ErrUnknownIndustry, campaign.Industry)
	}
	audience := match.MapAudience(campaign.Audience)
	key := audience.Key
	if !audience.Matched {
		key = allocation.Audience(strings.TrimSpace(campaign.Audience))
	}

	result, err := allocation.AllocateSlabs(campaign.Budget, industry.Key, key, campaign.AOV)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(api.AllocationFromResult(result))
	}
	fmt.Println()
	fmt.Print(cli.RenderAllocation(result))
	return nil
}

func runScore(_ *cobra.Command, args []string) error {
	lex := scoring.DefaultLexicon()
	if lexiconPath != "" {
		loaded, err := scoring.LoadLexicon(lexiconPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		lex = loaded
	}
	score := scoring.NewAdScorer(lex).Evaluate(strings.Join(args, " "))
	if flagJSON {
		return printJSON(score)
	}
	fmt.Println()
	fmt.Print(cli.RenderScore(score))
	return nil
}

func runCatalog(_ *cobra.Command, _ []string) error {
	if flagJSON {
		out := make(map[allocation.Industry][]allocation.ChannelBenchmark)
		for _, industry := range allocation.Industries() {
			channels, err := allocation.Channels(industry)
			if err != nil {
				return err
			}
			out[industry] = channels
		}
		return printJSON(out)
	}
	rendered, err := cli.RenderCatalog()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(rendered)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
