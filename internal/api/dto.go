package api

import (
	"encoding/json"
	"math"
	"time"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/insight"
	"spendr/backend/internal/scoring"
	"spendr/backend/internal/store"
)

// AllocateRequest is the body of POST /api/allocate.
type AllocateRequest struct {
	TotalBudget *float64 `json:"total_budget"`
	Industry    string   `json:"industry"`
	Audience    string   `json:"audience"`
	AOV         *float64 `json:"aov"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	AllocateRequest
	// ManualAllocation maps a channel key (e.g. "google", "tiktok") to a percentage of the budget.
	ManualAllocation map[string]float64 `json:"manual_allocation"`
}

// ScoreRequest is the body of POST /api/ads/score and of every stream frame sent as JSON.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ChannelDTO is one simulated channel. CPA is null when the channel yields no conversions.
type ChannelDTO struct {
	Channel     string   `json:"channel"`
	Slab        string   `json:"slab,omitempty"`
	Budget      float64  `json:"budget"`
	Reach       float64  `json:"reach"`
	Clicks      float64  `json:"clicks"`
	Conversions float64  `json:"conversions"`
	Revenue     float64  `json:"revenue"`
	ROI         float64  `json:"roi"`
	CPA         *float64 `json:"cpa"`
}

// PieSliceDTO is a chart row with a nullable CPA.
type PieSliceDTO struct {
	allocation.PieSlice
	CPA *float64 `json:"cpa"`
}

// AllocationResponse is returned by POST /api/allocate.
type AllocationResponse struct {
	ID               string                        `json:"id,omitempty"`
	Industry         allocation.Industry           `json:"industry"`
	Audience         allocation.Audience           `json:"audience"`
	IndustryLabel    string                        `json:"industry_label"`
	AudienceLabel    string                        `json:"audience_label"`
	AudienceMatched  bool                          `json:"audience_matched"`
	TotalBudget      float64                       `json:"total_budget"`
	AOV              float64                       `json:"aov"`
	Allocation       map[string]map[string]float64 `json:"allocation"`
	Slabs            []allocation.Slab             `json:"slabs"`
	Ranked           []ChannelDTO                  `json:"ranked"`
	Projected        []ChannelDTO                  `json:"projected"`
	Explanations     []string                      `json:"explanations"`
	Pie              []PieSliceDTO                 `json:"pie"`
	Totals           allocation.Totals             `json:"totals"`
	ProjectedTotals  allocation.Totals             `json:"projected_totals"`
	ProcessingTimeUs int64                         `json:"processing_time_us"`
}

// PlatformDTO is one manual vs optimized row.
type PlatformDTO struct {
	allocation.PlatformComparison
	CPA *float64 `json:"cpa"`
}

// CompareResponse is returned by POST /api/compare.
type CompareResponse struct {
	ID                   string             `json:"id,omitempty"`
	Allocation           AllocationResponse `json:"allocation"`
	Platforms            []PlatformDTO      `json:"platforms"`
	TotalROI             float64            `json:"total_roi"`
	TotalRevenue         float64            `json:"total_revenue"`
	TotalConversions     float64            `json:"total_conversions"`
	ProjectedROI         allocation.KPI     `json:"projected_roi"`
	EstimatedRevenue     allocation.KPI     `json:"estimated_revenue"`
	EstimatedConversions allocation.KPI     `json:"estimated_conversions"`
	Improvement          float64            `json:"improvement"`
	ManualCoverage       float64            `json:"manual_coverage"`
	Insight              *insight.Insight   `json:"insight,omitempty"`
	ProcessingTimeUs     int64              `json:"processing_time_us"`
}

// ScoreResponse is returned by POST /api/ads/score and written to stream clients.
type ScoreResponse struct {
	ID string `json:"id,omitempty"`
	scoring.AdScore
	ProcessingTimeUs int64 `json:"processing_time_us"`
}

// PlanDTO is the API representation of a stored plan.
type PlanDTO struct {
	ID               string          `json:"id"`
	Kind             string          `json:"kind"`
	Industry         string          `json:"industry"`
	Audience         string          `json:"audience"`
	IndustryLabel    string          `json:"industry_label"`
	AudienceLabel    string          `json:"audience_label"`
	TotalBudget      float64         `json:"total_budget"`
	AOV              float64         `json:"aov"`
	TopChannel       string          `json:"top_channel"`
	ProjectedROI     float64         `json:"projected_roi"`
	ProjectedRevenue float64         `json:"projected_revenue"`
	ProcessingTimeUs int64           `json:"processing_time_us"`
	CreatedAt        time.Time       `json:"created_at"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

// PlansResponse holds a page of plans and the filtered total.
type PlansResponse struct {
	Items []PlanDTO `json:"items"`
	Total int64     `json:"total"`
}

// EvaluationDTO is the API representation of a stored ad evaluation.
type EvaluationDTO struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	WordCount        int            `json:"word_count"`
	Scores           scoring.Scores `json:"scores"`
	Total            float64        `json:"total"`
	Band             string         `json:"band"`
	Suggestions      []string       `json:"suggestions"`
	ProcessingTimeUs int64          `json:"processing_time_us"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// EvaluationsResponse holds a page of evaluations and the filtered total.
type EvaluationsResponse struct {
	Items []EvaluationDTO `json:"items"`
	Total int64           `json:"total"`
}

// CatalogIndustry lists an industry and its channel benchmarks.
type CatalogIndustry struct {
	Industry allocation.Industry           `json:"industry"`
	Channels []allocation.ChannelBenchmark `json:"channels"`
}

// CatalogAudience lists an audience and its CTR multipliers.
type CatalogAudience struct {
	Audience    allocation.Audience `json:"audience"`
	Multipliers map[string]float64  `json:"multipliers"`
}

// CatalogResponse is returned by GET /api/catalog.
type CatalogResponse struct {
	Industries []CatalogIndustry `json:"industries"`
	Audiences  []CatalogAudience `json:"audiences"`
}

// nullableCPA maps the infinite CPA of a zero-conversion channel to null.
func nullableCPA(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func channelDTOs(rows []allocation.ChannelResult, a allocation.Allocation) []ChannelDTO {
	out := make([]ChannelDTO, 0, len(rows))
	for _, row := range rows {
		slab, _ := a.SlabOf(row.Channel)
		r := row.Result
		out = append(out, ChannelDTO{
			Channel:     row.Channel,
			Slab:        slab,
			Budget:      r.Budget,
			Reach:       r.Reach,
			Clicks:      r.Clicks,
			Conversions: r.Conversions,
			Revenue:     r.Revenue,
			ROI:         r.ROI,
			CPA:         nullableCPA(r.CPA),
		})
	}
	return out
}

// AllocationFromResult converts the allocator output into its API shape.
func AllocationFromResult(result allocation.AllocationResult) AllocationResponse {
	pie := allocation.ToPieChart(result, result.TotalBudget)
	slices := make([]PieSliceDTO, 0, len(pie))
	for _, p := range pie {
		slices = append(slices, PieSliceDTO{PieSlice: p, CPA: nullableCPA(p.CPA)})
	}
	return AllocationResponse{
		Industry:        result.Industry,
		Audience:        result.Audience,
		TotalBudget:     result.TotalBudget,
		AOV:             result.AOV,
		Allocation:      result.Allocation.AsMap(),
		Slabs:           result.Allocation.Slabs,
		Ranked:          channelDTOs(result.Ranked, result.Allocation),
		Projected:       channelDTOs(result.Projected, result.Allocation),
		Explanations:    result.Explanations,
		Pie:             slices,
		Totals:          allocation.Sum(result.Ranked),
		ProjectedTotals: allocation.Sum(result.Projected),
	}
}

// CompareFromResult converts a comparison into its API shape.
func CompareFromResult(cmp allocation.Comparison) CompareResponse {
	platforms := make([]PlatformDTO, 0, len(cmp.Platforms))
	for _, p := range cmp.Platforms {
		platforms = append(platforms, PlatformDTO{PlatformComparison: p, CPA: nullableCPA(p.CPA)})
	}
	return CompareResponse{
		Allocation:           AllocationFromResult(cmp.Result),
		Platforms:            platforms,
		TotalROI:             cmp.TotalROI,
		TotalRevenue:         cmp.TotalRevenue,
		TotalConversions:     cmp.TotalConversions,
		ProjectedROI:         cmp.ProjectedROI,
		EstimatedRevenue:     cmp.EstimatedRevenue,
		EstimatedConversions: cmp.EstimatedConversions,
		Improvement:          cmp.Improvement,
		ManualCoverage:       cmp.ManualCoverage,
	}
}

// PlanFromModel maps a stored plan. The payload is included only when withPayload is set.
func PlanFromModel(p store.Plan, withPayload bool) PlanDTO {
	dto := PlanDTO{
		ID:               p.PublicID,
		Kind:             p.Kind,
		Industry:         p.Industry,
		Audience:         p.Audience,
		IndustryLabel:    p.IndustryLabel,
		AudienceLabel:    p.AudienceLabel,
		TotalBudget:      p.TotalBudget,
		AOV:              p.AOV,
		TopChannel:       p.TopChannel,
		ProjectedROI:     p.ProjectedROI,
		ProjectedRevenue: p.ProjectedRevenue,
		ProcessingTimeUs: p.ProcessingTimeUs,
		CreatedAt:        p.CreatedAt,
	}
	if withPayload && p.PayloadJSON != "" {
		dto.Payload = json.RawMessage(p.PayloadJSON)
	}
	return dto
}

// EvaluationFromModel maps a stored evaluation.
func EvaluationFromModel(e store.AdEvaluation) EvaluationDTO {
	return EvaluationDTO{
		ID:        e.PublicID,
		Text:      e.Text,
		WordCount: e.WordCount,
		Scores: scoring.Scores{
			Readability:       e.Readability,
			LengthConciseness: e.LengthConciseness,
			Emotion:           e.Emotion,
			PowerWords:        e.PowerWords,
			CTA:               e.CTA,
			Uniqueness:        e.Uniqueness,
		},
		Total:            e.Total,
		Band:             e.Band,
		Suggestions:      e.Suggestions(),
		ProcessingTimeUs: e.ProcessingTimeUs,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// EvaluationModel builds the row persisted for an ad score.
func EvaluationModel(text string, score scoring.AdScore, elapsedUs int64) *store.AdEvaluation {
	row := &store.AdEvaluation{
		Text:              text,
		WordCount:         score.WordCount,
		Readability:       score.Scores.Readability,
		LengthConciseness: score.Scores.LengthConciseness,
		Emotion:           score.Scores.Emotion,
		PowerWords:        score.Scores.PowerWords,
		CTA:               score.Scores.CTA,
		Uniqueness:        score.Scores.Uniqueness,
		Total:             score.Total,
		Band:              score.Band,
		ProcessingTimeUs:  elapsedUs,
	}
	row.SetSuggestions(score.Suggestions)
	return row
}
