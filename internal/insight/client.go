package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"spendr/backend/internal/allocation"
)

// Config holds OpenAI configuration parameters.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements Narrator against the OpenAI chat completions API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Narrate requests a narrative for the comparison.
func (c *Client) Narrate(ctx context.Context, cmp allocation.Comparison) (Insight, error) {
	if !c.Enabled() {
		return Insight{}, ErrDisabled
	}

	body, err := json.Marshal(c.buildPayload(cmp))
	if err != nil {
		return Insight{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Insight{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Insight{}, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return Insight{}, fmt.Errorf("openai status %d: %v", resp.StatusCode, apiErr)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Insight{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Insight{}, errors.New("openai empty response")
	}

	content := normalizeJSONBlock(decoded.Choices[0].Message.Content)
	if content == "" {
		return Insight{}, errors.New("openai empty narrative")
	}
	var out Insight
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Insight{}, fmt.Errorf("parse ai response: %w", err)
	}

	sanitize(&out)
	if out.Narrative == "" {
		return Insight{}, errors.New("ai narrative missing")
	}
	if out.Recommendation == "" {
		return Insight{}, errors.New("ai recommendation missing")
	}
	out.Source = "openai"
	return out, nil
}

const systemPrompt = "You are a performance-marketing analyst. Reply with a strict JSON object containing keys " +
	"narrative, highlights, recommendation and confidence. narrative is exactly two sentences separated by a newline: " +
	"the first names the leading channels and why they lead, the second tells the marketer what to do with the budget. " +
	"highlights is an array of at most three short strings. recommendation must be one of ADOPT, REVIEW or KEEP_MANUAL. " +
	"confidence is a decimal between 0 and 1. Only use the numbers supplied. Emit nothing outside the JSON object."

func (c *Client) buildPayload(cmp allocation.Comparison) map[string]any {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(cmp)},
		},
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		payload["max_tokens"] = c.maxTokens
	}
	return payload
}

func buildUserPrompt(cmp allocation.Comparison) string {
	result := cmp.Result
	b := &strings.Builder{}
	fmt.Fprintf(b, "Industry: %s\n", result.Industry)
	fmt.Fprintf(b, "Audience: %s\n", result.Audience)
	fmt.Fprintf(b, "Total budget: $%.0f, average order value: $%.2f\n", result.TotalBudget, result.AOV)
	b.WriteString("Channels (ranked by ROI at an equal split):\n")
	for _, p := range cmp.Platforms {
		slab, _ := result.Allocation.SlabOf(p.Channel)
		fmt.Fprintf(b, "- %s: %s, optimized $%.0f, manual $%.0f, ROI %.2f\n", p.Platform, slab, p.AIOptimized, p.Manual, p.ROI)
	}
	for _, line := range result.Explanations {
		fmt.Fprintf(b, "Reason: %s\n", line)
	}
	fmt.Fprintf(b, "Projected ROI: optimized %.1f%%, manual %.1f%%\n", cmp.ProjectedROI.AI, cmp.ProjectedROI.Manual)
	fmt.Fprintf(b, "Estimated revenue: optimized $%.0f, manual $%.0f\n", cmp.EstimatedRevenue.AI, cmp.EstimatedRevenue.Manual)
	if cmp.ManualCoverage > 0 {
		fmt.Fprintf(b, "Manual split covers %.0f%% of the budget; improvement %.1f%%\n", cmp.ManualCoverage, cmp.Improvement)
	} else {
		b.WriteString("No manual split was supplied; recommend on the optimized plan alone.\n")
	}
	return b.String()
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

func sanitize(in *Insight) {
	in.Narrative = strings.TrimSpace(in.Narrative)
	in.Recommendation = strings.ToUpper(strings.TrimSpace(in.Recommendation))
	if !validRecommendation(in.Recommendation) {
		in.Recommendation = ""
	}
	var highlights []string
	for _, h := range in.Highlights {
		if h = strings.TrimSpace(h); h != "" && len(highlights) < 3 {
			highlights = append(highlights, h)
		}
	}
	in.Highlights = highlights
	if in.Confidence != nil {
		v := *in.Confidence
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		in.Confidence = &v
	}
}
