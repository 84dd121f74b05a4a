package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Plan is one persisted budget allocation run.
type Plan struct {
	ID            uint    `gorm:"primaryKey"`
	PublicID      string  `gorm:"size:36;uniqueIndex"`
	Industry      string  `gorm:"size:32;index"`
	Audience      string  `gorm:"size:32;index"`
	IndustryLabel string  `gorm:"size:128"`
	AudienceLabel string  `gorm:"size:128"`
	TotalBudget   float64
	AOV           float64
	// Kind is "allocate" or "compare".
	Kind             string `gorm:"size:16;index"`
	ProjectedROI     float64
	ProjectedRevenue float64
	TopChannel       string `gorm:"size:32"`
	PayloadJSON      string `gorm:"type:text"`
	ProcessingTimeUs int64
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

// SetPayload stores the full response body as JSON.
func (p *Plan) SetPayload(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal plan payload: %w", err)
	}
	p.PayloadJSON = string(payload)
	return nil
}

// Payload decodes the stored response body into out.
func (p *Plan) Payload(out any) error {
	if strings.TrimSpace(p.PayloadJSON) == "" {
		return nil
	}
	return json.Unmarshal([]byte(p.PayloadJSON), out)
}

// AdEvaluation is the persisted score of one ad text. Re-scoring identical text updates the row.
type AdEvaluation struct {
	ID                uint   `gorm:"primaryKey"`
	PublicID          string `gorm:"size:36;uniqueIndex"`
	Text              string `gorm:"type:text"`
	TextHash          string `gorm:"size:64;uniqueIndex"`
	WordCount         int
	Readability       float64
	LengthConciseness float64
	Emotion           float64
	PowerWords        float64
	CTA               float64
	Uniqueness        float64
	Total             float64 `gorm:"index"`
	Band              string  `gorm:"size:16;index"`
	SuggestionsJSON   string  `gorm:"type:text"`
	ProcessingTimeUs  int64
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time
}

// SetSuggestions saves the suggestion list as JSON.
func (e *AdEvaluation) SetSuggestions(suggestions []string) {
	if suggestions == nil {
		e.SuggestionsJSON = "[]"
		return
	}
	payload, _ := json.Marshal(suggestions)
	e.SuggestionsJSON = string(payload)
}

// Suggestions returns the decoded suggestion list.
func (e *AdEvaluation) Suggestions() []string {
	if strings.TrimSpace(e.SuggestionsJSON) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(e.SuggestionsJSON), &out); err != nil {
		return nil
	}
	return out
}
