package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const lexiconSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "power_words":   {"type": "array", "items": {"type": "string"}},
    "cta_verbs":     {"type": "array", "items": {"type": "string"}},
    "positive":      {"type": "array", "items": {"type": "string"}},
    "negative":      {"type": "array", "items": {"type": "string"}},
    "reference_ads": {"type": "array", "items": {"type": "string"}}
  }
}`

// Lexicon holds the word lists behind the heuristic sub-scores.
type Lexicon struct {
	PowerWords   []string `json:"power_words"`
	CTAVerbs     []string `json:"cta_verbs"`
	Positive     []string `json:"positive"`
	Negative     []string `json:"negative"`
	ReferenceAds []string `json:"reference_ads"`
}

// DefaultLexicon returns a fresh copy of the built-in lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		PowerWords: []string{
			"exclusive", "limited", "free", "new", "save", "best", "guaranteed", "proven", "instant",
			"now", "today", "sale", "deal", "bonus", "premium", "fast", "results", "secret", "only",
			"unlock", "winning", "official", "expert", "effortless", "smart", "fresh", "trending",
		},
		CTAVerbs: []string{
			"buy", "shop", "order", "get", "grab", "try", "join", "subscribe", "sign", "learn", "discover",
			"download", "book", "call", "apply", "register", "visit", "click", "add", "start", "upgrade",
		},
		Positive: []string{
			"new", "best", "exclusive", "free", "save", "limited", "premium", "instant",
			"guaranteed", "proven", "winning", "smart", "fresh", "trending",
		},
		Negative: []string{
			"bad", "worst", "expensive", "slow", "difficult", "hard", "problem", "issue", "error", "fail",
		},
		ReferenceAds: []string{
			"Limited time offer. Buy now and save big on our best-selling products.",
			"Join today and unlock exclusive benefits. Sign up and get a free trial.",
			"New collection just dropped. Shop the latest trends now.",
			"Upgrade to premium for instant access. Try it risk-free.",
			"Discover more and book your slot today. Limited seats only.",
		},
	}
}

// LoadLexicon reads a JSON lexicon. Lists absent from the file keep their defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}
	if !json.Valid(data) {
		return Lexicon{}, errors.New("unmarshal lexicon: invalid JSON")
	}
	if err := validateLexiconDocument(data); err != nil {
		return Lexicon{}, err
	}
	var raw Lexicon
	if err := json.Unmarshal(data, &raw); err != nil {
		return Lexicon{}, fmt.Errorf("unmarshal lexicon: %w", err)
	}

	lex := DefaultLexicon()
	if words := normalizeWords(raw.PowerWords); len(words) > 0 {
		lex.PowerWords = words
	}
	if words := normalizeWords(raw.CTAVerbs); len(words) > 0 {
		lex.CTAVerbs = words
	}
	if words := normalizeWords(raw.Positive); len(words) > 0 {
		lex.Positive = words
	}
	if words := normalizeWords(raw.Negative); len(words) > 0 {
		lex.Negative = words
	}
	var ads []string
	for _, ad := range raw.ReferenceAds {
		if ad = strings.TrimSpace(ad); ad != "" {
			ads = append(ads, ad)
		}
	}
	if len(ads) > 0 {
		lex.ReferenceAds = ads
	}
	return lex, nil
}

// Validate reports whether every list is populated.
func (l Lexicon) Validate() error {
	switch {
	case len(l.PowerWords) == 0:
		return errors.New("power words missing")
	case len(l.CTAVerbs) == 0:
		return errors.New("cta verbs missing")
	case len(l.ReferenceAds) == 0:
		return errors.New("reference ads missing")
	}
	return nil
}

func validateLexiconDocument(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(lexiconSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate lexicon: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("lexicon does not match schema: %s", strings.Join(errs, "; "))
	}
	return nil
}

func normalizeWords(in []string) []string {
	var out []string
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}
