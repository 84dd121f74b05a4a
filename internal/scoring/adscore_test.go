package scoring

import (
	"encoding/json"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"
)

const linenAd = "Discover handcrafted linen shirts designed for Indian summers. Breathable, durable, and refined—order yours today."

func TestEvaluateShortAd(t *testing.T) {
	score := EvaluateAd("We sell clothes.")

	if score.Scores.LengthConciseness != 0 {
		t.Fatalf("expected 0 length score got %v", score.Scores.LengthConciseness)
	}
	if score.Scores.CTA != 0 {
		t.Fatalf("expected 0 cta got %v", score.Scores.CTA)
	}
	if score.Scores.Readability != 18.2 {
		t.Fatalf("expected readability 18.2 got %v", score.Scores.Readability)
	}
	if score.Total != 43.2 || score.Band != BandAverage {
		t.Fatalf("expected 43.2/Average got %v/%s", score.Total, score.Band)
	}
	if !contains(score.Suggestions, adviceExpand) {
		t.Fatalf("expected expand suggestion in %v", score.Suggestions)
	}
	if !contains(score.Suggestions, adviceCTA) {
		t.Fatalf("expected cta suggestion in %v", score.Suggestions)
	}
}

func TestEvaluateLinenAd(t *testing.T) {
	score := EvaluateAd(linenAd)

	if score.WordCount != 15 {
		t.Fatalf("expected 15 words got %d", score.WordCount)
	}
	if score.Scores.CTA != MaxCTA {
		t.Fatalf("expected cta hit got %v", score.Scores.CTA)
	}
	if score.Scores.PowerWords != 3 {
		t.Fatalf("expected one power word (3 points) got %v", score.Scores.PowerWords)
	}
	if score.Scores.LengthConciseness != MaxLength {
		t.Fatalf("expected full length score got %v", score.Scores.LengthConciseness)
	}
	if math.Abs(score.Scores.Readability-6) > 0.01 {
		t.Fatalf("expected readability near 6 got %v", score.Scores.Readability)
	}
	if score.Band != BandGood {
		t.Fatalf("expected Good got %s (%v)", score.Band, score.Total)
	}
	if short := EvaluateAd("We sell clothes."); score.Total <= short.Total {
		t.Fatalf("expected %v above %v", score.Total, short.Total)
	}
}

func TestEvaluateDegenerate(t *testing.T) {
	for _, text := range []string{"", "   ", "!!! ... ???", "—"} {
		score := EvaluateAd(text)
		if score.Scores != (Scores{}) || score.Total != 0 {
			t.Fatalf("%q: expected zero scores got %+v", text, score.Scores)
		}
		if score.Band != BandWeak {
			t.Fatalf("%q: expected Weak got %s", text, score.Band)
		}
		if len(score.Suggestions) == 0 {
			t.Fatalf("%q: expected suggestions", text)
		}
	}
}

func TestLengthConciseness(t *testing.T) {
	tests := []struct {
		words    int
		expected float64
	}{
		{0, 0},
		{4, 0},
		{5, 0},
		{7, 6},
		{10, 15},
		{25, 15},
		{30, 12},
		{50, 0},
		{51, 0},
	}
	for _, tc := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tc.words))
		got := EvaluateAd(text).Scores.LengthConciseness
		if got != tc.expected {
			t.Fatalf("%d words: expected %v got %v", tc.words, tc.expected, got)
		}
	}
}

func TestEmotion(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"neutral", "plain shirts for sale", 10},
		{"positive", "new best fresh", 15},
		{"negative", "this is a bad slow problem", 7.5},
		{"punctuation does not hide words", "Free! New! Best!", 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateAd(tc.text).Scores.Emotion
			if got != tc.expected {
				t.Fatalf("expected %v got %v", tc.expected, got)
			}
		})
	}
}

func TestPowerWordsCapped(t *testing.T) {
	score := EvaluateAd("free free free free free free free")
	if score.Scores.PowerWords != MaxPowerWords {
		t.Fatalf("expected capped %v got %v", MaxPowerWords, score.Scores.PowerWords)
	}
	if got := EvaluateAd("free new shirts").Scores.PowerWords; got != 6 {
		t.Fatalf("expected 6 got %v", got)
	}
}

func TestUniqueness(t *testing.T) {
	generic := EvaluateAd("Limited time offer. Buy now and save big on our best-selling products.")
	if generic.Scores.Uniqueness != 0 {
		t.Fatalf("expected 0 uniqueness for a reference ad got %v", generic.Scores.Uniqueness)
	}
	if !contains(generic.Suggestions, adviceUniqueness) {
		t.Fatalf("expected uniqueness suggestion")
	}
	if got := EvaluateAd("single").Scores.Uniqueness; got != 0 {
		t.Fatalf("expected 0 for a one-word ad got %v", got)
	}
	if got := EvaluateAd("hand stitched leather wallets").Scores.Uniqueness; got != MaxUniqueness {
		t.Fatalf("expected full uniqueness got %v", got)
	}
}

func TestSyllables(t *testing.T) {
	tests := map[string]int{
		"we":         1,
		"clothes":    2,
		"breathable": 2,
		"yours":      1,
		"today":      2,
		"discover":   3,
		"the":        1,
		"2024":       0,
		"rhythm":     1,
	}
	for word, expected := range tests {
		if got := Syllables(word); got != expected {
			t.Fatalf("%s: expected %d got %d", word, expected, got)
		}
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		total    float64
		expected string
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79.99, BandGood},
		{60, BandGood},
		{40, BandAverage},
		{39.99, BandWeak},
		{0, BandWeak},
	}
	for _, tc := range tests {
		if got := BandFor(tc.total); got != tc.expected {
			t.Fatalf("%v: expected %s got %s", tc.total, tc.expected, got)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	a := EvaluateAd(linenAd)
	b := EvaluateAd(linenAd)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical scores")
	}
}

func TestLoadLexiconOverride(t *testing.T) {
	path := tempJSON(t, map[string][]string{
		"cta_verbs": {" Sell "},
	})
	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	if err := lex.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(lex.PowerWords) != len(DefaultLexicon().PowerWords) {
		t.Fatalf("expected default power words to survive")
	}

	score := NewAdScorer(lex).Evaluate("We sell clothes.")
	if score.Scores.CTA != MaxCTA {
		t.Fatalf("expected overridden cta hit got %v", score.Scores.CTA)
	}
	if got := EvaluateAd("We sell clothes.").Scores.CTA; got != 0 {
		t.Fatalf("default scorer should be unaffected, got %v", got)
	}
}

func TestLoadLexiconErrors(t *testing.T) {
	if _, err := LoadLexicon(t.TempDir() + "/missing.json"); err == nil {
		t.Fatalf("expected read error")
	}
	path := t.TempDir() + "/bad.json"
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLexicon(path); err == nil {
		t.Fatalf("expected unmarshal error")
	}

	for name, doc := range map[string]any{
		"unknown key":  map[string][]string{"cta": {"sell"}},
		"not an array": map[string]string{"power_words": "free"},
		"non-string":   map[string][]int{"negative": {1, 2}},
	} {
		_, err := LoadLexicon(tempJSON(t, doc))
		if err == nil || !strings.Contains(err.Error(), "schema") {
			t.Fatalf("%s: expected schema error got %v", name, err)
		}
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func tempJSON(t *testing.T, value any) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "lexicon-*.json")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return f.Name()
}
