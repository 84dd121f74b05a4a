package scoring

import "math"

// Sub-score ceilings. They add up to 100.
const (
	MaxReadability = 20.0
	MaxLength      = 15.0
	MaxEmotion     = 20.0
	MaxPowerWords  = 15.0
	MaxCTA         = 15.0
	MaxUniqueness  = 15.0
)

// Bands in descending order of total score.
const (
	BandExcellent = "Excellent"
	BandGood      = "Good"
	BandAverage   = "Average"
	BandWeak      = "Weak"
)

const (
	powerWordCap = 5
	bigramSize   = 2
)

// Scores are the six weighted sub-scores of an ad.
type Scores struct {
	Readability       float64 `json:"readability"`
	LengthConciseness float64 `json:"length_conciseness"`
	Emotion           float64 `json:"emotion"`
	PowerWords        float64 `json:"power_words"`
	CTA               float64 `json:"cta"`
	Uniqueness        float64 `json:"uniqueness"`
}

// Sum adds the sub-scores.
func (s Scores) Sum() float64 {
	return s.Readability + s.LengthConciseness + s.Emotion + s.PowerWords + s.CTA + s.Uniqueness
}

// AdScore is the full evaluation of one ad text.
type AdScore struct {
	Scores      Scores   `json:"scores"`
	Total       float64  `json:"total"`
	Band        string   `json:"band"`
	Suggestions []string `json:"suggestions"`
	WordCount   int      `json:"word_count"`
}

// AdScorer evaluates ad copy against a lexicon. It is safe for concurrent use.
type AdScorer struct {
	power      map[string]struct{}
	cta        map[string]struct{}
	positive   map[string]struct{}
	negative   map[string]struct{}
	references []map[string]struct{}
}

var defaultScorer = NewAdScorer(DefaultLexicon())

// NewAdScorer builds a scorer from the lexicon lists.
func NewAdScorer(lex Lexicon) *AdScorer {
	refs := make([]map[string]struct{}, 0, len(lex.ReferenceAds))
	for _, ad := range lex.ReferenceAds {
		refs = append(refs, ngrams(Tokenize(ad), bigramSize))
	}
	return &AdScorer{
		power:      toSet(lex.PowerWords),
		cta:        toSet(lex.CTAVerbs),
		positive:   toSet(lex.Positive),
		negative:   toSet(lex.Negative),
		references: refs,
	}
}

// EvaluateAd scores text with the built-in lexicon.
func EvaluateAd(text string) AdScore {
	return defaultScorer.Evaluate(text)
}

// Evaluate computes the sub-scores, total, band and suggestions. Text without word tokens
// scores zero everywhere.
func (a *AdScorer) Evaluate(text string) AdScore {
	if a == nil {
		a = defaultScorer
	}
	tokens := Tokenize(text)
	var scores Scores
	if len(tokens) > 0 {
		scores = Scores{
			Readability:       readability(text),
			LengthConciseness: lengthConciseness(len(tokens)),
			Emotion:           a.emotion(tokens),
			PowerWords:        a.powerWords(tokens),
			CTA:               a.callToAction(tokens),
			Uniqueness:        a.uniqueness(tokens),
		}
	}
	total := round2(scores.Sum())
	return AdScore{
		Scores:      scores,
		Total:       total,
		Band:        BandFor(total),
		Suggestions: suggestions(scores, len(tokens)),
		WordCount:   len(tokens),
	}
}

// BandFor maps a total score onto its qualitative band.
func BandFor(total float64) string {
	switch {
	case total >= 80:
		return BandExcellent
	case total >= 60:
		return BandGood
	case total >= 40:
		return BandAverage
	default:
		return BandWeak
	}
}

func readability(text string) float64 {
	fre := math.Max(0, math.Min(100, FleschReadingEase(text)))
	return round2(MaxReadability * fre / 100)
}

func lengthConciseness(words int) float64 {
	switch {
	case words >= 10 && words <= 25:
		return MaxLength
	case words < 5 || words > 50:
		return 0
	case words < 10:
		return round2(MaxLength * float64(words-5) / 5)
	default:
		return round2(MaxLength * float64(50-words) / 25)
	}
}

// emotion maps a keyword-ratio compound in [-1, 1] onto [0, MaxEmotion]. Hits and the
// denominator use word tokens, so "Free!" counts as "free" unlike a whitespace split.
func (a *AdScorer) emotion(tokens []string) float64 {
	var pos, neg int
	for _, t := range tokens {
		if _, ok := a.positive[t]; ok {
			pos++
		}
		if _, ok := a.negative[t]; ok {
			neg++
		}
	}
	n := float64(len(tokens))
	compound := (float64(pos)/n - float64(neg)/n) * 0.5
	compound = math.Max(-1, math.Min(1, compound))
	return round2(MaxEmotion * (compound + 1) / 2)
}

func (a *AdScorer) powerWords(tokens []string) float64 {
	hits := 0
	for _, t := range tokens {
		if _, ok := a.power[t]; ok {
			hits++
		}
	}
	return round2(MaxPowerWords * float64(min(hits, powerWordCap)) / powerWordCap)
}

func (a *AdScorer) callToAction(tokens []string) float64 {
	for _, t := range tokens {
		if _, ok := a.cta[t]; ok {
			return MaxCTA
		}
	}
	return 0
}

func (a *AdScorer) uniqueness(tokens []string) float64 {
	grams := ngrams(tokens, bigramSize)
	if len(grams) == 0 {
		return 0
	}
	var overlap float64
	for _, ref := range a.references {
		overlap = math.Max(overlap, jaccard(grams, ref))
	}
	return round2(MaxUniqueness * (1 - overlap))
}

const (
	adviceReadability = "Improve readability by using shorter sentences and simpler words. Aim for 8th-grade reading level."
	adviceExpand      = "Add more details to make your ad more compelling. Aim for 10-25 words."
	adviceTrim        = "Make your ad more concise. Remove unnecessary words and focus on key benefits."
	adviceEmotion     = "Add emotional triggers like 'exclusive', 'limited time', or 'guaranteed' to create urgency and excitement."
	advicePowerWords  = "Include power words like 'new', 'free', 'exclusive', 'limited', or 'best' to grab attention."
	adviceCTA         = "Add a clear call-to-action with action verbs like 'buy', 'shop', 'get', 'try', or 'discover'."
	adviceUniqueness  = "Make your ad more unique and specific to your brand. Avoid generic marketing language."
	adviceNone        = "Great job! Your ad is well-optimized. Consider A/B testing different versions to maximize performance."
)

func suggestions(s Scores, words int) []string {
	var out []string
	if s.Readability < 10 {
		out = append(out, adviceReadability)
	}
	if s.LengthConciseness < 8 {
		if words < 10 {
			out = append(out, adviceExpand)
		} else if words > 25 {
			out = append(out, adviceTrim)
		}
	}
	if s.Emotion < 10 {
		out = append(out, adviceEmotion)
	}
	if s.PowerWords < 8 {
		out = append(out, advicePowerWords)
	}
	if s.CTA == 0 {
		out = append(out, adviceCTA)
	}
	if s.Uniqueness < 8 {
		out = append(out, adviceUniqueness)
	}
	if len(out) == 0 {
		out = append(out, adviceNone)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
