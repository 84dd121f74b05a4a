package scoring

import (
	"regexp"
	"strings"
)

var (
	wordPattern     = regexp.MustCompile(`[A-Za-z0-9']+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

const vowels = "aeiouy"

// Tokenize returns the lower-cased word tokens of text.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m))
	}
	return out
}

// Sentences splits text on runs of terminal punctuation and drops blank pieces.
func Sentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Syllables estimates syllables by counting vowel groups. A trailing silent "e" is dropped
// when the word has more than one group; any word with letters counts at least one.
func Syllables(word string) int {
	var letters strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			letters.WriteRune(r)
		}
	}
	w := letters.String()
	if w == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	return max(1, count)
}

// FleschReadingEase is 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words), or 0
// when the text has no words or no sentences.
func FleschReadingEase(text string) float64 {
	words := Tokenize(text)
	sentences := Sentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += Syllables(w)
	}
	w := float64(len(words))
	return 206.835 - 1.015*(w/float64(len(sentences))) - 84.6*(float64(syllables)/w)
}

func ngrams(tokens []string, n int) map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
