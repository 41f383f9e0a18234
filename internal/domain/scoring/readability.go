package scoring

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// defaultReadabilityTarget is the reading-ease value the scorer rewards
// most; 60 corresponds to plain English.
const defaultReadabilityTarget = 60

// ReadabilityScorer scores content by how close its Flesch reading ease
// lands to a configured target. The normalized score peaks at the
// target and decays linearly with absolute distance, saturating at 0
// beyond 100 points.
type ReadabilityScorer struct {
	id     string
	weight float64
	target float64
}

// ReadabilityOption applies a configuration option to the ReadabilityScorer.
type ReadabilityOption func(*ReadabilityScorer)

// WithReadabilityTarget sets the reading-ease value scored as 1.0.
func WithReadabilityTarget(target float64) ReadabilityOption {
	return func(s *ReadabilityScorer) {
		s.target = target
	}
}

// WithReadabilityWeight sets the scorer's intrinsic weight.
func WithReadabilityWeight(w float64) ReadabilityOption {
	return func(s *ReadabilityScorer) {
		if w > 0 {
			s.weight = w
		}
	}
}

// NewReadabilityScorer creates a readability scorer with configuration options.
func NewReadabilityScorer(opts ...ReadabilityOption) *ReadabilityScorer {
	s := &ReadabilityScorer{
		id:     "readability",
		weight: defaultWeight,
		target: defaultReadabilityTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the scorer identifier.
func (s *ReadabilityScorer) ID() string {
	return s.id
}

// Weight returns the scorer's intrinsic weight.
func (s *ReadabilityScorer) Weight() float64 {
	return s.weight
}

// Score computes the reading ease of content and its distance-based
// normalized score. Empty content yields a zero result.
func (s *ReadabilityScorer) Score(_ context.Context, content string) (Result, error) {
	stats := analyze(content)
	if stats.words == 0 {
		return Result{Metrics: stats.asMetrics(0, 0)}, nil
	}

	wordsPerSentence := float64(stats.words) / float64(stats.sentences)
	syllablesPerWord := float64(stats.syllables) / float64(stats.words)

	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	// Grade level is computed for observability only; it never affects
	// the score.
	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59

	preWeight := clamp01(1 - math.Abs(ease-s.target)/100)
	return Result{
		RawScore:        clampRaw(ease),
		NormalizedScore: clamp01(preWeight * s.weight),
		Metrics:         stats.asMetrics(ease, grade),
	}, nil
}

// textStats holds the sentence/word/syllable counts behind the formula.
type textStats struct {
	sentences int
	words     int
	syllables int
}

func (t textStats) asMetrics(ease, grade float64) map[string]float64 {
	return map[string]float64{
		"sentences":    float64(t.sentences),
		"words":        float64(t.words),
		"syllables":    float64(t.syllables),
		"reading_ease": ease,
		"grade_level":  grade,
	}
}

// analyze counts sentences, words, and syllables in content.
func analyze(content string) textStats {
	var stats textStats

	for _, sentence := range splitSentences(content) {
		words := strings.FieldsFunc(sentence, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		if len(words) == 0 {
			continue
		}
		stats.sentences++
		stats.words += len(words)
		for _, w := range words {
			stats.syllables += countSyllables(w)
		}
	}
	if stats.sentences == 0 && stats.words > 0 {
		stats.sentences = 1
	}
	return stats
}

func splitSentences(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// countSyllables approximates syllables as vowel groups, discounting a
// trailing silent e. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
