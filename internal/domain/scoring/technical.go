package scoring

import (
	"context"
	"regexp"
	"strings"
)

// Default sub-metric weights. They are applied as given, without
// renormalization, when they do not sum to 1.
const (
	defaultCodeWeight        = 0.4
	defaultTermWeight        = 0.3
	defaultExplanationWeight = 0.3
)

// Per-block quality award fractions.
const (
	awardIndentation = 0.3
	awardComment     = 0.2
	awardLineLength  = 0.2
	awardCamelCase   = 0.3
	maxCodeLineLen   = 80
)

// Explanation quality award fractions.
const (
	awardSubheading = 0.2
	awardBullet     = 0.2
	awardParagraphs = 0.3
	awardExample    = 0.3
)

// technicalVocabulary is the fixed term set matched case-insensitively
// against the fence-stripped text.
var technicalVocabulary = []string{
	"algorithm", "api", "abstraction", "authentication", "cache",
	"compiler", "concurrency", "container", "database", "dependency",
	"deployment", "encryption", "endpoint", "framework", "function",
	"goroutine", "implementation", "interface", "latency", "library",
	"middleware", "mutex", "microservice", "refactor", "runtime",
	"schema", "thread", "throughput", "variable", "kubernetes",
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")
	camelCaseRe   = regexp.MustCompile(`\b[a-z][a-z0-9]*[A-Z][A-Za-z0-9]*\b`)
	nonWordRe     = regexp.MustCompile(`\W+`)
	subheadingRe  = regexp.MustCompile(`^\s*#{2,}\s+\S`)
	bulletRe      = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\S`)
)

// examplePhrases introduce worked examples in explanatory prose.
var examplePhrases = []string{"for example", "e.g.", "i.e.", "such as"}

// Paragraph line-count band rewarded by the explanation sub-metric.
const (
	minParagraphLines = 3
	maxParagraphLines = 10
)

// TechnicalScorer scores content on three sub-metrics: fenced code
// block quality, technical term density, and explanation structure,
// combined by configurable weights.
type TechnicalScorer struct {
	id                string
	weight            float64
	codeWeight        float64
	termWeight        float64
	explanationWeight float64
	vocabulary        map[string]struct{}
}

// TechnicalOption applies a configuration option to the TechnicalScorer.
type TechnicalOption func(*TechnicalScorer)

// WithSubMetricWeights sets the code/terms/explanation weights. Values
// are used as given; they are not renormalized.
func WithSubMetricWeights(code, terms, explanation float64) TechnicalOption {
	return func(s *TechnicalScorer) {
		if code >= 0 && terms >= 0 && explanation >= 0 {
			s.codeWeight = code
			s.termWeight = terms
			s.explanationWeight = explanation
		}
	}
}

// WithTechnicalWeight sets the scorer's intrinsic weight.
func WithTechnicalWeight(w float64) TechnicalOption {
	return func(s *TechnicalScorer) {
		if w > 0 {
			s.weight = w
		}
	}
}

// NewTechnicalScorer creates a technical quality scorer with
// configuration options.
func NewTechnicalScorer(opts ...TechnicalOption) *TechnicalScorer {
	s := &TechnicalScorer{
		id:                "technical",
		weight:            defaultWeight,
		codeWeight:        defaultCodeWeight,
		termWeight:        defaultTermWeight,
		explanationWeight: defaultExplanationWeight,
		vocabulary:        make(map[string]struct{}, len(technicalVocabulary)),
	}
	for _, term := range technicalVocabulary {
		s.vocabulary[term] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the scorer identifier.
func (s *TechnicalScorer) ID() string {
	return s.id
}

// Weight returns the scorer's intrinsic weight.
func (s *TechnicalScorer) Weight() float64 {
	return s.weight
}

// Score computes the weighted combination of the three sub-metrics.
func (s *TechnicalScorer) Score(_ context.Context, content string) (Result, error) {
	blocks, prose := extractCodeBlocks(content)

	codeQuality := codeBlockQuality(blocks)
	termQuality := s.termDensity(prose)
	explanationQuality := explanationQuality(prose)

	combined := s.codeWeight*codeQuality +
		s.termWeight*termQuality +
		s.explanationWeight*explanationQuality

	return Result{
		RawScore:        clampRaw(combined * maxRawScore),
		NormalizedScore: clamp01(clamp01(combined) * s.weight),
		Metrics: map[string]float64{
			"code_block_count":    float64(len(blocks)),
			"code_block_quality":  codeQuality,
			"term_density":        termQuality,
			"explanation_quality": explanationQuality,
		},
	}, nil
}

// extractCodeBlocks returns the bodies of fenced code blocks and the
// content with those blocks stripped.
func extractCodeBlocks(content string) ([]string, string) {
	matches := fencedBlockRe.FindAllStringSubmatch(content, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	prose := fencedBlockRe.ReplaceAllString(content, "")
	return blocks, prose
}

// codeBlockQuality averages per-block awards; zero with no blocks.
func codeBlockQuality(blocks []string) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var total float64
	for _, block := range blocks {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")

		indented := false
		commented := false
		allShort := true
		for _, line := range lines {
			if strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t") {
				indented = true
			}
			if hasCommentMarker(line) {
				commented = true
			}
			if len(line) > maxCodeLineLen {
				allShort = false
			}
		}

		var score float64
		if indented {
			score += awardIndentation
		}
		if commented {
			score += awardComment
		}
		if allShort {
			score += awardLineLength
		}
		if camelCaseRe.MatchString(block) {
			score += awardCamelCase
		}
		total += score
	}
	return total / float64(len(blocks))
}

func hasCommentMarker(line string) bool {
	for _, marker := range []string{"//", "#", "/*", "--", "<!--"} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// termDensity averages matched-token density and distinct-term coverage
// of the vocabulary over the fence-stripped text.
func (s *TechnicalScorer) termDensity(prose string) float64 {
	tokens := nonWordRe.Split(strings.ToLower(prose), -1)
	total := 0
	matched := 0
	distinct := make(map[string]struct{})
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		total++
		if _, ok := s.vocabulary[tok]; ok {
			matched++
			distinct[tok] = struct{}{}
		}
	}
	if total == 0 {
		return 0
	}
	density := float64(matched) / float64(total)
	coverage := float64(len(distinct)) / float64(len(s.vocabulary))
	return (density + coverage) / 2
}

// explanationQuality awards structure signals over the prose lines.
func explanationQuality(prose string) float64 {
	lines := strings.Split(prose, "\n")

	nonBlank := 0
	hasSubheading := false
	hasBullet := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++
		if subheadingRe.MatchString(line) {
			hasSubheading = true
		}
		if bulletRe.MatchString(line) {
			hasBullet = true
		}
	}
	if nonBlank == 0 {
		return 0
	}

	var score float64
	if hasSubheading {
		score += awardSubheading
	}
	if hasBullet {
		score += awardBullet
	}
	score += awardParagraphs * wellSizedParagraphFraction(prose)
	lowered := strings.ToLower(prose)
	for _, phrase := range examplePhrases {
		if strings.Contains(lowered, phrase) {
			score += awardExample
			break
		}
	}
	return score
}

// wellSizedParagraphFraction reports the fraction of blank-line-separated
// paragraphs with 3-10 lines.
func wellSizedParagraphFraction(prose string) float64 {
	paragraphs := regexp.MustCompile(`\n\s*\n`).Split(prose, -1)
	total := 0
	wellSized := 0
	for _, p := range paragraphs {
		lines := 0
		for _, line := range strings.Split(p, "\n") {
			if strings.TrimSpace(line) != "" {
				lines++
			}
		}
		if lines == 0 {
			continue
		}
		total++
		if lines >= minParagraphLines && lines <= maxParagraphLines {
			wellSized++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(wellSized) / float64(total)
}
