package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/metrics"
)

// defaultMinLength is the minimum content length considered substantive.
const defaultMinLength = 10

// ContentFilter rejects non-substantive content before scoring. Rules
// run in fixed order and the first match wins: bot author, too short,
// excluded user, matched pattern. Absent content is a distinct outcome
// (unscorable, not rejected).
type ContentFilter struct {
	name          string
	matcher       event.TypeMatcher
	minLength     int
	excludeBots   bool
	excludedUsers map[string]struct{}
	rawPatterns   []string
	patterns      []*regexp.Regexp
}

// ContentOption applies a configuration option to the ContentFilter.
type ContentOption func(*ContentFilter)

// WithMinLength sets the minimum content length.
func WithMinLength(n int) ContentOption {
	return func(f *ContentFilter) {
		if n > 0 {
			f.minLength = n
		}
	}
}

// WithBotExclusion toggles the bot-author rule.
func WithBotExclusion(enabled bool) ContentOption {
	return func(f *ContentFilter) {
		f.excludeBots = enabled
	}
}

// WithExcludedUsers sets authors whose content is always rejected.
func WithExcludedUsers(names ...string) ContentOption {
	return func(f *ContentFilter) {
		for _, n := range names {
			f.excludedUsers[strings.ToLower(n)] = struct{}{}
		}
	}
}

// WithPatterns sets case-insensitive rejection patterns. The patterns
// are compiled by NewContentFilter so invalid ones fail construction.
func WithPatterns(patterns ...string) ContentOption {
	return func(f *ContentFilter) {
		f.rawPatterns = append(f.rawPatterns, patterns...)
	}
}

// WithContentMatcher restricts the event types the filter applies to.
func WithContentMatcher(m event.TypeMatcher) ContentOption {
	return func(f *ContentFilter) {
		if m != nil {
			f.matcher = m
		}
	}
}

// NewContentFilter creates a content filter with configuration options.
// An invalid rejection pattern fails here, at construction time, never
// per event.
func NewContentFilter(opts ...ContentOption) (*ContentFilter, error) {
	f := &ContentFilter{
		name:          "content-filter",
		matcher:       event.AnyType(),
		minLength:     defaultMinLength,
		excludeBots:   true,
		excludedUsers: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, p := range f.rawPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFilterPattern, p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Name returns the module name.
func (f *ContentFilter) Name() string {
	return f.name
}

// CanProcess reports whether the filter applies to the envelope.
func (f *ContentFilter) CanProcess(e event.Envelope) bool {
	return f.matcher.Matches(e.Type)
}

// Transform evaluates the rejection rules. Applying the filter to an
// already-filtered result returns it unchanged, so the filter is
// idempotent.
func (f *ContentFilter) Transform(_ context.Context, e event.Envelope, r module.Result) (module.Result, error) {
	if r.Filtered() {
		return r, nil
	}

	content, hasContent := extractContent(e)
	author, _ := extractAuthor(e, r)

	if !hasContent {
		r.Set(module.KeyFiltered, false)
		r.Set(module.KeyReason, string(module.ReasonNoContent))
		if author != "" {
			r.Set(module.KeyAuthor, author)
		}
		metrics.RecordEventFiltered(string(module.ReasonNoContent))
		return r, nil
	}

	if reason, rejected := f.evaluate(content, author); rejected {
		r.MarkFiltered(reason)
		if author != "" {
			r.Set(module.KeyAuthor, author)
		}
		metrics.RecordEventFiltered(string(reason))
		return r, nil
	}

	r.Set(module.KeyFiltered, false)
	r.Set(module.KeyContent, content)
	if author != "" {
		r.Set(module.KeyAuthor, author)
	}
	return r, nil
}

// evaluate applies the rejection rules in fixed order; first match wins.
func (f *ContentFilter) evaluate(content, author string) (module.Reason, bool) {
	if f.excludeBots && author != "" && looksLikeBot(author) {
		return module.ReasonBotAuthor, true
	}
	if utf8.RuneCountInString(content) < f.minLength {
		return module.ReasonTooShort, true
	}
	if _, excluded := f.excludedUsers[strings.ToLower(author)]; excluded && author != "" {
		return module.ReasonExcludedUser, true
	}
	for _, re := range f.patterns {
		if re.MatchString(content) {
			return module.ReasonMatchedPattern, true
		}
	}
	return "", false
}
