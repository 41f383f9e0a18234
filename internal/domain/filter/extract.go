// Package filter contains the preprocessing modules that classify or
// reject envelopes before any scoring happens: bot detection, slash
// command detection, and the generic content filter.
package filter

import (
	"strings"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
)

// contentFieldPaths are the common payload field names tried, in order,
// when no pre-extracted content shape is present.
var contentFieldPaths = [][]string{
	{"body"},
	{"text"},
	{"comment", "body"},
	{"message", "text"},
	{"document", "body"},
}

// authorFieldPaths are the fallback field names for author extraction.
var authorFieldPaths = [][]string{
	{"author"},
	{"user", "login"},
	{"sender", "login"},
	{"username"},
}

// extractContent returns the textual content of an envelope, preferring
// the pre-extracted {content, author} shape over platform field names.
func extractContent(e event.Envelope) (string, bool) {
	if s, ok := e.LookupString("content"); ok {
		return s, true
	}
	for _, path := range contentFieldPaths {
		if s, ok := e.LookupString(path...); ok {
			return s, true
		}
	}
	return "", false
}

// extractAuthor returns the author of an envelope, preferring an author
// already recorded on the result by an earlier module.
func extractAuthor(e event.Envelope, r module.Result) (string, bool) {
	if a := r.Author(); a != "" {
		return a, true
	}
	for _, path := range authorFieldPaths {
		if s, ok := e.LookupString(path...); ok {
			return s, true
		}
	}
	return "", false
}

// looksLikeBot applies the content filter's author heuristic: a literal
// "[bot]" suffix or a case-insensitive "bot" substring.
func looksLikeBot(author string) bool {
	if strings.HasSuffix(author, botSuffix) {
		return true
	}
	return strings.Contains(strings.ToLower(author), "bot")
}
