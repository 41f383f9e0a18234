package filter

import (
	"context"
	"strings"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/metrics"
)

// botSuffix is the literal suffix platforms append to bot account names.
const botSuffix = "[bot]"

// defaultBotNames are automation account names matched case-insensitively
// as substrings of the author.
var defaultBotNames = []string{"dependabot", "renovate", "github-actions"}

// BotDetector classifies the author of an envelope as human or bot and
// records the outcome under the is_bot and author keys. An explicit
// allow-list overrides every heuristic.
type BotDetector struct {
	name      string
	matcher   event.TypeMatcher
	botNames  []string
	allowlist map[string]struct{}
}

// BotOption applies a configuration option to the BotDetector.
type BotOption func(*BotDetector)

// WithBotNames replaces the default automation name set.
func WithBotNames(names ...string) BotOption {
	return func(d *BotDetector) {
		if len(names) > 0 {
			d.botNames = lowerAll(names)
		}
	}
}

// WithAllowlist sets usernames never classified as bots. Matching is
// exact and case-insensitive.
func WithAllowlist(names ...string) BotOption {
	return func(d *BotDetector) {
		for _, n := range names {
			d.allowlist[strings.ToLower(n)] = struct{}{}
		}
	}
}

// WithBotMatcher restricts the event types the detector applies to.
func WithBotMatcher(m event.TypeMatcher) BotOption {
	return func(d *BotDetector) {
		if m != nil {
			d.matcher = m
		}
	}
}

// NewBotDetector creates a bot detector with configuration options.
func NewBotDetector(opts ...BotOption) *BotDetector {
	d := &BotDetector{
		name:      "bot-detector",
		matcher:   event.AnyType(),
		botNames:  lowerAll(defaultBotNames),
		allowlist: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the module name.
func (d *BotDetector) Name() string {
	return d.name
}

// CanProcess reports whether the detector applies to the envelope.
func (d *BotDetector) CanProcess(e event.Envelope) bool {
	return d.matcher.Matches(e.Type)
}

// Transform classifies the envelope author. It is a no-op when an
// earlier stage already filtered the event, and records a diagnostic
// instead of failing when no author can be extracted.
func (d *BotDetector) Transform(_ context.Context, e event.Envelope, r module.Result) (module.Result, error) {
	if r.Filtered() {
		return r, nil
	}

	author, users := authorForType(e)
	if author == "" && len(users) == 0 {
		return r.AddDiagnostic("bot-detector: no author field"), nil
	}

	if author != "" {
		r.Set(module.KeyAuthor, author)
		if _, allowed := d.allowlist[strings.ToLower(author)]; allowed {
			r.Set(module.KeyIsBot, false)
			return r, nil
		}
	}

	bot := d.classify(author, users)
	r.Set(module.KeyIsBot, bot)
	if bot {
		metrics.RecordBotDetection()
	}
	return r, nil
}

// classify applies the three heuristics: literal suffix, configured
// automation names, and platform bot indicators.
func (d *BotDetector) classify(author string, users []map[string]any) bool {
	if strings.HasSuffix(author, botSuffix) {
		return true
	}
	lowered := strings.ToLower(author)
	for _, name := range d.botNames {
		if strings.Contains(lowered, name) {
			return true
		}
	}
	for _, u := range users {
		if t, ok := u["type"].(string); ok && t == "Bot" {
			return true
		}
		if b, ok := u["bot"].(bool); ok && b {
			return true
		}
	}
	return false
}

// authorForType extracts the author identifier using event-type-specific
// field paths and collects the user objects relevant to the platform
// bot indicator check.
func authorForType(e event.Envelope) (string, []map[string]any) {
	var author string
	var users []map[string]any

	appendUser := func(path ...string) {
		if u, ok := e.LookupMap(path...); ok {
			users = append(users, u)
		}
	}

	switch {
	case strings.Contains(e.Type, "issue_comment"):
		author, _ = e.LookupString("comment", "user", "login")
		appendUser("comment", "user")
	case strings.Contains(e.Type, "pull_request"):
		author, _ = e.LookupString("pull_request", "user", "login")
		appendUser("pull_request", "user")
	case strings.Contains(e.Type, "issue"):
		author, _ = e.LookupString("issue", "user", "login")
		appendUser("issue", "user")
	case strings.Contains(e.Type, "document"):
		author, _ = e.LookupString("document", "author")
	case strings.Contains(e.Type, "message"):
		author, _ = e.LookupString("message", "from", "username")
		appendUser("message", "from")
	}
	if author == "" {
		for _, path := range authorFieldPaths {
			if s, ok := e.LookupString(path...); ok {
				author = s
				break
			}
		}
	}
	appendUser("sender")
	appendUser("user")
	return author, users
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
