package filter

import (
	"context"
	"strings"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/pkg/metrics"
)

// defaultCommandPrefix marks slash commands like "/assign" or "/retest".
const defaultCommandPrefix = "/"

// CommandDetector recognizes content whose first non-blank line is a
// slash command and records it under the is_command and command keys.
// Commands are not rejected here; the scoring pipeline skips them.
type CommandDetector struct {
	name    string
	matcher event.TypeMatcher
	prefix  string
}

// CommandOption applies a configuration option to the CommandDetector.
type CommandOption func(*CommandDetector)

// WithCommandPrefix replaces the default "/" prefix.
func WithCommandPrefix(prefix string) CommandOption {
	return func(d *CommandDetector) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithCommandMatcher restricts the event types the detector applies to.
func WithCommandMatcher(m event.TypeMatcher) CommandOption {
	return func(d *CommandDetector) {
		if m != nil {
			d.matcher = m
		}
	}
}

// NewCommandDetector creates a command detector with configuration options.
func NewCommandDetector(opts ...CommandOption) *CommandDetector {
	d := &CommandDetector{
		name:    "command-detector",
		matcher: event.AnyType(),
		prefix:  defaultCommandPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the module name.
func (d *CommandDetector) Name() string {
	return d.name
}

// CanProcess reports whether the detector applies to the envelope.
func (d *CommandDetector) CanProcess(e event.Envelope) bool {
	return d.matcher.Matches(e.Type)
}

// Transform inspects the first non-blank content line for a command.
func (d *CommandDetector) Transform(_ context.Context, e event.Envelope, r module.Result) (module.Result, error) {
	if r.Filtered() {
		return r, nil
	}
	content, ok := extractContent(e)
	if !ok {
		return r, nil
	}
	if cmd, found := d.commandIn(content); found {
		r.Set(module.KeyIsCommand, true)
		r.Set(module.KeyCommand, cmd)
		metrics.RecordCommandDetection()
	}
	return r, nil
}

// commandIn returns the command word when the first non-blank line
// starts with the prefix followed by a word.
func (d *CommandDetector) commandIn(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, d.prefix) {
			return "", false
		}
		rest := strings.TrimPrefix(line, d.prefix)
		word := rest
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			word = rest[:i]
		}
		if word == "" || !isWord(word) {
			return "", false
		}
		return word, true
	}
	return "", false
}

func isWord(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
