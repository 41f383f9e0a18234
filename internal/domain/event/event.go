// Package event defines the canonical envelope for items ingested from
// collaboration platforms and the capability matching used to decide
// which pipeline modules apply to an envelope.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Known envelope sources.
const (
	SourceGitHub     = "github"
	SourceGoogleDocs = "gdocs"
	SourceTelegram   = "telegram"
)

// Envelope is the platform-agnostic representation of an incoming item
// (comment, message, document). Envelopes are immutable once constructed;
// modules read them but never modify them.
type Envelope struct {
	ID     string
	Source string
	Type   string // dot-namespaced, e.g. "com.github.issue_comment.created"
	Time   time.Time
	Data   map[string]any
}

// Option applies a construction option to an Envelope.
type Option func(*Envelope)

// WithID sets an explicit envelope id instead of a generated one.
func WithID(id string) Option {
	return func(e *Envelope) {
		if id != "" {
			e.ID = id
		}
	}
}

// WithTime sets an explicit event timestamp instead of the current time.
func WithTime(t time.Time) Option {
	return func(e *Envelope) {
		if !t.IsZero() {
			e.Time = t
		}
	}
}

// New constructs an Envelope. A UUID is assigned when no id option is
// given, and the timestamp defaults to the current time.
func New(source, eventType string, data map[string]any, opts ...Option) Envelope {
	e := Envelope{
		ID:     uuid.NewString(),
		Source: source,
		Type:   eventType,
		Time:   time.Now().UTC(),
		Data:   data,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Lookup traverses Data along path and reports whether every segment was
// present. Missing or non-object intermediate values yield (nil, false);
// payload access never panics.
func (e Envelope) Lookup(path ...string) (any, bool) {
	var cur any = e.Data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString returns the string at path, or ("", false) when the path
// is absent or holds a non-string value.
func (e Envelope) LookupString(path ...string) (string, bool) {
	v, ok := e.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// LookupBool returns the bool at path, or (false, false) when the path
// is absent or holds a non-bool value.
func (e Envelope) LookupBool(path ...string) (bool, bool) {
	v, ok := e.Lookup(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// LookupMap returns the object at path, or (nil, false) when the path is
// absent or holds a non-object value.
func (e Envelope) LookupMap(path ...string) (map[string]any, bool) {
	v, ok := e.Lookup(path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
