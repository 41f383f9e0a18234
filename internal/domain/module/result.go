package module

// Reason explains why content was excluded from scoring.
type Reason string

// Reason codes emitted by the preprocessing modules.
const (
	ReasonNoContent      Reason = "no-content"
	ReasonBotAuthor      Reason = "bot-author"
	ReasonTooShort       Reason = "too-short"
	ReasonExcludedUser   Reason = "excluded-user"
	ReasonMatchedPattern Reason = "matched-pattern"
)

// Well-known result keys. Modules may add keys of their own; these are
// the ones later stages and downstream consumers rely on.
const (
	KeyFiltered        = "filtered"
	KeyReason          = "reason"
	KeyIsBot           = "is_bot"
	KeyIsCommand       = "is_command"
	KeyCommand         = "command"
	KeyAuthor          = "author"
	KeyContent         = "content"
	KeyRawScore        = "raw_score"
	KeyNormalizedScore = "normalized_score"
	KeyDiagnostic      = "diagnostic"
)

// Result is the accumulator threaded through a chain. It is an open
// key-value mapping: each module may read keys set by earlier modules
// and add or overwrite its own. The typed accessors below cover the
// well-known keys so call sites stay checked at compile time.
type Result map[string]any

// NewResult returns an empty accumulator.
func NewResult() Result {
	return Result{}
}

// Set stores a value and returns the result for chaining.
func (r Result) Set(key string, v any) Result {
	r[key] = v
	return r
}

// Has reports whether key is present.
func (r Result) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Bool returns the bool stored under key, or false when absent or of
// another type.
func (r Result) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// String returns the string stored under key, or "" when absent or of
// another type.
func (r Result) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns the float64 stored under key, or 0 when absent or of
// another type.
func (r Result) Float(key string) float64 {
	f, _ := r[key].(float64)
	return f
}

// Clone returns a shallow copy of the accumulator.
func (r Result) Clone() Result {
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Filtered reports whether a preprocessing stage excluded the event.
func (r Result) Filtered() bool {
	return r.Bool(KeyFiltered)
}

// Reason returns the recorded reason code, if any.
func (r Result) Reason() Reason {
	return Reason(r.String(KeyReason))
}

// MarkFiltered records the exclusion and its reason. The filtered flag
// is sticky: once set it is never cleared by later stages.
func (r Result) MarkFiltered(reason Reason) Result {
	r[KeyFiltered] = true
	r[KeyReason] = string(reason)
	return r
}

// IsBot reports whether the author was classified as a bot.
func (r Result) IsBot() bool {
	return r.Bool(KeyIsBot)
}

// IsCommand reports whether the content was recognized as a command.
func (r Result) IsCommand() bool {
	return r.Bool(KeyIsCommand)
}

// Author returns the extracted author identifier, if any.
func (r Result) Author() string {
	return r.String(KeyAuthor)
}

// Content returns the extracted content, if any.
func (r Result) Content() string {
	return r.String(KeyContent)
}

// AddDiagnostic appends a diagnostic note describing a degraded
// extraction; it never affects filtering or scoring decisions.
func (r Result) AddDiagnostic(note string) Result {
	notes, _ := r[KeyDiagnostic].([]string)
	r[KeyDiagnostic] = append(notes, note)
	return r
}

// Diagnostics returns recorded diagnostic notes.
func (r Result) Diagnostics() []string {
	notes, _ := r[KeyDiagnostic].([]string)
	return notes
}
