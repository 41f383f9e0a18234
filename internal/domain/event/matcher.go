package event

import (
	"fmt"
	"regexp"
)

// TypeMatcher is the capability test a module exposes over event types.
// The two variants, exact set and pattern, share this one interface so a
// chain can test applicability without knowing which kind it holds.
type TypeMatcher interface {
	// Matches reports whether the matcher accepts the given event type.
	Matches(eventType string) bool
}

// exactMatcher accepts an exact set of type strings.
type exactMatcher struct {
	types map[string]struct{}
}

func (m exactMatcher) Matches(eventType string) bool {
	_, ok := m.types[eventType]
	return ok
}

// ExactTypes builds a matcher accepting exactly the listed event types.
func ExactTypes(types ...string) TypeMatcher {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return exactMatcher{types: set}
}

// patternMatcher accepts types matching a compiled regular expression.
type patternMatcher struct {
	re *regexp.Regexp
}

func (m patternMatcher) Matches(eventType string) bool {
	return m.re.MatchString(eventType)
}

// TypePattern builds a matcher from a regular expression. The expression
// is compiled and anchored here so that an invalid pattern fails at
// pipeline construction time rather than per event.
func TypePattern(expr string) (TypeMatcher, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, expr, err)
	}
	return patternMatcher{re: re}, nil
}

// anyMatcher accepts every event type.
type anyMatcher struct{}

func (anyMatcher) Matches(string) bool { return true }

// AnyType builds a matcher accepting every event type.
func AnyType() TypeMatcher {
	return anyMatcher{}
}
