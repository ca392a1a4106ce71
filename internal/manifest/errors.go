package manifest

import "fmt"

// DuplicateRuleError reports two declarations of the same rule ID within
// one extraction pass. It is fatal: the whole manifest is rejected.
type DuplicateRuleError struct {
	ID     string
	First  Location
	Second Location
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rule %q: declared at %s and %s", e.ID, e.First, e.Second)
}

// ParseError reports malformed metadata on a single rule. Extraction of
// other rules continues; only the offending rule is dropped.
type ParseError struct {
	RuleID string
	At     Location
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: rule %q: %v", e.At, e.RuleID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadError reports an unreadable or unparsable rule source. It is fatal
// for the spec it belongs to.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load manifest from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal finding collected during extraction, surfaced
// alongside an otherwise complete manifest.
type Warning struct {
	At      Location
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.At, w.Message)
}
