// Package manifest parses rule declarations out of prose documents and
// handles the interchange manifest format used to distribute rule sets.
package manifest

import (
	"fmt"
	"sort"
)

// Status is the lifecycle state of a declared rule.
type Status string

const (
	StatusUnset      Status = ""
	StatusDraft      Status = "draft"
	StatusStable     Status = "stable"
	StatusDeprecated Status = "deprecated"
	StatusRemoved    Status = "removed"
)

// ParseStatus validates a status attribute value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusStable, StatusDeprecated, StatusRemoved:
		return Status(s), nil
	default:
		return StatusUnset, fmt.Errorf("invalid status %q (valid: draft, stable, deprecated, removed)", s)
	}
}

// Level is the requirement level of a rule.
type Level string

const (
	LevelUnset  Level = ""
	LevelMust   Level = "must"
	LevelShould Level = "should"
	LevelMay    Level = "may"
)

// ParseLevel validates a level attribute value.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelMust, LevelShould, LevelMay:
		return Level(s), nil
	default:
		return LevelUnset, fmt.Errorf("invalid level %q (valid: must, should, may)", s)
	}
}

// Location is a position in a source document.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// Rule is a single declared requirement. Identity is ID; rules are
// immutable once extracted. Metadata loaded from the interchange format
// carries only ID and URL, with everything else left at its zero value,
// which means "unset" rather than an error.
type Rule struct {
	ID         string   `json:"id"`
	URL        string   `json:"url,omitempty"`
	Status     Status   `json:"status,omitempty"`
	Level      Level    `json:"level,omitempty"`
	Since      string   `json:"since,omitempty"`
	Until      string   `json:"until,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Body       string   `json:"body,omitempty"`
	DeclaredAt Location `json:"declared_at,omitzero"`
}

// SpecManifest is the full set of rules declared for one spec.
// No two rules share an ID.
type SpecManifest struct {
	Name  string
	Rules map[string]Rule
}

func NewSpecManifest(name string) *SpecManifest {
	return &SpecManifest{
		Name:  name,
		Rules: make(map[string]Rule),
	}
}

func (m *SpecManifest) HasRule(id string) bool {
	_, ok := m.Rules[id]
	return ok
}

func (m *SpecManifest) Rule(id string) (Rule, bool) {
	r, ok := m.Rules[id]
	return r, ok
}

func (m *SpecManifest) Len() int {
	return len(m.Rules)
}

// RuleIDs returns all rule IDs in sorted order.
func (m *SpecManifest) RuleIDs() []string {
	ids := make([]string, 0, len(m.Rules))
	for id := range m.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
