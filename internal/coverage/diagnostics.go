package coverage

import (
	"fmt"
	"regexp"

	"github.com/spectrace/spectrace/internal/manifest"
)

// DiagnosticKind classifies an advisory finding about a rule's prose.
type DiagnosticKind string

const (
	// DiagUnderspecified flags a rule body without an RFC-2119 keyword.
	DiagUnderspecified DiagnosticKind = "underspecified"
	// DiagHardToVerify flags a rule phrased as a negative obligation.
	DiagHardToVerify DiagnosticKind = "hard_to_verify"
)

// Diagnostic is an informational annotation on the report. Diagnostics
// never affect coverage arithmetic.
type Diagnostic struct {
	RuleID  string         `json:"rule_id"`
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

var (
	rfc2119Pattern  = regexp.MustCompile(`\b(MUST|SHOULD|MAY|SHALL|REQUIRED|RECOMMENDED|OPTIONAL)\b`)
	negativePattern = regexp.MustCompile(`\b(MUST|SHALL)\s+NOT\b`)
)

func diagnose(m *manifest.SpecManifest) []Diagnostic {
	var diags []Diagnostic
	for _, id := range m.RuleIDs() {
		rule, _ := m.Rule(id)
		// Rules loaded from the interchange format have no body; there is
		// nothing to judge.
		if rule.Body == "" && rule.DeclaredAt == (manifest.Location{}) {
			continue
		}
		switch {
		case negativePattern.MatchString(rule.Body):
			diags = append(diags, Diagnostic{
				RuleID:  id,
				Kind:    DiagHardToVerify,
				Message: fmt.Sprintf("rule %s states a negative obligation; absence of behavior is hard to trace to code", id),
			})
		case !rfc2119Pattern.MatchString(rule.Body):
			diags = append(diags, Diagnostic{
				RuleID:  id,
				Kind:    DiagUnderspecified,
				Message: fmt.Sprintf("rule %s has no RFC-2119 keyword (MUST/SHOULD/MAY)", id),
			})
		}
	}
	return diags
}
