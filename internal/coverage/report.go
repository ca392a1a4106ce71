// Package coverage joins a spec manifest against scanned references to
// produce coverage reports, the traceability matrix, and the rule/location
// indexes used by queries. The join is a pure, single-threaded computation
// over its inputs.
package coverage

import (
	"sort"

	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/scanner"
)

// Report is the coverage summary for one spec against one scan pass.
type Report struct {
	SpecName   string `json:"spec_name"`
	TotalRules int    `json:"total_rules"`

	// Covered rules have at least one impl-verb valid reference.
	Covered []string `json:"covered_rules"`
	// Verified rules have at least one verify-verb valid reference.
	Verified []string `json:"verified_rules"`
	// Orphaned rules have zero references of any verb. Covered and
	// Orphaned are always disjoint.
	Orphaned []string `json:"orphaned_rules"`

	// Invalid references name a rule absent from the manifest. A dangling
	// reference is reportable data, not an error, and never contributes
	// to coverage.
	Invalid []scanner.Reference `json:"invalid_references"`

	CountsByVerb map[scanner.Verb]int `json:"reference_counts_by_verb"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Percent is covered/total as a percentage. An empty manifest is 100% by
// convention: with nothing required, nothing is missing, and the division
// by zero is avoided explicitly rather than special-cased downstream.
func (r *Report) Percent() float64 {
	if r.TotalRules == 0 {
		return 100.0
	}
	return float64(len(r.Covered)) / float64(r.TotalRules) * 100.0
}

// Passes implements the threshold check used by callers to decide process
// exit status: no invalid references and coverage at or above threshold.
func Passes(r *Report, threshold float64) bool {
	return len(r.Invalid) == 0 && r.Percent() >= threshold
}

// Result bundles everything one join pass produces. A Result is immutable
// once built; rebuilds replace it wholesale.
type Result struct {
	Manifest   *manifest.SpecManifest
	References []scanner.Reference
	Report     *Report
	Matrix     *Matrix

	byRule map[string][]scanner.Reference
	byFile map[string][]scanner.Reference
}

// Analyze joins a manifest against the references scanned from that spec's
// source set. References are partitioned into valid and invalid by rule ID;
// valid ones are grouped per rule with each group in (file, line) order.
func Analyze(m *manifest.SpecManifest, refs []scanner.Reference) *Result {
	report := &Report{
		SpecName:     m.Name,
		TotalRules:   m.Len(),
		CountsByVerb: make(map[scanner.Verb]int),
	}

	byRule := make(map[string][]scanner.Reference)
	byFile := make(map[string][]scanner.Reference)

	for _, ref := range refs {
		if !m.HasRule(ref.RuleID) {
			report.Invalid = append(report.Invalid, ref)
			continue
		}
		report.CountsByVerb[ref.Verb]++
		byRule[ref.RuleID] = append(byRule[ref.RuleID], ref)
		byFile[ref.File] = append(byFile[ref.File], ref)
	}

	for _, group := range byRule {
		scanner.SortReferences(group)
	}
	for _, group := range byFile {
		scanner.SortReferences(group)
	}
	scanner.SortReferences(report.Invalid)

	for _, id := range m.RuleIDs() {
		group := byRule[id]
		if len(group) == 0 {
			report.Orphaned = append(report.Orphaned, id)
			continue
		}
		if hasVerb(group, scanner.VerbImpl) {
			report.Covered = append(report.Covered, id)
		}
		if hasVerb(group, scanner.VerbVerify) {
			report.Verified = append(report.Verified, id)
		}
	}

	report.Diagnostics = diagnose(m)

	res := &Result{
		Manifest:   m,
		References: refs,
		Report:     report,
		byRule:     byRule,
		byFile:     byFile,
	}
	res.Matrix = buildMatrix(m, byRule, report)
	return res
}

func hasVerb(refs []scanner.Reference, verb scanner.Verb) bool {
	for _, r := range refs {
		if r.Verb == verb {
			return true
		}
	}
	return false
}

// Impact returns every reference to one rule in location order. An unknown
// or unreferenced rule yields an empty list, not an error.
func (res *Result) Impact(ruleID string) []scanner.Reference {
	return res.byRule[ruleID]
}

// ReferencesAt returns the valid references in file whose line falls within
// the inclusive [start, end] range, ordered by line then column.
func (res *Result) ReferencesAt(file string, start, end int) []scanner.Reference {
	group := res.byFile[file]

	lo := sort.Search(len(group), func(i int) bool { return group[i].Line >= start })
	hi := sort.Search(len(group), func(i int) bool { return group[i].Line > end })
	if lo >= hi {
		return nil
	}
	return group[lo:hi]
}

// RulesAt returns the rules referenced in file within the inclusive line
// range, deduplicated and sorted by ID. A rule referenced twice in the
// range appears once.
func (res *Result) RulesAt(file string, start, end int) []manifest.Rule {
	seen := make(map[string]bool)
	var rules []manifest.Rule
	for _, ref := range res.ReferencesAt(file, start, end) {
		if seen[ref.RuleID] {
			continue
		}
		seen[ref.RuleID] = true
		if rule, ok := res.Manifest.Rule(ref.RuleID); ok {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}
