package coverage

import (
	"strings"

	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/scanner"
)

// Matrix is the traceability matrix: every rule with its references in
// (file, line) order. It is a derived view, recomputed with the report, and
// never mutated independently.
type Matrix struct {
	SpecName string        `json:"spec_name"`
	Entries  []MatrixEntry `json:"entries"`
}

// MatrixEntry is one rule row.
type MatrixEntry struct {
	Rule       manifest.Rule       `json:"rule"`
	References []scanner.Reference `json:"references"`
	Covered    bool                `json:"covered"`
	Verified   bool                `json:"verified"`
}

func buildMatrix(m *manifest.SpecManifest, byRule map[string][]scanner.Reference, report *Report) *Matrix {
	covered := make(map[string]bool, len(report.Covered))
	for _, id := range report.Covered {
		covered[id] = true
	}
	verified := make(map[string]bool, len(report.Verified))
	for _, id := range report.Verified {
		verified[id] = true
	}

	matrix := &Matrix{SpecName: m.Name}
	for _, id := range m.RuleIDs() {
		rule, _ := m.Rule(id)
		matrix.Entries = append(matrix.Entries, MatrixEntry{
			Rule:       rule,
			References: byRule[id],
			Covered:    covered[id],
			Verified:   verified[id],
		})
	}
	return matrix
}

// MatrixFilter restricts a matrix view. Zero values mean "no restriction".
type MatrixFilter struct {
	// Prefix keeps rules whose ID starts with this prefix.
	Prefix string `json:"prefix,omitempty"`
	// Level keeps rules declared at this requirement level.
	Level manifest.Level `json:"level,omitempty"`
	// UncoveredOnly keeps rules with no impl reference.
	UncoveredOnly bool `json:"uncovered_only,omitempty"`
	// MissingVerifyOnly keeps rules with no verify reference.
	MissingVerifyOnly bool `json:"missing_verify_only,omitempty"`
}

// Filter returns a new matrix holding only the entries the filter accepts.
// The entries themselves are shared, not copied.
func (mx *Matrix) Filter(f MatrixFilter) *Matrix {
	out := &Matrix{SpecName: mx.SpecName}
	for _, entry := range mx.Entries {
		if f.Prefix != "" && !strings.HasPrefix(entry.Rule.ID, f.Prefix) {
			continue
		}
		if f.Level != manifest.LevelUnset && entry.Rule.Level != f.Level {
			continue
		}
		if f.UncoveredOnly && entry.Covered {
			continue
		}
		if f.MissingVerifyOnly && entry.Verified {
			continue
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
