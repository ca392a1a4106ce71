package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectrace/spectrace/internal/manifest"
)

func TestDiagnostics(t *testing.T) {
	m := manifest.NewSpecManifest("s")
	at := manifest.Location{Path: "spec.md", Line: 1}
	m.Rules["a.fine"] = manifest.Rule{ID: "a.fine", Body: "Clients MUST retry.", DeclaredAt: at}
	m.Rules["a.vague"] = manifest.Rule{ID: "a.vague", Body: "Retries are nice to have.", DeclaredAt: at}
	m.Rules["a.negative"] = manifest.Rule{ID: "a.negative", Body: "Servers MUST NOT reuse IDs.", DeclaredAt: at}
	// Loaded from interchange: no body, no declaration site, no judgment.
	m.Rules["a.imported"] = manifest.Rule{ID: "a.imported"}

	diags := Analyze(m, nil).Report.Diagnostics
	require.Len(t, diags, 2)

	byID := make(map[string]Diagnostic)
	for _, d := range diags {
		byID[d.RuleID] = d
	}
	assert.Equal(t, DiagHardToVerify, byID["a.negative"].Kind)
	assert.Equal(t, DiagUnderspecified, byID["a.vague"].Kind)
}

func TestDiagnosticsEmptyBodyDeclaredInProse(t *testing.T) {
	m := manifest.NewSpecManifest("s")
	m.Rules["a.bare"] = manifest.Rule{
		ID:         "a.bare",
		DeclaredAt: manifest.Location{Path: "spec.md", Line: 9},
	}

	diags := Analyze(m, nil).Report.Diagnostics
	// Declared in prose with no body at all: underspecified.
	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnderspecified, diags[0].Kind)
}
