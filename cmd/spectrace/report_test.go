package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/scanner"
)

func TestRenderReportListsVerifyOnlyRuleAsUncovered(t *testing.T) {
	m := manifest.NewSpecManifest("demo")
	m.Rules["frame.order"] = manifest.Rule{ID: "frame.order"}
	m.Rules["frame.size"] = manifest.Rule{ID: "frame.size"}

	// frame.size has only a verify reference: not orphaned, but still
	// uncovered. frame.order has no references at all.
	refs := []scanner.Reference{
		{RuleID: "frame.size", Verb: scanner.VerbVerify, File: "frame_test.go", Line: 3},
	}
	result := coverage.Analyze(m, refs)

	var buf bytes.Buffer
	renderReport(&buf, result, nil, false)
	out := buf.String()

	if !strings.Contains(out, "uncovered rules (2):") {
		t.Errorf("expected both rules listed as uncovered:\n%s", out)
	}
	for _, id := range []string{"frame.order", "frame.size"} {
		if !strings.Contains(out, "    "+id+"\n") {
			t.Errorf("uncovered list missing %s:\n%s", id, out)
		}
	}
}

func TestRenderReportOmitsUncoveredWhenFullyCovered(t *testing.T) {
	m := manifest.NewSpecManifest("demo")
	m.Rules["frame.size"] = manifest.Rule{ID: "frame.size"}

	refs := []scanner.Reference{
		{RuleID: "frame.size", Verb: scanner.VerbImpl, File: "frame.go", Line: 3},
	}
	result := coverage.Analyze(m, refs)

	var buf bytes.Buffer
	renderReport(&buf, result, nil, false)
	if strings.Contains(buf.String(), "uncovered rules") {
		t.Errorf("fully covered spec must not print an uncovered section:\n%s", buf.String())
	}
}
