package trace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spectrace/spectrace/internal/config"
	"github.com/spectrace/spectrace/internal/session"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func sessionFixture(t *testing.T) *session.Session {
	t.Helper()
	root := t.TempDir()
	write(t, root, "spec/rules.md", "r[a.b]\nClients MUST b.\n\nr[a.c]\nClients MUST c.\n")
	write(t, root, "src/b.go", "package src\n\n// [impl a.b]\n// [verify a.b]\nfunc B() {}\n")

	sess := session.New(root, []config.SpecConfig{{
		Name:      "demo",
		RulesGlob: "spec/*.md",
		Include:   []string{"src/**"},
	}})
	if _, err := sess.Rebuild("demo"); err != nil {
		t.Fatal(err)
	}
	return sess
}

func exec(t *testing.T, tool interface {
	Execute(context.Context, json.RawMessage) (interface{}, error)
}, params string) interface{} {
	t.Helper()
	result, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	return result
}

func TestGetToolsNames(t *testing.T) {
	sess := sessionFixture(t)
	tools := GetTools(sess)

	want := map[string]bool{
		"rebuild": false, "report": false, "matrix": false,
		"impact": false, "at": false, "specs": false,
	}
	for _, tool := range tools {
		if _, ok := want[tool.Name()]; !ok {
			t.Errorf("unexpected tool %q", tool.Name())
			continue
		}
		want[tool.Name()] = true
		if tool.Description() == "" {
			t.Errorf("tool %q has no description", tool.Name())
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing tool %q", name)
		}
	}
}

func TestReportTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &ReportTool{sess: sess}

	result := exec(t, tool, `{"spec":"demo"}`).(*ReportResult)
	if result.Generation != 1 {
		t.Errorf("generation = %d", result.Generation)
	}
	if result.Percent != 50.0 {
		t.Errorf("percent = %v", result.Percent)
	}
	if result.Report.TotalRules != 2 {
		t.Errorf("report = %+v", result.Report)
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("missing spec should fail")
	}
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"spec":"nope"}`)); err == nil {
		t.Error("unknown spec should fail")
	}
}

func TestRebuildTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &RebuildTool{sess: sess}

	result := exec(t, tool, `{"spec":"demo"}`).(*RebuildResult)
	if result.Generation != 2 {
		t.Errorf("generation = %d, want 2 after explicit rebuild", result.Generation)
	}
	if result.Report == nil {
		t.Error("rebuild result carries no report")
	}
}

func TestMatrixTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &MatrixTool{sess: sess}

	full := exec(t, tool, `{"spec":"demo"}`)
	uncovered := exec(t, tool, `{"spec":"demo","uncovered_only":true}`)

	fullJSON, _ := json.Marshal(full)
	uncoveredJSON, _ := json.Marshal(uncovered)
	if len(fullJSON) <= len(uncoveredJSON) {
		t.Errorf("filter did not narrow the matrix:\n%s\n%s", fullJSON, uncoveredJSON)
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"spec":"demo","level":"shall"}`)); err == nil {
		t.Error("bad level should fail")
	}
}

func TestImpactTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &ImpactTool{sess: sess}

	result := exec(t, tool, `{"spec":"demo","rule_id":"a.b"}`).(*ImpactResult)
	if len(result.References) != 2 {
		t.Errorf("references = %+v", result.References)
	}

	// Unreferenced rule: empty set, not an error.
	empty := exec(t, tool, `{"spec":"demo","rule_id":"a.c"}`).(*ImpactResult)
	if empty.References == nil || len(empty.References) != 0 {
		t.Errorf("expected empty slice, got %#v", empty.References)
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"spec":"demo"}`)); err == nil {
		t.Error("missing rule_id should fail")
	}
}

func TestAtTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &AtTool{sess: sess}

	result := exec(t, tool, `{"spec":"demo","file":"src/b.go","line":3,"end_line":4}`).(*AtResult)
	if len(result.Rules) != 1 || result.Rules[0].ID != "a.b" {
		t.Errorf("rules = %+v", result.Rules)
	}

	none := exec(t, tool, `{"spec":"demo","file":"src/b.go","line":5}`).(*AtResult)
	if len(none.Rules) != 0 {
		t.Errorf("expected no rules at line 5, got %+v", none.Rules)
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"spec":"demo","file":"src/b.go","line":0}`)); err == nil {
		t.Error("line 0 should fail")
	}
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"spec":"demo","file":"src/b.go","line":4,"end_line":2}`)); err == nil {
		t.Error("inverted range should fail")
	}
}

func TestSpecsTool(t *testing.T) {
	sess := sessionFixture(t)
	tool := &SpecsTool{sess: sess}

	result := exec(t, tool, `{}`).(*SpecsResult)
	if len(result.Specs) != 1 {
		t.Fatalf("specs = %+v", result.Specs)
	}
	status := result.Specs[0]
	if status.Spec != "demo" || status.Generation != 1 || status.TotalRules != 2 {
		t.Errorf("status = %+v", status)
	}
}
