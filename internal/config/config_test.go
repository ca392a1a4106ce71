package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	content := `
log_level: debug
watch:
  enabled: true
  max_batch_size: 50
specs:
  - name: http2
    rules_glob: "spec/**/*.md"
    include:
      - "src/**"
    exclude:
      - "**/*_test.go"
  - name: published
    rules_file: rules.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "default survives partial override")
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 50, cfg.Watch.MaxBatchSize)
	require.Len(t, cfg.Specs, 2)

	spec, ok := cfg.Spec("http2")
	require.True(t, ok)
	assert.Equal(t, "spec/**/*.md", spec.RulesGlob)
	assert.Equal(t, []string{"src/**"}, spec.Include)

	_, ok = cfg.Spec("missing")
	assert.False(t, ok)
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name  string
		specs []SpecConfig
	}{
		{"missing name", []SpecConfig{{RulesGlob: "*.md"}}},
		{"no rule source", []SpecConfig{{Name: "a"}}},
		{"two rule sources", []SpecConfig{{Name: "a", RulesGlob: "*.md", RulesFile: "r.json"}}},
		{"duplicate names", []SpecConfig{
			{Name: "a", RulesGlob: "*.md"},
			{Name: "a", RulesFile: "r.json"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Specs = tc.specs
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsEachSource(t *testing.T) {
	for _, spec := range []SpecConfig{
		{Name: "a", RulesGlob: "spec/*.md"},
		{Name: "a", RulesFile: "rules.json"},
		{Name: "a", RulesURL: "https://example.com/rules.json"},
	} {
		cfg := DefaultConfig()
		cfg.Specs = []SpecConfig{spec}
		assert.NoError(t, cfg.Validate())
	}
}

func TestDefaultPaths(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/proj", ".spectrace", "daemon.sock"), cfg.ResolveSocketPath("/proj"))
	assert.Equal(t, filepath.Join("/proj", ".spectrace", "store.db"), cfg.ResolveStorePath("/proj"))

	cfg.SocketPath = "/tmp/custom.sock"
	assert.Equal(t, "/tmp/custom.sock", cfg.ResolveSocketPath("/proj"))
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile), []byte("log_level: info\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(nested))

	gotRoot, gotPath, err := FindProjectRoot()
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(gotRoot)
	wantRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, wantRoot, resolved)
	assert.Equal(t, ConfigFile, filepath.Base(gotPath))
}

func TestWatchDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.DebounceWindow)
	assert.Equal(t, 100, cfg.Watch.MaxBatchSize)
	assert.NotEmpty(t, cfg.Watch.IgnorePatterns)
}
