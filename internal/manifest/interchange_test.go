package manifest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterchangeRoundTrip(t *testing.T) {
	m := NewSpecManifest("http2")
	m.Rules["stream.states.idle"] = Rule{
		ID:     "stream.states.idle",
		URL:    "https://example.com/spec#idle",
		Status: StatusStable,
		Level:  LevelMust,
		Body:   "Streams start in the idle state.",
	}
	m.Rules["frame.no-reuse"] = Rule{ID: "frame.no-reuse"}

	data, err := Export(m)
	require.NoError(t, err)

	loaded, err := Parse("http2", data)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	// Only id and url cross the wire.
	rule, ok := loaded.Rule("stream.states.idle")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/spec#idle", rule.URL)
	assert.Equal(t, StatusUnset, rule.Status)
	assert.Equal(t, LevelUnset, rule.Level)
	assert.Empty(t, rule.Body)
	assert.Zero(t, rule.DeclaredAt)
}

func TestParseRejectsInvalidID(t *testing.T) {
	_, err := Parse("s", []byte(`{"rules":{"Not Valid":{"url":""}}}`))
	assert.Error(t, err)

	_, err = Parse("s", []byte(`not json`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules":{"a.b":{"url":"u"}}}`), 0644))

	m, err := LoadFile("s", path)
	require.NoError(t, err)
	assert.True(t, m.HasRule("a.b"))

	_, err = LoadFile("s", filepath.Join(t.TempDir(), "missing.json"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rules":{"a.b":{"url":"u"},"a.c":{"url":""}}}`))
	}))
	defer srv.Close()

	m, err := Fetch("s", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b", "a.c"}, m.RuleIDs())
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch("s", srv.URL)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "404")
}
