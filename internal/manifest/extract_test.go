package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidRuleID(t *testing.T) {
	valid := []string{
		"a.b",
		"auth",
		"channel.id.allocation",
		"frame.no-reuse",
		"http2.stream-states.idle",
		"a1.b2",
	}
	for _, id := range valid {
		assert.True(t, IsValidRuleID(id), "expected %q to be valid", id)
	}

	invalid := []string{
		"",
		"A.b",
		"a.",
		".a",
		"a..b",
		"a b",
		"1a.b",
		"a.-b",
		"a_b.c",
	}
	for _, id := range invalid {
		assert.False(t, IsValidRuleID(id), "expected %q to be invalid", id)
	}
}

func TestExtractBasic(t *testing.T) {
	doc := Document{
		Path: "spec/auth.md",
		Content: strings.Join([]string{
			"# Authentication",
			"",
			"r[auth.token.expiry status=stable level=must since=1.2]",
			"Tokens MUST expire after the configured lifetime.",
			"Expired tokens are rejected.",
			"",
			"Some unrelated prose.",
			"",
			"r[auth.token.refresh level=should tags=token,refresh]",
			"Clients SHOULD refresh tokens before expiry.",
		}, "\n"),
	}

	m, warnings, err := Extract("auth", []Document{doc})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, m.Len())

	rule, ok := m.Rule("auth.token.expiry")
	require.True(t, ok)
	assert.Equal(t, StatusStable, rule.Status)
	assert.Equal(t, LevelMust, rule.Level)
	assert.Equal(t, "1.2", rule.Since)
	assert.Equal(t, "Tokens MUST expire after the configured lifetime.\nExpired tokens are rejected.", rule.Body)
	assert.Equal(t, Location{Path: "spec/auth.md", Line: 3}, rule.DeclaredAt)

	rule, ok = m.Rule("auth.token.refresh")
	require.True(t, ok)
	assert.Equal(t, LevelShould, rule.Level)
	assert.Equal(t, StatusUnset, rule.Status)
	assert.Equal(t, []string{"token", "refresh"}, rule.Tags)
}

func TestExtractBodyStopsAtNextMarker(t *testing.T) {
	doc := Document{
		Path: "s.md",
		Content: strings.Join([]string{
			"r[a.one]",
			"Body of one.",
			"r[a.two]",
			"Body of two.",
		}, "\n"),
	}

	m, warnings, err := Extract("s", []Document{doc})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	one, _ := m.Rule("a.one")
	assert.Equal(t, "Body of one.", one.Body)
	two, _ := m.Rule("a.two")
	assert.Equal(t, "Body of two.", two.Body)
}

func TestExtractMalformedMarkerWarns(t *testing.T) {
	doc := Document{
		Path: "s.md",
		Content: strings.Join([]string{
			"r[a.good]",
			"",
			"r[a.unclosed",
			"",
			"r[a.trailing] extra text",
		}, "\n"),
	}

	m, warnings, err := Extract("s", []Document{doc})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	require.Len(t, warnings, 2)
	assert.Equal(t, 3, warnings[0].At.Line)
	assert.Equal(t, 5, warnings[1].At.Line)
}

func TestExtractUnknownAttributeWarns(t *testing.T) {
	doc := Document{
		Path:    "s.md",
		Content: "r[a.b color=red url=https://example.com/a.b]",
	}

	m, warnings, err := Extract("s", []Document{doc})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "unknown attribute")

	// The rule itself survives with the known attribute applied.
	rule, ok := m.Rule("a.b")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a.b", rule.URL)
}

func TestExtractInvalidEnumDropsOneRule(t *testing.T) {
	doc := Document{
		Path: "s.md",
		Content: strings.Join([]string{
			"r[a.bad status=banana]",
			"",
			"r[a.good status=draft]",
		}, "\n"),
	}

	m, warnings, err := Extract("s", []Document{doc})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	assert.False(t, m.HasRule("a.bad"))
	assert.True(t, m.HasRule("a.good"))

	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[len(warnings)-1].Message, "a.bad")
}

func TestExtractDuplicateRuleIsFatal(t *testing.T) {
	docs := []Document{
		{Path: "one.md", Content: "r[a.b]"},
		{Path: "two.md", Content: "\n\nr[a.b]"},
	}

	_, _, err := Extract("s", docs)
	require.Error(t, err)

	var dup *DuplicateRuleError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a.b", dup.ID)
	assert.Equal(t, Location{Path: "one.md", Line: 1}, dup.First)
	assert.Equal(t, Location{Path: "two.md", Line: 3}, dup.Second)
}

func TestExtractAcrossDocuments(t *testing.T) {
	docs := []Document{
		{Path: "one.md", Content: "r[a.one]"},
		{Path: "two.md", Content: "r[a.two]"},
	}

	m, _, err := Extract("s", docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.one", "a.two"}, m.RuleIDs())
}

func TestParseStatusAndLevel(t *testing.T) {
	for s, want := range map[string]Status{
		"draft":      StatusDraft,
		"stable":     StatusStable,
		"deprecated": StatusDeprecated,
		"removed":    StatusRemoved,
	} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStatus("shiny")
	assert.Error(t, err)

	for s, want := range map[string]Level{
		"must":   LevelMust,
		"should": LevelShould,
		"may":    LevelMay,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseLevel("shall")
	assert.Error(t, err)
}
