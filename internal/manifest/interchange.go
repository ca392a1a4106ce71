package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// interchangeDoc is the wire shape of a distributed rule set:
//
//	{ "rules": { "<rule.id>": { "url": "..." }, ... } }
//
// Only id and url survive the round trip; all other rule metadata is
// deliberately absent from this format.
type interchangeDoc struct {
	Rules map[string]interchangeRule `json:"rules"`
}

type interchangeRule struct {
	URL string `json:"url"`
}

// Export serializes a manifest to the interchange format.
func Export(m *SpecManifest) ([]byte, error) {
	doc := interchangeDoc{Rules: make(map[string]interchangeRule, len(m.Rules))}
	for id, rule := range m.Rules {
		doc.Rules[id] = interchangeRule{URL: rule.URL}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Parse builds a manifest from interchange-format bytes. Rules carry only
// ID and URL; downstream consumers treat the missing metadata as unset.
func Parse(name string, data []byte) (*SpecManifest, error) {
	var doc interchangeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m := NewSpecManifest(name)
	for id, info := range doc.Rules {
		if !IsValidRuleID(id) {
			return nil, fmt.Errorf("parse manifest: invalid rule id %q", id)
		}
		m.Rules[id] = Rule{ID: id, URL: info.URL}
	}
	return m, nil
}

// LoadFile reads an interchange manifest from disk.
func LoadFile(name, path string) (*SpecManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	m, err := Parse(name, data)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return m, nil
}

// Fetch retrieves an interchange manifest over HTTP.
func Fetch(name, url string) (*SpecManifest, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("HTTP %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}

	m, err := Parse(name, data)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	return m, nil
}
