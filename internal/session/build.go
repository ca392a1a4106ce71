package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spectrace/spectrace/internal/config"
	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/scanner"
)

// Build runs one full extraction/scan/join pass for a spec: resolve the
// rule source, scan the source set, join. One-shot callers use this
// directly; the live session calls it on every rebuild. Warnings are
// non-fatal findings (unknown attributes, unreadable files); an error means
// the whole pass is unusable and any previous result should be kept.
func Build(root string, spec config.SpecConfig) (*coverage.Result, []string, error) {
	var warnings []string

	m, extractWarnings, err := LoadManifest(root, spec)
	warnings = append(warnings, extractWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	refs, scanWarnings, err := scanner.Scan(root, scanner.Options{
		Include: spec.Include,
		Exclude: spec.Exclude,
	})
	for _, w := range scanWarnings {
		warnings = append(warnings, w.String())
	}
	if err != nil {
		return nil, warnings, err
	}

	return coverage.Analyze(m, refs), warnings, nil
}

// LoadManifest resolves the spec's single rule source: prose documents
// matched by a glob, an interchange file, or an interchange URL.
func LoadManifest(root string, spec config.SpecConfig) (*manifest.SpecManifest, []string, error) {
	switch {
	case spec.RulesGlob != "":
		return extractFromProse(root, spec.Name, spec.RulesGlob)
	case spec.RulesFile != "":
		m, err := manifest.LoadFile(spec.Name, filepath.Join(root, spec.RulesFile))
		return m, nil, err
	case spec.RulesURL != "":
		m, err := manifest.Fetch(spec.Name, spec.RulesURL)
		return m, nil, err
	default:
		return nil, nil, fmt.Errorf("spec %q has no rule source", spec.Name)
	}
}

func extractFromProse(root, name, glob string) (*manifest.SpecManifest, []string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(glob)))
	if err != nil {
		return nil, nil, &manifest.LoadError{Source: glob, Err: err}
	}

	var docs []manifest.Document
	var warnings []string
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		docs = append(docs, manifest.Document{
			Path:    filepath.ToSlash(rel),
			Content: string(data),
		})
	}

	m, extractWarnings, err := manifest.Extract(name, docs)
	for _, w := range extractWarnings {
		warnings = append(warnings, w.String())
	}
	if err != nil {
		return nil, warnings, err
	}
	return m, warnings, nil
}
