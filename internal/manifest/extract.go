package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Document is one prose source to extract rule declarations from.
type Document struct {
	Path    string
	Content string
}

// ruleIDPattern matches dot/hyphen-delimited rule identifiers such as
// "channel.id.allocation" or "frame.no-reuse".
var ruleIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]*([.-][a-z0-9]+)*$`)

// IsValidRuleID reports whether s is a well-formed rule identifier.
func IsValidRuleID(s string) bool {
	return ruleIDPattern.MatchString(s)
}

// Extract parses rule declarations out of the given documents.
//
// A declaration is a line of the form
//
//	r[rule.id status=stable level=must tags=a,b]
//
// followed by a descriptive paragraph running to the next blank line or the
// next marker. Unknown attribute keys and malformed markers are collected as
// warnings. An invalid value for a known enum attribute drops that one rule
// (also as a warning) without disturbing the rest. A duplicate rule ID is
// fatal and aborts the whole extraction.
func Extract(name string, docs []Document) (*SpecManifest, []Warning, error) {
	m := NewSpecManifest(name)
	var warnings []Warning

	for _, doc := range docs {
		lines := strings.Split(doc.Content, "\n")
		for i := 0; i < len(lines); i++ {
			trimmed := strings.TrimSpace(lines[i])
			if !strings.HasPrefix(trimmed, "r[") {
				continue
			}

			loc := Location{Path: doc.Path, Line: i + 1}

			end := strings.IndexByte(trimmed, ']')
			if end < 0 || strings.TrimSpace(trimmed[end+1:]) != "" {
				warnings = append(warnings, Warning{
					At:      loc,
					Message: fmt.Sprintf("malformed rule marker %q", trimmed),
				})
				continue
			}

			rule, warns, err := parseMarker(trimmed[2:end], loc)
			warnings = append(warnings, warns...)
			if err != nil {
				// Only this rule is dropped; extraction continues.
				warnings = append(warnings, Warning{At: loc, Message: err.Error()})
				continue
			}

			if prev, ok := m.Rules[rule.ID]; ok {
				return nil, warnings, &DuplicateRuleError{
					ID:     rule.ID,
					First:  prev.DeclaredAt,
					Second: loc,
				}
			}

			rule.Body = bodyAfter(lines, i+1)
			m.Rules[rule.ID] = rule
		}
	}

	return m, warnings, nil
}

// parseMarker parses the bracket content of a marker line: the rule ID
// followed by key=value attributes.
func parseMarker(content string, loc Location) (Rule, []Warning, error) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return Rule{}, nil, fmt.Errorf("empty rule marker")
	}

	id := fields[0]
	if !IsValidRuleID(id) {
		return Rule{}, nil, fmt.Errorf("invalid rule id %q", id)
	}

	rule := Rule{ID: id, DeclaredAt: loc}
	var warnings []Warning

	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			warnings = append(warnings, Warning{
				At:      loc,
				Message: fmt.Sprintf("rule %q: attribute %q is not key=value, ignored", id, field),
			})
			continue
		}

		switch key {
		case "url":
			rule.URL = value
		case "status":
			status, err := ParseStatus(value)
			if err != nil {
				return Rule{}, warnings, &ParseError{RuleID: id, At: loc, Err: err}
			}
			rule.Status = status
		case "level":
			level, err := ParseLevel(value)
			if err != nil {
				return Rule{}, warnings, &ParseError{RuleID: id, At: loc, Err: err}
			}
			rule.Level = level
		case "since":
			rule.Since = value
		case "until":
			rule.Until = value
		case "tags":
			for _, tag := range strings.Split(value, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					rule.Tags = append(rule.Tags, tag)
				}
			}
		default:
			warnings = append(warnings, Warning{
				At:      loc,
				Message: fmt.Sprintf("rule %q: unknown attribute %q, ignored", id, key),
			})
		}
	}

	return rule, warnings, nil
}

// bodyAfter collects the descriptive paragraph that follows a marker,
// stopping at a blank line or the next marker.
func bodyAfter(lines []string, start int) string {
	var body []string
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "r[") {
			break
		}
		body = append(body, trimmed)
	}
	return strings.Join(body, "\n")
}
