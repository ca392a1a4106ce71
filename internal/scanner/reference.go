package scanner

import "strings"

// Verb is the declared relationship of a reference to a rule.
type Verb string

const (
	VerbImpl    Verb = "impl"
	VerbVerify  Verb = "verify"
	VerbDefine  Verb = "define"
	VerbDepends Verb = "depends"
	VerbRelated Verb = "related"
)

// Verbs lists all verbs in display order.
var Verbs = []Verb{VerbDefine, VerbImpl, VerbVerify, VerbDepends, VerbRelated}

func parseVerb(s string) (Verb, bool) {
	switch Verb(s) {
	case VerbImpl, VerbVerify, VerbDefine, VerbDepends, VerbRelated:
		return Verb(s), true
	default:
		return "", false
	}
}

// Reference is a comment-embedded mention of a rule ID at a specific
// location. The rule is not required to exist in any manifest; dangling
// references are reported, not rejected. Many references may share a rule
// ID, including the same ID under different verbs, and nothing collapses
// them.
type Reference struct {
	RuleID string `json:"rule_id"`
	Verb   Verb   `json:"verb"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// ParseMarkers extracts rule references from one comment span. Markers have
// the shape [verb rule.id] or legacy [rule.id], where the bare form defaults
// to impl. A bracket whose content is neither shape (unknown verb, malformed
// id, no dot) simply fails to match; it is not an error. Referenced IDs must
// be hierarchical, carrying at least one dot.
func ParseMarkers(text, file string, line int) []Reference {
	var refs []Reference

	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}

		end := strings.IndexByte(text[i+1:], ']')
		if end < 0 {
			break
		}
		content := text[i+1 : i+1+end]

		var verb Verb
		var id string
		switch fields := strings.Fields(content); len(fields) {
		case 1:
			// Legacy bare reference.
			verb, id = VerbImpl, fields[0]
		case 2:
			v, ok := parseVerb(fields[0])
			if !ok {
				// Not a marker; an unrecognized verb token never matches.
				continue
			}
			verb, id = v, fields[1]
		default:
			continue
		}

		if !isReferenceID(id) {
			continue
		}

		refs = append(refs, Reference{
			RuleID: id,
			Verb:   verb,
			File:   file,
			Line:   line,
			Column: i + 1,
			Raw:    strings.TrimSpace(text),
		})
		i += end + 1
	}

	return refs
}

// isReferenceID checks the identifier grammar for references: lowercase
// start, [a-z0-9.-] body, at least one dot, no trailing dot.
func isReferenceID(s string) bool {
	if s == "" || !strings.Contains(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	if s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-':
		default:
			return false
		}
	}
	return true
}
