package scanner

import "strings"

// Span is one physical line of comment text, with its 1-based line number.
// Multi-line block comments produce one span per line so that marker
// positions stay accurate.
type Span struct {
	Line int
	Text string
}

// ExtractComments returns the comment text spans of content under the given
// dialect. Code and string-literal content outside comments is not
// returned. Quote tracking is per line and best-effort: enough to keep
// "//" inside an ordinary string literal from opening a comment, without
// lexing the host language.
func ExtractComments(content string, d Dialect) []Span {
	var spans []Span

	lines := strings.Split(content, "\n")
	inBlock := false
	var blockClose string

	for i, line := range lines {
		lineNo := i + 1
		rest := line

		for rest != "" {
			if inBlock {
				end := strings.Index(rest, blockClose)
				if end < 0 {
					spans = append(spans, Span{Line: lineNo, Text: rest})
					rest = ""
					break
				}
				spans = append(spans, Span{Line: lineNo, Text: rest[:end]})
				rest = rest[end+len(blockClose):]
				inBlock = false
				continue
			}

			kind, idx, tok := findOpener(rest, d)
			if kind == openNone {
				rest = ""
				break
			}

			switch kind {
			case openLine:
				spans = append(spans, Span{Line: lineNo, Text: rest[idx+len(tok.Open):]})
				rest = ""
			case openBlock:
				after := rest[idx+len(tok.Open):]
				end := strings.Index(after, tok.Close)
				if end < 0 {
					spans = append(spans, Span{Line: lineNo, Text: after})
					inBlock = true
					blockClose = tok.Close
					rest = ""
					break
				}
				spans = append(spans, Span{Line: lineNo, Text: after[:end]})
				rest = after[end+len(tok.Close):]
			}
		}
	}

	return spans
}

type openKind int

const (
	openNone openKind = iota
	openLine
	openBlock
)

// findOpener locates the earliest comment opener in a code segment,
// skipping openers that sit inside single- or double-quoted literals.
// When a line prefix and a block opener start at the same offset (lua's
// "--" vs "--[[") the longer token wins.
func findOpener(s string, d Dialect) (openKind, int, BlockDelim) {
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		bestKind := openNone
		var bestTok BlockDelim
		for _, b := range d.Blocks {
			if strings.HasPrefix(s[i:], b.Open) && len(b.Open) > len(bestTok.Open) {
				bestKind = openBlock
				bestTok = b
			}
		}
		for _, p := range d.LinePrefixes {
			if strings.HasPrefix(s[i:], p) && len(p) > len(bestTok.Open) {
				bestKind = openLine
				bestTok = BlockDelim{Open: p}
			}
		}
		if bestKind != openNone {
			return bestKind, i, bestTok
		}

		if c == '"' || c == '\'' {
			quote = c
		}
	}

	return openNone, -1, BlockDelim{}
}
