// Package scanner walks a source tree and extracts rule references from
// comments. Each file's comment syntax is resolved from its extension via a
// static dialect table; files with no known dialect are skipped entirely.
package scanner

import (
	"path/filepath"
	"strings"
)

// BlockDelim is one pair of block-comment delimiters.
type BlockDelim struct {
	Open  string
	Close string
}

// Dialect describes the comment syntax of a file type: zero or more
// line-comment prefixes and zero or more block delimiter pairs. This is a
// closed descriptor set, not a language plugin mechanism; it only needs to
// delimit comments, not lex the host language.
type Dialect struct {
	LinePrefixes []string
	Blocks       []BlockDelim
}

var (
	cStyle = Dialect{
		LinePrefixes: []string{"//"},
		Blocks:       []BlockDelim{{Open: "/*", Close: "*/"}},
	}
	hashStyle = Dialect{
		LinePrefixes: []string{"#"},
	}
	pythonStyle = Dialect{
		LinePrefixes: []string{"#"},
		Blocks: []BlockDelim{
			{Open: `"""`, Close: `"""`},
			{Open: "'''", Close: "'''"},
		},
	}
	sqlStyle = Dialect{
		LinePrefixes: []string{"--"},
		Blocks:       []BlockDelim{{Open: "/*", Close: "*/"}},
	}
	luaStyle = Dialect{
		LinePrefixes: []string{"--"},
		Blocks:       []BlockDelim{{Open: "--[[", Close: "]]"}},
	}
	xmlStyle = Dialect{
		Blocks: []BlockDelim{{Open: "<!--", Close: "-->"}},
	}
	cssStyle = Dialect{
		Blocks: []BlockDelim{{Open: "/*", Close: "*/"}},
	}
	lispStyle = Dialect{
		LinePrefixes: []string{";"},
	}
	erlangStyle = Dialect{
		LinePrefixes: []string{"%"},
	}
)

// dialects maps file extensions (with dot, lowercased) to their comment
// dialect.
var dialects = map[string]Dialect{
	".go":    cStyle,
	".rs":    cStyle,
	".c":     cStyle,
	".h":     cStyle,
	".cpp":   cStyle,
	".cc":    cStyle,
	".hpp":   cStyle,
	".java":  cStyle,
	".kt":    cStyle,
	".swift": cStyle,
	".js":    cStyle,
	".jsx":   cStyle,
	".ts":    cStyle,
	".tsx":   cStyle,
	".cs":    cStyle,
	".scala": cStyle,
	".zig":   cStyle,
	".proto": cStyle,

	".py": pythonStyle,

	".rb":   hashStyle,
	".sh":   hashStyle,
	".bash": hashStyle,
	".pl":   hashStyle,
	".yaml": hashStyle,
	".yml":  hashStyle,
	".toml": hashStyle,
	".tf":   hashStyle,
	".r":    hashStyle,
	".ex":   hashStyle,
	".exs":  hashStyle,

	".sql": sqlStyle,
	".lua": luaStyle,

	".html":  xmlStyle,
	".xml":   xmlStyle,
	".svg":   xmlStyle,
	".xhtml": xmlStyle,

	".css":  cssStyle,
	".scss": cStyle,

	".el":   lispStyle,
	".clj":  lispStyle,
	".lisp": lispStyle,
	".scm":  lispStyle,

	".erl": erlangStyle,
	".hrl": erlangStyle,
}

// DialectFor resolves a file's comment dialect from its extension. The
// second return is false when the extension is unknown.
func DialectFor(path string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(filepath.Ext(path))]
	return d, ok
}
