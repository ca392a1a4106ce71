package scanner

import "testing"

func mustDialect(t *testing.T, path string) Dialect {
	t.Helper()
	d, ok := DialectFor(path)
	if !ok {
		t.Fatalf("no dialect for %s", path)
	}
	return d
}

func TestExtractCommentsLine(t *testing.T) {
	content := "package main\n\n// [impl a.b] first\nvar x = 1 // trailing\n"
	spans := ExtractComments(content, mustDialect(t, "main.go"))

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Line != 3 || spans[0].Text != " [impl a.b] first" {
		t.Errorf("span 0 = %+v", spans[0])
	}
	if spans[1].Line != 4 || spans[1].Text != " trailing" {
		t.Errorf("span 1 = %+v", spans[1])
	}
}

func TestExtractCommentsBlockMultiLine(t *testing.T) {
	content := "code();\n/* first\nsecond [verify a.b]\nthird */ more();\n"
	spans := ExtractComments(content, mustDialect(t, "x.c"))

	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d: %+v", len(spans), spans)
	}
	// Each physical line of a block comment is its own span so line
	// numbers survive.
	if spans[1].Line != 3 || spans[1].Text != "second [verify a.b]" {
		t.Errorf("span 1 = %+v", spans[1])
	}
	if spans[2].Line != 4 || spans[2].Text != "third " {
		t.Errorf("span 2 = %+v", spans[2])
	}
}

func TestExtractCommentsSkipsStringLiterals(t *testing.T) {
	content := `s := "not // a comment" // real one` + "\n"
	spans := ExtractComments(content, mustDialect(t, "main.go"))

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != " real one" {
		t.Errorf("span = %+v", spans[0])
	}
}

func TestExtractCommentsEscapedQuote(t *testing.T) {
	content := `s := "a \" b" // after escape` + "\n"
	spans := ExtractComments(content, mustDialect(t, "main.go"))

	if len(spans) != 1 || spans[0].Text != " after escape" {
		t.Fatalf("got %+v", spans)
	}
}

func TestExtractCommentsHash(t *testing.T) {
	content := "# [impl a.b]\nvalue: 1 # inline\n"
	spans := ExtractComments(content, mustDialect(t, "config.yaml"))

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Text != " [impl a.b]" || spans[1].Text != " inline" {
		t.Errorf("spans = %+v", spans)
	}
}

func TestExtractCommentsPythonDocstring(t *testing.T) {
	content := "def f():\n    \"\"\"Docstring [impl a.b]\n    continues\n    \"\"\"\n    pass\n"
	spans := ExtractComments(content, mustDialect(t, "f.py"))

	found := false
	for _, s := range spans {
		if s.Line == 2 && len(ParseMarkers(s.Text, "f.py", s.Line)) == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("docstring marker not extracted, spans = %+v", spans)
	}
}

func TestExtractCommentsLuaLongestTokenWins(t *testing.T) {
	content := "--[[ block [impl a.b] ]] code\n-- line [verify a.b]\n"
	spans := ExtractComments(content, mustDialect(t, "x.lua"))

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != " block [impl a.b] " {
		t.Errorf("block span = %+v", spans[0])
	}
	if spans[1].Text != " line [verify a.b]" {
		t.Errorf("line span = %+v", spans[1])
	}
}

func TestExtractCommentsXML(t *testing.T) {
	content := "<config>\n  <!-- [impl a.b] -->\n</config>\n"
	spans := ExtractComments(content, mustDialect(t, "c.xml"))

	if len(spans) != 1 || spans[0].Line != 2 {
		t.Fatalf("got %+v", spans)
	}
}

func TestDialectFor(t *testing.T) {
	known := []string{"a.go", "b.rs", "c.py", "d.sql", "sub/dir/e.ts", "F.GO", "g.lua", "h.html", "i.sh"}
	for _, path := range known {
		if _, ok := DialectFor(path); !ok {
			t.Errorf("expected a dialect for %s", path)
		}
	}

	unknown := []string{"binary.png", "noext", "archive.tar.gz"}
	for _, path := range unknown {
		if _, ok := DialectFor(path); ok {
			t.Errorf("expected no dialect for %s", path)
		}
	}
}
