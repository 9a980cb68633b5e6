package sym

import (
	"strings"
	"testing"
)

func mustParseAST(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := ParseAST([]byte(input), "test.sym")
	if err != nil {
		t.Fatalf("ParseAST failed: %v", err)
	}
	return doc
}

// ============================================================
// Document structure
// ============================================================

func TestParseAST_Document(t *testing.T) {
	doc := mustParseAST(t, "@import ./base.sym\n@import ./extra.sym\n{ $x 1 }\n{ :y 2 }")

	if len(doc.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(doc.Imports))
	}
	if doc.Imports[0].Path != "./base.sym" || doc.Imports[1].Path != "./extra.sym" {
		t.Errorf("unexpected import paths: %v", doc.Imports)
	}
	if len(doc.Defs) != 1 {
		t.Fatalf("expected 1 defs block, got %d", len(doc.Defs))
	}
	if len(doc.Defs[0].Bindings) != 1 || doc.Defs[0].Bindings[0].Name != "x" {
		t.Errorf("unexpected bindings: %v", doc.Defs[0].Bindings)
	}
	if doc.Data.Kind() != NodeObject {
		t.Errorf("expected object data block, got %v", doc.Data.Kind())
	}
}

func TestParseAST_DataBlockMayBeAnyValue(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"{}", NodeObject},
		{"[]", NodeArray},
		{"[ 1\n, 2\n]", NodeArray},
		{"42", NodeLit},
		{":sym", NodeLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc := mustParseAST(t, tt.input)
			if doc.Data.Kind() != tt.kind {
				t.Errorf("expected %v, got %v", tt.kind, doc.Data.Kind())
			}
		})
	}
}

func TestParseAST_LastAllDollarBlockIsData(t *testing.T) {
	// A document of nothing but $-blocks still has a data block: the
	// final one.
	doc := mustParseAST(t, "{ $x 1 }\n{ $y 2 }")
	if len(doc.Defs) != 1 {
		t.Fatalf("expected 1 defs block, got %d", len(doc.Defs))
	}
	if doc.Data.Kind() != NodeObject {
		t.Fatalf("expected object data block")
	}
	fields := doc.Data.Fields()
	if len(fields) != 1 || !fields[0].VarDef || fields[0].Key != "y" {
		t.Errorf("unexpected data fields: %v", fields)
	}
}

func TestParseAST_NestedContainers(t *testing.T) {
	doc := mustParseAST(t, "{ :server { :host localhost\n  , :ports [ 80\n    , 443\n    ]\n  }\n}")
	fields := doc.Data.Fields()
	if len(fields) != 1 || fields[0].Key != "server" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	server := fields[0].Value
	if server.Kind() != NodeObject || len(server.Fields()) != 2 {
		t.Fatalf("expected server object with 2 fields")
	}
	ports := server.Fields()[1].Value
	if ports.Kind() != NodeArray || len(ports.Items()) != 2 {
		t.Errorf("expected ports array with 2 elements")
	}
}

// ============================================================
// Errors
// ============================================================

func TestParseAST_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    ErrorKind
		message string
	}{
		{"empty document", "   \n  ", ErrParse, "empty document"},
		{"comment-only document", "// nothing here\n", ErrParse, "empty document"},
		{"duplicate key", "{ :a 1\n, :a 2\n}", ErrParse, "duplicate key"},
		{"defs block mixes data keys", "{ :a 1 }\n{ :b 2 }", ErrParse, "mixes data key"},
		{"non-object before data", "[ 1\n]\n{}", ErrParse, "definitions block"},
		{"import after block", "{}\n@import ./x.sym\n{}", ErrParse, "@import"},
		{"unclosed object", "{ :a 1", ErrParse, "unclosed object"},
		{"unclosed array", "[ 1", ErrParse, "unclosed array"},
		{"mismatched bracket", "{ :a [ 1\n  }\n}", ErrParse, "mismatched bracket"},
		{"missing separator", "{ :a :x :y }", ErrParse, "separator"},
		{"bad field start", "{ 1 }", ErrParse, "expected ':' or '$'"},
		{"bad identifier after colon", "{ :1bad 1 }", ErrLex, "identifier"},
		{"vardef plus modifier", "{ $x+ 1 }", ErrParse, "modifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAST([]byte(tt.input), "test.sym")
			if err == nil {
				t.Fatalf("expected error, got none")
			}
			e, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("expected %s, got %s (%v)", tt.kind, e.Kind, e)
			}
			if !strings.Contains(e.Message, tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, e.Message)
			}
		})
	}
}

func TestParseAST_DuplicateKeyRelatedSpan(t *testing.T) {
	_, err := ParseAST([]byte("{ :a 1\n, :a 2\n}"), "test.sym")
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Pos.Line != 2 {
		t.Errorf("expected primary span on line 2, got %d", e.Pos.Line)
	}
	if len(e.Related) != 1 || e.Related[0].Line != 1 {
		t.Errorf("expected related span on line 1, got %v", e.Related)
	}
}

func TestParseAST_InterpolationNode(t *testing.T) {
	doc := mustParseAST(t, "{ :host db.$env.example.com }")
	v := doc.Data.Fields()[0].Value
	if v.Kind() != NodeInterp {
		t.Fatalf("expected interpolation node, got %v", v.Kind())
	}
	if len(v.segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(v.segs))
	}
	if v.segs[0].Text != "db." || v.segs[1].Var != "env" || v.segs[2].Text != ".example.com" {
		t.Errorf("unexpected segments: %+v", v.segs)
	}
}

func TestParseAST_WholeValueVarRef(t *testing.T) {
	doc := mustParseAST(t, "{ :n $x }")
	v := doc.Data.Fields()[0].Value
	if v.Kind() != NodeVarRef {
		t.Fatalf("expected var ref node, got %v", v.Kind())
	}
	if v.varName != "x" {
		t.Errorf("expected $x, got $%s", v.varName)
	}
}
