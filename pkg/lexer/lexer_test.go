package lexer

import (
	"testing"

	"github.com/go-wacc/wacc/pkg/arena"
	"github.com/go-wacc/wacc/pkg/diag"
	"github.com/go-wacc/wacc/pkg/token"
)

func collectKinds(t *testing.T, src string) ([]token.Kind, *diag.Collector) {
	t.Helper()
	diags := diag.New(arena.New())
	lx := New("test.c", src, diags)
	var kinds []token.Kind
	for {
		tok := lx.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds, diags
		}
	}
}

func TestLexerKeywordsAndPunctuation(t *testing.T) {
	kinds, diags := collectKinds(t, "int main() { return 0; }")
	want := []token.Kind{
		token.KwInt, token.Ident, token.LParen, token.RParen, token.LBrace,
		token.KwReturn, token.IntLiteral, token.Semicolon, token.RBrace, token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %v want %v", i, kinds[i], k)
		}
	}
	if diags.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", diags.Errors())
	}
}

func TestLexerMultiCharOperators(t *testing.T) {
	kinds, _ := collectKinds(t, "== != <= >= && ||")
	want := []token.Kind{token.Eq, token.Ne, token.Le, token.Ge, token.AndAnd, token.OrOr, token.EOF}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %v want %v", i, kinds[i], k)
		}
	}
}

func TestLexerLoneAmpersandIsError(t *testing.T) {
	kinds, diags := collectKinds(t, "a & b")
	if kinds[1] != token.LexError {
		t.Fatalf("expected lex-error token for lone '&', got %v", kinds[1])
	}
	if !diags.HasFatal() {
		t.Fatal("expected fatal diagnostic for lone '&'")
	}
	found := false
	for _, e := range diags.Errors() {
		if e.ID == diag.ErrInvalidCharacter {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error %d, got %v", diag.ErrInvalidCharacter, diags.Errors())
	}
}

func TestLexerLineComment(t *testing.T) {
	kinds, _ := collectKinds(t, "1 // comment\n2")
	want := []token.Kind{token.IntLiteral, token.IntLiteral, token.EOF}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %v want %v", i, kinds[i], k)
		}
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	diags := diag.New(arena.New())
	lx := New("test.c", "", diags)
	first := lx.Next()
	second := lx.Next()
	if first.Kind != token.EOF || second.Kind != token.EOF {
		t.Fatalf("expected repeated EOF, got %v then %v", first.Kind, second.Kind)
	}
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	diags := diag.New(arena.New())
	lx := New("test.c", "int\nx", diags)
	first := lx.Next()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("got %+v, want line 1 col 1", first.Pos)
	}
	second := lx.Next()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("got %+v, want line 2 col 1", second.Pos)
	}
}
