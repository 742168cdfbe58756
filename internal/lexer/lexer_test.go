package lexer

import (
	"testing"

	"golox/internal/token"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) {
	t.Helper()
	l := New(source, "test.lox")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `var x = 1 + 2;`, []token.Kind{
		token.KW_VAR, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	source := `and class else false fun for if nil or print return super this true var while break continue`
	expectKinds(t, source, []token.Kind{
		token.KW_AND, token.KW_CLASS, token.KW_ELSE, token.KW_FALSE,
		token.KW_FUN, token.KW_FOR, token.KW_IF, token.KW_NIL,
		token.KW_OR, token.KW_PRINT, token.KW_RETURN, token.KW_SUPER,
		token.KW_THIS, token.KW_TRUE, token.KW_VAR, token.KW_WHILE,
		token.KW_BREAK, token.KW_CONTINUE, token.EOF,
	})
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	// Maximal munch: "orchid" and "classes" are identifiers, not keywords.
	expectKinds(t, `orchid classes fund`, []token.Kind{
		token.IDENT, token.IDENT, token.IDENT, token.EOF,
	})
}

func TestTokenizeOperators(t *testing.T) {
	expectKinds(t, `! != = == < <= > >= + - * / . , ;`, []token.Kind{
		token.BANG, token.NEQ, token.ASSIGN, token.EQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.DOT, token.COMMA, token.SEMICOLON, token.EOF,
	})
}

func TestNumberLexemes(t *testing.T) {
	l := New(`12 3.5 0.25`, "test.lox")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []string{"12", "3.5", "0.25"}
	for i, w := range want {
		if tokens[i].Kind != token.NUMBER || tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected NUMBER %q, got %s %q", i, w, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestNumberFollowedByDotIdent(t *testing.T) {
	// "123.abs" must not swallow the dot into the number.
	expectKinds(t, `123.abs`, []token.Kind{
		token.NUMBER, token.DOT, token.IDENT, token.EOF,
	})
}

func TestStringLiteral(t *testing.T) {
	l := New(`"hello world"`, "test.lox")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tokens[0].Kind != token.STRING || tokens[0].Lexeme != "hello world" {
		t.Errorf("expected STRING %q, got %s %q", "hello world", tokens[0].Kind, tokens[0].Lexeme)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\"d\\e"`, "test.lox")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tokens[0].Lexeme != "a\nb\tc\"d\\e" {
		t.Errorf("escape processing wrong, got %q", tokens[0].Lexeme)
	}
}

func TestMultilineString(t *testing.T) {
	l := New("\"line one\nline two\"", "test.lox")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tokens[0].Lexeme != "line one\nline two" {
		t.Errorf("expected multi-line string preserved, got %q", tokens[0].Lexeme)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"no closing quote`, "test.lox")
	_, diags := l.Tokenize()
	if len(diags) != 1 || diags[0].Code != "E1001" {
		t.Fatalf("expected E1001, got %v", diags)
	}
}

func TestComments(t *testing.T) {
	source := `
// a line comment
var x = 1; // trailing
/* block
   comment */ var y = 2;
`
	expectKinds(t, source, []token.Kind{
		token.KW_VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.KW_VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.EOF,
	})
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New(`var x = 1; /* never closed`, "test.lox")
	_, diags := l.Tokenize()
	if len(diags) != 1 || diags[0].Code != "E1002" {
		t.Fatalf("expected E1002, got %v", diags)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New(`var x = 1 @ 2;`, "test.lox")
	tokens, diags := l.Tokenize()
	if len(diags) != 1 || diags[0].Code != "E1003" {
		t.Fatalf("expected E1003, got %v", diags)
	}
	// Scanning continues past the bad character.
	last := tokens[len(tokens)-1]
	if last.Kind != token.EOF {
		t.Errorf("expected EOF as final token, got %s", last.Kind)
	}
	found := false
	for _, tok := range tokens {
		if tok.Kind == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Error("expected an ILLEGAL token for the bad character")
	}
}

func TestSpanPositions(t *testing.T) {
	l := New("var x;\nvar y;", "test.lox")
	tokens, _ := l.Tokenize()
	// Second 'var' starts at line 2, column 1.
	if tokens[3].Span.Start.Line != 2 || tokens[3].Span.Start.Column != 1 {
		t.Errorf("expected 2:1, got %d:%d", tokens[3].Span.Start.Line, tokens[3].Span.Start.Column)
	}
}
