// Package lexer implements the lazy, single-pass lexer described in spec
// §4.3: it turns a source buffer into a stream of pkg/token.Token values,
// one Next() call at a time, tracking line/column as it goes.
package lexer

import (
	"github.com/go-wacc/wacc/pkg/diag"
	"github.com/go-wacc/wacc/pkg/token"
)

// Lexer scans one source buffer. It holds no lookahead of its own; callers
// (the parser) keep at most one token of lookahead.
type Lexer struct {
	filename string
	src      string
	pos      int // byte offset of the next unread rune
	line     int
	col      int
	diags    *diag.Collector
}

// New creates a Lexer over src, reporting lexical errors to diags.
func New(filename, src string, diags *diag.Collector) *Lexer {
	return &Lexer{
		filename: filename,
		src:      src,
		pos:      0,
		line:     1,
		col:      1,
		diags:    diags,
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) pos2() diag.Position {
	return diag.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// skipTrivia consumes whitespace and line comments until the next
// meaningful byte, updating line/column as it goes.
func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		c := l.peek()
		if isSpace(c) {
			l.advance()
			continue
		}
		if c == '/' && l.peekAt(1) == '/' {
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

// Next returns the next token and advances the cursor. At end of buffer it
// returns an EOF token of length 0 at the current position, forever.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()

	start := l.pos
	startPos := l.pos2()

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Text: "", Pos: startPos}
	}

	c := l.peek()

	if isIdentStart(c) {
		for !l.atEnd() && isIdentCont(l.peek()) {
			l.advance()
		}
		text := l.src[start:l.pos]
		return token.Token{Kind: token.Lookup(text), Text: text, Pos: startPos}
	}

	if isDigit(c) {
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
		text := l.src[start:l.pos]
		return token.Token{Kind: token.IntLiteral, Text: text, Pos: startPos}
	}

	// Multi-character punctuators recognized via one-byte lookahead.
	two := func(second byte, kind token.Kind, single token.Kind) token.Token {
		l.advance()
		if l.peek() == second {
			l.advance()
			return token.Token{Kind: kind, Text: l.src[start:l.pos], Pos: startPos}
		}
		return token.Token{Kind: single, Text: l.src[start:l.pos], Pos: startPos}
	}

	switch c {
	case '(':
		l.advance()
		return token.Token{Kind: token.LParen, Text: l.src[start:l.pos], Pos: startPos}
	case ')':
		l.advance()
		return token.Token{Kind: token.RParen, Text: l.src[start:l.pos], Pos: startPos}
	case '{':
		l.advance()
		return token.Token{Kind: token.LBrace, Text: l.src[start:l.pos], Pos: startPos}
	case '}':
		l.advance()
		return token.Token{Kind: token.RBrace, Text: l.src[start:l.pos], Pos: startPos}
	case ';':
		l.advance()
		return token.Token{Kind: token.Semicolon, Text: l.src[start:l.pos], Pos: startPos}
	case '?':
		l.advance()
		return token.Token{Kind: token.Question, Text: l.src[start:l.pos], Pos: startPos}
	case ':':
		l.advance()
		return token.Token{Kind: token.Colon, Text: l.src[start:l.pos], Pos: startPos}
	case '~':
		l.advance()
		return token.Token{Kind: token.Tilde, Text: l.src[start:l.pos], Pos: startPos}
	case '+':
		l.advance()
		return token.Token{Kind: token.Plus, Text: l.src[start:l.pos], Pos: startPos}
	case '-':
		l.advance()
		return token.Token{Kind: token.Minus, Text: l.src[start:l.pos], Pos: startPos}
	case '*':
		l.advance()
		return token.Token{Kind: token.Star, Text: l.src[start:l.pos], Pos: startPos}
	case '/':
		l.advance()
		return token.Token{Kind: token.Slash, Text: l.src[start:l.pos], Pos: startPos}
	case '%':
		l.advance()
		return token.Token{Kind: token.Percent, Text: l.src[start:l.pos], Pos: startPos}
	case '!':
		return two('=', token.Ne, token.Bang)
	case '=':
		return two('=', token.Eq, token.Assign)
	case '<':
		return two('=', token.Le, token.Lt)
	case '>':
		return two('=', token.Ge, token.Gt)
	case '&':
		if l.peekAt(1) == '&' {
			l.advance()
			l.advance()
			return token.Token{Kind: token.AndAnd, Text: l.src[start:l.pos], Pos: startPos}
		}
		l.advance()
		l.diags.Add(diag.ErrInvalidCharacter, diag.LevelLexical, startPos, "use '&&' for logical AND", "lone '&' is not a valid operator in this language")
		return token.Token{Kind: token.LexError, Text: l.src[start:l.pos], Pos: startPos}
	case '|':
		if l.peekAt(1) == '|' {
			l.advance()
			l.advance()
			return token.Token{Kind: token.OrOr, Text: l.src[start:l.pos], Pos: startPos}
		}
		l.advance()
		l.diags.Add(diag.ErrInvalidCharacter, diag.LevelLexical, startPos, "use '||' for logical OR", "lone '|' is not a valid operator in this language")
		return token.Token{Kind: token.LexError, Text: l.src[start:l.pos], Pos: startPos}
	default:
		l.advance()
		l.diags.Add(diag.ErrInvalidCharacter, diag.LevelLexical, startPos, "", "invalid character %q", c)
		return token.Token{Kind: token.LexError, Text: l.src[start:l.pos], Pos: startPos}
	}
}
