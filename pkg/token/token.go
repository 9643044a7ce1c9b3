// Package token defines the lexical tokens produced by pkg/lexer, spec §3.
package token

import "github.com/go-wacc/wacc/pkg/diag"

// Kind tags a Token with its lexical category.
type Kind int

const (
	// Special
	EOF Kind = iota
	LexError

	// Literals and identifiers
	Ident
	IntLiteral

	// Keywords
	KwInt
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwDo
	KwBreak
	KwContinue

	// Punctuators
	LParen
	RParen
	LBrace
	RBrace
	Semicolon
	Question
	Colon

	// Operators
	Bang
	Tilde
	Minus
	Plus
	Star
	Slash
	Percent
	Assign
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
	AndAnd
	OrOr
)

var keywords = map[string]Kind{
	"int":      KwInt,
	"return":   KwReturn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"break":    KwBreak,
	"continue": KwContinue,
}

// Lookup classifies an identifier-shaped lexeme as a keyword or plain
// identifier.
func Lookup(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Ident
}

// Token is a lazily-produced lexical unit: a tagged kind, a non-owning view
// into the source buffer, and its source location.
type Token struct {
	Kind  Kind
	Text  string // slice of the original source buffer, not copied
	Pos   diag.Position
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case LexError:
		return "<lex-error>"
	case Ident:
		return "identifier"
	case IntLiteral:
		return "integer literal"
	case KwInt:
		return "'int'"
	case KwReturn:
		return "'return'"
	case KwIf:
		return "'if'"
	case KwElse:
		return "'else'"
	case KwWhile:
		return "'while'"
	case KwDo:
		return "'do'"
	case KwBreak:
		return "'break'"
	case KwContinue:
		return "'continue'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Semicolon:
		return "';'"
	case Question:
		return "'?'"
	case Colon:
		return "':'"
	case Bang:
		return "'!'"
	case Tilde:
		return "'~'"
	case Minus:
		return "'-'"
	case Plus:
		return "'+'"
	case Star:
		return "'*'"
	case Slash:
		return "'/'"
	case Percent:
		return "'%'"
	case Assign:
		return "'='"
	case Eq:
		return "'=='"
	case Ne:
		return "'!='"
	case Lt:
		return "'<'"
	case Gt:
		return "'>'"
	case Le:
		return "'<='"
	case Ge:
		return "'>='"
	case AndAnd:
		return "'&&'"
	case OrOr:
		return "'||'"
	default:
		return "<unknown>"
	}
}
