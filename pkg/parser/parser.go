// Package parser implements the recursive-descent parser from spec §4.4,
// producing a pkg/ast tree with panic-mode error recovery.
package parser

import (
	"strconv"

	"github.com/go-wacc/wacc/pkg/ast"
	"github.com/go-wacc/wacc/pkg/diag"
	"github.com/go-wacc/wacc/pkg/lexer"
	"github.com/go-wacc/wacc/pkg/token"
)

// Parser holds one token of lookahead over a lexer's stream.
type Parser struct {
	lex   *lexer.Lexer
	cur   token.Token
	diags *diag.Collector
}

// New creates a Parser over src, reporting syntax errors to diags.
func New(filename, src string, diags *diag.Collector) *Parser {
	lx := lexer.New(filename, src, diags)
	p := &Parser{lex: lx, diags: diags}
	p.cur = p.lex.Next()
	return p
}

func (p *Parser) advance() token.Token {
	t := p.cur
	p.cur = p.lex.Next()
	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur.Kind == k
}

// expect consumes the current token if it matches k, else reports id and
// returns the zero Token (callers proceed with a best-effort partial tree;
// the fatal flag stops downstream phases).
func (p *Parser) expect(k token.Kind, id int, suggestion string) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.diags.Add(id, diag.LevelSyntax, p.cur.Pos, suggestion,
		"expected %s but found %s", k, describe(p.cur))
	return token.Token{}
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	return t.Kind.String()
}

// synchronize implements panic-mode recovery: skip tokens until reaching a
// synchronizing token (`;`, `{`, `}`, or EOF), consuming the sync token
// itself when it is `;` so statement parsing can resume cleanly after it.
func (p *Parser) synchronize() {
	for {
		switch p.cur.Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace, token.RBrace, token.EOF:
			return
		default:
			p.advance()
		}
	}
}

// ParseProgram parses the whole source buffer into a *ast.Program.
func (p *Parser) ParseProgram() *ast.Program {
	startPos := p.cur.Pos
	fn := p.parseFunction()
	return &ast.Program{Function: fn, StartPos: startPos}
}

func (p *Parser) parseFunction() *ast.Function {
	startPos := p.cur.Pos
	p.expect(token.KwInt, diag.ErrExpectedFunction, "a function must start with 'int'")

	name := ""
	if p.at(token.Ident) {
		name = p.advance().Text
	} else {
		p.diags.Add(diag.ErrExpectedFunction, diag.LevelSyntax, p.cur.Pos, "expected a function name", "expected identifier but found %s", describe(p.cur))
	}

	p.expect(token.LParen, diag.ErrMissingParen, "add '(' after the function name")
	p.expect(token.RParen, diag.ErrMissingParen, "this subset takes no parameters; add ')'")
	p.expect(token.LBrace, diag.ErrMissingBrace, "add '{' to start the function body")

	var body []ast.Statement
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.cur.Pos.Offset
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		// Forward-progress guard: a recovery path that somehow failed to
		// advance the cursor must not loop forever.
		if p.cur.Pos.Offset == before && !p.at(token.RBrace) && !p.at(token.EOF) {
			p.advance()
		}
	}
	p.expect(token.RBrace, diag.ErrMissingBrace, "add '}' to close the function body")

	return &ast.Function{Name: name, Body: body, StartPos: startPos}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.KwInt:
		return p.parseDeclaration()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.LBrace:
		return p.parseCompound()
	case token.KwBreak:
		pos := p.advance().Pos
		p.expect(token.Semicolon, diag.ErrMissingSemicolon, "add ';' after 'break'")
		return &ast.BreakStmt{StartPos: pos}
	case token.KwContinue:
		pos := p.advance().Pos
		p.expect(token.Semicolon, diag.ErrMissingSemicolon, "add ';' after 'continue'")
		return &ast.ContinueStmt{StartPos: pos}
	case token.Semicolon:
		// Empty statement; consume and produce nothing.
		p.advance()
		return nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseDeclaration() ast.Statement {
	startPos := p.advance().Pos // consume 'int'

	name := ""
	if p.at(token.Ident) {
		name = p.advance().Text
	} else {
		p.diags.Add(diag.ErrExpectedToken, diag.LevelSyntax, p.cur.Pos, "", "expected a variable name but found %s", describe(p.cur))
		p.synchronize()
		return nil
	}

	var init ast.Expression
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpression()
	}

	if !p.expectSemiOrSync() {
		return nil
	}
	return &ast.VarDecl{Name: name, Init: init, StartPos: startPos}
}

func (p *Parser) parseReturn() ast.Statement {
	startPos := p.advance().Pos // consume 'return'
	value := p.parseExpression()
	if !p.expectSemiOrSync() {
		return nil
	}
	return &ast.ReturnStmt{Value: value, StartPos: startPos}
}

// expectSemiOrSync consumes a trailing ';', reporting 2003 and entering
// panic-mode recovery if absent. Returns false if recovery was invoked, so
// callers can drop the partially-built statement.
func (p *Parser) expectSemiOrSync() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	p.diags.Add(diag.ErrMissingSemicolon, diag.LevelSyntax, p.cur.Pos, "add a semicolon", "missing ';'")
	p.synchronize()
	return false
}

func (p *Parser) parseIf() ast.Statement {
	startPos := p.advance().Pos // consume 'if'
	p.expect(token.LParen, diag.ErrMissingParen, "add '(' after 'if'")
	cond := p.parseExpression()
	p.expect(token.RParen, diag.ErrMissingParen, "add ')' to close the condition")

	// Whether then/elseStmt is a bare VarDecl is a well-formedness rule
	// (3009), not a grammar rule, so it's left to pkg/semantic.
	then := p.parseStatement()

	var elseStmt ast.Statement
	if p.at(token.KwElse) {
		p.advance()
		elseStmt = p.parseStatement()
	}

	return &ast.IfStmt{Cond: cond, Then: then, Else: elseStmt, StartPos: startPos}
}

func (p *Parser) parseWhile() ast.Statement {
	startPos := p.advance().Pos // consume 'while'
	p.expect(token.LParen, diag.ErrMissingParen, "add '(' after 'while'")
	cond := p.parseExpression()
	p.expect(token.RParen, diag.ErrMissingParen, "add ')' to close the condition")
	body := p.parseStatement()
	return &ast.WhileStmt{Cond: cond, Body: body, StartPos: startPos}
}

func (p *Parser) parseCompound() ast.Statement {
	startPos := p.advance().Pos // consume '{'
	var stmts []ast.Statement
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.cur.Pos.Offset
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.cur.Pos.Offset == before && !p.at(token.RBrace) && !p.at(token.EOF) {
			p.advance()
		}
	}
	p.expect(token.RBrace, diag.ErrMissingBrace, "add '}' to close the block")
	return &ast.Compound{Stmts: stmts, StartPos: startPos}
}

func (p *Parser) parseExprStmt() ast.Statement {
	startPos := p.cur.Pos
	if p.at(token.RBrace) || p.at(token.EOF) {
		p.diags.Add(diag.ErrExpectedStatement, diag.LevelSyntax, p.cur.Pos, "", "expected a statement but found %s", describe(p.cur))
		return nil
	}
	expr := p.parseExpression()
	if !p.expectSemiOrSync() {
		return nil
	}
	return &ast.ExprStmt{X: expr, StartPos: startPos}
}

// --- expression grammar, precedence climbing one level per production ---

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseTernary()
	if p.at(token.Assign) {
		pos := p.advance().Pos
		value := p.parseAssignment() // right-associative
		ref, ok := left.(*ast.VarRef)
		if !ok {
			p.diags.Add(diag.ErrInvalidAssignTarget, diag.LevelSemantic, pos, "assignment targets must be a plain variable name",
				"invalid assignment target")
			return value
		}
		return &ast.Assignment{Name: ref.Name, Value: value, StartPos: ref.StartPos}
	}
	return left
}

func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseLogicalOr()
	if p.at(token.Question) {
		pos := p.advance().Pos
		then := p.parseExpression()
		p.expect(token.Colon, diag.ErrMissingOperator, "add ':' to complete the ternary")
		elseExpr := p.parseTernary() // right-associative
		return &ast.Ternary{Cond: cond, Then: then, Else: elseExpr, StartPos: pos}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expression {
	left := p.parseLogicalAnd()
	for p.at(token.OrOr) {
		pos := p.advance().Pos
		right := p.parseLogicalAnd()
		left = &ast.BinaryOp{Op: token.OrOr, Left: left, Right: right, StartPos: pos}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	left := p.parseEquality()
	for p.at(token.AndAnd) {
		pos := p.advance().Pos
		right := p.parseEquality()
		left = &ast.BinaryOp{Op: token.AndAnd, Left: left, Right: right, StartPos: pos}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for p.at(token.Eq) || p.at(token.Ne) {
		op := p.advance()
		right := p.parseRelational()
		left = &ast.BinaryOp{Op: op.Kind, Left: left, Right: right, StartPos: op.Pos}
	}
	return left
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for p.at(token.Lt) || p.at(token.Gt) || p.at(token.Le) || p.at(token.Ge) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryOp{Op: op.Kind, Left: left, Right: right, StartPos: op.Pos}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Op: op.Kind, Left: left, Right: right, StartPos: op.Pos}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOp{Op: op.Kind, Left: left, Right: right, StartPos: op.Pos}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.at(token.Bang) || p.at(token.Tilde) || p.at(token.Minus) {
		op := p.advance()
		operand := p.parseUnary() // right-associative
		return &ast.UnaryOp{Op: op.Kind, Operand: operand, StartPos: op.Pos}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Kind {
	case token.IntLiteral:
		t := p.advance()
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			p.diags.Add(diag.ErrNumberTooLarge, diag.LevelLexical, t.Pos, "", "integer literal %q is too large", t.Text)
			v = 0
		}
		return &ast.IntLiteral{Value: v, StartPos: t.Pos}
	case token.Ident:
		t := p.advance()
		return &ast.VarRef{Name: t.Text, StartPos: t.Pos}
	case token.LParen:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RParen, diag.ErrMissingParen, "add ')' to close the expression")
		return expr
	default:
		p.diags.Add(diag.ErrExpectedExpression, diag.LevelSyntax, p.cur.Pos, "", "expected an expression but found %s", describe(p.cur))
		return &ast.IntLiteral{Value: 0, StartPos: p.cur.Pos}
	}
}
