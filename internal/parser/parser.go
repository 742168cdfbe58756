// Package parser implements the syntax analysis for Lox.
// It uses Pratt parsing for expressions and recursive descent for statements.
package parser

import (
	"fmt"
	"strconv"

	"golox/internal/ast"
	"golox/internal/diag"
	"golox/internal/span"
	"golox/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpAssign     = 5  // = (right-associative)
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * /
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.ASSIGN:
		return bpAssign
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	case token.LPAREN, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	nextID int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// NewAt creates a parser whose node IDs start above idBase. The REPL uses
// this to keep IDs unique across inputs so resolved depths from earlier
// inputs stay valid.
func NewAt(tokens []token.Token, idBase int) *Parser {
	return &Parser{tokens: tokens, pos: 0, nextID: idBase}
}

// LastID returns the highest node ID assigned so far.
func (p *Parser) LastID() int {
	return p.nextID
}

// ParseProgram parses the entire token stream and returns the top-level
// statements and diagnostics. A program with any diagnostic must not be
// resolved or evaluated.
func (p *Parser) ParseProgram() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(diag.Parse, code, s, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary so one syntax
// error does not hide later ones.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.check(token.RBRACE) {
			return
		}
		if p.match(token.KW_CLASS, token.KW_FUN, token.KW_VAR, token.KW_FOR, token.KW_IF,
			token.KW_WHILE, token.KW_PRINT, token.KW_RETURN, token.KW_BREAK, token.KW_CONTINUE) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declaration parsing
// ============================================================

func (p *Parser) parseDeclaration() ast.Stmt {
	switch p.peekKind() {
	case token.KW_VAR:
		return p.parseVarDecl()
	case token.KW_FUN:
		return p.parseFuncDecl()
	case token.KW_CLASS:
		return p.parseClassDecl()
	default:
		return p.parseStmt()
	}
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() *ast.VarDeclStmt {
	start := p.advance() // consume 'var'
	stmt := &ast.VarDeclStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return stmt
	}
	stmt.Name = nameTok.Lexeme

	if p.check(token.ASSIGN) {
		p.advance()
		stmt.Init = p.parseExprChecked()
	}

	p.expect(token.SEMICOLON)
	stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseFuncDecl parses: fun IDENT ( params ) block
func (p *Parser) parseFuncDecl() *ast.FuncDeclStmt {
	start := p.advance() // consume 'fun'
	decl := &ast.FuncDeclStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return decl
	}
	decl.Name = nameTok.Lexeme

	decl.Params = p.parseParamList()
	decl.Body = p.parseBlock()
	decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// parseClassDecl parses: class IDENT [ < IDENT ] { methods }
func (p *Parser) parseClassDecl() *ast.ClassDeclStmt {
	start := p.advance() // consume 'class'
	decl := &ast.ClassDeclStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return decl
	}
	decl.Name = nameTok.Lexeme

	if p.check(token.LT) {
		p.advance()
		superTok, ok := p.expect(token.IDENT)
		if ok {
			super := &ast.IdentExpr{Name: superTok.Lexeme}
			super.ExprBase = p.makeExprBase(superTok.Span.Start, superTok.Span.End)
			decl.Super = super
		}
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return decl
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if p.check(token.IDENT) {
			decl.Methods = append(decl.Methods, p.parseMethodDecl())
		} else {
			tok := p.advance() // consume so the method loop makes progress
			p.error("E2003", tok.Span, fmt.Sprintf("expected method name, got '%s'", tok.Lexeme))
			p.synchronize()
		}
	}

	p.expect(token.RBRACE)
	decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// parseMethodDecl parses a method inside a class body: IDENT ( params ) block.
// Methods have no 'fun' keyword.
func (p *Parser) parseMethodDecl() *ast.FuncDeclStmt {
	start := p.advance() // consume method name (IDENT)
	decl := &ast.FuncDeclStmt{Name: start.Lexeme}
	decl.Params = p.parseParamList()
	decl.Body = p.parseBlock()
	decl.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// parseParamList parses: ( ident, ident, ... )
func (p *Parser) parseParamList() []string {
	var params []string

	if _, ok := p.expect(token.LPAREN); !ok {
		return params
	}

	if !p.check(token.RPAREN) {
		nameTok, ok := p.expect(token.IDENT)
		if ok {
			params = append(params, nameTok.Lexeme)
		}
		for p.check(token.COMMA) {
			p.advance() // consume ','
			nameTok, ok = p.expect(token.IDENT)
			if ok {
				params = append(params, nameTok.Lexeme)
			}
		}
	}

	p.expect(token.RPAREN)
	return params
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_BREAK:
		start := p.advance()
		p.expect(token.SEMICOLON)
		return &ast.BreakStmt{StmtBase: p.makeStmtBase(start.Span.Start, p.prevEnd())}
	case token.KW_CONTINUE:
		start := p.advance()
		p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{StmtBase: p.makeStmtBase(start.Span.Start, p.prevEnd())}
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	expr := p.parseExprChecked()
	p.expect(token.SEMICOLON)
	return &ast.PrintStmt{
		StmtBase: p.makeStmtBase(start.Span.Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return stmt
	}
	stmt.Condition = p.parseExprChecked()
	p.expect(token.RPAREN)

	stmt.Then = p.parseStmt()
	if p.check(token.KW_ELSE) {
		p.advance()
		stmt.Else = p.parseStmt()
	}

	stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return stmt
	}
	stmt.Condition = p.parseExprChecked()
	p.expect(token.RPAREN)
	stmt.Body = p.parseStmt()
	stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) stmt
// and desugars it to a while loop, with init in an enclosing block and the
// increment in the while's Incr slot.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return &ast.ExprStmt{StmtBase: p.makeStmtBase(start.Span.Start, p.prevEnd())}
	}

	// Init (optional): var declaration or expression statement
	var init ast.Stmt
	if p.check(token.SEMICOLON) {
		p.advance()
	} else if p.check(token.KW_VAR) {
		init = p.parseVarDecl()
	} else {
		initStart := p.peek().Span.Start
		expr := p.parseExprChecked()
		p.expect(token.SEMICOLON)
		init = &ast.ExprStmt{
			StmtBase: p.makeStmtBase(initStart, p.prevEnd()),
			Expr:     expr,
		}
	}

	// Condition (optional); absent means loop forever
	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExprChecked()
	}
	p.expect(token.SEMICOLON)

	// Increment (optional)
	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExprChecked()
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()

	if cond == nil {
		lit := &ast.BoolLiteral{Value: true}
		lit.ExprBase = p.makeExprBase(start.Span.Start, start.Span.End)
		cond = lit
	}

	loop := &ast.WhileStmt{
		StmtBase:  p.makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
		Incr:      incr,
	}

	if init == nil {
		return loop
	}
	return &ast.BlockStmt{
		StmtBase: p.makeStmtBase(start.Span.Start, p.prevEnd()),
		Stmts:    []ast.Stmt{init, loop},
	}
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExprChecked()
	}
	p.expect(token.SEMICOLON)

	stmt.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseBlock parses: { declarations }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		block.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
		return block
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	p.expect(token.RBRACE)
	block.StmtBase = p.makeStmtBase(start.Span.Start, p.prevEnd())
	return block
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		tok := p.advance() // consume the offending token so parsing makes progress
		p.error("E2001", tok.Span, fmt.Sprintf("unexpected token: '%s'", tok.Lexeme))
		p.synchronize()
		return &ast.ExprStmt{StmtBase: p.makeStmtBase(tok.Span.Start, tok.Span.End)}
	}

	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{
		StmtBase: p.makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExprChecked parses an expression and reports an error at the current
// token when none could be parsed.
func (p *Parser) parseExprChecked() ast.Expr {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		tok := p.peek()
		p.error("E2001", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		p.synchronize()
	}
	return expr
}

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Lexeme, 64)
		lit := &ast.NumberLiteral{Value: val}
		lit.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return lit

	case token.STRING:
		p.advance()
		lit := &ast.StringLiteral{Value: tok.Lexeme}
		lit.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return lit

	case token.KW_TRUE:
		p.advance()
		lit := &ast.BoolLiteral{Value: true}
		lit.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return lit

	case token.KW_FALSE:
		p.advance()
		lit := &ast.BoolLiteral{Value: false}
		lit.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return lit

	case token.KW_NIL:
		p.advance()
		lit := &ast.NilLiteral{}
		lit.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return lit

	case token.KW_THIS:
		p.advance()
		expr := &ast.ThisExpr{}
		expr.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return expr

	case token.KW_SUPER:
		p.advance()
		p.expect(token.DOT)
		methodTok, _ := p.expect(token.IDENT)
		expr := &ast.SuperExpr{Method: methodTok.Lexeme}
		expr.ExprBase = p.makeExprBase(tok.Span.Start, methodTok.Span.End)
		return expr

	case token.IDENT:
		p.advance()
		expr := &ast.IdentExpr{Name: tok.Lexeme}
		expr.ExprBase = p.makeExprBase(tok.Span.Start, tok.Span.End)
		return expr

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.parseExprChecked()
		end, _ := p.expect(token.RPAREN)
		expr := &ast.GroupingExpr{Inner: inner}
		expr.ExprBase = p.makeExprBase(tok.Span.Start, end.Span.End)
		return expr

	case token.BANG, token.MINUS:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			p.error("E2001", p.peek().Span, fmt.Sprintf("expected expression after '%s'", tok.Kind))
			return nil
		}
		expr := &ast.UnaryExpr{Op: tok.Kind, Operand: operand}
		expr.ExprBase = p.makeExprBase(tok.Span.Start, operand.GetSpan().End)
		return expr

	default:
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.ASSIGN:
		return p.parseAssign(left)

	case token.KW_AND, token.KW_OR:
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			p.error("E2001", p.peek().Span, fmt.Sprintf("expected expression after '%s'", tok.Kind))
			return nil
		}
		expr := &ast.LogicalExpr{Op: tok.Kind, Left: left, Right: right}
		expr.ExprBase = p.makeExprBase(left.GetSpan().Start, right.GetSpan().End)
		return expr

	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			p.error("E2001", p.peek().Span, fmt.Sprintf("expected expression after '%s'", tok.Kind))
			return nil
		}
		expr := &ast.BinaryExpr{Op: tok.Kind, Left: left, Right: right}
		expr.ExprBase = p.makeExprBase(left.GetSpan().Start, right.GetSpan().End)
		return expr

	case token.LPAREN:
		return p.parseCallExpr(left)

	case token.DOT:
		p.advance() // consume '.'
		propTok, _ := p.expect(token.IDENT)
		expr := &ast.GetExpr{Object: left, Property: propTok.Lexeme}
		expr.ExprBase = p.makeExprBase(left.GetSpan().Start, propTok.Span.End)
		return expr

	default:
		return left
	}
}

// parseAssign parses the right-associative assignment following an already
// parsed left-hand side. Only variable references and property accesses are
// valid targets.
func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	eqTok := p.advance() // consume '='
	value := p.parseExpr(bpAssign - 1)
	if value == nil {
		p.error("E2001", p.peek().Span, "expected expression after '='")
		return nil
	}

	switch target := left.(type) {
	case *ast.IdentExpr:
		expr := &ast.AssignExpr{Name: target.Name, Value: value}
		expr.ExprBase = p.makeExprBase(left.GetSpan().Start, value.GetSpan().End)
		return expr
	case *ast.GetExpr:
		expr := &ast.SetExpr{Object: target.Object, Property: target.Property, Value: value}
		expr.ExprBase = p.makeExprBase(left.GetSpan().Start, value.GetSpan().End)
		return expr
	default:
		p.error("E2002", eqTok.Span, "invalid assignment target")
		return value
	}
}

// parseCallExpr parses: callee ( args )
func (p *Parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	p.advance() // consume '('
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		args = append(args, p.parseExprChecked())
		for p.check(token.COMMA) {
			p.advance() // consume ','
			args = append(args, p.parseExprChecked())
		}
	}
	end, _ := p.expect(token.RPAREN)

	expr := &ast.CallExpr{Callee: callee, Args: args}
	expr.ExprBase = p.makeExprBase(callee.GetSpan().Start, end.Span.End)
	return expr
}

// ============================================================
// Span and ID helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) newID() int {
	p.nextID++
	return p.nextID
}

func (p *Parser) makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}, ID: p.newID()}}
}

func (p *Parser) makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}, ID: p.newID()}}
}
