// Package parser builds ast.Expr trees out of the internal/token stream
// internal/lexer produces (spec.md §2's Julia-subset grammar). Grounded
// structurally on the teacher's Pratt-style expression parser
// (expressions_*.go's prefix/infix parse-function-table dispatch and
// precedence climbing) but regrammared for Julia's operator set and
// statement forms (if/while/return/tuple/indexing/broadcast-call), and
// collapsed from the teacher's many-file-per-construct layout into one
// package since this subset's grammar is far smaller than Funxy's.
//
// Every parse function returns a value.Value rather than a separate
// Statement/Expression interface: Julia source IS Expr-tree data
// (spec.md §4.5), so a parsed literal, a bare Symbol reference, and a
// compound :call/:if/:while Expr are all just values an Expr's Args
// slice can hold directly, with no wrapper type needed between parser
// output and compile.go's input.
package parser

import (
	"fmt"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/lexer"
	"github.com/jlvm/jlvm/internal/token"
	"github.com/jlvm/jlvm/internal/value"
)

type precedence int

const (
	LOWEST precedence = iota
	OR_PREC
	AND_PREC
	EQUALS
	COMPARE
	SUM
	PRODUCT
	UNARY
	POWER
	CALL
)

var precedences = map[token.TokenType]precedence{
	token.OR:       OR_PREC,
	token.AND:      AND_PREC,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARE,
	token.LTE:      COMPARE,
	token.GT:       COMPARE,
	token.GTE:      COMPARE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.CARET:    POWER,
	token.LPAREN:   CALL,
	token.LBRACKET: CALL,
	token.DOT:      CALL,
}

var binaryOpLexeme = map[token.TokenType]string{
	token.PLUS: "+", token.MINUS: "-", token.ASTERISK: "*", token.SLASH: "/",
	token.PERCENT: "%", token.CARET: "^", token.EQ: "==", token.NOT_EQ: "!=",
	token.LT: "<", token.LTE: "<=", token.GT: ">", token.GTE: ">=",
	token.AND: "&&", token.OR: "||",
}

// Parser is a recursive-descent/Pratt hybrid: parseExpression handles
// precedence climbing for operators, parseStatement dispatches on
// statement-leading keywords (if/while/return/...).
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf("line %d: %s", p.curToken.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(tt token.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekIs(tt token.TokenType) bool { return p.peekToken.Type == tt }

func (p *Parser) expectPeek(tt token.TokenType) bool {
	if p.peekIs(tt) {
		p.nextToken()
		return true
	}
	p.errorf("expected next token to be %v, got %v (%q)", tt, p.peekToken.Type, p.peekToken.Lexeme)
	return false
}

// skipNewlines consumes any run of NEWLINE/SEMICOLON separators, the same
// statement-boundary skipping the teacher's parser does between
// statements.
func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
		p.nextToken()
	}
}

// ParseProgram parses an entire source file into one top-level "block" Expr.
func ParseProgram(source string) (*ast.Expr, []error) {
	p := New(lexer.New(source))
	block := p.parseBlockUntil(token.EOF)
	return block, p.errors
}

// parseBlockUntil parses statements until the current token is one of
// terminators (the caller consumes it), matching "block" Expr shape
// compile.go expects.
func (p *Parser) parseBlockUntil(terminators ...token.TokenType) *ast.Expr {
	var stmts []value.Value
	p.skipNewlines()
	for !p.isTerminator(terminators) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		stmts = append(stmts, stmt)
		p.skipNewlines()
	}
	return ast.NewExpr("block", stmts...)
}

func (p *Parser) isTerminator(terminators []token.TokenType) bool {
	for _, tt := range terminators {
		if p.curIs(tt) {
			return true
		}
	}
	return false
}

// parseStatement dispatches one statement and always leaves curToken
// positioned on the following separator (NEWLINE/SEMICOLON) or a block
// terminator (END/EOF/...) — if/while already land there by consuming
// their own 'end', so only the plain-expression and return paths need an
// explicit extra advance past their last token.
func (p *Parser) parseStatement() value.Value {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.FUNCTION:
		return p.parseFunctionDef()
	case token.STRUCT:
		return p.parseStructDef(false)
	case token.MUTABLE:
		p.nextToken() // consume 'mutable'
		if !p.curIs(token.STRUCT) {
			p.errorf("expected 'struct' after 'mutable', got %v", p.curToken.Type)
			return value.Nothing()
		}
		return p.parseStructDef(true)
	case token.TRY:
		return p.parseTry()
	case token.MACRO:
		return p.parseMacroDef()
	case token.CONST:
		return p.parseConst()
	case token.LOCAL:
		return p.parseLocal()
	case token.BREAK:
		val := value.Obj(ast.NewExpr("break"))
		p.nextToken()
		return val
	case token.CONTINUE:
		val := value.Obj(ast.NewExpr("continue"))
		p.nextToken()
		return val
	case token.RETURN:
		val := p.parseReturn()
		if !p.curIs(token.NEWLINE) && !p.curIs(token.SEMICOLON) && !p.curIs(token.EOF) && !p.curIs(token.END) {
			p.nextToken()
		}
		return val
	default:
		if p.curIs(token.IDENT) && p.peekIs(token.LPAREN) {
			if def, ok := p.tryParseShortFormDef(); ok {
				return def
			}
		}
		expr := p.parseExpression(LOWEST)
		p.nextToken()
		return expr
	}
}

// parserMark snapshots everything parseStatement's speculative short-form-
// definition lookahead needs to undo: internal/lexer.Lexer has no rewind of
// its own, but its fields are plain value types, so copying the whole
// struct is a cheap, correct save/restore (spec.md gives this grammar no
// LL(1) way to tell a short-form def apart from a plain call/assignment
// statement without scanning past the parameter list).
type parserMark struct {
	lexer    lexer.Lexer
	cur      token.Token
	peek     token.Token
	errCount int
}

func (p *Parser) mark() parserMark {
	return parserMark{lexer: *p.l, cur: p.curToken, peek: p.peekToken, errCount: len(p.errors)}
}

func (p *Parser) reset(m parserMark) {
	*p.l = m.lexer
	p.curToken = m.cur
	p.peekToken = m.peek
	p.errors = p.errors[:m.errCount]
}

// tryParseShortFormDef speculatively parses Julia's short-form function
// definition `name(params...) [where T...] = expr`; on any mismatch it
// restores the parser to its pre-attempt state so the caller can fall back
// to parsing an ordinary call/assignment expression.
func (p *Parser) tryParseShortFormDef() (value.Value, bool) {
	m := p.mark()
	name := value.Intern(p.curToken.Literal)
	p.nextToken() // consume name, now on '('
	params, ok := p.parseParamList()
	if !ok {
		p.reset(m)
		return value.Nothing(), false
	}
	whereExpr := value.Nothing()
	if p.curIs(token.WHERE) {
		whereExpr = p.parseWhereClause()
	}
	if !p.curIs(token.ASSIGN) {
		p.reset(m)
		return value.Nothing(), false
	}
	p.nextToken() // consume '='
	rhs := p.parseExpression(LOWEST)
	p.nextToken()
	body := value.Obj(ast.NewExpr("block", rhs))
	return value.Obj(ast.NewExpr("function", value.Obj(name), params, whereExpr, body)), true
}

// parseParamList parses "(params...)" with curToken on '(', leaving
// curToken on the token following the closing ')'.
func (p *Parser) parseParamList() (value.Value, bool) {
	if !p.curIs(token.LPAREN) {
		return value.Nothing(), false
	}
	p.nextToken() // move past '('
	var params []value.Value
	for !p.curIs(token.RPAREN) {
		if p.curIs(token.EOF) {
			return value.Nothing(), false
		}
		param, ok := p.parseParam()
		if !ok {
			return value.Nothing(), false
		}
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
		}
	}
	p.nextToken() // consume ')'
	return value.Obj(ast.NewExpr("params", params...)), true
}

// parseParam parses one parameter: a bare name, an `x::T` typed form, or
// either form followed by `...` marking the trailing variadic collector
// (spec.md §4.2's splat parameter).
func (p *Parser) parseParam() (value.Value, bool) {
	if !p.curIs(token.IDENT) {
		return value.Nothing(), false
	}
	name := value.Obj(value.Intern(p.curToken.Literal))
	args := []value.Value{name}
	if p.peekIs(token.DOUBLE_COLON) {
		p.nextToken() // '::'
		if !p.expectPeek(token.IDENT) {
			return value.Nothing(), false
		}
		args = append(args, value.Obj(value.Intern(p.curToken.Literal)))
	}
	head := "param"
	if p.peekIs(token.ELLIPSIS) {
		p.nextToken() // '...'
		head = "vparam"
	}
	return value.Obj(ast.NewExpr(head, args...)), true
}

// parseWhereClause parses "where T, S, ..." with curToken on WHERE, leaving
// curToken on the token following the last type variable.
func (p *Parser) parseWhereClause() value.Value {
	p.nextToken() // consume 'where'
	var vars []value.Value
	for p.curIs(token.IDENT) {
		vars = append(vars, value.Obj(value.Intern(p.curToken.Literal)))
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return value.Obj(ast.NewExpr("where", vars...))
}

// parseFunctionDef parses the long form `function name(params...) [where
// T...] body end`.
func (p *Parser) parseFunctionDef() value.Value {
	p.nextToken() // consume 'function'
	if !p.curIs(token.IDENT) {
		p.errorf("expected function name, got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
	name := value.Intern(p.curToken.Literal)
	p.nextToken() // consume name, now on '('
	params, ok := p.parseParamList()
	if !ok {
		p.errorf("expected parameter list in definition of %s", name.Name())
		return value.Nothing()
	}
	whereExpr := value.Nothing()
	if p.curIs(token.WHERE) {
		whereExpr = p.parseWhereClause()
	}
	p.skipNewlines()
	body := p.parseBlockUntil(token.END)
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("function", value.Obj(name), params, whereExpr, value.Obj(body)))
}

// parseStructDef parses `[mutable] struct Name; field[::Type]*; end`.
func (p *Parser) parseStructDef(mutable bool) value.Value {
	p.nextToken() // consume 'struct'
	if !p.curIs(token.IDENT) {
		p.errorf("expected struct name, got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
	name := value.Intern(p.curToken.Literal)
	p.nextToken() // consume name
	p.skipNewlines()
	var fields []value.Value
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf("expected field name, got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
			break
		}
		fname := value.Intern(p.curToken.Literal)
		if p.peekIs(token.DOUBLE_COLON) {
			p.nextToken() // '::'
			if !p.expectPeek(token.IDENT) {
				break
			}
			ftype := value.Intern(p.curToken.Literal)
			fields = append(fields, value.Obj(ast.NewExpr("::", value.Obj(fname), value.Obj(ftype))))
		} else {
			fields = append(fields, value.Obj(fname))
		}
		p.nextToken()
		p.skipNewlines()
	}
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("struct", value.Bool(mutable), value.Obj(name), value.Obj(ast.NewExpr("fields", fields...))))
}

// parseFor parses `for var in iter; body; end` (also accepting `for var =
// iter`, Julia's alternate spelling of the same loop).
func (p *Parser) parseFor() value.Value {
	p.nextToken() // consume 'for'
	if !p.curIs(token.IDENT) {
		p.errorf("expected loop variable, got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
	varName := value.Intern(p.curToken.Literal)
	p.nextToken() // consume ident
	if p.curIs(token.IN) || p.curIs(token.ASSIGN) {
		p.nextToken()
	}
	iter := p.parseExpression(LOWEST)
	p.skipNewlines()
	body := p.parseBlockUntil(token.END)
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("for", value.Obj(varName), iter, value.Obj(body)))
}

// parseTry parses `try body [catch [e] body] [finally body] end`.
func (p *Parser) parseTry() value.Value {
	p.nextToken() // consume 'try'
	p.skipNewlines()
	tryBlock := p.parseBlockUntil(token.CATCH, token.FINALLY, token.END)

	catchVar := value.Nothing()
	// catchBlock stays the TagNothing zero Value (rather than an empty
	// "block" Expr) when no `catch` clause is written at all, so compile.go
	// can tell "no catch clause" (exceptions must still propagate) apart
	// from "catch clause with an empty body" (exceptions are swallowed).
	catchBlock := value.Nothing()
	if p.curIs(token.CATCH) {
		p.nextToken() // consume 'catch'
		if p.curIs(token.IDENT) {
			catchVar = value.Obj(value.Intern(p.curToken.Literal))
			p.nextToken()
		}
		p.skipNewlines()
		catchBlock = value.Obj(p.parseBlockUntil(token.FINALLY, token.END))
	}

	finallyBlock := ast.NewExpr("block")
	if p.curIs(token.FINALLY) {
		p.nextToken() // consume 'finally'
		p.skipNewlines()
		finallyBlock = p.parseBlockUntil(token.END)
	}
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("try", value.Obj(tryBlock), catchVar, catchBlock, value.Obj(finallyBlock)))
}

// parseMacroDef parses `macro name(params...) body end`.
func (p *Parser) parseMacroDef() value.Value {
	p.nextToken() // consume 'macro'
	if !p.curIs(token.IDENT) {
		p.errorf("expected macro name, got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
	name := value.Intern(p.curToken.Literal)
	p.nextToken() // consume name, now on '('
	params, ok := p.parseParamList()
	if !ok {
		p.errorf("expected parameter list in definition of macro %s", name.Name())
		return value.Nothing()
	}
	p.skipNewlines()
	body := p.parseBlockUntil(token.END)
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("macrodef", value.Obj(name), params, value.Obj(body)))
}

// parseMacroCall parses the invocation form `@name(args...)` with curToken
// on '@'; this subset doesn't parse the bare `@name a b` spelling.
func (p *Parser) parseMacroCall() value.Value {
	p.nextToken() // consume '@'
	if !p.curIs(token.IDENT) {
		p.errorf("expected macro name after '@', got %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
	name := value.Intern(p.curToken.Literal)
	args := []value.Value{value.Obj(name)}
	if p.peekIs(token.LPAREN) {
		p.nextToken() // '('
		p.nextToken() // first arg or ')'
		for !p.curIs(token.RPAREN) {
			args = append(args, p.parseExpression(LOWEST))
			if p.peekIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
			} else {
				p.nextToken()
			}
		}
	}
	return value.Obj(ast.NewExpr("macrocall", args...))
}

// parseConst parses `const name = expr`.
func (p *Parser) parseConst() value.Value {
	p.nextToken() // consume 'const'
	stmt := p.parseExpression(LOWEST)
	p.nextToken()
	if e, ok := stmt.Obj.(*ast.Expr); ok && e.Head.Name() == "=" {
		return value.Obj(ast.NewExpr("const", e.Args[0], e.Args[1]))
	}
	return stmt
}

// parseLocal parses `local name[ = expr]`.
func (p *Parser) parseLocal() value.Value {
	p.nextToken() // consume 'local'
	stmt := p.parseExpression(LOWEST)
	p.nextToken()
	if e, ok := stmt.Obj.(*ast.Expr); ok && e.Head.Name() == "=" {
		return value.Obj(ast.NewExpr("local", e.Args[0], e.Args[1]))
	}
	if sym, ok := stmt.Obj.(*value.Symbol); ok {
		return value.Obj(ast.NewExpr("local", value.Obj(sym), value.Nothing()))
	}
	return stmt
}

// parseArrayLiteral parses "[elem, elem, ...]" with curToken on '['.
func (p *Parser) parseArrayLiteral() value.Value {
	p.nextToken() // move past '['
	if p.curIs(token.RBRACKET) {
		return value.Obj(ast.NewExpr("array_literal"))
	}
	elems := []value.Value{p.parseExpression(LOWEST)}
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expectPeek(token.RBRACKET)
	return value.Obj(ast.NewExpr("array_literal", elems...))
}

// parseIf parses `if cond block [elseif cond block]* [else block] end`,
// desugaring elseif into nested "if" Exprs so compile.go's 2-or-3-arg "if"
// handling covers the whole chain.
func (p *Parser) parseIf() value.Value {
	p.nextToken() // consume 'if'
	cond := p.parseExpression(LOWEST)
	p.skipNewlines()
	thenBlock := p.parseBlockUntil(token.ELSEIF, token.ELSE, token.END)

	if p.curIs(token.ELSEIF) {
		elseBranch := p.parseIf()
		return value.Obj(ast.NewExpr("if", cond, value.Obj(thenBlock), elseBranch))
	}
	if p.curIs(token.ELSE) {
		p.nextToken()
		p.skipNewlines()
		elseBlock := p.parseBlockUntil(token.END)
		p.nextToken() // consume 'end'
		return value.Obj(ast.NewExpr("if", cond, value.Obj(thenBlock), value.Obj(elseBlock)))
	}
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("if", cond, value.Obj(thenBlock)))
}

func (p *Parser) parseWhile() value.Value {
	p.nextToken() // consume 'while'
	cond := p.parseExpression(LOWEST)
	p.skipNewlines()
	body := p.parseBlockUntil(token.END)
	p.nextToken() // consume 'end'
	return value.Obj(ast.NewExpr("while", cond, value.Obj(body)))
}

func (p *Parser) parseReturn() value.Value {
	p.nextToken() // consume 'return'
	if p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) || p.curIs(token.EOF) || p.curIs(token.END) {
		return value.Obj(ast.NewExpr("return"))
	}
	val := p.parseExpression(LOWEST)
	return value.Obj(ast.NewExpr("return", val))
}

// parseExpression is the Pratt-parser core: a prefix parse for curToken,
// then repeated infix parses while the peek token binds tighter than min.
func (p *Parser) parseExpression(min precedence) value.Value {
	left := p.parsePrefix()

	for !p.peekIs(token.NEWLINE) && !p.peekIs(token.SEMICOLON) && min < p.peekPrecedence() {
		switch p.peekToken.Type {
		case token.LPAREN:
			p.nextToken()
			left = p.parseCallArgs(left, false)
		case token.LBRACKET:
			p.nextToken()
			left = p.parseIndex(left)
		case token.DOT:
			p.nextToken() // consume '.'
			if !p.expectPeek(token.IDENT) {
				return left
			}
			field := value.Obj(value.Intern(p.curToken.Literal))
			left = value.Obj(ast.NewExpr(".", left, field))
		case token.ASSIGN:
			p.nextToken()
			p.nextToken()
			right := p.parseExpression(LOWEST)
			left = value.Obj(ast.NewExpr("=", left, right))
		case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
			opLexeme := compoundOpLexeme[p.peekToken.Type]
			p.nextToken()
			p.nextToken()
			right := p.parseExpression(LOWEST)
			left = value.Obj(ast.NewExpr("compound_assign", left, value.Obj(value.Intern(opLexeme)), right))
		case token.BROADCAST_DOT:
			p.nextToken()
			if !p.expectPeek(token.LPAREN) {
				return left
			}
			left = p.parseCallArgs(left, true)
		default:
			left = p.parseBinary(left)
		}
	}
	return left
}

var compoundOpLexeme = map[token.TokenType]string{
	token.PLUS_ASSIGN: "+", token.MINUS_ASSIGN: "-",
	token.STAR_ASSIGN: "*", token.SLASH_ASSIGN: "/",
}

func (p *Parser) peekPrecedence() precedence {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	switch p.peekToken.Type {
	case token.ASSIGN, token.BROADCAST_DOT,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
		return CALL
	}
	return LOWEST
}

func (p *Parser) curPrecedence() precedence {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseBinary(left value.Value) value.Value {
	p.nextToken()
	op, ok := binaryOpLexeme[p.curToken.Type]
	if !ok {
		p.errorf("unexpected operator %q", p.curToken.Lexeme)
		return left
	}
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return value.Obj(ast.NewExpr(op, left, right))
}

// parseCallArgs consumes "(args...)" with curToken on '(', producing either
// a :call or :broadcast_call Expr whose Args[0] is the callee symbol.
func (p *Parser) parseCallArgs(callee value.Value, broadcast bool) value.Value {
	if _, ok := callee.Obj.(*value.Symbol); !ok {
		p.errorf("call target must be an identifier")
		return callee
	}
	args := []value.Value{callee}
	p.nextToken() // move past '('
	for !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpression(LOWEST))
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
		} else {
			p.nextToken()
		}
	}
	head := "call"
	if broadcast {
		head = "broadcast_call"
	}
	return value.Obj(ast.NewExpr(head, args...))
}

// parseIndex consumes "[idx]" with curToken on '[', producing a :ref Expr.
func (p *Parser) parseIndex(target value.Value) value.Value {
	p.nextToken() // move past '['
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return target
	}
	return value.Obj(ast.NewExpr("ref", target, idx))
}

// parsePrefix handles literals, identifiers, unary operators, parenthesized
// and tuple expressions — the teacher's prefixParseFns table collapsed into
// a single switch since this subset has far fewer prefix forms.
func (p *Parser) parsePrefix() value.Value {
	switch p.curToken.Type {
	case token.IDENT:
		return value.Obj(value.Intern(p.curToken.Literal))
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STRING:
		return value.Obj(value.NewString(p.curToken.Literal))
	case token.TRUE:
		return value.Bool(true)
	case token.FALSE:
		return value.Bool(false)
	case token.NOTHING:
		return value.Nothing()
	case token.BANG:
		p.nextToken()
		operand := p.parseExpression(UNARY)
		return value.Obj(ast.NewExpr("not", operand))
	case token.MINUS:
		p.nextToken()
		operand := p.parseExpression(UNARY)
		return value.Obj(ast.NewExpr("call", value.Obj(value.Intern("-")), operand))
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.AT:
		return p.parseMacroCall()
	default:
		p.errorf("unexpected token %v (%q)", p.curToken.Type, p.curToken.Lexeme)
		return value.Nothing()
	}
}

func (p *Parser) parseParenOrTuple() value.Value {
	p.nextToken() // move past '('
	if p.curIs(token.RPAREN) {
		return value.Obj(ast.NewExpr("tuple"))
	}
	first := p.parseExpression(LOWEST)
	if p.peekIs(token.COMMA) {
		elems := []value.Value{first}
		for p.peekIs(token.COMMA) {
			p.nextToken() // ','
			p.nextToken() // first token of next element
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expectPeek(token.RPAREN)
		return value.Obj(ast.NewExpr("tuple", elems...))
	}
	p.expectPeek(token.RPAREN)
	return first
}
