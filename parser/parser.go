// Package parser implements a Pratt parser that turns a dai token stream
// into an ast.Program.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/lexer"
	"github.com/daivm/dai/token"
)

// Precedence levels, low to high, per the dai precedence ladder:
// or < and < not < equality < bitor < bitxor < bitand < shift < sum <
// product < prefix < call/subscript/dot.
//
// The ladder in the distilled spec names only or/and/not/equality/sum/
// product/prefix/call explicitly; bitwise operators are not ordered by
// it. This parser places them between equality and sum (C-like), a
// decision recorded in DESIGN.md.
const (
	_ int = iota
	LOWEST
	OR
	AND
	NOT
	EQUALS
	BITOR
	BITXOR
	BITAND
	SHIFT
	SUM
	PRODUCT
	PREFIX
	CALL
)

var precedences = map[token.Type]int{
	token.OR:      OR,
	token.OR_OR:   OR,
	token.AND:     AND,
	token.AND_AND: AND,
	token.EQ:      EQUALS,
	token.NOT_EQ:  EQUALS,
	token.LT:      EQUALS,
	token.LT_EQ:   EQUALS,
	token.GT:      EQUALS,
	token.GT_EQ:   EQUALS,
	token.PIPE:    BITOR,
	token.CARET:   BITXOR,
	token.AMP:     BITAND,
	token.SHL:     SHIFT,
	token.SHR:     SHIFT,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.PERCENT: PRODUCT,
	token.LPAREN:  CALL,
	token.LBRACKET: CALL,
	token.DOT:     CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// SyntaxError is a parse error carrying the offending position, matching
// spec §4.2's "filename, line, column, message" contract.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
}

// Parser consumes a token stream and produces an AST. The first error
// aborts parsing; Parse returns the partial program alongside the error.
type Parser struct {
	l        *lexer.Lexer
	filename string

	cur  token.Token
	peek token.Token

	err *SyntaxError

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over l; filename is used only for error messages.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, filename: filename}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.NIL:      p.parseNilLiteral,
		token.SELF:     p.parseSelf,
		token.SUPER:    p.parseSuper,
		token.MINUS:    p.parsePrefixExpression,
		token.BANG:     p.parsePrefixExpression,
		token.TILDE:    p.parsePrefixExpression,
		token.NOT:      p.parseNotExpression,
		token.LPAREN:   p.parseGroupedOrTuple,
		token.LBRACKET: p.parseArrayLiteral,
		token.LBRACE:   p.parseMapLiteral,
		token.FN:       p.parseFunctionLiteral,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseInfixExpression,
		token.MINUS:    p.parseInfixExpression,
		token.STAR:     p.parseInfixExpression,
		token.SLASH:    p.parseInfixExpression,
		token.PERCENT:  p.parseInfixExpression,
		token.SHL:      p.parseInfixExpression,
		token.SHR:      p.parseInfixExpression,
		token.AMP:      p.parseInfixExpression,
		token.PIPE:     p.parseInfixExpression,
		token.CARET:    p.parseInfixExpression,
		token.EQ:       p.parseInfixExpression,
		token.NOT_EQ:   p.parseInfixExpression,
		token.LT:       p.parseInfixExpression,
		token.LT_EQ:    p.parseInfixExpression,
		token.GT:       p.parseInfixExpression,
		token.GT_EQ:    p.parseInfixExpression,
		token.AND:      p.parseLogicalExpression,
		token.AND_AND:  p.parseLogicalExpression,
		token.OR:       p.parseLogicalExpression,
		token.OR_OR:    p.parseLogicalExpression,
		token.LPAREN:   p.parseCallExpression,
		token.LBRACKET: p.parseIndexExpression,
		token.DOT:      p.parseDotExpression,
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

// Parse consumes the full token stream, returning the completed Program,
// or a partial Program plus the first SyntaxError encountered.
func (p *Parser) Parse() (*ast.Program, *SyntaxError) {
	prog := &ast.Program{}
	for p.cur.Type != token.EOF {
		if p.err != nil {
			return prog, p.err
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return prog, p.err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	if lexErrs := p.l.Errors(); len(lexErrs) > 0 {
		e := lexErrs[0]
		return prog, &SyntaxError{Filename: p.filename, Line: e.Pos.StartLine, Column: e.Pos.StartCol, Message: e.Message}
	}
	return prog, nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = &SyntaxError{
		Filename: p.filename,
		Line:     tok.Pos.StartLine,
		Column:   tok.Pos.StartCol,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (p *Parser) expect(tt token.Type) bool {
	if p.peek.Type != tt {
		p.errorf(p.peek, "expected %s, got %s (%q)", tt, p.peek.Type, p.peek.Literal)
		return false
	}
	p.next()
	return true
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// ---- Statements ----

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.VAR, token.CON:
		return p.parseVarStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.FN:
		return p.parseFunctionStatement()
	case token.CLASS:
		return p.parseClassStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	startTok := p.cur
	isConst := p.cur.Type == token.CON
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	var value ast.Expression
	if p.peek.Type == token.ASSIGN {
		p.next()
		p.next()
		value = p.parseExpression(LOWEST)
	}
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.VarStatement{Name: name, IsConst: isConst, Value: value,
		Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	startTok := p.cur
	if p.peek.Type == token.SEMI {
		p.next()
		return &ast.ReturnStatement{Loc: ast.At(startTok.Pos)}
	}
	p.next()
	val := p.parseExpression(LOWEST)
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.ReturnStatement{Value: val, Loc: ast.At(startTok.Pos)}
}

// parseBlockStatement parses a `{ ... }` block. The caller must leave cur
// positioned on the opening '{'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	startTok := p.cur
	block := &ast.BlockStatement{Loc: ast.At(startTok.Pos)}
	if p.cur.Type != token.LBRACE {
		p.errorf(p.cur, "expected '{', got %s (%q)", p.cur.Type, p.cur.Literal)
		return block
	}
	p.next()
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		if p.err != nil {
			return block
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return block
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	if p.cur.Type != token.RBRACE {
		p.errorf(p.cur, "expected '}' to close block")
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return nil
	}
	p.next()
	then := p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	stmt := &ast.IfStatement{Condition: cond, Then: then, Loc: ast.At(startTok.Pos)}

	for p.peek.Type == token.ELIF {
		p.next() // consume elif
		if !p.expect(token.LPAREN) {
			return nil
		}
		p.next()
		econd := p.parseExpression(LOWEST)
		if !p.expect(token.RPAREN) {
			return nil
		}
		p.next()
		ebody := p.parseBlockStatement()
		if p.err != nil {
			return nil
		}
		stmt.Elifs = append(stmt.Elifs, ast.ElifBranch{Condition: econd, Body: ebody})
	}

	if p.peek.Type == token.ELSE {
		p.next()
		p.next()
		stmt.Else = p.parseBlockStatement()
		if p.err != nil {
			return nil
		}
	}

	if !p.expect(token.SEMI) {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return nil
	}
	p.next()
	body := p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.WhileStatement{Condition: cond, Body: body, Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseForInStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.LPAREN) {
		return nil
	}
	if !p.expect(token.IDENT) {
		return nil
	}
	indexName := p.cur.Literal
	if !p.expect(token.COMMA) {
		return nil
	}
	if !p.expect(token.IDENT) {
		return nil
	}
	elemName := p.cur.Literal
	if !p.expect(token.IN) {
		return nil
	}
	p.next()
	iterable := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return nil
	}
	p.next()
	body := p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.ForInStatement{IndexName: indexName, ElemName: elemName, Iterable: iterable, Body: body, Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.BreakStatement{Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.ContinueStatement{Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	fn := p.parseFunctionLiteralBody()
	if p.err != nil {
		return nil
	}
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.FunctionStatement{Name: name, Fn: fn, Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseClassStatement() ast.Statement {
	startTok := p.cur
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal

	var parent ast.Expression
	if p.peek.Type == token.LT {
		p.next()
		p.next()
		parent = p.parseExpression(CALL)
	}

	if !p.expect(token.LBRACE) {
		return nil
	}
	p.next()

	seen := map[string]bool{}
	var members []ast.ClassMember
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		m := p.parseClassMember()
		if p.err != nil {
			return nil
		}
		if m != nil {
			if seen[m.Name] {
				p.errorf(p.cur, "duplicate class member %q", m.Name)
				return nil
			}
			seen[m.Name] = true
			members = append(members, *m)
		}
		p.next()
	}
	if p.cur.Type != token.RBRACE {
		p.errorf(p.cur, "expected '}' to close class body")
		return nil
	}
	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.ClassStatement{Name: name, Parent: parent, Members: members, Loc: ast.At(startTok.Pos)}
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	switch p.cur.Type {
	case token.VAR, token.INSVAR, token.CON:
		isConst := p.cur.Type == token.CON
		if !p.expect(token.IDENT) {
			return nil
		}
		pos := p.cur.Pos
		name := p.cur.Literal
		var def ast.Expression
		if p.peek.Type == token.ASSIGN {
			p.next()
			p.next()
			def = p.parseExpression(LOWEST)
		}
		if !p.expect(token.SEMI) {
			return nil
		}
		return &ast.ClassMember{Kind: ast.InstanceField, Name: name, IsConst: isConst, Default: def, Position: pos}
	case token.CLASSVAR:
		if !p.expect(token.IDENT) {
			return nil
		}
		pos := p.cur.Pos
		name := p.cur.Literal
		var def ast.Expression
		if p.peek.Type == token.ASSIGN {
			p.next()
			p.next()
			def = p.parseExpression(LOWEST)
		}
		if !p.expect(token.SEMI) {
			return nil
		}
		return &ast.ClassMember{Kind: ast.ClassField, Name: name, Default: def, Position: pos}
	case token.FN:
		if !p.expect(token.IDENT) {
			return nil
		}
		pos := p.cur.Pos
		name := p.cur.Literal
		fn := p.parseFunctionLiteralBody()
		if p.err != nil {
			return nil
		}
		return &ast.ClassMember{Kind: ast.InstanceMethod, Name: name, Method: fn, Position: pos}
	case token.CLASSFN:
		if !p.expect(token.IDENT) {
			return nil
		}
		pos := p.cur.Pos
		name := p.cur.Literal
		fn := p.parseFunctionLiteralBody()
		if p.err != nil {
			return nil
		}
		return &ast.ClassMember{Kind: ast.ClassMethod, Name: name, Method: fn, Position: pos}
	default:
		p.errorf(p.cur, "unexpected token %s in class body", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	startTok := p.cur
	expr := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}

	if isAssignOp(p.peek.Type) {
		op := p.peek.Literal
		p.next()
		p.next()
		value := p.parseExpression(LOWEST)
		if !p.expect(token.SEMI) {
			return nil
		}
		return &ast.AssignStatement{Target: expr, Operator: op, Value: value, Loc: ast.At(startTok.Pos)}
	}

	if !p.expect(token.SEMI) {
		return nil
	}
	return &ast.ExpressionStatement{Expression: expr, Loc: ast.At(startTok.Pos)}
}

func isAssignOp(tt token.Type) bool {
	switch tt {
	case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		return true
	}
	return false
}

// ---- Expressions ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf(p.cur, "unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
		return nil
	}
	left := prefix()
	if p.err != nil {
		return nil
	}

	for p.peek.Type != token.SEMI && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Type]
		if !ok {
			return left
		}
		p.next()
		left = infix(left)
		if p.err != nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Loc: ast.At(p.cur.Pos), Name: p.cur.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := p.cur.Literal
	clean := strings.ReplaceAll(lit, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		v, err = strconv.ParseInt(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		v, err = strconv.ParseInt(clean[2:], 8, 64)
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		v, err = strconv.ParseInt(clean[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(clean, 10, 64)
	}
	if err != nil {
		p.errorf(p.cur, "invalid integer literal %q: %s", lit, err)
		return nil
	}
	return &ast.IntegerLiteral{Loc: ast.At(p.cur.Pos), Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.errorf(p.cur, "invalid float literal %q: %s", p.cur.Literal, err)
		return nil
	}
	return &ast.FloatLiteral{Loc: ast.At(p.cur.Pos), Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Loc: ast.At(p.cur.Pos), Value: p.cur.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Loc: ast.At(p.cur.Pos), Value: p.cur.Type == token.TRUE}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Loc: ast.At(p.cur.Pos)}
}

func (p *Parser) parseSelf() ast.Expression {
	return &ast.SelfExpression{Loc: ast.At(p.cur.Pos)}
}

func (p *Parser) parseSuper() ast.Expression {
	startTok := p.cur
	if !p.expect(token.DOT) {
		return nil
	}
	if !p.expect(token.IDENT) {
		return nil
	}
	return &ast.SuperExpression{Loc: ast.At(startTok.Pos), Name: p.cur.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	startTok := p.cur
	op := p.cur.Literal
	p.next()
	right := p.parseExpression(PREFIX)
	if p.err != nil {
		return nil
	}
	return &ast.PrefixExpression{Loc: ast.At(startTok.Pos), Operator: op, Right: right}
}

func (p *Parser) parseNotExpression() ast.Expression {
	startTok := p.cur
	p.next()
	right := p.parseExpression(NOT)
	if p.err != nil {
		return nil
	}
	return &ast.PrefixExpression{Loc: ast.At(startTok.Pos), Operator: "not", Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	op := p.cur.Literal
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	if p.err != nil {
		return nil
	}
	return &ast.InfixExpression{Loc: ast.At(left.Pos()), Left: left, Operator: op, Right: right}
}

// parseLogicalExpression handles and/&& and or/|| as the same AST operator
// ("and"/"or"), so the compiler's short-circuit emission only has two
// cases to handle regardless of spelling.
func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	op := "and"
	if p.cur.Type == token.OR || p.cur.Type == token.OR_OR {
		op = "or"
	}
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	if p.err != nil {
		return nil
	}
	return &ast.InfixExpression{Loc: ast.At(left.Pos()), Left: left, Operator: op, Right: right}
}

func (p *Parser) parseGroupedOrTuple() ast.Expression {
	startTok := p.cur
	p.next()
	if p.cur.Type == token.RPAREN {
		return &ast.TupleLiteral{Loc: ast.At(startTok.Pos)}
	}
	first := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if p.peek.Type == token.COMMA {
		elems := []ast.Expression{first}
		for p.peek.Type == token.COMMA {
			p.next()
			p.next()
			elems = append(elems, p.parseExpression(LOWEST))
			if p.err != nil {
				return nil
			}
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.TupleLiteral{Loc: ast.At(startTok.Pos), Elements: elems}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return first
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	startTok := p.cur
	elems := p.parseExpressionList(token.RBRACKET)
	if p.err != nil {
		return nil
	}
	return &ast.ArrayLiteral{Loc: ast.At(startTok.Pos), Elements: elems}
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peek.Type == end {
		p.next()
		return list
	}
	p.next()
	list = append(list, p.parseExpression(LOWEST))
	for p.peek.Type == token.COMMA {
		p.next()
		p.next()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expect(end) {
		return nil
	}
	return list
}

func (p *Parser) parseMapLiteral() ast.Expression {
	m := &ast.MapLiteral{Loc: ast.At(p.cur.Pos)}
	if p.peek.Type == token.RBRACE {
		p.next()
		return m
	}
	p.next()
	for {
		key := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		if !p.expect(token.COLON) {
			return nil
		}
		p.next()
		value := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		m.Pairs = append(m.Pairs, ast.MapPair{Key: key, Value: value})
		if p.peek.Type == token.COMMA {
			p.next()
			p.next()
			continue
		}
		break
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return m
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := p.parseFunctionLiteralBody()
	if fn == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseFunctionLiteralBody() *ast.FunctionLiteral {
	startTok := p.cur
	if !p.expect(token.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	if p.err != nil {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	return &ast.FunctionLiteral{Loc: ast.At(startTok.Pos), Params: params, Body: body}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peek.Type == token.RPAREN {
		p.next()
		return params
	}
	p.next()
	params = append(params, p.parseParam())
	for p.peek.Type == token.COMMA {
		p.next()
		p.next()
		params = append(params, p.parseParam())
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseParam() ast.Param {
	name := p.cur.Literal
	var def ast.Expression
	if p.peek.Type == token.ASSIGN {
		p.next()
		p.next()
		def = p.parseExpression(LOWEST)
	}
	return ast.Param{Name: name, Default: def}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	args := p.parseExpressionList(token.RPAREN)
	if p.err != nil {
		return nil
	}
	return &ast.CallExpression{Loc: ast.At(callee.Pos()), Callee: callee, Args: args}
}

func (p *Parser) parseIndexExpression(collection ast.Expression) ast.Expression {
	p.next()
	idx := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.IndexExpression{Loc: ast.At(collection.Pos()), Collection: collection, Index: idx}
}

func (p *Parser) parseDotExpression(obj ast.Expression) ast.Expression {
	if !p.expect(token.IDENT) {
		return nil
	}
	return &ast.DotExpression{Loc: ast.At(obj.Pos()), Object: obj, Name: p.cur.Literal}
}
