package parser

import (
	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/lexer"
)

// Parser consumes a flat lexer.Token slice and produces a []Stmt.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// NewParser wraps a token slice for parsing.
func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the scanner's token stream through the statement parser to
// completion: the result always ends in an EOFStmt.
func Parse(tokens []lexer.Token) ([]Stmt, *errs.Error) {
	return NewParser(tokens).parseAll()
}

func (p *Parser) parseAll() ([]Stmt, *errs.Error) {
	var stmts []Stmt
	for {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if _, ok := stmt.(*EOFStmt); ok {
			return stmts, nil
		}
	}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// parseStmt dispatches on the next token to decide which statement kind
// to parse.
func (p *Parser) parseStmt() (Stmt, *errs.Error) {
	switch p.cur().Type {
	case lexer.IDENTIFIER:
		return p.parseIdentifierStmt()
	case lexer.LOCAL:
		return p.parseLocal()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.FUNCTION:
		return p.parseFunctionDef()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.NEWLINE, lexer.SEMICOLON:
		p.advance()
		return p.parseStmt()
	case lexer.EOF:
		tok := p.advance()
		return &EOFStmt{Location: loc(tok.Line)}, nil
	default:
		tok := p.cur()
		return nil, errs.NewParse(tok.Line, "statements cannot start with %s", tok.Type)
	}
}

// parseIdentifierStmt handles the two things a bare identifier can start:
// a function call or a non-local assignment.
func (p *Parser) parseIdentifierStmt() (Stmt, *errs.Error) {
	nameTok := p.advance()
	switch p.cur().Type {
	case lexer.LEFT_PAREN:
		p.advance()
		argTokens := p.scanArgsEnd()
		args, err := splitArgs(argTokens, nameTok.Line)
		if err != nil {
			return nil, err
		}
		return &FunctionCallStmt{Location: loc(nameTok.Line), Name: nameTok, Args: args}, nil
	case lexer.EQUAL:
		p.advance()
		exprTokens := p.scanToMult(lexer.NEWLINE, lexer.SEMICOLON)
		expr, err := ParseExpr(exprTokens, nameTok.Line)
		if err != nil {
			return nil, err
		}
		return &AssignmentStmt{Location: loc(nameTok.Line), Name: nameTok, Value: expr, IsLocal: false}, nil
	default:
		return nil, errs.NewParse(nameTok.Line, "unknown token following identifier: %s", p.cur().Type)
	}
}

func (p *Parser) parseLocal() (Stmt, *errs.Error) {
	localTok := p.advance()
	if p.cur().Type != lexer.IDENTIFIER {
		return nil, errs.NewParse(p.cur().Line, "expected an identifier after 'local'")
	}
	nameTok := p.advance()
	if p.cur().Type != lexer.EQUAL {
		return nil, errs.NewParse(p.cur().Line, "expected '=' after local variable name")
	}
	p.advance()
	exprTokens := p.scanToMult(lexer.NEWLINE, lexer.SEMICOLON)
	expr, err := ParseExpr(exprTokens, nameTok.Line)
	if err != nil {
		return nil, err
	}
	return &AssignmentStmt{Location: loc(localTok.Line), Name: nameTok, Value: expr, IsLocal: true}, nil
}

// parseIf scans the then/else bodies with scanBlockBody's level
// tracking, shared with while/for/function, so a nested if's "end"
// cannot close the outer block early.
func (p *Parser) parseIf() (Stmt, *errs.Error) {
	ifTok := p.advance()
	condTokens := p.scanTo(lexer.THEN)
	cond, err := ParseExpr(condTokens, ifTok.Line)
	if err != nil {
		return nil, err
	}
	thenTokens, hitElse := p.scanBlockBody(true)
	thenStmts, err := parseBlockTokens(thenTokens, ifTok.Line)
	if err != nil {
		return nil, err
	}
	var elseStmts []Stmt
	if hitElse {
		elseTokens, _ := p.scanBlockBody(false)
		elseStmts, err = parseBlockTokens(elseTokens, ifTok.Line)
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Location: loc(ifTok.Line), Cond: cond, Then: thenStmts, Else: elseStmts}, nil
}

func (p *Parser) parseWhile() (Stmt, *errs.Error) {
	whileTok := p.advance()
	condTokens := p.scanTo(lexer.DO)
	cond, err := ParseExpr(condTokens, whileTok.Line)
	if err != nil {
		return nil, err
	}
	bodyTokens, _ := p.scanBlockBody(false)
	body, err := parseBlockTokens(bodyTokens, whileTok.Line)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Location: loc(whileTok.Line), Cond: cond, Body: body}, nil
}

// parseFor. The token occupying the '=' position after the loop
// variable is skipped unconditionally, without validating it is
// actually '='.
func (p *Parser) parseFor() (Stmt, *errs.Error) {
	forTok := p.advance()
	if p.cur().Type != lexer.IDENTIFIER {
		return nil, errs.NewParse(p.cur().Line, "expected a loop variable after 'for'")
	}
	varTok := p.advance()
	p.advance() // skip the '=' position, unvalidated

	startTokens := p.scanTo(lexer.COMMA)
	start, err := ParseExpr(startTokens, forTok.Line)
	if err != nil {
		return nil, err
	}
	endTokens := p.scanTo(lexer.COMMA)
	end, err := ParseExpr(endTokens, forTok.Line)
	if err != nil {
		return nil, err
	}
	stepTokens := p.scanTo(lexer.DO)
	step, err := ParseExpr(stepTokens, forTok.Line)
	if err != nil {
		return nil, err
	}
	bodyTokens, _ := p.scanBlockBody(false)
	body, err := parseBlockTokens(bodyTokens, forTok.Line)
	if err != nil {
		return nil, err
	}
	return &ForStmt{Location: loc(forTok.Line), Var: varTok, Start: start, End: end, Step: step, Body: body}, nil
}

func (p *Parser) parseFunctionDef() (Stmt, *errs.Error) {
	fnTok := p.advance()
	if p.cur().Type != lexer.IDENTIFIER {
		return nil, errs.NewParse(p.cur().Line, "expected a function name")
	}
	nameTok := p.advance()
	if p.cur().Type != lexer.LEFT_PAREN {
		return nil, errs.NewParse(p.cur().Line, "expected '(' after function name")
	}
	p.advance()
	paramTokens := p.scanArgsEnd()
	var params []lexer.Token
	for _, t := range paramTokens {
		if t.Type == lexer.COMMA {
			continue
		}
		params = append(params, t)
	}
	bodyTokens, _ := p.scanBlockBody(false)
	body, err := parseBlockTokens(bodyTokens, fnTok.Line)
	if err != nil {
		return nil, err
	}
	return &FunctionDefStmt{Location: loc(fnTok.Line), Name: nameTok, Params: params, Body: body}, nil
}

func (p *Parser) parseReturn() (Stmt, *errs.Error) {
	retTok := p.advance()
	exprTokens := p.scanToMult(lexer.NEWLINE, lexer.SEMICOLON)
	expr, err := ParseExpr(exprTokens, retTok.Line)
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{Location: loc(retTok.Line), Value: expr}, nil
}

// scanTo collects tokens up to (and consuming) the first occurrence of
// stop, or EOF.
func (p *Parser) scanTo(stop lexer.TokenType) []lexer.Token {
	return p.scanToMult(stop)
}

// scanToMult collects tokens until one of stops (or EOF) is seen,
// consuming but not including it.
func (p *Parser) scanToMult(stops ...lexer.TokenType) []lexer.Token {
	var toks []lexer.Token
	for {
		t := p.cur()
		if t.Type == lexer.EOF {
			return toks
		}
		for _, s := range stops {
			if t.Type == s {
				p.advance()
				return toks
			}
		}
		toks = append(toks, p.advance())
	}
}

// scanArgsEnd is the balanced-parenthesis scan used for call argument
// lists and function parameter lists: called just after the opening '('
// has been consumed, it tracks nested parens so inner calls parse
// correctly, consuming the matching ')'.
func (p *Parser) scanArgsEnd() []lexer.Token {
	depth := 1
	var toks []lexer.Token
	for {
		t := p.cur()
		if t.Type == lexer.EOF {
			return toks
		}
		if t.Type == lexer.LEFT_PAREN {
			depth++
		}
		if t.Type == lexer.RIGHT_PAREN {
			depth--
			if depth == 0 {
				p.advance()
				return toks
			}
		}
		toks = append(toks, p.advance())
	}
}

// scanBlockBody is the level-tracking block-end scan: IF/WHILE/FOR/
// FUNCTION openings increment level, END decrements it,
// and the scan stops when level returns to zero at a matching END (or,
// when stopOnElse is set, at an ELSE seen at level zero).
func (p *Parser) scanBlockBody(stopOnElse bool) (tokens []lexer.Token, hitElse bool) {
	level := 0
	for {
		t := p.cur()
		if t.Type == lexer.EOF {
			return tokens, false
		}
		switch t.Type {
		case lexer.IF, lexer.WHILE, lexer.FOR, lexer.FUNCTION:
			level++
		case lexer.END:
			if level == 0 {
				p.advance()
				return tokens, false
			}
			level--
		case lexer.ELSE:
			if stopOnElse && level == 0 {
				p.advance()
				return tokens, true
			}
		}
		tokens = append(tokens, p.advance())
	}
}

// parseBlockTokens recursively parses a nested block's raw tokens into a
// []Stmt by feeding them through a fresh Parser with a synthetic trailing
// EOF token. The EOFStmt that token produces is dropped, so a block body
// holds only its own statements.
func parseBlockTokens(tokens []lexer.Token, line int) ([]Stmt, *errs.Error) {
	withEOF := make([]lexer.Token, 0, len(tokens)+1)
	withEOF = append(withEOF, tokens...)
	withEOF = append(withEOF, lexer.NewToken(lexer.EOF, "", line))
	stmts, err := NewParser(withEOF).parseAll()
	if err != nil {
		return nil, err
	}
	return stmts[:len(stmts)-1], nil
}

// splitArgs splits a flat token run by top-level commas (tracking paren
// depth so nested calls' argument commas don't split the outer list) and
// parses each non-empty group as an expression.
func splitArgs(tokens []lexer.Token, line int) ([]*Expr, *errs.Error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var groups [][]lexer.Token
	var cur []lexer.Token
	depth := 0
	for _, t := range tokens {
		switch t.Type {
		case lexer.LEFT_PAREN:
			depth++
		case lexer.RIGHT_PAREN:
			depth--
		}
		if t.Type == lexer.COMMA && depth == 0 {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)

	exprs := make([]*Expr, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		e, err := ParseExpr(g, line)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}
