package parser

import (
	"fmt"

	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/lexer"
)

// ParseExpr turns a flat token run into one Expr. The run must contain
// no leading or trailing statement-terminator tokens.
func ParseExpr(tokens []lexer.Token, line int) (*Expr, *errs.Error) {
	if len(tokens) == 0 {
		return nil, errs.NewParse(line, "expected an expression but found nothing")
	}

	switch classify(tokens) {
	case ExprStr:
		return parseBinOpExpr(tokens, ExprStr, line)
	case ExprBool:
		return parseBinOpExpr(tokens, ExprBool, line)
	case ExprNumber:
		return parseBinOpExpr(tokens, ExprNumber, line)
	default:
		return &Expr{Type: ExprSingleValue, Stmts: []Stmt{&ValueStmt{Location: loc(line), Tokens: tokens}}}, nil
	}
}

// classify walks the tokens once looking for the first BinOp token:
// concat wins Str, comparison wins Bool, any other operator (including
// EqualEqual) wins Number, and no operator at all means SingleValue.
func classify(tokens []lexer.Token) ExprType {
	for _, tok := range tokens {
		if !tok.Type.IsBinOp() {
			continue
		}
		switch tok.Type {
		case lexer.CONCAT:
			return ExprStr
		case lexer.LESS, lexer.LESS_EQ, lexer.GREATER, lexer.GREATER_EQ:
			return ExprBool
		default:
			return ExprNumber
		}
	}
	return ExprSingleValue
}

// parseBinOpExpr forms the strictly flat, non-recursive `left op right`
// shape: exactly three tokens, the middle one a BinOp (the Str variant
// further requires it to be CONCAT specifically). Leftover tokens past
// the right operand are a parse error, not silently dropped: chained
// expressions like `"a" .. "b" .. "c"` are unsupported by this grammar.
func parseBinOpExpr(tokens []lexer.Token, typ ExprType, line int) (*Expr, *errs.Error) {
	if len(tokens) < 2 || !tokens[1].Type.IsBinOp() {
		return nil, errs.NewParse(line, "expected a binary operator but found %s", describe(tokens, 1))
	}
	if typ == ExprStr && tokens[1].Type != lexer.CONCAT {
		return nil, errs.NewParse(line, "expected '..' but found %s", tokens[1].Type)
	}
	if len(tokens) < 3 {
		return nil, errs.NewParse(line, "expected a right operand after the binary operator")
	}
	if len(tokens) != 3 {
		return nil, errs.NewParse(line, "expected end of expression but found %s", describe(tokens, 3))
	}

	left, op, right := tokens[0], tokens[1], tokens[2]
	return &Expr{
		Type: typ,
		Stmts: []Stmt{&BinOpStmt{
			Location: loc(op.Line),
			Op:       op.Type,
			Left:     wrapValue(left),
			Right:    wrapValue(right),
		}},
	}, nil
}

func wrapValue(tok lexer.Token) *Expr {
	return &Expr{Type: ExprSingleValue, Stmts: []Stmt{&ValueStmt{Location: loc(tok.Line), Tokens: []lexer.Token{tok}}}}
}

func describe(tokens []lexer.Token, i int) string {
	if i >= len(tokens) {
		return "end of expression"
	}
	return string(tokens[i].Type)
}

func loc(line int) string {
	return fmt.Sprintf("Line %d", line)
}
