package vm

import (
	"strconv"

	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/lexer"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/value"
)

// evalExpr evaluates a parsed Expr, dispatching on its single inner
// statement kind.
func (i *Interpreter) evalExpr(e *parser.Expr) (value.Value, *errs.Error) {
	if e == nil || len(e.Stmts) == 0 {
		return value.Nil{}, nil
	}
	switch s := e.Stmts[0].(type) {
	case *parser.BinOpStmt:
		return i.evalBinOp(s)
	case *parser.ValueStmt:
		return i.evalValueStmt(s)
	default:
		return nil, errs.NewRuntime(i.currentLoc, "unexpected expression statement kind")
	}
}

// evalValueStmt decodes a flat token run into a Value: a literal, a
// (possibly dotted) variable reference, a function call, or an empty
// table constructor.
func (i *Interpreter) evalValueStmt(s *parser.ValueStmt) (value.Value, *errs.Error) {
	tokens := s.Tokens
	if len(tokens) == 0 {
		return value.Nil{}, nil
	}

	if len(tokens) == 2 && tokens[0].Type == lexer.LEFT_BRACE && tokens[1].Type == lexer.RIGHT_BRACE {
		return i.NewTable(), nil
	}

	first := tokens[0]
	switch first.Type {
	case lexer.NUMBER:
		f, err := strconv.ParseFloat(first.Literal, 64)
		if err != nil {
			return nil, errs.NewRuntime(i.currentLoc, "malformed number literal %q", first.Literal)
		}
		return value.Number(f), nil
	case lexer.STRING:
		return value.Str(first.Literal), nil
	case lexer.TRUE:
		return value.Bool(true), nil
	case lexer.FALSE:
		return value.Bool(false), nil
	case lexer.IDENTIFIER:
		if len(tokens) > 1 && tokens[1].Type == lexer.LEFT_PAREN {
			return i.evalFunctionCallTokens(tokens)
		}
		return i.getVariableValue(first.Literal)
	default:
		return nil, errs.NewRuntime(i.currentLoc, "cannot evaluate value expression starting with %s", first.Type)
	}
}

// evalFunctionCallTokens re-parses a function-call-shaped token run and
// immediately executes it: a function call used inside an expression is
// parsed exactly like a statement-level call.
func (i *Interpreter) evalFunctionCallTokens(tokens []lexer.Token) (value.Value, *errs.Error) {
	withEOF := make([]lexer.Token, 0, len(tokens)+1)
	withEOF = append(withEOF, tokens...)
	withEOF = append(withEOF, lexer.NewToken(lexer.EOF, "", tokens[0].Line))

	stmts, perr := parser.Parse(withEOF)
	if perr != nil {
		return nil, errs.NewRuntime(i.currentLoc, "invalid function call expression: %s", perr.Message)
	}
	if len(stmts) == 0 {
		return value.Nil{}, nil
	}
	call, ok := stmts[0].(*parser.FunctionCallStmt)
	if !ok {
		return nil, errs.NewRuntime(i.currentLoc, "expected a function call expression")
	}
	return i.execFunctionCall(call.Name.Literal, call.Args)
}

// evalBinOp evaluates the flat `left op right` form.
func (i *Interpreter) evalBinOp(s *parser.BinOpStmt) (value.Value, *errs.Error) {
	left, err := i.evalExpr(s.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(s.Right)
	if err != nil {
		return nil, err
	}

	switch s.Op {
	case lexer.CONCAT:
		return value.Str(value.ToStringCoerce(left) + value.ToStringCoerce(right)), nil
	case lexer.EQUAL_EQ:
		return value.Bool(value.Equal(left, right)), nil
	case lexer.PLUS:
		return value.Number(value.ToNum(left) + value.ToNum(right)), nil
	case lexer.MINUS:
		return value.Number(value.ToNum(left) - value.ToNum(right)), nil
	case lexer.STAR:
		return value.Number(value.ToNum(left) * value.ToNum(right)), nil
	case lexer.SLASH:
		return value.Number(value.ToNum(left) / value.ToNum(right)), nil
	case lexer.LESS:
		return value.Bool(value.ToNum(left) < value.ToNum(right)), nil
	case lexer.LESS_EQ:
		return value.Bool(value.ToNum(left) <= value.ToNum(right)), nil
	case lexer.GREATER:
		return value.Bool(value.ToNum(left) > value.ToNum(right)), nil
	case lexer.GREATER_EQ:
		return value.Bool(value.ToNum(left) >= value.ToNum(right)), nil
	default:
		return nil, errs.NewRuntime(i.currentLoc, "unsupported binary operator %s", s.Op)
	}
}

// execFunctionCall resolves name to a Function, evaluates its arguments
// left to right, pushes a fresh frame, invokes, pops the frame, and
// unconditionally clears the pending return. Stack depth and the
// return sentinel are restored no matter how the call completes.
func (i *Interpreter) execFunctionCall(name string, argExprs []*parser.Expr) (value.Value, *errs.Error) {
	args := make([]value.Value, 0, len(argExprs))
	for _, ae := range argExprs {
		v, err := i.evalExpr(ae)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	id, ok := i.resolveFuncID(name)
	if !ok {
		return nil, errs.NewRuntime(i.currentLoc, "attempt to call undefined function '%s'", name)
	}
	fn := i.funcByID[id]

	i.pushFrame()
	result := value.Value(value.Nil{})
	var callErr *errs.Error

	if fn.IsNative {
		v, err := fn.Native(args, i)
		if err != nil {
			if e, ok := err.(*errs.Error); ok {
				callErr = e
			} else {
				callErr = errs.NewRuntime(i.currentLoc, "%s", err.Error())
			}
		} else if v != nil {
			result = v
		}
	} else {
		top := i.topFrame()
		for idx, p := range fn.Params {
			if idx < len(args) {
				top[p] = args[idx]
			} else {
				top[p] = value.Nil{}
			}
		}
		callErr = i.ExecStmts(fn.Body)
		if callErr == nil && i.hasReturn {
			result = i.returnVal
		}
	}

	i.popFrame()
	i.hasReturn = false
	i.returnVal = nil

	if callErr != nil {
		return nil, callErr
	}
	return result, nil
}
