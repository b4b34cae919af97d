package vm

import (
	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/value"
)

// ExecStmts runs stmts in order, stopping as soon as return_val is set
// or a statement errors.
func (i *Interpreter) ExecStmts(stmts []parser.Stmt) *errs.Error {
	for _, s := range stmts {
		if i.hasReturn {
			return nil
		}
		if err := i.ExecStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// ExecStmt dispatches a single statement. Every entry checks return_val
// first, so a Return anywhere in a nested block propagates out to the
// call site without unwinding through a Go panic.
func (i *Interpreter) ExecStmt(s parser.Stmt) *errs.Error {
	if i.hasReturn {
		return nil
	}
	i.currentLoc = s.Loc()

	switch n := s.(type) {
	case *parser.FunctionCallStmt:
		_, err := i.execFunctionCall(n.Name.Literal, n.Args)
		return err
	case *parser.FunctionDefStmt:
		return i.execFunctionDef(n)
	case *parser.AssignmentStmt:
		return i.execAssignment(n)
	case *parser.IfStmt:
		return i.execIf(n)
	case *parser.WhileStmt:
		return i.execWhile(n)
	case *parser.ForStmt:
		return i.execFor(n)
	case *parser.ReturnStmt:
		return i.execReturn(n)
	case *parser.EOFStmt:
		return nil
	case *parser.BinOpStmt, *parser.ValueStmt:
		// Fatal: expressions reaching the interpreter as root statements
		// indicate a parser defect, represented here as a structured
		// runtime error rather than a crash.
		return errs.NewRuntime(i.currentLoc, "illegal root statement: expressions are not statements")
	default:
		return errs.NewRuntime(i.currentLoc, "unknown statement kind")
	}
}

func (i *Interpreter) execFunctionDef(n *parser.FunctionDefStmt) *errs.Error {
	params := make([]string, len(n.Params))
	for idx, p := range n.Params {
		params[idx] = p.Literal
	}
	ref := i.defineFunction(n.Name.Literal, params, n.Body)

	if path, key, dotted := splitNamePath(n.Name.Literal); dotted {
		tbl, err := i.resolveTableByName(path)
		if err != nil {
			return err
		}
		tbl.Set(key, ref)
	}
	return nil
}

func (i *Interpreter) execAssignment(n *parser.AssignmentStmt) *errs.Error {
	v, err := i.evalExpr(n.Value)
	if err != nil {
		return err
	}
	return i.AssignVariable(n.Name.Literal, v, n.IsLocal)
}

func (i *Interpreter) execIf(n *parser.IfStmt) *errs.Error {
	cond, err := i.evalExpr(n.Cond)
	if err != nil {
		return err
	}
	if value.ToBool(cond) {
		return i.ExecStmts(n.Then)
	}
	if n.Else != nil {
		return i.ExecStmts(n.Else)
	}
	return nil
}

func (i *Interpreter) execWhile(n *parser.WhileStmt) *errs.Error {
	for {
		cond, err := i.evalExpr(n.Cond)
		if err != nil {
			return err
		}
		if !value.ToBool(cond) {
			return nil
		}
		if err := i.ExecStmts(n.Body); err != nil {
			return err
		}
		if i.hasReturn {
			return nil
		}
	}
}

// execFor implements the numeric for-loop. Termination is an equality
// check against the end value made after each body pass, so the end
// value itself is included in the iteration (`for i = 1, 3, 1` runs the
// body for 1, 2 and 3 and stops once i == 3). A step that never lands
// the variable exactly on the end value loops forever, a known
// limitation of equality-based termination.
func (i *Interpreter) execFor(n *parser.ForStmt) *errs.Error {
	startV, err := i.evalExpr(n.Start)
	if err != nil {
		return err
	}
	endV, err := i.evalExpr(n.End)
	if err != nil {
		return err
	}
	stepV, err := i.evalExpr(n.Step)
	if err != nil {
		return err
	}

	top := i.topFrame()
	varName := n.Var.Literal
	top[varName] = startV

	for {
		if err := i.ExecStmts(n.Body); err != nil {
			return err
		}
		if i.hasReturn {
			return nil
		}
		if value.Equal(top[varName], endV) {
			return nil
		}
		next := value.ToNum(top[varName]) + value.ToNum(stepV)
		top[varName] = value.Number(next)
	}
}

func (i *Interpreter) execReturn(n *parser.ReturnStmt) *errs.Error {
	v, err := i.evalExpr(n.Value)
	if err != nil {
		return err
	}
	i.returnVal = v
	i.hasReturn = true
	return nil
}
