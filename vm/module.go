package vm

import (
	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/value"
)

// Run executes a top-level program against the main frame.
func (i *Interpreter) Run(stmts []parser.Stmt) *errs.Error {
	return i.ExecStmts(stmts)
}

// LoadModule runs a parsed module body in a fresh frame and returns its
// captured value. A name that has already been loaded is rejected.
// Execution stops early only when the pending return becomes a Table; a
// Return of any other value does not short-circuit the loop, but
// ExecStmt's own pending-return check makes every statement after a
// Return a no-op regardless, so the two paths are observably
// equivalent. The name is marked loaded before execution begins: a
// module that errors partway through is still considered loaded, so a
// second attempt is rejected rather than re-run with partial side
// effects.
func (i *Interpreter) LoadModule(name string, stmts []parser.Stmt) (value.Value, *errs.Error) {
	if i.modulesLoaded[name] {
		return nil, errs.NewRuntime(name, "module %q is already loaded", name)
	}
	i.modulesLoaded[name] = true

	i.pushFrame()
	for _, s := range stmts {
		if err := i.ExecStmt(s); err != nil {
			i.popFrame()
			return nil, err
		}
		if i.hasReturn {
			if _, isTable := i.returnVal.(value.TableRef); isTable {
				break
			}
		}
	}

	result := value.Value(value.Nil{})
	if i.hasReturn {
		result = i.returnVal
	}
	i.hasReturn = false
	i.returnVal = nil
	i.popFrame()

	return result, nil
}
