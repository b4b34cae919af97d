// Package vm is the tree-walking interpreter: a stateful execution
// engine over the parser's []parser.Stmt, holding a scoped variable
// stack, a table heap, a function registry and an early-return sentinel.
package vm

import (
	"strings"

	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/value"
)

// NativeFunc is a host-registered function: it receives its evaluated
// arguments and mutable access to the interpreter, and may return nil to
// mean "no value" (normalised to Nil at the call site).
type NativeFunc func(args []value.Value, interp *Interpreter) (value.Value, error)

// Function is the stored form of either a Lua-level function (Params +
// Body) or a Native one.
type Function struct {
	Name     string
	IsNative bool
	Params   []string
	Body     []parser.Stmt
	Native   NativeFunc
}

// Interpreter carries every piece of state the execution model needs:
// a scoped variable stack, a table heap, a function registry, module
// load tracking and the early-return sentinel. It is not reentrant
// across goroutines and is expected to be short-lived.
type Interpreter struct {
	globals map[string]value.Value
	stack   []map[string]value.Value

	tables      map[int64]*value.Table
	nextTableID int64

	funcByName map[string]int64
	funcByID   map[int64]*Function
	nextFuncID int64

	modulesLoaded map[string]bool

	returnVal value.Value
	hasReturn bool

	currentLoc string
}

// New returns an interpreter with one (main) stack frame and empty
// globals/tables/functions.
func New() *Interpreter {
	return &Interpreter{
		globals:       make(map[string]value.Value),
		stack:         []map[string]value.Value{make(map[string]value.Value)},
		tables:        make(map[int64]*value.Table),
		funcByName:    make(map[string]int64),
		funcByID:      make(map[int64]*Function),
		modulesLoaded: make(map[string]bool),
	}
}

// StackDepth reports the current frame count, used to assert that after
// any call returns, the stack depth equals the depth observed before
// the call.
func (i *Interpreter) StackDepth() int { return len(i.stack) }

// HasPendingReturn reports whether return_val is set, used to assert
// that after any call returns, the pending return has been cleared.
func (i *Interpreter) HasPendingReturn() bool { return i.hasReturn }

func (i *Interpreter) pushFrame() {
	i.stack = append(i.stack, make(map[string]value.Value))
}

func (i *Interpreter) popFrame() {
	i.stack = i.stack[:len(i.stack)-1]
}

func (i *Interpreter) topFrame() map[string]value.Value {
	return i.stack[len(i.stack)-1]
}

// LoadLibrary registers a batch of native functions.
func (i *Interpreter) LoadLibrary(lib map[string]NativeFunc) {
	for name, fn := range lib {
		i.RegisterFunc(name, fn)
	}
}

// RegisterFunc registers a single native function; re-registering a name
// that already exists overwrites the previous binding (last writer wins
// on name collision).
func (i *Interpreter) RegisterFunc(name string, fn NativeFunc) {
	if id, ok := i.funcByName[name]; ok {
		i.funcByID[id] = &Function{Name: name, IsNative: true, Native: fn}
		return
	}
	i.nextFuncID++
	id := i.nextFuncID
	i.funcByID[id] = &Function{Name: name, IsNative: true, Native: fn}
	i.funcByName[name] = id
}

// defineFunction registers a Lua-level function body under name,
// returning its fresh FuncRef.
func (i *Interpreter) defineFunction(name string, params []string, body []parser.Stmt) value.FuncRef {
	i.nextFuncID++
	id := i.nextFuncID
	i.funcByID[id] = &Function{Name: name, Params: params, Body: body}
	i.funcByName[name] = id
	return value.FuncRef(id)
}

// resolveFuncID finds the function id a call expression's identifier
// refers to. A dotted name (a function stored in a table, e.g. `a.b()`)
// is resolved through the variable/table path instead of the registry.
func (i *Interpreter) resolveFuncID(name string) (int64, bool) {
	if !strings.Contains(name, ".") {
		id, ok := i.funcByName[name]
		return id, ok
	}
	v, err := i.getVariableValue(name)
	if err != nil {
		return 0, false
	}
	fr, ok := v.(value.FuncRef)
	if !ok {
		return 0, false
	}
	return int64(fr), true
}

// NewTable allocates a fresh table and returns its TableRef. TableIds are
// monotonically increasing and never reused.
func (i *Interpreter) NewTable() value.TableRef {
	i.nextTableID++
	id := i.nextTableID
	i.tables[id] = value.NewTable()
	return value.TableRef(id)
}

// splitNamePath splits name at its last '.' into (path, key).
func splitNamePath(name string) (path, key string, dotted bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+1:], true
}

// getVariableValue resolves a (possibly dotted) name to a Value,
// recursively walking intermediate tables. A bare name defaults to Nil
// when unbound; a non-table intermediate is a runtime error.
func (i *Interpreter) getVariableValue(name string) (value.Value, *errs.Error) {
	path, key, dotted := splitNamePath(name)
	if !dotted {
		return i.lookupBare(key), nil
	}
	base, err := i.getVariableValue(path)
	if err != nil {
		return nil, err
	}
	tbl, ok := base.(value.TableRef)
	if !ok {
		return nil, errs.NewRuntime(i.currentLoc, "attempt to index non-table value '%s'", path)
	}
	t := i.tables[int64(tbl)]
	if t == nil {
		return nil, errs.NewRuntime(i.currentLoc, "table %d no longer exists", int64(tbl))
	}
	return t.Get(key), nil
}

func (i *Interpreter) lookupBare(name string) value.Value {
	top := i.topFrame()
	if v, ok := top[name]; ok {
		return v
	}
	if v, ok := i.globals[name]; ok {
		return v
	}
	return value.Nil{}
}

// resolveTableByName resolves name to the *value.Table it names,
// erroring if the value is not a table (a non-table in the middle of a
// dotted path is a runtime error).
func (i *Interpreter) resolveTableByName(name string) (*value.Table, *errs.Error) {
	v, err := i.getVariableValue(name)
	if err != nil {
		return nil, err
	}
	tr, ok := v.(value.TableRef)
	if !ok {
		return nil, errs.NewRuntime(i.currentLoc, "attempt to assign through non-table path '%s'", name)
	}
	t := i.tables[int64(tr)]
	if t == nil {
		return nil, errs.NewRuntime(i.currentLoc, "table %d no longer exists", int64(tr))
	}
	return t, nil
}

// GetVariable implements the Host API's get_variable: the bool reports
// whether the path resolved cleanly (a bad intermediate table path
// yields false rather than a Go error, since this is a best-effort host
// accessor, not a statement dispatch path).
func (i *Interpreter) GetVariable(name string) (value.Value, bool) {
	v, err := i.getVariableValue(name)
	if err != nil {
		return value.Nil{}, false
	}
	return v, true
}

// AssignVariable implements the Host API's assign_variable: dotted names
// write through a table path; local writes always target the current
// top frame; otherwise a bare name already bound in the top frame is
// updated in place, and a new bare name is created in globals.
func (i *Interpreter) AssignVariable(name string, v value.Value, isLocal bool) *errs.Error {
	path, key, dotted := splitNamePath(name)
	if dotted {
		tbl, err := i.resolveTableByName(path)
		if err != nil {
			return err
		}
		tbl.Set(key, v)
		return nil
	}

	top := i.topFrame()
	if isLocal {
		top[name] = v
		return nil
	}
	if _, ok := top[name]; ok {
		top[name] = v
		return nil
	}
	i.globals[name] = v
	return nil
}
