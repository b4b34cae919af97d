package vm_test

import (
	"bytes"
	"testing"

	"github.com/lunalang/luna/lexer"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/stdlib"
	"github.com/lunalang/luna/value"
	"github.com/lunalang/luna/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run parses and executes src against a fresh interpreter whose print
// native appends to a capture buffer with tab separators and a trailing
// newline, and returns what was printed.
func run(t *testing.T, src string) string {
	t.Helper()
	tokens, lexErrs := lexer.Scan(src)
	require.Empty(t, lexErrs)
	stmts, perr := parser.Parse(tokens)
	require.Nil(t, perr)

	var buf bytes.Buffer
	interp := vm.New()
	interp.LoadLibrary(stdlib.New(&buf))
	rerr := interp.Run(stmts)
	require.Nil(t, rerr)
	return buf.String()
}

func TestPrintStringLiteral(t *testing.T) {
	assert.Equal(t, "hi\t\n", run(t, `print("hi")`))
}

func TestLocalAssignmentWithArithmetic(t *testing.T) {
	assert.Equal(t, "5\t\n", run(t, "local x = 2 + 3\nprint(x)"))
}

func TestConcatExpression(t *testing.T) {
	assert.Equal(t, "ab\t\n", run(t, `print("a" .. "b")`))
}

// A chained concat has five tokens in its argument expression, not the
// flat grammar's three; it must be rejected at parse time rather than
// silently evaluated with the middle operand dropped.
func TestChainedConcatIsRejectedNotTruncated(t *testing.T) {
	tokens, lexErrs := lexer.Scan(`print("a" .. "b" .. "c")`)
	require.Empty(t, lexErrs)
	_, perr := parser.Parse(tokens)
	assert.NotNil(t, perr)
}

func TestIfElseTakesTrueBranch(t *testing.T) {
	assert.Equal(t, "y\t\n", run(t, "if 1 < 2 then print(\"y\") else print(\"n\") end"))
}

func TestWhileLoopCountsUp(t *testing.T) {
	assert.Equal(t, "0\t\n1\t\n2\t\n", run(t, "local i = 0\nwhile i < 3 do print(i) i = i + 1 end"))
}

// The end value is included: the equality check against the end value
// runs after each body pass, so `for i = 1, 3, 1` prints 1, 2 and 3 and
// terminates once i == 3.
func TestForLoopIncludesEndValue(t *testing.T) {
	assert.Equal(t, "1\t\n2\t\n3\t\n", run(t, "for i = 1, 3, 1 do print(i) end"))
}

func TestFunctionDefAndCall(t *testing.T) {
	assert.Equal(t, "7\t\n", run(t, "function f(a, b) return a + b end\nprint(f(2,5))"))
}

func TestTableFieldAssignment(t *testing.T) {
	assert.Equal(t, "10\t\n", run(t, "local t = {}\nt.x = 10\nprint(t.x)"))
}

// A function defined under a dotted name is stored into the table as a
// function value, and a dotted call resolves it through the
// variable/table path rather than the plain function registry.
func TestDottedFunctionCallResolution(t *testing.T) {
	src := "local t = {}\nfunction t.f(x) return x + 1 end\nprint(t.f(4))"
	assert.Equal(t, "5\t\n", run(t, src))
}

// Calls with the wrong argument count are not an error: missing
// parameters are bound to nil, extra arguments are dropped.
func TestCallArityMismatchPadsAndDrops(t *testing.T) {
	src := "function f(a, b) return a .. b end\nprint(f(\"x\"))\nprint(f(\"x\", \"y\", \"z\"))"
	assert.Equal(t, "xnil\t\nxy\t\n", run(t, src))
}

func TestStackDepthRestoredAfterCall(t *testing.T) {
	tokens, _ := lexer.Scan("function f() return 1 end\nlocal x = f()")
	stmts, perr := parser.Parse(tokens)
	require.Nil(t, perr)

	var buf bytes.Buffer
	interp := vm.New()
	interp.LoadLibrary(stdlib.New(&buf))
	before := interp.StackDepth()
	rerr := interp.Run(stmts)
	require.Nil(t, rerr)
	assert.Equal(t, before, interp.StackDepth())
	assert.False(t, interp.HasPendingReturn())
}

func TestLocalAssignmentNeverWritesGlobalWhenShadowing(t *testing.T) {
	tokens, _ := lexer.Scan("x = 1\nfunction f()\nlocal x = 2\nreturn x\nend\nlocal y = f()\nprint(x)")
	stmts, perr := parser.Parse(tokens)
	require.Nil(t, perr)

	var buf bytes.Buffer
	interp := vm.New()
	interp.LoadLibrary(stdlib.New(&buf))
	rerr := interp.Run(stmts)
	require.Nil(t, rerr)
	// the global x must remain 1: f's `local x = 2` must not leak out.
	assert.Equal(t, "1\t\n", buf.String())
}

func TestModuleReloadRejected(t *testing.T) {
	tokens, _ := lexer.Scan("local t = {}\nreturn t")
	stmts, perr := parser.Parse(tokens)
	require.Nil(t, perr)

	interp := vm.New()
	_, err := interp.LoadModule("mymodule", stmts)
	require.Nil(t, err)
	_, err = interp.LoadModule("mymodule", stmts)
	assert.NotNil(t, err)
}

func TestModuleReturnsTable(t *testing.T) {
	tokens, _ := lexer.Scan("local t = {}\nt.answer = 42\nreturn t")
	stmts, perr := parser.Parse(tokens)
	require.Nil(t, perr)

	interp := vm.New()
	result, err := interp.LoadModule("answers", stmts)
	require.Nil(t, err)
	_, ok := result.(value.TableRef)
	require.True(t, ok)
}
