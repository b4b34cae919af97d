package parser

import (
	"testing"

	"github.com/lunalang/luna/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustScan(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, errs := lexer.Scan(src)
	require.Empty(t, errs)
	return tokens
}

func TestParseLocalAssignment(t *testing.T) {
	stmts, err := Parse(mustScan(t, "local x = 2 + 3"))
	require.Nil(t, err)
	require.Len(t, stmts, 2) // assignment + EOF
	as, ok := stmts[0].(*AssignmentStmt)
	require.True(t, ok)
	assert.True(t, as.IsLocal)
	assert.Equal(t, "x", as.Name.Literal)
	assert.Equal(t, ExprNumber, as.Value.Type)
}

func TestParseFunctionCallStatement(t *testing.T) {
	stmts, err := Parse(mustScan(t, `print("hi")`))
	require.Nil(t, err)
	call, ok := stmts[0].(*FunctionCallStmt)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name.Literal)
	require.Len(t, call.Args, 1)
}

func TestParseIfElse(t *testing.T) {
	stmts, err := Parse(mustScan(t, "if 1 < 2 then\nprint(\"y\")\nelse\nprint(\"n\")\nend"))
	require.Nil(t, err)
	ifs, ok := stmts[0].(*IfStmt)
	require.True(t, ok)
	assert.Len(t, ifs.Then, 1)
	assert.Len(t, ifs.Else, 1)
}

func TestParseNestedIfTerminatesOnOuterEnd(t *testing.T) {
	src := "if 1 < 2 then\nif 3 < 4 then\nprint(\"inner\")\nend\nprint(\"outer\")\nend"
	stmts, err := Parse(mustScan(t, src))
	require.Nil(t, err)
	outer, ok := stmts[0].(*IfStmt)
	require.True(t, ok)
	// two statements in the outer then-branch: the nested if, and the
	// outer print call. This relies on scanBlockBody's level tracking,
	// which fixes the latent bug where a nested if's "end" could close
	// the outer if's block early.
	require.Len(t, outer.Then, 2)
	_, innerIsIf := outer.Then[0].(*IfStmt)
	assert.True(t, innerIsIf)
	_, outerPrintIsCall := outer.Then[1].(*FunctionCallStmt)
	assert.True(t, outerPrintIsCall)
}

func TestParseWhileLoop(t *testing.T) {
	stmts, err := Parse(mustScan(t, "local i = 0\nwhile i < 3 do\nprint(i)\ni = i + 1\nend"))
	require.Nil(t, err)
	ws, ok := stmts[1].(*WhileStmt)
	require.True(t, ok)
	assert.Len(t, ws.Body, 2)
}

func TestParseForLoop(t *testing.T) {
	stmts, err := Parse(mustScan(t, "for i = 1, 3, 1 do\nprint(i)\nend"))
	require.Nil(t, err)
	fs, ok := stmts[0].(*ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", fs.Var.Literal)
	assert.Len(t, fs.Body, 1)
}

func TestParseFunctionDef(t *testing.T) {
	stmts, err := Parse(mustScan(t, "function f(a, b)\nreturn a + b\nend"))
	require.Nil(t, err)
	fd, ok := stmts[0].(*FunctionDefStmt)
	require.True(t, ok)
	assert.Equal(t, "f", fd.Name.Literal)
	require.Len(t, fd.Params, 2)
	assert.Equal(t, "a", fd.Params[0].Literal)
	assert.Equal(t, "b", fd.Params[1].Literal)
}

func TestParseDottedTableAssignment(t *testing.T) {
	stmts, err := Parse(mustScan(t, "local t = {}\nt.x = 10"))
	require.Nil(t, err)
	as, ok := stmts[1].(*AssignmentStmt)
	require.True(t, ok)
	assert.Equal(t, "t.x", as.Name.Literal)
}

func TestParseBinOpExpressionIsFlat(t *testing.T) {
	expr, err := ParseExpr(mustScan(t, "2 + 3")[:3], 1)
	require.Nil(t, err)
	assert.Equal(t, ExprNumber, expr.Type)
	bo, ok := expr.Stmts[0].(*BinOpStmt)
	require.True(t, ok)
	assert.Equal(t, lexer.PLUS, bo.Op)
}

func TestParseExprMissingOperandIsError(t *testing.T) {
	tokens, _ := lexer.Scan("2 +")
	_, err := ParseExpr(tokens[:2], 1)
	assert.NotNil(t, err)
}

func TestParseChainedConcatIsError(t *testing.T) {
	// The grammar is strictly flat `left op right`; a second `..` makes
	// for a 5-token run, which must be rejected rather than silently
	// truncated to the first three tokens.
	tokens := mustScan(t, `"a" .. "b" .. "c"`)
	_, err := ParseExpr(tokens[:len(tokens)-1], 1) // drop the trailing EOF
	assert.NotNil(t, err)
}

func TestParseStatementCannotStartWithOperator(t *testing.T) {
	_, err := Parse(mustScan(t, "+ 2"))
	assert.NotNil(t, err)
}
