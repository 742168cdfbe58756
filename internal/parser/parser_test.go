package parser

import (
	"testing"

	"golox/internal/ast"
	"golox/internal/lexer"
)

// parseOK parses source and fails the test on any diagnostic.
func parseOK(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	stmts, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return stmts
}

// parseErrs parses source and returns the diagnostic codes.
func parseErrs(t *testing.T, source string) []string {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	_, diags := p.ParseProgram()
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

func TestParseVarDecl(t *testing.T) {
	stmts := parseOK(t, `var x = 42;`)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	decl, ok := stmts[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", stmts[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	if _, ok := decl.Init.(*ast.NumberLiteral); !ok {
		t.Errorf("expected NumberLiteral initializer, got %T", decl.Init)
	}
}

func TestParseVarDeclWithoutInit(t *testing.T) {
	stmts := parseOK(t, `var x;`)
	decl := stmts[0].(*ast.VarDeclStmt)
	if decl.Init != nil {
		t.Errorf("expected nil initializer, got %T", decl.Init)
	}
}

func TestPrecedence(t *testing.T) {
	stmts := parseOK(t, `1 + 2 * 3;`)
	expr := stmts[0].(*ast.ExprStmt).Expr
	add, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	if _, ok := add.Left.(*ast.NumberLiteral); !ok {
		t.Errorf("expected literal on left of '+', got %T", add.Left)
	}
	if _, ok := add.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("expected '*' to bind tighter, got %T on right", add.Right)
	}
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	stmts := parseOK(t, `(1 + 2) * 3;`)
	mul := stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
	if _, ok := mul.Left.(*ast.GroupingExpr); !ok {
		t.Errorf("expected grouping on left of '*', got %T", mul.Left)
	}
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	stmts := parseOK(t, `1 - 2 - 3;`)
	outer := stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
	if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected (1-2) as left operand, got %T", outer.Left)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	stmts := parseOK(t, `a = b = 1;`)
	outer, ok := stmts[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", stmts[0].(*ast.ExprStmt).Expr)
	}
	if outer.Name != "a" {
		t.Errorf("expected target 'a', got %q", outer.Name)
	}
	inner, ok := outer.Value.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected nested AssignExpr, got %T", outer.Value)
	}
	if inner.Name != "b" {
		t.Errorf("expected inner target 'b', got %q", inner.Name)
	}
}

func TestPropertyAssignment(t *testing.T) {
	stmts := parseOK(t, `a.b.c = 3;`)
	set, ok := stmts[0].(*ast.ExprStmt).Expr.(*ast.SetExpr)
	if !ok {
		t.Fatalf("expected SetExpr, got %T", stmts[0].(*ast.ExprStmt).Expr)
	}
	if set.Property != "c" {
		t.Errorf("expected property 'c', got %q", set.Property)
	}
	if _, ok := set.Object.(*ast.GetExpr); !ok {
		t.Errorf("expected GetExpr object, got %T", set.Object)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	codes := parseErrs(t, `1 = 2;`)
	if len(codes) == 0 || codes[0] != "E2002" {
		t.Fatalf("expected E2002, got %v", codes)
	}
	codes = parseErrs(t, `a + b = 3;`)
	if len(codes) == 0 || codes[0] != "E2002" {
		t.Fatalf("expected E2002, got %v", codes)
	}
}

func TestCallChaining(t *testing.T) {
	stmts := parseOK(t, `f(1)(2);`)
	outer, ok := stmts[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmts[0].(*ast.ExprStmt).Expr)
	}
	if _, ok := outer.Callee.(*ast.CallExpr); !ok {
		t.Errorf("expected nested call as callee, got %T", outer.Callee)
	}
}

func TestMethodCallOnCallResult(t *testing.T) {
	stmts := parseOK(t, `make().run();`)
	outer := stmts[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	get, ok := outer.Callee.(*ast.GetExpr)
	if !ok {
		t.Fatalf("expected GetExpr callee, got %T", outer.Callee)
	}
	if get.Property != "run" {
		t.Errorf("expected property 'run', got %q", get.Property)
	}
}

func TestParseFunction(t *testing.T) {
	stmts := parseOK(t, `fun add(a, b) { return a + b; }`)
	fn, ok := stmts[0].(*ast.FuncDeclStmt)
	if !ok {
		t.Fatalf("expected FuncDeclStmt, got %T", stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("expected add(a, b), got %s with %d params", fn.Name, len(fn.Params))
	}
}

func TestParseClass(t *testing.T) {
	stmts := parseOK(t, `
class B < A {
  init(x) {
    this.x = x;
  }
  get() {
    return this.x;
  }
}`)
	cls, ok := stmts[0].(*ast.ClassDeclStmt)
	if !ok {
		t.Fatalf("expected ClassDeclStmt, got %T", stmts[0])
	}
	if cls.Name != "B" {
		t.Errorf("expected class B, got %q", cls.Name)
	}
	if cls.Super == nil || cls.Super.Name != "A" {
		t.Errorf("expected superclass A, got %v", cls.Super)
	}
	if len(cls.Methods) != 2 {
		t.Errorf("expected 2 methods, got %d", len(cls.Methods))
	}
}

func TestParseSuper(t *testing.T) {
	stmts := parseOK(t, `
class B < A {
  run() {
    return super.run();
  }
}`)
	cls := stmts[0].(*ast.ClassDeclStmt)
	ret := cls.Methods[0].Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.CallExpr)
	sup, ok := call.Callee.(*ast.SuperExpr)
	if !ok {
		t.Fatalf("expected SuperExpr callee, got %T", call.Callee)
	}
	if sup.Method != "run" {
		t.Errorf("expected super.run, got %q", sup.Method)
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	stmts := parseOK(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	block, ok := stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected wrapping BlockStmt, got %T", stmts[0])
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected init + loop, got %d statements", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.VarDeclStmt); !ok {
		t.Errorf("expected VarDeclStmt init, got %T", block.Stmts[0])
	}
	loop, ok := block.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", block.Stmts[1])
	}
	if loop.Incr == nil {
		t.Error("expected increment expression to be preserved")
	}
}

func TestForWithoutClauses(t *testing.T) {
	stmts := parseOK(t, `for (;;) { break; }`)
	loop, ok := stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", stmts[0])
	}
	cond, ok := loop.Condition.(*ast.BoolLiteral)
	if !ok || !cond.Value {
		t.Errorf("expected 'true' condition, got %T", loop.Condition)
	}
	if loop.Incr != nil {
		t.Errorf("expected no increment, got %T", loop.Incr)
	}
}

func TestElseBindsToNearestIf(t *testing.T) {
	stmts := parseOK(t, `if (a) if (b) print 1; else print 2;`)
	outer := stmts[0].(*ast.IfStmt)
	if outer.Else != nil {
		t.Error("expected else to attach to inner if")
	}
	inner := outer.Then.(*ast.IfStmt)
	if inner.Else == nil {
		t.Error("expected inner if to carry the else branch")
	}
}

func TestMissingSemicolonReported(t *testing.T) {
	codes := parseErrs(t, `var x = 1`)
	if len(codes) == 0 || codes[0] != "E2001" {
		t.Fatalf("expected E2001, got %v", codes)
	}
}

func TestSynchronizeRecoversMultipleErrors(t *testing.T) {
	// Two independent mistakes separated by a statement boundary should
	// both be reported.
	codes := parseErrs(t, `
var = 1;
var x = 2;
var = 3;
`)
	if len(codes) < 2 {
		t.Fatalf("expected at least 2 diagnostics, got %v", codes)
	}
}

func TestNodeIDsAreUnique(t *testing.T) {
	stmts := parseOK(t, `
var a = 1;
fun f(x) {
  return x + a;
}
print f(2);
`)
	seen := make(map[int]bool)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		id := n.GetID()
		if seen[id] {
			t.Errorf("duplicate node ID %d", id)
		}
		seen[id] = true
		switch v := n.(type) {
		case *ast.VarDeclStmt:
			if v.Init != nil {
				walk(v.Init)
			}
		case *ast.FuncDeclStmt:
			walk(v.Body)
		case *ast.BlockStmt:
			for _, s := range v.Stmts {
				walk(s)
			}
		case *ast.ReturnStmt:
			if v.Value != nil {
				walk(v.Value)
			}
		case *ast.PrintStmt:
			walk(v.Expr)
		case *ast.ExprStmt:
			walk(v.Expr)
		case *ast.BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		case *ast.CallExpr:
			walk(v.Callee)
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	for _, s := range stmts {
		walk(s)
	}
}

func TestNewAtContinuesIDs(t *testing.T) {
	l := lexer.New(`var a = 1;`, "test.lox")
	tokens, _ := l.Tokenize()
	p1 := New(tokens)
	p1.ParseProgram()
	base := p1.LastID()

	l2 := lexer.New(`var b = 2;`, "test.lox")
	tokens2, _ := l2.Tokenize()
	p2 := NewAt(tokens2, base)
	stmts, _ := p2.ParseProgram()

	decl := stmts[0].(*ast.VarDeclStmt)
	if decl.GetID() <= base || decl.Init.GetID() <= base {
		t.Errorf("expected IDs above %d, got %d and %d", base, decl.GetID(), decl.Init.GetID())
	}
}
