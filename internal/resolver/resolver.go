// Package resolver performs static scope resolution for Lox.
//
// It walks the AST once, computing for every variable reference how many
// lexical scopes separate the use site from the declaring scope. The result
// is a side-table keyed by AST node ID; references without an entry resolve
// dynamically in the global environment. The walk also validates scope
// rules: this/super placement, return placement, break/continue placement,
// and self-inheritance.
package resolver

import (
	"golox/internal/ast"
	"golox/internal/diag"
	"golox/internal/span"
)

// Table maps AST node IDs to scope depths (0 = innermost scope at the use
// site). Absent entries mean the name resolves in the global environment.
type Table map[int]int

type funcKind int

const (
	funcNone funcKind = iota
	funcFunction
	funcMethod
	funcInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// Resolver holds the walk state: a stack of lexical scopes plus the
// enclosing function/class/loop context used for placement checks.
type Resolver struct {
	scopes    []map[string]bool // name -> defined (false while its initializer runs)
	table     Table
	diags     []diag.Diagnostic
	curFunc   funcKind
	curClass  classKind
	loopDepth int

	// globalNames tracks globals declared earlier in this unit;
	// declaringGlobal is the name whose initializer is being resolved at
	// global scope, so 'var a = a;' is caught there too.
	globalNames     map[string]bool
	declaringGlobal string
}

// Resolve walks the statements and returns the depth table and any
// diagnostics. Resolution is a pure function of the AST: resolving the same
// tree twice yields the same table. Any diagnostic blocks evaluation.
func Resolve(stmts []ast.Stmt) (Table, []diag.Diagnostic) {
	r := &Resolver{table: make(Table), globalNames: make(map[string]bool)}
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
	return r.table, r.diags
}

func (r *Resolver) error(code string, s span.Span, format string, args ...interface{}) {
	r.diags = append(r.diags, diag.Errorf(diag.Resolve, code, s, format, args...))
}

// ---- scope helpers ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name as existing but not yet usable in the current scope.
// At global scope (empty stack) declarations are unchecked: the REPL may
// rebind names freely.
func (r *Resolver) declare(name string, s span.Span) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name]; exists {
		r.error("E3002", s, "variable '%s' already declared in this scope", name)
	}
	scope[name] = false
}

// define marks a declared name as initialized and usable.
func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records the scope depth for a reference, counting outward
// from the innermost scope. Names not found in any enclosing scope are left
// for the global environment at runtime.
func (r *Resolver) resolveLocal(id int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.table[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

// ---- statements ----

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.VarDeclStmt:
		r.declare(s.Name, s.GetSpan())
		if s.Init != nil {
			if len(r.scopes) == 0 && !r.globalNames[s.Name] {
				prev := r.declaringGlobal
				r.declaringGlobal = s.Name
				r.resolveExpr(s.Init)
				r.declaringGlobal = prev
			} else {
				r.resolveExpr(s.Init)
			}
		}
		r.define(s.Name)
		if len(r.scopes) == 0 {
			r.globalNames[s.Name] = true
		}

	case *ast.BlockStmt:
		r.beginScope()
		for _, inner := range s.Stmts {
			r.resolveStmt(inner)
		}
		r.endScope()

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		if s.Incr != nil {
			r.resolveExpr(s.Incr)
		}
		r.loopDepth--

	case *ast.FuncDeclStmt:
		// Define eagerly so the function can refer to itself recursively.
		r.declare(s.Name, s.GetSpan())
		r.define(s.Name)
		if len(r.scopes) == 0 {
			r.globalNames[s.Name] = true
		}
		r.resolveFunction(s, funcFunction)

	case *ast.ClassDeclStmt:
		r.resolveClass(s)

	case *ast.ReturnStmt:
		if r.curFunc == funcNone {
			r.error("E3003", s.GetSpan(), "return outside of function")
		}
		if s.Value != nil {
			if r.curFunc == funcInitializer {
				r.error("E3004", s.GetSpan(), "cannot return a value from an initializer")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.error("E3008", s.GetSpan(), "break outside of loop")
		}

	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			r.error("E3008", s.GetSpan(), "continue outside of loop")
		}
	}
}

// resolveFunction resolves a function or method body in a fresh scope with
// its parameters defined. Loop context does not cross function boundaries.
func (r *Resolver) resolveFunction(fn *ast.FuncDeclStmt, kind funcKind) {
	enclosingFunc := r.curFunc
	enclosingLoop := r.loopDepth
	r.curFunc = kind
	r.loopDepth = 0

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param, fn.GetSpan())
		r.define(param)
	}
	for _, stmt := range fn.Body.Stmts {
		r.resolveStmt(stmt)
	}
	r.endScope()

	r.loopDepth = enclosingLoop
	r.curFunc = enclosingFunc
}

// resolveClass resolves a class declaration, installing the implicit
// 'super' and 'this' scopes around the method bodies.
func (r *Resolver) resolveClass(s *ast.ClassDeclStmt) {
	enclosing := r.curClass
	r.curClass = classClass

	r.declare(s.Name, s.GetSpan())
	r.define(s.Name)
	if len(r.scopes) == 0 {
		r.globalNames[s.Name] = true
	}

	if s.Super != nil {
		if s.Super.Name == s.Name {
			r.error("E3007", s.Super.GetSpan(), "class '%s' cannot inherit from itself", s.Name)
		} else {
			r.resolveExpr(s.Super)
		}
		r.curClass = classSubclass
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := funcMethod
		if method.Name == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()
	if s.Super != nil {
		r.endScope()
	}

	r.curClass = enclosing
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		// nothing to resolve

	case *ast.IdentExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name]; ok && !defined {
				r.error("E3001", e.GetSpan(), "cannot read variable '%s' in its own initializer", e.Name)
				return
			}
		} else if e.Name == r.declaringGlobal {
			r.error("E3001", e.GetSpan(), "cannot read variable '%s' in its own initializer", e.Name)
			return
		}
		r.resolveLocal(e.GetID(), e.Name)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.GetID(), e.Name)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Value)

	case *ast.ThisExpr:
		if r.curClass == classNone {
			r.error("E3005", e.GetSpan(), "'this' used outside of a class")
			return
		}
		r.resolveLocal(e.GetID(), "this")

	case *ast.SuperExpr:
		switch r.curClass {
		case classNone:
			r.error("E3006", e.GetSpan(), "'super' used outside of a class")
		case classClass:
			r.error("E3006", e.GetSpan(), "'super' used in a class with no superclass")
		default:
			r.resolveLocal(e.GetID(), "super")
		}
	}
}
