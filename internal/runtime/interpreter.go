package runtime

import (
	"fmt"
	"io"
	"strings"

	"golox/internal/ast"
	"golox/internal/span"
	"golox/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone     ExecSignal = iota
	SigReturn              // return from function
	SigBreak               // break from loop
	SigContinue            // continue in loop
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation. Stack holds a
// snapshot of the call stack at the point of failure, innermost frame last.
type RuntimeError struct {
	Message string
	Span    span.Span
	Stack   []string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
	for idx := len(e.Stack) - 1; idx >= 0; idx-- {
		fmt.Fprintf(&b, "\n  in %s", e.Stack[idx])
	}
	return b.String()
}

// maxCallDepth bounds recursion so runaway programs fail with a Lox error
// instead of exhausting the Go stack.
const maxCallDepth = 1024

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. A single interpreter may run
// multiple programs in sequence (the REPL does this); globals persist
// across runs.
type Interpreter struct {
	globals *Environment
	env     *Environment
	output  io.Writer

	// locals maps AST node IDs to resolved scope depths. Accumulated
	// across runs; node IDs are unique per interpreter lifetime.
	locals map[int]int

	callStack []string
}

// NewInterpreter creates a new interpreter with built-in functions registered.
func NewInterpreter(output io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	RegisterBuiltins(globals, output)
	return &Interpreter{
		globals: globals,
		env:     globals,
		output:  output,
		locals:  make(map[int]int),
	}
}

// Run executes a resolved program. The locals table comes from the
// resolver; it is merged into the interpreter's accumulated table so
// closures from earlier runs keep their resolved depths.
func (i *Interpreter) Run(stmts []ast.Stmt, locals map[int]int) error {
	for id, depth := range locals {
		i.locals[id] = depth
	}
	for _, stmt := range stmts {
		if _, err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

func (i *Interpreter) err(s span.Span, format string, args ...interface{}) *RuntimeError {
	stack := make([]string, len(i.callStack))
	copy(stack, i.callStack)
	return &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Span:    s,
		Stack:   stack,
	}
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, val.String())
		return resultNone, nil

	case *ast.VarDeclStmt:
		var val Value = NilVal{}
		if s.Init != nil {
			v, err := i.evalExpr(s.Init)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		i.env.Define(s.Name, val)
		return resultNone, nil

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FuncDeclStmt:
		fn := &FuncVal{
			Name:    s.Name,
			Params:  s.Params,
			Body:    s.Body,
			Closure: i.env,
		}
		i.env.Define(s.Name, fn)
		return resultNone, nil

	case *ast.ClassDeclStmt:
		return i.execClassDecl(s)

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.BreakStmt:
		return ExecResult{Signal: SigBreak}, nil

	case *ast.ContinueStmt:
		return ExecResult{Signal: SigContinue}, nil

	default:
		return resultNone, i.err(stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}
	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

// execWhile runs a while loop. The increment slot, filled by for-loop
// desugaring, runs after every iteration including ones cut short by
// continue.
func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigBreak {
			break
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}

		if s.Incr != nil {
			if _, err := i.evalExpr(s.Incr); err != nil {
				return resultNone, err
			}
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execClassDecl(s *ast.ClassDeclStmt) (ExecResult, error) {
	var super *ClassVal
	if s.Super != nil {
		superVal, err := i.evalExpr(s.Super)
		if err != nil {
			return resultNone, err
		}
		cls, ok := superVal.(*ClassVal)
		if !ok {
			return resultNone, i.err(s.Super.GetSpan(), "superclass must be a class, got '%s'", superVal.TypeName())
		}
		super = cls
	}

	i.env.Define(s.Name, NilVal{})

	// Methods close over an environment holding 'super' so that super
	// dispatch binds to the superclass at declaration time.
	methodEnv := i.env
	if super != nil {
		methodEnv = NewEnvironment(i.env)
		methodEnv.Define("super", super)
	}

	methods := make(map[string]*FuncVal, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name] = &FuncVal{
			Name:    m.Name,
			Params:  m.Params,
			Body:    m.Body,
			Closure: methodEnv,
			IsInit:  m.Name == "init",
		}
	}

	cls := &ClassVal{Name: s.Name, Super: super, Methods: methods}
	i.env.Define(s.Name, cls)
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NumberVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NilLiteral:
		return NilVal{}, nil
	case *ast.GroupingExpr:
		return i.evalExpr(e.Inner)
	case *ast.IdentExpr:
		return i.lookUpVariable(e.GetID(), e.Name, e.GetSpan())
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.GetExpr:
		return i.evalGet(e)
	case *ast.SetExpr:
		return i.evalSet(e)
	case *ast.ThisExpr:
		return i.lookUpVariable(e.GetID(), "this", e.GetSpan())
	case *ast.SuperExpr:
		return i.evalSuper(e)
	default:
		return nil, i.err(expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

// lookUpVariable reads a variable through the resolved depth table when an
// entry exists, falling back to the global environment otherwise.
func (i *Interpreter) lookUpVariable(id int, name string, s span.Span) (Value, error) {
	if depth, ok := i.locals[id]; ok {
		val, exists := i.env.GetAt(depth, name)
		if !exists {
			return nil, i.err(s, "undefined variable '%s'", name)
		}
		return val, nil
	}
	val, exists := i.globals.Get(name)
	if !exists {
		return nil, i.err(s, "undefined variable '%s'", name)
	}
	return val, nil
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if depth, ok := i.locals[e.GetID()]; ok {
		if err := i.env.AssignAt(depth, e.Name, val); err != nil {
			return nil, i.err(e.GetSpan(), "%s", err)
		}
		return val, nil
	}
	if err := i.globals.Assign(e.Name, val); err != nil {
		return nil, i.err(e.GetSpan(), "%s", err)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		num, ok := operand.(NumberVal)
		if !ok {
			return nil, i.err(e.GetSpan(), "operand of '-' must be a number, got '%s'", operand.TypeName())
		}
		return NumberVal(-float64(num)), nil
	default:
		return nil, i.err(e.GetSpan(), "unknown unary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.EQ:
		return BoolVal(ValuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!ValuesEqual(left, right)), nil
	}

	// '+' concatenates when both operands are strings; no coercion between
	// numbers and strings.
	if e.Op == token.PLUS {
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return StringVal(string(ls) + string(rs)), nil
			}
		}
		ln, leftNum := left.(NumberVal)
		rn, rightNum := right.(NumberVal)
		if leftNum && rightNum {
			return NumberVal(float64(ln) + float64(rn)), nil
		}
		return nil, i.err(e.GetSpan(), "operands of '+' must be two numbers or two strings, got '%s' and '%s'",
			left.TypeName(), right.TypeName())
	}

	ln, leftNum := left.(NumberVal)
	rn, rightNum := right.(NumberVal)
	if !leftNum || !rightNum {
		return nil, i.err(e.GetSpan(), "operands of '%s' must be numbers, got '%s' and '%s'",
			e.Op, left.TypeName(), right.TypeName())
	}
	lf, rf := float64(ln), float64(rn)

	switch e.Op {
	case token.MINUS:
		return NumberVal(lf - rf), nil
	case token.STAR:
		return NumberVal(lf * rf), nil
	case token.SLASH:
		// IEEE semantics: division by zero yields an infinity or NaN.
		return NumberVal(lf / rf), nil
	case token.LT:
		return BoolVal(lf < rf), nil
	case token.LTE:
		return BoolVal(lf <= rf), nil
	case token.GT:
		return BoolVal(lf > rf), nil
	case token.GTE:
		return BoolVal(lf >= rf), nil
	default:
		return nil, i.err(e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == token.KW_OR {
		if IsTruthy(left) {
			return left, nil // short-circuit, operand value not coerced
		}
		return i.evalExpr(e.Right)
	}
	// and
	if !IsTruthy(left) {
		return left, nil
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, i.err(e.GetSpan(), "value of type '%s' is not callable", callee.TypeName())
	}
	if len(args) != callable.Arity() {
		return nil, i.err(e.GetSpan(), "expected %d arguments but got %d", callable.Arity(), len(args))
	}
	return callable.Call(i, args, e.GetSpan())
}

// Call invokes a user-defined function or bound method.
func (v *FuncVal) Call(i *Interpreter, args []Value, callSite span.Span) (Value, error) {
	return i.callFunction(v, args, callSite)
}

// Call invokes a native function, wrapping its error with the call site.
func (v *BuiltinVal) Call(i *Interpreter, args []Value, callSite span.Span) (Value, error) {
	result, err := v.Fn(args)
	if err != nil {
		return nil, i.err(callSite, "%s", err)
	}
	return result, nil
}

// Call instantiates the class.
func (v *ClassVal) Call(i *Interpreter, args []Value, callSite span.Span) (Value, error) {
	return i.instantiate(v, args, callSite)
}

// callFunction invokes a user-defined function with its own environment
// chained off the closure. Initializers always return the instance.
func (i *Interpreter) callFunction(fn *FuncVal, args []Value, callSite span.Span) (Value, error) {
	if len(i.callStack) >= maxCallDepth {
		return nil, i.err(callSite, "stack overflow")
	}

	frame := fmt.Sprintf("%s at %d:%d", fn.Name, callSite.Start.Line, callSite.Start.Column)
	i.callStack = append(i.callStack, frame)
	defer func() { i.callStack = i.callStack[:len(i.callStack)-1] }()

	fnEnv := NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		fnEnv.Define(param, args[idx])
	}

	result, err := i.execBlock(fn.Body.Stmts, fnEnv)
	if err != nil {
		return nil, err
	}

	if fn.IsInit {
		this, _ := fn.Closure.GetAt(0, "this")
		return this, nil
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}

// instantiate creates a new instance of a class and runs its initializer
// if one is declared.
func (i *Interpreter) instantiate(cls *ClassVal, args []Value, callSite span.Span) (Value, error) {
	instance := &ObjectVal{Class: cls, Fields: make(map[string]Value)}
	if init := cls.FindMethod("init"); init != nil {
		if _, err := i.callFunction(init.Bind(instance), args, callSite); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// evalGet resolves obj.name: fields shadow methods, and method lookup
// walks the superclass chain.
func (i *Interpreter) evalGet(e *ast.GetExpr) (Value, error) {
	obj, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}

	instance, ok := obj.(*ObjectVal)
	if !ok {
		return nil, i.err(e.GetSpan(), "only instances have properties, got '%s'", obj.TypeName())
	}

	if val, exists := instance.Fields[e.Property]; exists {
		return val, nil
	}
	if method := instance.Class.FindMethod(e.Property); method != nil {
		return method.Bind(instance), nil
	}
	return nil, i.err(e.GetSpan(), "undefined property '%s'", e.Property)
}

func (i *Interpreter) evalSet(e *ast.SetExpr) (Value, error) {
	obj, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}

	instance, ok := obj.(*ObjectVal)
	if !ok {
		return nil, i.err(e.GetSpan(), "only instances have fields, got '%s'", obj.TypeName())
	}

	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[e.Property] = val
	return val, nil
}

// evalSuper dispatches super.method using the statically resolved 'super'
// binding; 'this' lives one scope inside it.
func (i *Interpreter) evalSuper(e *ast.SuperExpr) (Value, error) {
	depth, ok := i.locals[e.GetID()]
	if !ok {
		return nil, i.err(e.GetSpan(), "'super' used outside of a class")
	}

	superVal, _ := i.env.GetAt(depth, "super")
	superClass, ok := superVal.(*ClassVal)
	if !ok {
		return nil, i.err(e.GetSpan(), "'super' is not bound to a class")
	}

	thisVal, _ := i.env.GetAt(depth-1, "this")
	instance, ok := thisVal.(*ObjectVal)
	if !ok {
		return nil, i.err(e.GetSpan(), "'this' is not bound in super call")
	}

	method := superClass.FindMethod(e.Method)
	if method == nil {
		return nil, i.err(e.GetSpan(), "undefined property '%s'", e.Method)
	}
	return method.Bind(instance), nil
}
