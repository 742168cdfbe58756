// Package runtime implements the tree-walking evaluator and runtime value
// system for Lox.
package runtime

import (
	"fmt"

	"golox/internal/ast"
	"golox/internal/span"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// NumberVal represents a number. Lox has a single numeric type backed by
// a double-precision float.
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }
func (v NumberVal) String() string   { return fmt.Sprintf("%g", float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return fmt.Sprintf("%t", bool(v)) }

// NilVal represents nil.
type NilVal struct{}

func (v NilVal) TypeName() string { return "nil" }
func (v NilVal) String() string   { return "nil" }

// ---- Callable values ----

// Callable is implemented by values that can appear as the callee of a
// call expression: functions, builtins and classes. Hosts may Define
// additional Callable values in the global environment before Run.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value, callSite span.Span) (Value, error)
}

// FuncVal represents a user-defined function or method (closure). IsInit
// marks class initializers, whose calls always yield the instance.
type FuncVal struct {
	Name    string
	Params  []string
	Body    *ast.BlockStmt
	Closure *Environment
	IsInit  bool
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<fn %s>", v.Name) }
func (v *FuncVal) Arity() int       { return len(v.Params) }

// Bind returns a copy of the function whose closure has 'this' bound to
// the given instance.
func (v *FuncVal) Bind(instance *ObjectVal) *FuncVal {
	env := NewEnvironment(v.Closure)
	env.Define("this", instance)
	return &FuncVal{
		Name:    v.Name,
		Params:  v.Params,
		Body:    v.Body,
		Closure: env,
		IsInit:  v.IsInit,
	}
}

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a built-in (native) function.
type BuiltinVal struct {
	Name    string
	NumArgs int
	Fn      BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<native fn %s>", v.Name) }
func (v *BuiltinVal) Arity() int       { return v.NumArgs }

// ---- Class values ----

// ClassVal represents a class. Calling a class instantiates it.
type ClassVal struct {
	Name    string
	Super   *ClassVal // may be nil
	Methods map[string]*FuncVal
}

func (v *ClassVal) TypeName() string { return "class" }
func (v *ClassVal) String() string   { return fmt.Sprintf("<class %s>", v.Name) }

// Arity of a class is the arity of its init method, if any.
func (v *ClassVal) Arity() int {
	if init := v.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// FindMethod looks up a method on the class or its superclass chain.
func (v *ClassVal) FindMethod(name string) *FuncVal {
	for cls := v; cls != nil; cls = cls.Super {
		if method, ok := cls.Methods[name]; ok {
			return method
		}
	}
	return nil
}

// ObjectVal represents an instance of a class.
type ObjectVal struct {
	Class  *ClassVal
	Fields map[string]Value
}

func (v *ObjectVal) TypeName() string { return "object" }
func (v *ObjectVal) String() string   { return fmt.Sprintf("<%s instance>", v.Class.Name) }

// ---- Truthiness and equality ----

// IsTruthy reports whether a value is truthy. Only nil and false are
// falsy; zero and the empty string are truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// ValuesEqual implements Lox equality. Values of different types are never
// equal; there is no numeric or string coercion. Functions, classes and
// objects compare by identity.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case NumberVal:
		bv, ok := b.(NumberVal)
		return ok && av == bv
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	default:
		return a == b
	}
}
