package runtime

import (
	"io"
	"time"
)

// RegisterBuiltins adds native functions to the given environment.
func RegisterBuiltins(env *Environment, w io.Writer) {
	env.Define("clock", &BuiltinVal{
		Name:    "clock",
		NumArgs: 0,
		Fn: func(args []Value) (Value, error) {
			return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})

	env.Define("type", &BuiltinVal{
		Name:    "type",
		NumArgs: 1,
		Fn: func(args []Value) (Value, error) {
			return StringVal(args[0].TypeName()), nil
		},
	})

	env.Define("str", &BuiltinVal{
		Name:    "str",
		NumArgs: 1,
		Fn: func(args []Value) (Value, error) {
			return StringVal(args[0].String()), nil
		},
	})
}
