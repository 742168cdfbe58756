package runtime

import "fmt"

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds a name in the current scope. Redefining an existing name
// rebinds it; the resolver rejects duplicate locals before execution, and
// globals may be redefined freely for REPL use.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign sets an existing variable by walking the scope chain. Returns an
// error if the name is not bound anywhere.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// GetAt reads a name from the environment exactly depth hops up the chain.
// Used for statically resolved references.
func (e *Environment) GetAt(depth int, name string) (Value, bool) {
	env := e.ancestor(depth)
	if env == nil {
		return nil, false
	}
	val, exists := env.values[name]
	return val, exists
}

// AssignAt writes a name in the environment exactly depth hops up the chain.
func (e *Environment) AssignAt(depth int, name string, value Value) error {
	env := e.ancestor(depth)
	if env == nil {
		return fmt.Errorf("undefined variable '%s'", name)
	}
	env.values[name] = value
	return nil
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.parent
	}
	return env
}
