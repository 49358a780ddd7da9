package evaluator

import (
	"fmt"

	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// absentField is what projecting a missing field out of a struct value
// yields.
var absentField = &typesystem.Index{Value: 0}

// apply applies an evaluated function to an evaluated input.
func (e *Evaluator) apply(fn, input typesystem.Object, env *symbols.Environment) (typesystem.Object, error) {
	switch f := fn.(type) {
	case *typesystem.LambdaInstance:
		if args, ok := input.(*typesystem.StructInstance); ok {
			return e.applyStruct(f, args, env)
		}
		return e.applyCurried(f, input, env)

	case *typesystem.MapInstance:
		return lookup(fn, f, input), nil

	case *typesystem.StructType:
		if m, ok := f.Params.(*typesystem.MapInstance); ok {
			return lookup(fn, m, input), nil
		}
	case *typesystem.CaseType:
		if m, ok := f.Params.(*typesystem.MapInstance); ok {
			return lookup(fn, m, input), nil
		}

	case *typesystem.StructInstance:
		return e.applyField(f, input, env), nil
	}

	if isSymbolic(fn) {
		return &typesystem.ApplyFunction{Func: fn, Input: input}, nil
	}
	return nil, &ApplicationError{Func: fn, Input: input, Reason: reasonNotImplemented}
}

// applyStruct binds every parameter to the argument field of the same
// position and name. The bindings reach the result through substitution;
// the body is then evaluated under the caller's environment. When an
// argument mentions a name that a lambda inside the body binds, the
// application is left stuck rather than letting that lambda capture it.
func (e *Evaluator) applyStruct(f *typesystem.LambdaInstance, args *typesystem.StructInstance, env *symbols.Environment) (typesystem.Object, error) {
	if len(f.Params) != len(args.Fields) {
		return nil, &ApplicationError{
			Func:   f,
			Input:  args,
			Reason: fmt.Sprintf("%s: expected %d arguments, got %d", reasonParamsDisagree, len(f.Params), len(args.Fields)),
		}
	}

	bound := env
	for i, p := range f.Params {
		arg := args.Fields[i]
		if p.Name != arg.Name {
			return nil, &ApplicationError{
				Func:   f,
				Input:  args,
				Reason: fmt.Sprintf("%s: %s vs %s", reasonParamsDisagree, p.Name, arg.Name),
			}
		}
		declared, ok := e.substituteClosed(p.Type, bound)
		if !ok {
			return &typesystem.ApplyFunction{Func: f, Input: args}, nil
		}
		t, err := e.objectToType(declared, bound)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		bound = bound.Extend(p.Name, t, arg.Value)
	}

	body, ok := e.substituteClosed(f.Body, bound)
	if !ok {
		return &typesystem.ApplyFunction{Func: f, Input: args}, nil
	}
	return e.eval(body, env)
}

// applyCurried binds the first parameter only. With more parameters left the
// result is a smaller lambda over the same parameter names, whose declared
// types may depend on the value just supplied. An input that mentions one of
// those names would be captured by it, so that application stays stuck.
func (e *Evaluator) applyCurried(f *typesystem.LambdaInstance, input typesystem.Object, env *symbols.Environment) (typesystem.Object, error) {
	if len(f.Params) == 0 {
		return nil, &ApplicationError{
			Func:   f,
			Input:  input,
			Reason: reasonParamsDisagree + ": function takes no parameters",
		}
	}

	first := f.Params[0]
	declared, _ := e.substituteClosed(first.Type, env)
	t, err := e.objectToType(declared, env)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", first.Name, err)
	}
	bound := env.Extend(first.Name, t, input)

	var next typesystem.Object = f.Body
	if len(f.Params) > 1 {
		next = &typesystem.LambdaInstance{Params: f.Params[1:], Body: f.Body}
	}
	result, ok := e.substituteClosed(next, bound)
	if !ok {
		return &typesystem.ApplyFunction{Func: f, Input: input}, nil
	}
	return e.eval(result, env)
}

// lookup returns the value of the first entry whose key equals input, or
// the map default. A key that still depends on a parameter cannot be
// compared yet, so the application is returned unevaluated.
func lookup(fn typesystem.Object, m *typesystem.MapInstance, input typesystem.Object) typesystem.Object {
	if typesystem.HasFreeParameters(input) {
		return &typesystem.ApplyFunction{Func: fn, Input: input}
	}
	for _, entry := range m.Entries {
		if typesystem.ObjectsEqual(entry.Key, input) {
			return entry.Value
		}
	}
	return m.Default
}

// applyField projects a field out of a struct value.
func (e *Evaluator) applyField(s *typesystem.StructInstance, input typesystem.Object, env *symbols.Environment) typesystem.Object {
	key := e.substitute(input, env)
	if id, ok := key.(*typesystem.IdentifierInstance); ok {
		for _, f := range s.Fields {
			if f.Name == id.Name {
				return f.Value
			}
		}
		return absentField
	}
	if typesystem.HasFreeParameters(key) {
		return &typesystem.ApplyFunction{Func: s, Input: key}
	}
	return absentField
}

// isSymbolic reports whether an evaluated function is an unresolved
// parameter or an application that is itself stuck.
func isSymbolic(fn typesystem.Object) bool {
	switch fn.(type) {
	case *typesystem.ParameterObj, *typesystem.ApplyFunction:
		return true
	}
	return false
}
