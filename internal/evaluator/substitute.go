package evaluator

import (
	"sort"

	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Substitute replaces every free parameter reference in expr that env binds
// with its bound object. Unbound references are left in place, so it is safe
// to call on open terms and calling it twice changes nothing more.
func (e *Evaluator) Substitute(expr typesystem.Object, env *symbols.Environment) typesystem.Object {
	e.resetBudget()
	return e.substitute(expr, env)
}

func (e *Evaluator) substitute(expr typesystem.Object, env *symbols.Environment) typesystem.Object {
	switch o := expr.(type) {
	case nil:
		return nil

	case *typesystem.Index, *typesystem.CountType, *typesystem.TypeType,
		*typesystem.IdentifierType, *typesystem.IdentifierInstance:
		return expr

	case *typesystem.ParameterObj:
		if obj, ok := env.ObjectOf(o.Name); ok {
			return obj
		}
		return expr

	case *typesystem.MapType:
		return &typesystem.MapType{
			Key:     e.substitute(o.Key, env),
			Value:   e.substitute(o.Value, env),
			Default: e.substitute(o.Default, env),
		}

	case *typesystem.MapInstance:
		return e.substituteMap(o, env)

	case *typesystem.LambdaInstance:
		return e.substituteLambda(o, env)

	case *typesystem.ApplyFunction:
		return &typesystem.ApplyFunction{
			Func:  e.substitute(o.Func, env),
			Input: e.substitute(o.Input, env),
		}

	case *typesystem.StructType:
		return &typesystem.StructType{Params: e.substitute(o.Params, env)}

	case *typesystem.StructInstance:
		fields := make([]typesystem.NamedObject, len(o.Fields))
		for i, f := range o.Fields {
			fields[i] = typesystem.NamedObject{Name: f.Name, Value: e.substitute(f.Value, env)}
		}
		return &typesystem.StructInstance{Fields: fields}

	case *typesystem.CaseType:
		return &typesystem.CaseType{Params: e.substitute(o.Params, env)}

	case *typesystem.CaseInstance:
		return &typesystem.CaseInstance{Constructor: o.Constructor, Payload: e.substitute(o.Payload, env)}

	case *typesystem.SubtypeType:
		return &typesystem.SubtypeType{Parent: e.substitute(o.Parent, env)}

	case *typesystem.SubtypeFromMap:
		if o.Predicate == nil {
			return o
		}
		return &typesystem.SubtypeFromMap{Predicate: e.substituteMap(o.Predicate, env)}

	case *typesystem.IncrementType:
		return &typesystem.IncrementType{Base: e.substitute(o.Base, env)}
	}
	return expr
}

func (e *Evaluator) substituteMap(m *typesystem.MapInstance, env *symbols.Environment) *typesystem.MapInstance {
	entries := make([]typesystem.MapEntry, len(m.Entries))
	for i, entry := range m.Entries {
		entries[i] = typesystem.MapEntry{
			Key:   e.substitute(entry.Key, env),
			Value: e.substitute(entry.Value, env),
		}
	}
	return &typesystem.MapInstance{Entries: entries, Default: e.substitute(m.Default, env)}
}

// substituteLambda opens the lambda's parameters before touching the body:
// a parameter that shadows an outer binding resolves to itself, not to the
// outer value. Parameter names are never changed. A free name whose value
// mentions one of the parameters is left unsubstituted and the capture is
// recorded; see substituteClosed.
func (e *Evaluator) substituteLambda(l *typesystem.LambdaInstance, env *symbols.Environment) typesystem.Object {
	if blocked := capturedNames(l, env); len(blocked) > 0 {
		e.captured = true
		for _, name := range blocked {
			env = env.NewUntypedParam(name)
		}
	}

	inner := env
	params := make([]typesystem.Param, len(l.Params))
	for i, p := range l.Params {
		declared := e.substitute(p.Type, inner)
		params[i] = typesystem.Param{Name: p.Name, Type: declared}
		inner = e.openParam(p.Name, declared, inner)
	}
	return &typesystem.LambdaInstance{Params: params, Body: e.substitute(l.Body, inner)}
}

// openParam binds name as a fresh parameter. When the declared type cannot be
// read as a type yet (it may still be symbolic) the parameter is opened
// untyped; it shadows outer bindings either way.
func (e *Evaluator) openParam(name string, declared typesystem.Object, env *symbols.Environment) *symbols.Environment {
	if t, err := e.objectToType(declared, env); err == nil {
		return env.NewParam(name, t)
	}
	return env.NewUntypedParam(name)
}

// capturedNames lists the free names of l whose bound objects mention one of
// l's parameters. Substituting them into l would bind the inserted reference
// to the parameter instead of the outer name.
func capturedNames(l *typesystem.LambdaInstance, env *symbols.Environment) []string {
	own := make(map[string]bool, len(l.Params))
	for _, p := range l.Params {
		own[p.Name] = true
	}

	var blocked []string
	for name := range typesystem.FreeParameters(l) {
		obj, ok := env.ObjectOf(name)
		if !ok {
			continue
		}
		for n := range typesystem.FreeParameters(obj) {
			if own[n] {
				blocked = append(blocked, name)
				break
			}
		}
	}
	sort.Strings(blocked)
	return blocked
}

// substituteClosed substitutes like substitute and reports whether every
// bound name could be inserted. Callers that discard env afterwards must
// not use the result when it reports false.
func (e *Evaluator) substituteClosed(expr typesystem.Object, env *symbols.Environment) (typesystem.Object, bool) {
	prev := e.captured
	e.captured = false
	out := e.substitute(expr, env)
	closed := !e.captured
	e.captured = prev
	return out, closed
}
