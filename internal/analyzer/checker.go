package analyzer

import (
	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Converter reads an object as a type. The evaluator implements it; the
// checker only depends on the contract.
type Converter interface {
	ObjectToType(obj typesystem.Object, env *symbols.Environment) (typesystem.Type, error)
}

// Checker validates parameter declarations and decides which types have
// types as their values.
type Checker struct {
	conv Converter
}

func NewChecker(conv Converter) *Checker {
	return &Checker{conv: conv}
}

// RefersToAType reports whether values of type t are themselves usable as
// types.
func (c *Checker) RefersToAType(t typesystem.Type, env *symbols.Environment) bool {
	switch typ := t.(type) {
	case typesystem.TypeT:
		return true
	case typesystem.Subtype:
		return c.RefersToAType(typ.Parent, env)
	case typesystem.SubtypeFromMapType:
		return c.predicateMembersAreTypes(typ.Predicate, env)
	case typesystem.SubstitutableT:
		// A fresh parameter says nothing about its members; a bound one is
		// judged by the type it denotes.
		obj, ok := env.ObjectOf(typ.Name)
		if !ok {
			return false
		}
		if p, ok := obj.(*typesystem.ParameterObj); ok && p.Name == typ.Name {
			return false
		}
		denoted, err := c.conv.ObjectToType(obj, env)
		if err != nil {
			return false
		}
		return c.RefersToAType(denoted, env)
	default:
		return false
	}
}

// predicateMembersAreTypes checks every key the predicate admits.
func (c *Checker) predicateMembersAreTypes(pred *typesystem.MapInstance, env *symbols.Environment) bool {
	if pred == nil {
		return false
	}
	for _, e := range pred.Entries {
		if typesystem.ObjectsEqual(e.Value, pred.Default) {
			continue
		}
		if _, err := c.conv.ObjectToType(e.Key, env); err != nil {
			return false
		}
	}
	return true
}

// CheckParams converts raw lambda parameters into typed ones. Each declared
// type is read under the environment extended with the parameters before it,
// so later types may mention earlier names.
func (c *Checker) CheckParams(params []typesystem.Param, env *symbols.Environment) ([]typesystem.TypedParam, error) {
	typed := make([]typesystem.TypedParam, 0, len(params))
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name == "" {
			return nil, newParamError(p.Name, "parameter name must not be empty")
		}
		if seen[p.Name] {
			return nil, newParamError(p.Name, "duplicate parameter")
		}
		seen[p.Name] = true

		t, err := c.conv.ObjectToType(p.Type, env)
		if err != nil {
			return nil, &ParamError{Name: p.Name, Reason: "declared type is not a type", Err: err}
		}
		typed = append(typed, typesystem.TypedParam{Name: p.Name, Type: t})
		env = env.NewParam(p.Name, t)
	}
	return typed, nil
}

// CheckLet validates a top-level binding: the name must be usable and the
// declared object must read as a type.
func (c *Checker) CheckLet(name string, declared typesystem.Object, env *symbols.Environment) (typesystem.Type, error) {
	if name == "" {
		return nil, newParamError(name, "binding name must not be empty")
	}
	t, err := c.conv.ObjectToType(declared, env)
	if err != nil {
		return nil, &ParamError{Name: name, Reason: "declared type is not a type", Err: err}
	}
	return t, nil
}
