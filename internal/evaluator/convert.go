package evaluator

import (
	"github.com/maxsklar/newmap.ai.nyu/internal/config"
	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Default values of the params map behind struct and case types. Map
// application doubles as field projection because of them: a struct
// answers Index(1) for a field it does not have, a case answers Index(0).
var (
	structDefault = &typesystem.Index{Value: 1}
	caseDefault   = &typesystem.Index{Value: 0}
)

// TypeToObject returns the canonical object form of t.
func TypeToObject(t typesystem.Type) typesystem.Object {
	switch typ := t.(type) {
	case typesystem.IndexT:
		return &typesystem.Index{Value: typ.Size}
	case typesystem.CountT:
		return &typesystem.CountType{}
	case typesystem.IdentifierT:
		return &typesystem.IdentifierType{}
	case typesystem.TypeT:
		return &typesystem.TypeType{}
	case typesystem.MapT:
		return &typesystem.MapType{
			Key:     TypeToObject(typ.Key),
			Value:   TypeToObject(typ.Value),
			Default: typ.Default,
		}
	case typesystem.StructT:
		return &typesystem.StructType{Params: fieldsToMap(typ.Fields, structDefault)}
	case typesystem.CaseT:
		return &typesystem.CaseType{Params: fieldsToMap(typ.Variants, caseDefault)}
	case typesystem.LambdaT:
		var params []typesystem.Param
		// A struct input spreads into named parameters, unless one of its
		// fields is itself named like the anonymous parameter. Such a
		// struct stays whole behind "_" so it reads back unchanged.
		if in, ok := typ.Input.(typesystem.StructT); ok && !hasAnonymousField(in) {
			params = make([]typesystem.Param, len(in.Fields))
			for i, f := range in.Fields {
				params[i] = typesystem.Param{Name: f.Name, Type: TypeToObject(f.Type)}
			}
		} else {
			params = []typesystem.Param{{Name: config.AnonymousParamName, Type: TypeToObject(typ.Input)}}
		}
		return &typesystem.LambdaInstance{Params: params, Body: TypeToObject(typ.Output)}
	case typesystem.SubstitutableT:
		return &typesystem.ParameterObj{Name: typ.Name}
	case typesystem.Subtype:
		return &typesystem.SubtypeType{Parent: TypeToObject(typ.Parent)}
	case typesystem.SubtypeFromMapType:
		return &typesystem.SubtypeFromMap{Predicate: typ.Predicate}
	case typesystem.IncrementT:
		return &typesystem.IncrementType{Base: TypeToObject(typ.Base)}
	}
	return nil
}

func hasAnonymousField(s typesystem.StructT) bool {
	for _, f := range s.Fields {
		if f.Name == config.AnonymousParamName {
			return true
		}
	}
	return false
}

func fieldsToMap(fields []typesystem.Field, def typesystem.Object) *typesystem.MapInstance {
	entries := make([]typesystem.MapEntry, len(fields))
	for i, f := range fields {
		entries[i] = typesystem.MapEntry{
			Key:   &typesystem.IdentifierInstance{Name: f.Name},
			Value: TypeToObject(f.Type),
		}
	}
	return &typesystem.MapInstance{Entries: entries, Default: def}
}

// ObjectToType reads obj as a type. It fails with a *ConversionError when
// obj does not denote one.
func (e *Evaluator) ObjectToType(obj typesystem.Object, env *symbols.Environment) (typesystem.Type, error) {
	e.resetBudget()
	return e.objectToType(obj, env)
}

func (e *Evaluator) objectToType(obj typesystem.Object, env *symbols.Environment) (typesystem.Type, error) {
	err := e.enter()
	defer e.leave()
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *typesystem.Index:
		return typesystem.IndexT{Size: o.Value}, nil
	case *typesystem.CountType:
		return typesystem.CountT{}, nil
	case *typesystem.TypeType:
		return typesystem.TypeT{}, nil
	case *typesystem.IdentifierType:
		return typesystem.IdentifierT{}, nil

	case *typesystem.MapType:
		key, err := e.objectToType(o.Key, env)
		if err != nil {
			return nil, &ConversionError{Object: obj, Reason: "map key", Err: err}
		}
		value, err := e.objectToType(o.Value, env)
		if err != nil {
			return nil, &ConversionError{Object: obj, Reason: "map value", Err: err}
		}
		return typesystem.MapT{Key: key, Value: value, Default: o.Default}, nil

	case *typesystem.MapInstance:
		switch {
		case typesystem.ObjectsEqual(o.Default, structDefault):
			fields, err := e.fieldsToTypes(o, env)
			if err != nil {
				return nil, err
			}
			return typesystem.StructT{Fields: fields}, nil
		case typesystem.ObjectsEqual(o.Default, caseDefault):
			variants, err := e.fieldsToTypes(o, env)
			if err != nil {
				return nil, err
			}
			return typesystem.CaseT{Variants: variants}, nil
		}
		return nil, newConversionError(obj, "a map is a type only with default 0 (case) or 1 (struct)")

	case *typesystem.StructType:
		m, ok := o.Params.(*typesystem.MapInstance)
		if !ok {
			return nil, newConversionError(obj, "struct params must be a map")
		}
		fields, err := e.fieldsToTypes(m, env)
		if err != nil {
			return nil, err
		}
		return typesystem.StructT{Fields: fields}, nil

	case *typesystem.CaseType:
		m, ok := o.Params.(*typesystem.MapInstance)
		if !ok {
			return nil, newConversionError(obj, "case params must be a map")
		}
		variants, err := e.fieldsToTypes(m, env)
		if err != nil {
			return nil, err
		}
		return typesystem.CaseT{Variants: variants}, nil

	case *typesystem.LambdaInstance:
		return e.lambdaToType(o, env)

	case *typesystem.ParameterObj:
		return e.parameterToType(o, env)

	case *typesystem.ApplyFunction:
		reduced, err := e.eval(o, env)
		if err != nil {
			return nil, err
		}
		if stuck, ok := reduced.(*typesystem.ApplyFunction); ok {
			return nil, newConversionError(stuck, "application is stuck on an unresolved parameter")
		}
		return e.objectToType(reduced, env)

	case *typesystem.SubtypeType:
		parent, err := e.objectToType(o.Parent, env)
		if err != nil {
			return nil, &ConversionError{Object: obj, Reason: "subtype parent", Err: err}
		}
		return typesystem.Subtype{Parent: parent}, nil

	case *typesystem.SubtypeFromMap:
		if o.Predicate == nil {
			return nil, newConversionError(obj, "subtype has no predicate")
		}
		return typesystem.SubtypeFromMapType{Predicate: o.Predicate}, nil

	case *typesystem.IncrementType:
		base, err := e.objectToType(o.Base, env)
		if err != nil {
			return nil, &ConversionError{Object: obj, Reason: "increment base", Err: err}
		}
		return typesystem.IncrementT{Base: base}, nil
	}

	return nil, newConversionError(obj, "%s does not denote a type", objectTypeName(obj))
}

// fieldsToTypes walks a params map left to right. Each field is opened as
// a parameter before the next one is read, so later field types may refer
// to earlier field names.
func (e *Evaluator) fieldsToTypes(m *typesystem.MapInstance, env *symbols.Environment) ([]typesystem.Field, error) {
	fields := make([]typesystem.Field, 0, len(m.Entries))
	for _, entry := range m.Entries {
		id, ok := entry.Key.(*typesystem.IdentifierInstance)
		if !ok {
			return nil, newConversionError(m, "field name %s is not an identifier", inspect(entry.Key))
		}
		t, err := e.objectToType(entry.Value, env)
		if err != nil {
			return nil, &ConversionError{Object: m, Reason: "field " + id.Name, Err: err}
		}
		fields = append(fields, typesystem.Field{Name: id.Name, Type: t})
		env = env.NewParam(id.Name, t)
	}
	return fields, nil
}

func (e *Evaluator) lambdaToType(l *typesystem.LambdaInstance, env *symbols.Environment) (typesystem.Type, error) {
	params, err := e.checker.CheckParams(l.Params, env)
	if err != nil {
		return nil, &ConversionError{Object: l, Reason: "invalid parameters", Err: err}
	}
	output, err := e.objectToType(l.Body, env.NewParams(params))
	if err != nil {
		return nil, &ConversionError{Object: l, Reason: "result type", Err: err}
	}

	if len(params) == 1 && params[0].Name == config.AnonymousParamName {
		return typesystem.LambdaT{Input: params[0].Type, Output: output}, nil
	}
	fields := make([]typesystem.Field, len(params))
	for i, p := range params {
		fields[i] = typesystem.Field{Name: p.Name, Type: p.Type}
	}
	return typesystem.LambdaT{Input: typesystem.StructT{Fields: fields}, Output: output}, nil
}

// parameterToType accepts a parameter in type position only when its own
// type says its values are types. A name bound to a concrete object is read
// through that object instead.
func (e *Evaluator) parameterToType(p *typesystem.ParameterObj, env *symbols.Environment) (typesystem.Type, error) {
	b, ok := env.Lookup(p.Name)
	if !ok {
		return nil, newConversionError(p, "unbound parameter %s", p.Name)
	}
	if bound, ok := b.Object.(*typesystem.ParameterObj); !ok || bound.Name != p.Name {
		return e.objectToType(b.Object, env)
	}

	t, ok := typesystem.ExplicitType(b.TypeInfo)
	if !ok {
		return nil, newConversionError(p, "type of parameter %s is not known", p.Name)
	}
	if !e.checker.RefersToAType(t, env) {
		return nil, newConversionError(p, "parameter %s of type %s does not refer to a type", p.Name, t)
	}
	return typesystem.SubstitutableT{Name: p.Name}, nil
}

func objectTypeName(obj typesystem.Object) string {
	if obj == nil {
		return "nothing"
	}
	return string(obj.Type())
}
