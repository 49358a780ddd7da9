package evaluator

import (
	"testing"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

func idx(n int64) *typesystem.Index { return &typesystem.Index{Value: n} }

func param(name string) *typesystem.ParameterObj { return &typesystem.ParameterObj{Name: name} }

func ident(name string) *typesystem.IdentifierInstance {
	return &typesystem.IdentifierInstance{Name: name}
}

func apply(fn, input typesystem.Object) *typesystem.ApplyFunction {
	return &typesystem.ApplyFunction{Func: fn, Input: input}
}

func lambda(body typesystem.Object, params ...typesystem.Param) *typesystem.LambdaInstance {
	return &typesystem.LambdaInstance{Params: params, Body: body}
}

func p(name string, t typesystem.Object) typesystem.Param {
	return typesystem.Param{Name: name, Type: t}
}

func structOf(fields ...typesystem.NamedObject) *typesystem.StructInstance {
	return &typesystem.StructInstance{Fields: fields}
}

func field(name string, v typesystem.Object) typesystem.NamedObject {
	return typesystem.NamedObject{Name: name, Value: v}
}

func assertObject(t *testing.T, got, want typesystem.Object) {
	t.Helper()
	if !typesystem.ObjectsEqual(got, want) {
		t.Errorf("got %s, want %s", inspect(got), inspect(want))
	}
}
