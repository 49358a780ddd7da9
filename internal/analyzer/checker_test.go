package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// stubConverter knows indices, Type and parameters whose own type is Type.
type stubConverter struct{}

func (stubConverter) ObjectToType(obj typesystem.Object, env *symbols.Environment) (typesystem.Type, error) {
	switch o := obj.(type) {
	case *typesystem.Index:
		return typesystem.IndexT{Size: o.Value}, nil
	case *typesystem.TypeType:
		return typesystem.TypeT{}, nil
	case *typesystem.ParameterObj:
		info, ok := env.TypeOf(o.Name)
		if !ok {
			return nil, fmt.Errorf("unbound %s", o.Name)
		}
		if t, ok := typesystem.ExplicitType(info); ok {
			if _, isType := t.(typesystem.TypeT); isType {
				return typesystem.SubstitutableT{Name: o.Name}, nil
			}
		}
	}
	return nil, fmt.Errorf("%s is not a type", obj.Inspect())
}

func TestRefersToAType(t *testing.T) {
	types := &typesystem.MapInstance{
		Entries: []typesystem.MapEntry{
			{Key: &typesystem.Index{Value: 2}, Value: &typesystem.Index{Value: 1}},
			{Key: &typesystem.IdentifierInstance{Name: "skip"}, Value: &typesystem.Index{Value: 0}},
		},
		Default: &typesystem.Index{Value: 0},
	}
	values := &typesystem.MapInstance{
		Entries: []typesystem.MapEntry{
			{Key: &typesystem.IdentifierInstance{Name: "a"}, Value: &typesystem.Index{Value: 1}},
		},
		Default: &typesystem.Index{Value: 0},
	}

	env := symbols.NewEnvironment().
		NewParam("fresh", typesystem.TypeT{}).
		NewCommand("alias", typesystem.ImplicitlyTyped{}, &typesystem.TypeType{}).
		NewCommand("small", typesystem.ImplicitlyTyped{}, &typesystem.Index{Value: 3})

	tests := []struct {
		name string
		typ  typesystem.Type
		want bool
	}{
		{"Type", typesystem.TypeT{}, true},
		{"index", typesystem.IndexT{Size: 3}, false},
		{"count", typesystem.CountT{}, false},
		{"struct", typesystem.StructT{}, false},
		{"subtype of Type", typesystem.Subtype{Parent: typesystem.TypeT{}}, true},
		{"subtype of index", typesystem.Subtype{Parent: typesystem.IndexT{Size: 2}}, false},
		{"predicate over types", typesystem.SubtypeFromMapType{Predicate: types}, true},
		{"predicate over values", typesystem.SubtypeFromMapType{Predicate: values}, false},
		{"predicate missing", typesystem.SubtypeFromMapType{}, false},
		{"unresolved parameter", typesystem.SubstitutableT{Name: "fresh"}, false},
		{"unbound parameter", typesystem.SubstitutableT{Name: "nope"}, false},
		{"parameter bound to Type", typesystem.SubstitutableT{Name: "alias"}, true},
		{"parameter bound to an index", typesystem.SubstitutableT{Name: "small"}, false},
		{"increment", typesystem.IncrementT{Base: typesystem.TypeT{}}, false},
	}

	c := NewChecker(stubConverter{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.RefersToAType(tt.typ, env); got != tt.want {
				t.Errorf("RefersToAType(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestCheckParams(t *testing.T) {
	c := NewChecker(stubConverter{})
	env := symbols.NewEnvironment()

	typed, err := c.CheckParams([]typesystem.Param{
		{Name: "T", Type: &typesystem.TypeType{}},
		{Name: "t", Type: &typesystem.ParameterObj{Name: "T"}},
		{Name: "n", Type: &typesystem.Index{Value: 4}},
	}, env)
	if err != nil {
		t.Fatalf("CheckParams: %v", err)
	}
	want := []typesystem.TypedParam{
		{Name: "T", Type: typesystem.TypeT{}},
		{Name: "t", Type: typesystem.SubstitutableT{Name: "T"}},
		{Name: "n", Type: typesystem.IndexT{Size: 4}},
	}
	if len(typed) != len(want) {
		t.Fatalf("got %d params, want %d", len(typed), len(want))
	}
	for i := range want {
		if typed[i].Name != want[i].Name || !typesystem.TypesEqual(typed[i].Type, want[i].Type) {
			t.Errorf("param %d = %s: %s, want %s: %s", i, typed[i].Name, typed[i].Type, want[i].Name, want[i].Type)
		}
	}
	if env.Len() != 0 {
		t.Errorf("CheckParams modified the caller's environment")
	}
}

func TestCheckParamsErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  []typesystem.Param
		errName string
		wrapped bool
	}{
		{"empty name", []typesystem.Param{{Name: "", Type: &typesystem.TypeType{}}}, "", false},
		{"duplicate", []typesystem.Param{
			{Name: "x", Type: &typesystem.Index{Value: 1}},
			{Name: "x", Type: &typesystem.Index{Value: 2}},
		}, "x", false},
		{"not a type", []typesystem.Param{{Name: "v", Type: &typesystem.IdentifierInstance{Name: "a"}}}, "v", true},
		{"later name not in scope yet", []typesystem.Param{
			{Name: "t", Type: &typesystem.ParameterObj{Name: "T"}},
			{Name: "T", Type: &typesystem.TypeType{}},
		}, "t", true},
	}

	c := NewChecker(stubConverter{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CheckParams(tt.params, symbols.NewEnvironment())
			var paramErr *ParamError
			if !errors.As(err, &paramErr) {
				t.Fatalf("error = %v, want a ParamError", err)
			}
			if paramErr.Name != tt.errName {
				t.Errorf("error names %q, want %q", paramErr.Name, tt.errName)
			}
			if (paramErr.Unwrap() != nil) != tt.wrapped {
				t.Errorf("wrapped cause = %v, want wrapped %v", paramErr.Unwrap(), tt.wrapped)
			}
		})
	}
}

func TestCheckLet(t *testing.T) {
	c := NewChecker(stubConverter{})
	env := symbols.NewEnvironment()

	got, err := c.CheckLet("n", &typesystem.Index{Value: 3}, env)
	if err != nil {
		t.Fatalf("CheckLet: %v", err)
	}
	if !typesystem.TypesEqual(got, typesystem.IndexT{Size: 3}) {
		t.Errorf("CheckLet = %s, want Index(3)", got)
	}

	var paramErr *ParamError
	if _, err := c.CheckLet("", &typesystem.TypeType{}, env); !errors.As(err, &paramErr) {
		t.Errorf("empty name: error = %v, want a ParamError", err)
	}
	if _, err := c.CheckLet("v", &typesystem.IdentifierInstance{Name: "a"}, env); !errors.As(err, &paramErr) {
		t.Errorf("non-type: error = %v, want a ParamError", err)
	}
}
