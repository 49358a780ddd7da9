package symbols

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

func TestEnvironmentShadowing(t *testing.T) {
	env := NewEnvironment().
		Extend("x", typesystem.IndexT{Size: 5}, &typesystem.Index{Value: 1}).
		Extend("x", typesystem.IndexT{Size: 5}, &typesystem.Index{Value: 2})

	obj, ok := env.ObjectOf("x")
	if !ok {
		t.Fatal("x not bound")
	}
	if !typesystem.ObjectsEqual(obj, &typesystem.Index{Value: 2}) {
		t.Errorf("ObjectOf(x) = %s, want 2", obj.Inspect())
	}
	if env.Len() != 1 {
		t.Errorf("Len() = %d, want 1", env.Len())
	}
}

func TestEnvironmentPersistence(t *testing.T) {
	base := NewEnvironment().Extend("a", typesystem.CountT{}, &typesystem.Index{Value: 1})
	left := base.Extend("b", typesystem.CountT{}, &typesystem.Index{Value: 2})
	right := base.Extend("a", typesystem.CountT{}, &typesystem.Index{Value: 3})

	if _, ok := base.Lookup("b"); ok {
		t.Error("extending a derived environment leaked into its parent")
	}
	if obj, _ := left.ObjectOf("a"); !typesystem.ObjectsEqual(obj, &typesystem.Index{Value: 1}) {
		t.Errorf("left a = %s, want 1", obj.Inspect())
	}
	if obj, _ := right.ObjectOf("a"); !typesystem.ObjectsEqual(obj, &typesystem.Index{Value: 3}) {
		t.Errorf("right a = %s, want 3", obj.Inspect())
	}
	if _, ok := right.Lookup("b"); ok {
		t.Error("sibling environments share bindings")
	}
}

func TestNewParamShadowsOuterValue(t *testing.T) {
	env := NewEnvironment().
		Extend("x", typesystem.IndexT{Size: 5}, &typesystem.Index{Value: 4}).
		NewParam("x", typesystem.IndexT{Size: 2})

	obj, _ := env.ObjectOf("x")
	if !typesystem.ObjectsEqual(obj, &typesystem.ParameterObj{Name: "x"}) {
		t.Errorf("ObjectOf(x) = %s, want the parameter itself", obj.Inspect())
	}
	info, _ := env.TypeOf("x")
	if typ, ok := typesystem.ExplicitType(info); !ok || !typesystem.TypesEqual(typ, typesystem.IndexT{Size: 2}) {
		t.Errorf("TypeOf(x) = %s, want Index(2)", info)
	}

	untyped := env.NewUntypedParam("y")
	info, _ = untyped.TypeOf("y")
	if _, ok := info.(typesystem.ImplicitlyTyped); !ok {
		t.Errorf("TypeOf(y) = %T, want ImplicitlyTyped", info)
	}
}

func TestNewParamsAndNames(t *testing.T) {
	env := NewEnvironment().
		Extend("a", typesystem.CountT{}, &typesystem.Index{Value: 0}).
		NewParams([]typesystem.TypedParam{
			{Name: "b", Type: typesystem.TypeT{}},
			{Name: "c", Type: typesystem.SubstitutableT{Name: "b"}},
		}).
		Extend("a", typesystem.CountT{}, &typesystem.Index{Value: 1})

	want := []string{"b", "c", "a"}
	if got := env.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestResolve(t *testing.T) {
	env := NewEnvironment()
	_, err := env.Resolve("missing")
	var notFound *typesystem.UnboundNameError
	if !errors.As(err, &notFound) || notFound.Name != "missing" {
		t.Errorf("Resolve(missing) error = %v, want UnboundNameError", err)
	}
}

func TestPersistentMapManyKeys(t *testing.T) {
	m := emptyMap()
	const n = 2000
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("k%d", i)
		m = m.Put(name, Binding{Name: name, Object: &typesystem.Index{Value: int64(i)}})
	}
	if m.Len() != n {
		t.Fatalf("Len() = %d, want %d", m.Len(), n)
	}
	for i := 0; i < n; i++ {
		b, ok := m.Get(fmt.Sprintf("k%d", i))
		if !ok {
			t.Fatalf("k%d missing", i)
		}
		if idx := b.Object.(*typesystem.Index); idx.Value != int64(i) {
			t.Fatalf("k%d = %d", i, idx.Value)
		}
	}

	updated := m.Put("k7", Binding{Name: "k7", Object: &typesystem.Index{Value: -1}})
	if updated.Len() != n {
		t.Errorf("overwrite changed Len() to %d", updated.Len())
	}
	if b, _ := m.Get("k7"); b.Object.(*typesystem.Index).Value != 7 {
		t.Errorf("overwrite mutated the original map")
	}
}
