package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/maxsklar/newmap.ai.nyu/internal/config"
	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

func TestEvalApplication(t *testing.T) {
	table := &typesystem.MapInstance{
		Entries: []typesystem.MapEntry{{Key: idx(0), Value: idx(5)}},
		Default: idx(9),
	}
	pair := lambda(
		structOf(field("a", param("x")), field("b", param("y"))),
		p("x", idx(5)), p("y", idx(5)),
	)
	record := structOf(field("a", idx(3)))
	structType := TypeToObject(typesystem.StructT{Fields: []typesystem.Field{{Name: "a", Type: typesystem.IndexT{Size: 2}}}})
	caseType := TypeToObject(typesystem.CaseT{Variants: []typesystem.Field{{Name: "l", Type: typesystem.IndexT{Size: 2}}}})

	tests := []struct {
		name string
		expr typesystem.Object
		want typesystem.Object
	}{
		{"map explicit key", apply(table, idx(0)), idx(5)},
		{"map default", apply(table, idx(1)), idx(9)},
		{"map symbolic key", apply(table, param("k")), apply(table, param("k"))},
		{
			"lambda struct argument",
			apply(pair, structOf(field("x", idx(1)), field("y", idx(2)))),
			structOf(field("a", idx(1)), field("b", idx(2))),
		},
		{
			"lambda curried argument",
			apply(pair, idx(1)),
			lambda(structOf(field("a", idx(1)), field("b", param("y"))), p("y", idx(5))),
		},
		{
			"curried twice",
			apply(apply(pair, idx(1)), idx(2)),
			structOf(field("a", idx(1)), field("b", idx(2))),
		},
		{"field present", apply(record, ident("a")), idx(3)},
		{"field absent", apply(record, ident("b")), idx(0)},
		{"field by non-identifier", apply(record, idx(0)), idx(0)},
		{"field symbolic", apply(record, param("k")), apply(record, param("k"))},
		{"struct type projection", apply(structType, ident("a")), idx(2)},
		{"struct type default", apply(structType, ident("z")), idx(1)},
		{"case type default", apply(caseType, ident("z")), idx(0)},
		{"symbolic function", apply(param("f"), idx(1)), apply(param("f"), idx(1))},
		{"nested stuck", apply(apply(param("f"), idx(1)), idx(2)), apply(apply(param("f"), idx(1)), idx(2))},
		{"increment of index", &typesystem.IncrementType{Base: idx(4)}, idx(5)},
		{"increment of parameter", &typesystem.IncrementType{Base: param("T")}, &typesystem.IncrementType{Base: param("T")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Eval(tt.expr, symbols.NewEnvironment())
			if err != nil {
				t.Fatalf("Eval(%s) error: %v", tt.expr.Inspect(), err)
			}
			assertObject(t, got, tt.want)
		})
	}
}

func TestStuckTermIsFixedPoint(t *testing.T) {
	env := symbols.NewEnvironment()
	stuck := apply(&typesystem.MapInstance{Default: idx(0)}, apply(param("f"), idx(1)))

	e := New()
	once, err := e.Eval(stuck, env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, ok := once.(*typesystem.ApplyFunction); !ok {
		t.Fatalf("Eval(%s) = %s, want a stuck application", stuck.Inspect(), once.Inspect())
	}
	twice, err := e.Eval(once, env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, twice, once)
}

func TestEvalApplicationErrors(t *testing.T) {
	pair := lambda(param("x"), p("x", idx(5)), p("y", idx(5)))

	tests := []struct {
		name   string
		expr   typesystem.Object
		reason string
	}{
		{"wrong order", apply(pair, structOf(field("y", idx(1)), field("x", idx(2)))), reasonParamsDisagree},
		{"missing argument", apply(pair, structOf(field("x", idx(1)))), reasonParamsDisagree},
		{"extra argument", apply(pair, structOf(field("x", idx(1)), field("y", idx(2)), field("z", idx(3)))), reasonParamsDisagree},
		{"no params", apply(lambda(idx(1)), idx(0)), reasonParamsDisagree},
		{"index as function", apply(idx(3), idx(1)), reasonNotImplemented},
		{"type as function", apply(&typesystem.TypeType{}, idx(1)), reasonNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Eval(tt.expr, symbols.NewEnvironment())
			var appErr *ApplicationError
			if !errors.As(err, &appErr) {
				t.Fatalf("Eval(%s) error = %v, want an ApplicationError", tt.expr.Inspect(), err)
			}
			if !strings.Contains(appErr.Error(), tt.reason) {
				t.Errorf("error %q does not mention %q", appErr.Error(), tt.reason)
			}
		})
	}
}

func TestDependentCurrying(t *testing.T) {
	// (T: Type, t: T) => t
	id := lambda(param("t"), p("T", &typesystem.TypeType{}), p("t", param("T")))
	env := symbols.NewEnvironment()
	e := New()

	partial, err := e.Eval(apply(id, idx(3)), env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, partial, lambda(param("t"), p("t", idx(3))))

	full, err := e.Eval(apply(partial, idx(2)), env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, full, idx(2))
}

func TestCurryingAvoidsCapture(t *testing.T) {
	// Supplying the free name y for x must not be captured by the second
	// parameter, also called y. The application stays stuck and the
	// function keeps its parameter names.
	k := lambda(param("x"), p("x", &typesystem.TypeType{}), p("y", idx(2)))
	env := symbols.NewEnvironment()
	e := New()

	got, err := e.Eval(apply(k, param("y")), env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, got, apply(k, param("y")))

	again, err := e.Eval(got, env)
	if err != nil {
		t.Fatalf("Eval of stuck term: %v", err)
	}
	assertObject(t, again, got)

	// Without a collision the remaining parameter is still y, so it can be
	// applied by name.
	partial, err := e.Eval(apply(k, idx(5)), env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, partial, lambda(idx(5), p("y", idx(2))))
	full, err := e.Eval(apply(partial, structOf(field("y", idx(1)))), env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, full, idx(5))
}

func TestStructApplicationAvoidsCapture(t *testing.T) {
	// (x: Type) => ((y: Type) => x) applied to (x: y)
	f := lambda(lambda(param("x"), p("y", &typesystem.TypeType{})), p("x", &typesystem.TypeType{}))
	args := structOf(field("x", param("y")))

	got, err := New().Eval(apply(f, args), symbols.NewEnvironment())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	assertObject(t, got, apply(f, args))
}

func TestRunSubstitutesEnvironment(t *testing.T) {
	table := &typesystem.MapInstance{
		Entries: []typesystem.MapEntry{{Key: idx(0), Value: idx(5)}},
		Default: idx(9),
	}
	env := symbols.NewEnvironment().
		NewCommand("m", typesystem.ImplicitlyTyped{}, table).
		NewCommand("x", typesystem.ImplicitlyTyped{}, idx(4))

	tests := []struct {
		name string
		expr typesystem.Object
		want typesystem.Object
	}{
		{"named map", apply(param("m"), idx(0)), idx(5)},
		{"named key", apply(param("m"), param("x")), idx(9)},
		{"shadowed by lambda", apply(lambda(param("x"), p("x", idx(10))), idx(2)), idx(2)},
		{"unbound stays stuck", apply(param("m"), param("z")), apply(table, param("z"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Run(context.Background(), tt.expr, env)
			if err != nil {
				t.Fatalf("Run(%s) error: %v", tt.expr.Inspect(), err)
			}
			assertObject(t, got, tt.want)
		})
	}
}

func TestBudgets(t *testing.T) {
	// (x: Type) => (x x) applied to itself never reaches a normal form.
	omega := lambda(apply(param("x"), param("x")), p("x", &typesystem.TypeType{}))
	deep := typesystem.Object(idx(0))
	for i := 0; i < 50; i++ {
		deep = &typesystem.IncrementType{Base: deep}
	}

	t.Run("steps", func(t *testing.T) {
		e := NewWithLimits(config.Limits{MaxSteps: 500})
		_, err := e.Eval(apply(omega, omega), symbols.NewEnvironment())
		var budgetErr *BudgetError
		if !errors.As(err, &budgetErr) {
			t.Fatalf("error = %v, want a BudgetError", err)
		}
	})

	t.Run("depth", func(t *testing.T) {
		e := NewWithLimits(config.Limits{MaxDepth: 10})
		_, err := e.Eval(deep, symbols.NewEnvironment())
		var budgetErr *BudgetError
		if !errors.As(err, &budgetErr) {
			t.Fatalf("error = %v, want a BudgetError", err)
		}
	})

	t.Run("depth within limit", func(t *testing.T) {
		got, err := New().Eval(deep, symbols.NewEnvironment())
		if err != nil {
			t.Fatalf("Eval: %v", err)
		}
		assertObject(t, got, idx(50))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Run(ctx, idx(1), symbols.NewEnvironment())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("budget resets between calls", func(t *testing.T) {
		e := NewWithLimits(config.Limits{MaxSteps: 200})
		for i := 0; i < 5; i++ {
			if _, err := e.Eval(deep, symbols.NewEnvironment()); err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
		}
	})
}
