package evaluator

import (
	"context"
	"fmt"

	"github.com/maxsklar/newmap.ai.nyu/internal/analyzer"
	"github.com/maxsklar/newmap.ai.nyu/internal/config"
	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Evaluator reduces objects to normal form. It is not safe for concurrent
// use; environments are, so callers may run one Evaluator per goroutine
// against a shared environment.
type Evaluator struct {
	// Context for cancellation
	Context context.Context

	// MaxDepth bounds the nesting of reduction calls. 0 means
	// config.DefaultMaxDepth.
	MaxDepth int

	// MaxSteps bounds the number of reduction calls made by one top-level
	// Eval or ObjectToType. 0 disables the budget.
	MaxSteps int

	checker *analyzer.Checker

	// depth tracks the current nesting of eval calls to prevent stack overflow
	depth int
	steps int

	// captured is set when a substitution had to leave a name in place to
	// avoid capture.
	captured bool
}

func New() *Evaluator {
	e := &Evaluator{
		MaxDepth: config.DefaultMaxDepth,
		MaxSteps: config.DefaultMaxSteps,
	}
	e.checker = analyzer.NewChecker(e)
	return e
}

// NewWithLimits creates an evaluator bounded by the configured limits.
func NewWithLimits(limits config.Limits) *Evaluator {
	e := New()
	if limits.MaxDepth > 0 {
		e.MaxDepth = limits.MaxDepth
	}
	e.MaxSteps = limits.MaxSteps
	return e
}

// Checker returns the type checker the converter consults.
func (e *Evaluator) Checker() *analyzer.Checker {
	return e.checker
}

// Eval reduces expr under env. A returned ApplyFunction is a stuck term,
// not a failure.
func (e *Evaluator) Eval(expr typesystem.Object, env *symbols.Environment) (typesystem.Object, error) {
	e.resetBudget()
	return e.eval(expr, env)
}

// Run evaluates a top-level expression: bound names are substituted from
// env first, then the result is reduced. ctx bounds the evaluation.
func (e *Evaluator) Run(ctx context.Context, expr typesystem.Object, env *symbols.Environment) (typesystem.Object, error) {
	prev := e.Context
	e.Context = ctx
	defer func() { e.Context = prev }()

	return e.Eval(e.Substitute(expr, env), env)
}

func (e *Evaluator) resetBudget() {
	if e.depth == 0 {
		e.steps = 0
	}
}

// enter accounts for one reduction step. Callers must defer leave even when
// enter fails.
func (e *Evaluator) enter() error {
	e.depth++
	maxDepth := e.MaxDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}
	if e.depth > maxDepth {
		return &BudgetError{Reason: fmt.Sprintf("maximum recursion depth %d exceeded", maxDepth)}
	}

	e.steps++
	if e.MaxSteps > 0 && e.steps > e.MaxSteps {
		return &BudgetError{Reason: fmt.Sprintf("evaluation step budget %d exhausted", e.MaxSteps)}
	}

	if e.Context != nil {
		select {
		case <-e.Context.Done():
			return &BudgetError{Reason: "execution cancelled", Err: e.Context.Err()}
		default:
		}
	}
	return nil
}

func (e *Evaluator) leave() {
	e.depth--
}

func (e *Evaluator) eval(expr typesystem.Object, env *symbols.Environment) (typesystem.Object, error) {
	err := e.enter()
	defer e.leave()
	if err != nil {
		return nil, err
	}

	switch o := expr.(type) {
	case nil:
		return nil, fmt.Errorf("cannot evaluate a missing expression")

	case *typesystem.Index, *typesystem.CountType, *typesystem.TypeType,
		*typesystem.IdentifierType, *typesystem.IdentifierInstance, *typesystem.ParameterObj:
		return expr, nil

	case *typesystem.MapType:
		key, err := e.eval(o.Key, env)
		if err != nil {
			return nil, err
		}
		value, err := e.eval(o.Value, env)
		if err != nil {
			return nil, err
		}
		def, err := e.eval(o.Default, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.MapType{Key: key, Value: value, Default: def}, nil

	case *typesystem.MapInstance:
		return e.evalMap(o, env)

	case *typesystem.LambdaInstance:
		return e.evalLambda(o, env)

	case *typesystem.ApplyFunction:
		input, err := e.eval(o.Input, env)
		if err != nil {
			return nil, err
		}
		fn, err := e.eval(o.Func, env)
		if err != nil {
			return nil, err
		}
		return e.apply(fn, input, env)

	case *typesystem.StructType:
		params, err := e.eval(o.Params, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.StructType{Params: params}, nil

	case *typesystem.StructInstance:
		fields := make([]typesystem.NamedObject, len(o.Fields))
		for i, f := range o.Fields {
			v, err := e.eval(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields[i] = typesystem.NamedObject{Name: f.Name, Value: v}
		}
		return &typesystem.StructInstance{Fields: fields}, nil

	case *typesystem.CaseType:
		params, err := e.eval(o.Params, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.CaseType{Params: params}, nil

	case *typesystem.CaseInstance:
		payload, err := e.eval(o.Payload, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.CaseInstance{Constructor: o.Constructor, Payload: payload}, nil

	case *typesystem.SubtypeType:
		parent, err := e.eval(o.Parent, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.SubtypeType{Parent: parent}, nil

	case *typesystem.SubtypeFromMap:
		if o.Predicate == nil {
			return nil, fmt.Errorf("subtype has no predicate")
		}
		pred, err := e.evalMap(o.Predicate, env)
		if err != nil {
			return nil, err
		}
		return &typesystem.SubtypeFromMap{Predicate: pred}, nil

	case *typesystem.IncrementType:
		base, err := e.eval(o.Base, env)
		if err != nil {
			return nil, err
		}
		// Increment(Index(n)) has exactly n+1 elements.
		if i, ok := base.(*typesystem.Index); ok {
			return &typesystem.Index{Value: i.Value + 1}, nil
		}
		return &typesystem.IncrementType{Base: base}, nil
	}

	return nil, fmt.Errorf("cannot evaluate %s", expr.Inspect())
}

func (e *Evaluator) evalMap(m *typesystem.MapInstance, env *symbols.Environment) (*typesystem.MapInstance, error) {
	entries := make([]typesystem.MapEntry, len(m.Entries))
	for i, entry := range m.Entries {
		k, err := e.eval(entry.Key, env)
		if err != nil {
			return nil, err
		}
		v, err := e.eval(entry.Value, env)
		if err != nil {
			return nil, err
		}
		entries[i] = typesystem.MapEntry{Key: k, Value: v}
	}
	def, err := e.eval(m.Default, env)
	if err != nil {
		return nil, err
	}
	return &typesystem.MapInstance{Entries: entries, Default: def}, nil
}

// evalLambda reduces declared types and the body with the lambda's own
// parameters in scope, so no outer binding of the same name is consulted.
func (e *Evaluator) evalLambda(l *typesystem.LambdaInstance, env *symbols.Environment) (typesystem.Object, error) {
	inner := env
	params := make([]typesystem.Param, len(l.Params))
	for i, p := range l.Params {
		declared, err := e.eval(p.Type, inner)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		params[i] = typesystem.Param{Name: p.Name, Type: declared}
		inner = e.openParam(p.Name, declared, inner)
	}
	body, err := e.eval(l.Body, inner)
	if err != nil {
		return nil, err
	}
	return &typesystem.LambdaInstance{Params: params, Body: body}, nil
}
