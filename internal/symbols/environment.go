package symbols

import "github.com/maxsklar/newmap.ai.nyu/internal/typesystem"

// Binding is what a name refers to: what is known about its type, and its
// value. Parameters are bound to a ParameterObj of their own name.
type Binding struct {
	Name     string
	TypeInfo typesystem.TypeInfo
	Object   typesystem.Object
}

// Environment is an immutable table of bindings. Every extension returns a
// new Environment and leaves the receiver untouched, so environments derived
// from a common ancestor can be used independently.
type Environment struct {
	bindings *persistentMap
	log      *nameNode
}

// nameNode records extension order, most recent first.
type nameNode struct {
	name string
	next *nameNode
}

func NewEnvironment() *Environment {
	return &Environment{bindings: emptyMap()}
}

// NewCommand adds or overwrites one binding. Used for top-level statements.
func (e *Environment) NewCommand(name string, info typesystem.TypeInfo, obj typesystem.Object) *Environment {
	return &Environment{
		bindings: e.bindings.Put(name, Binding{Name: name, TypeInfo: info, Object: obj}),
		log:      &nameNode{name: name, next: e.log},
	}
}

// Extend binds name to a value of a known type.
func (e *Environment) Extend(name string, t typesystem.Type, obj typesystem.Object) *Environment {
	return e.NewCommand(name, typesystem.ExplicitlyTyped{Type: t}, obj)
}

// NewParam opens a fresh parameter: the name is bound to itself, so any
// outer binding of the same name is shadowed.
func (e *Environment) NewParam(name string, t typesystem.Type) *Environment {
	return e.NewCommand(name, typesystem.ExplicitlyTyped{Type: t}, &typesystem.ParameterObj{Name: name})
}

// NewUntypedParam opens a fresh parameter whose type is not known yet.
func (e *Environment) NewUntypedParam(name string) *Environment {
	return e.NewCommand(name, typesystem.ImplicitlyTyped{}, &typesystem.ParameterObj{Name: name})
}

// NewParams opens each parameter in order.
func (e *Environment) NewParams(params []typesystem.TypedParam) *Environment {
	env := e
	for _, p := range params {
		env = env.NewParam(p.Name, p.Type)
	}
	return env
}

// Lookup returns the most recent binding for name.
func (e *Environment) Lookup(name string) (Binding, bool) {
	return e.bindings.Get(name)
}

// Resolve is Lookup with an UnboundNameError for unbound names.
func (e *Environment) Resolve(name string) (Binding, error) {
	b, ok := e.bindings.Get(name)
	if !ok {
		return Binding{}, &typesystem.UnboundNameError{Name: name}
	}
	return b, nil
}

func (e *Environment) ObjectOf(name string) (typesystem.Object, bool) {
	b, ok := e.bindings.Get(name)
	if !ok {
		return nil, false
	}
	return b.Object, true
}

func (e *Environment) TypeOf(name string) (typesystem.TypeInfo, bool) {
	b, ok := e.bindings.Get(name)
	if !ok {
		return nil, false
	}
	return b.TypeInfo, true
}

// Len returns the number of distinct bound names.
func (e *Environment) Len() int {
	return e.bindings.Len()
}

// Names lists bound names, each once, ordered by its latest binding
// (oldest first).
func (e *Environment) Names() []string {
	seen := make(map[string]bool, e.bindings.Len())
	var rev []string
	for n := e.log; n != nil; n = n.next {
		if seen[n.name] {
			continue
		}
		seen[n.name] = true
		rev = append(rev, n.name)
	}
	names := make([]string, len(rev))
	for i, name := range rev {
		names[len(rev)-1-i] = name
	}
	return names
}
