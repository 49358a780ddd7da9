package typesystem

import "strings"

// TypeInfo records what is known about the type of a binding.
type TypeInfo interface {
	String() string
	isTypeInfo()
}

// ExplicitlyTyped is a binding whose type is fully known.
type ExplicitlyTyped struct {
	Type Type
}

// ImplicitlyTyped is a binding still under inference. Candidates may be
// empty when nothing is known yet.
type ImplicitlyTyped struct {
	Candidates []Type
}

func (ExplicitlyTyped) isTypeInfo() {}
func (ImplicitlyTyped) isTypeInfo() {}

func (t ExplicitlyTyped) String() string { return typeString(t.Type) }

func (t ImplicitlyTyped) String() string {
	parts := make([]string, len(t.Candidates))
	for i, c := range t.Candidates {
		parts[i] = typeString(c)
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

// ExplicitType returns the type when it is known.
func ExplicitType(info TypeInfo) (Type, bool) {
	if e, ok := info.(ExplicitlyTyped); ok && e.Type != nil {
		return e.Type, true
	}
	return nil, false
}
