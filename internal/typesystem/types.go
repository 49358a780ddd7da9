package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in our system.
// The set of variants is closed; isType keeps other packages from adding one.
type Type interface {
	String() string
	isType()
}

// Field is a named, ordered member of a struct or case type.
type Field struct {
	Name string
	Type Type
}

// TypedParam is a lambda parameter whose declared type has been checked.
type TypedParam struct {
	Name string
	Type Type
}

// IndexT is the finite ordinal type with Size elements (0 .. Size-1).
type IndexT struct {
	Size int64
}

// CountT is the type of natural-number counts.
type CountT struct{}

// IdentifierT is the type of names.
type IdentifierT struct{}

// MapT is the type of total functions from Key to Value. Keys that are not
// mapped explicitly take the Default value.
type MapT struct {
	Key     Type
	Value   Type
	Default Object
}

// StructT is a product of named fields. Later fields may refer to earlier
// field names as type parameters.
type StructT struct {
	Fields []Field
}

// CaseT is a sum of named variants.
type CaseT struct {
	Variants []Field
}

// LambdaT is the type of functions from Input to Output.
type LambdaT struct {
	Input  Type
	Output Type
}

// SubstitutableT is a type-level parameter waiting for substitution.
type SubstitutableT struct {
	Name string
}

// TypeT is the type of types.
type TypeT struct{}

// Subtype is a refinement of Parent.
type Subtype struct {
	Parent Type
}

// SubtypeFromMapType is the refinement whose members are the keys the
// predicate maps to a non-default value.
type SubtypeFromMapType struct {
	Predicate *MapInstance
}

// IncrementT has one element more than Base.
type IncrementT struct {
	Base Type
}

func (IndexT) isType()             {}
func (CountT) isType()             {}
func (IdentifierT) isType()        {}
func (MapT) isType()               {}
func (StructT) isType()            {}
func (CaseT) isType()              {}
func (LambdaT) isType()            {}
func (SubstitutableT) isType()     {}
func (TypeT) isType()              {}
func (Subtype) isType()            {}
func (SubtypeFromMapType) isType() {}
func (IncrementT) isType()         {}

func (t IndexT) String() string         { return fmt.Sprintf("Index(%d)", t.Size) }
func (CountT) String() string           { return "Count" }
func (IdentifierT) String() string      { return "Identifier" }
func (TypeT) String() string            { return "Type" }
func (t SubstitutableT) String() string { return t.Name }

func (t MapT) String() string {
	return fmt.Sprintf("Map(%s => %s, default %s)", t.Key, t.Value, inspect(t.Default))
}

func (t StructT) String() string {
	return "Struct(" + fieldsString(t.Fields) + ")"
}

func (t CaseT) String() string {
	return "Case(" + fieldsString(t.Variants) + ")"
}

func (t LambdaT) String() string {
	return fmt.Sprintf("(%s) => %s", t.Input, t.Output)
}

func (t Subtype) String() string {
	return fmt.Sprintf("Subtype(%s)", t.Parent)
}

func (t SubtypeFromMapType) String() string {
	return fmt.Sprintf("Subtype(%s)", inspect(t.Predicate))
}

func (t IncrementT) String() string {
	return fmt.Sprintf("Increment(%s)", t.Base)
}

func fieldsString(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, typeString(f.Type))
	}
	return strings.Join(parts, ", ")
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func inspect(o Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Inspect()
}
