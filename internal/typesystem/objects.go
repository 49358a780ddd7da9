package typesystem

import (
	"fmt"
	"strings"
)

type ObjectType string

const (
	INDEX_OBJ           = "INDEX"
	COUNT_TYPE_OBJ      = "COUNT_TYPE"
	TYPE_TYPE_OBJ       = "TYPE_TYPE"
	IDENTIFIER_TYPE_OBJ = "IDENTIFIER_TYPE"
	IDENTIFIER_OBJ      = "IDENTIFIER"
	PARAMETER_OBJ       = "PARAMETER"
	MAP_TYPE_OBJ        = "MAP_TYPE"
	MAP_OBJ             = "MAP"
	LAMBDA_OBJ          = "LAMBDA"
	APPLY_OBJ           = "APPLY"
	STRUCT_TYPE_OBJ     = "STRUCT_TYPE"
	STRUCT_OBJ          = "STRUCT"
	CASE_TYPE_OBJ       = "CASE_TYPE"
	CASE_OBJ            = "CASE"
	SUBTYPE_OBJ         = "SUBTYPE"
	SUBTYPE_MAP_OBJ     = "SUBTYPE_MAP"
	INCREMENT_TYPE_OBJ  = "INCREMENT_TYPE"
)

// Object is a runtime value. Every Type has a canonical Object form; the
// reverse conversion is partial.
type Object interface {
	Type() ObjectType
	Inspect() string
	isObject()
}

// MapEntry is one explicit key/value pair of a MapInstance.
type MapEntry struct {
	Key   Object
	Value Object
}

// NamedObject is one field of a StructInstance.
type NamedObject struct {
	Name  string
	Value Object
}

// Param is a lambda parameter as written: Type is an object that should
// denote a type.
type Param struct {
	Name string
	Type Object
}

type Index struct {
	Value int64
}

type CountType struct{}

type TypeType struct{}

type IdentifierType struct{}

type IdentifierInstance struct {
	Name string
}

// ParameterObj is a reference to a bound parameter that has not been
// resolved. Terms that depend on one are stuck.
type ParameterObj struct {
	Name string
}

type MapType struct {
	Key     Object
	Value   Object
	Default Object
}

// MapInstance maps keys to values in order; keys without an entry map to
// Default.
type MapInstance struct {
	Entries []MapEntry
	Default Object
}

type LambdaInstance struct {
	Params []Param
	Body   Object
}

// ApplyFunction is a suspended application. It is a valid normal form when
// Input (or Func) is still symbolic.
type ApplyFunction struct {
	Func  Object
	Input Object
}

// StructType wraps the params map of a struct type: identifier keys, type
// values and default Index(1).
type StructType struct {
	Params Object
}

type StructInstance struct {
	Fields []NamedObject
}

// CaseType wraps the params map of a case type: identifier keys, type
// values and default Index(0).
type CaseType struct {
	Params Object
}

type CaseInstance struct {
	Constructor string
	Payload     Object
}

type SubtypeType struct {
	Parent Object
}

type SubtypeFromMap struct {
	Predicate *MapInstance
}

type IncrementType struct {
	Base Object
}

func (*Index) isObject()              {}
func (*CountType) isObject()          {}
func (*TypeType) isObject()           {}
func (*IdentifierType) isObject()     {}
func (*IdentifierInstance) isObject() {}
func (*ParameterObj) isObject()       {}
func (*MapType) isObject()            {}
func (*MapInstance) isObject()        {}
func (*LambdaInstance) isObject()     {}
func (*ApplyFunction) isObject()      {}
func (*StructType) isObject()         {}
func (*StructInstance) isObject()     {}
func (*CaseType) isObject()           {}
func (*CaseInstance) isObject()       {}
func (*SubtypeType) isObject()        {}
func (*SubtypeFromMap) isObject()     {}
func (*IncrementType) isObject()      {}

func (*Index) Type() ObjectType              { return INDEX_OBJ }
func (*CountType) Type() ObjectType          { return COUNT_TYPE_OBJ }
func (*TypeType) Type() ObjectType           { return TYPE_TYPE_OBJ }
func (*IdentifierType) Type() ObjectType     { return IDENTIFIER_TYPE_OBJ }
func (*IdentifierInstance) Type() ObjectType { return IDENTIFIER_OBJ }
func (*ParameterObj) Type() ObjectType       { return PARAMETER_OBJ }
func (*MapType) Type() ObjectType            { return MAP_TYPE_OBJ }
func (*MapInstance) Type() ObjectType        { return MAP_OBJ }
func (*LambdaInstance) Type() ObjectType     { return LAMBDA_OBJ }
func (*ApplyFunction) Type() ObjectType      { return APPLY_OBJ }
func (*StructType) Type() ObjectType         { return STRUCT_TYPE_OBJ }
func (*StructInstance) Type() ObjectType     { return STRUCT_OBJ }
func (*CaseType) Type() ObjectType           { return CASE_TYPE_OBJ }
func (*CaseInstance) Type() ObjectType       { return CASE_OBJ }
func (*SubtypeType) Type() ObjectType        { return SUBTYPE_OBJ }
func (*SubtypeFromMap) Type() ObjectType     { return SUBTYPE_MAP_OBJ }
func (*IncrementType) Type() ObjectType      { return INCREMENT_TYPE_OBJ }

func (o *Index) Inspect() string              { return fmt.Sprintf("%d", o.Value) }
func (*CountType) Inspect() string            { return "Count" }
func (*TypeType) Inspect() string             { return "Type" }
func (*IdentifierType) Inspect() string       { return "Identifier" }
func (o *IdentifierInstance) Inspect() string { return "~" + o.Name }
func (o *ParameterObj) Inspect() string       { return o.Name }

func (o *MapType) Inspect() string {
	return fmt.Sprintf("Map(%s => %s, default %s)", inspect(o.Key), inspect(o.Value), inspect(o.Default))
}

func (o *MapInstance) Inspect() string {
	if o == nil {
		return "<nil>"
	}
	parts := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		parts[i] = inspect(e.Key) + ": " + inspect(e.Value)
	}
	return fmt.Sprintf("(%s | %s)", strings.Join(parts, ", "), inspect(o.Default))
}

func (o *LambdaInstance) Inspect() string {
	parts := make([]string, len(o.Params))
	for i, p := range o.Params {
		parts[i] = p.Name + ": " + inspect(p.Type)
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(parts, ", "), inspect(o.Body))
}

func (o *ApplyFunction) Inspect() string {
	return fmt.Sprintf("(%s %s)", inspect(o.Func), inspect(o.Input))
}

func (o *StructType) Inspect() string {
	return fmt.Sprintf("Struct%s", inspect(o.Params))
}

func (o *StructInstance) Inspect() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.Name + ": " + inspect(f.Value)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (o *CaseType) Inspect() string {
	return fmt.Sprintf("Case%s", inspect(o.Params))
}

func (o *CaseInstance) Inspect() string {
	return fmt.Sprintf("%s.%s", o.Constructor, inspect(o.Payload))
}

func (o *SubtypeType) Inspect() string {
	return fmt.Sprintf("Subtype(%s)", inspect(o.Parent))
}

func (o *SubtypeFromMap) Inspect() string {
	return fmt.Sprintf("Subtype(%s)", inspect(o.Predicate))
}

func (o *IncrementType) Inspect() string {
	return fmt.Sprintf("Increment(%s)", inspect(o.Base))
}
