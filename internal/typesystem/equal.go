package typesystem

// ObjectsEqual reports structural equality. Map lookup and the round-trip
// checks both rely on it.
func ObjectsEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case *Index:
		return x.Value == b.(*Index).Value
	case *CountType, *TypeType, *IdentifierType:
		return true
	case *IdentifierInstance:
		return x.Name == b.(*IdentifierInstance).Name
	case *ParameterObj:
		return x.Name == b.(*ParameterObj).Name
	case *MapType:
		y := b.(*MapType)
		return ObjectsEqual(x.Key, y.Key) && ObjectsEqual(x.Value, y.Value) && ObjectsEqual(x.Default, y.Default)
	case *MapInstance:
		return mapsEqual(x, b.(*MapInstance))
	case *LambdaInstance:
		y := b.(*LambdaInstance)
		if len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name || !ObjectsEqual(x.Params[i].Type, y.Params[i].Type) {
				return false
			}
		}
		return ObjectsEqual(x.Body, y.Body)
	case *ApplyFunction:
		y := b.(*ApplyFunction)
		return ObjectsEqual(x.Func, y.Func) && ObjectsEqual(x.Input, y.Input)
	case *StructType:
		return ObjectsEqual(x.Params, b.(*StructType).Params)
	case *StructInstance:
		y := b.(*StructInstance)
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !ObjectsEqual(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	case *CaseType:
		return ObjectsEqual(x.Params, b.(*CaseType).Params)
	case *CaseInstance:
		y := b.(*CaseInstance)
		return x.Constructor == y.Constructor && ObjectsEqual(x.Payload, y.Payload)
	case *SubtypeType:
		return ObjectsEqual(x.Parent, b.(*SubtypeType).Parent)
	case *SubtypeFromMap:
		return mapsEqual(x.Predicate, b.(*SubtypeFromMap).Predicate)
	case *IncrementType:
		return ObjectsEqual(x.Base, b.(*IncrementType).Base)
	}
	return false
}

func mapsEqual(x, y *MapInstance) bool {
	if x == nil || y == nil {
		return x == y
	}
	if len(x.Entries) != len(y.Entries) {
		return false
	}
	for i := range x.Entries {
		if !ObjectsEqual(x.Entries[i].Key, y.Entries[i].Key) || !ObjectsEqual(x.Entries[i].Value, y.Entries[i].Value) {
			return false
		}
	}
	return ObjectsEqual(x.Default, y.Default)
}

// TypesEqual reports structural equality of types.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case IndexT:
		y, ok := b.(IndexT)
		return ok && x.Size == y.Size
	case CountT:
		_, ok := b.(CountT)
		return ok
	case IdentifierT:
		_, ok := b.(IdentifierT)
		return ok
	case TypeT:
		_, ok := b.(TypeT)
		return ok
	case SubstitutableT:
		y, ok := b.(SubstitutableT)
		return ok && x.Name == y.Name
	case MapT:
		y, ok := b.(MapT)
		return ok && TypesEqual(x.Key, y.Key) && TypesEqual(x.Value, y.Value) && ObjectsEqual(x.Default, y.Default)
	case StructT:
		y, ok := b.(StructT)
		return ok && fieldsEqual(x.Fields, y.Fields)
	case CaseT:
		y, ok := b.(CaseT)
		return ok && fieldsEqual(x.Variants, y.Variants)
	case LambdaT:
		y, ok := b.(LambdaT)
		return ok && TypesEqual(x.Input, y.Input) && TypesEqual(x.Output, y.Output)
	case Subtype:
		y, ok := b.(Subtype)
		return ok && TypesEqual(x.Parent, y.Parent)
	case SubtypeFromMapType:
		y, ok := b.(SubtypeFromMapType)
		return ok && mapsEqual(x.Predicate, y.Predicate)
	case IncrementT:
		y, ok := b.(IncrementT)
		return ok && TypesEqual(x.Base, y.Base)
	}
	return false
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !TypesEqual(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}
