package typesystem

// FreeParameters returns the names of parameters referenced in o that no
// enclosing lambda inside o binds.
func FreeParameters(o Object) map[string]bool {
	free := make(map[string]bool)
	collectFree(o, map[string]int{}, free)
	return free
}

// HasFreeParameters reports whether o still depends on an unresolved
// parameter.
func HasFreeParameters(o Object) bool {
	return len(FreeParameters(o)) > 0
}

func collectFree(o Object, bound map[string]int, free map[string]bool) {
	switch x := o.(type) {
	case *ParameterObj:
		if bound[x.Name] == 0 {
			free[x.Name] = true
		}
	case *MapType:
		collectFree(x.Key, bound, free)
		collectFree(x.Value, bound, free)
		collectFree(x.Default, bound, free)
	case *MapInstance:
		collectFreeMap(x, bound, free)
	case *LambdaInstance:
		// Each declared type sees the parameters before it.
		for _, p := range x.Params {
			collectFree(p.Type, bound, free)
			bound[p.Name]++
		}
		collectFree(x.Body, bound, free)
		for _, p := range x.Params {
			bound[p.Name]--
		}
	case *ApplyFunction:
		collectFree(x.Func, bound, free)
		collectFree(x.Input, bound, free)
	case *StructType:
		collectFree(x.Params, bound, free)
	case *StructInstance:
		for _, f := range x.Fields {
			collectFree(f.Value, bound, free)
		}
	case *CaseType:
		collectFree(x.Params, bound, free)
	case *CaseInstance:
		collectFree(x.Payload, bound, free)
	case *SubtypeType:
		collectFree(x.Parent, bound, free)
	case *SubtypeFromMap:
		collectFreeMap(x.Predicate, bound, free)
	case *IncrementType:
		collectFree(x.Base, bound, free)
	}
}

func collectFreeMap(m *MapInstance, bound map[string]int, free map[string]bool) {
	if m == nil {
		return
	}
	for _, e := range m.Entries {
		collectFree(e.Key, bound, free)
		collectFree(e.Value, bound, free)
	}
	collectFree(m.Default, bound, free)
}
