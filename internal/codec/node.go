// Package codec converts objects to and from a generic node tree and the
// byte encodings built on it. Nodes are what yaml.v3 and structpb produce
// when decoding into interface{}: maps keyed by string, []interface{}
// lists, numbers and strings.
package codec

import (
	"fmt"
	"math"
	"sort"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Variant keys of the node form. Each object other than the unit variants
// is a single-key map from one of these to its payload.
const (
	keyIndex         = "index"
	keyIdentifier    = "identifier"
	keyParam         = "param"
	keyMapType       = "map_type"
	keyMap           = "map"
	keyLambda        = "lambda"
	keyApply         = "apply"
	keyStructType    = "struct_type"
	keyStruct        = "struct"
	keyCaseType      = "case_type"
	keyCase          = "case"
	keySubtypeType   = "subtype_type"
	keySubtypeMap    = "subtype_map"
	keyIncrementType = "increment_type"
)

// Unit variants are written as bare strings.
const (
	unitType       = "Type"
	unitIdentifier = "Identifier"
	unitCount      = "Count"
)

// ToNode returns the node form of obj.
func ToNode(obj typesystem.Object) interface{} {
	switch o := obj.(type) {
	case nil:
		return nil
	case *typesystem.Index:
		return single(keyIndex, o.Value)
	case *typesystem.TypeType:
		return unitType
	case *typesystem.IdentifierType:
		return unitIdentifier
	case *typesystem.CountType:
		return unitCount
	case *typesystem.IdentifierInstance:
		return single(keyIdentifier, o.Name)
	case *typesystem.ParameterObj:
		return single(keyParam, o.Name)
	case *typesystem.MapType:
		return single(keyMapType, map[string]interface{}{
			"key":     ToNode(o.Key),
			"value":   ToNode(o.Value),
			"default": ToNode(o.Default),
		})
	case *typesystem.MapInstance:
		return single(keyMap, mapBody(o))
	case *typesystem.LambdaInstance:
		params := make([]interface{}, len(o.Params))
		for i, p := range o.Params {
			params[i] = map[string]interface{}{"name": p.Name, "type": ToNode(p.Type)}
		}
		return single(keyLambda, map[string]interface{}{
			"params": params,
			"body":   ToNode(o.Body),
		})
	case *typesystem.ApplyFunction:
		return single(keyApply, map[string]interface{}{
			"func":  ToNode(o.Func),
			"input": ToNode(o.Input),
		})
	case *typesystem.StructType:
		return single(keyStructType, ToNode(o.Params))
	case *typesystem.StructInstance:
		fields := make([]interface{}, len(o.Fields))
		for i, f := range o.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "value": ToNode(f.Value)}
		}
		return single(keyStruct, fields)
	case *typesystem.CaseType:
		return single(keyCaseType, ToNode(o.Params))
	case *typesystem.CaseInstance:
		return single(keyCase, map[string]interface{}{
			"constructor": o.Constructor,
			"payload":     ToNode(o.Payload),
		})
	case *typesystem.SubtypeType:
		return single(keySubtypeType, ToNode(o.Parent))
	case *typesystem.SubtypeFromMap:
		if o.Predicate == nil {
			return single(keySubtypeMap, nil)
		}
		return single(keySubtypeMap, mapBody(o.Predicate))
	case *typesystem.IncrementType:
		return single(keyIncrementType, ToNode(o.Base))
	}
	return nil
}

func single(key string, payload interface{}) map[string]interface{} {
	return map[string]interface{}{key: payload}
}

func mapBody(m *typesystem.MapInstance) map[string]interface{} {
	entries := make([]interface{}, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = map[string]interface{}{"key": ToNode(e.Key), "value": ToNode(e.Value)}
	}
	return map[string]interface{}{
		"entries": entries,
		"default": ToNode(m.Default),
	}
}

// FromNode decodes a node tree. A bare integer is read as an Index.
func FromNode(node interface{}) (typesystem.Object, error) {
	switch v := node.(type) {
	case nil:
		return nil, fmt.Errorf("missing object")
	case string:
		switch v {
		case unitType:
			return &typesystem.TypeType{}, nil
		case unitIdentifier:
			return &typesystem.IdentifierType{}, nil
		case unitCount:
			return &typesystem.CountType{}, nil
		}
		return nil, fmt.Errorf("unknown object %q", v)
	case int, int64, uint64, float64:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return &typesystem.Index{Value: n}, nil
	}

	fields, err := asMap(node)
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("object must have exactly one variant key, got %v", sortedKeys(fields))
	}
	for key, payload := range fields {
		obj, err := fromVariant(key, payload)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return obj, nil
	}
	return nil, nil
}

func fromVariant(key string, payload interface{}) (typesystem.Object, error) {
	switch key {
	case keyIndex:
		n, err := toInt(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.Index{Value: n}, nil

	case keyIdentifier:
		name, err := toName(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.IdentifierInstance{Name: name}, nil

	case keyParam:
		name, err := toName(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.ParameterObj{Name: name}, nil

	case keyMapType:
		body, err := asMap(payload)
		if err != nil {
			return nil, err
		}
		k, err := field(body, "key")
		if err != nil {
			return nil, err
		}
		v, err := field(body, "value")
		if err != nil {
			return nil, err
		}
		var d typesystem.Object
		if body["default"] != nil {
			if d, err = field(body, "default"); err != nil {
				return nil, err
			}
		}
		return &typesystem.MapType{Key: k, Value: v, Default: d}, nil

	case keyMap:
		return mapFromNode(payload)

	case keyLambda:
		body, err := asMap(payload)
		if err != nil {
			return nil, err
		}
		items, err := asList(body["params"])
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		params := make([]typesystem.Param, len(items))
		for i, item := range items {
			p, err := asMap(item)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			name, err := toName(p["name"])
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			t, err := field(p, "type")
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			params[i] = typesystem.Param{Name: name, Type: t}
		}
		b, err := field(body, "body")
		if err != nil {
			return nil, err
		}
		return &typesystem.LambdaInstance{Params: params, Body: b}, nil

	case keyApply:
		body, err := asMap(payload)
		if err != nil {
			return nil, err
		}
		fn, err := field(body, "func")
		if err != nil {
			return nil, err
		}
		input, err := field(body, "input")
		if err != nil {
			return nil, err
		}
		return &typesystem.ApplyFunction{Func: fn, Input: input}, nil

	case keyStructType:
		params, err := FromNode(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.StructType{Params: params}, nil

	case keyStruct:
		items, err := asList(payload)
		if err != nil {
			return nil, err
		}
		fields := make([]typesystem.NamedObject, len(items))
		for i, item := range items {
			f, err := asMap(item)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			name, err := toName(f["name"])
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			v, err := field(f, "value")
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			fields[i] = typesystem.NamedObject{Name: name, Value: v}
		}
		return &typesystem.StructInstance{Fields: fields}, nil

	case keyCaseType:
		params, err := FromNode(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.CaseType{Params: params}, nil

	case keyCase:
		body, err := asMap(payload)
		if err != nil {
			return nil, err
		}
		constructor, err := toName(body["constructor"])
		if err != nil {
			return nil, err
		}
		p, err := field(body, "payload")
		if err != nil {
			return nil, err
		}
		return &typesystem.CaseInstance{Constructor: constructor, Payload: p}, nil

	case keySubtypeType:
		parent, err := FromNode(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.SubtypeType{Parent: parent}, nil

	case keySubtypeMap:
		if payload == nil {
			return &typesystem.SubtypeFromMap{}, nil
		}
		pred, err := mapFromNode(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.SubtypeFromMap{Predicate: pred}, nil

	case keyIncrementType:
		base, err := FromNode(payload)
		if err != nil {
			return nil, err
		}
		return &typesystem.IncrementType{Base: base}, nil
	}
	return nil, fmt.Errorf("unknown variant")
}

func mapFromNode(payload interface{}) (*typesystem.MapInstance, error) {
	body, err := asMap(payload)
	if err != nil {
		return nil, err
	}
	var items []interface{}
	if raw, ok := body["entries"]; ok && raw != nil {
		if items, err = asList(raw); err != nil {
			return nil, fmt.Errorf("entries: %w", err)
		}
	}
	entries := make([]typesystem.MapEntry, len(items))
	for i, item := range items {
		e, err := asMap(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		k, err := field(e, "key")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		v, err := field(e, "value")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries[i] = typesystem.MapEntry{Key: k, Value: v}
	}
	def, err := field(body, "default")
	if err != nil {
		return nil, err
	}
	return &typesystem.MapInstance{Entries: entries, Default: def}, nil
}

// field decodes the object stored under name.
func field(m map[string]interface{}, name string) (typesystem.Object, error) {
	raw, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing %q", name)
	}
	obj, err := FromNode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return obj, nil
}

// asMap accepts both map shapes yaml.v3 can produce.
func asMap(node interface{}) (map[string]interface{}, error) {
	switch v := node.(type) {
	case map[string]interface{}:
		return v, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[fmt.Sprintf("%v", k)] = val
		}
		return m, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", node)
}

func asList(node interface{}) ([]interface{}, error) {
	if node == nil {
		return nil, nil
	}
	list, ok := node.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", node)
	}
	return list, nil
}

func toName(node interface{}) (string, error) {
	s, ok := node.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("expected a name, got %v", node)
	}
	return s, nil
}

// toInt reads an integer from any numeric node. structpb stores every
// number as a float64, so integral floats are accepted.
func toInt(node interface{}) (int64, error) {
	switch v := node.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v >= 1<<63 || v < math.MinInt64 {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", node)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
