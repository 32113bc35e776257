package jsonedit

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	gyaml "github.com/goccy/go-yaml"
)

// Attribute is one key/value entry of an Object literal.
type Attribute struct {
	Key   string
	Value any
}

func Attr(key string, value any) Attribute {
	return Attribute{Key: key, Value: value}
}

// Object is an ordered object literal. Values may be any value accepted by
// FromValue, including CopySpec.
type Object []Attribute

// Array is an array literal. Items may be any value accepted by FromValue,
// including CopySpec.
type Array []any

// CopySpec defers a value to the moment an edit is applied: the path is
// resolved against the document as it is then, and a detached copy of the
// single matching node is written.
type CopySpec struct {
	Path string
}

func CopyOf(path string) CopySpec {
	return CopySpec{Path: path}
}

// FromValue converts v into a new tree. Supported inputs are *Node (cloned),
// Object, Array, gyaml.MapSlice, map[string]any (keys sorted), []any,
// []string, Go booleans, integers, floats and strings, json.Number,
// json.RawMessage and, as a last resort, anything encoding/json can marshal.
// CopySpec values are rejected; they only make sense inside an edit.
func FromValue(v any) (*Node, error) {
	return fromValue(v, nil)
}

// fromValue converts v, resolving any CopySpec through find.
func fromValue(v any, find func(string) (*Node, error)) (*Node, error) {
	switch vv := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return vv.Clone(), nil
	case Node:
		return vv.Clone(), nil
	case CopySpec:
		if find == nil {
			return nil, fmt.Errorf("%w: copy of %s outside of an edit", ErrUnsupportedValue, vv.Path)
		}
		src, err := find(vv.Path)
		if err != nil {
			return nil, err
		}
		return src.Clone(), nil
	case bool:
		return FromBool(vv), nil
	case string:
		return FromString(vv), nil
	case int:
		return FromInt(int64(vv)), nil
	case int8:
		return FromInt(int64(vv)), nil
	case int16:
		return FromInt(int64(vv)), nil
	case int32:
		return FromInt(int64(vv)), nil
	case int64:
		return FromInt(vv), nil
	case uint:
		return FromUint(uint64(vv)), nil
	case uint8:
		return FromUint(uint64(vv)), nil
	case uint16:
		return FromUint(uint64(vv)), nil
	case uint32:
		return FromUint(uint64(vv)), nil
	case uint64:
		return FromUint(vv), nil
	case float32:
		return FromFloat(float64(vv)), nil
	case float64:
		return FromFloat(vv), nil
	case json.Number:
		return FromNumber(vv.String())
	case json.RawMessage:
		return Parse(vv)
	case Object:
		res := newObject(len(vv))
		for _, a := range vv {
			child, err := fromValue(a.Value, find)
			if err != nil {
				return nil, err
			}
			res.put(a.Key, child)
		}
		return res, nil
	case gyaml.MapSlice:
		res := newObject(len(vv))
		for _, item := range vv {
			child, err := fromValue(item.Value, find)
			if err != nil {
				return nil, err
			}
			res.put(fmt.Sprint(item.Key), child)
		}
		return res, nil
	case map[string]any:
		res := newObject(len(vv))
		for _, k := range slices.Sorted(maps.Keys(vv)) {
			child, err := fromValue(vv[k], find)
			if err != nil {
				return nil, err
			}
			res.put(k, child)
		}
		return res, nil
	case Array:
		return fromItems([]any(vv), find)
	case []any:
		return fromItems(vv, find)
	case []*Node:
		res := newArray(len(vv))
		for _, it := range vv {
			res.vals = append(res.vals, it.Clone())
		}
		return res, nil
	case []string:
		res := newArray(len(vv))
		for _, s := range vv {
			res.vals = append(res.vals, FromString(s))
		}
		return res, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrUnsupportedValue, v, err)
	}
	return Parse(b)
}

func fromItems(items []any, find func(string) (*Node, error)) (*Node, error) {
	res := newArray(len(items))
	for _, it := range items {
		child, err := fromValue(it, find)
		if err != nil {
			return nil, err
		}
		res.vals = append(res.vals, child)
	}
	return res, nil
}
