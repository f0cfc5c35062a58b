// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// FromGo converts a tree of plain Go values into a Value.
//
// It accepts the shapes produced by encoding/json (nil, bool, float64,
// json.Number, string, []any, map[string]any), any Value, Go integer and
// float types, and slices, arrays and string-keyed maps of those. Anything
// else, and non-finite floats, is a [*EncodeError].
func FromGo(v any) (Value, error) {
	return fromGo(v, nil)
}

// MustFromGo is like FromGo but panics on error. It is intended for
// literals in tests and fixtures.
func MustFromGo(v any) Value {
	ret, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return ret
}

func fromGo(v any, path Path) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return Number(v.String()), nil
	case float64:
		return floatNumber(v, path)
	case float32:
		return floatNumber(float64(v), path)
	case int:
		return Number(strconv.FormatInt(int64(v), 10)), nil
	case int8, int16, int32, int64:
		return Number(strconv.FormatInt(reflect.ValueOf(v).Int(), 10)), nil
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return Number(strconv.FormatUint(reflect.ValueOf(v).Uint(), 10)), nil
	case []any:
		ret := make(List, len(v))
		for i, elem := range v {
			ev, err := fromGo(elem, path.Child(Index(i)))
			if err != nil {
				return nil, err
			}
			ret[i] = ev
		}
		return ret, nil
	case map[string]any:
		ret := make(Map, len(v))
		for k, elem := range v {
			ev, err := fromGo(elem, path.Child(Key(k)))
			if err != nil {
				return nil, err
			}
			ret[k] = ev
		}
		return ret, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		ret := make(List, rv.Len())
		for i := range ret {
			ev, err := fromGo(rv.Index(i).Interface(), path.Child(Index(i)))
			if err != nil {
				return nil, err
			}
			ret[i] = ev
		}
		return ret, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &EncodeError{Path: path, Reason: fmt.Sprintf("map key type %s is not a string", rv.Type().Key())}
		}
		ret := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			ev, err := fromGo(iter.Value().Interface(), path.Child(Key(k)))
			if err != nil {
				return nil, err
			}
			ret[k] = ev
		}
		return ret, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromGo(rv.Elem().Interface(), path)
	}
	return nil, &EncodeError{Path: path, Reason: fmt.Sprintf("unsupported Go type %T", v)}
}

func floatNumber(f float64, path Path) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &EncodeError{Path: path, Reason: fmt.Sprintf("%v is not a JSON number", f)}
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// ToGo converts v into the same plain Go shapes encoding/json produces
// when decoding with UseNumber: numbers become json.Number.
func ToGo(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Number:
		return json.Number(v)
	case String:
		return string(v)
	case List:
		ret := make([]any, len(v))
		for i, elem := range v {
			ret[i] = ToGo(elem)
		}
		return ret
	case Map:
		ret := make(map[string]any, len(v))
		for k, elem := range v {
			ret[k] = ToGo(elem)
		}
		return ret
	}
	return nil
}
