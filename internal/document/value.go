// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"math/big"
	"sort"
)

// Kind identifies which alternative of the Value union a value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a JSON-shaped value. The set of implementations is closed: only
// the types declared in this package satisfy it.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null value.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number held as its decimal literal, e.g. "1", "-0.5" or
// "6.02e23". Encoding rejects a Number whose text is not a valid JSON
// number literal.
type Number string

// String is a JSON string.
type String string

// List is an ordered sequence of values.
type List []Value

// Map maps string keys to values. Key order is irrelevant for equality and
// the codec always emits keys sorted by code point.
type Map map[string]Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (List) isValue()   {}
func (Map) isValue()    {}

// KindOf returns the kind of v, or KindInvalid for a nil Value.
func KindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}

// Keys returns the keys of m in code point order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rat returns the exact rational value of n, or false if n is not a
// valid number literal.
func (n Number) Rat() (*big.Rat, bool) {
	if !isNumberLiteral(string(n)) {
		return nil, false
	}
	return new(big.Rat).SetString(string(n))
}

// Equal reports whether a and b hold the same JSON value. Numbers compare
// by numeric value, so "1" equals "1.0" and "1e0". Maps compare
// irrespective of key order.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch a := a.(type) {
	case nil:
		return true
	case Null:
		return true
	case Bool:
		return a == b.(Bool)
	case String:
		return a == b.(String)
	case Number:
		bn := b.(Number)
		if a == bn {
			return true
		}
		ar, aok := a.Rat()
		br, bok := bn.Rat()
		if !aok || !bok {
			return false
		}
		return ar.Cmp(br) == 0
	case List:
		bl := b.(List)
		if len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	case Map:
		bm := b.(Map)
		if len(a) != len(bm) {
			return false
		}
		for k, av := range a {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
