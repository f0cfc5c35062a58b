// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Null{}, Null{}, true},
		{Null{}, Bool(false), false},
		{Number("1"), Number("1.0"), true},
		{Number("1e2"), Number("100"), true},
		{Number("1"), Number("2"), false},
		{Number("NaN"), Number("NaN"), true},
		{Number("NaN"), Number("nan"), false},
		{String("1"), Number("1"), false},
		{List{Number("1")}, List{Number("1.00")}, true},
		{List{Number("1")}, List{Number("1"), Null{}}, false},
		{Map{"a": Null{}, "b": Bool(true)}, Map{"b": Bool(true), "a": Null{}}, true},
		{Map{"a": Null{}}, Map{"b": Null{}}, false},
		{nil, nil, true},
		{nil, Null{}, false},
	}
	for _, test := range tests {
		if got := Equal(test.a, test.b); got != test.want {
			t.Errorf("Equal(%#v, %#v) = %t, want %t", test.a, test.b, got, test.want)
		}
	}
}

func TestFromGo(t *testing.T) {
	got, err := FromGo(map[string]any{
		"n":    nil,
		"i":    42,
		"u":    uint8(7),
		"f":    0.5,
		"j":    json.Number("1e9"),
		"s":    []string{"x", "y"},
		"m":    map[string]int{"k": 1},
		"v":    Bool(true),
		"list": []any{false, "z"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := Map{
		"n":    Null{},
		"i":    Number("42"),
		"u":    Number("7"),
		"f":    Number("0.5"),
		"j":    Number("1e9"),
		"s":    List{String("x"), String("y")},
		"m":    Map{"k": Number("1")},
		"v":    Bool(true),
		"list": List{Bool(false), String("z")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong result\n%s", diff)
	}
}

func TestFromGo_unsupported(t *testing.T) {
	for _, v := range []any{math.Inf(1), math.NaN(), make(chan int), map[int]string{1: "x"}, []any{func() {}}} {
		_, err := FromGo(v)
		var encErr *EncodeError
		if !errors.As(err, &encErr) {
			t.Errorf("FromGo(%T): expected *EncodeError, got %v", v, err)
		}
	}
}

func TestToGo(t *testing.T) {
	got := ToGo(Map{"a": List{Number("1"), Null{}, String("s"), Bool(true)}})
	want := map[string]any{"a": []any{json.Number("1"), nil, "s", true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong result\n%s", diff)
	}
}
