// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDoc() Value {
	return Map{
		"a":    Number("1"),
		"list": List{String("x"), Map{"deep": Bool(true)}},
		"obj":  Map{"k": String("v")},
	}
}

func TestResolve(t *testing.T) {
	tests := map[string]struct {
		path Path
		want Value
	}{
		"root":       {Path{}, testDoc()},
		"key":        {Path{Key("a")}, Number("1")},
		"index":      {Path{Key("list"), Index(0)}, String("x")},
		"deep":       {Path{Key("list"), Index(1), Key("deep")}, Bool(true)},
		"nested map": {Path{Key("obj")}, Map{"k": String("v")}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Resolve(testDoc(), test.path)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong value\n%s", diff)
			}
		})
	}
}

func TestResolve_faults(t *testing.T) {
	tests := map[string]struct {
		path  Path
		depth int
		err   error
	}{
		"scalar prefix": {Path{Key("a"), Key("b")}, 1, ErrNotContainer},
		"missing key":   {Path{Key("nope")}, 0, ErrNoSuchKey},
		"out of range":  {Path{Key("list"), Index(2)}, 1, ErrIndexOutOfRange},
		"negative":      {Path{Key("list"), Index(-1)}, 1, ErrIndexOutOfRange},
		"key on list":   {Path{Key("list"), Key("x")}, 1, ErrSegmentKind},
		"index on map":  {Path{Index(0)}, 0, ErrSegmentKind},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(testDoc(), test.path)
			var pathErr *PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected *PathError, got %T: %v", err, err)
			}
			if pathErr.Depth != test.depth {
				t.Errorf("wrong depth %d, want %d", pathErr.Depth, test.depth)
			}
			if !errors.Is(err, test.err) {
				t.Errorf("wrong reason %v, want %v", pathErr.Err, test.err)
			}
		})
	}
}

func TestAssign(t *testing.T) {
	tests := map[string]struct {
		path Path
		v    Value
		want Value
	}{
		"root": {Path{}, String("new"), String("new")},
		"new key": {Path{Key("b")}, Null{}, Map{
			"a": Number("1"), "b": Null{},
			"list": List{String("x"), Map{"deep": Bool(true)}},
			"obj":  Map{"k": String("v")},
		}},
		"list element": {Path{Key("list"), Index(0)}, Number("9"), Map{
			"a":    Number("1"),
			"list": List{Number("9"), Map{"deep": Bool(true)}},
			"obj":  Map{"k": String("v")},
		}},
		"deep": {Path{Key("list"), Index(1), Key("deep")}, Bool(false), Map{
			"a":    Number("1"),
			"list": List{String("x"), Map{"deep": Bool(false)}},
			"obj":  Map{"k": String("v")},
		}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Assign(testDoc(), test.path, test.v)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong document\n%s", diff)
			}
		})
	}
}

func TestAssign_faults(t *testing.T) {
	for name, path := range map[string]Path{
		"scalar prefix":  {Key("a"), Key("b")},
		"missing prefix": {Key("missing"), Key("b")},
		"past end":       {Key("list"), Index(2)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Assign(testDoc(), path, Null{})
			var pathErr *PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected *PathError, got %T: %v", err, err)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := map[string]struct {
		index int
		want  List
	}{
		"front":  {0, List{Number("0"), String("x"), String("y")}},
		"middle": {1, List{String("x"), Number("0"), String("y")}},
		"append": {2, List{String("x"), String("y"), Number("0")}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			doc := Map{"l": List{String("x"), String("y")}}
			got, err := Insert(doc, Path{Key("l"), Index(test.index)}, Number("0"))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(Map{"l": test.want}, got); diff != "" {
				t.Errorf("wrong document\n%s", diff)
			}
		})
	}

	if _, err := Insert(Map{"l": List{}}, Path{Key("l"), Index(1)}, Null{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("insert past end: got %v", err)
	}
	if _, err := Insert(Map{"m": Map{}}, Path{Key("m"), Key("k")}, Null{}); !errors.Is(err, ErrSegmentKind) {
		t.Errorf("insert into map: got %v", err)
	}
}

func TestRemove(t *testing.T) {
	got, err := Remove(testDoc(), Path{Key("list"), Index(0)})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := Map{
		"a":    Number("1"),
		"list": List{Map{"deep": Bool(true)}},
		"obj":  Map{"k": String("v")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong document\n%s", diff)
	}

	got, err = Remove(testDoc(), Path{Key("obj"), Key("k")})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff(Map{}, got.(Map)["obj"]); diff != "" {
		t.Errorf("wrong document\n%s", diff)
	}

	got, err = Remove(testDoc(), Path{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, ok := got.(Null); !ok {
		t.Errorf("removing the root should leave null, got %#v", got)
	}

	if _, err := Remove(testDoc(), Path{Key("missing")}); !errors.Is(err, ErrNoSuchKey) {
		t.Errorf("removing a missing key: got %v", err)
	}
}
