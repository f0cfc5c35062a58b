// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package node provides Node, a lazy reference to one location inside a
// document held by a backend.
//
// A Node owns no data. Reading it fetches the current document and
// resolves the node's path; writing through it runs one fetch-mutate-store
// cycle against the backend. Deriving child or parent nodes never touches
// the backend, so a Node may point at a location that does not exist yet,
// or no longer exists.
package node

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/backend/constant"
	"github.com/opentofu/lazydoc/internal/document"
)

// Node addresses the value at Path inside the document held by a backend.
// The zero Node is not usable.
type Node struct {
	backend backend.Backend
	path    document.Path
}

// New returns a node addressing path inside the document held by b. With
// no segments the node addresses the document root.
func New(b backend.Backend, path ...document.Segment) Node {
	return Node{
		backend: b,
		path:    append(document.Path(nil), path...),
	}
}

// FromValue returns a root node over a new in-memory backend initially
// holding v.
func FromValue(v document.Value) Node {
	return New(constant.New(v))
}

// From normalizes src into a root node. src may be a Node (returned as
// is), a backend.Backend, a document.Value, or a Go value that
// document.FromGo can convert, which is held in memory.
func From(src any) (Node, error) {
	switch src := src.(type) {
	case Node:
		return src, nil
	case backend.Backend:
		return New(src), nil
	case document.Value:
		return FromValue(src), nil
	}
	v, err := document.FromGo(src)
	if err != nil {
		return Node{}, err
	}
	return FromValue(v), nil
}

// Backend returns the backend the node reads from and writes to.
func (n Node) Backend() backend.Backend {
	return n.backend
}

// Path returns a copy of the node's path.
func (n Node) Path() document.Path {
	return append(document.Path(nil), n.path...)
}

// Key returns the last segment of the node's path, or false for a root
// node.
func (n Node) Key() (document.Segment, bool) {
	return n.path.Last()
}

// Parent returns the node one segment up, or false for a root node.
func (n Node) Parent() (Node, bool) {
	parent, ok := n.path.Parent()
	if !ok {
		return Node{}, false
	}
	return Node{backend: n.backend, path: parent}, true
}

// Get returns the child node at seg. It does not check that the child
// exists.
func (n Node) Get(seg document.Segment) Node {
	return Node{backend: n.backend, path: n.path.Child(seg)}
}

// Field is shorthand for Get(document.Key(key)).
func (n Node) Field(key string) Node {
	return n.Get(document.Key(key))
}

// Elem is shorthand for Get(document.Index(i)).
func (n Node) Elem(i int) Node {
	return n.Get(document.Index(i))
}

// Value fetches the current document and returns the value at the node's
// path.
func (n Node) Value(ctx context.Context) (document.Value, error) {
	return backend.Resolve(ctx, n.backend, n.path)
}

// Set replaces the value at the node's path with v. On a root node it
// replaces the whole document.
func (n Node) Set(ctx context.Context, v document.Value) error {
	return backend.Assign(ctx, n.backend, n.path, v)
}

// SetNode replaces the value at the node's path with the current value of
// src, which may live in a different backend.
func (n Node) SetNode(ctx context.Context, src Node) error {
	v, err := src.Value(ctx)
	if err != nil {
		return err
	}
	return n.Set(ctx, v)
}

// SetChild replaces or adds the child at seg.
func (n Node) SetChild(ctx context.Context, seg document.Segment, v document.Value) error {
	return backend.Assign(ctx, n.backend, n.path.Child(seg), v)
}

// Insert inserts v into the list this node addresses, before the element
// at seg. An index equal to the list length appends.
func (n Node) Insert(ctx context.Context, seg document.Segment, v document.Value) error {
	return backend.Insert(ctx, n.backend, n.path.Child(seg), v)
}

// Delete removes the child at seg.
func (n Node) Delete(ctx context.Context, seg document.Segment) error {
	return backend.Remove(ctx, n.backend, n.path.Child(seg))
}

// Lookup returns the current value of the child at seg, or def if it
// cannot be read for any reason.
func (n Node) Lookup(ctx context.Context, seg document.Segment, def document.Value) document.Value {
	v, err := n.Get(seg).Value(ctx)
	if err != nil {
		return def
	}
	return v
}

// Children iterates over the child nodes of a map or list node. Map
// children come in key order.
//
// The container is read once to learn its keys or length; the yielded
// nodes are lazy and read the document again when used. Mutations made
// while iterating may or may not be observed.
func (n Node) Children(ctx context.Context) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		v, err := n.Value(ctx)
		if err != nil {
			yield(Node{}, err)
			return
		}
		switch v := v.(type) {
		case document.Map:
			for _, k := range v.Keys() {
				if !yield(n.Field(k), nil) {
					return
				}
			}
		case document.List:
			for i := range v {
				if !yield(n.Elem(i), nil) {
					return
				}
			}
		default:
			yield(Node{}, fmt.Errorf("cannot iterate %s: %w", n, document.ErrNotContainer))
		}
	}
}

// Len returns the number of entries of a map, elements of a list, or
// characters of a string.
func (n Node) Len(ctx context.Context) (int, error) {
	v, err := n.Value(ctx)
	if err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case document.Map:
		return len(v), nil
	case document.List:
		return len(v), nil
	case document.String:
		return utf8.RuneCountInString(string(v)), nil
	default:
		return 0, fmt.Errorf("%s has no length: value is %s", n, document.KindOf(v))
	}
}

// Contains reports whether the node's value contains item: a map contains
// the keys it has, a list contains elements equal to item, and a string
// contains its substrings.
func (n Node) Contains(ctx context.Context, item document.Value) (bool, error) {
	v, err := n.Value(ctx)
	if err != nil {
		return false, err
	}
	switch v := v.(type) {
	case document.Map:
		k, ok := item.(document.String)
		if !ok {
			return false, nil
		}
		_, exists := v[string(k)]
		return exists, nil
	case document.List:
		for _, elem := range v {
			if document.Equal(elem, item) {
				return true, nil
			}
		}
		return false, nil
	case document.String:
		s, ok := item.(document.String)
		if !ok {
			return false, fmt.Errorf("cannot search a string for a %s", document.KindOf(item))
		}
		return strings.Contains(string(v), string(s)), nil
	default:
		return false, fmt.Errorf("%s is not a container: value is %s", n, document.KindOf(v))
	}
}

// Equal reports whether n and other currently resolve to equal values.
func (n Node) Equal(ctx context.Context, other Node) (bool, error) {
	a, err := n.Value(ctx)
	if err != nil {
		return false, err
	}
	b, err := other.Value(ctx)
	if err != nil {
		return false, err
	}
	return document.Equal(a, b), nil
}

// SameRef reports whether n and other address the same location of the
// same underlying resource, regardless of the values stored there.
func (n Node) SameRef(other Node) bool {
	if n.backend == nil || other.backend == nil {
		return n.backend == other.backend && n.path.Equal(other.path)
	}
	return n.backend.Identity() == other.backend.Identity() && n.path.Equal(other.path)
}

// String returns the node's reference in the form identity:path. It does
// not read the backend.
func (n Node) String() string {
	id := "<nil>"
	if n.backend != nil {
		id = n.backend.Identity()
	}
	return id + ":" + n.path.String()
}
