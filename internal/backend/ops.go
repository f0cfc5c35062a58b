// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"

	"github.com/opentofu/lazydoc/internal/document"
)

// Resolve fetches the current document from b and returns the value at
// path.
func Resolve(ctx context.Context, b Backend, path document.Path) (document.Value, error) {
	doc, err := b.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return document.Resolve(doc, path)
}

// Assign replaces the value at path with v and stores the resulting
// document. An empty path replaces the whole document.
func Assign(ctx context.Context, b Backend, path document.Path, v document.Value) error {
	return Update(ctx, b, func(doc document.Value) (document.Value, error) {
		return document.Assign(doc, path, v)
	})
}

// Insert inserts v into the list addressed by the prefix of path, at the
// index given by its last segment, and stores the resulting document.
func Insert(ctx context.Context, b Backend, path document.Path, v document.Value) error {
	return Update(ctx, b, func(doc document.Value) (document.Value, error) {
		return document.Insert(doc, path, v)
	})
}

// Remove deletes the map entry or list element at path and stores the
// resulting document. Removing the empty path stores null.
func Remove(ctx context.Context, b Backend, path document.Path) error {
	return Update(ctx, b, func(doc document.Value) (document.Value, error) {
		return document.Remove(doc, path)
	})
}

// Update runs one fetch-mutate-store cycle against b. If fn fails nothing
// is stored. Backends implementing [Updater] run the cycle themselves.
func Update(ctx context.Context, b Backend, fn func(document.Value) (document.Value, error)) error {
	if u, ok := b.(Updater); ok {
		return u.Update(ctx, fn)
	}
	doc, err := b.Fetch(ctx)
	if err != nil {
		return err
	}
	newDoc, err := fn(doc)
	if err != nil {
		return err
	}
	return b.Store(ctx, newDoc)
}
