// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package backend defines the contract every document store implements and
// the path-level operations built once on top of it.
//
// A Backend only knows how to fetch the whole current document and how to
// replace it. [Resolve], [Assign], [Insert] and [Remove] derive
// path-addressed reads and writes from those two primitives; each call is
// its own independent fetch-mutate-store round trip. Backends that need
// that round trip to be exclusive within the process implement [Updater].
package backend

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/opentofu/lazydoc/internal/document"
)

// Backend is the interface implemented by every document store.
type Backend interface {
	// Fetch returns the document as currently persisted. It fails with a
	// *StorageError if the resource cannot be read and with a
	// *document.DecodeError if its content is not a valid document.
	//
	// The returned value belongs to the caller, which may modify it.
	Fetch(ctx context.Context) (document.Value, error)

	// Store replaces the whole persisted document with v. It fails with a
	// *document.EncodeError, before touching the resource, if v cannot be
	// encoded, and with a *StorageError if the write fails.
	Store(ctx context.Context, v document.Value) error

	// Identity returns a stable string naming the underlying resource.
	// Two backends with the same identity are interchangeable for caching
	// and equality purposes.
	Identity() string
}

// Updater is implemented by backends that serialize read-modify-write
// cycles. Update must fetch the document, pass it to fn and store the
// result, holding whatever lock makes that cycle exclusive with respect to
// other calls on the same backend object.
type Updater interface {
	Update(ctx context.Context, fn func(document.Value) (document.Value, error)) error
}

// ErrNotExist is wrapped by the *StorageError a backend returns when the
// resource holding its document does not exist.
var ErrNotExist = fs.ErrNotExist

// StorageError reports that a backend's resource could not be read or
// written.
type StorageError struct {
	// Op is "fetch" or "store".
	Op       string
	Identity string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.Identity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
