// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package constant implements a backend that keeps its document in memory.
// It is typically used as the lowest-priority layer of a layered view, to
// supply default values, and in tests.
package constant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/copystructure"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
)

// Backend holds a document in memory. Every Fetch returns a deep copy, so
// callers never alias the held value.
type Backend struct {
	mu    sync.Mutex
	value document.Value
	id    string
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Updater = (*Backend)(nil)
)

// New returns a backend initially holding v; a nil v means null.
//
// Each backend gets a fresh identity, so two constant backends are never
// interchangeable even when they hold equal documents.
func New(v document.Value) *Backend {
	if v == nil {
		v = document.Null{}
	}
	return &Backend{
		value: v,
		id:    "constant:" + uuid.NewString(),
	}
}

func (b *Backend) Fetch(context.Context) (document.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return deepCopy(b.value)
}

// Store validates v with the codec before keeping it, so this backend
// accepts exactly the documents a durable backend would.
func (b *Backend) Store(_ context.Context, v document.Value) error {
	if err := document.Validate(v); err != nil {
		return err
	}
	cp, err := deepCopy(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = cp
	return nil
}

func (b *Backend) Update(ctx context.Context, fn func(document.Value) (document.Value, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := deepCopy(b.value)
	if err != nil {
		return err
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	if err := document.Validate(doc); err != nil {
		return err
	}
	b.value = doc
	return nil
}

func (b *Backend) Identity() string {
	return b.id
}

func deepCopy(v document.Value) (document.Value, error) {
	cp, err := copystructure.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	if cp == nil {
		return nil, nil
	}
	return cp.(document.Value), nil
}
