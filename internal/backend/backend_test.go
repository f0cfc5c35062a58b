// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opentofu/lazydoc/internal/document"
)

// countingBackend keeps its document encoded, like a real store would, and
// counts calls so that tests can observe round trips.
type countingBackend struct {
	mu      sync.Mutex
	data    []byte
	fetches int
	stores  int
}

func newCountingBackend(t *testing.T, v document.Value) *countingBackend {
	data, err := document.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	return &countingBackend{data: data}
}

func (b *countingBackend) Fetch(context.Context) (document.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	return document.Decode(b.data)
}

func (b *countingBackend) Store(_ context.Context, v document.Value) error {
	data, err := document.Encode(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stores++
	b.data = data
	return nil
}

func (b *countingBackend) Identity() string {
	return "counting"
}

type updatingBackend struct {
	*countingBackend
	updates int
}

func (b *updatingBackend) Update(ctx context.Context, fn func(document.Value) (document.Value, error)) error {
	b.updates++
	doc, err := b.Fetch(ctx)
	if err != nil {
		return err
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	return b.Store(ctx, doc)
}

func TestResolve(t *testing.T) {
	b := newCountingBackend(t, document.Map{"a": document.List{document.Number("1"), document.Number("2")}})
	got, err := Resolve(context.Background(), b, document.Path{document.Key("a"), document.Index(1)})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff(document.Number("2"), got); diff != "" {
		t.Errorf("wrong value\n%s", diff)
	}
	if b.fetches != 1 || b.stores != 0 {
		t.Errorf("got %d fetches and %d stores, want 1 and 0", b.fetches, b.stores)
	}
}

func TestPathOperations_eachIsOneRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend(t, document.Map{"l": document.List{}})

	if err := Assign(ctx, b, document.Path{document.Key("k")}, document.String("v")); err != nil {
		t.Fatal(err)
	}
	if err := Insert(ctx, b, document.Path{document.Key("l"), document.Index(0)}, document.Null{}); err != nil {
		t.Fatal(err)
	}
	if err := Remove(ctx, b, document.Path{document.Key("k")}); err != nil {
		t.Fatal(err)
	}
	if b.fetches != 3 || b.stores != 3 {
		t.Errorf("got %d fetches and %d stores, want 3 and 3", b.fetches, b.stores)
	}

	got, err := b.Fetch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := document.Map{"l": document.List{document.Null{}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong document\n%s", diff)
	}
}

func TestAssign_pathFaultDoesNotStore(t *testing.T) {
	b := newCountingBackend(t, document.Map{"a": document.Number("1")})
	err := Assign(context.Background(), b, document.Path{document.Key("a"), document.Key("b")}, document.Null{})
	var pathErr *document.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected *document.PathError, got %T: %v", err, err)
	}
	if !errors.Is(err, document.ErrNotContainer) {
		t.Errorf("wrong reason: %s", err)
	}
	if b.stores != 0 {
		t.Errorf("a failed assign stored %d times", b.stores)
	}
}

func TestUpdate_usesUpdater(t *testing.T) {
	b := &updatingBackend{countingBackend: newCountingBackend(t, document.Map{})}
	if err := Assign(context.Background(), b, document.Path{document.Key("x")}, document.Bool(true)); err != nil {
		t.Fatal(err)
	}
	if b.updates != 1 {
		t.Errorf("Updater was called %d times, want 1", b.updates)
	}
}

func TestUpdate_fetchErrorPropagates(t *testing.T) {
	b := &countingBackend{data: []byte("{")}
	err := Remove(context.Background(), b, document.Path{document.Key("x")})
	var decErr *document.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *document.DecodeError, got %T: %v", err, err)
	}
	if b.stores != 0 {
		t.Errorf("stored after a failed fetch")
	}
}

func TestStorageError(t *testing.T) {
	err := error(&StorageError{Op: "fetch", Identity: "file:///x.json", Err: ErrNotExist})
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("StorageError does not unwrap to its cause")
	}
	if got, want := err.Error(), "failed to fetch file:///x.json: file does not exist"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
