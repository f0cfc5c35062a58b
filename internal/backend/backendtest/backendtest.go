// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package backendtest contains the conformance checks that every
// [backend.Backend] implementation is expected to pass.
package backendtest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
)

// TestBackend exercises the full Backend contract against b, which must be
// writable. Its previous content is overwritten.
func TestBackend(t *testing.T, b backend.Backend) {
	t.Helper()
	ctx := context.Background()

	if b.Identity() == "" {
		t.Fatalf("backend has an empty identity")
	}

	initial := document.Map{
		"name":  document.String("lazydoc"),
		"count": document.Number("3"),
		"tags":  document.List{document.String("a"), document.String("b")},
		"nested": document.Map{
			"precise": document.Number("0.10000000000000000000000001"),
		},
	}
	if err := b.Store(ctx, initial); err != nil {
		t.Fatalf("store: %s", err)
	}
	assertDocument(t, b, initial)
	// A second fetch with no intervening store sees the same document.
	assertDocument(t, b, initial)

	got, err := backend.Resolve(ctx, b, document.Path{document.Key("tags"), document.Index(1)})
	if err != nil {
		t.Fatalf("resolve: %s", err)
	}
	if !document.Equal(got, document.String("b")) {
		t.Fatalf("resolve returned %#v", got)
	}

	if err := backend.Assign(ctx, b, document.Path{document.Key("nested"), document.Key("added")}, document.Bool(true)); err != nil {
		t.Fatalf("assign: %s", err)
	}
	if err := backend.Insert(ctx, b, document.Path{document.Key("tags"), document.Index(0)}, document.String("z")); err != nil {
		t.Fatalf("insert: %s", err)
	}
	if err := backend.Remove(ctx, b, document.Path{document.Key("count")}); err != nil {
		t.Fatalf("remove: %s", err)
	}
	want := document.Map{
		"name": document.String("lazydoc"),
		"tags": document.List{document.String("z"), document.String("a"), document.String("b")},
		"nested": document.Map{
			"precise": document.Number("0.10000000000000000000000001"),
			"added":   document.Bool(true),
		},
	}
	assertDocument(t, b, want)

	err = backend.Assign(ctx, b, document.Path{document.Key("name"), document.Key("first")}, document.Null{})
	var pathErr *document.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("assign below a scalar: expected *document.PathError, got %T: %v", err, err)
	}
	assertDocument(t, b, want)

	err = b.Store(ctx, document.Map{"bad": document.Number("NaN")})
	var encErr *document.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("store of unencodable value: expected *document.EncodeError, got %T: %v", err, err)
	}
	assertDocument(t, b, want)

	if err := backend.Assign(ctx, b, nil, document.List{}); err != nil {
		t.Fatalf("assign root: %s", err)
	}
	assertDocument(t, b, document.List{})

	if err := backend.Remove(ctx, b, nil); err != nil {
		t.Fatalf("remove root: %s", err)
	}
	assertDocument(t, b, document.Null{})
}

func assertDocument(t *testing.T, b backend.Backend, want document.Value) {
	t.Helper()
	got, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %s", err)
	}
	if !document.Equal(want, got) {
		t.Fatalf("wrong document\n%s", cmp.Diff(want, got))
	}
}
