// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"bytes"
	"context"
	"testing"

	"github.com/opentofu/lazydoc/internal/backend/backendtest"
	"github.com/opentofu/lazydoc/internal/document"
)

// TestClient checks that c stores and returns blobs unchanged, and then runs
// the backend conformance checks against a Backend built on c. Whatever c
// held before is overwritten.
func TestClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	data, err := document.Encode(document.Map{
		"client": document.String(c.Identity()),
		"list":   document.List{document.Number("1"), document.Number("2.50")},
	})
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if err := c.Put(ctx, data); err != nil {
		t.Fatalf("put: %s", err)
	}

	p, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if p == nil {
		t.Fatalf("get returned no payload after put")
	}
	if !bytes.Equal(p.Data, data) {
		t.Fatalf("expected %q\n\ngot: %q", string(data), string(p.Data))
	}

	b, err := NewBackend(c, Config{})
	if err != nil {
		t.Fatalf("new backend: %s", err)
	}
	backendtest.TestBackend(t, b)
}
