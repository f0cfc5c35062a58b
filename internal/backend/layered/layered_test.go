// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package layered

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/backend/backendtest"
	"github.com/opentofu/lazydoc/internal/backend/constant"
	"github.com/opentofu/lazydoc/internal/document"
)

// spyBackend counts calls and can be made to fail.
type spyBackend struct {
	backend.Backend
	fetches  int
	stores   int
	fetchErr error
}

func (s *spyBackend) Fetch(ctx context.Context) (document.Value, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.Backend.Fetch(ctx)
}

func (s *spyBackend) Store(ctx context.Context, v document.Value) error {
	s.stores++
	return s.Backend.Store(ctx, v)
}

func spy(v any) *spyBackend {
	return &spyBackend{Backend: constant.New(document.MustFromGo(v))}
}

func TestBackend_impl(t *testing.T) {
	var _ backend.Backend = new(Backend)
}

func TestBackend(t *testing.T) {
	b, err := New(constant.New(nil))
	if err != nil {
		t.Fatal(err)
	}
	backendtest.TestBackend(t, b)
}

func TestBackend_nullFirstLayer(t *testing.T) {
	b, err := New(constant.New(nil), constant.New(document.Map{"fallback": document.Bool(true)}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !document.Equal(got, document.Null{}) {
		t.Errorf("null first layer should win outright, got %#v", got)
	}
}

func TestNew_noLayers(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error")
	}
}

func TestBackend_identity(t *testing.T) {
	l0, l1 := constant.New(nil), constant.New(nil)
	b, err := New(l0, l1)
	if err != nil {
		t.Fatal(err)
	}
	want := "layered[" + l0.Identity() + "," + l1.Identity() + "]"
	if got := b.Identity(); got != want {
		t.Errorf("wrong identity %q, want %q", got, want)
	}
}

func TestBackend_storeTargetsFirstLayer(t *testing.T) {
	ctx := context.Background()
	b0 := spy(map[string]any{"a": 1})
	b1 := spy(map[string]any{"b": 2})
	b, err := New(b0, b1)
	if err != nil {
		t.Fatal(err)
	}

	if err := backend.Assign(ctx, b, document.Path{document.Key("c")}, document.Number("3")); err != nil {
		t.Fatal(err)
	}
	if b0.stores != 1 || b1.stores != 0 {
		t.Errorf("stores: first layer %d, second layer %d", b0.stores, b1.stores)
	}

	got, err := b1.Backend.Fetch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !document.Equal(got, document.MustFromGo(map[string]any{"b": 2})) {
		t.Errorf("second layer was modified: %#v", got)
	}
	got, err = b.Fetch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !document.Equal(got, document.MustFromGo(map[string]any{"a": 1, "b": 2, "c": 3})) {
		t.Errorf("wrong merged document: %#v", got)
	}
}

func TestBackend_lazyFetch(t *testing.T) {
	tests := map[string]struct {
		layers []*spyBackend
		want   []int
	}{
		"all maps": {
			layers: []*spyBackend{spy(map[string]any{}), spy(map[string]any{}), spy(map[string]any{})},
			want:   []int{1, 1, 1},
		},
		"scalar first": {
			layers: []*spyBackend{spy("x"), spy(map[string]any{}), spy(map[string]any{})},
			want:   []int{1, 0, 0},
		},
		"list in the middle": {
			layers: []*spyBackend{spy(map[string]any{}), spy([]any{}), spy(map[string]any{})},
			want:   []int{1, 1, 0},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			layers := make([]backend.Backend, len(test.layers))
			for i, l := range test.layers {
				layers[i] = l
			}
			b, err := New(layers...)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := b.Fetch(context.Background()); err != nil {
				t.Fatal(err)
			}
			for i, l := range test.layers {
				if l.fetches != test.want[i] {
					t.Errorf("layer %d fetched %d times, want %d", i, l.fetches, test.want[i])
				}
			}
		})
	}
}

func TestBackend_fetchErrorPropagates(t *testing.T) {
	wantErr := &backend.StorageError{Op: "fetch", Identity: "test", Err: errors.New("unreachable")}
	b0 := spy(map[string]any{"a": 1})
	b1 := spy(map[string]any{"b": 2})
	b1.fetchErr = wantErr
	b, err := New(b0, b1)
	if err != nil {
		t.Fatal(err)
	}

	_, err = b.Fetch(context.Background())
	if err != error(wantErr) {
		t.Fatalf("error was not passed through unchanged: %v", err)
	}

	err = backend.Assign(context.Background(), b, document.Path{document.Key("a")}, document.Null{})
	if err != error(wantErr) {
		t.Fatalf("error was not passed through unchanged: %v", err)
	}
	if b0.stores != 0 {
		t.Errorf("first layer was written despite the failed fetch")
	}
}

func TestBackend_resolveFallback(t *testing.T) {
	b, err := New(
		spy(map[string]any{"server": map[string]any{"port": 8080}}),
		spy(map[string]any{"server": map[string]any{"host": "localhost", "port": 80}}),
	)
	if err != nil {
		t.Fatal(err)
	}
	got, err := backend.Resolve(context.Background(), b, document.Path{document.Key("server"), document.Key("host")})
	if err != nil {
		t.Fatal(err)
	}
	if !document.Equal(got, document.String("localhost")) {
		t.Errorf("wrong value %#v", got)
	}
	if !strings.HasPrefix(b.Identity(), "layered[") {
		t.Errorf("wrong identity %q", b.Identity())
	}
}
