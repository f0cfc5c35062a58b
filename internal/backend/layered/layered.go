// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package layered implements a backend presenting several backends as one
// document, with earlier layers taking precedence over later ones.
//
// Only the first layer is ever written. The others supply fallback values
// for keys the first layer does not set; see [Merge] for the exact rule.
package layered

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
)

// Backend merges the documents of its layers on every Fetch.
type Backend struct {
	layers []backend.Backend
	id     string
}

var _ backend.Backend = (*Backend)(nil)

// New returns a backend over layers, highest priority first. At least one
// layer is required.
func New(layers ...backend.Backend) (*Backend, error) {
	if len(layers) == 0 {
		return nil, errors.New("layered backend requires at least one layer")
	}

	ids := make([]string, len(layers))
	for i, l := range layers {
		ids[i] = l.Identity()
	}
	return &Backend{
		layers: append([]backend.Backend(nil), layers...),
		id:     "layered[" + strings.Join(ids, ",") + "]",
	}, nil
}

func (b *Backend) Identity() string {
	return b.id
}

// Fetch fetches the layers in order and merges their documents. Fetching
// stops at the first layer whose document is not a map, since no later
// layer can contribute to the result. An error from any layer is returned
// unchanged.
func (b *Backend) Fetch(ctx context.Context) (document.Value, error) {
	docs := make([]document.Value, 0, len(b.layers))
	for i, l := range b.layers {
		doc, err := l.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		if _, ok := doc.(document.Map); !ok {
			if i+1 < len(b.layers) {
				log.Printf("[TRACE] layered: layer %d (%s) is a %s, skipping %d lower layers", i, l.Identity(), document.KindOf(doc), len(b.layers)-i-1)
			}
			break
		}
	}
	return Merge(docs...), nil
}

// Store writes v to the first layer only.
func (b *Backend) Store(ctx context.Context, v document.Value) error {
	return b.layers[0].Store(ctx, v)
}
