// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package caching implements a backend decorator that remembers the
// document of the backend it wraps in a caller-owned [Cache].
//
// Several caching backends may share one Cache. A typical caller creates a
// Cache per request or per command, wraps each backend it reads from, and
// drops the Cache at the end, so repeated path lookups within that window
// cost one fetch per backend.
package caching

import (
	"context"
	"log"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
)

// Backend serves Fetch from a Cache and invalidates it on Store.
type Backend struct {
	inner backend.Backend
	cache *Cache
}

var _ backend.Backend = (*Backend)(nil)

// New wraps inner so that its document is cached in cache.
func New(inner backend.Backend, cache *Cache) *Backend {
	return &Backend{
		inner: inner,
		cache: cache,
	}
}

// Identity returns the identity of the wrapped backend, since the cached
// document is that backend's document.
func (b *Backend) Identity() string {
	return b.inner.Identity()
}

func (b *Backend) Fetch(ctx context.Context) (document.Value, error) {
	return b.cache.Get(ctx, b.inner)
}

// Store evicts the cached document and then stores v in the wrapped
// backend. The eviction happens even if the store fails.
func (b *Backend) Store(ctx context.Context, v document.Value) error {
	id := b.inner.Identity()
	b.cache.Forget(id)
	if err := b.inner.Store(ctx, v); err != nil {
		log.Printf("[DEBUG] caching: store to %s failed after eviction: %s", id, err)
		return err
	}
	return nil
}
