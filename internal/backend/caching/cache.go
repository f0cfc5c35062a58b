// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package caching

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mitchellh/copystructure"
	"golang.org/x/sync/singleflight"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
)

// Cache holds at most one document per backend identity. Entries never
// expire on their own; the owner decides how long a Cache lives, typically
// one logical unit of work, and calls Reset or discards it afterwards.
//
// A Cache is safe for concurrent use. Concurrent misses for the same
// identity share a single fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[string]document.Value

	// gens counts evictions per identity and epoch counts resets, so that
	// a fetch that started before an eviction does not repopulate the
	// entry with the document the eviction was meant to discard.
	gens  map[string]uint64
	epoch uint64

	fills singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]document.Value),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached document for b's identity, fetching it from b
// first if there is no entry. The caller owns the returned value.
//
// A fetch shared by concurrent callers is not cancelled with the context
// of the caller that started it; each caller stops waiting when its own
// ctx is done.
func (c *Cache) Get(ctx context.Context, b backend.Backend) (document.Value, error) {
	id := b.Identity()

	c.mu.Lock()
	if v, ok := c.entries[id]; ok {
		c.mu.Unlock()
		log.Printf("[TRACE] caching: hit for %s", id)
		return deepCopy(v)
	}
	gen, epoch := c.gens[id], c.epoch
	c.mu.Unlock()

	fillCtx := context.WithoutCancel(ctx)
	ch := c.fills.DoChan(id, func() (any, error) {
		log.Printf("[TRACE] caching: miss for %s", id)
		doc, err := b.Fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[id] == gen && c.epoch == epoch {
			c.entries[id] = doc
		}
		c.mu.Unlock()
		return doc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return deepCopy(res.Val.(document.Value))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Forget evicts the entry for the given identity, if any.
func (c *Cache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.gens[id]++
}

// Reset evicts every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.epoch++
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func deepCopy(v document.Value) (document.Value, error) {
	if v == nil {
		return nil, nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("copying cached document: %w", err)
	}
	return cp.(document.Value), nil
}
