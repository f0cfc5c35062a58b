// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
	"github.com/opentofu/lazydoc/internal/retry"
)

// Config holds the settings every remote-store backend shares. Concrete
// stores embed it in their own configuration.
type Config struct {
	retry.Policy `mapstructure:",squash"`

	// InitialValue, if set, is put to the store the first time the document
	// is read and the store turns out to be empty.
	InitialValue document.Value `mapstructure:"-"`
}

// Backend adapts a Client to the backend.Backend contract.
type Backend struct {
	client  Client
	policy  retry.Policy
	initial document.Value

	initMu      sync.Mutex
	initialized bool

	// mu serializes Store and Update on this object.
	mu sync.Mutex
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Updater = (*Backend)(nil)
)

// NewBackend returns a backend storing its document through client.
func NewBackend(client Client, cfg Config) (*Backend, error) {
	if cfg.InitialValue != nil {
		if err := document.Validate(cfg.InitialValue); err != nil {
			return nil, fmt.Errorf("invalid initial value: %w", err)
		}
	}
	return &Backend{
		client:      client,
		policy:      cfg.Policy.OrDefault(),
		initial:     cfg.InitialValue,
		initialized: cfg.InitialValue == nil,
	}, nil
}

// Client returns the transport the backend was created with.
func (b *Backend) Client() Client {
	return b.client
}

func (b *Backend) Identity() string {
	return b.client.Identity()
}

// Fetch gets and decodes the blob. A blob that does not decode, or that
// does not match its checksum, is fetched again according to the retry
// policy. An empty store is a *backend.StorageError wrapping
// backend.ErrNotExist.
func (b *Backend) Fetch(ctx context.Context) (document.Value, error) {
	if err := b.init(ctx); err != nil {
		return nil, err
	}
	return retry.Do(ctx, b.policy, isDecodeError, b.fetchOnce)
}

func (b *Backend) fetchOnce(ctx context.Context) (document.Value, error) {
	id := b.client.Identity()
	payload, err := b.client.Get(ctx)
	if err != nil {
		return nil, &backend.StorageError{Op: "fetch", Identity: id, Err: err}
	}
	if payload == nil {
		return nil, &backend.StorageError{Op: "fetch", Identity: id, Err: backend.ErrNotExist}
	}

	if len(payload.MD5) > 0 {
		sum := md5.Sum(payload.Data)
		if !bytes.Equal(sum[:], payload.MD5) {
			return nil, &document.DecodeError{Err: fmt.Errorf("checksum mismatch: stored %x, computed %x", payload.MD5, sum)}
		}
	}

	v, err := document.Decode(payload.Data)
	if err != nil {
		log.Printf("[TRACE] remote: %s did not decode: %s", id, err)
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return v, nil
}

// Store encodes v and, only if that succeeds, puts it to the store.
func (b *Backend) Store(ctx context.Context, v document.Value) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storeLocked(ctx, v)
}

// Update runs fetch, fn and store while holding the backend's mutex.
func (b *Backend) Update(ctx context.Context, fn func(document.Value) (document.Value, error)) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := retry.Do(ctx, b.policy, isDecodeError, b.fetchOnce)
	if err != nil {
		return err
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	return b.storeLocked(ctx, doc)
}

func (b *Backend) storeLocked(ctx context.Context, v document.Value) error {
	data, err := document.Encode(v)
	if err != nil {
		return err
	}
	if err := b.client.Put(ctx, data); err != nil {
		return &backend.StorageError{Op: "store", Identity: b.client.Identity(), Err: err}
	}
	return nil
}

// init puts the initial value if the store is empty. It runs before the
// first operation and, once it has succeeded, never again; a failure is
// returned and the check repeats on the next call.
func (b *Backend) init(ctx context.Context) error {
	b.initMu.Lock()
	defer b.initMu.Unlock()
	if b.initialized {
		return nil
	}

	id := b.client.Identity()
	payload, err := b.client.Get(ctx)
	if err != nil {
		return &backend.StorageError{Op: "fetch", Identity: id, Err: err}
	}
	if payload == nil {
		log.Printf("[DEBUG] remote: %s is empty, storing its initial value", id)
		if err := b.storeLocked(ctx, b.initial); err != nil {
			return err
		}
	}
	b.initialized = true
	return nil
}

func isDecodeError(err error) bool {
	var decErr *document.DecodeError
	return errors.As(err, &decErr)
}
