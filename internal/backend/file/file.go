// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package file implements the primary backend: a document persisted as a
// single JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/document"
	"github.com/opentofu/lazydoc/internal/retry"
)

// Config configures a file Backend.
type Config struct {
	// Path is the location of the document file.
	Path string `mapstructure:"path"`

	// Policy bounds how often Fetch re-reads a file whose content does not
	// decode, on the assumption that another process is part way through
	// rewriting it. The zero value means retry.DefaultPolicy.
	retry.Policy `mapstructure:",squash"`

	// InitialValue, if set, is written to Path when the file does not exist
	// yet. This happens once, when the backend is created.
	InitialValue document.Value `mapstructure:"-"`

	// Fs is the filesystem holding Path. Nil means the operating system's
	// filesystem.
	Fs afero.Fs `mapstructure:"-"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.Path == "" {
		diags = multierror.Append(diags, errors.New("path must not be empty"))
	}
	if c.Tries < 0 {
		diags = multierror.Append(diags, fmt.Errorf("retry_tries must not be negative, got %d", c.Tries))
	}
	if c.Delay < 0 {
		diags = multierror.Append(diags, fmt.Errorf("retry_delay must not be negative, got %s", c.Delay))
	}
	if c.InitialValue != nil {
		if err := document.Validate(c.InitialValue); err != nil {
			diags = multierror.Append(diags, fmt.Errorf("initial value: %w", err))
		}
	}
	return diags.ErrorOrNil()
}

// Backend stores a document in one file.
//
// Store and every read-modify-write cycle run under a mutex owned by the
// Backend object, so path operations issued concurrently through the same
// Backend never interleave. Nothing coordinates separate Backend objects
// or processes pointed at the same file; Fetch tolerates the partially
// written files such writers can leave behind by retrying decode failures.
type Backend struct {
	fs     afero.Fs
	path   string
	id     string
	policy retry.Policy

	mu sync.Mutex
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Updater = (*Backend)(nil)
)

// New returns a backend for the file described by cfg, creating the file
// with cfg.InitialValue if it is set and the file does not exist.
func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid file backend configuration: %w", err)
	}

	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	path := cfg.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	b := &Backend{
		fs:     fsys,
		path:   path,
		id:     "file://" + filepath.ToSlash(path),
		policy: cfg.Policy.OrDefault(),
	}

	if cfg.InitialValue != nil {
		if err := b.initialize(cfg.InitialValue); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// initialize writes v to the file only if the file does not exist. The
// exclusive create means concurrent initializers cannot clobber each other
// or an existing document.
func (b *Backend) initialize(v document.Value) error {
	data, err := document.Encode(v)
	if err != nil {
		return err
	}

	f, err := b.fs.OpenFile(b.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return &backend.StorageError{Op: "store", Identity: b.id, Err: err}
	}

	log.Printf("[DEBUG] file: creating %s with its initial value", b.path)
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &backend.StorageError{Op: "store", Identity: b.id, Err: err}
	}
	return nil
}

func (b *Backend) Identity() string {
	return b.id
}

// Fetch reads and decodes the file. A decode failure is retried according
// to the backend's policy; failures to read the file at all are not.
func (b *Backend) Fetch(ctx context.Context) (document.Value, error) {
	return retry.Do(ctx, b.policy, isDecodeError, func(context.Context) (document.Value, error) {
		data, err := afero.ReadFile(b.fs, b.path)
		if err != nil {
			return nil, &backend.StorageError{Op: "fetch", Identity: b.id, Err: err}
		}
		v, err := document.Decode(data)
		if err != nil {
			log.Printf("[TRACE] file: %s did not decode: %s", b.path, err)
			return nil, fmt.Errorf("reading %s: %w", b.id, err)
		}
		return v, nil
	})
}

// Store encodes v and, only if that succeeds, overwrites the file.
func (b *Backend) Store(_ context.Context, v document.Value) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storeLocked(v)
}

// Update runs fetch, fn and store while holding the backend's mutex.
func (b *Backend) Update(ctx context.Context, fn func(document.Value) (document.Value, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.Fetch(ctx)
	if err != nil {
		return err
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	return b.storeLocked(doc)
}

func (b *Backend) storeLocked(v document.Value) error {
	data, err := document.Encode(v)
	if err != nil {
		return err
	}
	log.Printf("[TRACE] file: writing %d bytes to %s", len(data), b.path)
	if err := afero.WriteFile(b.fs, b.path, data, 0644); err != nil {
		return &backend.StorageError{Op: "store", Identity: b.id, Err: err}
	}
	return nil
}

func isDecodeError(err error) bool {
	var decErr *document.DecodeError
	return errors.As(err, &decErr)
}
