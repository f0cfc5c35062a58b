// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package command implements the lazydoc command line: one
// [github.com/mitchellh/cli.Command] per document operation.
package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/backend/caching"
	backendInit "github.com/opentofu/lazydoc/internal/backend/init"
	"github.com/opentofu/lazydoc/internal/backend/layered"
	"github.com/opentofu/lazydoc/internal/command/arguments"
	"github.com/opentofu/lazydoc/internal/document"
	"github.com/opentofu/lazydoc/internal/node"
)

// Meta holds the state shared by all commands.
type Meta struct {
	Ui cli.Ui

	// Color enables colored error output. The -no-color flag turns it off
	// for a single command.
	Color bool

	// ShutdownCtx is canceled when the process is asked to stop. Nil means
	// commands are never interrupted.
	ShutdownCtx context.Context

	// Cache memoizes each document layer for the lifetime of the process.
	// Nil means every command gets a fresh cache.
	Cache *caching.Cache
}

func (m *Meta) commandContext() context.Context {
	if m.ShutdownCtx == nil {
		return context.Background()
	}
	return m.ShutdownCtx
}

func (m *Meta) configure(view arguments.View) {
	if view.NoColor {
		m.Color = false
	}
}

func (m *Meta) colorize() *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !m.Color,
		Reset:   true,
	}
}

// openView builds the node a command operates on. Every source becomes a
// backend; with fallbacks they are merged into a layered view whose first
// layer receives all writes.
func (m *Meta) openView(ctx context.Context, view arguments.View) (node.Node, error) {
	cache := m.Cache
	if cache == nil {
		cache = caching.NewCache()
	}

	sources := append([]string{view.Source}, view.Fallbacks...)
	layers := make([]backend.Backend, 0, len(sources))
	for _, source := range sources {
		b, err := backendInit.FromURL(ctx, source)
		if err != nil {
			return node.Node{}, fmt.Errorf("cannot open %s: %w", source, err)
		}
		log.Printf("[DEBUG] command: layer %d is %s", len(layers), b.Identity())
		layers = append(layers, caching.New(b, cache))
	}

	if len(layers) == 1 {
		return node.New(layers[0], view.Path...), nil
	}
	b, err := layered.New(layers...)
	if err != nil {
		return node.Node{}, err
	}
	return node.New(b, view.Path...), nil
}

// showError reports err to the user with a summary chosen from its kind.
func (m *Meta) showError(err error) {
	var (
		pathErr    *document.PathError
		decodeErr  *document.DecodeError
		encodeErr  *document.EncodeError
		storageErr *backend.StorageError
	)
	summary := "Command failed"
	switch {
	case errors.As(err, &pathErr):
		summary = "Path does not match the document"
	case errors.Is(err, backend.ErrNotExist):
		summary = "Document does not exist"
	case errors.As(err, &decodeErr):
		summary = "Invalid document"
	case errors.As(err, &encodeErr):
		summary = "Value cannot be stored"
	case errors.As(err, &storageErr):
		summary = "Storage failure"
	}

	m.Ui.Error(m.colorize().Color(fmt.Sprintf(
		"[bold][red]Error: [reset][bold]%s[reset]\n\n%s", summary, err,
	)))
}

// showUsageError reports a command line problem and returns the exit
// status that makes the cli print the command's help.
func (m *Meta) showUsageError(err error) int {
	m.Ui.Error(m.colorize().Color(fmt.Sprintf(
		"[bold][red]Error: [reset][bold]Invalid command line[reset]\n\n%s\n", err,
	)))
	return cli.RunResultHelp
}

// formatValue renders v as canonical JSON without the trailing newline.
func formatValue(v document.Value) (string, error) {
	out, err := document.Encode(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

const viewOptionsHelp = `
  -fallback=SOURCE  Read map keys missing from SOURCE from this document
                    instead. May be repeated; earlier fallbacks win. Writes
                    never reach a fallback.

  -no-color         Disable colored error output.`

const sourceHelp = `
  SOURCE is a file path or a URL selecting the document's storage:
  file://, http(s)://, consul://, s3://, gs://, azblob://, postgres://,
  ssh://, vault://, kubernetes:// or mem://. Query parameters configure
  the storage, for example ?retry_tries=10 or ?initial={}.

  PATH addresses a location in the document, such as servers[0].name or
  labels["app.kubernetes.io/name"]. "." is the whole document.`
