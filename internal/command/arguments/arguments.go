// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package arguments parses the command line of each lazydoc command into a
// plain struct, so commands never touch the flag package themselves.
package arguments

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/opentofu/lazydoc/internal/document"
)

// View holds the arguments shared by every command that opens a document:
// the source of the primary layer, any fallback layers, and the path of
// the node to operate on.
type View struct {
	// Source is the document source of the primary layer, as accepted by
	// init.FromURL. Writes only ever go to this layer.
	Source string

	// Fallbacks are read-only sources consulted, in order, for map keys the
	// primary layer does not have.
	Fallbacks []string

	// Path addresses the node inside the merged document.
	Path document.Path

	NoColor bool
}

func (v *View) addFlags(f *flag.FlagSet) {
	f.Var((*stringSlice)(&v.Fallbacks), "fallback", "fallback")
	f.BoolVar(&v.NoColor, "no-color", false, "no-color")
}

// parsePositional fills Source and Path from the leading positional
// arguments and returns the rest. A missing path means the document root.
func (v *View) parsePositional(args []string, pathRequired bool) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("a document source is required")
	}
	v.Source = args[0]
	args = args[1:]

	if len(args) == 0 {
		if pathRequired {
			return nil, fmt.Errorf("a path is required")
		}
		v.Path = document.Path{}
		return nil, nil
	}
	path, err := document.ParsePath(args[0])
	if err != nil {
		return nil, err
	}
	if pathRequired && len(path) == 0 {
		return nil, fmt.Errorf("the path must address a location below the document root")
	}
	v.Path = path
	return args[1:], nil
}

// defaultFlagSet returns a flag set that reports errors to the caller
// instead of printing them or exiting.
func defaultFlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	return f
}

// parseValue reads a command line document value. With literal set the
// text is taken as a string; otherwise it must be JSON.
func parseValue(text string, literal bool) (document.Value, error) {
	if literal {
		return document.String(text), nil
	}
	v, err := document.Decode([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON value %q: %w; use -string to store it as a string", text, err)
	}
	return v, nil
}

var errMissingValue = errors.New("a JSON value is required")

func tooManyArguments(rest []string) error {
	return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
}

// collect returns nil if errs holds no errors.
func collect(errs *multierror.Error) error {
	return errs.ErrorOrNil()
}

// stringSlice is a flag.Value that appends each occurrence.
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}
