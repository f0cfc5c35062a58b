// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"github.com/hashicorp/go-multierror"

	"github.com/opentofu/lazydoc/internal/document"
)

// Get represents the command-line arguments for the get command.
type Get struct {
	View

	// Raw prints string values without JSON quoting.
	Raw bool
}

// ParseGet processes CLI arguments for the get command. If errors are
// encountered, a Get value is still returned representing the best effort
// interpretation of the arguments.
func ParseGet(args []string) (*Get, error) {
	var errs *multierror.Error
	ret := &Get{}

	cmdFlags := defaultFlagSet("get")
	ret.View.addFlags(cmdFlags)
	cmdFlags.BoolVar(&ret.Raw, "raw", false, "raw")
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}

	rest, err := ret.View.parsePositional(cmdFlags.Args(), false)
	errs = multierror.Append(errs, err)
	if len(rest) > 0 {
		errs = multierror.Append(errs, tooManyArguments(rest))
	}
	return ret, collect(errs)
}

// Set represents the command-line arguments for the set command.
type Set struct {
	View

	Value document.Value
}

// ParseSet processes CLI arguments for the set command. The path may be
// the document root, in which case the whole document is replaced.
func ParseSet(args []string) (*Set, error) {
	ret := &Set{}
	var literal bool

	cmdFlags := defaultFlagSet("set")
	ret.View.addFlags(cmdFlags)
	cmdFlags.BoolVar(&literal, "string", false, "string")
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}

	v, err := parseMutation(&ret.View, cmdFlags.Args(), literal, false)
	ret.Value = v
	return ret, err
}

// Insert represents the command-line arguments for the insert command.
type Insert struct {
	View

	Value document.Value
}

// ParseInsert processes CLI arguments for the insert command. The last
// segment of the path must be a list index.
func ParseInsert(args []string) (*Insert, error) {
	ret := &Insert{}
	var literal bool

	cmdFlags := defaultFlagSet("insert")
	ret.View.addFlags(cmdFlags)
	cmdFlags.BoolVar(&literal, "string", false, "string")
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}

	v, err := parseMutation(&ret.View, cmdFlags.Args(), literal, true)
	ret.Value = v
	return ret, err
}

func parseMutation(view *View, args []string, literal bool, pathRequired bool) (document.Value, error) {
	var errs *multierror.Error

	rest, err := view.parsePositional(args, pathRequired)
	errs = multierror.Append(errs, err)
	if err != nil {
		return nil, collect(errs)
	}

	var v document.Value
	switch len(rest) {
	case 0:
		errs = multierror.Append(errs, errMissingValue)
	case 1:
		v, err = parseValue(rest[0], literal)
		errs = multierror.Append(errs, err)
	default:
		errs = multierror.Append(errs, tooManyArguments(rest[1:]))
	}
	return v, collect(errs)
}

// Delete represents the command-line arguments for the delete command.
type Delete struct {
	View
}

// ParseDelete processes CLI arguments for the delete command.
func ParseDelete(args []string) (*Delete, error) {
	var errs *multierror.Error
	ret := &Delete{}

	cmdFlags := defaultFlagSet("delete")
	ret.View.addFlags(cmdFlags)
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}

	rest, err := ret.View.parsePositional(cmdFlags.Args(), true)
	errs = multierror.Append(errs, err)
	if len(rest) > 0 {
		errs = multierror.Append(errs, tooManyArguments(rest))
	}
	return ret, collect(errs)
}

// Keys represents the command-line arguments for the keys command.
type Keys struct {
	View

	// Values prints each child's value next to its key.
	Values bool
}

// ParseKeys processes CLI arguments for the keys command.
func ParseKeys(args []string) (*Keys, error) {
	var errs *multierror.Error
	ret := &Keys{}

	cmdFlags := defaultFlagSet("keys")
	ret.View.addFlags(cmdFlags)
	cmdFlags.BoolVar(&ret.Values, "values", false, "values")
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}

	rest, err := ret.View.parsePositional(cmdFlags.Args(), false)
	errs = multierror.Append(errs, err)
	if len(rest) > 0 {
		errs = multierror.Append(errs, tooManyArguments(rest))
	}
	return ret, collect(errs)
}

// Version represents the command-line arguments for the version command.
type Version struct {
	JSON bool
}

// ParseVersion processes CLI arguments for the version command.
func ParseVersion(args []string) (*Version, error) {
	ret := &Version{}

	cmdFlags := defaultFlagSet("version")
	cmdFlags.BoolVar(&ret.JSON, "json", false, "json")
	if err := cmdFlags.Parse(args); err != nil {
		return ret, err
	}
	if rest := cmdFlags.Args(); len(rest) > 0 {
		return ret, tooManyArguments(rest)
	}
	return ret, nil
}
