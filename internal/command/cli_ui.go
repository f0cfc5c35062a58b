// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"os"

	"github.com/mitchellh/cli"
)

// ui sends warnings to stdout next to regular output, so that a value
// printed by get and a warning about it stay in order.
type ui struct {
	cli.Ui
}

func (u *ui) Warn(msg string) {
	u.Ui.Output(msg)
}

// NewBasicUI returns the [cli.Ui] the lazydoc binary writes to.
func NewBasicUI() cli.Ui {
	return NewWrappedUi(&cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	})
}

// NewWrappedUi wraps u so that warnings go to its regular output.
func NewWrappedUi(u cli.Ui) cli.Ui {
	return &ui{u}
}
