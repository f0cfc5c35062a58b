// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"log"
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
)

// SetCommand is a Command implementation that replaces the value at a
// path, creating the final map key if needed.
type SetCommand struct {
	Meta
}

func (c *SetCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseSet(rawArgs)
	if err != nil {
		return c.showUsageError(err)
	}
	c.configure(args.View)

	ctx := c.commandContext()
	n, err := c.openView(ctx, args.View)
	if err != nil {
		c.showError(err)
		return 1
	}
	if err := n.Set(ctx, args.Value); err != nil {
		c.showError(err)
		return 1
	}
	log.Printf("[INFO] command: set %s", n)
	return 0
}

func (c *SetCommand) Help() string {
	helpText := `
Usage: lazydoc set [options] SOURCE PATH VALUE

  Replaces the value at PATH with VALUE, given as JSON. If the last
  segment of PATH is a missing map key, the key is added. PATH "."
  replaces the whole document.
` + sourceHelp + `

Options:
` + viewOptionsHelp + `

  -string           Store VALUE as a string instead of parsing it as JSON.
`
	return strings.TrimSpace(helpText)
}

func (c *SetCommand) Synopsis() string {
	return "Replace the value at a path"
}
