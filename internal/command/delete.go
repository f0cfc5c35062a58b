// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"log"
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
)

// DeleteCommand is a Command implementation that removes a map entry or
// list element.
type DeleteCommand struct {
	Meta
}

func (c *DeleteCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseDelete(rawArgs)
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

	parent, _ := n.Parent()
	key, _ := n.Key()
	if err := parent.Delete(ctx, key); err != nil {
		c.showError(err)
		return 1
	}
	log.Printf("[INFO] command: deleted %s", n)
	return 0
}

func (c *DeleteCommand) Help() string {
	helpText := `
Usage: lazydoc delete [options] SOURCE PATH

  Removes the map entry or list element at PATH. Later list elements
  move down by one.
` + sourceHelp + `

Options:
` + viewOptionsHelp + `
`
	return strings.TrimSpace(helpText)
}

func (c *DeleteCommand) Synopsis() string {
	return "Remove the value at a path"
}
