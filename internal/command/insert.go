// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"log"
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
)

// InsertCommand is a Command implementation that inserts a value into a
// list.
type InsertCommand struct {
	Meta
}

func (c *InsertCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseInsert(rawArgs)
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

	// The path is never the root here, so both are present.
	parent, _ := n.Parent()
	key, _ := n.Key()
	if err := parent.Insert(ctx, key, args.Value); err != nil {
		c.showError(err)
		return 1
	}
	log.Printf("[INFO] command: inserted %s", n)
	return 0
}

func (c *InsertCommand) Help() string {
	helpText := `
Usage: lazydoc insert [options] SOURCE PATH VALUE

  Inserts VALUE, given as JSON, into a list. The last segment of PATH is
  the index the new element will have; an index equal to the length of
  the list appends.
` + sourceHelp + `

Options:
` + viewOptionsHelp + `

  -string           Insert VALUE as a string instead of parsing it as JSON.
`
	return strings.TrimSpace(helpText)
}

func (c *InsertCommand) Synopsis() string {
	return "Insert a value into a list"
}
