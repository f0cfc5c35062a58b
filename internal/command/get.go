// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
	"github.com/opentofu/lazydoc/internal/document"
)

// GetCommand is a Command implementation that prints the value at a path.
type GetCommand struct {
	Meta
}

func (c *GetCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseGet(rawArgs)
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
	v, err := n.Value(ctx)
	if err != nil {
		c.showError(err)
		return 1
	}

	if s, ok := v.(document.String); ok && args.Raw {
		c.Ui.Output(string(s))
		return 0
	}
	out, err := formatValue(v)
	if err != nil {
		c.showError(err)
		return 1
	}
	c.Ui.Output(out)
	return 0
}

func (c *GetCommand) Help() string {
	helpText := `
Usage: lazydoc get [options] SOURCE [PATH]

  Prints the value at PATH as JSON. Without PATH, prints the whole
  document.
` + sourceHelp + `

Options:
` + viewOptionsHelp + `

  -raw              Print a string value without JSON quoting.
`
	return strings.TrimSpace(helpText)
}

func (c *GetCommand) Synopsis() string {
	return "Print the value at a path"
}
