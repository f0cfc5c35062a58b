// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strconv"
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
	"github.com/opentofu/lazydoc/internal/document"
)

// KeysCommand is a Command implementation that lists the children of a map
// or list.
type KeysCommand struct {
	Meta
}

func (c *KeysCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseKeys(rawArgs)
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

	for child, err := range n.Children(ctx) {
		if err != nil {
			c.showError(err)
			return 1
		}
		key, _ := child.Key()
		line := segmentLabel(key)
		if args.Values {
			v, err := child.Value(ctx)
			if err != nil {
				c.showError(err)
				return 1
			}
			out, err := formatValue(v)
			if err != nil {
				c.showError(err)
				return 1
			}
			line += " = " + out
		}
		c.Ui.Output(line)
	}
	return 0
}

func segmentLabel(seg document.Segment) string {
	if i, ok := seg.ListIndex(); ok {
		return strconv.Itoa(i)
	}
	k, _ := seg.MapKey()
	return k
}

func (c *KeysCommand) Help() string {
	helpText := `
Usage: lazydoc keys [options] SOURCE [PATH]

  Lists the keys of the map at PATH in sorted order, or the indexes of
  the list at PATH.
` + sourceHelp + `

Options:
` + viewOptionsHelp + `

  -values           Print each child's value as JSON after its key.
`
	return strings.TrimSpace(helpText)
}

func (c *KeysCommand) Synopsis() string {
	return "List the keys of a map or the indexes of a list"
}
