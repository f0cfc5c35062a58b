// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/opentofu/lazydoc/internal/command/arguments"
)

// VersionCommand is a Command implementation prints the version.
type VersionCommand struct {
	Meta

	Version           string
	VersionPrerelease string
}

type versionOutput struct {
	Version  string `json:"lazydoc_version"`
	Platform string `json:"platform"`
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: lazydoc version [options]

  Displays the version of lazydoc.

Options:

  -json       Output the version information as a JSON object.
`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Run(rawArgs []string) int {
	args, err := arguments.ParseVersion(rawArgs)
	if err != nil {
		return c.showUsageError(err)
	}

	version := c.Version
	if c.VersionPrerelease != "" {
		version += "-" + c.VersionPrerelease
	}
	platform := runtime.GOOS + "_" + runtime.GOARCH

	if args.JSON {
		out, err := json.MarshalIndent(versionOutput{Version: version, Platform: platform}, "", "  ")
		if err != nil {
			c.showError(err)
			return 1
		}
		c.Ui.Output(string(out))
		return 0
	}

	c.Ui.Output(fmt.Sprintf("lazydoc v%s\non %s", version, platform))
	return 0
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current lazydoc version"
}
