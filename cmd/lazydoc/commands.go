// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"sort"

	"github.com/mitchellh/cli"

	"github.com/opentofu/lazydoc/internal/backend/caching"
	"github.com/opentofu/lazydoc/internal/command"
	"github.com/opentofu/lazydoc/version"
)

// commands is the mapping of all the available lazydoc commands.
var commands map[string]cli.CommandFactory

func initCommands(ctx context.Context) {
	meta := command.Meta{
		Ui:          Ui,
		Color:       true,
		ShutdownCtx: ctx,
		Cache:       caching.NewCache(),
	}

	commands = map[string]cli.CommandFactory{
		"get": func() (cli.Command, error) {
			return &command.GetCommand{Meta: meta}, nil
		},
		"set": func() (cli.Command, error) {
			return &command.SetCommand{Meta: meta}, nil
		},
		"insert": func() (cli.Command, error) {
			return &command.InsertCommand{Meta: meta}, nil
		},
		"delete": func() (cli.Command, error) {
			return &command.DeleteCommand{Meta: meta}, nil
		},
		"keys": func() (cli.Command, error) {
			return &command.KeysCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{
				Meta:              meta,
				Version:           version.Version,
				VersionPrerelease: version.Prerelease,
			}, nil
		},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
