// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/cli"

	backendInit "github.com/opentofu/lazydoc/internal/backend/init"
	"github.com/opentofu/lazydoc/internal/command"
	"github.com/opentofu/lazydoc/internal/logging"
	"github.com/opentofu/lazydoc/version"
)

const (
	// EnvCLI is the environment variable name to set additional CLI args.
	EnvCLI = "LAZYDOC_CLI_ARGS"

	binName = "lazydoc"
)

// Ui is the cli.Ui used for communicating to the outside world.
var Ui cli.Ui

func init() {
	Ui = command.NewBasicUI()
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	logging.Init()

	log.Printf("[INFO] lazydoc version: %s", version.String())
	log.Printf("[INFO] Log level: %s", logging.CurrentLogLevel())
	if logging.IsDebugOrHigher() {
		for _, depMod := range version.InterestingDependencies() {
			log.Printf("[DEBUG] using %s %s", depMod.Path, depMod.Version)
		}
	}
	log.Printf("[INFO] Go runtime version: %s", runtime.Version())
	log.Printf("[INFO] CLI args: %#v", os.Args)

	backendInit.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// In tests, commands may already be set to provide mock commands
	if commands == nil {
		initCommands(ctx)
	}

	args := os.Args[1:]

	// Build the CLI so far, we do this so we can query the subcommand.
	cliRunner := &cli.CLI{
		Args:     args,
		Commands: commands,
	}

	// Prefix the args with any args from the EnvCLI
	args, err := mergeEnvArgs(EnvCLI, cliRunner.Subcommand(), args)
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	// Prefix the args with any args from the EnvCLI targeting this command
	suffix := strings.ReplaceAll(cliRunner.Subcommand(), "-", "_")
	args, err = mergeEnvArgs(fmt.Sprintf("%s_%s", EnvCLI, suffix), cliRunner.Subcommand(), args)
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	// We shortcut "--version" and "-v" to just show the version
	for _, arg := range args {
		if arg == "-v" || arg == "-version" || arg == "--version" {
			args = append([]string{"version"}, args...)
			break
		}
	}

	log.Printf("[INFO] CLI command args: %#v", args)
	cliRunner = &cli.CLI{
		Name:       binName,
		Args:       args,
		Commands:   commands,
		HelpFunc:   cli.BasicHelpFunc(binName),
		HelpWriter: os.Stdout,
	}

	if cmd := cliRunner.Subcommand(); cmd != "" {
		if _, exists := commands[cmd]; !exists {
			suggestion := nameSuggestion(cmd, commandNames())
			if suggestion != "" {
				suggestion = fmt.Sprintf(" Did you mean %q?", suggestion)
			}
			fmt.Fprintf(os.Stderr, "lazydoc has no command named %q.%s\n\nTo see all of lazydoc's commands, run:\n  lazydoc -help\n\n", cmd, suggestion)
			return 1
		}
	}

	exitCode, err := cliRunner.Run()
	if err != nil {
		Ui.Error(fmt.Sprintf("Error executing CLI: %s", err.Error()))
		return 1
	}
	return exitCode
}

func mergeEnvArgs(envName string, cmd string, args []string) ([]string, error) {
	v := os.Getenv(envName)
	if v == "" {
		return args, nil
	}

	log.Printf("[INFO] %s value: %q", envName, v)
	extra, err := shellwords.Parse(v)
	if err != nil {
		return nil, fmt.Errorf(
			"Error parsing extra CLI args from %s: %s",
			envName, err)
	}

	// Find the index to place the flags. We put them exactly
	// after the first non-flag arg.
	idx := -1
	for i, v := range args {
		if v == cmd {
			idx = i
			break
		}
	}

	// idx points to the exact arg that isn't a flag. We increment
	// by one so that all the copying below expects idx to be the
	// insertion point.
	idx++

	// Copy the args
	newArgs := make([]string, len(args)+len(extra))
	copy(newArgs, args[:idx])
	copy(newArgs[idx:], extra)
	copy(newArgs[len(extra)+idx:], args[idx:])
	return newArgs, nil
}

// nameSuggestion returns the name from suggestions closest to given, or
// "" if none is close enough to be a likely typo.
func nameSuggestion(given string, suggestions []string) string {
	for _, suggestion := range suggestions {
		dist := levenshtein.Distance(given, suggestion, nil)
		if dist < 3 { // threshold determined experimentally
			return suggestion
		}
	}
	return ""
}
