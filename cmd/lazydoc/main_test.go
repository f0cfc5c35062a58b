// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/cli"
)

// runWithCommand runs realMain with args after installing a single command
// that records the arguments it receives.
func runWithCommand(t *testing.T, name string, args ...string) (*testCommandCLI, int) {
	t.Helper()

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	rec := &testCommandCLI{}
	commands = map[string]cli.CommandFactory{
		name: func() (cli.Command, error) { return rec, nil },
	}
	t.Cleanup(func() { commands = nil })

	os.Args = append([]string{oldArgs[0]}, args...)
	return rec, realMain()
}

func TestMain_envArgs(t *testing.T) {
	tests := map[string]struct {
		command string
		env     map[string]string
		args    []string
		want    []string
	}{
		"no env": {
			command: "get",
			args:    []string{"get", "doc.json", "a.b"},
			want:    []string{"doc.json", "a.b"},
		},
		"shared env first": {
			command: "get",
			env:     map[string]string{EnvCLI: "-raw -no-color"},
			args:    []string{"get", "doc.json", "name"},
			want:    []string{"-raw", "-no-color", "doc.json", "name"},
		},
		"env only": {
			command: "keys",
			env:     map[string]string{EnvCLI: "-values"},
			args:    []string{"keys"},
			want:    []string{"-values"},
		},
		"blank arguments kept": {
			command: "set",
			env:     map[string]string{EnvCLI: "-string"},
			args:    []string{"set", "doc.json", "", "x"},
			want:    []string{"-string", "doc.json", "", "x"},
		},
		"quoted values": {
			command: "get",
			env:     map[string]string{EnvCLI: `-fallback 'defaults file.json' -fallback "other.json"`},
			args:    []string{"get", "doc.json"},
			want:    []string{"-fallback", "defaults file.json", "-fallback", "other.json", "doc.json"},
		},
		"targeted at this command": {
			command: "get",
			env:     map[string]string{EnvCLI + "_get": "-raw"},
			args:    []string{"get", "doc.json"},
			want:    []string{"-raw", "doc.json"},
		},
		"targeted at another command": {
			command: "get",
			env:     map[string]string{EnvCLI + "_set": "-string"},
			args:    []string{"get", "doc.json"},
			want:    []string{"doc.json"},
		},
		"targeted at a hyphenated command": {
			command: "list-keys",
			env:     map[string]string{EnvCLI + "_list_keys": "-values"},
			args:    []string{"list-keys", "doc.json"},
			want:    []string{"-values", "doc.json"},
		},
		"shared before targeted": {
			command: "get",
			env:     map[string]string{EnvCLI: "-no-color", EnvCLI + "_get": "-raw"},
			args:    []string{"get", "doc.json"},
			want:    []string{"-raw", "-no-color", "doc.json"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			rec, exit := runWithCommand(t, test.command, test.args...)
			if exit != 0 {
				t.Fatalf("unexpected exit status %d", exit)
			}
			if diff := cmp.Diff(test.want, rec.Args); diff != "" {
				t.Errorf("wrong arguments\n%s", diff)
			}
		})
	}
}

func TestMain_envArgsWithoutCommand(t *testing.T) {
	t.Setenv(EnvCLI, "-raw")
	if _, exit := runWithCommand(t, "get"); exit == 0 {
		t.Fatal("expected a failure without a command")
	}
}

func TestMain_unknownCommand(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	commands = make(map[string]cli.CommandFactory)
	defer func() {
		commands = nil
	}()
	commands["get"] = func() (cli.Command, error) {
		return &testCommandCLI{}, nil
	}

	os.Args = []string{oldArgs[0], "gte"}
	if exit := realMain(); exit != 1 {
		t.Fatalf("unexpected exit status %d; want 1", exit)
	}
}

func TestNameSuggestion(t *testing.T) {
	keywords := []string{"get", "set", "insert", "delete", "keys", "version"}

	tests := []struct {
		Input, Want string
	}{
		{"insrt", "insert"},
		{"dleete", "delete"},
		{"verison", "version"},
		{"frobnicate", ""},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			got := nameSuggestion(test.Input, keywords)
			if got != test.Want {
				t.Errorf(
					"wrong result\ninput: %q\ngot:   %q\nwant:  %q",
					test.Input, got, test.Want,
				)
			}
		})
	}
}

type testCommandCLI struct {
	Args []string
}

func (c *testCommandCLI) Run(args []string) int {
	c.Args = args
	return 0
}

func (c *testCommandCLI) Synopsis() string { return "" }
func (c *testCommandCLI) Help() string     { return "" }
