// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestLevelFromEnv(t *testing.T) {
	tests := map[string]hclog.Level{
		"":        hclog.Off,
		"debug":   hclog.Debug,
		"TRACE":   hclog.Trace,
		"warn":    hclog.Warn,
		"off":     hclog.Off,
		"bananas": hclog.Trace,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			t.Setenv(EnvLog, raw)
			if got := levelFromEnv(); got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestStandardWriterInfersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newHCLogger("test", &buf, hclog.Info)
	w := l.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})

	if _, err := w.Write([]byte("[DEBUG] hidden\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("[WARN] shown\n")); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line was not filtered:\n%s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line is missing:\n%s", out)
	}
}

func TestLevelName(t *testing.T) {
	tests := map[hclog.Level]string{
		hclog.Trace: "TRACE",
		hclog.Debug: "DEBUG",
		hclog.Warn:  "WARN",
		hclog.Off:   "OFF",
	}
	for level, want := range tests {
		if got := levelName(level); got != want {
			t.Errorf("levelName(%d) = %q, want %q", level, got, want)
		}
	}
}
