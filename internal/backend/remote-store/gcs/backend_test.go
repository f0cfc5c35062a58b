// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package gcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

func TestRemoteClient_impl(t *testing.T) {
	var _ remote.Client = new(RemoteClient)
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr string
	}{
		"valid":          {cfg: Config{Bucket: "b", Object: "doc.json"}},
		"missing bucket": {cfg: Config{Object: "doc.json"}, wantErr: "bucket must be set"},
		"missing object": {cfg: Config{Bucket: "b"}, wantErr: "object must be set"},
		"leading slash":  {cfg: Config{Bucket: "b", Object: "/doc.json"}, wantErr: "must not start with '/'"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestReadPathOrContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(`{"type": "service_account"}`), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := readPathOrContents(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"type": "service_account"}` {
		t.Errorf("wrong file contents %q", got)
	}

	got, err = readPathOrContents(` {"inline": true}`)
	if err != nil {
		t.Fatal(err)
	}
	if got != ` {"inline": true}` {
		t.Errorf("inline contents were not returned as is: %q", got)
	}

	if _, err := readPathOrContents(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("expected error for a missing file")
	}
}

func TestRemoteClient_identity(t *testing.T) {
	c := &RemoteClient{bucketName: "bucket", objectName: "a/doc.json"}
	if got, want := c.Identity(), "gs://bucket/a/doc.json"; got != want {
		t.Errorf("wrong identity %q, want %q", got, want)
	}
}

func TestBackend_acceptance(t *testing.T) {
	bucket := os.Getenv("LAZYDOC_GCS_BUCKET")
	if os.Getenv("LAZYDOC_ACC") == "" || bucket == "" {
		t.Skip("gcs acceptance tests require LAZYDOC_ACC and LAZYDOC_GCS_BUCKET")
	}
	b, err := New(context.Background(), Config{
		Bucket: bucket,
		Object: fmt.Sprintf("lazydoc-test/%x.json", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatal(err)
	}
	remote.TestClient(t, b.Client())
}
