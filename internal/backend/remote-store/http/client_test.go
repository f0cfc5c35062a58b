// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/backend/remote"
	"github.com/opentofu/lazydoc/internal/document"
)

func TestHTTPClient_impl(t *testing.T) {
	var _ remote.Client = new(httpClient)
}

func TestHTTPClient(t *testing.T) {
	handler := new(testHTTPHandler)
	ts := httptest.NewServer(http.HandlerFunc(handler.Handle))
	defer ts.Close()

	url, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}

	// Test basic get/update
	client := &httpClient{URL: url, Client: retryablehttp.NewClient()}
	remote.TestClient(t, client)

	// test just a single PUT
	p := &httpClient{
		URL:          url,
		UpdateMethod: "PUT",
		Client:       retryablehttp.NewClient(),
	}
	remote.TestClient(t, p)

	// Test headers
	c := retryablehttp.NewClient()
	c.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, _ int) {
		// Test user defined header is part of the request
		v := req.Header.Get("user-defined")
		if v != "test" {
			t.Fatalf("Expected header \"user-defined\" with value \"test\", got \"%s\"", v)
		}

		// Test the content-type header was not overridden
		v = req.Header.Get("content-type")
		if req.Method == "PUT" && v != "application/json" {
			t.Fatalf("Expected header \"content-type\" with value \"application/json\", got \"%s\"", v)
		}
	}

	p = &httpClient{
		URL:          url,
		UpdateMethod: "PUT",
		Headers: map[string]string{
			"user-defined": "test",
			"content-type": "application/xml",
		},
		Client: c,
	}
	remote.TestClient(t, p)

	// test a WebDAV-ish backend
	davhandler := new(testHTTPHandler)
	ts = httptest.NewServer(http.HandlerFunc(davhandler.HandleWebDAV))
	defer ts.Close()

	url, err = url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	client = &httpClient{
		URL:          url,
		UpdateMethod: "PUT",
		Client:       retryablehttp.NewClient(),
	}

	remote.TestClient(t, client) // first time through: 201
	remote.TestClient(t, client) // second time, with identical data: 204

	// test a broken backend
	brokenHandler := new(testBrokenHTTPHandler)
	brokenHandler.handler = new(testHTTPHandler)
	ts = httptest.NewServer(http.HandlerFunc(brokenHandler.Handle))
	defer ts.Close()

	url, err = url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = time.Millisecond
	rc.RetryWaitMax = 10 * time.Millisecond
	client = &httpClient{URL: url, Client: rc}
	remote.TestClient(t, client)
}

func TestHTTPClient_postAddress(t *testing.T) {
	getHandler := &testHTTPHandler{Data: []byte(`{"a": 1}`)}
	postHandler := new(testHTTPHandler)
	getServer := httptest.NewServer(http.HandlerFunc(getHandler.Handle))
	defer getServer.Close()
	postServer := httptest.NewServer(http.HandlerFunc(postHandler.Handle))
	defer postServer.Close()

	b, err := New(Config{Address: getServer.URL, PostAddress: postServer.URL})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := backend.Assign(ctx, b, document.Path{document.Key("b")}, document.Number("2")); err != nil {
		t.Fatal(err)
	}

	if string(getHandler.Data) != `{"a": 1}` {
		t.Errorf("read endpoint was modified: %s", getHandler.Data)
	}
	want := "{\n    \"a\": 1,\n    \"b\": 2\n}\n"
	if string(postHandler.Data) != want {
		t.Errorf("wrong document posted\ngot:  %q\nwant: %q", postHandler.Data, want)
	}
}

func TestHTTPClient_notFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	b, err := New(Config{Address: ts.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected a missing-document error, got %v", err)
	}
}

func TestHTTPClient_basicAuth(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ada" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`true`))
	}
	ts := httptest.NewServer(http.HandlerFunc(handler))
	defer ts.Close()

	for name, cfg := range map[string]Config{
		"with credentials":    {Address: ts.URL, Username: "ada", Password: "secret"},
		"without credentials": {Address: ts.URL},
	} {
		t.Run(name, func(t *testing.T) {
			b, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			got, err := b.Fetch(context.Background())
			if cfg.Username == "" {
				if err == nil || !strings.Contains(err.Error(), "requires auth") {
					t.Fatalf("expected auth error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !document.Equal(got, document.Bool(true)) {
				t.Errorf("wrong document %#v", got)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr string
	}{
		"valid": {
			cfg: Config{Address: "https://example.com/doc.json"},
		},
		"missing address": {
			cfg:     Config{},
			wantErr: "address must be set",
		},
		"bad scheme": {
			cfg:     Config{Address: "ftp://example.com/doc.json"},
			wantErr: "address must be HTTP or HTTPS",
		},
		"bad post address": {
			cfg:     Config{Address: "https://example.com", PostAddress: "file:///tmp/x"},
			wantErr: "post_address must be HTTP or HTTPS",
		},
		"reserved header": {
			cfg: Config{
				Address: "https://example.com",
				Headers: map[string]string{"Content-Type": "text/plain"},
			},
			wantErr: `headers "Content-Type" is reserved`,
		},
		"authorization with username": {
			cfg: Config{
				Address:  "https://example.com",
				Username: "ada",
				Headers:  map[string]string{"Authorization": "Bearer x"},
			},
			wantErr: "cannot be set when providing username",
		},
		"half a client certificate": {
			cfg: Config{
				Address:              "https://example.com",
				ClientCertificatePEM: "cert",
			},
			wantErr: "client_private_key_pem is not",
		},
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

type testHTTPHandler struct {
	mu   sync.Mutex
	Data []byte
}

func (h *testHTTPHandler) Handle(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch r.Method {
	case "GET":
		w.Write(h.Data)
	case "PUT":
		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, r.Body); err != nil {
			w.WriteHeader(500)
		}
		w.WriteHeader(201)
		h.Data = buf.Bytes()
	case "POST":
		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, r.Body); err != nil {
			w.WriteHeader(500)
		}
		h.Data = buf.Bytes()
	default:
		w.WriteHeader(500)
		w.Write([]byte(fmt.Sprintf("Unknown method: %s", r.Method)))
	}
}

// mod_dav-ish behavior
func (h *testHTTPHandler) HandleWebDAV(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch r.Method {
	case "GET":
		w.Write(h.Data)
	case "PUT":
		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, r.Body); err != nil {
			w.WriteHeader(500)
		}
		if reflect.DeepEqual(h.Data, buf.Bytes()) {
			h.Data = buf.Bytes()
			w.WriteHeader(204)
		} else {
			h.Data = buf.Bytes()
			w.WriteHeader(201)
		}
	default:
		w.WriteHeader(500)
		w.Write([]byte(fmt.Sprintf("Unknown method: %s", r.Method)))
	}
}

type testBrokenHTTPHandler struct {
	lastRequestWasBroken bool
	handler              *testHTTPHandler
}

func (h *testBrokenHTTPHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.lastRequestWasBroken {
		h.lastRequestWasBroken = false
		h.handler.Handle(w, r)
	} else {
		h.lastRequestWasBroken = true
		w.WriteHeader(500)
	}
}

func TestHTTPClient_headersForLog(t *testing.T) {
	c := &httpClient{Headers: map[string]string{"X-Api-Key": "secret"}}
	tests := map[string]struct {
		headers http.Header
		want    string
	}{
		"empty": {
			headers: http.Header{},
			want:    "",
		},
		"credentials masked": {
			headers: http.Header{
				"Authorization":    []string{"Bearer abc"},
				"Set-Cookie":       []string{"session=1"},
				"Www-Authenticate": []string{"Basic"},
				"Content-Type":     []string{"application/json"},
			},
			want: "Authorization=[MASKED] Content-Type=application/json Set-Cookie=[MASKED] Www-Authenticate=[MASKED]",
		},
		"configured header masked": {
			headers: http.Header{
				"X-Api-Key":   []string{"secret"},
				"Content-Md5": []string{"abc=="},
			},
			want: "Content-Md5=abc== X-Api-Key=[MASKED]",
		},
		"multiple values": {
			headers: http.Header{"Vary": []string{"Accept", "Origin"}},
			want:    "Vary=Accept, Origin",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := c.headersForLog(test.headers); got != test.want {
				t.Errorf("wrong log line\ngot:  %s\nwant: %s", got, test.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read error")
}

func TestBodyForLog(t *testing.T) {
	long := strings.Repeat("x", maxLoggedBody+10)
	tests := map[string]struct {
		body io.Reader
		want string
	}{
		"short":     {strings.NewReader(`{"error":"Unauthorized"}`), `{"error":"Unauthorized"}`},
		"empty":     {strings.NewReader(""), ""},
		"truncated": {strings.NewReader(long), long[:maxLoggedBody] + "..."},
		"error":     {failingReader{}, ""},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			resp := &http.Response{Body: io.NopCloser(test.body)}
			if got := bodyForLog(resp); got != test.want {
				t.Errorf("wrong body: got %d bytes, want %d", len(got), len(test.want))
			}
		})
	}
}
