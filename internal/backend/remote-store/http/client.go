// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

// httpClient is a remote client that stores a document behind a REST
// endpoint.
type httpClient struct {
	URL          *url.URL
	PostURL      *url.URL
	UpdateMethod string

	Client   *retryablehttp.Client
	Headers  map[string]string
	Username string
	Password string
}

var _ remote.Client = (*httpClient)(nil)

func (c *httpClient) Identity() string {
	return c.URL.Redacted()
}

func (c *httpClient) httpRequest(ctx context.Context, method string, url *url.URL, data []byte, what string) (*http.Response, error) {
	var body interface{}
	if len(data) > 0 {
		body = data
	}

	log.Printf("[DEBUG] Executing HTTP document request for: %q", what)

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url.String(), body)
	if err != nil {
		return nil, fmt.Errorf("Failed to make %s HTTP request: %w", what, err)
	}

	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	if len(data) > 0 {
		req.Header.Set("Content-Type", "application/json")

		hash := md5.Sum(data)
		b64 := base64.StdEncoding.EncodeToString(hash[:])
		req.Header.Set("Content-MD5", b64)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to %s: %w", what, err)
	}

	log.Printf("[DEBUG] HTTP document request for %q returned status code: %d", what, resp.StatusCode)
	log.Printf("[DEBUG] HTTP response headers: %s", c.headersForLog(resp.Header))

	return resp, nil
}

func (c *httpClient) Get(ctx context.Context) (*remote.Payload, error) {
	resp, err := c.httpRequest(ctx, http.MethodGet, c.URL, nil, "get document")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Handled after
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		log.Printf("[DEBUG] GET DOCUMENT, Unauthorized: %s", bodyForLog(resp))
		return nil, fmt.Errorf("HTTP document endpoint requires auth")
	case http.StatusForbidden:
		log.Printf("[DEBUG] GET DOCUMENT, Forbidden: %s", bodyForLog(resp))
		return nil, fmt.Errorf("HTTP document endpoint invalid auth")
	case http.StatusInternalServerError:
		log.Printf("[DEBUG] GET DOCUMENT, Internal Server Error: %s", bodyForLog(resp))
		return nil, fmt.Errorf("HTTP document endpoint internal server error")
	default:
		log.Printf("[DEBUG] GET DOCUMENT, %d: %s", resp.StatusCode, bodyForLog(resp))
		return nil, fmt.Errorf("Unexpected HTTP response code %d", resp.StatusCode)
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("Failed to read document: %w", err)
	}

	payload := &remote.Payload{
		Data: buf.Bytes(),
	}
	if len(payload.Data) == 0 {
		return nil, nil
	}

	// The checksum is only verified when the server sends one.
	if raw := resp.Header.Get("Content-MD5"); raw != "" {
		md5, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("Failed to decode Content-MD5 '%s': %w", raw, err)
		}
		payload.MD5 = md5
	}

	return payload, nil
}

func (c *httpClient) Put(ctx context.Context, data []byte) error {
	target := c.PostURL
	if target == nil {
		target = c.URL
	}
	method := http.MethodPost
	if c.UpdateMethod != "" {
		method = c.UpdateMethod
	}

	resp, err := c.httpRequest(ctx, method, target, data, "upload document")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		log.Printf("[DEBUG] UPLOAD DOCUMENT, %d: %s", resp.StatusCode, bodyForLog(resp))
		return fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
}

// maxLoggedBody bounds how much of an error response is copied into the
// debug log.
const maxLoggedBody = 4096

// sensitiveHeaders are masked in logs, along with every header the client
// was configured to send, since those commonly carry tokens.
var sensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"www-authenticate",
}

// headersForLog renders h as sorted key=value pairs with sensitive values
// masked.
func (c *httpClient) headersForLog(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(h.Values(k), ", ")
		if c.sensitive(k) {
			v = "[MASKED]"
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}

func (c *httpClient) sensitive(key string) bool {
	lower := strings.ToLower(key)
	if slices.Contains(sensitiveHeaders, lower) {
		return true
	}
	for k := range c.Headers {
		if strings.ToLower(k) == lower {
			return true
		}
	}
	return false
}

// bodyForLog reads at most maxLoggedBody bytes of an error response.
func bodyForLog(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody+1))
	if err != nil {
		log.Printf("[ERROR] Failed to read HTTP response body for logging: %v", err)
		return ""
	}
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
