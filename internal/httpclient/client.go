// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package httpclient builds the HTTP clients used by remote stores.
package httpclient

import (
	"context"
	"net/http"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/opentofu/lazydoc/version"
)

// New returns the DefaultPooledClient from the cleanhttp package that will
// also send a lazydoc User-Agent string.
//
// If ctx carries a recording OpenTelemetry span, requests made with the
// returned client produce spans too. Those become children of the span in
// each request's own context, so callers in traced code must pass one.
func New(ctx context.Context) *http.Client {
	cli := cleanhttp.DefaultPooledClient()
	cli.Transport = &userAgentRoundTripper{
		userAgent: UserAgent(version.String()),
		inner:     cli.Transport,
	}

	if span := otelTrace.SpanFromContext(ctx); span != nil && span.IsRecording() {
		cli.Transport = otelhttp.NewTransport(cli.Transport)
	}

	return cli
}

// Transport returns the *http.Transport under a client built by New, for
// callers that adjust TLS settings.
func Transport(cli *http.Client) *http.Transport {
	rt := cli.Transport
	for {
		switch t := rt.(type) {
		case *http.Transport:
			return t
		case *userAgentRoundTripper:
			rt = t.inner
		default:
			return nil
		}
	}
}
