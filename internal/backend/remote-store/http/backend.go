// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package http implements a remote store that reads a document with GET
// from a REST endpoint and writes it back with POST or PUT.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/opentofu/lazydoc/internal/backend/remote"
	"github.com/opentofu/lazydoc/internal/httpclient"
	"github.com/opentofu/lazydoc/internal/logging"
)

// Config configures the HTTP store.
type Config struct {
	// Address is the URL the document is read from, and written to unless
	// PostAddress is set.
	Address string `mapstructure:"address"`

	// PostAddress, if set, is the URL updates are sent to instead of
	// Address.
	PostAddress string `mapstructure:"post_address"`

	// UpdateMethod is the HTTP method used for updates. Defaults to POST.
	UpdateMethod string `mapstructure:"update_method"`

	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Headers  map[string]string `mapstructure:"headers"`

	SkipCertVerification   bool   `mapstructure:"skip_cert_verification"`
	ClientCACertificatePEM string `mapstructure:"client_ca_certificate_pem"`
	ClientCertificatePEM   string `mapstructure:"client_certificate_pem"`
	ClientPrivateKeyPEM    string `mapstructure:"client_private_key_pem"`

	// RetryMax and the wait bounds configure transport-level retries of
	// failed requests, separate from the decode retries in remote.Config.
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`

	remote.Config `mapstructure:",squash"`
}

var (
	headerNameRegex  = regexp.MustCompile("[^a-zA-Z0-9-_]")
	headerValueRegex = regexp.MustCompile("[^[:ascii:]]")
)

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error

	if err := validateURL("address", c.Address, true); err != nil {
		diags = multierror.Append(diags, err)
	}
	if err := validateURL("post_address", c.PostAddress, false); err != nil {
		diags = multierror.Append(diags, err)
	}
	if c.RetryMax < 0 {
		diags = multierror.Append(diags, fmt.Errorf("retry_max must not be negative"))
	}
	if c.ClientCertificatePEM != "" && c.ClientPrivateKeyPEM == "" {
		diags = multierror.Append(diags, fmt.Errorf("client_certificate_pem is set but client_private_key_pem is not"))
	}
	if c.ClientPrivateKeyPEM != "" && c.ClientCertificatePEM == "" {
		diags = multierror.Append(diags, fmt.Errorf("client_private_key_pem is set but client_certificate_pem is not"))
	}

	for name, value := range c.Headers {
		if len(name) == 0 || headerNameRegex.MatchString(name) {
			diags = multierror.Append(diags, fmt.Errorf(
				"headers %q name must not be empty and only contain A-Za-z0-9-_ characters", name))
		}
		if len(strings.TrimSpace(value)) == 0 || headerValueRegex.MatchString(value) {
			diags = multierror.Append(diags, fmt.Errorf(
				"headers %q value must not be empty and only contain ascii characters", name))
		}
		switch strings.ToLower(name) {
		case "authorization":
			if c.Username != "" {
				diags = multierror.Append(diags, fmt.Errorf("headers %q cannot be set when providing username", name))
			}
		case "content-type", "content-md5":
			diags = multierror.Append(diags, fmt.Errorf("headers %q is reserved", name))
		}
	}

	return diags.ErrorOrNil()
}

func validateURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s must be set", field)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse %s URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be HTTP or HTTPS", field)
	}
	return nil
}

// New returns a backend storing its document at cfg.Address.
func New(cfg Config) (*remote.Backend, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return remote.NewBackend(client, cfg.Config)
}

func newClient(cfg Config) (*httpClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid http backend configuration: %w", err)
	}

	address, _ := url.Parse(cfg.Address)
	postURL := address
	if cfg.PostAddress != "" {
		postURL, _ = url.Parse(cfg.PostAddress)
	}
	updateMethod := cfg.UpdateMethod
	if updateMethod == "" {
		updateMethod = http.MethodPost
	}

	rClient := retryablehttp.NewClient()
	rClient.HTTPClient = httpclient.New(context.Background())
	rClient.Logger = logging.HCLogger().Named("http")
	if cfg.RetryMax > 0 {
		rClient.RetryMax = cfg.RetryMax
	}
	if cfg.RetryWaitMin > 0 {
		rClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rClient.RetryWaitMax = cfg.RetryWaitMax
	}
	if err := configureTLS(rClient, cfg); err != nil {
		return nil, err
	}

	return &httpClient{
		URL:          address,
		PostURL:      postURL,
		UpdateMethod: updateMethod,

		Headers:  cfg.Headers,
		Username: cfg.Username,
		Password: cfg.Password,

		Client: rClient,
	}, nil
}

// configureTLS configures TLS when needed; if there are no conditions requiring TLS, no change is made.
func configureTLS(client *retryablehttp.Client, cfg Config) error {
	if !cfg.SkipCertVerification && cfg.ClientCACertificatePEM == "" && cfg.ClientCertificatePEM == "" {
		return nil
	}

	transport := httpclient.Transport(client.HTTPClient)
	if transport == nil {
		return errors.New("cannot configure TLS on this HTTP client")
	}
	var tlsConfig tls.Config
	transport.TLSClientConfig = &tlsConfig

	if cfg.SkipCertVerification {
		tlsConfig.InsecureSkipVerify = true
	}
	if cfg.ClientCACertificatePEM != "" {
		tlsConfig.RootCAs = x509.NewCertPool()
		if !tlsConfig.RootCAs.AppendCertsFromPEM([]byte(cfg.ClientCACertificatePEM)) {
			return errors.New("failed to append certs")
		}
	}
	if cfg.ClientCertificatePEM != "" {
		certificate, err := tls.X509KeyPair([]byte(cfg.ClientCertificatePEM), []byte(cfg.ClientPrivateKeyPEM))
		if err != nil {
			return fmt.Errorf("cannot load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{certificate}
	}
	return nil
}
