// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package kubernetes implements a remote store keeping the document in a
// Kubernetes Secret.
package kubernetes

import (
	"errors"
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const defaultNamespace = "default"

// Config configures the Kubernetes store. Without InClusterConfig the
// client is configured from kubeconfig files the way kubectl is.
type Config struct {
	Namespace  string `mapstructure:"namespace"`
	SecretName string `mapstructure:"secret_name"`

	// Labels are added to the Secret when it is created.
	Labels map[string]string `mapstructure:"labels"`

	InClusterConfig bool   `mapstructure:"in_cluster_config"`
	ConfigPath      string `mapstructure:"config_path"`
	ConfigContext   string `mapstructure:"config_context"`

	remote.Config `mapstructure:",squash"`
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.SecretName == "" {
		diags = multierror.Append(diags, errors.New("secret_name must be set"))
	} else {
		for _, msg := range validation.IsDNS1123Subdomain(c.SecretName) {
			diags = multierror.Append(diags, fmt.Errorf("secret_name %q is invalid: %s", c.SecretName, msg))
		}
	}
	if c.InClusterConfig && (c.ConfigPath != "" || c.ConfigContext != "") {
		diags = multierror.Append(diags, errors.New("config_path and config_context cannot be used with in_cluster_config"))
	}
	return diags.ErrorOrNil()
}

// New returns a backend storing its document in the Secret
// cfg.SecretName.
func New(cfg Config) (*remote.Backend, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kubernetes backend configuration: %w", err)
	}

	restConfig, err := restConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure the kubernetes client: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] kubernetes: using %s, namespace %s", restConfig.Host, cfg.Namespace)
	return remote.NewBackend(newRemoteClient(clientset, restConfig.Host, cfg), cfg.Config)
}

func restConfig(cfg Config) (*rest.Config, error) {
	if cfg.InClusterConfig {
		return rest.InClusterConfig()
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.ConfigPath != "" {
		loadingRules.ExplicitPath = cfg.ConfigPath
	}
	overrides := &clientcmd.ConfigOverrides{}
	if cfg.ConfigContext != "" {
		overrides.CurrentContext = cfg.ConfigContext
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}
