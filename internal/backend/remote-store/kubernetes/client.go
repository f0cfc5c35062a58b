// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package kubernetes

import (
	"context"
	"fmt"
	"log"
	"maps"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const (
	// documentKey is the key of the Secret's data holding the document.
	documentKey = "document.json"

	managedByLabel = "app.kubernetes.io/managed-by"
	managedByValue = "lazydoc"
)

// RemoteClient reads and writes the document key of one Secret.
type RemoteClient struct {
	secrets   typedcorev1.SecretInterface
	namespace string
	name      string
	labels    map[string]string
	id        string
}

var _ remote.Client = (*RemoteClient)(nil)

func newRemoteClient(clientset kubernetes.Interface, host string, cfg Config) *RemoteClient {
	return &RemoteClient{
		secrets:   clientset.CoreV1().Secrets(cfg.Namespace),
		namespace: cfg.Namespace,
		name:      cfg.SecretName,
		labels:    cfg.Labels,
		id:        fmt.Sprintf("kubernetes://%s/namespaces/%s/secrets/%s", host, cfg.Namespace, cfg.SecretName),
	}
}

func (c *RemoteClient) Identity() string {
	return c.id
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	secret, err := c.secrets.Get(ctx, c.name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data := secret.Data[documentKey]
	if len(data) == 0 {
		return nil, nil
	}
	return &remote.Payload{Data: data}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	secret, err := c.secrets.Get(ctx, c.name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		log.Printf("[DEBUG] kubernetes: creating secret %s/%s", c.namespace, c.name)
		_, err = c.secrets.Create(ctx, c.newSecret(data), metav1.CreateOptions{})
		return err
	}
	if err != nil {
		return err
	}

	if secret.Data == nil {
		secret.Data = make(map[string][]byte)
	}
	secret.Data[documentKey] = data
	_, err = c.secrets.Update(ctx, secret, metav1.UpdateOptions{})
	return err
}

func (c *RemoteClient) newSecret(data []byte) *corev1.Secret {
	labels := map[string]string{managedByLabel: managedByValue}
	maps.Copy(labels, c.labels)
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      c.name,
			Namespace: c.namespace,
			Labels:    labels,
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{documentKey: data},
	}
}
