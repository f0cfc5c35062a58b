// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package init contains the list of backend types available for building
// document views from configuration, keyed by type name.
package init

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/opentofu/lazydoc/internal/backend"
	"github.com/opentofu/lazydoc/internal/backend/constant"
	"github.com/opentofu/lazydoc/internal/backend/file"
	"github.com/opentofu/lazydoc/internal/backend/remote"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/azure"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/consul"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/gcs"
	backendHTTP "github.com/opentofu/lazydoc/internal/backend/remote-store/http"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/kubernetes"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/pg"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/s3"
	backendSSH "github.com/opentofu/lazydoc/internal/backend/remote-store/ssh"
	"github.com/opentofu/lazydoc/internal/backend/remote-store/vault"
	"github.com/opentofu/lazydoc/internal/document"
)

// InitFn builds a backend from its raw configuration. The initial value,
// if the configuration carried one, has already been extracted and
// decoded.
type InitFn func(ctx context.Context, raw map[string]any, initial document.Value) (backend.Backend, error)

// backends is the list of available backends. This is a global variable
// because backends are currently hardcoded into the binary. In the future
// we may want to make this more configurable.
//
// "file" must always be present, since a bare path is always a file.
var backends map[string]InitFn
var backendsLock sync.Mutex

// backendAliases is a set of other names for backends in the backends map.
// Every value must be a key of backends.
var backendAliases map[string]string

// inmemClients are shared by every "inmem" backend with the same name for
// the life of the process.
var inmemClients map[string]*remote.InmemClient

// Init initializes the backends map with all our hardcoded backends.
func Init() {
	backendsLock.Lock()
	defer backendsLock.Unlock()

	backends = map[string]InitFn{
		"file":       initFile,
		"constant":   initConstant,
		"inmem":      initInmem,
		"http":       initHTTP,
		"consul":     initConsul,
		"s3":         initS3,
		"gcs":        initGCS,
		"azure":      initAzure,
		"pg":         initPG,
		"ssh":        initSSH,
		"vault":      initVault,
		"kubernetes": initKubernetes,
	}

	backendAliases = map[string]string{
		"local":      "file",
		"https":      "http",
		"gs":         "gcs",
		"azurerm":    "azure",
		"azblob":     "azure",
		"postgres":   "pg",
		"sftp":       "ssh",
		"mem":        "inmem",
		"vault+http": "vault",
		"k8s":        "kubernetes",
	}

	inmemClients = make(map[string]*remote.InmemClient)
}

// Backend returns the initialization factory for the given backend, or
// nil if none exists, along with the canonical name of the backend type.
func Backend(name string) (InitFn, string) {
	backendsLock.Lock()
	defer backendsLock.Unlock()
	if canonName, ok := backendAliases[name]; ok {
		name = canonName
	}
	return backends[name], name
}

// Set sets a new backend in the list of backends. If f is nil then the
// backend will be removed from the map. If this backend already exists
// then it will be overwritten.
//
// This method sets this backend globally and care should be taken to do
// this only before Init is called, or in tests.
func Set(name string, f InitFn) {
	backendsLock.Lock()
	defer backendsLock.Unlock()

	if f == nil {
		delete(backends, name)
		return
	}

	backends[name] = f
}

// Types returns the canonical names of all available backend types.
func Types() []string {
	backendsLock.Lock()
	defer backendsLock.Unlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a backend of the given type from raw configuration. The
// special key "initial", if present, is removed and decoded as the
// backend's initial value: a string is parsed as JSON text, anything else
// is converted with document.FromGo.
func New(ctx context.Context, typeName string, raw map[string]any) (backend.Backend, error) {
	f, canonName := Backend(typeName)
	if f == nil {
		return nil, fmt.Errorf("unknown backend type %q; available types are %s", typeName, strings.Join(Types(), ", "))
	}

	rest := make(map[string]any, len(raw))
	var initial document.Value
	for k, v := range raw {
		if k != "initial" {
			rest[k] = v
			continue
		}
		var err error
		initial, err = decodeInitial(v)
		if err != nil {
			return nil, fmt.Errorf("invalid initial value for %s backend: %w", canonName, err)
		}
	}
	return f(ctx, rest, initial)
}

func decodeInitial(v any) (document.Value, error) {
	if s, ok := v.(string); ok {
		return document.Decode([]byte(s))
	}
	return document.FromGo(v)
}

// decodeConfig decodes raw into the configuration struct pointed to by out.
// Values are converted leniently, so configuration built from URL query
// strings decodes into numbers, booleans and durations; unknown keys are
// an error.
func decodeConfig(typeName string, raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid %s backend configuration: %w", typeName, err)
	}
	return nil
}

func initFile(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg file.Config
	if err := decodeConfig("file", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(file.New(cfg))
}

func initConstant(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg struct{}
	if err := decodeConfig("constant", raw, &cfg); err != nil {
		return nil, err
	}
	return constant.New(initial), nil
}

func initInmem(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg struct {
		Name          string `mapstructure:"name"`
		remote.Config `mapstructure:",squash"`
	}
	if err := decodeConfig("inmem", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial

	backendsLock.Lock()
	client, ok := inmemClients[cfg.Name]
	if !ok {
		client = &remote.InmemClient{Name: cfg.Name}
		inmemClients[cfg.Name] = client
	}
	backendsLock.Unlock()

	return checked(remote.NewBackend(client, cfg.Config))
}

func initHTTP(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg backendHTTP.Config
	if err := decodeConfig("http", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(backendHTTP.New(cfg))
}

func initConsul(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg consul.Config
	if err := decodeConfig("consul", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(consul.New(cfg))
}

func initS3(ctx context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg s3.Config
	if err := decodeConfig("s3", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(s3.New(ctx, cfg))
}

func initGCS(ctx context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg gcs.Config
	if err := decodeConfig("gcs", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(gcs.New(ctx, cfg))
}

func initAzure(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg azure.Config
	if err := decodeConfig("azure", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(azure.New(cfg))
}

func initPG(ctx context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg pg.Config
	if err := decodeConfig("pg", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(pg.New(ctx, cfg))
}

func initSSH(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg backendSSH.Config
	if err := decodeConfig("ssh", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(backendSSH.New(cfg))
}

func initVault(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg vault.Config
	if err := decodeConfig("vault", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(vault.New(cfg))
}

func initKubernetes(_ context.Context, raw map[string]any, initial document.Value) (backend.Backend, error) {
	var cfg kubernetes.Config
	if err := decodeConfig("kubernetes", raw, &cfg); err != nil {
		return nil, err
	}
	cfg.InitialValue = initial
	return checked(kubernetes.New(cfg))
}

// checked keeps a failed constructor's nil pointer from becoming a non-nil
// backend.Backend.
func checked(b backend.Backend, err error) (backend.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
