// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package pg implements a remote store keeping the document in one row of
// a PostgreSQL table.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/lib/pq"

	"github.com/opentofu/lazydoc/internal/backend/remote"
)

const (
	defaultSchemaName = "lazydoc_remote_store"
	defaultTableName  = "documents"
	defaultName       = "default"
)

// Config configures the PostgreSQL store.
type Config struct {
	ConnStr    string `mapstructure:"conn_str"`
	SchemaName string `mapstructure:"schema_name"`
	TableName  string `mapstructure:"table_name"`

	// Name is the row key. Several documents can share one table under
	// different names.
	Name string `mapstructure:"name"`

	SkipSchemaCreation bool `mapstructure:"skip_schema_creation"`
	SkipTableCreation  bool `mapstructure:"skip_table_creation"`

	remote.Config `mapstructure:",squash"`
}

func (c *Config) setDefaults() {
	if c.SchemaName == "" {
		c.SchemaName = defaultSchemaName
	}
	if c.TableName == "" {
		c.TableName = defaultTableName
	}
	if c.Name == "" {
		c.Name = defaultName
	}
}

// Validate reports every problem with c.
func (c *Config) Validate() error {
	var diags *multierror.Error
	if c.ConnStr == "" {
		diags = multierror.Append(diags, errors.New("conn_str must be set"))
	}
	return diags.ErrorOrNil()
}

// New connects to the database, prepares the schema and table unless told
// not to, and returns a backend storing its document in the row cfg.Name.
func New(ctx context.Context, cfg Config) (*remote.Backend, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pg backend configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.ConnStr)
	if err != nil {
		return nil, err
	}
	if err := prepare(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}

	return remote.NewBackend(&RemoteClient{
		Client:     db,
		Name:       cfg.Name,
		SchemaName: cfg.SchemaName,
		TableName:  cfg.TableName,
		id:         identity(cfg),
	}, cfg.Config)
}

// prepare creates the schema and table if they are missing.
func prepare(ctx context.Context, db *sql.DB, cfg Config) error {
	var query string

	if !cfg.SkipSchemaCreation {
		// list all schemas to see if it exists
		var count int
		query = `select count(1) from information_schema.schemata where schema_name = $1`
		if err := db.QueryRowContext(ctx, query, cfg.SchemaName).Scan(&count); err != nil {
			return err
		}

		// skip schema creation if schema already exists
		// `CREATE SCHEMA IF NOT EXISTS` is to be avoided if ever
		// a user hasn't been granted the `CREATE SCHEMA` privilege
		if count < 1 {
			query = fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(cfg.SchemaName))
			if _, err := db.ExecContext(ctx, query); err != nil {
				return err
			}
		}
	}

	if !cfg.SkipTableCreation {
		query = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			name text PRIMARY KEY,
			data text
			)`, pq.QuoteIdentifier(cfg.SchemaName), pq.QuoteIdentifier(cfg.TableName))
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// identity names the row without the credentials from the connection
// string.
func identity(cfg Config) string {
	host := "postgres"
	if u, err := url.Parse(cfg.ConnStr); err == nil && u.Host != "" {
		host = u.Host + u.Path
	}
	return fmt.Sprintf("postgres://%s#%s.%s/%s", host, cfg.SchemaName, cfg.TableName, cfg.Name)
}

// RemoteClient reads and writes one table row.
type RemoteClient struct {
	Client     *sql.DB
	Name       string
	SchemaName string
	TableName  string

	id string
}

var _ remote.Client = (*RemoteClient)(nil)

func (c *RemoteClient) Identity() string {
	return c.id
}

func (c *RemoteClient) table() string {
	return pq.QuoteIdentifier(c.SchemaName) + "." + pq.QuoteIdentifier(c.TableName)
}

func (c *RemoteClient) Get(ctx context.Context) (*remote.Payload, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE name = $1`, c.table())
	row := c.Client.QueryRowContext(ctx, query, c.Name)
	var data []byte
	switch err := row.Scan(&data); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &remote.Payload{Data: data}, nil
}

func (c *RemoteClient) Put(ctx context.Context, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET data = $2 WHERE %s.name = $1`, c.table(), pq.QuoteIdentifier(c.TableName))
	_, err := c.Client.ExecContext(ctx, query, c.Name, string(data))
	return err
}
