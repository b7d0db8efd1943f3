// Copyright 2025 Certen Protocol
//
// Audit database client - connection pooling and health checks over
// Postgres, grounded on this repo's teacher's pkg/database.Client.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Client wraps a pooled Postgres connection for the audit trail.
type Client struct {
	db     *sql.DB
	logger *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger overrides the client's logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient opens a pooled connection to databaseURL.
func NewClient(databaseURL string, opts ...ClientOption) (*Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("audit: database URL cannot be empty")
	}

	client := &Client{
		logger: log.New(log.Writer(), "[Audit] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(client)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: ping database: %w", err)
	}

	client.db = db
	client.logger.Printf("connected to audit database")
	return client, nil
}

// DB returns the underlying *sql.DB.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the connection pool.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// EnsureSchema creates the audit tables if they do not already exist.
func (c *Client) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS attest_burn_requests (
	id               BIGSERIAL PRIMARY KEY,
	request_id       UUID NOT NULL,
	burn_nonce       BIGINT NOT NULL,
	asset_id         SMALLINT NOT NULL,
	user_pubkey      BYTEA NOT NULL,
	amount           BIGINT NOT NULL,
	validator_set_version BIGINT NOT NULL,
	outcome_kind     TEXT NOT NULL,
	validator_pubkey BYTEA,
	signature        BYTEA,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_attest_burn_requests_nonce ON attest_burn_requests (asset_id, burn_nonce);
`
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}
