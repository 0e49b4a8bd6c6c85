package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Tenants     string
	Users       string
	Roles       string
	Folders     string
	Files       string
	Credentials string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Tenants:     fmt.Sprintf("%stenants", prefix),
		Users:       fmt.Sprintf("%susers", prefix),
		Roles:       fmt.Sprintf("%sroles", prefix),
		Folders:     fmt.Sprintf("%sfolders", prefix),
		Files:       fmt.Sprintf("%sfiles", prefix),
		Credentials: fmt.Sprintf("%sexternal_credentials", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// By default pgx caches prepared statements (QueryExecModeCacheStatement),
// which transaction-pooling proxies like PgBouncer (conventionally port 6543)
// do not support. When such a pooler is detected and the connection string
// carries no explicit default_query_exec_mode, the pool is switched to
// QueryExecModeCacheDescribe: still the extended protocol (needed for correct
// array and JSONB encoding) but without server-side prepared statements.
//
// Dynamic table names built with fmt.Sprintf are safe alongside statement
// caching because the SQL text is interpolated before it reaches the server;
// each prefix yields its own cached statement.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	// Check if there's a transaction in the context
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	// No transaction, use the pool
	return pool
}
