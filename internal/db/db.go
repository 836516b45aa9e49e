package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/MJServices/neural-admin-panel/internal/logger"
)

var tracer = otel.Tracer("neural-admin/db")

// DB wraps a PostgreSQL database connection
type DB struct {
	conn *sql.DB
}

// Connect establishes a connection to PostgreSQL
func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The dashboard fans out a handful of queries per request; a modest
	// pool is plenty.
	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(20 * time.Minute)

	return &DB{conn: conn}, nil
}

// ConnectWithRetry calls Connect until it succeeds or ctx is done,
// backing off from 1s up to 10s between attempts.
func ConnectWithRetry(ctx context.Context, dsn string) (*DB, error) {
	delay := time.Second
	for attempt := 1; ; attempt++ {
		database, err := Connect(dsn)
		if err == nil {
			return database, nil
		}
		logger.Warn("database not ready", "attempt", attempt, "error", err, "retry_in", delay)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
		case <-time.After(delay):
		}
		delay = min(delay*2, 10*time.Second)
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Exec executes a query without returning rows. Used by test fixtures.
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row (for testing)
func (db *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// paramBuilder tracks $N indices for dynamic SQL parameter construction.
type paramBuilder struct {
	args    []interface{}
	nextIdx int
}

func newParamBuilder() *paramBuilder {
	return &paramBuilder{nextIdx: 1}
}

// add appends a value and returns its $N placeholder.
func (pb *paramBuilder) add(val interface{}) string {
	placeholder := fmt.Sprintf("$%d", pb.nextIdx)
	pb.args = append(pb.args, val)
	pb.nextIdx++
	return placeholder
}

// addArray appends a string slice as pq.Array and returns its $N placeholder.
func (pb *paramBuilder) addArray(vals []string) string {
	return pb.add(pq.Array(vals))
}

// whereClause joins conditions with AND, or returns "" when there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// wildcards in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// limitOffset renders LIMIT/OFFSET; a non-positive limit means no limit.
func limitOffset(pb *paramBuilder, limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		sb.WriteString(" LIMIT " + pb.add(limit))
	}
	if offset > 0 {
		sb.WriteString(" OFFSET " + pb.add(offset))
	}
	return sb.String()
}
