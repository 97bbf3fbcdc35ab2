// Package cluster watches the state of group replication members through a
// live database session.
package cluster

import (
	"context"
	"io"
)

// Row is a single result row.
type Row interface {
	// GetString returns the column i as a string.
	GetString(i int) (string, error)
}

// Result is the result of a query.
type Result interface {
	// FetchOne returns the next row, or nil when there are no more rows.
	FetchOne() (Row, error)
}

// Session is a live database session.
type Session interface {
	Query(ctx context.Context, sql string) (Result, error)
}

// Conn is a Session owned by the caller, it must be closed after use.
type Conn interface {
	Session
	io.Closer
}

// ConnOptions identify the server and credentials of a new session.
type ConnOptions struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Opener opens new sessions.
type Opener interface {
	Open(ctx context.Context, opts ConnOptions) (Conn, error)
}
