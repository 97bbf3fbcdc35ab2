// Package mysql adapts database/sql MySQL connections to cluster sessions.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/slok/dbsandbox/internal/cluster"
	"github.com/slok/dbsandbox/internal/log"
)

// OpenerConfig is the configuration for the MySQL session opener.
type OpenerConfig struct {
	// DialTimeout defaults to 10s.
	DialTimeout time.Duration
	Logger      log.Logger
}

func (c *OpenerConfig) defaults() error {
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "mysql.Opener"})

	return nil
}

// Opener opens classic protocol sessions.
type Opener struct {
	dialTimeout time.Duration
	logger      log.Logger
}

// NewOpener returns a new session opener.
func NewOpener(cfg OpenerConfig) (*Opener, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Opener{dialTimeout: cfg.DialTimeout, logger: cfg.Logger}, nil
}

// Open connects and pings the server.
func (o *Opener) Open(ctx context.Context, opts cluster.ConnOptions) (cluster.Conn, error) {
	host := opts.Host
	if host == "" {
		host = "localhost"
	}

	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(opts.Port))
	cfg.Timeout = o.dialTimeout

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid connection options: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to %s@%s: %w", opts.User, cfg.Addr, err)
	}
	o.logger.Debugf("Connected to %s@%s", opts.User, cfg.Addr)

	return NewSession(db), nil
}

// Session is a cluster session backed by a database handle.
type Session struct {
	db *sql.DB
}

// NewSession wraps db.
func NewSession(db *sql.DB) *Session {
	return &Session{db: db}
}

// Query runs sql and buffers the whole result.
func (s *Session) Query(ctx context.Context, query string) (cluster.Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dst := make([]any, len(cols))
		for i := range values {
			dst[i] = &values[i]
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		r := make(Row, len(cols))
		for i, v := range values {
			r[i] = v.String
		}
		res.rows = append(res.rows, r)
	}

	return res, rows.Err()
}

// Close closes the database handle.
func (s *Session) Close() error { return s.db.Close() }

// Result is a buffered query result.
type Result struct {
	rows []Row
}

// NewResult returns a result with the rows.
func NewResult(rows ...Row) *Result { return &Result{rows: rows} }

// FetchOne pops the next row, nil when there are no more.
func (r *Result) FetchOne() (cluster.Row, error) {
	if len(r.rows) == 0 {
		return nil, nil
	}

	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, nil
}

// Row is a result row, NULL columns are empty strings.
type Row []string

// GetString returns column i.
func (r Row) GetString(i int) (string, error) {
	if i < 0 || i >= len(r) {
		return "", fmt.Errorf("column %d out of range (%d columns)", i, len(r))
	}
	return r[i], nil
}
