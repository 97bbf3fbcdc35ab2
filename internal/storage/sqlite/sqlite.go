package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := migrations.Up(ctx, db, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const selectColumns = `id, port, base_dir, status, created_at, started_at, stopped_at`

// CreateSandbox creates a new sandbox in the repository.
func (r *Repository) CreateSandbox(ctx context.Context, s model.Sandbox) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	startedAt, stoppedAt := unixPtr(s.StartedAt), unixPtr(s.StoppedAt)

	query := `
		INSERT INTO sandboxes (
			id, port, base_dir, status,
			created_at, started_at, stopped_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.Port,
		s.BaseDir,
		s.Status,
		s.CreatedAt.Unix(),
		startedAt,
		stoppedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: sandboxes.") {
			return fmt.Errorf("sandbox on port %d already exists: %w", s.Port, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert sandbox: %w", err)
	}

	r.logger.Debugf("Created sandbox in repository: %d", s.Port)
	return nil
}

// GetSandbox retrieves a sandbox by port.
func (r *Repository) GetSandbox(ctx context.Context, port int) (*model.Sandbox, error) {
	query := `SELECT ` + selectColumns + ` FROM sandboxes WHERE port = ?`

	row := r.db.QueryRowContext(ctx, query, port)
	sandbox, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sandbox on port %d: %w", port, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query sandbox: %w", err)
	}

	return &sandbox, nil
}

// ListSandboxes returns all sandboxes ordered by port.
func (r *Repository) ListSandboxes(ctx context.Context) ([]model.Sandbox, error) {
	query := `SELECT ` + selectColumns + ` FROM sandboxes ORDER BY port ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query sandboxes: %w", err)
	}
	defer rows.Close()

	var sandboxes []model.Sandbox
	for rows.Next() {
		sandbox, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		sandboxes = append(sandboxes, sandbox)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sandboxes, nil
}

// UpdateSandbox updates an existing sandbox, the port identifies the row.
func (r *Repository) UpdateSandbox(ctx context.Context, s model.Sandbox) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	query := `
		UPDATE sandboxes
		SET
			base_dir = ?,
			status = ?,
			created_at = ?,
			started_at = ?,
			stopped_at = ?
		WHERE port = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		s.BaseDir,
		s.Status,
		s.CreatedAt.Unix(),
		unixPtr(s.StartedAt),
		unixPtr(s.StoppedAt),
		s.Port,
	)
	if err != nil {
		return fmt.Errorf("could not update sandbox: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sandbox on port %d: %w", s.Port, model.ErrNotFound)
	}

	r.logger.Debugf("Updated sandbox in repository: %d", s.Port)
	return nil
}

// DeleteSandbox deletes a sandbox.
func (r *Repository) DeleteSandbox(ctx context.Context, port int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sandboxes WHERE port = ?`, port)
	if err != nil {
		return fmt.Errorf("could not delete sandbox: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sandbox on port %d: %w", port, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted sandbox from repository: %d", port)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRow(s scanner) (model.Sandbox, error) {
	var sandbox model.Sandbox
	var status string
	var createdAt, startedAt, stoppedAt sql.NullInt64

	err := s.Scan(
		&sandbox.ID,
		&sandbox.Port,
		&sandbox.BaseDir,
		&status,
		&createdAt,
		&startedAt,
		&stoppedAt,
	)
	if err != nil {
		return model.Sandbox{}, err
	}
	sandbox.Status = model.SandboxStatus(status)

	if !createdAt.Valid {
		return model.Sandbox{}, fmt.Errorf("created_at is required")
	}
	sandbox.CreatedAt = timeFromUnix(createdAt.Int64)
	if startedAt.Valid {
		t := timeFromUnix(startedAt.Int64)
		sandbox.StartedAt = &t
	}
	if stoppedAt.Valid {
		t := timeFromUnix(stoppedAt.Int64)
		sandbox.StoppedAt = &t
	}

	return sandbox, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
