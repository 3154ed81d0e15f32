package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/budget"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite stores each dataset document as a row of the datasets table.
type SQLite struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// OpenSQLite opens (and creates or migrates) the database at path.
func OpenSQLite(path string, log logrus.FieldLogger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{db: db, log: orStandard(log)}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load(ctx context.Context) (*budget.Snapshot, error) { return load(ctx, s, s.log) }

func (s *SQLite) Save(ctx context.Context, snap *budget.Snapshot, datasets ...budget.Dataset) error {
	return save(ctx, s, snap, datasets, s.log)
}

func (s *SQLite) read(ctx context.Context) (map[budget.Dataset][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, body FROM datasets`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	docs := make(map[budget.Dataset][]byte)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		d, err := budget.ParseDataset(name)
		if err != nil {
			s.log.WithField("dataset", name).Warn("ignoring unknown dataset")
			continue
		}
		docs[d] = []byte(body)
	}
	return docs, rows.Err()
}

// write upserts every document in a single transaction.
func (s *SQLite) write(ctx context.Context, docs map[budget.Dataset][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO datasets (name, body, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	for d, doc := range docs {
		if _, err := tx.ExecContext(ctx, upsert, d.String(), string(doc)); err != nil {
			return fmt.Errorf("save %s: %w", d, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
