// Package store persists budget snapshots.
//
// Every backend stores the five datasets as the JSON documents produced by budget.EncodeDataset, so
// that data can move between backends, and to and from backup bundles, without conversion.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/etnz/budget"
	"github.com/sirupsen/logrus"
)

// Store loads and saves snapshots.
type Store interface {
	// Load reads all datasets. Missing datasets are empty.
	Load(ctx context.Context) (*budget.Snapshot, error)
	// Save writes the given datasets of s, all of them if none is given.
	Save(ctx context.Context, s *budget.Snapshot, datasets ...budget.Dataset) error
}

// documents is the raw access shared by the backends.
type documents interface {
	read(ctx context.Context) (map[budget.Dataset][]byte, error)
	write(ctx context.Context, docs map[budget.Dataset][]byte) error
}

// load decodes the documents of a backend.
func load(ctx context.Context, d documents, log logrus.FieldLogger) (*budget.Snapshot, error) {
	docs, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	s, err := budget.DecodeSnapshot(docs, log)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"datasets":     len(docs),
		"transactions": s.Ledger().Len(budget.Transactions),
		"malformed":    len(s.Malformed()),
	}).Debug("budget loaded")
	return s, nil
}

// save encodes and writes datasets of s to a backend.
func save(ctx context.Context, d documents, s *budget.Snapshot, datasets []budget.Dataset, log logrus.FieldLogger) error {
	docs, err := budget.EncodeSnapshot(s, datasets...)
	if err != nil {
		return err
	}
	if err := d.write(ctx, docs); err != nil {
		return err
	}
	log.WithField("datasets", len(docs)).Debug("budget saved")
	return nil
}

// Open opens the backend named by kind: "folder" stores files in folder, "sqlite" uses the database
// file at dbPath.
func Open(kind, folder, dbPath string, log logrus.FieldLogger) (Store, error) {
	switch kind {
	case "folder", "":
		return NewFolder(folder, log), nil
	case "sqlite":
		return OpenSQLite(dbPath, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// Close closes st if it holds resources.
func Close(st Store) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Export writes a backup bundle of the stored budget.
func Export(ctx context.Context, st Store, w io.Writer) error {
	s, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := budget.EncodeBundle(w, s); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the stored budget with the content of a backup bundle and returns it.
func Import(ctx context.Context, st Store, r io.Reader, log logrus.FieldLogger) (*budget.Snapshot, error) {
	s, err := budget.DecodeBundle(r, log)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := st.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return s, nil
}

func orStandard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
