package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/etnz/budget"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Folder stores each dataset as a JSON file in a directory, e.g. "planner.json".
type Folder struct {
	dir string
	log logrus.FieldLogger
}

// NewFolder creates a store in dir. The directory is created on the first Save.
func NewFolder(dir string, log logrus.FieldLogger) *Folder {
	return &Folder{dir: dir, log: orStandard(log)}
}

// Dir returns the directory of the store.
func (f *Folder) Dir() string { return f.dir }

func (f *Folder) Load(ctx context.Context) (*budget.Snapshot, error) { return load(ctx, f, f.log) }

func (f *Folder) Save(ctx context.Context, s *budget.Snapshot, datasets ...budget.Dataset) error {
	return save(ctx, f, s, datasets, f.log)
}

// read reads the dataset files concurrently. Missing files are skipped.
func (f *Folder) read(ctx context.Context) (map[budget.Dataset][]byte, error) {
	var mu sync.Mutex
	docs := make(map[budget.Dataset][]byte)

	g, ctx := errgroup.WithContext(ctx)
	for _, d := range budget.Datasets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := filepath.Join(f.dir, d.Filename())
			data, err := os.ReadFile(name)
			if errors.Is(err, os.ErrNotExist) {
				f.log.WithField("file", name).Debug("dataset file not found, using an empty dataset")
				return nil
			}
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", d, err)
			}
			mu.Lock()
			docs[d] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// write replaces each file atomically: the document is written to a temporary file then renamed.
func (f *Folder) write(ctx context.Context, docs map[budget.Dataset][]byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create data folder: %w", err)
	}
	for d, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Join(f.dir, d.Filename())
		tmp, err := os.CreateTemp(f.dir, "."+d.Filename()+".*")
		if err != nil {
			return fmt.Errorf("cannot save %s: %w", d, err)
		}
		_, werr := tmp.Write(doc)
		cerr := tmp.Close()
		if err := errors.Join(werr, cerr); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("cannot save %s: %w", d, err)
		}
		if err := os.Rename(tmp.Name(), name); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("cannot save %s: %w", d, err)
		}
	}
	return nil
}
