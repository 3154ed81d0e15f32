package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/budget"
	"github.com/sirupsen/logrus"
)

// Memory keeps the datasets in memory, as encoded documents. It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	docs map[budget.Dataset][]byte
	log  logrus.FieldLogger
}

// NewMemory creates an empty in-memory store.
func NewMemory(log logrus.FieldLogger) *Memory {
	return &Memory{docs: make(map[budget.Dataset][]byte), log: orStandard(log)}
}

func (m *Memory) Load(ctx context.Context) (*budget.Snapshot, error) { return load(ctx, m, m.log) }

func (m *Memory) Save(ctx context.Context, s *budget.Snapshot, datasets ...budget.Dataset) error {
	return save(ctx, m, s, datasets, m.log)
}

// Document returns a copy of a stored document, nil if it was never saved.
func (m *Memory) Document(d budget.Dataset) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.docs[d])
}

func (m *Memory) read(ctx context.Context) (map[budget.Dataset][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := maps.Clone(m.docs)
	for d, doc := range docs {
		docs[d] = slices.Clone(doc)
	}
	return docs, ctx.Err()
}

func (m *Memory) write(ctx context.Context, docs map[budget.Dataset][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for d, doc := range docs {
		m.docs[d] = slices.Clone(doc)
	}
	return nil
}
