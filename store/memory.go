package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is a Store held in process memory. Records are kept encoded, so values
// read back are copies.
type Memory struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]byte
}

func NewMemory() *Memory { return &Memory{records: map[uuid.UUID][]byte{}} }

func (m *Memory) Put(ctx context.Context, rec Record) error {
	b, err := Encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, rec.ID)
	}
	m.records[rec.ID] = b
	return nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	m.mu.RLock()
	b, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Decode(b)
}

func (m *Memory) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, b := range m.records {
		rec, err := Decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	SortRecords(out)
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) Close() error { return nil }
