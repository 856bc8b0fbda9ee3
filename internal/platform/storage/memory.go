package storage

import (
	"context"
	"sync"
)

// Ensure Memory implements Document
var _ Document = (*Memory)(nil)

// Memory is a process-local Document, used by tests and ephemeral runs.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Replace(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}
