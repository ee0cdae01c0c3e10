package repository

import (
	"context"
	"sync"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
)

// MemoryRepo holds the document in process memory. Used by tests and by
// CMS_CONTENT_BACKEND=memory for throwaway instances.
type MemoryRepo struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Name() string { return "memory" }

func (m *MemoryRepo) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, content.ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryRepo) Save(ctx context.Context, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.data = cp
	m.mu.Unlock()
	return nil
}
