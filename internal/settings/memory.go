package settings

import (
	"context"
	"sync"
)

// MemoryBackend 进程内保存文档，重启后丢失。
type MemoryBackend struct {
	mu  sync.RWMutex
	doc []byte
}

func (m *MemoryBackend) Load(_ context.Context) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.doc == nil {
		return nil, false, nil
	}
	return clone(m.doc), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, doc []byte) error {
	m.mu.Lock()
	m.doc = clone(doc)
	m.mu.Unlock()
	return nil
}

// NewMemoryStore 用于测试以及 SETTINGS_STORE=memory。
func NewMemoryStore(defaults Settings) *Service {
	return NewService(&MemoryBackend{}, defaults)
}
