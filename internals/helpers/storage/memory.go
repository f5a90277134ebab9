package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryStore menyimpan objek di memori (STORAGE_DRIVER=memory, dev & test).
type MemoryStore struct {
	mu      sync.Mutex
	base    string
	Objects map[string][]byte
	Types   map[string]string
}

func NewMemoryStore(base string) *MemoryStore {
	return &MemoryStore{
		base:    strings.TrimRight(base, "/"),
		Objects: map[string][]byte{},
		Types:   map[string]string{},
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.Objects[key] = buf.Bytes()
	m.Types[key] = contentType
	m.mu.Unlock()
	return m.PublicURL(key), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.Objects, key)
	delete(m.Types, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return m.base + "/" + key
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok
}
