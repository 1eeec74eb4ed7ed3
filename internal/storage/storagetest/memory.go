// Package storagetest provides an in-memory object store for tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/templui/drive/internal/storage"
)

// Memory keeps objects in a map. Setting Err makes every call fail with it.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	Err error
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := m.fail(ctx); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("size mismatch: declared %d, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *Memory) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.ObjectInfo{Size: int64(len(data)), ContentType: m.types[key]}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := m.fail(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

func (m *Memory) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := m.fail(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("memory://get/%s?ttl=%s", key, ttl), nil
}

func (m *Memory) SignedPutURL(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	if err := m.fail(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("memory://put/%s?size=%d&ttl=%s", key, size, ttl), nil
}

// Object returns the stored bytes, for assertions
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return bytes.Clone(data), ok
}

// Seed stores an object as if a client had uploaded it through a signed URL
func (m *Memory) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(data)
}

func (m *Memory) fail(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	return nil
}

var _ storage.Storage = (*Memory)(nil)

// ErrUnavailable is a convenient value for Memory.Err
var ErrUnavailable = errors.New("object store unavailable")
