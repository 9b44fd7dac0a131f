package objectstore

import (
	"context"
	"sync"
)

// Object is a blob held by MemoryStore
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps blobs in a map. Used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]Object{}}
}

func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.objects[path] = Object{Data: cp, ContentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, path)
	s.mu.Unlock()
	return nil
}

// Get returns the object at path
func (s *MemoryStore) Get(path string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[path]
	return o, ok
}

// Len returns the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
