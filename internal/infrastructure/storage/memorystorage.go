package storage

import (
	"bytes"
	"context"
	"io"
)

// MemoryStorage is an in-memory ObjectStorage for tests.
type MemoryStorage struct {
	objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Put(bucket, key string, data []byte) {
	s.objects[bucket+"/"+key] = data
}

func (s *MemoryStorage) Get(ctx context.Context, bucket, key string) (*Object, error) {
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &Object{
		Reader: io.NopCloser(bytes.NewReader(data)),
		Size:   int64(len(data)),
	}, nil
}
