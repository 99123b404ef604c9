package storage

import (
	"context"
	"sync"

	"github.com/plantpal/internal/plant"
)

// MemoryStore 只保存在进程内，保存的是编码后的字节，与其他实现走同一套编解码。
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context, defaults plant.Record) (*plant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	record, err := plant.Decode(s.data, defaults)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *MemoryStore) Save(_ context.Context, record plant.Record) error {
	data, err := plant.Encode(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}
