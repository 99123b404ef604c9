package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/plantpal/internal/plant"
)

// JSONFileStore 模拟浏览器 localStorage：文件内容是 {key: record} 的 JSON 对象。
type JSONFileStore struct {
	filePath string
	key      string
	mu       sync.Mutex
}

// NewJSONFileStore 构造 JSONFileStore，key 为空时使用 plant.StorageKey。
func NewJSONFileStore(filePath, key string) *JSONFileStore {
	if key == "" {
		key = plant.StorageKey
	}
	return &JSONFileStore{filePath: filePath, key: key}
}

func (s *JSONFileStore) Load(_ context.Context, defaults plant.Record) (*plant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[s.key]
	if !ok {
		return nil, nil
	}

	record, err := plant.Decode(raw, defaults)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *JSONFileStore) Save(_ context.Context, record plant.Record) error {
	data, err := plant.Encode(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return err
	}
	entries[s.key] = data
	return s.persistLocked(entries)
}

func (s *JSONFileStore) readLocked() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return entries, nil
}

func (s *JSONFileStore) persistLocked(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
