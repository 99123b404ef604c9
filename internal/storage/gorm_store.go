package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/plantpal/internal/db"
	"github.com/plantpal/internal/plant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 把记录保存在 plant_states 表的一行中，sqlite 与 mysql 通用。
type GormStore struct {
	db  *gorm.DB
	key string
}

// NewGormStore 构造 GormStore，key 为空时使用 plant.StorageKey。
func NewGormStore(gdb *gorm.DB, key string) *GormStore {
	if key == "" {
		key = plant.StorageKey
	}
	return &GormStore{db: gdb, key: key}
}

// Load 读取并解码记录，不存在时返回 nil, nil。
func (s *GormStore) Load(ctx context.Context, defaults plant.Record) (*plant.Record, error) {
	var state db.PlantState
	if err := s.db.WithContext(ctx).Where(&db.PlantState{Key: s.key}).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load plant state: %w", err)
	}

	record, err := plant.Decode([]byte(state.Value), defaults)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save 以 key 为冲突列执行 upsert。
func (s *GormStore) Save(ctx context.Context, record plant.Record) error {
	data, err := plant.Encode(record)
	if err != nil {
		return err
	}

	state := db.PlantState{Key: s.key, Value: string(data)}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      state.Value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&state).Error; err != nil {
		return fmt.Errorf("save plant state: %w", err)
	}
	return nil
}
