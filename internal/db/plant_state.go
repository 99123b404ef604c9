package db

import "gorm.io/gorm"

// PlantState 以键值形式保存植物记录
// Key 采用唯一索引，同一键只保留一行；Value 为完整的 JSON 文本
type PlantState struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 固定表名
func (PlantState) TableName() string {
	return "plant_states"
}
