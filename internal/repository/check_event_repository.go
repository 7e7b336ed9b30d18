// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"symptom-checker-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckEventRepository 定义了审计事件的数据访问接口。
type CheckEventRepository interface {
	Create(ctx context.Context, event *model.CheckEvent) error
}

type checkEventRepository struct {
	db *gorm.DB
}

// NewCheckEventRepository 创建一个新的 CheckEventRepository 实例。
func NewCheckEventRepository(db *gorm.DB) CheckEventRepository {
	return &checkEventRepository{db: db}
}

// Create 插入一条审计事件。主键冲突时忽略，使 Kafka 重复投递保持幂等。
func (r *checkEventRepository) Create(ctx context.Context, event *model.CheckEvent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event).Error
}
