// Package store 持久化命名生成器的定义（键、实例标识来源等），
// 服务重启后据此重建注册表。不保存生成器状态，也不记录已分配的ID。
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/gormid"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// ErrNotFound 定义不存在
var ErrNotFound = errors.New("generator definition not found")

// Definition 命名生成器定义，主键由gormid插件分配
type Definition struct {
	ID               snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Key              string       `gorm:"column:gen_key;size:256;uniqueIndex;not null" json:"key"`
	Identifier       uint64       `json:"identifier"`
	IdentifierSource string       `gorm:"size:16" json:"identifier_source"`
	EnableMetrics    bool         `json:"enable_metrics"`
	CreatedAt        time.Time    `json:"created_at"`
}

// TableName 表名
func (Definition) TableName() string {
	return "idgen_generators"
}

// Config 转换为生成器配置
func (d *Definition) Config() *snowflake.Config {
	return &snowflake.Config{
		Identifier:       d.Identifier,
		IdentifierSource: core.IdentifierSource(d.IdentifierSource),
		EnableMetrics:    d.EnableMetrics,
	}
}

// Store 生成器定义仓库
type Store struct {
	db *gorm.DB
}

// New 注册主键插件并迁移表结构
func New(db *gorm.DB, ids snowflake.SharedGenerator) (*Store, error) {
	if err := db.Use(gormid.New(ids)); err != nil {
		return nil, fmt.Errorf("register id plugin: %w", err)
	}
	if err := db.AutoMigrate(&Definition{}); err != nil {
		return nil, fmt.Errorf("migrate generator definitions: %w", err)
	}
	return &Store{db: db}, nil
}

// List 按键升序列出全部定义
func (s *Store) List(ctx context.Context) ([]Definition, error) {
	var defs []Definition
	if err := s.db.WithContext(ctx).Order("gen_key").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("list generator definitions: %w", err)
	}
	return defs, nil
}

// Create 保存定义（ID由插件填充）
func (s *Store) Create(ctx context.Context, def *Definition) error {
	if err := s.db.WithContext(ctx).Create(def).Error; err != nil {
		return fmt.Errorf("create generator definition %q: %w", def.Key, err)
	}
	return nil
}

// Delete 按键删除定义
func (s *Store) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("gen_key = ?", key).Delete(&Definition{})
	if res.Error != nil {
		return fmt.Errorf("delete generator definition %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}
