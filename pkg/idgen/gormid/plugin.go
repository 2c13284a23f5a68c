// Package gormid gorm插件：创建记录时为零值主键分配Snowflake ID
//
// 主键字段类型可以是snowflake.ID、int64或uint64，建议加上
// `gorm:"primaryKey;autoIncrement:false"`，避免数据库自增覆盖。
package gormid

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"katydid-common-idgen/pkg/idgen/snowflake"
)

const (
	pluginName   = "idgen:snowflake"
	callbackName = "idgen:assign_id"
)

// Plugin 实现gorm.Plugin
type Plugin struct {
	gen snowflake.SharedGenerator
}

// New 创建插件，所有记录共享同一个生成器
func New(gen snowflake.SharedGenerator) *Plugin {
	return &Plugin{gen: gen}
}

// Name 实现gorm.Plugin
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize 实现gorm.Plugin，在gorm:create之前注册回调
func (p *Plugin) Initialize(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register(callbackName, p.assignID)
}

func (p *Plugin) assignID(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.PrioritizedPrimaryField
	if field == nil || !supported(field) {
		return
	}

	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			p.fill(db, field, reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		p.fill(db, field, rv)
	}
}

// fill 为单条记录的零值主键分配ID
func (p *Plugin) fill(db *gorm.DB, field *schema.Field, rv reflect.Value) {
	ctx := db.Statement.Context
	if _, isZero := field.ValueOf(ctx, rv); !isZero {
		return
	}

	id, err := p.gen.Assign(ctx)
	if err != nil {
		_ = db.AddError(err)
		return
	}

	if err := field.Set(ctx, rv, valueFor(field, id)); err != nil {
		_ = db.AddError(err)
	}
}

// valueFor 按主键的基础类型给出写入值（*uint64等指针类型同样适用）
func valueFor(field *schema.Field, id snowflake.ID) interface{} {
	if baseKind(field) == reflect.Uint64 {
		return id.Uint64()
	}
	return id.Int64()
}

// supported 主键是否为64位整数（包括snowflake.ID）
func supported(field *schema.Field) bool {
	k := baseKind(field)
	return k == reflect.Int64 || k == reflect.Uint64
}

// baseKind 去掉指针后的字段类型
func baseKind(field *schema.Field) reflect.Kind {
	t := field.FieldType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind()
}

var _ gorm.Plugin = (*Plugin)(nil)
