package snowflake

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
)

// Factory Snowflake生成器工厂
// 说明：同一工厂创建的生成器共享一个时间源（从而共享纪元）
type Factory struct {
	ts   core.TimeSource
	opts []Option
}

// NewFactory 创建Snowflake工厂实例
func NewFactory(ts core.TimeSource, opts ...Option) *Factory {
	return &Factory{ts: ts, opts: opts}
}

// Create 创建绑定了工厂时间源的共享生成器
// 说明：config须为*Config，nil时使用DefaultConfig()
func (f *Factory) Create(config any) (SharedGenerator, error) {
	if f.ts == nil {
		return SharedGenerator{}, core.ErrNilTimeSource
	}

	var cfg *Config
	switch c := config.(type) {
	case nil:
		cfg = DefaultConfig()
	case *Config:
		cfg = c
	default:
		return SharedGenerator{}, fmt.Errorf("%w: expected *snowflake.Config, got %T",
			core.ErrInvalidConfigType, config)
	}

	gen, err := NewWithConfig(cfg, f.opts...)
	if err != nil {
		return SharedGenerator{}, err
	}
	return NewShared(gen, f.ts)
}
