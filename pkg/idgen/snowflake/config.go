package snowflake

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
)

// ============================================================================
// Snowflake 配置定义
// ============================================================================

// Config Snowflake生成器配置
type Config struct {
	// Identifier 实例标识
	// 范围：任意值，生成器只保留低10位（0-1023），超出部分静默截断
	// 用途：区分并发运行的生成器实例，仅在IdentifierSource为static时使用
	Identifier uint64

	// IdentifierSource 实例标识来源
	// 可选值：
	//   - static: 使用Identifier字段（零值时的默认）
	//   - random: 进程级随机数
	//   - hostname: 由主机名哈希推导
	IdentifierSource core.IdentifierSource

	// EnableMetrics 是否启用性能监控
	// 默认值：false
	EnableMetrics bool
}

// DefaultConfig 默认配置：随机实例标识、关闭监控
func DefaultConfig() *Config {
	return &Config{
		IdentifierSource: core.IdentifierRandom,
	}
}

// Validate 验证配置的有效性
// 注意：不限制Identifier的大小，超宽值由生成器截断
func (c *Config) Validate() error {
	if c.IdentifierSource != "" && !c.IdentifierSource.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidIdentifierSource, c.IdentifierSource)
	}
	return nil
}

// SetDefaults 设置配置的默认值
func (c *Config) SetDefaults() {
	if c.IdentifierSource == "" {
		c.IdentifierSource = core.IdentifierStatic
	}
}

// Clone 克隆配置对象
func (c *Config) Clone() *Config {
	return &Config{
		Identifier:       c.Identifier,
		IdentifierSource: c.IdentifierSource,
		EnableMetrics:    c.EnableMetrics,
	}
}
