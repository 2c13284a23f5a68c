package core

// GeneratorType 生成器类型枚举
type GeneratorType string

const (
	// GeneratorTypeSnowflake Snowflake算法生成器
	GeneratorTypeSnowflake GeneratorType = "snowflake"
)

// String 实现Stringer接口
func (t GeneratorType) String() string {
	return string(t)
}

// IsValid 验证生成器类型是否有效
func (t GeneratorType) IsValid() bool {
	switch t {
	case GeneratorTypeSnowflake:
		return true
	default:
		return false
	}
}

// IdentifierSource 实例标识来源
type IdentifierSource string

const (
	// IdentifierStatic 使用配置中显式给出的标识
	IdentifierStatic IdentifierSource = "static"
	// IdentifierRandom 使用进程级随机数（默认）
	IdentifierRandom IdentifierSource = "random"
	// IdentifierHostname 由主机名哈希推导
	IdentifierHostname IdentifierSource = "hostname"
)

// String 实现Stringer接口
func (s IdentifierSource) String() string {
	return string(s)
}

// IsValid 验证标识来源是否有效
func (s IdentifierSource) IsValid() bool {
	switch s {
	case IdentifierStatic, IdentifierRandom, IdentifierHostname:
		return true
	default:
		return false
	}
}
