package core

import "errors"

var (
	// ErrClockBeforeEpoch 平台时钟早于纪元（环境错误，时间源直接panic）
	ErrClockBeforeEpoch = errors.New("clock reports a time before the epoch")

	// ErrInvalidSnowflakeID 无效的Snowflake ID
	ErrInvalidSnowflakeID = errors.New("invalid snowflake id")

	// ErrInvalidIDString 字符串无法解析为ID
	ErrInvalidIDString = errors.New("invalid id string")

	// ErrInvalidBatchSize 批量分配数量无效
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidIdentifierSource 未知的实例标识来源
	ErrInvalidIdentifierSource = errors.New("invalid identifier source")

	// ErrNilConfig 配置为nil
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrInvalidConfigType 配置类型与生成器类型不匹配
	ErrInvalidConfigType = errors.New("invalid config type")

	// ErrNilGenerator 生成器为nil
	ErrNilGenerator = errors.New("generator cannot be nil")

	// ErrNilTimeSource 时间源为nil
	ErrNilTimeSource = errors.New("time source cannot be nil")

	// ErrGeneratorNotFound 生成器未找到
	ErrGeneratorNotFound = errors.New("generator not found")

	// ErrGeneratorAlreadyExists 生成器已存在
	ErrGeneratorAlreadyExists = errors.New("generator already exists")

	// ErrInvalidGeneratorType 无效的生成器类型
	ErrInvalidGeneratorType = errors.New("invalid generator type")

	// ErrInvalidKey 无效的键
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidKeyFormat 键格式无效
	ErrInvalidKeyFormat = errors.New("invalid key format")

	// ErrMaxGeneratorsReached 达到最大生成器数量
	ErrMaxGeneratorsReached = errors.New("maximum number of generators reached")
)
