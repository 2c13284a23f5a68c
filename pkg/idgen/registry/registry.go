package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
	"katydid-common-idgen/pkg/logger"
)

const (
	// DefaultGeneratorKey 默认生成器的键
	DefaultGeneratorKey = "default"

	// defaultMaxGenerators 默认最大生成器数量
	// 说明：限制注册表中可存储的生成器数量，防止内存泄漏
	defaultMaxGenerators = 100

	// absoluteMaxGenerators 绝对最大生成器数量（硬性上限）
	// 说明：即使通过SetMaxGenerators也不能超过此限制
	absoluteMaxGenerators = 100_000

	// maxKeyLength 键的最大长度
	maxKeyLength = 256
)

// keyFormatRegex 键的合法字符正则表达式
// 允许字符：字母（a-z, A-Z）、数字（0-9）、下划线(_)、连字符(-)、点(.)
var keyFormatRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// Registry 按键管理一组共享生成器
// 说明：同一注册表里的生成器通常共享一个时间源（同一纪元），
// 各自使用不同的实例标识时才能保证彼此ID不冲突
type Registry struct {
	generators    map[string]snowflake.SharedGenerator // 生成器映射表
	factories     map[core.GeneratorType]IFactory      // 工厂映射表
	maxGenerators int                                  // 最大生成器数量限制
	logger        *zap.Logger
	mu            sync.RWMutex // 读写锁，保护并发访问
}

// Option 注册表选项
type Option func(*Registry)

// WithLogger 指定日志
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New 创建注册表，并为snowflake类型注册基于ts的工厂
func New(ts core.TimeSource, opts ...Option) *Registry {
	r := &Registry{
		generators:    make(map[string]snowflake.SharedGenerator),
		factories:     make(map[core.GeneratorType]IFactory),
		maxGenerators: defaultMaxGenerators,
		logger:        logger.Named("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.factories[core.GeneratorTypeSnowflake] = snowflake.NewFactory(ts, snowflake.WithLogger(r.logger))
	return r
}

var (
	// globalRegistry 全局生成器注册表实例（单例）
	globalRegistry *Registry

	// registryOnce 确保注册表只初始化一次
	registryOnce sync.Once
)

// GetRegistry 获取全局生成器注册表（系统时钟）
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = New(clock.System{})
	})
	return globalRegistry
}

// Create 创建并注册一个新的生成器
func (r *Registry) Create(key string, generatorType core.GeneratorType, config any) (snowflake.SharedGenerator, error) {
	// 步骤1：验证参数
	if err := validateKey(key); err != nil {
		return snowflake.SharedGenerator{}, err
	}

	// 步骤2：加写锁，保护注册表
	r.mu.Lock()
	defer r.mu.Unlock()

	// 步骤3：检查key是否已存在
	if _, exists := r.generators[key]; exists {
		return snowflake.SharedGenerator{}, fmt.Errorf("%w: key '%s'", core.ErrGeneratorAlreadyExists, key)
	}

	return r.createLocked(key, generatorType, config)
}

// GetOrCreate 获取生成器，如果不存在则创建
func (r *Registry) GetOrCreate(key string, generatorType core.GeneratorType, config any) (snowflake.SharedGenerator, error) {
	if err := validateKey(key); err != nil {
		return snowflake.SharedGenerator{}, err
	}

	// 快速路径：读锁命中
	r.mu.RLock()
	generator, exists := r.generators[key]
	r.mu.RUnlock()
	if exists {
		return generator, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 双重检查：等待写锁期间可能已被其他goroutine创建
	if generator, exists := r.generators[key]; exists {
		return generator, nil
	}

	return r.createLocked(key, generatorType, config)
}

// createLocked 创建并注册生成器（调用者须持有写锁）
func (r *Registry) createLocked(key string, generatorType core.GeneratorType, config any) (snowflake.SharedGenerator, error) {
	// 步骤1：检查数量限制
	if len(r.generators) >= r.maxGenerators {
		return snowflake.SharedGenerator{}, fmt.Errorf("%w: current %d, max %d",
			core.ErrMaxGeneratorsReached, len(r.generators), r.maxGenerators)
	}

	// 步骤2：获取工厂
	factory, err := r.factory(generatorType)
	if err != nil {
		return snowflake.SharedGenerator{}, err
	}

	// 步骤3：使用工厂创建生成器
	generator, err := factory.Create(config)
	if err != nil {
		return snowflake.SharedGenerator{}, fmt.Errorf("failed to create generator: %w", err)
	}

	// 步骤4：注册生成器
	r.generators[key] = generator

	r.logger.Info("generator created",
		zap.String("key", key),
		zap.Stringer("type", generatorType),
		zap.Uint64("identifier", generator.Generator().Identifier()))

	return generator, nil
}

// Get 获取已注册的生成器
func (r *Registry) Get(key string) (snowflake.SharedGenerator, error) {
	if err := validateKey(key); err != nil {
		return snowflake.SharedGenerator{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, exists := r.generators[key]
	if !exists {
		return snowflake.SharedGenerator{}, fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}

	return generator, nil
}

// Has 检查生成器是否存在
func (r *Registry) Has(key string) bool {
	if err := validateKey(key); err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.generators[key]
	return exists
}

// Remove 移除生成器
// 注意：已取出的句柄仍可继续使用，只是不再能通过注册表查到
func (r *Registry) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[key]; !exists {
		return fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}

	delete(r.generators, key)

	r.logger.Info("generator removed", zap.String("key", key))

	return nil
}

// Clear 清空所有生成器
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generators = make(map[string]snowflake.SharedGenerator)

	r.logger.Info("registry cleared")
}

// Count 获取生成器数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.generators)
}

// ListKeys 列出所有生成器的键（升序）
func (r *Registry) ListKeys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.generators))
	for key := range r.generators {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// SetMaxGenerators 设置最大生成器数量
func (r *Registry) SetMaxGenerators(max int) error {
	if max <= 0 {
		return fmt.Errorf("max generators must be positive, got %d", max)
	}

	if max > absoluteMaxGenerators {
		return fmt.Errorf("max generators cannot exceed absolute limit %d, got %d",
			absoluteMaxGenerators, max)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.generators) > max {
		return fmt.Errorf("current generator count %d exceeds new max %d",
			len(r.generators), max)
	}

	r.maxGenerators = max

	return nil
}

// GetMaxGenerators 获取最大生成器数量
func (r *Registry) GetMaxGenerators() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxGenerators
}

// validateKey 验证键的有效性
func validateKey(key string) error {
	// 规则1：不能为空
	if len(key) == 0 {
		return fmt.Errorf("%w: key cannot be empty", core.ErrInvalidKey)
	}

	// 规则2：长度限制
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key too long (max %d), got %d",
			core.ErrInvalidKey, maxKeyLength, len(key))
	}

	// 规则3：格式验证（只允许安全字符）
	if !keyFormatRegex.MatchString(key) {
		return fmt.Errorf("%w: key '%s' contains invalid characters",
			core.ErrInvalidKeyFormat, key)
	}

	return nil
}
