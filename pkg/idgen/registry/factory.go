package registry

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// IFactory 生成器工厂接口
// 说明：config的具体类型由工厂自行断言（例如*snowflake.Config）
type IFactory interface {
	Create(config any) (snowflake.SharedGenerator, error)
}

var _ IFactory = (*snowflake.Factory)(nil)

// RegisterFactory 注册（或覆盖）某种生成器类型的工厂
func (r *Registry) RegisterFactory(generatorType core.GeneratorType, factory IFactory) error {
	if !generatorType.IsValid() {
		return fmt.Errorf("%w: %s", core.ErrInvalidGeneratorType, generatorType)
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[generatorType] = factory

	return nil
}

// factory 获取工厂（调用者须持有锁）
func (r *Registry) factory(generatorType core.GeneratorType) (IFactory, error) {
	if !generatorType.IsValid() {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidGeneratorType, generatorType)
	}
	f, exists := r.factories[generatorType]
	if !exists {
		return nil, fmt.Errorf("%w: no factory for %s", core.ErrInvalidGeneratorType, generatorType)
	}
	return f, nil
}
