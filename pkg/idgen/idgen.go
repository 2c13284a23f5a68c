// Package idgen 进程级默认Snowflake生成器的便捷入口
//
// 默认生成器使用系统时钟和进程级随机实例标识。多实例部署时应在启动阶段
// 调用Init指定实例标识，避免随机标识碰撞。
package idgen

import (
	"context"
	"errors"
	"sync"

	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// ID Snowflake标识值
type ID = snowflake.ID

// ErrAlreadyInitialized 默认生成器已经初始化（显式Init或首次使用时隐式初始化）
var ErrAlreadyInitialized = errors.New("default generator already initialized")

var (
	defaultGenerator snowflake.SharedGenerator
	defaultOnce      sync.Once
)

// Init 用指定实例标识和时间源初始化默认生成器
// 说明：只能在首次使用默认生成器之前调用一次
func Init(identifier uint64, ts core.TimeSource, opts ...snowflake.Option) error {
	if ts == nil {
		return core.ErrNilTimeSource
	}

	err := ErrAlreadyInitialized
	defaultOnce.Do(func() {
		defaultGenerator, err = snowflake.NewShared(snowflake.New(identifier, opts...), ts)
	})
	return err
}

// Default 获取默认生成器，未初始化时使用随机实例标识和系统时钟
func Default() snowflake.SharedGenerator {
	defaultOnce.Do(func() {
		defaultGenerator, _ = snowflake.NewShared(snowflake.NewRandom(), clock.System{})
	})
	return defaultGenerator
}

// NextID 使用默认生成器协作式分配一个ID
func NextID(ctx context.Context) (ID, error) {
	return Default().Assign(ctx)
}

// MustNextID 使用默认生成器阻塞式分配一个ID
func MustNextID() ID {
	return Default().AssignSync()
}

// NextIDs 使用默认生成器批量分配n个严格递增的ID
func NextIDs(ctx context.Context, n int) (snowflake.IDSlice, error) {
	return Default().AssignBatch(ctx, n)
}

// Parse 解析字符串形式的ID（Unix纪元）
func Parse(s string) (*core.IDInfo, error) {
	id, err := snowflake.ParseID(s)
	if err != nil {
		return nil, err
	}
	return snowflake.DefaultParser().Parse(id.Int64())
}
