package core

import (
	"context"
	"time"
)

// TimeSource 时间源接口
// 说明：返回自固定纪元（通常为Unix纪元）以来的毫秒数
// 注意：同一ID空间内的所有生成器必须共享同一个纪元，否则跨生成器的单调性不成立
type TimeSource interface {
	// Timestamp 获取当前纪元毫秒数（无错误返回，实现方须保证成功或直接panic）
	Timestamp() uint64
}

// TimeSourceFunc 函数适配器，便于把普通函数当作TimeSource使用
type TimeSourceFunc func() uint64

// Timestamp 实现TimeSource接口
func (f TimeSourceFunc) Timestamp() uint64 {
	return f()
}

// IAssigner 协作式分配接口（等待期间让出goroutine，可通过ctx放弃）
type IAssigner[T any] interface {
	// Assign 分配一个ID，仅在ctx结束时返回错误
	Assign(ctx context.Context) (T, error)
}

// ISyncAssigner 阻塞式分配接口（等待期间阻塞当前goroutine）
type ISyncAssigner[T any] interface {
	// AssignSync 分配一个ID，总会成功
	AssignSync() T
}

// IBatchAssigner 批量分配接口（S为ID切片类型）
type IBatchAssigner[S any] interface {
	// AssignBatch 批量分配n个严格递增的ID
	AssignBatch(ctx context.Context, n int) (S, error)
}

// IMonitorable 可监控接口
type IMonitorable interface {
	// GetMetrics 获取性能监控指标
	GetMetrics() map[string]uint64

	// ResetMetrics 重置性能监控指标
	ResetMetrics()

	// GetIDCount 获取已分配的ID总数
	GetIDCount() uint64
}

// IDInfo ID解析结果
type IDInfo struct {
	ID         int64     `json:"id,string"`  // 原始ID值
	Timestamp  uint64    `json:"timestamp"`  // 时间戳字段（41位，纪元毫秒截断值）
	Time       time.Time `json:"time"`       // 按解析器纪元换算的时间
	Identifier uint64    `json:"identifier"` // 实例标识（0-1023）
	Sequence   uint64    `json:"sequence"`   // 序列号（0-4095，同一毫秒内的序号）
}

// IIDParser ID解析器接口
type IIDParser interface {
	// Parse 解析ID，提取完整的元信息
	Parse(id int64) (*IDInfo, error)

	// ExtractTimestamp 提取时间戳字段
	ExtractTimestamp(id int64) uint64

	// ExtractIdentifier 提取实例标识
	ExtractIdentifier(id int64) uint64

	// ExtractSequence 提取序列号
	ExtractSequence(id int64) uint64
}

// IIDValidator ID验证器接口
type IIDValidator interface {
	// Validate 验证ID的有效性
	Validate(id int64) error

	// ValidateBatch 批量验证ID
	ValidateBatch(ids []int64) error
}
