package snowflake

import (
	"context"

	"katydid-common-idgen/pkg/idgen/core"
)

// SharedGenerator 绑定了时间源的生成器句柄
// 说明：值类型，复制成本只是两个指针；所有副本共享同一个生成器状态，
// 可以放心地按值传给任意多个goroutine
type SharedGenerator struct {
	gen *Generator
	ts  core.TimeSource
}

// NewShared 用生成器和时间源创建共享句柄
func NewShared(gen *Generator, ts core.TimeSource) (SharedGenerator, error) {
	if gen == nil {
		return SharedGenerator{}, core.ErrNilGenerator
	}
	if ts == nil {
		return SharedGenerator{}, core.ErrNilTimeSource
	}
	return SharedGenerator{gen: gen, ts: ts}, nil
}

// Assign 协作式分配一个ID
func (s SharedGenerator) Assign(ctx context.Context) (ID, error) {
	return s.gen.Assign(ctx, s.ts)
}

// AssignSync 阻塞式分配一个ID
func (s SharedGenerator) AssignSync() ID {
	return s.gen.AssignSync(s.ts)
}

// AssignBatch 批量分配n个严格递增的ID
func (s SharedGenerator) AssignBatch(ctx context.Context, n int) (IDSlice, error) {
	return s.gen.AssignBatch(ctx, s.ts, n)
}

// Clone 复制句柄（与直接按值复制等价）
func (s SharedGenerator) Clone() SharedGenerator {
	return s
}

// Generator 底层生成器
func (s SharedGenerator) Generator() *Generator {
	return s.gen
}

// TimeSource 绑定的时间源
func (s SharedGenerator) TimeSource() core.TimeSource {
	return s.ts
}

// IsZero 是否为未初始化的句柄
func (s SharedGenerator) IsZero() bool {
	return s.gen == nil
}

var (
	_ core.IAssigner[ID]           = SharedGenerator{}
	_ core.ISyncAssigner[ID]       = SharedGenerator{}
	_ core.IBatchAssigner[IDSlice] = SharedGenerator{}
)
