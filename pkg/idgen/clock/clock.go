// Package clock 提供core.TimeSource的常用实现
//
// 同一ID空间内的所有生成器必须使用同一纪元的时间源。
package clock

import (
	"sync/atomic"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
)

// System 系统墙钟（Unix纪元毫秒）
// 注意：墙钟可能被NTP回拨，回拨期间生成器会停顿等待
type System struct{}

// Timestamp 实现core.TimeSource接口
// 说明：平台时钟早于Unix纪元属于环境错误，直接panic
func (System) Timestamp() uint64 {
	ms := time.Now().UnixMilli()
	if ms < 0 {
		panic(core.ErrClockBeforeEpoch)
	}
	return uint64(ms)
}

// Monotonic 单调时钟：启动时读一次墙钟作为锚点，之后只累加进程单调时间
// 说明：NTP的回拨不会传递给生成器，代价是与墙钟之间可能逐渐漂移
type Monotonic struct {
	anchorMs uint64
	start    time.Time
}

// NewMonotonic 创建单调时钟
func NewMonotonic() *Monotonic {
	start := time.Now()
	ms := start.UnixMilli()
	if ms < 0 {
		panic(core.ErrClockBeforeEpoch)
	}
	return &Monotonic{anchorMs: uint64(ms), start: start}
}

// Timestamp 实现core.TimeSource接口
func (m *Monotonic) Timestamp() uint64 {
	return m.anchorMs + uint64(time.Since(m.start).Milliseconds())
}

// Offset 自定义纪元：从被包装时间源的读数中减去纪元
// 说明：把纪元移到近期可以延长41位时间戳的可用年限
type Offset struct {
	src     core.TimeSource
	epochMs uint64
}

// NewOffset 创建自定义纪元时间源，epoch须晚于被包装时间源的纪元
func NewOffset(src core.TimeSource, epoch time.Time) *Offset {
	ms := epoch.UnixMilli()
	if ms < 0 {
		ms = 0
	}
	return &Offset{src: src, epochMs: uint64(ms)}
}

// Epoch 自定义纪元
func (o *Offset) Epoch() time.Time {
	return time.UnixMilli(int64(o.epochMs)).UTC()
}

// Timestamp 实现core.TimeSource接口
// 说明：读数早于自定义纪元时panic
func (o *Offset) Timestamp() uint64 {
	now := o.src.Timestamp()
	if now < o.epochMs {
		panic(core.ErrClockBeforeEpoch)
	}
	return now - o.epochMs
}

// Manual 手动时钟（测试与仿真用，并发安全）
type Manual struct {
	now atomic.Uint64
}

// NewManual 创建手动时钟
func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// Timestamp 实现core.TimeSource接口
func (m *Manual) Timestamp() uint64 {
	return m.now.Load()
}

// Set 设置当前读数（允许回拨）
func (m *Manual) Set(ms uint64) {
	m.now.Store(ms)
}

// Advance 前进ms毫秒
func (m *Manual) Advance(ms uint64) uint64 {
	return m.now.Add(ms)
}

var (
	_ core.TimeSource = System{}
	_ core.TimeSource = (*Monotonic)(nil)
	_ core.TimeSource = (*Offset)(nil)
	_ core.TimeSource = (*Manual)(nil)
)
