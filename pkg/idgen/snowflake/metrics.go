package snowflake

import (
	"sync/atomic"
	"time"
)

// Metrics 性能监控指标（单一职责：只负责监控数据）
type Metrics struct {
	IDCount           atomic.Uint64 // 已分配ID总数
	SequenceExhausted atomic.Uint64 // 序列号耗尽次数
	ClockBackward     atomic.Uint64 // 观察到时钟回拨的次数
	WaitCount         atomic.Uint64 // 等待次数（耗尽与回拨之和）
	TotalWaitTimeNs   atomic.Uint64 // 总等待时间（纳秒）
	CASRetries        atomic.Uint64 // CAS竞争失败后的重试次数
}

// NewMetrics 创建新的监控指标实例
func NewMetrics() *Metrics {
	return &Metrics{}
}

// recordWait 记录一次等待
func (m *Metrics) recordWait(start time.Time) {
	if m == nil {
		return
	}
	m.WaitCount.Add(1)
	m.TotalWaitTimeNs.Add(uint64(time.Since(start).Nanoseconds()))
}

// Reset 重置所有监控指标
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.IDCount.Store(0)
	m.SequenceExhausted.Store(0)
	m.ClockBackward.Store(0)
	m.WaitCount.Store(0)
	m.TotalWaitTimeNs.Store(0)
	m.CASRetries.Store(0)
}

// Snapshot 获取当前指标的快照（不可变性：返回副本）
func (m *Metrics) Snapshot() *Metrics {
	snapshot := NewMetrics()
	if m == nil {
		return snapshot
	}
	snapshot.IDCount.Store(m.IDCount.Load())
	snapshot.SequenceExhausted.Store(m.SequenceExhausted.Load())
	snapshot.ClockBackward.Store(m.ClockBackward.Load())
	snapshot.WaitCount.Store(m.WaitCount.Load())
	snapshot.TotalWaitTimeNs.Store(m.TotalWaitTimeNs.Load())
	snapshot.CASRetries.Store(m.CASRetries.Load())
	return snapshot
}

// ToMap 转换为map格式（便于序列化和展示）
func (m *Metrics) ToMap() map[string]uint64 {
	if m == nil {
		return map[string]uint64{
			"metrics_enabled": 0,
		}
	}

	waitCount := m.WaitCount.Load()
	var avgWaitTime uint64
	if waitCount > 0 {
		avgWaitTime = m.TotalWaitTimeNs.Load() / waitCount
	}

	return map[string]uint64{
		"metrics_enabled":    1,
		"id_count":           m.IDCount.Load(),
		"sequence_exhausted": m.SequenceExhausted.Load(),
		"clock_backward":     m.ClockBackward.Load(),
		"wait_count":         waitCount,
		"avg_wait_time_ns":   avgWaitTime,
		"cas_retries":        m.CASRetries.Load(),
	}
}
