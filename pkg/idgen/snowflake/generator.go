package snowflake

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/logger"
)

// Generator Snowflake算法的无锁ID生成器
// 说明：所有可变状态压缩在一个64位原子字里，热路径只有Load与CompareAndSwap
type Generator struct {
	// ========== 核心状态 ==========
	// state 高48位为最近提交的时间戳，低16位为当前序列号（有效范围0-4095）
	state atomic.Uint64

	// identifier 截断到10位的实例标识（生命周期内不变）
	identifier uint64

	// ========== 监控和工具 ==========
	metrics *Metrics    // 性能监控指标（可选，nil时不收集）
	logger  *zap.Logger // 日志
}

// Option 生成器选项
type Option func(*Generator)

// WithLogger 指定日志
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics 启用性能监控
func WithMetrics() Option {
	return func(g *Generator) {
		g.metrics = NewMetrics()
	}
}

// New 使用给定实例标识创建生成器
// 说明：identifier只保留低10位，超出部分静默截断（例如2000得到976）
func New(identifier uint64, opts ...Option) *Generator {
	g := &Generator{
		identifier: identifier & MaxIdentifier,
		logger:     logger.Named("snowflake"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewRandom 使用进程级随机实例标识创建生成器
func NewRandom(opts ...Option) *Generator {
	return New(RandomIdentifier(), opts...)
}

// NewWithConfig 使用配置创建生成器
func NewWithConfig(config *Config, opts ...Option) (*Generator, error) {
	if config == nil {
		return nil, core.ErrNilConfig
	}

	// 步骤1：验证配置并使用副本（不可变性原则）
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cfg := config.Clone()
	cfg.SetDefaults()

	// 步骤2：求出实例标识
	identifier, err := ResolveIdentifier(cfg)
	if err != nil {
		return nil, err
	}

	// 步骤3：创建生成器实例
	if cfg.EnableMetrics {
		opts = append(opts, WithMetrics())
	}
	g := New(identifier, opts...)

	g.logger.Info("snowflake generator created",
		zap.String("identifier_source", cfg.IdentifierSource.String()),
		zap.Uint64("identifier", g.identifier),
		zap.Bool("metrics_enabled", cfg.EnableMetrics))

	return g, nil
}

// Identifier 获取截断后的实例标识
func (g *Generator) Identifier() uint64 {
	return g.identifier
}

// outcome 单次尝试的结果
type outcome int

const (
	assigned  outcome = iota // 已分配
	contended                // CAS失败，立即重试
	mustWait                 // 序列号耗尽或时钟回拨，等待后重试
)

// attempt 基于一次时钟读数做一次分配尝试
// 协作式与阻塞式入口共享此决策，两者只在等待方式上不同
func (g *Generator) attempt(now uint64) (ID, outcome) {
	cur := g.state.Load()
	curTS := cur >> stateTimestampShift
	curSeq := cur & stateSequenceMask

	switch {
	case curTS < now:
		// 新的毫秒，序列号从0开始
		if !g.state.CompareAndSwap(cur, now<<stateTimestampShift) {
			return 0, contended
		}
		return g.compose(now, 0), assigned

	case curTS == now:
		if curSeq >= MaxSequence {
			if g.metrics != nil {
				g.metrics.SequenceExhausted.Add(1)
			}
			g.logger.Debug("sequence exhausted, waiting for next millisecond",
				zap.Uint64("timestamp", now))
			return 0, mustWait
		}
		next := curSeq + 1
		if !g.state.CompareAndSwap(cur, now<<stateTimestampShift|next) {
			return 0, contended
		}
		return g.compose(now, next), assigned

	default:
		// 时钟回拨：不写状态，等时钟追上
		if g.metrics != nil {
			g.metrics.ClockBackward.Add(1)
		}
		g.logger.Debug("clock moved backwards, waiting",
			zap.Uint64("last_timestamp", curTS),
			zap.Uint64("now", now))
		return 0, mustWait
	}
}

// compose 组装ID并计数
func (g *Generator) compose(timestamp, sequence uint64) ID {
	if g.metrics != nil {
		g.metrics.IDCount.Add(1)
	}
	return ID(Pack(0, timestamp, g.identifier, sequence))
}

// Assign 协作式分配一个ID
// 说明：需要等待时挂起当前goroutine（timer+select），不占用线程
// 返回的错误只可能是ctx.Err()，此时生成器状态未被修改
func (g *Generator) Assign(ctx context.Context, ts core.TimeSource) (ID, error) {
	for {
		id, res := g.attempt(ts.Timestamp())
		switch res {
		case assigned:
			return id, nil
		case contended:
			g.recordRetry()
		case mustWait:
			if err := g.waitContext(ctx); err != nil {
				return 0, err
			}
		}
	}
}

// AssignSync 阻塞式分配一个ID
// 说明：需要等待时阻塞当前goroutine 1ms，总会成功
func (g *Generator) AssignSync(ts core.TimeSource) ID {
	for {
		id, res := g.attempt(ts.Timestamp())
		switch res {
		case assigned:
			return id
		case contended:
			g.recordRetry()
		case mustWait:
			start := time.Now()
			time.Sleep(waitDuration)
			g.metrics.recordWait(start)
		}
	}
}

// AssignBatch 批量分配n个严格递增的ID
// 说明：n的范围为[1, 100000]；ctx结束时返回错误，已分配的ID丢弃
func (g *Generator) AssignBatch(ctx context.Context, ts core.TimeSource, n int) (IDSlice, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d",
			core.ErrInvalidBatchSize, n)
	}
	if n > maxBatchSize {
		return nil, fmt.Errorf("%w: batch size too large (max %d), got %d",
			core.ErrInvalidBatchSize, maxBatchSize, n)
	}

	ids := make(IDSlice, 0, n)
	for len(ids) < n {
		id, err := g.Assign(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("assign batch (generated %d/%d): %w", len(ids), n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// waitContext 等待1ms或ctx结束
func (g *Generator) waitContext(ctx context.Context) error {
	start := time.Now()
	timer := time.NewTimer(waitDuration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		g.metrics.recordWait(start)
		return nil
	}
}

func (g *Generator) recordRetry() {
	if g.metrics != nil {
		g.metrics.CASRetries.Add(1)
	}
}

// GetMetrics 获取性能监控指标
// 实现core.IMonitorable接口
func (g *Generator) GetMetrics() map[string]uint64 {
	return g.metrics.ToMap()
}

// ResetMetrics 重置性能监控指标
// 实现core.IMonitorable接口
func (g *Generator) ResetMetrics() {
	g.metrics.Reset()
}

// GetIDCount 获取已分配的ID总数
// 实现core.IMonitorable接口
func (g *Generator) GetIDCount() uint64 {
	if g.metrics == nil {
		return 0
	}
	return g.metrics.IDCount.Load()
}

var _ core.IMonitorable = (*Generator)(nil)
