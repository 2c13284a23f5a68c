package clock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/logger"
)

const (
	defaultRedisTimeout = 50 * time.Millisecond
	defaultRedisBackoff = time.Second
)

// TimeReader 能读取Redis服务器时间的客户端（*redis.Client、*redis.ClusterClient等均满足）
type TimeReader interface {
	Time(ctx context.Context) *redis.TimeCmd
}

// Redis 以Redis服务器的TIME作为时钟，让一组实例共享同一时钟
// 说明：每次读取都有超时；失败时记录告警并退回本地时间源，退避窗口内
// 不再访问Redis。由此产生的回拨由生成器的等待策略吸收
type Redis struct {
	client   TimeReader
	timeout  time.Duration
	backoff  time.Duration
	fallback core.TimeSource
	logger   *zap.Logger

	// retryAt 退避结束时刻（UnixNano），0表示Redis可用
	retryAt atomic.Int64
}

// RedisOption Redis时钟选项
type RedisOption func(*Redis)

// WithTimeout 单次读取超时
func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBackoff 读取失败后直接使用本地时间源的时长
func WithBackoff(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.backoff = d
		}
	}
}

// WithFallback 读取失败时使用的本地时间源
func WithFallback(ts core.TimeSource) RedisOption {
	return func(r *Redis) {
		if ts != nil {
			r.fallback = ts
		}
	}
}

// WithLogger 指定日志
func WithLogger(l *zap.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRedis 创建Redis时钟
func NewRedis(client TimeReader, opts ...RedisOption) *Redis {
	r := &Redis{
		client:   client,
		timeout:  defaultRedisTimeout,
		backoff:  defaultRedisBackoff,
		fallback: System{},
		logger:   logger.Named("clock.redis"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timestamp 实现core.TimeSource接口
func (r *Redis) Timestamp() uint64 {
	if until := r.retryAt.Load(); until != 0 && time.Now().UnixNano() < until {
		return r.fallback.Timestamp()
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	t, err := r.client.Time(ctx).Result()
	if err != nil {
		r.retryAt.Store(time.Now().Add(r.backoff).UnixNano())
		r.logger.Warn("redis TIME failed, using local clock",
			zap.Duration("backoff", r.backoff),
			zap.Error(err))
		return r.fallback.Timestamp()
	}
	r.retryAt.Store(0)

	ms := t.UnixMilli()
	if ms < 0 {
		panic(core.ErrClockBeforeEpoch)
	}
	return uint64(ms)
}

var _ core.TimeSource = (*Redis)(nil)
