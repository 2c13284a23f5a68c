package snowflake

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
)

// Validator Snowflake ID验证器
// 说明：ID须为正数，且时间戳不能超前于时间源太多（容忍服务器之间的时钟偏差）
type Validator struct {
	ts        core.TimeSource
	tolerance uint64 // 允许的未来时间容差（毫秒）
}

// NewValidator 创建验证器，ts须与生成ID的时间源使用同一纪元
func NewValidator(ts core.TimeSource) *Validator {
	return &Validator{ts: ts, tolerance: maxFutureTimeTolerance}
}

// Validate 验证Snowflake ID的有效性
// 实现core.IIDValidator接口
func (v *Validator) Validate(id int64) error {
	// 验证1：ID必须为正整数
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d",
			core.ErrInvalidSnowflakeID, id)
	}

	// 验证2：时间戳不能太超前
	timestamp := ExtractTimestamp(uint64(id))
	now := v.ts.Timestamp()
	if timestamp > now+v.tolerance {
		return fmt.Errorf("%w: timestamp %d is too far in the future (current: %d, max tolerance: %d ms)",
			core.ErrInvalidSnowflakeID, timestamp, now, v.tolerance)
	}

	return nil
}

// ValidateBatch 批量验证ID，遇到第一个错误立即返回
// 实现core.IIDValidator接口
func (v *Validator) ValidateBatch(ids []int64) error {
	for i, id := range ids {
		if err := v.Validate(id); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}
	return nil
}

var _ core.IIDValidator = (*Validator)(nil)
