package snowflake

import (
	"fmt"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
)

// UnixEpoch Unix纪元（默认时间源的纪元）
var UnixEpoch = time.UnixMilli(0).UTC()

// Parser Snowflake ID解析器
// 说明：时间戳字段是相对纪元的毫秒数，换算成时间需要知道生成时使用的纪元
type Parser struct {
	epoch time.Time
}

// NewParser 创建解析器，epoch须与生成ID的时间源一致
func NewParser(epoch time.Time) *Parser {
	return &Parser{epoch: epoch}
}

// DefaultParser 使用Unix纪元的解析器
func DefaultParser() *Parser {
	return NewParser(UnixEpoch)
}

// Epoch 解析器使用的纪元
func (p *Parser) Epoch() time.Time {
	return p.epoch
}

// Parse 解析Snowflake ID，提取完整的元信息
// 实现core.IIDParser接口
func (p *Parser) Parse(id int64) (*core.IDInfo, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", core.ErrInvalidSnowflakeID, id)
	}

	sid := ID(id)
	return &core.IDInfo{
		ID:         id,
		Timestamp:  sid.Timestamp(),
		Time:       sid.Time(p.epoch),
		Identifier: sid.Identifier(),
		Sequence:   sid.Sequence(),
	}, nil
}

// ExtractTimestamp 提取时间戳字段
// 实现core.IIDParser接口
func (p *Parser) ExtractTimestamp(id int64) uint64 {
	return ExtractTimestamp(uint64(id))
}

// ExtractIdentifier 提取实例标识
// 实现core.IIDParser接口
func (p *Parser) ExtractIdentifier(id int64) uint64 {
	return ExtractIdentifier(uint64(id))
}

// ExtractSequence 提取序列号
// 实现core.IIDParser接口
func (p *Parser) ExtractSequence(id int64) uint64 {
	return ExtractSequence(uint64(id))
}

// ExtractTime 提取时间戳并按纪元换算为time.Time，无效ID返回零值
func (p *Parser) ExtractTime(id int64) time.Time {
	if id <= 0 {
		return time.Time{}
	}
	return ID(id).Time(p.epoch)
}

var _ core.IIDParser = (*Parser)(nil)
