package snowflake

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
)

const (
	// maxParseLength 解析字符串的最大长度（0b前缀+63位二进制足够）
	maxParseLength = 100
)

// ID Snowflake标识值
// 布局（高位到低位）：符号位(恒0) | 时间戳(41位) | 实例标识(10位) | 序列号(12位)
// 说明：不可变值类型，相等、排序、哈希均与底层int64一致
type ID int64

// ParseID 从字符串解析ID
// 说明：支持十进制、十六进制(0x)、二进制(0b)，拒绝负数
func ParseID(s string) (ID, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("%w: empty string", core.ErrInvalidIDString)
	}
	if len(s) > maxParseLength {
		return 0, fmt.Errorf("%w: too long, max %d characters, got %d",
			core.ErrInvalidIDString, maxParseLength, len(s))
	}

	var (
		val int64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		val, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		val, err = strconv.ParseInt(s[2:], 2, 64)
	default:
		val, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidIDString, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%w: must be non-negative, got %d", core.ErrInvalidIDString, val)
	}
	return ID(val), nil
}

// Int64 转换为int64类型
func (id ID) Int64() int64 {
	return int64(id)
}

// Uint64 转换为uint64类型
func (id ID) Uint64() uint64 {
	return uint64(id)
}

// String 转换为十进制字符串
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Hex 转换为带0x前缀的十六进制字符串
func (id ID) Hex() string {
	return fmt.Sprintf("0x%x", int64(id))
}

// Binary 转换为带0b前缀的二进制字符串
func (id ID) Binary() string {
	return fmt.Sprintf("0b%b", int64(id))
}

// Timestamp 提取时间戳字段（纪元毫秒的低41位）
func (id ID) Timestamp() uint64 {
	return ExtractTimestamp(uint64(id))
}

// Identifier 提取实例标识字段
func (id ID) Identifier() uint64 {
	return ExtractIdentifier(uint64(id))
}

// Sequence 提取序列号字段
func (id ID) Sequence() uint64 {
	return ExtractSequence(uint64(id))
}

// Time 按给定纪元把时间戳字段换算为time.Time
// 说明：epoch必须与生成该ID时时间源的纪元一致，Unix纪元传time.UnixMilli(0)
func (id ID) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(id.Timestamp()) * time.Millisecond)
}

// IsZero 检查ID是否为零值
func (id ID) IsZero() bool {
	return id == 0
}

// MarshalJSON 序列化为十进制字符串，避免JavaScript精度丢失
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON 支持从字符串或数字反序列化
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || len(data) > maxParseLength {
		return fmt.Errorf("%w: bad JSON length %d", core.ErrInvalidIDString, len(data))
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseID(str)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var num int64
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("%w: expected string or number, got %s", core.ErrInvalidIDString, string(data))
	}
	if num < 0 {
		return fmt.Errorf("%w: must be non-negative, got %d", core.ErrInvalidIDString, num)
	}
	*id = ID(num)
	return nil
}

// MarshalText 实现encoding.TextMarshaler（用于map键、YAML等）
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value 实现driver.Valuer接口，以BIGINT写入数据库
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Scan 实现sql.Scanner接口
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		*id = ID(v)
	case int:
		*id = ID(v)
	case uint64:
		*id = ID(v)
	case []byte:
		parsed, err := ParseID(string(v))
		if err != nil {
			return err
		}
		*id = parsed
	case string:
		parsed, err := ParseID(v)
		if err != nil {
			return err
		}
		*id = parsed
	default:
		return fmt.Errorf("cannot scan %T into ID", value)
	}
	return nil
}
