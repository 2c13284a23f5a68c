package snowflake

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"

	"golang.org/x/crypto/blake2b"

	"katydid-common-idgen/pkg/idgen/core"
)

// hostname 可在测试中替换
var hostname = os.Hostname

// RandomIdentifier 进程级随机实例标识（完整64位，使用时截断为10位）
func RandomIdentifier() uint64 {
	return rand.Uint64()
}

// HostnameIdentifier 由主机名的blake2b-256摘要前8字节推导实例标识
// 说明：同一主机名总是得到相同的值，适合每台主机只运行一个实例的部署
func HostnameIdentifier() (uint64, error) {
	name, err := hostname()
	if err != nil {
		return 0, fmt.Errorf("read hostname: %w", err)
	}
	sum := blake2b.Sum256([]byte(name))
	return binary.BigEndian.Uint64(sum[:8]), nil
}

// ResolveIdentifier 按配置的来源求出实例标识
func ResolveIdentifier(c *Config) (uint64, error) {
	switch c.IdentifierSource {
	case core.IdentifierStatic, "":
		return c.Identifier, nil
	case core.IdentifierRandom:
		return RandomIdentifier(), nil
	case core.IdentifierHostname:
		return HostnameIdentifier()
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidIdentifierSource, c.IdentifierSource)
	}
}
