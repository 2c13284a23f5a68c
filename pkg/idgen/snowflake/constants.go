package snowflake

import "time"

const (
	// 位数分配（最高位为符号位，恒为0）
	TimestampBits  = 41 // 时间戳位数
	IdentifierBits = 10 // 实例标识位数
	SequenceBits   = 12 // 序列号位数

	// 最大值计算(切记不是个数)
	MaxTimestamp  = -1 ^ (-1 << TimestampBits)  // 2^41 - 1
	MaxIdentifier = -1 ^ (-1 << IdentifierBits) // 1023 (2^10 - 1) [0, 1023]
	MaxSequence   = -1 ^ (-1 << SequenceBits)   // 4095 (2^12 - 1) [0, 4095]

	// 位移量
	SequenceShift   = 0                             // 0
	IdentifierShift = SequenceBits                  // 12
	TimestampShift  = SequenceBits + IdentifierBits // 22

	// 生成器状态字：高48位为时间戳，低16位为序列号
	stateTimestampShift = 16
	stateSequenceMask   = 0xFFFF

	// 序列号耗尽或时钟回拨时的等待时长
	waitDuration = time.Millisecond

	// 批量生成最大数量（支持跨毫秒生成）
	maxBatchSize = 100_000

	// 允许的未来时间容差（毫秒）
	maxFutureTimeTolerance = 60 * 1000 // 1分钟
)
