package snowflake

// 位段操作：每个字段先按位宽截断，再清空目标位段后写入
// 截断是静默的，超出位宽的高位直接丢弃

const (
	timestampMask  uint64 = MaxTimestamp << TimestampShift
	identifierMask uint64 = MaxIdentifier << IdentifierShift
	sequenceMask   uint64 = MaxSequence << SequenceShift
)

// fillTimestamp 写入时间戳字段（bits 62-22）
func fillTimestamp(word, timestamp uint64) uint64 {
	return (word &^ timestampMask) | ((timestamp & MaxTimestamp) << TimestampShift)
}

// fillIdentifier 写入实例标识字段（bits 21-12）
func fillIdentifier(word, identifier uint64) uint64 {
	return (word &^ identifierMask) | ((identifier & MaxIdentifier) << IdentifierShift)
}

// fillSequence 写入序列号字段（bits 11-0）
func fillSequence(word, sequence uint64) uint64 {
	return (word &^ sequenceMask) | ((sequence & MaxSequence) << SequenceShift)
}

// Pack 按 时间戳 -> 实例标识 -> 序列号 的顺序组装ID
// 说明：dest中不属于三个字段的位（即符号位）保持原样
func Pack(dest, timestamp, identifier, sequence uint64) uint64 {
	dest = fillTimestamp(dest, timestamp)
	dest = fillIdentifier(dest, identifier)
	return fillSequence(dest, sequence)
}

// ExtractTimestamp 提取时间戳字段
func ExtractTimestamp(word uint64) uint64 {
	return (word >> TimestampShift) & MaxTimestamp
}

// ExtractIdentifier 提取实例标识字段
func ExtractIdentifier(word uint64) uint64 {
	return (word >> IdentifierShift) & MaxIdentifier
}

// ExtractSequence 提取序列号字段
func ExtractSequence(word uint64) uint64 {
	return (word >> SequenceShift) & MaxSequence
}
