package snowflake

import "sort"

// IDSlice ID切片类型
type IDSlice []ID

// Len 实现sort.Interface
func (ids IDSlice) Len() int { return len(ids) }

// Less 实现sort.Interface
func (ids IDSlice) Less(i, j int) bool { return ids[i] < ids[j] }

// Swap 实现sort.Interface
func (ids IDSlice) Swap(i, j int) { ids[i], ids[j] = ids[j], ids[i] }

// Sort 原地升序排序
func (ids IDSlice) Sort() {
	sort.Sort(ids)
}

// IsSorted 是否严格递增（同一生成器批量分配的结果应满足）
func (ids IDSlice) IsSorted() bool {
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return false
		}
	}
	return true
}

// Int64s 转换为int64切片
func (ids IDSlice) Int64s() []int64 {
	result := make([]int64, len(ids))
	for i, id := range ids {
		result[i] = id.Int64()
	}
	return result
}

// Strings 转换为十进制字符串切片
func (ids IDSlice) Strings() []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.String()
	}
	return result
}

// Contains 检查是否包含指定ID（线性查找）
func (ids IDSlice) Contains(id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Deduplicate 去重并保持首次出现的顺序
func (ids IDSlice) Deduplicate() IDSlice {
	seen := make(map[ID]struct{}, len(ids))
	result := make(IDSlice, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// IDSet ID集合类型
type IDSet map[ID]struct{}

// NewIDSet 创建新的ID集合
func NewIDSet(ids ...ID) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add 添加ID，返回是否为新元素
func (s IDSet) Add(id ID) bool {
	if _, exists := s[id]; exists {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove 从集合中移除ID
func (s IDSet) Remove(id ID) {
	delete(s, id)
}

// Contains 检查集合是否包含指定ID
func (s IDSet) Contains(id ID) bool {
	_, exists := s[id]
	return exists
}

// Len 获取集合大小
func (s IDSet) Len() int {
	return len(s)
}

// Slice 转换为升序ID切片
func (s IDSet) Slice() IDSlice {
	result := make(IDSlice, 0, len(s))
	for id := range s {
		result = append(result, id)
	}
	result.Sort()
	return result
}
