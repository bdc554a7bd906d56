package encode_utils

import (
	"errors"

	"maybe_list/common/container"
)

var (
	// ErrUnknownEncoding 不支持的编码名称
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// SplitByLength 按最大长度切分字符串
// 整串不超过 max 时返回 One 变体 不发生切片分配
// 否则按 max 逐段切分返回 Many 变体 最后一段允许不足 max
// max 不是正数时按整串处理 切分按字节进行 多字节字符边界由调用方保证
func SplitByLength(s string, max int) container.MaybeList[string] {
	if max <= 0 || len(s) <= max {
		return container.NewOne(s)
	}
	chunks := make([]string, 0, (len(s)+max-1)/max)
	for len(s) > max {
		chunks = append(chunks, s[:max])
		s = s[max:]
	}
	chunks = append(chunks, s)
	return container.NewMany(chunks...)
}

// SplitBytesByLength 按最大长度切分字节串
// 分段直接引用原数据 不做拷贝 其余行为同 SplitByLength
func SplitBytesByLength(data []byte, max int) container.MaybeList[[]byte] {
	if max <= 0 || len(data) <= max {
		return container.NewOne(data)
	}
	chunks := make([][]byte, 0, (len(data)+max-1)/max)
	for len(data) > max {
		chunks = append(chunks, data[:max])
		data = data[max:]
	}
	chunks = append(chunks, data)
	return container.NewMany(chunks...)
}

// EncodeChunks 先按目标编码转码 再按最大长度切分
// 编码名称不在支持范围内时返回 ErrUnknownEncoding
func EncodeChunks(s string, encodingStr string, max int) (container.MaybeList[[]byte], error) {
	encoder := NewEncoder(encodingStr)
	if encoder == nil {
		return container.NewMany[[]byte](), ErrUnknownEncoding
	}
	encoded, err := encoder.Bytes([]byte(s))
	if err != nil {
		return container.NewMany[[]byte](), err
	}
	return SplitBytesByLength(encoded, max), nil
}

// DecodeChunks 把多段字节串还原成一个字符串
// 容器消费顺序是插入顺序的逆序 这里倒序拼接恢复原始顺序
func DecodeChunks(chunks container.MaybeList[[]byte], encodingStr string) (string, error) {
	decoder := NewDecoder(encodingStr)
	if decoder == nil {
		return "", ErrUnknownEncoding
	}
	segments := make([][]byte, 0, chunks.Size())
	for chunk := range chunks.Iter() {
		segments = append(segments, chunk)
	}
	var raw []byte
	for i := len(segments) - 1; i >= 0; i-- {
		raw = append(raw, segments[i]...)
	}
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
