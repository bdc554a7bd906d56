package encode_utils

import (
	"testing"

	"maybe_list/common/container"
)

func TestSplitByLength(t *testing.T) {
	// 整串放得下 One 变体
	one := SplitByLength("hello", 16)
	if !one.IsOne() || one.Size() != 1 {
		t.Errorf("short input = %v", one)
	}

	// 刚好等于上限也算放得下
	exact := SplitByLength("abc", 3)
	if !exact.IsOne() {
		t.Errorf("exact fit = %v", exact)
	}

	// 超长切分 Many 变体 分段按原始顺序保存
	many := SplitByLength("abcdefgh", 3)
	if !many.IsMany() || many.Size() != 3 {
		t.Fatalf("long input = %v", many)
	}
	var got []string
	for chunk := range many.Iter() {
		got = append(got, chunk)
	}
	// 消费顺序为逆序
	if got[0] != "gh" || got[1] != "def" || got[2] != "abc" {
		t.Errorf("chunks = %v, want [gh def abc]", got)
	}

	// max 不是正数 按整串处理
	if whole := SplitByLength("abcdef", 0); !whole.IsOne() {
		t.Errorf("max=0 = %v", whole)
	}

	// 空串
	if empty := SplitByLength("", 4); !empty.IsOne() || empty.Size() != 1 {
		t.Errorf("empty input = %v", empty)
	}
}

func TestSplitBytesByLength(t *testing.T) {
	data := []byte("abcdefgh")
	many := SplitBytesByLength(data, 4)
	if !many.IsMany() || many.Size() != 2 {
		t.Fatalf("split = %v", many)
	}
	it := container.NewMaybeListIter(many)
	first, _ := it.Next()
	second, _ := it.Next()
	if string(first) != "efgh" || string(second) != "abcd" {
		t.Errorf("chunks = %q %q", first, second)
	}
	// 分段引用原数据
	data[0] = 'X'
	if second[0] != 'X' {
		t.Error("chunks should alias the input bytes")
	}
}

func TestEncodeDecodeChunks(t *testing.T) {
	text := "数据编码测试abc"

	chunks, err := EncodeChunks(text, EncodingGBK, 4)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !chunks.IsMany() {
		t.Fatalf("chunks = %v", chunks)
	}

	back, err := DecodeChunks(chunks, EncodingGBK)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if back != text {
		t.Errorf("round trip = %q, want %q", back, text)
	}
}

func TestEncodeChunksShort(t *testing.T) {
	chunks, err := EncodeChunks("ok", EncodingUTF8, 16)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !chunks.IsOne() {
		t.Errorf("short payload = %v", chunks)
	}
}

func TestEncodeChunksUnknownEncoding(t *testing.T) {
	if _, err := EncodeChunks("x", "EBCDIC", 8); err != ErrUnknownEncoding {
		t.Errorf("err = %v, want ErrUnknownEncoding", err)
	}
	if _, err := DecodeChunks(SplitBytesByLength([]byte("x"), 8), "EBCDIC"); err != ErrUnknownEncoding {
		t.Errorf("decode err = %v, want ErrUnknownEncoding", err)
	}
}

func TestNewEncoderDecoder(t *testing.T) {
	for _, name := range []string{EncodingUTF8, EncodingUTF8BOM, EncodingGBK, EncodingGB18030, EncodingHZGB2312} {
		if NewEncoder(name) == nil {
			t.Errorf("encoder %s = nil", name)
		}
		if NewDecoder(name) == nil {
			t.Errorf("decoder %s = nil", name)
		}
	}
	if NewEncoder("BOGUS") != nil || NewDecoder("BOGUS") != nil {
		t.Error("unknown encoding should yield nil")
	}
}

func TestSupportedEncodings(t *testing.T) {
	names := SupportedEncodings()
	if len(names) != 5 {
		t.Fatalf("SupportedEncodings() = %v", names)
	}
	// 字典序排列 每个名称都能解析出编码器
	for i, name := range names {
		if i > 0 && names[i-1] >= name {
			t.Errorf("names not sorted: %v", names)
		}
		if NewEncoder(name) == nil {
			t.Errorf("listed encoding %s has no encoder", name)
		}
	}
}
