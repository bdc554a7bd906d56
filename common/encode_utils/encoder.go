package encode_utils

import (
	"slices"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

const (
	EncodingUTF8     = "UTF-8"
	EncodingUTF8BOM  = "UTF-8-BOM"
	EncodingGBK      = "GBK"
	EncodingGB18030  = "GB18030"
	EncodingHZGB2312 = "HZ-GB2312"
)

// allEncodings 编码注册表 键为对外暴露的编码名称
var allEncodings = map[string]encoding.Encoding{
	EncodingUTF8:     unicode.UTF8,
	EncodingUTF8BOM:  unicode.UTF8BOM,
	EncodingGBK:      simplifiedchinese.GBK,
	EncodingGB18030:  simplifiedchinese.GB18030,
	EncodingHZGB2312: simplifiedchinese.HZGB2312,
}

// SupportedEncodings 返回所有支持的编码名称 按字典序排列
func SupportedEncodings() []string {
	names := make([]string, 0, len(allEncodings))
	for name := range allEncodings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewEncoder 创建编码器 将UTF-8文本转为目标编码
// 不支持的编码名称返回nil
func NewEncoder(encodingStr string) *encoding.Encoder {
	enc, ok := allEncodings[encodingStr]
	if !ok {
		return nil
	}
	return enc.NewEncoder()
}

// NewDecoder 创建解码器 将目标编码的数据转回UTF-8
// 不支持的编码名称返回nil
func NewDecoder(encodingStr string) *encoding.Decoder {
	enc, ok := allEncodings[encodingStr]
	if !ok {
		return nil
	}
	return enc.NewDecoder()
}
