package match

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// toPinyin 将文本中的汉字逐字转换为无声调拼音，其余字符原样保留。
// 用于拉丁字母查询与中文频道名之间的回退匹配。
func toPinyin(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal

	var b strings.Builder
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			py := pinyin.Pinyin(string(r), args)
			if len(py) > 0 && len(py[0]) > 0 {
				b.WriteString(py[0][0])
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isLatin 报告归一化后的字符串是否只含 ASCII 字母和数字。
func isLatin(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// hasHan 报告字符串是否包含汉字。
func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
