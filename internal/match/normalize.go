package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// punctuation 是归一化时剔除的标点集合（含全角变体）。
const punctuation = "-_.·,，。:：;；!！?？'\"“”‘’()（）[]【】"

// Normalize 将频道名或查询词归一化为可比较的形式：
// NFKC 规范化、转小写、去除所有空白和标点、删除“频道”字样。
// 纯函数，空输入归一化为空串。
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := norm.NFKC.String(text)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}

	s = strings.ReplaceAll(b.String(), "频道", "")
	return strings.TrimSpace(s)
}
