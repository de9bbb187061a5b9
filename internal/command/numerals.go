package command

import (
	"regexp"
	"strings"
)

var digitMap = map[rune]float64{
	'零': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var tensPattern = regexp.MustCompile(`^(?:([一二三四五六七八九])?十)?([一二三四五六七八九])?$`)

// parseChineseAmount 解析受限的中文数字语法：个位 0-9、
// “十”构成的十位（如“二十三”“十一”）以及表示 0.5 的“半”。
// 百位及以上不支持，返回 ok=false，调用方应视为无效数量。
func parseChineseAmount(s string) (float64, bool) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, false
	}
	if s == "半" {
		return 0.5, true
	}
	if s == "十" {
		return 10, true
	}
	if strings.ContainsRune(s, '百') {
		// 百位语法不支持，明确拒绝而不是当作 0
		return 0, false
	}

	if m := tensPattern.FindStringSubmatch(s); m != nil {
		var tens, ones float64
		if m[1] != "" {
			tens = digitMap[[]rune(m[1])[0]]
		} else if strings.HasPrefix(s, "十") {
			tens = 1
		}
		if m[2] != "" {
			ones = digitMap[[]rune(m[2])[0]]
		}
		return tens*10 + ones, true
	}

	runes := []rune(s)
	if len(runes) == 1 {
		if v, ok := digitMap[runes[0]]; ok {
			return v, true
		}
	}
	return 0, false
}
