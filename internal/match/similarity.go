package match

import "strings"

// Similarity 计算两个已归一化字符串的相似度，范围 [0,1]。
// 组合五种信号并取最大值，任一强信号即可胜出：
//
//	完全相等         → 1.0
//	任一方向包含     → 0.92
//	任一方向前缀     → 0.88
//	字符集 Jaccard   → 0.35 + 0.45*j
//	二元组 Jaccard   → 0.25 + 0.70*j
//
// 这些缩放常数与解析阈值（0.56）是一起标定的，不可单独调整。
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	var score float64
	if strings.Contains(a, b) || strings.Contains(b, a) {
		score = 0.92
	}
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		if score < 0.88 {
			score = 0.88
		}
	}

	if s := 0.35 + 0.45*jaccard(charSet(a), charSet(b)); s > score {
		score = s
	}
	if s := 0.25 + 0.70*jaccard(bigrams(a), bigrams(b)); s > score {
		score = s
	}
	return score
}

// charSet 返回字符串的字符集合（按 rune）。
func charSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range s {
		set[string(r)] = struct{}{}
	}
	return set
}

// bigrams 返回字符串的连续二元组集合（按 rune）。
// 少于 2 个字符的字符串返回空集合。
func bigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// jaccard 计算两个集合的 Jaccard 相似度。
// 任一集合为空时定义为 0，避免空标题造成的假阳性。
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
