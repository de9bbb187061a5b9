package match

// DefaultThreshold 是接受匹配的最低相似度。
// 与 Similarity 中的缩放常数一起标定，经验值，调整时需整体重新标定。
const DefaultThreshold = 0.56

// Resolver 在已知频道名列表中解析口语化的频道指代。
type Resolver struct {
	// Threshold 接受匹配的最低相似度，<=0 时使用 DefaultThreshold。
	Threshold float64

	// PinyinFallback 启用拼音回退：当常规打分全部低于阈值、
	// 查询为纯拉丁字符且标题含汉字时，用标题的拼音再打一轮分。
	PinyinFallback bool
}

func (r *Resolver) threshold() float64 {
	if r.Threshold <= 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// Resolve 在 titles 中查找与 query 最相似的频道，返回其下标。
// 找不到高于阈值的匹配时返回 (-1, false)。
// 同分时保留先出现的频道，失败查找不产生任何副作用。
func (r *Resolver) Resolve(query string, titles []string) (int, bool) {
	q := Normalize(query)
	if q == "" {
		return -1, false
	}

	bestIndex := -1
	bestScore := 0.0
	for i, title := range titles {
		t := Normalize(title)
		if t == "" {
			continue
		}
		if score := Similarity(q, t); score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestScore >= r.threshold() {
		return bestIndex, true
	}

	if r.PinyinFallback && isLatin(q) {
		if idx, ok := r.resolvePinyin(q, titles); ok {
			return idx, true
		}
	}
	return -1, false
}

// resolvePinyin 用标题的拼音转写再打一轮分，阈值不变。
// 仅在常规打分失败后调用，不会改变常规匹配的结果。
func (r *Resolver) resolvePinyin(q string, titles []string) (int, bool) {
	bestIndex := -1
	bestScore := 0.0
	for i, title := range titles {
		t := Normalize(title)
		if t == "" || !hasHan(t) {
			continue
		}
		py := Normalize(toPinyin(t))
		if py == "" {
			continue
		}
		if score := Similarity(q, py); score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}
	if bestScore >= r.threshold() {
		return bestIndex, true
	}
	return -1, false
}
