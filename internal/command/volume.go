package command

import "strings"

// Direction 音量调节方向。
type Direction string

const (
	VolumeUp   Direction = "up"
	VolumeDown Direction = "down"
)

// MutedTinyVolumeCap 静音状态下收到“小声一点”类请求时，
// 取消静音后音量的上限。避免恢复到静音前的大音量吓到用户。
const MutedTinyVolumeCap = 0.12

var tinyHints = []string{"一点点", "一点", "稍微", "小点", "轻一点", "微微", "略微"}

var largeDownHints = []string{"太吵", "很吵", "吵死", "刺耳", "声音太大", "音量太大", "降很多", "小很多"}

var largeUpHints = []string{"太小声", "听不清", "太轻", "大点声", "加很多", "声音太小"}

var tinyRequestHints = []string{
	"一点点", "一点", "稍微", "小点", "轻一点", "微微", "略微",
	"放点声音", "来点声音", "有点声音", "出点声",
}

// VolumeDelta 根据原始话语中的程度词决定调节步长：
// 默认 0.1，“一点点”类 0.05，明确抱怨太吵/太小声类 0.2。
func VolumeDelta(raw string, dir Direction) float64 {
	text := strings.ToLower(raw)

	if containsAny(text, tinyHints) {
		return 0.05
	}
	if dir == VolumeDown && containsAny(text, largeDownHints) {
		return 0.2
	}
	if dir == VolumeUp && containsAny(text, largeUpHints) {
		return 0.2
	}
	return 0.1
}

// IsTinyVolumeRequest 报告话语是否为“小声放一点”类的轻量请求。
func IsTinyVolumeRequest(raw string) bool {
	return containsAny(strings.ToLower(raw), tinyRequestHints)
}

func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
