package command

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// delayPattern 匹配“30秒后切换到湖南卫视”“半分钟后打开CCTV”一类的定时表达。
var delayPattern = regexp.MustCompile(
	`([0-9]+|[零一二三四五六七八九十百]+|半)\s*(秒钟|秒|分钟|分)\s*后[\s,，]*(?:再)?(?:切换到|打开|播放|换到|去看)\s*(.+)`)

// Delay 是从文本中解析出的定时切换请求。
type Delay struct {
	Seconds     int    // 延迟秒数，恒为正
	ChannelName string // 目标频道的口语说法
}

// ParseDelay 从文本中解析定时切换表达。
// 数量可以是阿拉伯数字、受限中文数字或表示 0.5 的“半”；
// 分钟按 round(x*60) 折算为秒。解析结果非正（含“半秒”取整为 0、
// 不支持的百位数字）视为未检测到定时，返回 ok=false 由后续规则处理。
func ParseDelay(text string) (Delay, bool) {
	m := delayPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Delay{}, false
	}

	numRaw, unit, name := m[1], m[2], strings.TrimSpace(m[3])

	var amount float64
	if numRaw == "半" {
		amount = 0.5
	} else if v, err := strconv.Atoi(numRaw); err == nil {
		amount = float64(v)
	} else {
		v, ok := parseChineseAmount(numRaw)
		if !ok {
			logger.Debugf("[command] 无法解析的数量 %q（百位及以上不支持）", numRaw)
			return Delay{}, false
		}
		amount = v
	}

	var seconds int
	if strings.Contains(unit, "分") {
		seconds = int(math.Round(amount * 60))
	} else {
		// “半秒”向下取整为 0，视为无效定时
		seconds = int(amount)
	}
	if seconds <= 0 {
		return Delay{}, false
	}
	return Delay{Seconds: seconds, ChannelName: name}, true
}
