package command

import (
	"regexp"
	"strings"
)

// Command 是本地规则解析出的一条指令。
type Command struct {
	Action       Action
	Target       string // 打开频道时的频道名说法
	DelaySeconds int    // >0 表示定时执行
	CancelTimers bool   // 取消所有定时任务
	TimeQuery    bool   // 查询当前时间
}

// openPattern 提取“打开/播放/切换到 <频道名>”中的频道名。
var openPattern = regexp.MustCompile(`(?i)(?:打开|播放|切换到|换到|去看)\s*(.+)`)

// Parse 对原始话语做规则解析，规则按优先级自上而下求值，
// 命中即返回，后续规则对已被覆盖的文本有意不可达：
//
//  1. 取消定时指令
//  2. 定时切换表达（“30秒后切换到……”）
//  3. 关键词指令（上/下频道、暂停播放、音量、静音、全屏、报时）
//  4. 打开/播放指定频道
//
// 没有规则命中时返回 ok=false，由调用方报告未识别。
// 这不是完备的语法，只是远程意图服务不可用时的回退。
func Parse(raw string) (Command, bool) {
	if strings.TrimSpace(raw) == "" {
		return Command{}, false
	}
	text := strings.ToLower(raw)

	// 规则1：取消定时
	if strings.Contains(text, "取消") &&
		(strings.Contains(text, "定时") || strings.Contains(text, "取消切换")) {
		return Command{CancelTimers: true}, true
	}

	// 规则2：定时切换
	if d, ok := ParseDelay(raw); ok {
		return Command{
			Action:       ActionOpenChannel,
			Target:       d.ChannelName,
			DelaySeconds: d.Seconds,
		}, true
	}

	// 规则3：关键词指令
	switch {
	case strings.Contains(text, "下一个") || strings.Contains(text, "下一"):
		return Command{Action: ActionNext}, true
	case strings.Contains(text, "上一个") || strings.Contains(text, "上一"):
		return Command{Action: ActionPrev}, true
	case strings.Contains(text, "暂停"):
		return Command{Action: ActionPause}, true
	case strings.Contains(text, "继续"),
		strings.Contains(text, "播放") && !strings.Contains(text, "打开"):
		return Command{Action: ActionPlay}, true
	case strings.Contains(text, "太吵"):
		return Command{Action: ActionVolumeDown}, true
	case containsAny(text, []string{"放一点点声音", "放点声音", "来点声音", "有点声音", "出点声"}):
		return Command{Action: ActionVolumeUp}, true
	case containsAny(text, []string{"减少一点点", "减小一点点", "小一点点"}):
		return Command{Action: ActionVolumeDown}, true
	case strings.Contains(text, "音量") &&
		containsAny(text, []string{"调低", "降低", "小一点", "小点", "减小"}):
		return Command{Action: ActionVolumeDown}, true
	case strings.Contains(text, "音量") &&
		containsAny(text, []string{"调高", "提高", "大一点", "大点", "增大"}):
		return Command{Action: ActionVolumeUp}, true
	case strings.Contains(text, "静音"):
		return Command{Action: ActionToggleMute}, true
	case strings.Contains(text, "全屏"):
		return Command{Action: ActionFullscreen}, true
	case strings.Contains(text, "几点") || strings.Contains(text, "时间"):
		return Command{TimeQuery: true}, true
	}

	// 规则4：打开/播放指定频道
	if m := openPattern.FindStringSubmatch(raw); m != nil {
		if target := strings.TrimSpace(m[1]); target != "" {
			return Command{Action: ActionOpenChannel, Target: target}, true
		}
	}

	return Command{}, false
}
