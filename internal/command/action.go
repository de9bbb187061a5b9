package command

import "strings"

// Action 是规范化后的动作词汇，封闭集合。
// 远程意图服务的各种词汇和本地规则的解析结果都先归一到这个集合，
// 再交给分发器执行，借此隔离上游词汇的漂移。
type Action string

const (
	ActionNext           Action = "下一个"
	ActionPrev           Action = "上一个"
	ActionPause          Action = "暂停"
	ActionPlay           Action = "播放"
	ActionToggleMute     Action = "切换静音"
	ActionFullscreen     Action = "全屏"
	ActionOpenChannel    Action = "打开频道"
	ActionVolumeUp       Action = "调高音量"
	ActionVolumeDown     Action = "调低音量"
	ActionExitFullscreen Action = "退出全屏"
	ActionSearch         Action = "搜索"
	ActionNone           Action = "无动作"
)

// legacyAliases 将旧版英文动作令牌映射到规范动作。
var legacyAliases = map[string]Action{
	"next":         ActionNext,
	"prev":         ActionPrev,
	"pause":        ActionPause,
	"play":         ActionPlay,
	"toggle_mute":  ActionToggleMute,
	"fullscreen":   ActionFullscreen,
	"open_channel": ActionOpenChannel,
	"volume_up":    ActionVolumeUp,
	"volume_down":  ActionVolumeDown,
	"search":       ActionSearch,
	"find":         ActionSearch,
	"none":         ActionNone,
}

// familyAliases 将同义的中文动作说法折叠到规范动作。
var familyAliases = map[string]Action{
	"调小音量": ActionVolumeDown,
	"取消全屏": ActionExitFullscreen,
	"缩小屏幕": ActionExitFullscreen,
}

// NormalizeAction 将任意动作令牌归一到规范动作词汇。
// 未知令牌原样透传，以兼容直接使用规范名称的上游。
func NormalizeAction(raw string) Action {
	token := strings.TrimSpace(raw)
	if a, ok := legacyAliases[strings.ToLower(token)]; ok {
		return a
	}
	if a, ok := familyAliases[token]; ok {
		return a
	}
	return Action(token)
}
