package session

import (
	"strings"

	"github.com/Rynzie02/WebPlayer/internal/command"
	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// handleLocal 用本地规则解析并执行话语，返回执行的规范动作，
// 供指令历史记录。没有规则命中时报告未识别。
func (s *Session) handleLocal(raw string) string {
	cmd, ok := command.Parse(raw)
	if !ok {
		s.setStatus("未识别命令：" + raw)
		return ""
	}

	switch {
	case cmd.CancelTimers:
		s.cancelScheduled()
		return ""
	case cmd.TimeQuery:
		s.reportTime()
		return ""
	case cmd.DelaySeconds > 0:
		target := cmd.Target
		if target == "" {
			target = raw
		}
		s.scheduleSwitch(cmd.DelaySeconds, target, raw)
		return string(cmd.Action)
	}

	switch cmd.Action {
	case command.ActionNext:
		s.stepChannel(+1, "切换到下一个频道")
	case command.ActionPrev:
		s.stepChannel(-1, "切换到上一个频道")
	case command.ActionPause:
		if err := s.engine.Pause(); err != nil {
			logger.Warnf("[session] 暂停失败: %v", err)
			s.setStatus("暂停失败")
		} else {
			s.setStatus("已暂停")
		}
	case command.ActionPlay:
		if err := s.engine.Resume(); err != nil {
			logger.Warnf("[session] 恢复播放失败: %v", err)
			s.setStatus("播放失败")
		} else {
			s.setStatus("播放中")
		}
	case command.ActionToggleMute:
		s.toggleMute()
	case command.ActionFullscreen:
		s.triggerFullscreen()
	case command.ActionVolumeUp:
		s.adjustVolume(command.VolumeUp, raw)
	case command.ActionVolumeDown:
		s.adjustVolume(command.VolumeDown, raw)
	case command.ActionOpenChannel:
		s.openChannelLocal(cmd.Target)
	default:
		s.setStatus("未识别命令：" + raw)
		return ""
	}
	return string(cmd.Action)
}

// openChannelLocal 是本地规则的开台路径：只做精确与包含匹配，
// 按列表顺序取第一个命中，不走模糊打分。
func (s *Session) openChannelLocal(target string) {
	query := strings.ToLower(strings.TrimSpace(target))
	if query == "" {
		s.setStatus("未找到频道：" + target)
		return
	}

	for i, ch := range s.Channels() {
		title := strings.ToLower(strings.TrimSpace(ch.Title))
		if title == "" {
			continue
		}
		if title == query || strings.Contains(title, query) || strings.Contains(query, title) {
			name := s.activateIndex(i)
			s.setStatus("已打开：" + name)
			return
		}
	}
	s.setStatus("未找到频道：" + query)
}
