package session

import (
	"fmt"
	"math"
	"time"

	"github.com/Rynzie02/WebPlayer/internal/command"
	"github.com/Rynzie02/WebPlayer/internal/intent"
	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// Result 是一次远程意图分发的结果。
// Executed 与 Replied 同为 false 时，调用方回退到本地规则解析。
type Result struct {
	Executed  bool
	Replied   bool
	ReplyText string
}

// Dispatch 执行一条归一化后的远程意图。
// payload 为 nil（服务未给出动作）时返回全 false，交给本地规则。
// 带正延迟的意图：打开频道和上/下频道走调度器，
// 其余动作在延迟后清空延迟字段重新分发。
func (s *Session) Dispatch(p *intent.Payload, raw string) Result {
	if p == nil {
		return Result{}
	}

	action := p.CanonicalAction()
	reply := p.Reply

	if delay := int(math.Round(p.DelaySeconds)); delay > 0 {
		return s.dispatchDelayed(p, action, delay, raw, reply)
	}

	if action == "" || action == command.ActionNone {
		if reply != "" {
			return Result{Replied: true, ReplyText: reply}
		}
		return Result{}
	}

	executed := Result{Executed: true, ReplyText: reply}

	switch action {
	case command.ActionNext:
		s.stepChannel(+1, "切换到下一个频道")
		return executed
	case command.ActionPrev:
		s.stepChannel(-1, "切换到上一个频道")
		return executed
	case command.ActionPause:
		if err := s.engine.Pause(); err != nil {
			logger.Warnf("[session] 暂停失败: %v", err)
			s.setStatus("暂停失败")
		} else {
			s.setStatus("已暂停")
		}
		return executed
	case command.ActionPlay:
		if err := s.engine.Resume(); err != nil {
			logger.Warnf("[session] 恢复播放失败: %v", err)
			s.setStatus("播放失败")
		} else {
			s.setStatus("播放中")
		}
		return executed
	case command.ActionToggleMute:
		s.toggleMute()
		return executed
	case command.ActionFullscreen:
		s.triggerFullscreen()
		return executed
	case command.ActionExitFullscreen:
		s.exitFullscreen()
		return executed
	case command.ActionVolumeUp:
		s.adjustVolume(command.VolumeUp, raw)
		return executed
	case command.ActionVolumeDown:
		s.adjustVolume(command.VolumeDown, raw)
		return executed
	case command.ActionOpenChannel:
		name := p.Channel
		if name == "" {
			name = raw
		}
		s.openChannel(name)
		return executed
	case command.ActionSearch:
		q := firstNonEmpty(p.Query, raw, reply, p.Channel)
		if q == "" {
			s.setStatus("搜索关键词为空")
			return executed
		}
		s.search(q)
		return executed
	}

	// 未识别的动作：有回复则转述，否则交给本地规则
	if reply != "" {
		return Result{Replied: true, ReplyText: reply}
	}
	return Result{}
}

// dispatchDelayed 处理带延迟的意图。打开频道和上/下频道都交给
// 可取消的调度器；其余动作延迟后重新分发（延迟已清零，避免无限重排）。
func (s *Session) dispatchDelayed(p *intent.Payload, action command.Action, delay int, raw, reply string) Result {
	executed := Result{Executed: true, ReplyText: reply}

	switch action {
	case command.ActionOpenChannel:
		target := p.Channel
		if target == "" {
			target = raw
		}
		s.scheduleSwitch(delay, target, raw)
		return executed
	case command.ActionNext:
		s.sched.ScheduleAction(delay, string(command.ActionNext), raw)
		s.setStatus(fmt.Sprintf("已设置定时：%d 秒后切换到下一个频道", delay))
		return executed
	case command.ActionPrev:
		s.sched.ScheduleAction(delay, string(command.ActionPrev), raw)
		s.setStatus(fmt.Sprintf("已设置定时：%d 秒后切换到上一个频道", delay))
		return executed
	}

	redispatch := *p
	redispatch.DelaySeconds = 0
	s.clock.AfterFunc(time.Duration(delay)*time.Second, func() {
		result := s.Dispatch(&redispatch, raw)
		if result.ReplyText != "" {
			s.setStatus(SanitizeReply(result.ReplyText))
		}
	})
	s.setStatus(fmt.Sprintf("已设置定时：%d 秒后执行指令", delay))
	return executed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
