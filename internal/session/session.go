package session

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"

	"github.com/Rynzie02/WebPlayer/internal/channel"
	"github.com/Rynzie02/WebPlayer/internal/command"
	"github.com/Rynzie02/WebPlayer/internal/history"
	"github.com/Rynzie02/WebPlayer/internal/intent"
	"github.com/Rynzie02/WebPlayer/internal/logger"
	"github.com/Rynzie02/WebPlayer/internal/match"
	"github.com/Rynzie02/WebPlayer/internal/player"
	"github.com/Rynzie02/WebPlayer/internal/schedule"
)

// StatusSink 接收每次操作后的状态文本，是除播放副作用外唯一的对外输出。
type StatusSink func(text string)

// Navigator 执行搜索跳转。跳转失败只记日志，不影响会话。
type Navigator interface {
	Navigate(url string) error
}

// NavigatorFunc 把函数适配成 Navigator。
type NavigatorFunc func(url string) error

func (f NavigatorFunc) Navigate(url string) error { return f(url) }

// Options 组装会话所需的协作方。Engine 必填，其余可空：
// Intent 为 nil 时跳过远程解析，History 为 nil 时不记历史。
type Options struct {
	Engine         player.Engine
	Intent         *intent.Client
	Resolver       *match.Resolver
	Clock          schedule.Clock
	Navigator      Navigator
	SearchEndpoint string
	History        *history.Store
	Status         StatusSink
}

// Session 持有一次播放会话的全部可变状态：频道列表快照、
// 当前选中下标、待执行的定时任务。状态只由本会话自己修改，
// 协作方只接收单向命令，不回写。
type Session struct {
	engine         player.Engine
	intent         *intent.Client
	resolver       *match.Resolver
	clock          schedule.Clock
	sched          *schedule.Scheduler
	nav            Navigator
	searchEndpoint string
	hist           *history.Store
	status         StatusSink

	mu                sync.Mutex
	channels          []channel.Channel
	currentIndex      int
	pendingFullscreen bool
	lastStatus        string
}

// New 创建会话。
func New(opts Options) *Session {
	s := &Session{
		engine:         opts.Engine,
		intent:         opts.Intent,
		resolver:       opts.Resolver,
		clock:          opts.Clock,
		nav:            opts.Navigator,
		searchEndpoint: opts.SearchEndpoint,
		hist:           opts.History,
		status:         opts.Status,
	}
	if s.clock == nil {
		s.clock = schedule.RealClock()
	}
	if s.resolver == nil {
		s.resolver = &match.Resolver{}
	}
	s.sched = schedule.New(s.clock, s.fireScheduled)
	return s
}

// SetChannels 整体替换频道列表并把选中项重置到列表头。
// 重置只移动选中项，不激活任何频道；在首次激活前，
// “上一个”会从列表头回绕到列表尾。
// 已设置的定时任务保留，触发时在新列表上重新解析。
func (s *Session) SetChannels(list []channel.Channel) {
	s.mu.Lock()
	s.channels = list
	s.currentIndex = 0
	s.mu.Unlock()
	logger.Infof("[session] 频道列表已更新，共 %d 个频道", len(list))
}

// Channels 返回频道列表快照。
func (s *Session) Channels() []channel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]channel.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// CurrentIndex 返回当前选中的频道下标。
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// Scheduled 返回待执行定时任务的只读快照，仅供展示。
func (s *Session) Scheduled() []schedule.Entry {
	return s.sched.List()
}

// LastStatus 返回最近一次的状态文本。
func (s *Session) LastStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

// HandleUtterance 处理一条用户话语：优先送远程意图服务，
// 服务不可用、响应畸形或未给出可执行动作时回退本地规则解析。
// 任何失败都止于一条状态文本，不向上传播。
func (s *Session) HandleUtterance(ctx context.Context, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	// 每条输入都视为一次用户手势
	s.UserGesture()

	source := "remote"
	var action string

	switch {
	case s.intent == nil:
		source = "local"
		action = s.handleLocal(raw)
	default:
		payload, err := s.intent.Classify(ctx, raw, channel.Titles(s.Channels()))
		if err != nil {
			logger.Warnf("[session] 意图服务解析失败，回退本地规则: %v", err)
			source = "local"
			action = s.handleLocal(raw)
			break
		}
		result := s.Dispatch(payload, raw)
		if result.ReplyText != "" {
			s.setStatus(SanitizeReply(result.ReplyText))
		}
		if payload != nil {
			action = string(payload.CanonicalAction())
		}
		if !result.Executed && !result.Replied {
			source = "local"
			action = s.handleLocal(raw)
		}
	}

	s.record(raw, source, action)
}

// UserGesture 通知会话发生了一次用户交互，
// 用于补触发上次失败后挂起的全屏请求。
func (s *Session) UserGesture() {
	s.mu.Lock()
	pending := s.pendingFullscreen
	s.pendingFullscreen = false
	s.mu.Unlock()
	if !pending {
		return
	}

	if err := s.engine.EnterFullscreen(); err != nil {
		logger.Warnf("[session] 重试进入全屏失败: %v", err)
		s.setStatus("全屏失败：请手动进入全屏")
		return
	}
	s.setStatus("已进入全屏")
}

func (s *Session) setStatus(text string) {
	s.mu.Lock()
	s.lastStatus = text
	s.mu.Unlock()
	logger.Infof("[session] %s", text)
	if s.status != nil {
		s.status(text)
	}
}

func (s *Session) record(utterance, source, action string) {
	if s.hist == nil {
		return
	}
	err := s.hist.Add(history.Entry{
		Utterance: utterance,
		Source:    source,
		Action:    action,
		Status:    s.LastStatus(),
	})
	if err != nil {
		logger.Warnf("[session] 记录指令历史失败: %v", err)
	}
}

// stepChannel 把选中项前后移动一位并激活，首尾相接。
// 列表为空时报告后直接返回，不改变任何状态。
func (s *Session) stepChannel(delta int, status string) {
	s.mu.Lock()
	n := len(s.channels)
	if n == 0 {
		s.mu.Unlock()
		s.setStatus("频道列表为空")
		return
	}
	s.currentIndex = (s.currentIndex + delta + n) % n
	ch := s.channels[s.currentIndex]
	s.mu.Unlock()

	s.activate(ch)
	s.setStatus(status)
}

// activateIndex 选中并激活指定下标的频道，返回其标题。
func (s *Session) activateIndex(index int) string {
	s.mu.Lock()
	if index < 0 || index >= len(s.channels) {
		s.mu.Unlock()
		return ""
	}
	s.currentIndex = index
	ch := s.channels[index]
	s.mu.Unlock()

	s.activate(ch)
	return ch.Title
}

func (s *Session) activate(ch channel.Channel) {
	if err := s.engine.ActivateChannel(ch.StreamURL); err != nil {
		logger.Warnf("[session] 激活频道 %s 失败: %v", ch.Title, err)
	}
}

// openChannel 用模糊匹配解析频道说法并激活。
// 未命中时只报告，不改变选中项。
func (s *Session) openChannel(name string) {
	titles := channel.Titles(s.Channels())
	index, ok := s.resolver.Resolve(name, titles)
	if !ok {
		s.setStatus("未找到频道：" + name)
		return
	}
	title := s.activateIndex(index)
	s.setStatus("已打开：" + title)
}

// scheduleSwitch 设置延迟切换任务。seconds <= 0 时立即解析并切换。
func (s *Session) scheduleSwitch(seconds int, target, raw string) {
	if seconds <= 0 {
		titles := channel.Titles(s.Channels())
		index, ok := s.resolver.Resolve(target, titles)
		if !ok {
			s.setStatus("未找到频道：" + target)
			return
		}
		title := s.activateIndex(index)
		s.setStatus("已切换到：" + title)
		return
	}

	s.sched.Schedule(seconds, target, raw)
	s.setStatus(fmt.Sprintf("已设置定时：%s 后切换到 %s（可说：取消定时切换）",
		humanDelay(seconds), target))
}

// fireScheduled 是定时任务到期回调。带动作令牌的任务直接执行动作；
// 频道切换任务在当时的频道列表上重新解析目标——
// 列表可能在等待期间被整体替换，按最新内容解析是有意的行为。
func (s *Session) fireScheduled(t schedule.Task) {
	switch command.Action(t.Action) {
	case command.ActionNext:
		s.stepChannel(+1, "已切换到下一个频道")
		return
	case command.ActionPrev:
		s.stepChannel(-1, "已切换到上一个频道")
		return
	}

	titles := channel.Titles(s.Channels())
	index, ok := s.resolver.Resolve(t.Target, titles)
	if !ok {
		s.setStatus("定时到点，但未找到频道：" + t.Target)
		return
	}
	title := s.activateIndex(index)
	s.setStatus("已切换到：" + title)
}

// cancelScheduled 取消所有待执行的定时任务。
func (s *Session) cancelScheduled() {
	if s.sched.CancelAll() == 0 {
		s.setStatus("当前没有定时切换任务")
		return
	}
	s.setStatus("已取消所有定时切换任务")
}

// adjustVolume 按话语中的程度词调节音量。
// 静音时的调高请求先取消静音；若同时是“小声一点”类请求，
// 音量封顶在低位，避免恢复到静音前的大音量。
func (s *Session) adjustVolume(dir command.Direction, raw string) {
	delta := command.VolumeDelta(raw, dir)

	if dir == command.VolumeDown {
		vol, err := s.engine.Volume()
		if err != nil {
			logger.Warnf("[session] 读取音量失败: %v", err)
			s.setStatus("音量调节失败")
			return
		}
		vol = math.Max(vol-delta, 0)
		if err := s.engine.SetVolume(vol); err != nil {
			logger.Warnf("[session] 设置音量失败: %v", err)
		}
		s.setStatus(fmt.Sprintf("音量已调低（-%d%%），当前 %d%%", percent(delta), percent(vol)))
		return
	}

	wasMuted, err := s.engine.IsMuted()
	if err != nil {
		logger.Warnf("[session] 读取静音状态失败: %v", err)
	}
	tiny := command.IsTinyVolumeRequest(raw)
	if wasMuted {
		if err := s.engine.SetMute(false); err != nil {
			logger.Warnf("[session] 取消静音失败: %v", err)
		}
	}

	vol, err := s.engine.Volume()
	if err != nil {
		logger.Warnf("[session] 读取音量失败: %v", err)
		s.setStatus("音量调节失败")
		return
	}
	if wasMuted && tiny {
		vol = math.Min(vol, command.MutedTinyVolumeCap)
	} else {
		vol = math.Min(vol+delta, 1)
	}
	if err := s.engine.SetVolume(vol); err != nil {
		logger.Warnf("[session] 设置音量失败: %v", err)
	}

	prefix := ""
	if wasMuted {
		prefix = "已取消静音，"
	}
	if wasMuted && tiny {
		s.setStatus(fmt.Sprintf("%s已恢复小音量，当前 %d%%", prefix, percent(vol)))
		return
	}
	s.setStatus(fmt.Sprintf("%s音量已调高（+%d%%），当前 %d%%", prefix, percent(delta), percent(vol)))
}

// toggleMute 切换静音状态。
func (s *Session) toggleMute() {
	muted, err := s.engine.ToggleMute()
	if err != nil {
		logger.Warnf("[session] 切换静音失败: %v", err)
		s.setStatus("切换静音失败")
		return
	}
	if muted {
		s.setStatus("已静音")
	} else {
		s.setStatus("取消静音")
	}
}

// triggerFullscreen 切换全屏：已在全屏则退出，否则进入。
// 进入失败时挂起一次重试，等待下一次用户手势补触发。
func (s *Session) triggerFullscreen() {
	fullscreen, err := s.engine.IsFullscreen()
	if err != nil {
		logger.Warnf("[session] 读取全屏状态失败: %v", err)
	}

	if fullscreen {
		if err := s.engine.ExitFullscreen(); err != nil {
			logger.Warnf("[session] 退出全屏失败: %v", err)
			s.setStatus("退出全屏失败")
			return
		}
		s.setStatus("已退出全屏")
		return
	}

	if err := s.engine.EnterFullscreen(); err != nil {
		logger.Warnf("[session] 进入全屏失败: %v", err)
		s.mu.Lock()
		s.pendingFullscreen = true
		s.mu.Unlock()
		s.setStatus("全屏失败：将在下一次操作时自动重试")
		return
	}
	s.setStatus("已进入全屏")
}

// exitFullscreen 处理“退出全屏”类指令，仅在全屏时生效。
func (s *Session) exitFullscreen() {
	fullscreen, err := s.engine.IsFullscreen()
	if err != nil {
		logger.Warnf("[session] 读取全屏状态失败: %v", err)
	}
	if !fullscreen {
		s.setStatus("当前未处于全屏")
		return
	}
	if err := s.engine.ExitFullscreen(); err != nil {
		logger.Warnf("[session] 退出全屏失败: %v", err)
		s.setStatus("退出全屏失败")
		return
	}
	s.setStatus("已退出全屏")
}

// search 跳转到外部搜索页。
func (s *Session) search(query string) {
	s.setStatus("正在搜索：" + query)
	if s.nav == nil {
		return
	}
	target := s.searchEndpoint + "?q=" + url.QueryEscape(query)
	if err := s.nav.Navigate(target); err != nil {
		logger.Warnf("[session] 跳转搜索失败: %v", err)
	}
}

// reportTime 报告当前时间。
func (s *Session) reportTime() {
	now := s.clock.Now()
	s.setStatus(fmt.Sprintf("现在是 %02d:%02d", now.Hour(), now.Minute()))
}

// humanDelay 把秒数转成口语描述：满一分钟按分钟取整。
func humanDelay(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d 分钟", int(math.Round(float64(seconds)/60)))
	}
	return fmt.Sprintf("%d 秒", seconds)
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
