package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Rynzie02/WebPlayer/internal/channel"
	"github.com/Rynzie02/WebPlayer/internal/intent"
	"github.com/Rynzie02/WebPlayer/internal/player"
	"github.com/Rynzie02/WebPlayer/internal/schedule"
)

// fakeClock 手动推进的假时钟。
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 30, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) schedule.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// statusLog 收集状态文本。
type statusLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *statusLog) sink(text string) {
	l.mu.Lock()
	l.lines = append(l.lines, text)
	l.mu.Unlock()
}

func (l *statusLog) last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.lines) == 0 {
		return ""
	}
	return l.lines[len(l.lines)-1]
}

// flakyEngine 可控制进入全屏是否失败。
type flakyEngine struct {
	*player.SimEngine
	failEnter bool
}

type fsError struct{}

func (fsError) Error() string { return "fullscreen_not_entered" }

func (e *flakyEngine) EnterFullscreen() error {
	if e.failEnter {
		return fsError{}
	}
	return e.SimEngine.EnterFullscreen()
}

func testChannels() []channel.Channel {
	return []channel.Channel{
		{Title: "CCTV-1", StreamURL: "http://example.com/cctv1.m3u8"},
		{Title: "湖南卫视", StreamURL: "http://example.com/hunan.m3u8"},
		{Title: "CCTV News", StreamURL: "http://example.com/news.m3u8"},
	}
}

func newTestSession(opts Options) (*Session, *player.SimEngine, *statusLog, *fakeClock) {
	engine := player.NewSimEngine()
	log := &statusLog{}
	clock := newFakeClock()

	if opts.Engine == nil {
		opts.Engine = engine
	}
	opts.Clock = clock
	opts.Status = log.sink

	s := New(opts)
	s.SetChannels(testChannels())
	return s, engine, log, clock
}

func TestDispatch_NextPrevWrap(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})

	res := s.Dispatch(&intent.Payload{Action: "next"}, "下一个")
	if !res.Executed || res.Replied {
		t.Fatalf("结果不符: %+v", res)
	}
	if s.CurrentIndex() != 1 || log.last() != "切换到下一个频道" {
		t.Fatalf("下一个后 index=%d status=%q", s.CurrentIndex(), log.last())
	}
	if engine.CurrentStream() != "http://example.com/hunan.m3u8" {
		t.Errorf("应激活湖南卫视的流, got %s", engine.CurrentStream())
	}

	// 上一个回绕到列表尾
	s.Dispatch(&intent.Payload{Action: "prev"}, "上一个")
	s.Dispatch(&intent.Payload{Action: "prev"}, "上一个")
	if s.CurrentIndex() != 2 || log.last() != "切换到上一个频道" {
		t.Fatalf("回绕后 index=%d status=%q", s.CurrentIndex(), log.last())
	}
}

func TestDispatch_NextEmptyList(t *testing.T) {
	s, _, log, _ := newTestSession(Options{})
	s.SetChannels(nil)

	res := s.Dispatch(&intent.Payload{Action: "next"}, "下一个")
	if !res.Executed {
		t.Fatalf("结果不符: %+v", res)
	}
	if log.last() != "频道列表为空" {
		t.Fatalf("status=%q", log.last())
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("空列表不应改变选中项, index=%d", s.CurrentIndex())
	}
}

func TestDispatch_NoneWithReply(t *testing.T) {
	s, _, _, _ := newTestSession(Options{})

	res := s.Dispatch(&intent.Payload{Action: "none", Reply: "今天天气不错"}, "今天天气怎么样")
	if res.Executed || !res.Replied || res.ReplyText != "今天天气不错" {
		t.Fatalf("结果不符: %+v", res)
	}

	// 无动作也无回复：交回本地规则
	res = s.Dispatch(&intent.Payload{}, "随便说说")
	if res.Executed || res.Replied {
		t.Fatalf("结果不符: %+v", res)
	}

	// payload 缺失同样交回本地规则
	res = s.Dispatch(nil, "随便说说")
	if res.Executed || res.Replied {
		t.Fatalf("结果不符: %+v", res)
	}
}

func TestDispatch_OpenChannel(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})

	s.Dispatch(&intent.Payload{Action: "open_channel", Channel: "湖南"}, "打开湖南卫视")
	if s.CurrentIndex() != 1 || log.last() != "已打开：湖南卫视" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}
	if engine.CurrentStream() != "http://example.com/hunan.m3u8" {
		t.Errorf("流地址不符: %s", engine.CurrentStream())
	}

	// 未命中：报告且不改变选中项
	s.Dispatch(&intent.Payload{Action: "open_channel", Channel: "不存在的频道xyz"}, "...")
	if log.last() != "未找到频道：不存在的频道xyz" {
		t.Fatalf("status=%q", log.last())
	}
	if s.CurrentIndex() != 1 {
		t.Fatalf("未命中不应改变选中项, index=%d", s.CurrentIndex())
	}

	// channel 字段缺失时用原始话语解析
	s.Dispatch(&intent.Payload{Action: "open_channel"}, "cctv1")
	if s.CurrentIndex() != 0 || log.last() != "已打开：CCTV-1" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}
}

func TestDispatch_DelayedOpenChannel(t *testing.T) {
	s, engine, log, clock := newTestSession(Options{})

	res := s.Dispatch(&intent.Payload{Action: "open_channel", Channel: "湖南卫视", DelaySeconds: 10}, "10秒后打开湖南卫视")
	if !res.Executed {
		t.Fatalf("结果不符: %+v", res)
	}
	if log.last() != "已设置定时：10 秒后切换到 湖南卫视（可说：取消定时切换）" {
		t.Fatalf("status=%q", log.last())
	}
	if len(s.Scheduled()) != 1 {
		t.Fatalf("应有 1 个定时任务, got %d", len(s.Scheduled()))
	}
	if engine.CurrentStream() != "" {
		t.Fatal("到期前不应激活频道")
	}

	clock.Advance(10 * time.Second)
	if log.last() != "已切换到：湖南卫视" {
		t.Fatalf("status=%q", log.last())
	}
	if len(s.Scheduled()) != 0 {
		t.Fatal("触发后任务应自移除")
	}
}

func TestDispatch_DelayedNext(t *testing.T) {
	s, _, log, clock := newTestSession(Options{})

	s.Dispatch(&intent.Payload{Action: "next", DelaySeconds: 5}, "5秒后切下一个")
	if log.last() != "已设置定时：5 秒后切换到下一个频道" {
		t.Fatalf("status=%q", log.last())
	}
	if s.CurrentIndex() != 0 {
		t.Fatal("到期前不应切换")
	}
	if len(s.Scheduled()) != 1 {
		t.Fatalf("定时切换应进入任务列表, got %d", len(s.Scheduled()))
	}

	clock.Advance(5 * time.Second)
	if s.CurrentIndex() != 1 || log.last() != "已切换到下一个频道" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}
	if len(s.Scheduled()) != 0 {
		t.Fatal("触发后任务应自移除")
	}
}

func TestDispatch_DelayedNextCancelable(t *testing.T) {
	s, _, log, clock := newTestSession(Options{})
	ctx := context.Background()

	s.Dispatch(&intent.Payload{Action: "prev", DelaySeconds: 5}, "5秒后切上一个")
	if len(s.Scheduled()) != 1 {
		t.Fatalf("定时切换应进入任务列表, got %d", len(s.Scheduled()))
	}

	s.HandleUtterance(ctx, "取消定时切换")
	if log.last() != "已取消所有定时切换任务" {
		t.Fatalf("status=%q", log.last())
	}

	clock.Advance(10 * time.Second)
	if s.CurrentIndex() != 0 {
		t.Fatal("已取消的定时不应切换频道")
	}
}

func TestDispatch_DelayedOtherActionRedispatches(t *testing.T) {
	s, engine, log, clock := newTestSession(Options{})
	engine.Resume()

	s.Dispatch(&intent.Payload{Action: "pause", DelaySeconds: 3}, "3秒后暂停")
	if log.last() != "已设置定时：3 秒后执行指令" {
		t.Fatalf("status=%q", log.last())
	}
	if !engine.IsPlaying() {
		t.Fatal("到期前不应暂停")
	}

	clock.Advance(3 * time.Second)
	if engine.IsPlaying() || log.last() != "已暂停" {
		t.Fatalf("playing=%v status=%q", engine.IsPlaying(), log.last())
	}
}

func TestDispatch_ExitFullscreenGated(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})

	s.Dispatch(&intent.Payload{Action: "退出全屏"}, "退出全屏")
	if log.last() != "当前未处于全屏" {
		t.Fatalf("status=%q", log.last())
	}

	engine.EnterFullscreen()
	s.Dispatch(&intent.Payload{Action: "取消全屏"}, "取消全屏")
	if log.last() != "已退出全屏" {
		t.Fatalf("status=%q", log.last())
	}
	if fs, _ := engine.IsFullscreen(); fs {
		t.Fatal("应已退出全屏")
	}
}

func TestDispatch_Search(t *testing.T) {
	var navigated string
	s, _, log, _ := newTestSession(Options{
		SearchEndpoint: "http://localhost:8080/s",
		Navigator:      NavigatorFunc(func(u string) error { navigated = u; return nil }),
	})

	s.Dispatch(&intent.Payload{Action: "search", Query: "新闻 联播"}, "搜一下新闻联播")
	if log.last() != "正在搜索：新闻 联播" {
		t.Fatalf("status=%q", log.last())
	}
	if navigated != "http://localhost:8080/s?q=%E6%96%B0%E9%97%BB+%E8%81%94%E6%92%AD" {
		t.Fatalf("跳转地址不符: %s", navigated)
	}
}

func TestDispatch_SearchEmptyQuery(t *testing.T) {
	s, _, log, _ := newTestSession(Options{})

	s.Dispatch(&intent.Payload{Action: "search"}, "")
	if log.last() != "搜索关键词为空" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestDispatch_UnknownActionFallsThrough(t *testing.T) {
	s, _, _, _ := newTestSession(Options{})

	res := s.Dispatch(&intent.Payload{Action: "跳舞"}, "跳个舞")
	if res.Executed || res.Replied {
		t.Fatalf("未识别动作且无回复应交回本地规则: %+v", res)
	}

	res = s.Dispatch(&intent.Payload{Action: "跳舞", Reply: "我不会跳舞"}, "跳个舞")
	if res.Executed || !res.Replied || res.ReplyText != "我不会跳舞" {
		t.Fatalf("结果不符: %+v", res)
	}
}

func TestAdjustVolume_TinyStep(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})
	engine.SetVolume(0.5)

	s.Dispatch(&intent.Payload{Action: "volume_up"}, "大一点点声音")
	if v, _ := engine.Volume(); v != 0.55 {
		t.Fatalf("一点点应加 0.05, got %v", v)
	}
	if log.last() != "音量已调高（+5%），当前 55%" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestAdjustVolume_MutedTinyCap(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})
	engine.SetVolume(0.8)
	engine.SetMute(true)

	s.Dispatch(&intent.Payload{Action: "volume_up"}, "放点声音")
	if muted, _ := engine.IsMuted(); muted {
		t.Fatal("应已取消静音")
	}
	if v, _ := engine.Volume(); v != 0.12 {
		t.Fatalf("静音恢复应封顶 0.12, got %v", v)
	}
	if log.last() != "已取消静音，已恢复小音量，当前 12%" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestAdjustVolume_Down(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})
	engine.SetVolume(0.5)

	s.Dispatch(&intent.Payload{Action: "volume_down"}, "太吵了")
	if v, _ := engine.Volume(); v != 0.3 {
		t.Fatalf("太吵应减 0.2, got %v", v)
	}
	if log.last() != "音量已调低（-20%），当前 30%" {
		t.Fatalf("status=%q", log.last())
	}
}

// brokenVolumeEngine 音量读取始终失败的引擎。
type brokenVolumeEngine struct {
	*player.SimEngine
}

type volError struct{}

func (volError) Error() string { return "volume_unavailable" }

func (e *brokenVolumeEngine) Volume() (float64, error) { return 0, volError{} }

func TestAdjustVolume_EngineFailureReportsStatus(t *testing.T) {
	engine := &brokenVolumeEngine{SimEngine: player.NewSimEngine()}
	s, _, log, _ := newTestSession(Options{Engine: engine})

	// 引擎故障降级为状态文本，调低与调高两条路径都不允许静默失败
	s.Dispatch(&intent.Payload{Action: "volume_down"}, "太吵了")
	if log.last() != "音量调节失败" {
		t.Fatalf("status=%q", log.last())
	}

	s.Dispatch(&intent.Payload{Action: "volume_up"}, "大点声")
	if log.last() != "音量调节失败" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestSetChannels_ResetsSelectionWithoutActivating(t *testing.T) {
	s, engine, _, _ := newTestSession(Options{})

	s.Dispatch(&intent.Payload{Action: "next"}, "下一个")
	if s.CurrentIndex() != 1 {
		t.Fatalf("index=%d", s.CurrentIndex())
	}

	// 列表替换只重置选中项，不激活频道
	s.SetChannels(testChannels())
	if s.CurrentIndex() != 0 {
		t.Fatalf("列表替换后选中项应回到列表头, index=%d", s.CurrentIndex())
	}
	if engine.CurrentStream() != "http://example.com/hunan.m3u8" {
		t.Fatalf("列表替换不应激活频道, stream=%s", engine.CurrentStream())
	}

	// 重置后“上一个”从列表头回绕到列表尾
	s.Dispatch(&intent.Payload{Action: "prev"}, "上一个")
	if s.CurrentIndex() != 2 {
		t.Fatalf("index=%d", s.CurrentIndex())
	}
}

func TestFullscreen_GestureRetry(t *testing.T) {
	engine := &flakyEngine{SimEngine: player.NewSimEngine(), failEnter: true}
	s, _, log, _ := newTestSession(Options{Engine: engine})

	s.Dispatch(&intent.Payload{Action: "fullscreen"}, "全屏")
	if log.last() != "全屏失败：将在下一次操作时自动重试" {
		t.Fatalf("status=%q", log.last())
	}
	if fs, _ := engine.IsFullscreen(); fs {
		t.Fatal("失败后不应处于全屏")
	}

	// 下一次用户手势补触发
	engine.failEnter = false
	s.UserGesture()
	if log.last() != "已进入全屏" {
		t.Fatalf("status=%q", log.last())
	}
	if fs, _ := engine.IsFullscreen(); !fs {
		t.Fatal("重试后应处于全屏")
	}

	// 重试是一次性的
	engine.ExitFullscreen()
	s.UserGesture()
	if fs, _ := engine.IsFullscreen(); fs {
		t.Fatal("没有挂起请求时手势不应触发全屏")
	}
}

func TestHandleLocal_Basics(t *testing.T) {
	s, engine, log, _ := newTestSession(Options{})
	ctx := context.Background()

	s.HandleUtterance(ctx, "下一个频道")
	if s.CurrentIndex() != 1 || log.last() != "切换到下一个频道" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}

	s.HandleUtterance(ctx, "打开湖南卫视")
	if log.last() != "已打开：湖南卫视" {
		t.Fatalf("status=%q", log.last())
	}
	if engine.CurrentStream() != "http://example.com/hunan.m3u8" {
		t.Errorf("流地址不符: %s", engine.CurrentStream())
	}

	s.HandleUtterance(ctx, "现在几点了")
	if log.last() != "现在是 12:30" {
		t.Fatalf("status=%q", log.last())
	}

	s.HandleUtterance(ctx, "嗯嗯啊啊")
	if log.last() != "未识别命令：嗯嗯啊啊" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestHandleLocal_OpenUsesContainment(t *testing.T) {
	s, _, log, _ := newTestSession(Options{})
	ctx := context.Background()

	// 本地开台只做包含匹配，取列表中第一个命中
	s.HandleUtterance(ctx, "打开cctv")
	if s.CurrentIndex() != 0 || log.last() != "已打开：CCTV-1" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}

	s.HandleUtterance(ctx, "打开不存在的台xyz")
	if log.last() != "未找到频道：不存在的台xyz" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestHandleLocal_ScheduleAndCancel(t *testing.T) {
	s, _, log, clock := newTestSession(Options{})
	ctx := context.Background()

	s.HandleUtterance(ctx, "取消定时切换")
	if log.last() != "当前没有定时切换任务" {
		t.Fatalf("status=%q", log.last())
	}

	s.HandleUtterance(ctx, "30秒后切换到湖南卫视")
	if log.last() != "已设置定时：30 秒后切换到 湖南卫视（可说：取消定时切换）" {
		t.Fatalf("status=%q", log.last())
	}
	if len(s.Scheduled()) != 1 {
		t.Fatalf("应有 1 个定时任务, got %d", len(s.Scheduled()))
	}

	s.HandleUtterance(ctx, "取消定时切换")
	if log.last() != "已取消所有定时切换任务" {
		t.Fatalf("status=%q", log.last())
	}

	clock.Advance(time.Minute)
	if s.CurrentIndex() != 0 {
		t.Fatal("已取消的定时不应切换频道")
	}
}

func TestScheduledFire_ResolvesAgainstCurrentList(t *testing.T) {
	s, engine, log, clock := newTestSession(Options{})
	ctx := context.Background()

	s.SetChannels([]channel.Channel{
		{Title: "CCTV-1", StreamURL: "http://example.com/cctv1.m3u8"},
	})
	s.HandleUtterance(ctx, "30秒后切换到湖南卫视")

	// 等待期间列表被整体替换，到期时按新列表解析
	s.SetChannels([]channel.Channel{
		{Title: "湖南卫视", StreamURL: "http://example.com/hunan-new.m3u8"},
	})
	clock.Advance(30 * time.Second)

	if log.last() != "已切换到：湖南卫视" {
		t.Fatalf("status=%q", log.last())
	}
	if engine.CurrentStream() != "http://example.com/hunan-new.m3u8" {
		t.Errorf("应激活新列表中的流, got %s", engine.CurrentStream())
	}
}

func TestScheduledFire_TargetGone(t *testing.T) {
	s, _, log, clock := newTestSession(Options{})
	ctx := context.Background()

	s.HandleUtterance(ctx, "10秒后切换到湖南卫视")
	s.SetChannels([]channel.Channel{
		{Title: "CCTV-1", StreamURL: "http://example.com/cctv1.m3u8"},
	})
	clock.Advance(10 * time.Second)

	if log.last() != "定时到点，但未找到频道：湖南卫视" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestHandleUtterance_RemoteReplyOverridesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"action": {"action": "none", "reply": "今天是晴天"}}`))
	}))
	defer server.Close()

	s, _, log, _ := newTestSession(Options{
		Intent: intent.NewClient(server.URL, time.Second),
	})

	s.HandleUtterance(context.Background(), "今天天气怎么样")
	if log.last() != "今天是晴天" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestHandleUtterance_MalformedRemoteFallsBackToLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{这不是合法的JSON`))
	}))
	defer server.Close()

	s, _, log, _ := newTestSession(Options{
		Intent: intent.NewClient(server.URL, time.Second),
	})

	// 远程响应畸形：本地规则处理原始话语，结果与无远程服务时一致
	s.HandleUtterance(context.Background(), "下一个频道")
	if s.CurrentIndex() != 1 || log.last() != "切换到下一个频道" {
		t.Fatalf("index=%d status=%q", s.CurrentIndex(), log.last())
	}
}

func TestHandleUtterance_MissingActionFallsBackToLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	s, _, log, _ := newTestSession(Options{
		Intent: intent.NewClient(server.URL, time.Second),
	})

	s.HandleUtterance(context.Background(), "暂停")
	if log.last() != "已暂停" {
		t.Fatalf("status=%q", log.last())
	}
}

func TestSanitizeReply(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  你好  ", "你好"},
		{`{"action": "none", "reply": "今天是晴天"}`, "今天是晴天"},
		{`回复片段 "reply": "已收到" 其余内容`, "已收到"},
		{"普通文本", "普通文本"},
	}
	for _, c := range cases {
		if got := SanitizeReply(c.in); got != c.want {
			t.Errorf("SanitizeReply(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
