package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// Task 一条待执行的定时任务。
// 任务只有两种去向：到期触发（执行后自移除）或被取消（不执行直接移除）。
type Task struct {
	ID           string
	Action       string // 到期执行的动作令牌；为空表示切换到 Target 频道
	Target       string // 目标频道的口语说法，触发时才解析
	SourceText   string // 原始话语
	DelaySeconds int
	ExecuteAt    time.Time
}

// Entry 是 List 返回的只读快照条目。
type Entry struct {
	Task
	Remaining time.Duration
}

type pendingTask struct {
	Task
	handle Handle
}

// Scheduler 管理延迟执行的频道切换任务。
// 任务集合是进程内状态，不跨重启持久化。
type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	tasks map[string]*pendingTask
	fire  func(Task) // 到期回调，负责在当时的频道列表上解析并执行
}

// New 创建调度器。fire 在任务到期（或立即执行）时被调用。
func New(clock Clock, fire func(Task)) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{
		clock: clock,
		tasks: make(map[string]*pendingTask),
		fire:  fire,
	}
}

// Schedule 创建一条定时切换任务。delaySeconds <= 0 时不建定时器，
// 立即同步执行并返回 pending=false。
// 到期时任务先从集合移除再触发，无论执行结果如何都不会残留。
func (s *Scheduler) Schedule(delaySeconds int, target, sourceText string) (Task, bool) {
	return s.schedule(Task{
		ID:           uuid.NewString(),
		Target:       target,
		SourceText:   sourceText,
		DelaySeconds: delaySeconds,
	})
}

// ScheduleAction 创建一条到期执行指定动作的定时任务。
// 与频道切换任务同池管理，同样可被取消、可被列出。
func (s *Scheduler) ScheduleAction(delaySeconds int, action, sourceText string) (Task, bool) {
	return s.schedule(Task{
		ID:           uuid.NewString(),
		Action:       action,
		SourceText:   sourceText,
		DelaySeconds: delaySeconds,
	})
}

func (s *Scheduler) schedule(t Task) (Task, bool) {
	t.ExecuteAt = s.clock.Now().Add(time.Duration(t.DelaySeconds) * time.Second)

	if t.DelaySeconds <= 0 {
		s.fire(t)
		return t, false
	}

	p := &pendingTask{Task: t}
	p.handle = s.clock.AfterFunc(time.Duration(t.DelaySeconds)*time.Second, func() {
		s.mu.Lock()
		delete(s.tasks, t.ID)
		s.mu.Unlock()
		s.fire(t)
	})

	s.mu.Lock()
	s.tasks[t.ID] = p
	s.mu.Unlock()

	desc := t.Target
	if desc == "" {
		desc = t.Action
	}
	logger.Infof("[schedule] 已设置定时任务 %s: %d秒后 → %s", t.ID, t.DelaySeconds, desc)
	return t, true
}

// Cancel 取消指定任务。任务不存在时静默返回 false。
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	p, ok := s.tasks[id]
	if ok {
		p.handle.Stop()
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if ok {
		logger.Infof("[schedule] 已取消定时任务 %s", id)
	}
	return ok
}

// CancelAll 原子地取消所有待执行任务，返回取消的数量。
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	n := len(s.tasks)
	for id, p := range s.tasks {
		p.handle.Stop()
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if n > 0 {
		logger.Infof("[schedule] 已取消全部 %d 个定时任务", n)
	}
	return n
}

// Len 返回待执行任务数量。
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// List 返回按触发时间排序的只读快照，含剩余时间，仅用于展示。
func (s *Scheduler) List() []Entry {
	now := s.clock.Now()

	s.mu.Lock()
	entries := make([]Entry, 0, len(s.tasks))
	for _, p := range s.tasks {
		remaining := p.ExecuteAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		entries = append(entries, Entry{Task: p.Task, Remaining: remaining})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExecuteAt.Before(entries[j].ExecuteAt)
	})
	return entries
}
