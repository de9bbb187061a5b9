package schedule

import "time"

// Handle 是可取消的定时器句柄。
type Handle interface {
	// Stop 取消定时器，定时器已触发或已取消时返回 false。
	Stop() bool
}

// Clock 抽象宿主定时能力，便于测试中注入假时钟。
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
}

type realClock struct{}

type realHandle struct{ t *time.Timer }

func (h realHandle) Stop() bool { return h.t.Stop() }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Handle {
	return realHandle{t: time.AfterFunc(d, fn)}
}

// RealClock 返回基于系统时间的 Clock 实现。
func RealClock() Clock { return realClock{} }
