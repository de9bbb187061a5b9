package player

import (
	"sync"

	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// SimEngine 是内存中的模拟播放引擎。
// 本进程不直接驱动真实播放器，只维护播放状态并记录动作，
// 供命令行前端和测试使用。
type SimEngine struct {
	mu         sync.Mutex
	current    string
	playing    bool
	muted      bool
	fullscreen bool
	volume     float64
}

// NewSimEngine 创建模拟引擎，初始音量 1.0。
func NewSimEngine() *SimEngine {
	return &SimEngine{volume: 1.0}
}

func (e *SimEngine) ActivateChannel(streamURL string) error {
	e.mu.Lock()
	e.current = streamURL
	e.playing = true
	e.mu.Unlock()
	logger.Infof("[player] 加载流: %s", streamURL)
	return nil
}

func (e *SimEngine) Pause() error {
	e.mu.Lock()
	e.playing = false
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) Resume() error {
	e.mu.Lock()
	e.playing = true
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) ToggleMute() (bool, error) {
	e.mu.Lock()
	e.muted = !e.muted
	muted := e.muted
	e.mu.Unlock()
	return muted, nil
}

func (e *SimEngine) IsMuted() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted, nil
}

func (e *SimEngine) SetMute(muted bool) error {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) Volume() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume, nil
}

func (e *SimEngine) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) EnterFullscreen() error {
	e.mu.Lock()
	e.fullscreen = true
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) ExitFullscreen() error {
	e.mu.Lock()
	e.fullscreen = false
	e.mu.Unlock()
	return nil
}

func (e *SimEngine) IsFullscreen() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullscreen, nil
}

// CurrentStream 返回当前加载的流地址（测试与状态展示用）。
func (e *SimEngine) CurrentStream() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// IsPlaying 返回是否处于播放状态。
func (e *SimEngine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}
