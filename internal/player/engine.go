package player

// Engine 是外部播放引擎的能力接口。
// 每个操作都可能异步失败；调用方捕获错误并降级为状态文本，
// 绝不让播放引擎的故障中断用户交互。
type Engine interface {
	// ActivateChannel 加载并播放指定的流地址。
	ActivateChannel(streamURL string) error

	Pause() error
	Resume() error

	ToggleMute() (muted bool, err error)
	IsMuted() (bool, error)
	SetMute(muted bool) error

	// Volume 返回当前音量，范围 [0,1]。
	Volume() (float64, error)
	// SetVolume 设置音量，实现方应将取值收敛到 [0,1]。
	SetVolume(v float64) error

	EnterFullscreen() error
	ExitFullscreen() error
	IsFullscreen() (bool, error)
}
