package player

import "testing"

func TestSimEngine_Basics(t *testing.T) {
	e := NewSimEngine()

	if err := e.ActivateChannel("http://example.com/a.m3u8"); err != nil {
		t.Fatalf("ActivateChannel failed: %v", err)
	}
	if e.CurrentStream() != "http://example.com/a.m3u8" || !e.IsPlaying() {
		t.Fatal("激活后应处于播放状态")
	}

	if err := e.Pause(); err != nil || e.IsPlaying() {
		t.Fatal("暂停后不应处于播放状态")
	}
	if err := e.Resume(); err != nil || !e.IsPlaying() {
		t.Fatal("恢复后应处于播放状态")
	}
}

func TestSimEngine_MuteToggle(t *testing.T) {
	e := NewSimEngine()

	muted, err := e.ToggleMute()
	if err != nil || !muted {
		t.Fatalf("第一次切换应为静音, got %v err=%v", muted, err)
	}
	muted, _ = e.ToggleMute()
	if muted {
		t.Fatal("第二次切换应取消静音")
	}
}

func TestSimEngine_VolumeClamp(t *testing.T) {
	e := NewSimEngine()

	if err := e.SetVolume(1.5); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	if v, _ := e.Volume(); v != 1.0 {
		t.Errorf("音量应收敛到 1.0, got %v", v)
	}

	e.SetVolume(-0.3)
	if v, _ := e.Volume(); v != 0 {
		t.Errorf("音量应收敛到 0, got %v", v)
	}
}

func TestSimEngine_Fullscreen(t *testing.T) {
	e := NewSimEngine()

	if fs, _ := e.IsFullscreen(); fs {
		t.Fatal("初始不应处于全屏")
	}
	e.EnterFullscreen()
	if fs, _ := e.IsFullscreen(); !fs {
		t.Fatal("进入全屏后状态应为全屏")
	}
	e.ExitFullscreen()
	if fs, _ := e.IsFullscreen(); fs {
		t.Fatal("退出全屏后状态不应为全屏")
	}
}
