package command

import "testing"

func TestParseChineseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"零", 0, true},
		{"一", 1, true},
		{"九", 9, true},
		{"十", 10, true},
		{"十一", 11, true},
		{"二十", 20, true},
		{"二十三", 23, true},
		{"九十九", 99, true},
		{"半", 0.5, true},
		{"一百", 0, false}, // 百位语法不支持
		{"三百二十", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"五五", 0, false},
	}
	for _, c := range cases {
		got, ok := parseChineseAmount(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseChineseAmount(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"next", ActionNext},
		{"NEXT", ActionNext},
		{"prev", ActionPrev},
		{"toggle_mute", ActionToggleMute},
		{"open_channel", ActionOpenChannel},
		{"volume_up", ActionVolumeUp},
		{"find", ActionSearch},
		{"none", ActionNone},
		{"调小音量", ActionVolumeDown},
		{"取消全屏", ActionExitFullscreen},
		{"缩小屏幕", ActionExitFullscreen},
		{"下一个", ActionNext},      // 规范名称直接透传
		{"自定义动作", Action("自定义动作")}, // 未知令牌原样透传
	}
	for _, c := range cases {
		if got := NormalizeAction(c.in); got != c.want {
			t.Errorf("NormalizeAction(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVolumeDelta(t *testing.T) {
	cases := []struct {
		raw  string
		dir  Direction
		want float64
	}{
		{"音量调高", VolumeUp, 0.1},
		{"稍微大一点", VolumeUp, 0.05},
		{"就大一点点", VolumeUp, 0.05},
		{"太吵了", VolumeDown, 0.2},
		{"声音太大了", VolumeDown, 0.2},
		{"太小声了听不清", VolumeUp, 0.2},
		{"太吵", VolumeUp, 0.1}, // 方向不符的程度词不生效
	}
	for _, c := range cases {
		if got := VolumeDelta(c.raw, c.dir); got != c.want {
			t.Errorf("VolumeDelta(%q, %s) = %v, want %v", c.raw, c.dir, got, c.want)
		}
	}
}

func TestIsTinyVolumeRequest(t *testing.T) {
	if !IsTinyVolumeRequest("放点声音") {
		t.Error("放点声音 应为轻量请求")
	}
	if !IsTinyVolumeRequest("稍微大一点") {
		t.Error("稍微 应为轻量请求")
	}
	if IsTinyVolumeRequest("音量调高") {
		t.Error("音量调高 不应为轻量请求")
	}
}
