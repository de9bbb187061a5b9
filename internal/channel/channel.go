package channel

// Channel 频道列表中的一项。
// 频道由它在当前列表中的位置标识，列表整体替换后旧下标即失效。
type Channel struct {
	Title     string // 显示名称
	StreamURL string // 流地址，对本核心不透明
}

// Titles 返回频道显示名称的切片，顺序与列表一致。
func Titles(list []Channel) []string {
	titles := make([]string, len(list))
	for i, c := range list {
		titles[i] = c.Title
	}
	return titles
}
