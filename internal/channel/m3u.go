package channel

import (
	"fmt"
	"os"
	"strings"

	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// defaultTitle 是 #EXTINF 行缺少标题时的回退名称。
const defaultTitle = "IPTV 频道"

// ParseM3U 解析 M3U/EXTM3U 播放列表内容，返回频道列表。
// 每个 #EXTINF 行逗号后的文本作为标题，随后的 http 行作为流地址。
// 无法识别的行被忽略，解析永不失败。
func ParseM3U(content string) []Channel {
	var channels []Channel
	currentTitle := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF") {
			if idx := strings.Index(line, ","); idx >= 0 {
				currentTitle = strings.TrimSpace(line[idx+1:])
			} else {
				currentTitle = defaultTitle
			}
			continue
		}
		if strings.HasPrefix(line, "http") {
			channels = append(channels, Channel{
				Title:     currentTitle,
				StreamURL: line,
			})
		}
	}
	return channels
}

// LoadM3UFile 读取并解析本地 M3U 播放列表文件。
func LoadM3UFile(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取播放列表 %s 失败: %w", path, err)
	}
	channels := ParseM3U(string(data))
	logger.Infof("[channel] 已加载播放列表 %s: %d 个频道", path, len(channels))
	return channels, nil
}
