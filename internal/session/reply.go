package session

import (
	"regexp"
	"strings"
)

// 上游偶尔把整段 JSON 当作回复文本返回，取其中的 reply 字段展示。
var replyJSONPattern = regexp.MustCompile(`"reply"\s*:\s*"([^"]+)"`)

// SanitizeReply 清洗回复文本：去掉首尾空白；
// 文本本身像 JSON 片段时，提取其中的 reply 字段值。
func SanitizeReply(reply string) string {
	text := strings.TrimSpace(reply)
	if text == "" {
		return ""
	}
	if m := replyJSONPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
