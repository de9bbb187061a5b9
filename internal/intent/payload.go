package intent

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Rynzie02/WebPlayer/internal/command"
)

// Payload 是远程意图服务返回的意图载荷。
// 上游既可能返回裸动作字符串，也可能返回带字段的对象，
// 字段命名在不同版本间有漂移，解码时统一收拢。
type Payload struct {
	Action       string  // 原始动作令牌，未归一
	Reply        string  // 直接回复给用户的文本
	Channel      string  // 目标频道名
	Query        string  // 搜索关键词
	DelaySeconds float64 // 延迟秒数，0 表示无延迟
}

// CanonicalAction 返回归一化后的规范动作。
func (p *Payload) CanonicalAction() command.Action {
	return command.NormalizeAction(p.Action)
}

// UnmarshalJSON 兼容两种形态：裸字符串视为动作令牌；
// 对象按字段解码，query 的别名 q/keyword、延迟字段的
// delay_seconds/delaySeconds/delay 命名都被接受。
func (p *Payload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Action = strings.TrimSpace(s)
		return nil
	}

	var aux struct {
		Action  string `json:"action"`
		Reply   string `json:"reply"`
		Channel string `json:"channel"`

		Query   string `json:"query"`
		Q       string `json:"q"`
		Keyword string `json:"keyword"`

		DelaySnake json.RawMessage `json:"delay_seconds"`
		DelayCamel json.RawMessage `json:"delaySeconds"`
		DelayShort json.RawMessage `json:"delay"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Action = strings.TrimSpace(aux.Action)
	p.Reply = strings.TrimSpace(aux.Reply)
	p.Channel = strings.TrimSpace(aux.Channel)
	p.Query = firstNonEmpty(aux.Query, aux.Q, aux.Keyword)

	for _, raw := range []json.RawMessage{aux.DelaySnake, aux.DelayCamel, aux.DelayShort} {
		if v, ok := parseNumber(raw); ok {
			p.DelaySeconds = v
			break
		}
	}
	return nil
}

// Response 是意图服务的顶层响应 {action: string|object}。
type Response struct {
	Action *Payload `json:"action"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// parseNumber 宽容地解析数字：裸数字或数字字符串都接受。
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
