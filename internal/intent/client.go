package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 调用远程意图识别服务。
// 服务被视为不可信的尽力而为：请求失败、非 2xx、响应畸形
// 都以错误返回，由调用方回退到本地规则解析。
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient 创建意图服务客户端。
func NewClient(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// classifyRequest 是发送给意图服务的请求体。
type classifyRequest struct {
	Transcript string   `json:"transcript"`
	Channels   []string `json:"channels"`
}

// Classify 将话语和已知频道名发送给意图服务，返回解析出的意图。
// 服务未给出 action 字段时返回 (nil, nil)。
func (c *Client) Classify(ctx context.Context, transcript string, channels []string) (*Payload, error) {
	body, err := json.Marshal(classifyRequest{
		Transcript: transcript,
		Channels:   channels,
	})
	if err != nil {
		return nil, fmt.Errorf("[intent] 序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[intent] 创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[intent] 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("[intent] 服务返回状态码 %d: %s", resp.StatusCode, string(b))
	}

	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("[intent] 解析响应失败: %w", err)
	}
	return r.Action, nil
}
