package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 WebPlayer 语音控制器的顶层配置结构。
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Playlist PlaylistConfig `yaml:"playlist"`
	Intent   IntentConfig   `yaml:"intent"`
	Search   SearchConfig   `yaml:"search"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	History  HistoryConfig  `yaml:"history"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// PlaylistConfig 频道列表配置。
type PlaylistConfig struct {
	// Path 是 M3U 播放列表文件路径。
	Path string `yaml:"path"`
}

// IntentConfig 远程意图识别服务配置。
// 服务不可用或返回异常时自动回退到本地规则解析，不影响用户交互。
type IntentConfig struct {
	Enabled        bool   `yaml:"enabled"`
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SearchConfig 搜索跳转配置。
type SearchConfig struct {
	// Endpoint 搜索页地址，关键词以 ?q=<urlencoded> 追加。
	Endpoint string `yaml:"endpoint"`
}

// MatcherConfig 频道名称匹配配置。
// 阈值与相似度信号的缩放常数是一起标定的，调整其一会使另一个失准。
type MatcherConfig struct {
	Threshold      float64 `yaml:"threshold"`
	PinyinFallback bool    `yaml:"pinyin_fallback"`
}

// HistoryConfig 指令历史记录配置。
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Playlist.Path == "" {
		cfg.Playlist.Path = "example.m3u8"
	}
	if cfg.Intent.APIURL == "" {
		cfg.Intent.APIURL = "http://127.0.0.1:8002/api/nanobot/execute"
	}
	if cfg.Intent.TimeoutSeconds <= 0 {
		cfg.Intent.TimeoutSeconds = 10
	}
	if cfg.Search.Endpoint == "" {
		cfg.Search.Endpoint = "http://localhost:8080/s"
	}
	if cfg.Matcher.Threshold == 0 {
		cfg.Matcher.Threshold = 0.56
	}
	if cfg.History.DBPath == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.History.DBPath = home + "/.webplayer/webplayer.db"
		} else {
			cfg.History.DBPath = "./webplayer.db"
		}
	} else if strings.HasPrefix(cfg.History.DBPath, "~/") {
		// Go 不会自动展开 ~，需要手动替换为用户主目录
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.History.DBPath = home + cfg.History.DBPath[1:]
		}
	}

	cfg.Intent.APIURL = strings.TrimSpace(cfg.Intent.APIURL)
}
