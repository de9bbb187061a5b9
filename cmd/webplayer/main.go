package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Rynzie02/WebPlayer/internal/channel"
	"github.com/Rynzie02/WebPlayer/internal/config"
	"github.com/Rynzie02/WebPlayer/internal/history"
	"github.com/Rynzie02/WebPlayer/internal/intent"
	"github.com/Rynzie02/WebPlayer/internal/logger"
	"github.com/Rynzie02/WebPlayer/internal/match"
	"github.com/Rynzie02/WebPlayer/internal/player"
	"github.com/Rynzie02/WebPlayer/internal/session"
)

func main() {
	configPath := flag.String("config", "configs/webplayer.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] WebPlayer 启动中 (log_level=%s)", cfg.Log.Level)

	channels, err := channel.LoadM3UFile(cfg.Playlist.Path)
	if err != nil {
		logger.Warnf("[main] 加载播放列表失败: %v", err)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.DBPath)
		if err != nil {
			logger.Warnf("[main] 打开指令历史失败，本次运行不记录历史: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	var client *intent.Client
	if cfg.Intent.Enabled {
		client = intent.NewClient(cfg.Intent.APIURL,
			time.Duration(cfg.Intent.TimeoutSeconds)*time.Second)
		logger.Infof("[main] 远程意图服务已启用: %s", cfg.Intent.APIURL)
	}

	sess := session.New(session.Options{
		Engine: player.NewSimEngine(),
		Intent: client,
		Resolver: &match.Resolver{
			Threshold:      cfg.Matcher.Threshold,
			PinyinFallback: cfg.Matcher.PinyinFallback,
		},
		Navigator: session.NavigatorFunc(func(u string) error {
			fmt.Printf("跳转: %s\n", u)
			return nil
		}),
		SearchEndpoint: cfg.Search.Endpoint,
		History:        store,
		Status: func(text string) {
			fmt.Printf("状态: %s\n", text)
		},
	})
	sess.SetChannels(channels)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		cancel()
	}()

	runLoop(ctx, sess, store)
	logger.Info("[main] WebPlayer 已停止")
}

// runLoop 逐行读取话语并交给会话处理。每行输入同时视为一次
// 用户手势，可补触发挂起的全屏请求。以 / 开头的行是控制命令。
func runLoop(ctx context.Context, sess *session.Session, store *history.Store) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("请输入指令（如“打开湖南卫视”、“30秒后切换到CCTV-1”；/quit 退出）")
	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				sess.UserGesture()
				continue
			}
			if strings.HasPrefix(line, "/") {
				if quit := runControl(sess, store, line); quit {
					return
				}
				continue
			}
			sess.HandleUtterance(ctx, line)
		}
	}
}

// runControl 处理 / 开头的控制命令，返回是否退出。
func runControl(sess *session.Session, store *history.Store, line string) bool {
	switch line {
	case "/quit", "/exit":
		return true
	case "/tasks":
		entries := sess.Scheduled()
		if len(entries) == 0 {
			fmt.Println("当前无任务")
			return false
		}
		for _, e := range entries {
			name := e.Target
			if name == "" {
				name = e.SourceText
			}
			fmt.Printf("%s  %s 后\n", name, humanRemaining(e.Remaining))
		}
	case "/history":
		if store == nil {
			fmt.Println("指令历史未启用")
			return false
		}
		entries, err := store.Recent(10)
		if err != nil {
			logger.Warnf("[main] 查询指令历史失败: %v", err)
			return false
		}
		for _, e := range entries {
			fmt.Printf("%s  [%s]  %s → %s\n", e.CreatedAt, e.Source, e.Utterance, e.Status)
		}
	default:
		fmt.Println("未知控制命令:", line)
	}
	return false
}

func humanRemaining(d time.Duration) string {
	s := int(d.Round(time.Second).Seconds())
	if s <= 0 {
		return "立即"
	}
	if s >= 60 {
		return fmt.Sprintf("%d 分钟", (s+59)/60)
	}
	return fmt.Sprintf("%d 秒", s)
}
