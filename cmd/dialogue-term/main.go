// dialogue-term 在终端中播放对话脚本
//
// 按键：
//
//	空格/回车  继续或确认选项        1-9  直接选择
//	h          打开/关闭历史         ↑↓   选择选项或滚动历史
//	a          自动播放              f    快进
//	+/-        文字速度              m    切换显示模式
//	/          在历史中搜索          y    复制历史到剪贴板
//	r          重新开始              q    退出
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/game"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/script"
	"github.com/decker502/dialogue/pkg/session"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "data/dialogue.yaml", "对话配置文件（YAML/TOML），不存在时使用默认配置")
	scriptPath = flag.String("script", "assets/scripts/demo.yaml", "对话脚本")
	logPath    = flag.String("log", "", "日志文件路径，为空时丢弃日志（避免破坏终端画面）")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger.Configure(*verbose)
	if *logPath != "" {
		closer, _, err := logger.SetupFile(*logPath)
		if err != nil {
			return err
		}
		defer closer.Close()
	} else {
		logger.SetOutput(io.Discard)
	}
	log := logger.Named("Main")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	sc, err := script.Load(*scriptPath)
	if err != nil {
		return err
	}

	var settingsStore *gdata.Manager
	if m, err := gdata.Open(gdata.Config{AppName: "dialogue"}); err != nil {
		log.WithError(err).Warn("gdata unavailable, settings will not be saved")
	} else {
		settingsStore = m
	}

	label := &textLabel{}
	pane := &historyPane{}
	s, err := session.New(session.Options{
		Config:    cfg,
		Script:    sc,
		Settings:  game.NewSettingsManager(settingsStore),
		Sink:      label,
		View:      pane,
		Clipboard: clipboard.WriteAll,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	title := sc.Title
	if title == "" {
		title = sc.ID
	}
	u := newUI(s, label, pane, title)
	s.Start()
	loop(screen, u)
	return nil
}

// loadConfig 读取配置文件，文件不存在时使用默认配置
func loadConfig(path string) (*config.DialogueConfig, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// loop 事件与帧循环（约 60 FPS）
func loop(screen tcell.Screen, u *ui) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !u.handleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			u.tick(now.Sub(last).Seconds())
			last = now
			u.draw(screen)
			screen.Show()
		}
	}
}
